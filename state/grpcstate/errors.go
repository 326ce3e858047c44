package grpcstate

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"signet.sh/signet/state"
)

var (
	errPairArity = errors.New("grpcstate: Set expects a two-element list")
	errPairShape = errors.New("grpcstate: Set list elements must be strings")
)

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, state.ErrNotFound):
		return status.Error(codes.NotFound, state.ErrNotFound.Error())
	case errors.Is(err, state.ErrInvalidKey):
		return status.Error(codes.InvalidArgument, state.ErrInvalidKey.Error())
	case errors.Is(err, state.ErrCorrupt):
		return status.Error(codes.DataLoss, state.ErrCorrupt.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.NotFound:
		return state.ErrNotFound
	case codes.InvalidArgument:
		return state.ErrInvalidKey
	case codes.DataLoss:
		return state.ErrCorrupt
	default:
		// Best-effort: if the server sent a known state error message, preserve it.
		switch st.Message() {
		case state.ErrNotFound.Error():
			return state.ErrNotFound
		case state.ErrInvalidKey.Error():
			return state.ErrInvalidKey
		case state.ErrCorrupt.Error():
			return state.ErrCorrupt
		default:
			return err
		}
	}
}
