package grpcstate

import (
	"context"
	"encoding/base64"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"signet.sh/signet/state"
)

// Server exposes a state.Store over the InstanceStore gRPC service.
type Server struct {
	UnimplementedStoreServer
	Store state.Store
}

func (s *Server) Get(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing store")
	}
	key := in.GetValue()
	if key == "" {
		return nil, status.Error(codes.InvalidArgument, state.ErrInvalidKey.Error())
	}
	b, err := s.Store.Get(key)
	if err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Bytes(b), nil
}

func (s *Server) Set(ctx context.Context, in *structpb.ListValue) (*emptypb.Empty, error) {
	_ = ctx
	if s == nil || s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing store")
	}
	key, value, err := decodePair(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if key == "" {
		return nil, status.Error(codes.InvalidArgument, state.ErrInvalidKey.Error())
	}
	if err := s.Store.Set(key, value); err != nil {
		return nil, mapErr(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) Has(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	_ = ctx
	if s == nil || s.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing store")
	}
	return wrapperspb.Bool(s.Store.Has(in.GetValue())), nil
}

// decodePair unpacks the Set wire form: [key, base64(value)].
func decodePair(in *structpb.ListValue) (string, []byte, error) {
	values := in.GetValues()
	if len(values) != 2 {
		return "", nil, errPairArity
	}
	key, ok := values[0].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", nil, errPairShape
	}
	enc, ok := values[1].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", nil, errPairShape
	}
	value, err := base64.StdEncoding.DecodeString(enc.StringValue)
	if err != nil {
		return "", nil, err
	}
	return key.StringValue, value, nil
}

// encodePair builds the Set wire form: [key, base64(value)].
func encodePair(key string, value []byte) *structpb.ListValue {
	return &structpb.ListValue{Values: []*structpb.Value{
		structpb.NewStringValue(key),
		structpb.NewStringValue(base64.StdEncoding.EncodeToString(value)),
	}}
}
