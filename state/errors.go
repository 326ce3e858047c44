package state

import "errors"

var (
	ErrNotFound   = errors.New("state: not found")
	ErrInvalidKey = errors.New("state: invalid key")
	ErrCorrupt    = errors.New("state: corrupt entry")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
