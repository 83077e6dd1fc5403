package errors

import "errors"

var (
	// ErrInvalidKey is returned for an empty key.
	ErrInvalidKey = errors.New("localcache: invalid key")
	// ErrNilValue is returned when a nil value is stored.
	ErrNilValue = errors.New("localcache: nil value")
	// ErrInvalidCapacity is returned by constructors given a non-positive capacity.
	ErrInvalidCapacity = errors.New("localcache: capacity must be positive")
	// ErrClosed is returned by writes issued after Close.
	ErrClosed = errors.New("localcache: cache closed")
)
