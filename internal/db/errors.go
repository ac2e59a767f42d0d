package db

import "errors"

var (
	// ErrKeyNotFound is returned for reads of an absent key or an empty hash.
	ErrKeyNotFound = errors.New("key not found")
	// ErrIndexExists is returned by CreateVectorIndex when the index is already there.
	ErrIndexExists = errors.New("index already exists")
)

// Error is a failed store command. Key names the key or index it addressed, if any.
type Error struct {
	Cmd string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return e.Cmd + ": " + e.Err.Error()
	}
	return e.Cmd + " " + e.Key + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
