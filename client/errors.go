package client

import "errors"

var (
	ErrNotConnected       = errors.New("not connected")
	ErrConnectionAborted  = errors.New("connection aborted")
	ErrCancelled          = errors.New("transaction cancelled")
	ErrUnknownTransaction = errors.New("unknown transaction")
	ErrInvalidTransaction = errors.New("invalid transaction id")
	ErrInvalidConfig      = errors.New("invalid config")
)
