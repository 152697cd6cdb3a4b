package ingest

import "errors"

var (
	ErrSerialPathNotSet   = errors.New("serial path not set")
	ErrInvalidBaudRate    = errors.New("invalid baud rate")
	ErrInvalidReadTimeout = errors.New("invalid read timeout")
	ErrUnknownLogLevel    = errors.New("unknown log level")
)
