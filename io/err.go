package io

import (
	"errors"

	"github.com/ezrec/xjx/translate"
)

var f = translate.From

var (
	// Framing errors
	ErrFrameTooLong = errors.New(f("frame payload longer than 255 bytes"))
	ErrFramePartial = errors.New(f("partial frame"))

	// Pipe errors
	ErrWouldBlock = errors.New(f("pipe has no data"))
	ErrHangup     = errors.New(f("pipe peer hung up"))

	// Attachment errors
	ErrHandshake   = errors.New(f("malformed handshake"))
	ErrMessage     = errors.New(f("malformed device message"))
	ErrChildExited = errors.New(f("device exited before attaching"))
)

// ErrAttach reports why a device entry could not be attached.
type ErrAttach struct {
	Entry int
	Err   error
}

func (err *ErrAttach) Error() string {
	return f("device %d: %v", err.Entry, err.Err)
}

func (err *ErrAttach) Unwrap() error {
	return err.Err
}
