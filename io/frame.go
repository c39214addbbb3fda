package io

import (
	"errors"
	"io"
)

// FRAME_MAX is the largest payload a frame can carry.
const FRAME_MAX = 255

// WriteFrame writes one length-prefixed frame. The length byte and the
// payload go out in a single Write, so a frame on a pipe is never
// interleaved with another writer's data. Oversized payloads are rejected
// before anything is written.
func WriteFrame(w io.Writer, payload []byte) (err error) {
	if len(payload) > FRAME_MAX {
		err = ErrFrameTooLong
		return
	}

	buf := make([]byte, 0, 1+len(payload))
	buf = append(buf, byte(len(payload)))
	buf = append(buf, payload...)

	n, err := w.Write(buf)
	if err == nil && n != len(buf) {
		err = io.ErrShortWrite
	}

	return
}

// ReadFrame reads one length-prefixed frame.
//
// Errors from reading the length byte are returned as is, so a
// non-blocking reader with nothing pending yields ErrWouldBlock and a
// closed one io.EOF. Once the length byte is consumed, a short payload is
// ErrFramePartial; the frame is lost.
func ReadFrame(r io.Reader) (payload []byte, err error) {
	var header [1]byte

	_, err = io.ReadFull(r, header[:])
	if err != nil {
		return
	}

	payload = make([]byte, header[0])
	_, err = io.ReadFull(r, payload)
	if err != nil {
		payload = nil
		err = errors.Join(ErrFramePartial, err)
		return
	}

	return
}
