package io

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Pipe is one end of a named pipe, accessed with raw system calls so the
// read side can be switched to non-blocking mode.
type Pipe struct {
	Path string
	fd   int
}

var _ io.ReadWriteCloser = (*Pipe)(nil)

// MakeFifo creates a named pipe.
func MakeFifo(path string) (err error) {
	err = unix.Mkfifo(path, 0644)
	if err != nil {
		err = &os.PathError{Op: "mkfifo", Path: path, Err: err}
	}
	return
}

// OpenPipe opens a named pipe for reading (unix.O_RDONLY) or writing
// (unix.O_WRONLY). The open blocks until the other end is opened too.
func OpenPipe(path string, mode int) (pipe *Pipe, err error) {
	var fd int
	for {
		fd, err = unix.Open(path, mode|unix.O_CLOEXEC, 0)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		err = &os.PathError{Op: "open", Path: path, Err: err}
		return
	}

	pipe = &Pipe{Path: path, fd: fd}
	return
}

// releasePipe opens and closes a named pipe for both reading and writing,
// which completes any open of it still waiting for a peer.
func releasePipe(path string) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err == nil {
		unix.Close(fd)
	}
}

// SetNonblock switches the pipe between blocking and non-blocking mode.
func (pipe *Pipe) SetNonblock(nonblocking bool) error {
	return unix.SetNonblock(pipe.fd, nonblocking)
}

// Read reads from the pipe. A non-blocking pipe with nothing to read
// returns ErrWouldBlock; a pipe whose writer has gone returns io.EOF.
func (pipe *Pipe) Read(buf []byte) (n int, err error) {
	if len(buf) == 0 {
		return
	}

	for {
		n, err = unix.Read(pipe.fd, buf)
		if err != unix.EINTR {
			break
		}
	}

	switch {
	case errors.Is(err, unix.EAGAIN):
		n, err = 0, ErrWouldBlock
	case err != nil:
		n = 0
	case n == 0:
		err = io.EOF
	}

	return
}

// Write writes to the pipe. A pipe whose reader has gone returns
// ErrHangup; a full non-blocking pipe returns ErrWouldBlock. Writes of at
// most PIPE_BUF bytes, such as frames, are never split.
func (pipe *Pipe) Write(buf []byte) (n int, err error) {
	for n < len(buf) {
		var m int
		m, err = unix.Write(pipe.fd, buf[n:])
		if err == unix.EINTR {
			continue
		}
		switch {
		case errors.Is(err, unix.EPIPE):
			err = ErrHangup
		case errors.Is(err, unix.EAGAIN):
			err = ErrWouldBlock
		}
		if err != nil {
			return
		}
		n += m
	}

	return
}

// Close closes the pipe.
func (pipe *Pipe) Close() (err error) {
	if pipe.fd < 0 {
		return
	}

	err = unix.Close(pipe.fd)
	pipe.fd = -1
	return
}
