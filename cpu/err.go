package cpu

import (
	"errors"

	"github.com/ezrec/xjx/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrMicroOpUnknown = errors.New(f("micro-operation unknown"))
	ErrRamAddress     = errors.New(f("ram address out of range"))
	ErrMcAddress      = errors.New(f("microcode address out of range"))
)

// ErrMicroOp identifies the micro-operation that faulted.
type ErrMicroOp MicroOp

func (eo ErrMicroOp) Error() string {
	return f("micro-op %d %v", uint64(eo), MicroOp(eo).String())
}

func (eo ErrMicroOp) Is(err error) (ok bool) {
	_, ok = err.(ErrMicroOp)
	return
}

// ErrTick reports the microcode address of a fatal engine fault.
type ErrTick struct {
	McAddr Word
	Err    error
}

func (err *ErrTick) Error() string {
	return f("microcode address %d: %v", uint64(err.McAddr), err.Err)
}

func (err *ErrTick) Unwrap() error {
	return err.Err
}
