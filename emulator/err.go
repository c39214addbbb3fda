package emulator

import (
	"errors"

	"github.com/ezrec/xjx/cpu"
	"github.com/ezrec/xjx/translate"
)

var f = translate.From

// ErrRuntime indicates the program location of a runtime error.
type ErrRuntime struct {
	ProgramCounter cpu.Word
	Err            error
}

func (err *ErrRuntime) Error() string {
	return f("pc %d %v", uint64(err.ProgramCounter), err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

var (
	// Emulator errors
	ErrGeometry = errors.New(f("image geometry differs from the machine"))
)
