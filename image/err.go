package image

import (
	"errors"

	"github.com/ezrec/xjx/translate"
)

var f = translate.From

var (
	// Image errors
	ErrHeader     = errors.New(f("unknown section header"))
	ErrSection    = errors.New(f("line outside of a section"))
	ErrFields     = errors.New(f("wrong number of fields"))
	ErrRamFull    = errors.New(f("ram image larger than lo_max"))
	ErrMcFull     = errors.New(f("microcode image larger than mc_addr_max"))
	ErrRegister   = errors.New(f("register unknown"))
	ErrEquate     = errors.New(f(".equ syntax"))
	ErrEquateDupe = errors.New(f(".equ duplicated"))
	ErrGeometry   = errors.New(f("geometry out of range"))
)

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrSyntax locates an image error.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}
