// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package image

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/xjx/cpu"
	"github.com/ezrec/xjx/internal"
	xio "github.com/ezrec/xjx/io"
)

// section is the part of the image a line belongs to.
type section int

const (
	SECTION_NONE section = iota
	SECTION_XJX
	SECTION_JOHNNY
	SECTION_RAM
	SECTION_MC
	SECTION_ASM
	SECTION_REG
	SECTION_IO
	SECTION_IO_DESC
)

var headerMap = map[string]section{
	"!XJX":     SECTION_XJX,
	"!Johnny":  SECTION_JOHNNY,
	"!RAM":     SECTION_RAM,
	"!MC":      SECTION_MC,
	"!ASM":     SECTION_ASM,
	"!REG":     SECTION_REG,
	"!IO":      SECTION_IO,
	"!IO_DESC": SECTION_IO_DESC,
}

var exprRe = regexp.MustCompile(`\$\([^\$]*\)`)

// Loader parses text images.
//
// An image is a sequence of sections, each started by a header line:
//
//	!XJX       next line: hi_max lo_max mc_addr_max
//	!Johnny    use the 19 999 199 geometry
//	!RAM       one word per line, from address 0
//	!MC        one micro-operation (name or code) per line, from address 0
//	!ASM       "opcode address" symbol table entries
//	!REG       "register value" initial registers (pc, acc, ins)
//	!IO        one line: "min max" window shared when run as a device
//	!IO_DESC   one device command per line
//
// Blank lines and lines starting with '#' are ignored. Anywhere in a line,
// $(expr) is replaced by the value of the Starlark expression expr, which
// may use HI_MAX, LO_MAX, MC_ADDR_MAX, MODULUS, the micro-operation names
// and any name defined earlier by ".equ NAME VALUE".
type Loader struct {
	Verbose bool // If set, logs every parsed line.

	Equate    map[string]cpu.Word // Equates defined so far.
	predefine map[string]cpu.Word
}

// Predefine defines an equate visible to every subsequent Parse.
func (ld *Loader) Predefine(name string, value cpu.Word) {
	if ld.predefine == nil {
		ld.predefine = map[string]cpu.Word{}
	}
	ld.predefine[name] = value
}

// sysEquate returns the geometry dependent names.
func sysEquate(geom cpu.Geometry) iter.Seq2[string, cpu.Word] {
	return maps.All(map[string]cpu.Word{
		"HI_MAX":      geom.HiMax,
		"LO_MAX":      geom.LoMax,
		"MC_ADDR_MAX": geom.McAddrMax,
		"MODULUS":     geom.Modulus,
	})
}

// names returns every name an expression may use.
func (ld *Loader) names(geom cpu.Geometry) iter.Seq2[string, cpu.Word] {
	microOps := internal.IterSeq2Map(cpu.MicroOps(), func(op cpu.MicroOp) cpu.Word {
		return cpu.Word(op)
	})

	return internal.IterSeq2Concat(
		sysEquate(geom),
		microOps,
		maps.All(ld.Equate),
	)
}

// parenEval evaluates a $(...) expression.
func (ld *Loader) parenEval(expr string, geom cpu.Geometry) (value cpu.Word, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, word := range ld.names(geom) {
		pred[key] = starlark.MakeUint64(uint64(word))
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_uint64, ok := st_int.Uint64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}

	value = cpu.Word(st_uint64)
	return
}

// expand replaces every $(...) in a line with its value.
func (ld *Loader) expand(line string, geom cpu.Geometry) (out string, err error) {
	out = exprRe.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := ld.parenEval(str[2:len(str)-1], geom)
		if _err != nil {
			err = _err
			return str
		}
		return fmt.Sprintf("%d", value)
	})

	return
}

// valueOf parses a decimal word.
func valueOf(word string) (value cpu.Word, err error) {
	v64, err := strconv.ParseUint(word, 10, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = cpu.Word(v64)
	return
}

// valuesOf parses exactly count decimal words.
func valuesOf(words []string, count int) (values []cpu.Word, err error) {
	if len(words) != count {
		err = ErrFields
		return
	}

	values = make([]cpu.Word, count)
	for n, word := range words {
		values[n], err = valueOf(word)
		if err != nil {
			return
		}
	}

	return
}

// Parse reads an image. Parsing starts from an empty Johnny-sized image.
func (ld *Loader) Parse(input io.Reader) (img *Image, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			img = nil
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	img = New(cpu.JohnnyGeometry())
	ld.Equate = maps.Clone(ld.predefine)
	if ld.Equate == nil {
		ld.Equate = map[string]cpu.Word{}
	}

	state := SECTION_NONE
	var ramIndex, mcIndex int

	for scanner.Scan() {
		lineno++
		line = strings.TrimSpace(scanner.Text())

		if ld.Verbose {
			log.Printf("image: %v: %v", lineno, line)
		}

		if len(line) == 0 || line[0] == '#' {
			continue
		}

		if line[0] == '!' {
			next, ok := headerMap[line]
			if !ok {
				err = ErrHeader
				return
			}
			state = next
			switch state {
			case SECTION_JOHNNY:
				img.Resize(cpu.JohnnyGeometry())
			case SECTION_RAM:
				ramIndex = 0
			case SECTION_MC:
				mcIndex = 0
			}
			continue
		}

		var expanded string
		expanded, err = ld.expand(line, img.Geometry)
		if err != nil {
			return
		}
		words := strings.Fields(expanded)

		// .equ NAME VALUE
		if words[0] == ".equ" {
			if len(words) != 3 {
				err = ErrEquate
				return
			}
			if _, ok := ld.Equate[words[1]]; ok {
				err = ErrEquateDupe
				return
			}
			var value cpu.Word
			value, err = valueOf(words[2])
			if err != nil {
				return
			}
			ld.Equate[words[1]] = value
			continue
		}

		switch state {
		case SECTION_NONE:
			err = ErrSection
		case SECTION_XJX:
			var values []cpu.Word
			values, err = valuesOf(words, 3)
			if err != nil {
				return
			}
			geom := cpu.NewGeometry(values[0], values[1], values[2])
			err = CheckGeometry(geom)
			if err != nil {
				return
			}
			img.Resize(geom)
			state = SECTION_NONE
		case SECTION_JOHNNY:
			// Anything after !Johnny is a comment.
		case SECTION_RAM:
			if ramIndex >= len(img.Ram) {
				err = ErrRamFull
				return
			}
			var values []cpu.Word
			values, err = valuesOf(words, 1)
			if err != nil {
				return
			}
			img.Ram[ramIndex] = values[0]
			ramIndex++
		case SECTION_MC:
			err = ld.parseMicroOp(img, words, &mcIndex)
		case SECTION_ASM:
			var values []cpu.Word
			values, err = valuesOf(words, 2)
			if err != nil {
				return
			}
			img.Symbol[values[0]] = values[1]
		case SECTION_REG:
			err = parseRegister(img, words)
		case SECTION_IO:
			var values []cpu.Word
			values, err = valuesOf(words, 2)
			if err != nil {
				return
			}
			img.IoMinAddr = values[0]
			img.IoMaxAddr = values[1]
			state = SECTION_NONE
		case SECTION_IO_DESC:
			img.Devices = append(img.Devices, xio.Entry(words))
		}
		if err != nil {
			return
		}
	}

	line = ""
	err = scanner.Err()

	return
}

// parseMicroOp handles one !MC line. Unknown names are skipped.
func (ld *Loader) parseMicroOp(img *Image, words []string, index *int) (err error) {
	if len(words) != 1 {
		err = ErrFields
		return
	}

	word := words[0]

	var op cpu.MicroOp
	if word[0] >= '0' && word[0] <= '9' {
		var value cpu.Word
		value, err = valueOf(word)
		if err != nil {
			return
		}
		op = cpu.MicroOp(value)
	} else {
		var ok bool
		op, ok = cpu.ParseMicroOp(word)
		if !ok {
			if ld.Verbose {
				log.Printf("image: skipping unknown micro-operation %q", word)
			}
			return
		}
	}

	if *index >= len(img.Microcode) {
		err = ErrMcFull
		return
	}

	img.Microcode[*index] = op
	*index++

	return
}

// parseRegister handles one !REG line.
func parseRegister(img *Image, words []string) (err error) {
	if len(words) != 2 {
		err = ErrFields
		return
	}

	value, err := valueOf(words[1])
	if err != nil {
		return
	}

	switch words[0] {
	case "pc":
		img.ProgramCounter = value
	case "acc":
		img.Acc = value
	case "ins":
		img.Ins = value
	default:
		err = ErrRegister
	}

	return
}
