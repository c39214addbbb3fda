// Package image loads the initial state of an XJX machine from its text
// image format.
package image

import (
	"maps"
	"math"

	"github.com/ezrec/xjx/cpu"
	xio "github.com/ezrec/xjx/io"
)

// Largest lo_max and mc_addr_max an image may ask for.
const (
	LO_MAX_LIMIT      = cpu.Word(1<<24 - 1)
	MC_ADDR_MAX_LIMIT = cpu.Word(1<<20 - 1)
)

// Image is everything needed to boot a machine.
type Image struct {
	cpu.Geometry

	Ram       []cpu.Word      // Initial RAM, LoMax+1 words.
	Microcode []cpu.MicroOp   // Initial microcode, McAddrMax+1 cells.
	Symbol    cpu.SymbolTable // Initial opcode entry points.

	ProgramCounter cpu.Word // Initial program counter.
	Acc            cpu.Word // Initial accumulator.
	Ins            cpu.Word // Initial instruction register.

	IoMinAddr cpu.Word    // First address shared when run as a device.
	IoMaxAddr cpu.Word    // Last address shared when run as a device.
	Devices   []xio.Entry // Device launch templates.
}

// New returns an empty image of the given geometry.
func New(geom cpu.Geometry) (img *Image) {
	img = &Image{Symbol: cpu.SymbolTable{}}
	img.Resize(geom)
	return
}

// NewDevice returns an image with no program, for a device started without
// one. Its microcode spins on mc_0 so the machine only serves its window.
func NewDevice(geom cpu.Geometry) (img *Image) {
	img = New(geom)
	img.Microcode[0] = cpu.MC_MC_0
	return
}

// CheckGeometry rejects sizes that can not be allocated, or whose largest
// word does not fit in a Word.
func CheckGeometry(geom cpu.Geometry) (err error) {
	if geom.LoMax > LO_MAX_LIMIT || geom.McAddrMax > MC_ADDR_MAX_LIMIT {
		err = ErrGeometry
		return
	}

	if geom.HiMax > (math.MaxUint64-geom.LoMax)/geom.Modulus {
		err = ErrGeometry
	}

	return
}

// Resize changes the geometry, keeping the memory contents that still fit.
func (img *Image) Resize(geom cpu.Geometry) {
	img.Geometry = geom
	img.Ram = resize(img.Ram, int(geom.LoMax)+1)
	img.Microcode = resize(img.Microcode, int(geom.McAddrMax)+1)
}

func resize[T any](data []T, size int) []T {
	if len(data) >= size {
		return data[:size:size]
	}
	return append(data, make([]T, size-len(data))...)
}

// NewCpu boots a fresh machine from the image.
func (img *Image) NewCpu() (cp *cpu.Cpu) {
	cp = cpu.NewCpu(img.Geometry)
	img.Boot(cp)
	return
}

// Boot loads the image into a machine of the same geometry and resets its
// registers.
func (img *Image) Boot(cp *cpu.Cpu) {
	cp.Reset()

	copy(cp.Ram, img.Ram)
	copy(cp.Microcode, img.Microcode)
	cp.Symbol = maps.Clone(img.Symbol)
	if cp.Symbol == nil {
		cp.Symbol = cpu.SymbolTable{}
	}

	cp.ProgramCounter = img.ProgramCounter
	cp.Acc = img.Acc
	cp.Ins = img.Ins
}
