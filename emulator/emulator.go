// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator ties an XJX machine to its image and its devices.
package emulator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ezrec/xjx/cpu"
	"github.com/ezrec/xjx/image"
	xio "github.com/ezrec/xjx/io"
	"github.com/ezrec/xjx/translate"
)

const (
	RAM_WINDOW = 5 // RAM cells shown on each side of the address bus.
	MC_WINDOW  = 3 // Microcode cells shown on each side of the cursor.
)

// Emulator state. CPU + image + device pipes.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Image    *image.Image // Image the machine was booted from.

	Attacher xio.Attacher // Devices attached by iomap.
	Slave    *xio.Slave   // Master link, when running as a device.
}

// NewEmulator boots a new machine from an image.
func NewEmulator(img *image.Image) (emu *Emulator) {
	emu = &Emulator{
		Cpu:   img.NewCpu(),
		Image: img,
	}

	emu.Attacher.Entries = img.Devices
	emu.Cpu.IoMap = &emu.Attacher
	emu.Cpu.Watch = emu

	return
}

var _ cpu.RamWatcher = (*Emulator)(nil)

// RamWritten forwards a RAM store to the devices and to the master.
func (emu *Emulator) RamWritten(addr cpu.Word, value cpu.Word) {
	emu.Attacher.RamWritten(addr, value)
	if emu.Slave != nil {
		emu.Slave.RamWritten(addr, value)
	}
}

// Close the emulator, its pipes and its devices.
func (emu *Emulator) Close() (err error) {
	if emu.Slave != nil {
		err = emu.Slave.Close()
		emu.Slave = nil
	}

	err = errors.Join(err, emu.Attacher.Close())

	return
}

// Reload boots the machine again from an image of the same geometry.
// Attached devices stay attached.
func (emu *Emulator) Reload(img *image.Image) (err error) {
	if img.Geometry != emu.Cpu.Geometry {
		err = ErrGeometry
		return
	}

	img.Boot(emu.Cpu)
	emu.Image = img
	emu.Attacher.Entries = img.Devices

	return
}

// ExitCode is the low digit group of the instruction register.
func (emu *Emulator) ExitCode() cpu.Word {
	return emu.Cpu.Lo(emu.Cpu.Ins)
}

// Tick applies pending device messages, then executes a single
// micro-operation. done is set once the machine has stopped, or once the
// master of a device has gone away.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Attacher.Verbose = emu.Verbose

	pc := emu.Cpu.ProgramCounter
	defer func() {
		if err != nil {
			done = true
			err = &ErrRuntime{ProgramCounter: pc, Err: err}
		}
	}()

	if emu.Slave != nil {
		err = emu.Slave.Sync(emu.Cpu)
		if errors.Is(err, xio.ErrHangup) {
			err = nil
			done = true
			return
		}
		if err != nil {
			return
		}
	}

	emu.Attacher.Sync(emu.Cpu)

	more, err := emu.Cpu.Tick()
	done = !more

	return
}

// Instruction ticks until the microcode cursor is back at address 1, the
// fetch cycle of the next macro-instruction.
func (emu *Emulator) Instruction() (done bool, err error) {
	for {
		done, err = emu.Tick()
		if done || err != nil {
			return
		}
		if emu.Cpu.McAddr == 1 {
			return
		}
	}
}

// Run ticks until the machine stops.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		done, err = emu.Tick()
	}

	return
}

// String renders the machine state: buses, a RAM window around the address
// bus, registers, a microcode window around the cursor, the update register
// and the accumulator.
func (emu *Emulator) String() string {
	cp := emu.Cpu
	var text strings.Builder

	fmt.Fprintf(&text, "==== Buses ====\n")
	fmt.Fprintf(&text, "Addr: %d\n", cp.AddressBus)
	fmt.Fprintf(&text, "Data: %d\n", cp.DataBus)

	fmt.Fprintf(&text, "===== RAM =====\n")
	for i := -RAM_WINDOW; i <= RAM_WINDOW; i++ {
		marker := "  "
		if i == 0 {
			marker = "> "
		}
		addr := cp.AddressBus + cpu.Word(i)
		if addr >= cpu.Word(len(cp.Ram)) {
			fmt.Fprintf(&text, "%s---\n", marker)
			continue
		}
		fmt.Fprintf(&text, "%s%d: %d\n", marker, addr, cp.Ram[addr])
	}

	fmt.Fprintf(&text, "===== CPU =====\n")
	fmt.Fprintf(&text, "INS: %d\n", cp.Ins)
	fmt.Fprintf(&text, "PC:  %d\n", cp.ProgramCounter)

	fmt.Fprintf(&text, "== MicroCode ==\n")
	for i := -MC_WINDOW; i <= MC_WINDOW; i++ {
		marker := "  "
		if i == 0 {
			marker = "> "
		}
		addr := cp.McAddr + cpu.Word(i)
		if addr >= cpu.Word(len(cp.Microcode)) {
			fmt.Fprintf(&text, "%s---\n", marker)
			continue
		}
		op := cp.Microcode[addr]
		line := fmt.Sprintf("%s%d: %d", marker, addr, op)
		if op.Valid() {
			line += " " + op.Mnemonic()
		}
		if opcode, ok := cp.Symbol.Reverse(addr); ok {
			line += fmt.Sprintf(" (ASM %d)", opcode)
		}
		fmt.Fprintf(&text, "%s\n", line)
	}

	fmt.Fprintf(&text, "===== MUR =====\n")
	fmt.Fprintf(&text, "Addr: %d\n", cp.Mur.Address)
	if cp.Mur.MicroOp.Valid() {
		fmt.Fprintf(&text, "MOP:  %d %s\n", cp.Mur.MicroOp, cp.Mur.MicroOp.Mnemonic())
	} else {
		fmt.Fprintf(&text, "MOP:  %d\n", cp.Mur.MicroOp)
	}
	fmt.Fprintf(&text, "Asm:  %d\n", cp.Mur.Symbol)

	fmt.Fprintf(&text, "===== ALU =====\n")
	fmt.Fprintf(&text, "Acc: %d\n", cp.Acc)

	fmt.Fprintf(&text, "Ticks: %s\n", translate.Decimal(uint64(cp.Ticks)))

	return text.String()
}
