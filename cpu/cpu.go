// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"log"
)

// IoMapper services the iomap micro-operation. addr is the RAM address
// named by the instruction register; it holds the device entry index and is
// the first address of the window to map.
type IoMapper interface {
	IoMap(cpu *Cpu, addr Word)
}

// RamWatcher is told about every RAM store made by microcode.
type RamWatcher interface {
	RamWritten(addr Word, value Word)
}

// Cpu is the simulation context of an XJX machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Geometry // Sizing limits, fixed at creation.

	AddressBus     Word // Address bus.
	DataBus        Word // Data bus.
	Ins            Word // Instruction register.
	ProgramCounter Word // Program counter.
	Acc            Word // Accumulator.

	McAddr    Word        // Microcode cursor.
	Microcode []MicroOp   // Microcode store.
	Symbol    SymbolTable // Opcode to microcode entry point.
	Mur       Mur         // Microcode update register.

	Ram []Word // Main memory, addressed 0..LoMax.

	IoMap IoMapper   // Handler for iomap; nil makes iomap a no-op.
	Watch RamWatcher // Optional observer of RAM stores.

	Ticks int // Micro-operations executed since reset.
}

// NewCpu creates a machine of the given geometry with zeroed memories.
func NewCpu(geom Geometry) (cpu *Cpu) {
	cpu = &Cpu{
		Geometry:  geom,
		Microcode: make([]MicroOp, geom.McAddrMax+1),
		Symbol:    SymbolTable{},
		Ram:       make([]Word, geom.LoMax+1),
	}

	return
}

// Reset clears the registers, the update register and the tick counter.
// RAM, microcode and the symbol table are left as they are.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.AddressBus = 0
	cpu.DataBus = 0
	cpu.Ins = 0
	cpu.ProgramCounter = 0
	cpu.Acc = 0
	cpu.McAddr = 0
	cpu.Mur = Mur{}
	cpu.Ticks = 0
}

// String returns the current register state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []struct {
		name  string
		value Word
	}{
		{"ab", cpu.AddressBus},
		{"db", cpu.DataBus},
		{"ins", cpu.Ins},
		{"pc", cpu.ProgramCounter},
		{"acc", cpu.Acc},
		{"mc", cpu.McAddr},
	}
	for _, reg := range regs {
		text += fmt.Sprintf("% 5s: %d\n", reg.name, reg.value)
	}
	text += fmt.Sprintf("% 5s: %d %v %d\n", "mur", cpu.Mur.Address, cpu.Mur.MicroOp, cpu.Mur.Symbol)

	return
}

// Tick executes the micro-operation at the microcode cursor.
// more is false once the machine has executed stop.
func (cpu *Cpu) Tick() (more bool, err error) {
	mcAddr := cpu.McAddr
	defer func() {
		if err != nil {
			err = &ErrTick{McAddr: mcAddr, Err: err}
		}
	}()

	if cpu.McAddr >= Word(len(cpu.Microcode)) {
		err = ErrMcAddress
		return
	}

	more, err = cpu.Execute(cpu.Microcode[cpu.McAddr])
	if err != nil {
		return
	}

	cpu.McAddr++
	cpu.Ticks++

	return
}

// jump sets the cursor so that the post-increment of Tick lands on target.
// The cursor is unsigned: jumping to 0 stores the wrapped value of -1.
func (cpu *Cpu) jump(target Word) {
	cpu.McAddr = target - 1
}

// ramCheck validates a RAM address.
func (cpu *Cpu) ramCheck(addr Word) (err error) {
	if addr >= Word(len(cpu.Ram)) {
		err = ErrRamAddress
	}
	return
}

// accCheck clamps the accumulator to the largest representable word.
func (cpu *Cpu) accCheck() {
	limit := cpu.Max()
	if cpu.Acc > limit {
		cpu.Acc = limit
	}
}

// accAdd adds to the accumulator, saturating at the largest word.
func (cpu *Cpu) accAdd(value Word) {
	limit := cpu.Max()
	if value > limit || cpu.Acc > limit-value {
		cpu.Acc = limit
		return
	}
	cpu.Acc += value
}

// accSub subtracts from the accumulator, saturating at 0.
func (cpu *Cpu) accSub(value Word) {
	if value >= cpu.Acc {
		cpu.Acc = 0
		return
	}
	cpu.Acc -= value
	cpu.accCheck()
}

// Execute executes a single micro-operation, without advancing the cursor.
func (cpu *Cpu) Execute(op MicroOp) (more bool, err error) {
	defer func() {
		if err != nil {
			more = false
			err = errors.Join(ErrMicroOp(op), err)
		}
	}()

	if cpu.Verbose {
		log.Printf("%03d: %v", cpu.McAddr, op)
	}

	more = true

	switch op {
	case MC_NOP:
	case MC_DB_RAM:
		err = cpu.ramCheck(cpu.AddressBus)
		if err != nil {
			return
		}
		cpu.Ram[cpu.AddressBus] = cpu.DataBus
		if cpu.Watch != nil {
			cpu.Watch.RamWritten(cpu.AddressBus, cpu.DataBus)
		}
	case MC_RAM_DB:
		err = cpu.ramCheck(cpu.AddressBus)
		if err != nil {
			return
		}
		cpu.DataBus = cpu.Ram[cpu.AddressBus]
	case MC_DB_INS:
		cpu.Ins = cpu.DataBus
	case MC_INS_AB:
		cpu.AddressBus = cpu.Lo(cpu.Ins)
	case MC_INS_MC:
		cpu.jump(cpu.Symbol.Lookup(cpu.Hi(cpu.Ins)))
	case MC_MC_0:
		cpu.jump(0)
	case MC_PC_AB:
		cpu.AddressBus = cpu.ProgramCounter
	case MC_PC_INC:
		cpu.ProgramCounter++
	case MC_IF_0_PC_INC:
		if cpu.Acc == 0 {
			cpu.ProgramCounter++
		}
	case MC_INS_PC:
		cpu.ProgramCounter = cpu.Lo(cpu.Ins)
	case MC_ACC_0:
		cpu.Acc = 0
	case MC_PLUS:
		cpu.accAdd(cpu.DataBus)
	case MC_MINUS:
		cpu.accSub(cpu.DataBus)
	case MC_ACC_DB:
		cpu.DataBus = cpu.Acc
	case MC_ACC_INC:
		cpu.accAdd(1)
	case MC_ACC_DEC:
		cpu.accSub(1)
	case MC_DB_ACC:
		cpu.Acc = cpu.DataBus
		cpu.accCheck()
	case MC_STOP:
		more = false
	case MC_INS_DB:
		cpu.DataBus = cpu.Lo(cpu.Ins)
	case MC_INS_MUR1:
		cpu.Mur.Address = cpu.Lo(cpu.Ins)
	case MC_INS_MUR2:
		cpu.Mur.MicroOp = MicroOp(cpu.Lo(cpu.Ins))
		cpu.Mur.Symbol = cpu.Hi(cpu.Ins)
	case MC_MUR_MC:
		err = cpu.Commit()
	case MC_IOMAP:
		if cpu.IoMap != nil {
			cpu.IoMap.IoMap(cpu, cpu.Lo(cpu.Ins))
		}
	default:
		err = ErrMicroOpUnknown
	}

	return
}
