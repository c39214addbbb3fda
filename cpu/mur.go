package cpu

import (
	"log"
)

// Mur is the microcode update register, staging one edit of the microcode
// store and the symbol table.
type Mur struct {
	Address Word    // Microcode address to write.
	MicroOp MicroOp // Micro-operation to store; lo_max means "leave as is".
	Symbol  Word    // Opcode to bind to Address; 0 means "no binding".
}

// Commit applies the staged edit and clears the update register.
//
// The microcode store is written only when the staged micro-operation
// differs from the lo_max sentinel, and the symbol table only when the
// staged symbol is non-zero. The register is cleared in every case,
// including when the staged address is out of range.
func (cpu *Cpu) Commit() (err error) {
	mur := cpu.Mur
	cpu.Mur = Mur{}

	if cpu.Verbose {
		log.Printf("cpu: mur commit addr:%d op:%v sym:%d", mur.Address, mur.MicroOp, mur.Symbol)
	}

	if mur.MicroOp != MicroOp(cpu.LoMax) {
		if mur.Address >= Word(len(cpu.Microcode)) {
			err = ErrMcAddress
			return
		}
		cpu.Microcode[mur.Address] = mur.MicroOp
	}

	if mur.Symbol != 0 {
		cpu.Symbol[mur.Symbol] = mur.Address
	}

	return
}
