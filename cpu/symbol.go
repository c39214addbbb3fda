package cpu

import (
	"maps"
	"slices"
)

// SymbolTable maps an opcode (the hi digits of an instruction word) to
// the microcode address of its implementation.
type SymbolTable map[Word]Word

// Lookup resolves an opcode. Unknown opcodes resolve to microcode address 0.
func (st SymbolTable) Lookup(symbol Word) Word {
	return st[symbol]
}

// Reverse finds the opcode whose entry point is addr, if any. When several
// opcodes share an entry point the smallest one is reported.
func (st SymbolTable) Reverse(addr Word) (symbol Word, ok bool) {
	for _, key := range slices.Sorted(maps.Keys(st)) {
		if st[key] == addr {
			return key, true
		}
	}

	return
}
