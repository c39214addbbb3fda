// Package cpu implements the XJX decimal microcode machine.
//
// A machine word is a non-negative decimal number split into a "hi" digit
// group (the opcode of an instruction word) and a "lo" digit group (its
// operand or address). The geometry of the machine is fixed by three
// limits: hi_max, lo_max and mc_addr_max.
//
// The CPU executes one micro-operation per tick from a mutable microcode
// store. Macro-instructions are dispatched through a symbol table that maps
// the hi digits of the instruction register to a microcode entry point, and
// running microcode may rewrite both the store and the symbol table through
// the microcode update register (MUR).
package cpu
