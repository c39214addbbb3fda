package cpu

import (
	"iter"
)

// MicroOp is a microcode store cell. Any word may be stored; only the
// codes below may be executed.
type MicroOp Word

//go:generate go tool stringer -linecomment -type=MicroOp
const (
	MC_NOP         = MicroOp(0)  // nop
	MC_DB_RAM      = MicroOp(1)  // db_ram
	MC_RAM_DB      = MicroOp(2)  // ram_db
	MC_DB_INS      = MicroOp(3)  // db_ins
	MC_INS_AB      = MicroOp(4)  // ins_ab
	MC_INS_MC      = MicroOp(5)  // ins_mc
	MC_UNUSED      = MicroOp(6)  // unused
	MC_MC_0        = MicroOp(7)  // mc_0
	MC_PC_AB       = MicroOp(8)  // pc_ab
	MC_PC_INC      = MicroOp(9)  // pc_inc
	MC_IF_0_PC_INC = MicroOp(10) // if_0_pc_inc
	MC_INS_PC      = MicroOp(11) // ins_pc
	MC_ACC_0       = MicroOp(12) // acc_0
	MC_PLUS        = MicroOp(13) // plus
	MC_MINUS       = MicroOp(14) // minus
	MC_ACC_DB      = MicroOp(15) // acc_db
	MC_ACC_INC     = MicroOp(16) // acc_inc
	MC_ACC_DEC     = MicroOp(17) // acc_dec
	MC_DB_ACC      = MicroOp(18) // db_acc
	MC_STOP        = MicroOp(19) // stop

	MC_INS_DB   = MicroOp(20) // ins_db
	MC_INS_MUR1 = MicroOp(21) // ins_mur1
	MC_INS_MUR2 = MicroOp(22) // ins_mur2
	MC_MUR_MC   = MicroOp(23) // mur_mc
	MC_IOMAP    = MicroOp(24) // iomap
)

var mnemonic = map[MicroOp]string{
	MC_NOP:         "nop",
	MC_DB_RAM:      "db -> ram",
	MC_RAM_DB:      "ram -> db",
	MC_DB_INS:      "db -> ins",
	MC_INS_AB:      "ins -> ab",
	MC_INS_MC:      "ins -> mc",
	MC_MC_0:        "mc = 0",
	MC_PC_AB:       "pc -> ab",
	MC_PC_INC:      "pc++",
	MC_IF_0_PC_INC: "=0:pc++",
	MC_INS_PC:      "ins -> pc",
	MC_ACC_0:       "acc = 0",
	MC_PLUS:        "acc += db",
	MC_MINUS:       "acc -= db",
	MC_ACC_DB:      "acc -> db",
	MC_ACC_INC:     "acc++",
	MC_ACC_DEC:     "acc--",
	MC_DB_ACC:      "db -> acc",
	MC_STOP:        "stop",
	MC_INS_DB:      "ins -> db",
	MC_INS_MUR1:    "ins -> mur (mc_addr)",
	MC_INS_MUR2:    "ins -> mur (mop, asm_ref)",
	MC_MUR_MC:      "mur -> mc",
	MC_IOMAP:       "iomap",
}

// Valid is true for micro-operations the CPU can execute.
func (op MicroOp) Valid() (ok bool) {
	_, ok = mnemonic[op]
	return
}

// Mnemonic returns the register-transfer notation of the micro-operation,
// or the empty string for an invalid code.
func (op MicroOp) Mnemonic() string {
	return mnemonic[op]
}

// MicroOps iterates over the name and code of every executable
// micro-operation, in code order.
func MicroOps() iter.Seq2[string, MicroOp] {
	return func(yield func(string, MicroOp) bool) {
		for op := MC_NOP; op <= MC_IOMAP; op++ {
			if !op.Valid() {
				continue
			}
			if !yield(op.String(), op) {
				return
			}
		}
	}
}

// ParseMicroOp finds an executable micro-operation by name.
func ParseMicroOp(name string) (op MicroOp, ok bool) {
	for key, value := range MicroOps() {
		if key == name {
			return value, true
		}
	}

	return
}
