package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommit(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name      string
		mur       Mur
		microcode map[Word]MicroOp
		symbol    map[Word]Word
	}){
		{"code_only", Mur{Address: 10, MicroOp: MC_PC_INC}, map[Word]MicroOp{10: MC_PC_INC}, map[Word]Word{}},
		{"code_and_symbol", Mur{Address: 20, MicroOp: MC_ACC_0, Symbol: 4}, map[Word]MicroOp{20: MC_ACC_0}, map[Word]Word{4: 20}},
		{"sentinel_symbol", Mur{Address: 30, MicroOp: 999, Symbol: 5}, map[Word]MicroOp{}, map[Word]Word{5: 30}},
		{"sentinel_bad_addr", Mur{Address: 5000, MicroOp: 999, Symbol: 6}, map[Word]MicroOp{}, map[Word]Word{6: 5000}},
		{"nop_to_zero", Mur{}, map[Word]MicroOp{0: MC_NOP}, map[Word]Word{}},
	}

	for _, entry := range table {
		cpu := NewCpu(JohnnyGeometry())
		for n := range cpu.Microcode {
			cpu.Microcode[n] = MC_STOP
		}
		cpu.Mur = entry.mur

		err := cpu.Commit()
		assert.NoError(err, entry.name)
		assert.Equal(Mur{}, cpu.Mur, entry.name)

		for n, op := range cpu.Microcode {
			expect, ok := entry.microcode[Word(n)]
			if !ok {
				expect = MC_STOP
			}
			assert.Equal(expect, op, "%v: microcode %d", entry.name, n)
		}
		assert.Equal(SymbolTable(entry.symbol), cpu.Symbol, entry.name)
	}
}

func TestCommitOverwrite(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(JohnnyGeometry())
	cpu.Mur = Mur{Address: 10, MicroOp: 999, Symbol: 2}
	assert.NoError(cpu.Commit())
	cpu.Mur = Mur{Address: 12, MicroOp: 999, Symbol: 2}
	assert.NoError(cpu.Commit())

	assert.Equal(Word(12), cpu.Symbol.Lookup(2))
}

func TestCommitRange(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(JohnnyGeometry())
	cpu.Mur = Mur{Address: 200, MicroOp: MC_NOP, Symbol: 3}

	err := cpu.Commit()
	assert.ErrorIs(err, ErrMcAddress)
	assert.Equal(Mur{}, cpu.Mur)
	assert.Empty(cpu.Symbol)
}

func TestMurMicroOps(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(JohnnyGeometry())
	cpu.Microcode[0] = MC_INS_MUR1
	cpu.Microcode[1] = MC_DB_INS
	cpu.Microcode[2] = MC_INS_MUR2
	cpu.Microcode[3] = MC_MUR_MC

	// Install opcode 7 at microcode address 150 with acc_inc there.
	cpu.Ins = 150
	more, err := cpu.Tick()
	assert.NoError(err)
	assert.True(more)
	assert.Equal(Word(150), cpu.Mur.Address)

	cpu.DataBus = 7_016
	_, err = cpu.Tick()
	assert.NoError(err)
	_, err = cpu.Tick()
	assert.NoError(err)
	assert.Equal(Mur{Address: 150, MicroOp: MC_ACC_INC, Symbol: 7}, cpu.Mur)

	_, err = cpu.Tick()
	assert.NoError(err)
	assert.Equal(Mur{}, cpu.Mur)
	assert.Equal(MC_ACC_INC, cpu.Microcode[150])
	assert.Equal(Word(150), cpu.Symbol.Lookup(7))
	assert.Equal(Word(4), cpu.McAddr)
}
