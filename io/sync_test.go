package io

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/ezrec/xjx/cpu"
)

func TestAttacherSync(t *testing.T) {
	assert := assert.New(t)

	cp := cpu.NewCpu(cpu.JohnnyGeometry())

	in := &bytes.Buffer{}
	out := &bytes.Buffer{}
	at := &Attacher{
		Mappings: []*Mapping{
			{MinAddr: 300, MaxAddr: 309, Offset: -200, In: in, Out: out},
		},
	}

	WriteFrame(in, []byte("105 42"))    // inside: master 305
	WriteFrame(in, []byte("110 7"))     // outside the window
	WriteFrame(in, []byte("garbage"))   // malformed
	WriteFrame(in, []byte("100 1 2"))   // malformed
	WriteFrame(in, []byte("109 19999")) // inside: master 309

	at.Sync(cp)

	assert.Equal(cpu.Word(42), cp.Ram[305])
	assert.Equal(cpu.Word(19999), cp.Ram[309])
	assert.Equal(cpu.Word(0), cp.Ram[310])
	assert.Equal(cpu.Word(0), cp.Ram[100])
	assert.Equal(0, in.Len())

	// Nothing pending is not an error.
	at.Sync(cp)

	at.RamWritten(299, 1)
	at.RamWritten(300, 2)
	at.RamWritten(309, 3)
	at.RamWritten(310, 4)

	var got []string
	for out.Len() > 0 {
		payload, err := ReadFrame(out)
		assert.NoError(err)
		got = append(got, string(payload))
	}
	assert.Equal([]string{"100 2", "109 3"}, got)
}

func TestAttacherWatch(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	at := &Attacher{
		Mappings: []*Mapping{
			{MinAddr: 10, MaxAddr: 12, Offset: 0, In: &bytes.Buffer{}, Out: out},
		},
	}

	cp := cpu.NewCpu(cpu.JohnnyGeometry())
	cp.Watch = at
	cp.Microcode[0] = cpu.MC_DB_RAM
	cp.AddressBus = 11
	cp.DataBus = 77

	_, err := cp.Tick()
	assert.NoError(err)

	payload, err := ReadFrame(out)
	assert.NoError(err)
	assert.Equal("11 77", string(payload))
}

func TestAttacherWatchFull(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "1_to_0")
	require.NoError(MakeFifo(path))

	// A device that never reads its pipe.
	in, err := OpenPipe(path, unix.O_RDONLY|unix.O_NONBLOCK)
	require.NoError(err)
	defer in.Close()
	out, err := OpenPipe(path, unix.O_WRONLY)
	require.NoError(err)
	defer out.Close()
	require.NoError(out.SetNonblock(true))

	for err == nil {
		err = WriteFrame(out, []byte("0 0"))
	}
	assert.ErrorIs(err, ErrWouldBlock)

	at := &Attacher{
		Mappings: []*Mapping{
			{MinAddr: 0, MaxAddr: 9, In: &bytes.Buffer{}, Out: out},
		},
	}

	// Stores to a full pipe are dropped, not waited on.
	for n := range 100 {
		at.RamWritten(cpu.Word(n%10), cpu.Word(n))
	}

	// Only whole frames went out.
	payload, err := ReadFrame(in)
	assert.NoError(err)
	assert.Equal("0 0", string(payload))
}

func TestSlaveSync(t *testing.T) {
	assert := assert.New(t)

	in := &bytes.Buffer{}
	out := &bytes.Buffer{}
	slave := &Slave{MinAddr: 100, MaxAddr: 109, In: in, Out: out}

	cp := cpu.NewCpu(cpu.JohnnyGeometry())

	WriteFrame(in, []byte("105 42"))
	WriteFrame(in, []byte("99 1"))
	WriteFrame(in, []byte("x y"))

	// A buffer reads io.EOF once drained, which is a hang up.
	err := slave.Sync(cp)
	assert.ErrorIs(err, ErrHangup)
	assert.Equal(cpu.Word(42), cp.Ram[105])
	assert.Equal(cpu.Word(0), cp.Ram[99])

	slave.RamWritten(99, 5)
	slave.RamWritten(100, 6)

	payload, err := ReadFrame(out)
	assert.NoError(err)
	assert.Equal("100 6", string(payload))
	assert.Equal(0, out.Len())
}
