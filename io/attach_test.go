package io

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/ezrec/xjx/cpu"
)

const testDeviceEnv = "XJX_IO_TEST_DEVICE"

func TestMain(m *testing.M) {
	if mode := os.Getenv(testDeviceEnv); mode != "" {
		os.Exit(testDevice(mode, os.Args[1:]))
	}

	os.Exit(m.Run())
}

// testDevice runs when the test binary is spawned as a device.
//
//	echo: serve window 100..109, answer "a v" with "a v+1"
//	bad:  send a malformed handshake
//	exit: quit without opening the pipes
func testDevice(mode string, args []string) int {
	if mode == "exit" {
		return 3
	}

	if len(args) != 2 {
		return 2
	}

	if mode == "bad" {
		in, err := OpenPipe(args[0], unix.O_RDONLY)
		if err != nil {
			return 1
		}
		out, err := OpenPipe(args[1], unix.O_WRONLY)
		if err != nil {
			return 1
		}
		WriteFrame(out, []byte("1 2 3"))
		var buf [1]byte
		in.Read(buf[:])
		return 0
	}

	slave, err := Serve(args[0], args[1], 100, 109)
	if err != nil {
		return 1
	}
	defer slave.Close()

	for {
		payload, err := ReadFrame(slave.In)
		if errors.Is(err, ErrWouldBlock) {
			time.Sleep(time.Millisecond)
			continue
		}
		if err != nil {
			return 0
		}
		addr, value, ok := parsePair(payload)
		if ok {
			WriteFrame(slave.Out, formatPair(addr, value+1))
		}
	}
}

func newTestAttacher(t *testing.T, mode string) *Attacher {
	return &Attacher{
		Dir:     t.TempDir(),
		Entries: []Entry{{os.Args[0], PIPE_IN, PIPE_OUT}},
		Env:     []string{testDeviceEnv + "=" + mode},
	}
}

func TestAttachUnknownEntry(t *testing.T) {
	assert := assert.New(t)

	at := newTestAttacher(t, "echo")
	cp := cpu.NewCpu(cpu.JohnnyGeometry())
	cp.IoMap = at

	mapping, err := at.Attach(1, 300)
	assert.NoError(err)
	assert.Nil(mapping)

	cp.Ram[300] = 7
	cp.Microcode[0] = cpu.MC_IOMAP
	cp.Ins = 24_300
	more, err := cp.Tick()
	assert.NoError(err)
	assert.True(more)

	assert.Empty(at.Mappings)
	assert.NoError(at.Close())

	entries, err := os.ReadDir(at.Dir)
	assert.NoError(err)
	assert.Empty(entries)
}

func TestAttachEcho(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	at := newTestAttacher(t, "echo")
	cp := cpu.NewCpu(cpu.JohnnyGeometry())
	cp.IoMap = at
	cp.Watch = at

	// Entry 0 stored at 300 maps the device window 100..109 at 300..309.
	cp.Ram[300] = 0
	cp.Microcode[0] = cpu.MC_IOMAP
	cp.Ins = 24_300
	_, err := cp.Tick()
	require.NoError(err)
	require.Len(at.Mappings, 1)

	mapping := at.Mappings[0]
	assert.Equal(0, mapping.Entry)
	assert.Equal(cpu.Word(300), mapping.MinAddr)
	assert.Equal(cpu.Word(309), mapping.MaxAddr)
	assert.Equal(int64(-200), mapping.Offset)

	fifos, err := filepath.Glob(filepath.Join(at.Dir, "*_*_0"))
	assert.NoError(err)
	assert.Len(fifos, 2)

	// A store to 301 reaches the device as 101, which echoes 101 + 1.
	at.RamWritten(301, 5)
	assert.Eventually(func() bool {
		at.Sync(cp)
		return cp.Ram[301] == 6
	}, 5*time.Second, 5*time.Millisecond)

	assert.NoError(at.Close())
	assert.Empty(at.Mappings)
}

func TestAttachBadHandshake(t *testing.T) {
	assert := assert.New(t)

	at := newTestAttacher(t, "bad")

	mapping, err := at.Attach(0, 300)
	assert.ErrorIs(err, ErrHandshake)
	assert.Nil(mapping)
	assert.Empty(at.Mappings)

	var attach *ErrAttach
	assert.True(errors.As(err, &attach))
	assert.Equal(0, attach.Entry)

	assert.NoError(at.Close())
}

func TestAttachChildExit(t *testing.T) {
	assert := assert.New(t)

	at := newTestAttacher(t, "exit")

	mapping, err := at.Attach(0, 300)
	assert.ErrorIs(err, ErrChildExited)
	assert.Nil(mapping)
	assert.Empty(at.Mappings)

	assert.NoError(at.Close())
}

func TestAttachNoCommand(t *testing.T) {
	assert := assert.New(t)

	at := &Attacher{
		Dir:     t.TempDir(),
		Entries: []Entry{{filepath.Join(t.TempDir(), "missing")}},
	}

	mapping, err := at.Attach(0, 0)
	assert.Error(err)
	assert.Nil(mapping)
	assert.Empty(at.Mappings)
	assert.NoError(at.Close())
}
