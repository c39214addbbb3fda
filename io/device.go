package io

import (
	"bytes"
	"io"
	"strconv"

	"github.com/ezrec/xjx/cpu"
)

// Placeholder tokens of a device entry command, replaced by the pipe
// paths at spawn time. PIPE_IN is the device's input (master to device),
// PIPE_OUT its output (device to master).
const (
	PIPE_IN  = "@PIPE_IN@"
	PIPE_OUT = "@PIPE_OUT@"
)

// Entry is the argv template used to launch a device.
type Entry []string

// Command substitutes the pipe paths into the template.
func (entry Entry) Command(pipeIn, pipeOut string) (argv []string) {
	argv = make([]string, len(entry))
	for n, arg := range entry {
		switch arg {
		case PIPE_IN:
			argv[n] = pipeIn
		case PIPE_OUT:
			argv[n] = pipeOut
		default:
			argv[n] = arg
		}
	}

	return
}

// Mapping is a window of master RAM shared with an attached device.
//
// Master address a in [MinAddr, MaxAddr] is device address a + Offset.
type Mapping struct {
	Entry   int      // Device entry index.
	MinAddr cpu.Word // First mapped master address.
	MaxAddr cpu.Word // Last mapped master address.
	Offset  int64    // Device address minus master address.

	In  io.Reader // Messages from the device; non-blocking.
	Out io.Writer // Messages to the device.
}

// Contains is true when the master address is inside the window.
func (mapping *Mapping) Contains(addr cpu.Word) bool {
	return addr >= mapping.MinAddr && addr <= mapping.MaxAddr
}

// ToDevice converts a master address to the device address space.
func (mapping *Mapping) ToDevice(addr cpu.Word) cpu.Word {
	return cpu.Word(int64(addr) + mapping.Offset)
}

// FromDevice converts a device address to the master address space.
// ok is false when the result falls outside the window.
func (mapping *Mapping) FromDevice(devAddr cpu.Word) (addr cpu.Word, ok bool) {
	local := int64(devAddr) - mapping.Offset
	if local < 0 {
		return
	}

	addr = cpu.Word(local)
	ok = mapping.Contains(addr)
	return
}

// formatPair encodes two words as "a b".
func formatPair(a, b cpu.Word) []byte {
	buf := strconv.AppendUint(nil, uint64(a), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendUint(buf, uint64(b), 10)
	return buf
}

// parsePair decodes "a b"; any other shape is an error.
func parsePair(payload []byte) (a, b cpu.Word, ok bool) {
	parts := bytes.Split(payload, []byte(" "))
	if len(parts) != 2 {
		return
	}

	va, err := strconv.ParseUint(string(parts[0]), 10, 64)
	if err != nil {
		return
	}
	vb, err := strconv.ParseUint(string(parts[1]), 10, 64)
	if err != nil {
		return
	}

	return cpu.Word(va), cpu.Word(vb), true
}

// FormatWindow encodes the handshake announcing an address window.
func FormatWindow(minAddr, maxAddr cpu.Word) []byte {
	return formatPair(minAddr, maxAddr)
}

// ParseWindow decodes a handshake. It must be exactly two decimal numbers
// separated by one space, the first no larger than the second.
func ParseWindow(payload []byte) (minAddr, maxAddr cpu.Word, err error) {
	minAddr, maxAddr, ok := parsePair(payload)
	if !ok || minAddr > maxAddr {
		err = ErrHandshake
	}
	return
}
