package io

import (
	"errors"
	"io"
	"log"

	"golang.org/x/sys/unix"

	"github.com/ezrec/xjx/cpu"
)

// Slave is the device side of the attachment protocol.
type Slave struct {
	Verbose bool // If set, logs dropped messages.

	MinAddr cpu.Word // First shared address.
	MaxAddr cpu.Word // Last shared address.

	In  io.Reader // Messages from the master; non-blocking.
	Out io.Writer // Messages to the master.
}

var _ cpu.RamWatcher = (*Slave)(nil)

// Serve opens the pipes handed to a device process, in first and out
// second, and announces the shared window [minAddr, maxAddr].
func Serve(pipeIn, pipeOut string, minAddr, maxAddr cpu.Word) (slave *Slave, err error) {
	in, err := OpenPipe(pipeIn, unix.O_RDONLY)
	if err != nil {
		return
	}

	out, err := OpenPipe(pipeOut, unix.O_WRONLY)
	if err != nil {
		in.Close()
		return
	}

	err = WriteFrame(out, FormatWindow(minAddr, maxAddr))
	if err == nil {
		err = in.SetNonblock(true)
	}
	if err == nil {
		err = out.SetNonblock(true)
	}
	if err != nil {
		in.Close()
		out.Close()
		return
	}

	slave = &Slave{
		MinAddr: minAddr,
		MaxAddr: maxAddr,
		In:      in,
		Out:     out,
	}

	return
}

// Contains is true when the address is inside the shared window.
func (slave *Slave) Contains(addr cpu.Word) bool {
	return addr >= slave.MinAddr && addr <= slave.MaxAddr
}

// Sync applies every pending master message to RAM. Messages outside the
// shared window or outside RAM are dropped. Once the master has hung up,
// Sync returns ErrHangup.
func (slave *Slave) Sync(cp *cpu.Cpu) (err error) {
	for {
		var payload []byte
		payload, err = ReadFrame(slave.In)
		switch {
		case errors.Is(err, ErrWouldBlock):
			return nil
		case errors.Is(err, io.EOF):
			return ErrHangup
		case err != nil:
			return
		}

		addr, value, ok := parsePair(payload)
		if !ok || !slave.Contains(addr) || addr >= cpu.Word(len(cp.Ram)) {
			if slave.Verbose {
				log.Printf("io: slave: dropped %q", payload)
			}
			continue
		}

		cp.Ram[addr] = value
	}
}

// RamWritten forwards a store inside the shared window to the master. If
// the master is not keeping up the message is dropped.
func (slave *Slave) RamWritten(addr cpu.Word, value cpu.Word) {
	if !slave.Contains(addr) {
		return
	}

	err := WriteFrame(slave.Out, formatPair(addr, value))
	if err != nil && slave.Verbose {
		log.Printf("io: slave: %v", err)
	}
}

// Close closes both pipes.
func (slave *Slave) Close() (err error) {
	if closer, ok := slave.In.(io.Closer); ok {
		err = closer.Close()
	}
	if closer, ok := slave.Out.(io.Closer); ok {
		err = errors.Join(err, closer.Close())
	}

	return
}
