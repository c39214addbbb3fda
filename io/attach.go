// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package io

import (
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/ezrec/xjx/cpu"
)

// FIFO_DIR is the default directory for device pipes, relative to the
// working directory.
const FIFO_DIR = ".xjx_fifos"

// child is a spawned device process.
type child struct {
	cmd  *exec.Cmd
	done chan struct{} // Closed once the process has been reaped.
	err  error
}

// Attacher is the master side of the device attachment protocol. It
// serves the iomap micro-operation of a Cpu.
type Attacher struct {
	Verbose bool // If set, logs attachment progress and failures.

	Dir     string    // Pipe directory; FIFO_DIR if empty.
	Entries []Entry   // Device launch templates, by index.
	Env     []string  // Extra environment for device processes.
	Stdout  io.Writer // Device standard output; discarded if nil.
	Stderr  io.Writer // Device standard error; discarded if nil.

	Mappings []*Mapping // Attached devices.

	children []*child
}

var _ cpu.IoMapper = (*Attacher)(nil)

// IoMap attaches the device whose entry index is stored at RAM address
// addr, mapping its window to start at addr. Failures leave the machine
// and the mapping list untouched and are only reported in verbose mode.
func (at *Attacher) IoMap(cp *cpu.Cpu, addr cpu.Word) {
	if addr >= cpu.Word(len(cp.Ram)) {
		return
	}

	_, err := at.Attach(cp.Ram[addr], addr)
	if err != nil && at.Verbose {
		log.Printf("io: %v", err)
	}
}

// pipePaths returns the from-device and to-device pipe paths of a session.
func (at *Attacher) pipePaths(session uint32, entry int) (from, to string) {
	dir := at.Dir
	if dir == "" {
		dir = FIFO_DIR
	}

	from = filepath.Join(dir, fmt.Sprintf("%d_from_%d", session, entry))
	to = filepath.Join(dir, fmt.Sprintf("%d_to_%d", session, entry))
	return
}

// Attach launches device entry index and maps its window at minAddr.
// An unknown entry is not an error: mapping and err are both nil.
func (at *Attacher) Attach(index cpu.Word, minAddr cpu.Word) (mapping *Mapping, err error) {
	if index >= cpu.Word(len(at.Entries)) {
		return
	}
	entry := int(index)

	defer func() {
		if err != nil {
			err = &ErrAttach{Entry: entry, Err: err}
		}
	}()

	command := at.Entries[entry]
	if len(command) == 0 {
		err = exec.ErrNotFound
		return
	}

	from, to := at.pipePaths(rand.Uint32()>>1, entry)

	// The pipes exist before the device starts, so it can never try to
	// open them too early.
	err = os.MkdirAll(filepath.Dir(from), 0755)
	if err != nil {
		return
	}
	err = MakeFifo(from)
	if err != nil {
		return
	}
	err = MakeFifo(to)
	if err != nil {
		return
	}

	argv := command.Command(to, from)
	if at.Verbose {
		log.Printf("io: device %d: %v", entry, argv)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if len(at.Env) != 0 {
		cmd.Env = append(os.Environ(), at.Env...)
	}
	cmd.Stdout = at.Stdout
	cmd.Stderr = at.Stderr

	err = cmd.Start()
	if err != nil {
		return
	}

	ch := &child{cmd: cmd, done: make(chan struct{})}
	at.children = append(at.children, ch)
	go func() {
		ch.err = cmd.Wait()
		close(ch.done)
	}()

	in, out, err := at.open(ch, from, to)
	if err != nil {
		return
	}

	payload, err := ReadFrame(in)
	if err == nil {
		var devMin, devMax cpu.Word
		devMin, devMax, err = ParseWindow(payload)
		if err == nil {
			offset := int64(devMin) - int64(minAddr)
			mapping = &Mapping{
				Entry:   entry,
				MinAddr: minAddr,
				MaxAddr: cpu.Word(int64(devMax) - offset),
				Offset:  offset,
				In:      in,
				Out:     out,
			}
			err = in.SetNonblock(true)
			if err == nil {
				err = out.SetNonblock(true)
			}
		}
	}
	if err != nil {
		mapping = nil
		in.Close()
		out.Close()
		return
	}

	if at.Verbose {
		log.Printf("io: device %d: mapped %d..%d offset %d", entry, mapping.MinAddr, mapping.MaxAddr, mapping.Offset)
	}

	at.Mappings = append(at.Mappings, mapping)

	return
}

// open opens the to-device pipe for writing and then the from-device pipe
// for reading, the same order the device uses. If the device exits while
// an open is still waiting for it, the open is released and abandoned.
func (at *Attacher) open(ch *child, from, to string) (in, out *Pipe, err error) {
	type opened struct {
		in, out *Pipe
		err     error
	}

	result := make(chan opened, 1)
	go func() {
		var op opened
		op.out, op.err = OpenPipe(to, unix.O_WRONLY)
		if op.err == nil {
			op.in, op.err = OpenPipe(from, unix.O_RDONLY)
			if op.err != nil {
				op.out.Close()
				op.out = nil
			}
		}
		result <- op
	}()

	var op opened
	select {
	case op = <-result:
		if op.err != nil {
			err = op.err
			return
		}
		return op.in, op.out, nil
	case <-ch.done:
	}

	for waiting := true; waiting; {
		releasePipe(to)
		releasePipe(from)
		select {
		case op = <-result:
			waiting = false
		case <-time.After(10 * time.Millisecond):
		}
	}

	if op.in != nil {
		op.in.Close()
	}
	if op.out != nil {
		op.out.Close()
	}

	err = ErrChildExited
	return
}

// Close closes every device pipe and waits for every device process to
// exit.
func (at *Attacher) Close() (err error) {
	for _, mapping := range at.Mappings {
		if closer, ok := mapping.In.(io.Closer); ok {
			closer.Close()
		}
		if closer, ok := mapping.Out.(io.Closer); ok {
			closer.Close()
		}
	}
	at.Mappings = nil

	for _, ch := range at.children {
		<-ch.done
		if at.Verbose && ch.err != nil {
			log.Printf("io: device pid %d: %v", ch.cmd.Process.Pid, ch.err)
		}
	}
	at.children = nil

	return
}
