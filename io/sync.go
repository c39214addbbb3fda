package io

import (
	"errors"
	"io"
	"log"

	"github.com/ezrec/xjx/cpu"
)

var _ cpu.RamWatcher = (*Attacher)(nil)

// Sync drains every attached device and applies its messages to RAM.
//
// A message is "addr value" with addr in the device's address space. It is
// translated through the mapping offset and applied only if it lands
// inside the mapped window. Malformed or out-of-window messages are
// dropped, and a device that has hung up is simply skipped.
func (at *Attacher) Sync(cp *cpu.Cpu) {
	for _, mapping := range at.Mappings {
		at.drain(cp, mapping)
	}
}

func (at *Attacher) drain(cp *cpu.Cpu, mapping *Mapping) {
	for {
		payload, err := ReadFrame(mapping.In)
		if err != nil {
			if at.Verbose && !errors.Is(err, ErrWouldBlock) && !errors.Is(err, io.EOF) {
				log.Printf("io: device %d: %v", mapping.Entry, err)
			}
			return
		}

		devAddr, value, ok := parsePair(payload)
		if !ok {
			if at.Verbose {
				log.Printf("io: device %d: %v %q", mapping.Entry, ErrMessage, payload)
			}
			continue
		}

		addr, ok := mapping.FromDevice(devAddr)
		if !ok || addr >= cpu.Word(len(cp.Ram)) {
			continue
		}

		cp.Ram[addr] = value
	}
}

// RamWritten forwards a RAM store to every device whose window holds the
// address, translated into the device's address space. A device whose pipe
// is full misses the message; the machine never waits for it.
func (at *Attacher) RamWritten(addr cpu.Word, value cpu.Word) {
	for _, mapping := range at.Mappings {
		if !mapping.Contains(addr) {
			continue
		}

		err := WriteFrame(mapping.Out, formatPair(mapping.ToDevice(addr), value))
		if err != nil && at.Verbose {
			log.Printf("io: device %d: %v", mapping.Entry, err)
		}
	}
}
