// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/ezrec/xjx/cpu"
	"github.com/ezrec/xjx/emulator"
	"github.com/ezrec/xjx/image"
	xio "github.com/ezrec/xjx/io"
)

const DEFAULT_IMAGE = "standard.xjx"

// load parses an image file.
func load(path string, verbose bool) (img *image.Image, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	ld := &image.Loader{Verbose: verbose}
	img, err = ld.Parse(inf)
	return
}

// interactive single-steps the machine from the keyboard:
//
//	.      one micro-operation
//	space  one macro-instruction
//	l      reload the image
//	q      quit
func interactive(emu *emulator.Emulator, path string, verbose bool) (err error) {
	fd := int(os.Stdin.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return
	}
	defer term.Restore(fd, state)

	key := make([]byte, 1)
	for done := false; !done; {
		// Raw mode needs explicit carriage returns.
		fmt.Print("\x1b[H\x1b[2J" + strings.ReplaceAll(emu.String(), "\n", "\r\n"))

		_, err = os.Stdin.Read(key)
		if err != nil {
			return
		}

		switch key[0] {
		case '.':
			done, err = emu.Tick()
		case ' ':
			done, err = emu.Instruction()
		case 'l':
			var img *image.Image
			img, err = load(path, verbose)
			if err == nil {
				err = emu.Reload(img)
			}
		case 'q':
			done = true
		}
		if err != nil {
			return
		}
	}

	return
}

func main() {
	var verbose bool
	var step bool
	var pipeIn string
	var pipeOut string

	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&step, "i", false, "Interactive single-step mode")
	flag.StringVar(&pipeIn, "in", "", "Run as a device: pipe from the master")
	flag.StringVar(&pipeOut, "out", "", "Run as a device: pipe to the master")

	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix(filepath.Base(os.Args[0]) + ": ")

	if flag.NArg() > 1 {
		log.Fatalf("Unknown arguments: %v", flag.Args()[1:])
	}

	device := len(pipeIn) != 0 || len(pipeOut) != 0
	if device && (len(pipeIn) == 0 || len(pipeOut) == 0) {
		log.Fatalf("-in and -out must be used together")
	}
	if device && step {
		log.Fatalf("-i can not be used with -in and -out")
	}

	path := DEFAULT_IMAGE
	if flag.NArg() == 1 {
		path = flag.Arg(0)
	}

	var img *image.Image
	if device && flag.NArg() == 0 {
		img = image.NewDevice(cpu.JohnnyGeometry())
	} else {
		var err error
		img, err = load(path, verbose)
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}
	}

	emu := emulator.NewEmulator(img)
	emu.Verbose = verbose
	emu.Attacher.Stderr = os.Stderr

	if device {
		slave, err := xio.Serve(pipeIn, pipeOut, img.IoMinAddr, img.IoMaxAddr)
		if err != nil {
			log.Fatalf("%v", err)
		}
		slave.Verbose = verbose
		emu.Slave = slave
	}

	var err error
	if step {
		err = interactive(emu, path, verbose)
	} else {
		err = emu.Run()
	}

	emu.Close()

	if err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Printf("Exit code: %d\n", emu.ExitCode())
}
