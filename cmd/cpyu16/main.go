package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/uvt-arch/cpyu16/emulator"
)

// defineFlag collects repeated -D NAME=VALUE arguments.
type defineFlag []string

func (d *defineFlag) String() string {
	return strings.Join(*d, ",")
}

func (d *defineFlag) Set(value string) error {
	*d = append(*d, value)
	return nil
}

func main() {
	var trace bool
	var listing bool
	var verbose bool
	var defines defineFlag

	flag.BoolVar(&trace, "t", false, "Trace every executed instruction to stderr")
	flag.BoolVar(&listing, "l", false, "Print the assembled listing and symbols, do not execute")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Var(&defines, "D", "Predefine an equate as NAME=VALUE (repeatable)")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("%v: expected one assembly source file, got %v", os.Args[0], flag.Args())
	}
	name := flag.Arg(0)

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	for _, define := range defines {
		equ, value, _ := strings.Cut(define, "=")
		emu.Assembler.Predefine(equ, value)
	}

	inf, err := os.Open(name)
	if err != nil {
		log.Printf("%v: %v", name, err)
		os.Exit(1)
	}
	err = emu.Load(inf)
	inf.Close()
	if err != nil {
		log.Printf("%v: assembly error: %v", name, err)
		os.Exit(2)
	}

	if listing {
		err = emu.Listing(os.Stdout)
		if err != nil {
			log.Fatal(err)
		}
		for equ, value := range emu.Defines() {
			fmt.Printf("%v = %v\n", equ, value)
		}
		return
	}

	if trace {
		emu.Trace = os.Stderr
	}

	_, err = emu.Run()
	if err != nil {
		log.Printf("%v: runtime error: %v", name, err)
		os.Exit(3)
	}
}
