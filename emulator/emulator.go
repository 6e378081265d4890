// Package emulator binds the assembler and the machine into a
// run-to-completion harness with line-numbered runtime errors.
package emulator

import (
	"fmt"
	"io"
	"iter"
	"maps"
	"os"

	"github.com/uvt-arch/cpyu16/cpu"
	"github.com/uvt-arch/cpyu16/internal"
)

// Emulator state. Assembler + program + per-run machine.
type Emulator struct {
	Verbose bool // If set, enables verbose logging.

	Assembler cpu.Assembler // Assembler used by Load.
	Program   *cpu.Program  // Currently loaded program.

	Input  io.Reader // Input source for IN.
	Output io.Writer // Output sink for OUT.
	Trace  io.Writer // Optional per-instruction trace sink.

	Machine *cpu.Cpu // Machine of the most recent run.
}

// NewEmulator creates a new emulator wired to standard input and output.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Program: &cpu.Program{},
		Input:   os.Stdin,
		Output:  os.Stdout,
	}

	return
}

// Load assembles source text into the current program.
func (emu *Emulator) Load(src io.Reader) (err error) {
	emu.Assembler.Verbose = emu.Verbose
	emu.Program, err = emu.Assembler.Parse(src)
	return
}

// Reset builds a fresh machine state for the loaded program. Nothing is
// shared with prior runs.
func (emu *Emulator) Reset() {
	emu.Machine = cpu.NewCpu(emu.Program)
	emu.Machine.Input = emu.Input
	emu.Machine.Output = emu.Output
	emu.Machine.Trace = emu.Trace
}

// Run executes the loaded program on a fresh machine and returns the
// number of instructions executed. Runtime faults are wrapped with the
// source line of the faulting instruction.
func (emu *Emulator) Run() (ticks int, err error) {
	emu.Reset()

	ticks, err = emu.Machine.Run()
	if err != nil {
		err = &ErrRuntime{LineNo: emu.Program.LineNo(emu.Machine.Pc - 1), Err: err}
	}

	return
}

// Defines returns an iterator over the assembler equates and the
// program's label table.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(emu.Assembler.Equate),
		emu.Program.Symbols(),
	)
}

// Listing writes a disassembly of the loaded program: instruction
// index, encoded word, rendered instruction, and source line.
func (emu *Emulator) Listing(w io.Writer) (err error) {
	for index, ins := range emu.Program.Each() {
		_, err = fmt.Fprintf(w, "%05d  %08x  %-24v ; line %d\n",
			index, ins.Encode(), ins, emu.Program.LineNo(index))
		if err != nil {
			return
		}
	}

	return
}
