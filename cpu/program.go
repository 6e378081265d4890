package cpu

import (
	"iter"
	"strconv"
)

// Program is the ordered instruction sequence produced by the Assembler.
// The slice index is the instruction index used by the program counter
// and by branch targets. Immutable after assembly.
type Program struct {
	Instructions []Instruction
	Lines        []int          // Source line number per instruction.
	Labels       map[string]int // Label table, kept for tooling and debugging.
}

func (prog *Program) add(ins Instruction, lineno int) {
	prog.Instructions = append(prog.Instructions, ins)
	prog.Lines = append(prog.Lines, lineno)
}

// Len returns the number of instructions.
func (prog *Program) Len() int {
	return len(prog.Instructions)
}

// LineNo returns the source line of the instruction at index, or 0 when
// the index is outside the program.
func (prog *Program) LineNo(index int) int {
	if index < 0 || index >= len(prog.Lines) {
		return 0
	}
	return prog.Lines[index]
}

// Each iterates over (instruction index, instruction) in program order.
func (prog *Program) Each() iter.Seq2[int, Instruction] {
	return func(yield func(index int, ins Instruction) bool) {
		for index, ins := range prog.Instructions {
			if !yield(index, ins) {
				return
			}
		}
	}
}

// Binary returns the encoded instruction words.
func (prog *Program) Binary() (words []uint32) {
	for _, ins := range prog.Instructions {
		words = append(words, ins.Encode())
	}

	return
}

// Symbols iterates the label table as (name, instruction index) pairs,
// with the index rendered as decimal text.
func (prog *Program) Symbols() iter.Seq2[string, string] {
	return func(yield func(name, value string) bool) {
		for name, index := range prog.Labels {
			if !yield(name, strconv.Itoa(index)) {
				return
			}
		}
	}
}
