package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	NUM_REGS = 32      // r0..r31; r0 is hard-wired to zero.
	MEM_SIZE = 1 << 16 // 64Ki words of 16-bit memory.
	U16_MASK = 0xffff  // The machine's only integer width.

	RUN_LIMIT = 1_000_000 // Safety valve against runaway programs in Run().
)

// Status is the execution engine state.
type Status int

//go:generate go tool stringer -linecomment -type=Status
const (
	STATUS_RUNNING        = Status(0) // running
	STATUS_HALTED         = Status(1) // halted
	STATUS_OUT_OF_PROGRAM = Status(2) // out-of-program
	STATUS_FAULT          = Status(3) // fault
)

// Cpu is the machine state for a single run: register bank, memory, and
// program counter. It is exclusively owned by its creator; nothing is
// shared across runs.
type Cpu struct {
	Program *Program // Program under execution.

	Reg [NUM_REGS]uint16 // Register bank; Reg[0] always reads zero.
	Mem []uint16         // Word-addressed memory.
	Pc  int              // Program counter, an instruction index.

	Status Status // Current engine state.
	Ticks  int    // Instructions executed so far.

	Input  io.Reader // IN reads one text line per instruction.
	Output io.Writer // OUT writes one text line per instruction.
	Trace  io.Writer // Optional per-instruction trace sink.

	scanner *bufio.Scanner
}

// NewCpu creates a fresh machine for one run of prog. Output is
// discarded until a sink is attached.
func NewCpu(prog *Program) (cpu *Cpu) {
	cpu = &Cpu{
		Program: prog,
		Mem:     make([]uint16, MEM_SIZE),
		Output:  io.Discard,
	}

	return
}

// String returns the current machine state as a string.
func (cpu *Cpu) String() (text string) {
	text = fmt.Sprintf("pc: %05d  status: %v  ticks: %v\n", cpu.Pc, cpu.Status, cpu.Ticks)
	for n := range cpu.Reg {
		text += fmt.Sprintf("r%d=%04x ", n, cpu.Reg[n])
		if n%8 == 7 {
			text = strings.TrimRight(text, " ") + "\n"
		}
	}

	return
}

// setReg writes a masked value to a register. Writes to r0 are no-ops.
func (cpu *Cpu) setReg(rd Reg, value uint32) {
	if rd == 0 {
		return
	}
	cpu.Reg[rd] = uint16(value & U16_MASK)
}

// mread reads one word of memory.
func (cpu *Cpu) mread(addr int) (value uint16, err error) {
	if addr < 0 || addr >= len(cpu.Mem) {
		err = ErrMemoryBounds(addr)
		return
	}
	value = cpu.Mem[addr]
	return
}

// mwrite writes one word of memory.
func (cpu *Cpu) mwrite(addr int, value uint16) (err error) {
	if addr < 0 || addr >= len(cpu.Mem) {
		err = ErrMemoryBounds(addr)
		return
	}
	cpu.Mem[addr] = value
	return
}

// Step fetches and executes the instruction at the current program
// counter. Termination is reported as ErrHalted or ErrOutOfProgram,
// checked with errors.Is; any other non-nil error is a runtime fault
// that leaves the machine state exactly as last mutated.
func (cpu *Cpu) Step() (err error) {
	switch cpu.Status {
	case STATUS_HALTED:
		return ErrHalted
	case STATUS_OUT_OF_PROGRAM:
		return ErrOutOfProgram
	case STATUS_FAULT:
		return ErrFaulted
	}

	if cpu.Pc < 0 || cpu.Pc >= cpu.Program.Len() {
		cpu.Status = STATUS_OUT_OF_PROGRAM
		return ErrOutOfProgram
	}

	pc := cpu.Pc
	ins := cpu.Program.Instructions[pc]
	cpu.Pc++

	var before [NUM_REGS]uint16
	if cpu.Trace != nil {
		before = cpu.Reg
	}

	err = cpu.Execute(ins)
	if err != nil {
		cpu.Status = STATUS_FAULT
		return
	}
	if cpu.Status == STATUS_HALTED {
		return ErrHalted
	}

	cpu.Ticks++

	if cpu.Trace != nil {
		cpu.trace(pc, ins, &before)
	}

	return
}

// Execute executes a single decoded instruction.
func (cpu *Cpu) Execute(ins Instruction) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrInstruction(ins), err)
		}
	}()

	switch ins.Op {
	case OP_ADD:
		cpu.setReg(ins.Rd, uint32(cpu.Reg[ins.Rs1])+uint32(cpu.Reg[ins.Rs2]))
	case OP_SUB:
		cpu.setReg(ins.Rd, uint32(cpu.Reg[ins.Rs1])-uint32(cpu.Reg[ins.Rs2]))
	case OP_AND:
		cpu.setReg(ins.Rd, uint32(cpu.Reg[ins.Rs1])&uint32(cpu.Reg[ins.Rs2]))
	case OP_OR:
		cpu.setReg(ins.Rd, uint32(cpu.Reg[ins.Rs1])|uint32(cpu.Reg[ins.Rs2]))
	case OP_XOR:
		cpu.setReg(ins.Rd, uint32(cpu.Reg[ins.Rs1])^uint32(cpu.Reg[ins.Rs2]))
	case OP_ADDI:
		cpu.setReg(ins.Rd, uint32(cpu.Reg[ins.Rs1])+uint32(ins.Imm))
	case OP_LD:
		var value uint16
		value, err = cpu.mread(int(ins.Imm))
		if err != nil {
			return
		}
		cpu.setReg(ins.Rd, uint32(value))
	case OP_ST:
		err = cpu.mwrite(int(ins.Imm), cpu.Reg[ins.Rd])
	case OP_BEQ:
		if cpu.Reg[ins.Rs1] == cpu.Reg[ins.Rs2] {
			cpu.Pc = int(ins.Imm)
		}
	case OP_BNE:
		if cpu.Reg[ins.Rs1] != cpu.Reg[ins.Rs2] {
			cpu.Pc = int(ins.Imm)
		}
	case OP_JMP:
		cpu.Pc = int(ins.Imm)
	case OP_IN:
		err = cpu.doIn(ins.Rd)
	case OP_OUT:
		err = cpu.doOut(ins.Rd)
	case OP_HALT:
		cpu.Status = STATUS_HALTED
	default:
		// Unreachable from assembled programs.
		err = ErrOpcodeDecode
	}

	return
}

// doIn blocks for one line of input, validates it as a numeric literal
// in [-32768, 65535], and stores the masked value.
func (cpu *Cpu) doIn(rd Reg) (err error) {
	if cpu.scanner == nil {
		if cpu.Input == nil {
			return ErrInputClosed
		}
		cpu.scanner = bufio.NewScanner(cpu.Input)
	}

	if !cpu.scanner.Scan() {
		err = cpu.scanner.Err()
		if err == nil {
			err = ErrInputClosed
		}
		return
	}

	value, err := ParseNumber(cpu.scanner.Text())
	if err != nil {
		return
	}
	if value < -32768 || value > 65535 {
		return ErrValueRange(value)
	}

	cpu.setReg(rd, uint32(uint16(value)))
	return
}

// doOut emits the register's raw 16-bit value reinterpreted as
// two's-complement signed, as one line of the fixed form
// '<sign><5-digit magnitude> (0x<4-digit hex>)'.
func (cpu *Cpu) doOut(rs Reg) (err error) {
	value := cpu.Reg[rs]
	magnitude := int32(int16(value))
	sign := byte('+')
	if magnitude < 0 {
		sign = '-'
		magnitude = -magnitude
	}
	_, err = fmt.Fprintf(cpu.Output, "%c%05d (0x%04x)\n", sign, magnitude, value)
	return
}

// trace emits one diagnostic line: the pre-execution program counter,
// the rendered instruction, and every register whose value changed.
func (cpu *Cpu) trace(pc int, ins Instruction, before *[NUM_REGS]uint16) {
	changes := ""
	for n := range cpu.Reg {
		if before[n] != cpu.Reg[n] {
			changes += fmt.Sprintf(" r%d=%04x", n, cpu.Reg[n])
		}
	}
	fmt.Fprintf(cpu.Trace, "PC=%05d  %-24v |%v\n", pc, ins, changes)
}

// Run steps the machine until it halts, leaves the program, or faults,
// and returns the number of instructions executed. A runaway program is
// stopped at RUN_LIMIT instructions the same way a halt stops it.
func (cpu *Cpu) Run() (ticks int, err error) {
	for cpu.Ticks < RUN_LIMIT {
		err = cpu.Step()
		if errors.Is(err, ErrHalted) || errors.Is(err, ErrOutOfProgram) {
			err = nil
			break
		}
		if err != nil {
			break
		}
	}

	ticks = cpu.Ticks
	return
}
