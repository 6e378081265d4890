package cpu

import (
	"fmt"
)

// Reg is a register index in r0..r31.
type Reg uint8

// Op is a machine opcode tag.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_ADD  = Op(0)  // ADD
	OP_SUB  = Op(1)  // SUB
	OP_AND  = Op(2)  // AND
	OP_OR   = Op(3)  // OR
	OP_XOR  = Op(4)  // XOR
	OP_ADDI = Op(5)  // ADDI
	OP_LD   = Op(6)  // LD
	OP_ST   = Op(7)  // ST
	OP_BEQ  = Op(8)  // BEQ
	OP_BNE  = Op(9)  // BNE
	OP_JMP  = Op(10) // JMP
	OP_IN   = Op(11) // IN
	OP_OUT  = Op(12) // OUT
	OP_HALT = Op(13) // HALT
)

// Format is the operand shape of an opcode.
type Format int

const (
	FORMAT_RRR    = Format(0) // rd, rs1, rs2
	FORMAT_RRI    = Format(1) // rd, rs1, imm
	FORMAT_RA     = Format(2) // reg, addr
	FORMAT_BRANCH = Format(3) // rs1, rs2, target
	FORMAT_TARGET = Format(4) // target
	FORMAT_REG    = Format(5) // reg
	FORMAT_NONE   = Format(6) // no operands
)

var opFormats = [...]Format{
	OP_ADD:  FORMAT_RRR,
	OP_SUB:  FORMAT_RRR,
	OP_AND:  FORMAT_RRR,
	OP_OR:   FORMAT_RRR,
	OP_XOR:  FORMAT_RRR,
	OP_ADDI: FORMAT_RRI,
	OP_LD:   FORMAT_RA,
	OP_ST:   FORMAT_RA,
	OP_BEQ:  FORMAT_BRANCH,
	OP_BNE:  FORMAT_BRANCH,
	OP_JMP:  FORMAT_TARGET,
	OP_IN:   FORMAT_REG,
	OP_OUT:  FORMAT_REG,
	OP_HALT: FORMAT_NONE,
}

// Format returns the operand shape for the opcode.
func (op Op) Format() Format {
	if op < 0 || int(op) >= len(opFormats) {
		return FORMAT_NONE
	}
	return opFormats[op]
}

// Operands returns the number of operand tokens the format requires.
func (format Format) Operands() int {
	switch format {
	case FORMAT_RRR, FORMAT_RRI, FORMAT_BRANCH:
		return 3
	case FORMAT_RA:
		return 2
	case FORMAT_TARGET, FORMAT_REG:
		return 1
	}
	return 0
}

// Instruction is a single decoded machine instruction. It is immutable
// once constructed; Imm is always pre-masked to 16 bits.
type Instruction struct {
	Op  Op
	Rd  Reg    // Destination (ALU, LD, IN) or source (ST, OUT) register.
	Rs1 Reg    // First source register.
	Rs2 Reg    // Second source register.
	Imm uint16 // Immediate, memory address, or branch target.
}

// MakeAlu creates a three-register ALU instruction.
func MakeAlu(op Op, rd, rs1, rs2 Reg) Instruction {
	return Instruction{Op: op, Rd: rd, Rs1: rs1, Rs2: rs2}
}

// MakeAluImm creates an ADDI instruction.
func MakeAluImm(rd, rs1 Reg, imm uint16) Instruction {
	return Instruction{Op: OP_ADDI, Rd: rd, Rs1: rs1, Imm: imm}
}

// MakeMem creates an LD or ST instruction with an absolute word address.
func MakeMem(op Op, reg Reg, addr uint16) Instruction {
	return Instruction{Op: op, Rd: reg, Imm: addr}
}

// MakeBranch creates a BEQ or BNE instruction with an absolute
// instruction-index target.
func MakeBranch(op Op, rs1, rs2 Reg, target uint16) Instruction {
	return Instruction{Op: op, Rs1: rs1, Rs2: rs2, Imm: target}
}

// MakeJump creates a JMP instruction.
func MakeJump(target uint16) Instruction {
	return Instruction{Op: OP_JMP, Imm: target}
}

// MakeIo creates an IN or OUT instruction.
func MakeIo(op Op, reg Reg) Instruction {
	return Instruction{Op: op, Rd: reg}
}

// MakeHalt creates a HALT instruction.
func MakeHalt() Instruction {
	return Instruction{Op: OP_HALT}
}

// Encode packs the instruction into a single 32-bit word.
// Layout: opcode in bits 31..26, register fields in bits 25..21, 20..16
// and 15..11, immediate in bits 15..0. No format uses bits 15..11 and the
// immediate at the same time.
func (ins Instruction) Encode() (word uint32) {
	word = uint32(ins.Op) << 26
	switch ins.Op.Format() {
	case FORMAT_RRR:
		word |= uint32(ins.Rd)<<21 | uint32(ins.Rs1)<<16 | uint32(ins.Rs2)<<11
	case FORMAT_RRI:
		word |= uint32(ins.Rd)<<21 | uint32(ins.Rs1)<<16 | uint32(ins.Imm)
	case FORMAT_RA:
		word |= uint32(ins.Rd)<<21 | uint32(ins.Imm)
	case FORMAT_BRANCH:
		word |= uint32(ins.Rs1)<<21 | uint32(ins.Rs2)<<16 | uint32(ins.Imm)
	case FORMAT_TARGET:
		word |= uint32(ins.Imm)
	case FORMAT_REG:
		word |= uint32(ins.Rd) << 21
	case FORMAT_NONE:
		// opcode only
	}
	return
}

// DecodeInstruction unpacks a 32-bit word produced by Encode.
func DecodeInstruction(word uint32) (ins Instruction, err error) {
	op := Op(word >> 26)
	if op > OP_HALT {
		err = ErrOpcodeDecode
		return
	}

	ins.Op = op
	switch op.Format() {
	case FORMAT_RRR:
		ins.Rd = Reg((word >> 21) & 0x1f)
		ins.Rs1 = Reg((word >> 16) & 0x1f)
		ins.Rs2 = Reg((word >> 11) & 0x1f)
	case FORMAT_RRI:
		ins.Rd = Reg((word >> 21) & 0x1f)
		ins.Rs1 = Reg((word >> 16) & 0x1f)
		ins.Imm = uint16(word)
	case FORMAT_RA:
		ins.Rd = Reg((word >> 21) & 0x1f)
		ins.Imm = uint16(word)
	case FORMAT_BRANCH:
		ins.Rs1 = Reg((word >> 21) & 0x1f)
		ins.Rs2 = Reg((word >> 16) & 0x1f)
		ins.Imm = uint16(word)
	case FORMAT_TARGET:
		ins.Imm = uint16(word)
	case FORMAT_REG:
		ins.Rd = Reg((word >> 21) & 0x1f)
	case FORMAT_NONE:
		// opcode only
	}

	return
}

// String returns the assembly language representation of the instruction.
func (ins Instruction) String() (out string) {
	switch ins.Op.Format() {
	case FORMAT_RRR:
		out = fmt.Sprintf("%v r%d, r%d, r%d", ins.Op, ins.Rd, ins.Rs1, ins.Rs2)
	case FORMAT_RRI:
		out = fmt.Sprintf("%v r%d, r%d, %d", ins.Op, ins.Rd, ins.Rs1, ins.Imm)
	case FORMAT_RA:
		out = fmt.Sprintf("%v r%d, 0x%04x", ins.Op, ins.Rd, ins.Imm)
	case FORMAT_BRANCH:
		out = fmt.Sprintf("%v r%d, r%d, %d", ins.Op, ins.Rs1, ins.Rs2, ins.Imm)
	case FORMAT_TARGET:
		out = fmt.Sprintf("%v %d", ins.Op, ins.Imm)
	case FORMAT_REG:
		out = fmt.Sprintf("%v r%d", ins.Op, ins.Rd)
	default:
		out = ins.Op.String()
	}

	return
}
