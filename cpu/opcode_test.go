package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstructionRoundTrip(t *testing.T) {
	assert := assert.New(t)

	regOps := []Op{OP_ADD, OP_SUB, OP_AND, OP_OR, OP_XOR}
	for _, op := range regOps {
		for _, regs := range [][3]Reg{{1, 2, 3}, {0, 0, 0}, {31, 31, 31}, {7, 0, 19}} {
			ins := MakeAlu(op, regs[0], regs[1], regs[2])
			decoded, err := DecodeInstruction(ins.Encode())
			assert.NoError(err, ins.String())
			assert.Equal(ins, decoded, ins.String())
		}
	}

	others := []Instruction{
		MakeAluImm(4, 5, 0xfffa),
		MakeAluImm(0, 0, 0),
		MakeMem(OP_LD, 2, 0x0020),
		MakeMem(OP_ST, 1, 0xffff),
		MakeBranch(OP_BEQ, 3, 4, 17),
		MakeBranch(OP_BNE, 31, 0, 0),
		MakeJump(9),
		MakeIo(OP_IN, 6),
		MakeIo(OP_OUT, 30),
		MakeHalt(),
	}
	for _, ins := range others {
		decoded, err := DecodeInstruction(ins.Encode())
		assert.NoError(err, ins.String())
		assert.Equal(ins, decoded, ins.String())
	}
}

func TestDecodeInstructionUnknown(t *testing.T) {
	assert := assert.New(t)

	_, err := DecodeInstruction(uint32(63) << 26)
	assert.ErrorIs(err, ErrOpcodeDecode)

	_, err = DecodeInstruction(uint32(OP_HALT+1) << 26)
	assert.ErrorIs(err, ErrOpcodeDecode)
}

func TestOpFormat(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(FORMAT_RRR, OP_XOR.Format())
	assert.Equal(FORMAT_RRI, OP_ADDI.Format())
	assert.Equal(FORMAT_RA, OP_ST.Format())
	assert.Equal(FORMAT_BRANCH, OP_BNE.Format())
	assert.Equal(FORMAT_TARGET, OP_JMP.Format())
	assert.Equal(FORMAT_REG, OP_OUT.Format())
	assert.Equal(FORMAT_NONE, OP_HALT.Format())
	assert.Equal(FORMAT_NONE, Op(99).Format())

	assert.Equal(3, FORMAT_RRR.Operands())
	assert.Equal(2, FORMAT_RA.Operands())
	assert.Equal(1, FORMAT_REG.Operands())
	assert.Equal(0, FORMAT_NONE.Operands())
}

func TestInstructionString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("ADD r1, r2, r3", MakeAlu(OP_ADD, 1, 2, 3).String())
	assert.Equal("ADDI r1, r0, 65530", MakeAluImm(1, 0, 65530).String())
	assert.Equal("LD r9, 0x0020", MakeMem(OP_LD, 9, 0x20).String())
	assert.Equal("BNE r1, r2, 15", MakeBranch(OP_BNE, 1, 2, 15).String())
	assert.Equal("JMP 0", MakeJump(0).String())
	assert.Equal("IN r10", MakeIo(OP_IN, 10).String())
	assert.Equal("HALT", MakeHalt().String())
}
