package cpu

import (
	"errors"

	"github.com/uvt-arch/cpyu16/translate"
)

var f = translate.From

var (
	// Execution errors
	ErrHalted       = errors.New(f("halted"))
	ErrOutOfProgram = errors.New(f("out of program"))
	ErrFaulted      = errors.New(f("faulted"))
	ErrInputClosed  = errors.New(f("end of input"))
	ErrOpcodeDecode = errors.New(f("unknown opcode"))

	// Numeric literal errors
	ErrNumberEmpty  = errors.New(f("empty number"))
	ErrNumberDigits = errors.New(f("missing digits"))

	// Assembler errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
)

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseRange string

func (err ErrParseRange) Error() string {
	return f("'%v' is out of range", string(err))
}

type ErrParseRegister string

func (err ErrParseRegister) Error() string {
	return f("'%v' is not a register r0..r31", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrUnknownInstruction string

func (err ErrUnknownInstruction) Error() string {
	return f("unknown mnemonic '%v'", string(err))
}

type ErrLabelInvalid string

func (err ErrLabelInvalid) Error() string {
	return f("invalid label '%v'", string(err))
}

type ErrValueRange int64

func (err ErrValueRange) Error() string {
	return f("value %v out of range [-32768, 65535]", int64(err))
}

type ErrMemoryBounds int

func (err ErrMemoryBounds) Error() string {
	return f("memory access out of bounds at address %v", int(err))
}

type ErrOperandCount struct {
	Mnemonic string
	Want     int
	Got      int
}

func (err *ErrOperandCount) Error() string {
	return f("%v expects %v operand(s), got %v", err.Mnemonic, err.Want, err.Got)
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrInstruction Instruction

func (err ErrInstruction) Error() string {
	return f("instruction '%v'", Instruction(err).String())
}

func (err ErrInstruction) Is(target error) (ok bool) {
	_, ok = target.(ErrInstruction)
	return
}
