package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":   "0",
	"NUM_REGS": fmt.Sprintf("%v", NUM_REGS),
	"MEM_SIZE": fmt.Sprintf("%v", MEM_SIZE),
}

// opMap maps mnemonics to opcode tags. Pseudo-instructions (LI, MOV) are
// handled separately in parseWords.
var opMap = map[string]Op{
	"ADD":  OP_ADD,
	"SUB":  OP_SUB,
	"AND":  OP_AND,
	"OR":   OP_OR,
	"XOR":  OP_XOR,
	"ADDI": OP_ADDI,
	"LD":   OP_LD,
	"ST":   OP_ST,
	"BEQ":  OP_BEQ,
	"BNE":  OP_BNE,
	"JMP":  OP_JMP,
	"IN":   OP_IN,
	"OUT":  OP_OUT,
	"HALT": OP_HALT,
}

// Assembler is the two-pass translator from source text to a Program.
// The first pass collects labels, the second encodes instructions; the
// first malformed line aborts the whole assembly.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	Label  map[string]int    // Map of labels to instruction indexes.
	Equate map[string]string // Map of equates.

	predefine map[string]string // Predefines
}

// Predefine defines a new equate or redefines an existing equate before parsing.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

type sourceLine struct {
	lineno int
	text   string
}

// clean truncates a source line at the first ';' or '#' and trims it.
func clean(text string) string {
	if i := strings.IndexAny(text, ";#"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// Parse translates an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	var lines []sourceLine
	for scanner.Scan() {
		lines = append(lines, sourceLine{lineno: len(lines) + 1, text: clean(scanner.Text())})
	}
	err = scanner.Err()
	if err != nil {
		return
	}

	asm.Label = make(map[string]int, 16)
	asm.Equate = maps.Clone(sysEquate)
	for equ, value := range asm.predefine {
		asm.Equate[equ] = value
	}

	// Pass 1: bind each label to the index of the next instruction.
	index := 0
	for _, src := range lines {
		line, lineno = src.text, src.lineno
		switch {
		case line == "":
			// skip
		case strings.HasSuffix(line, ":"):
			label := strings.TrimSpace(strings.TrimSuffix(line, ":"))
			if label == "" || strings.ContainsAny(label, " \t") {
				err = ErrLabelInvalid(label)
				return
			}
			if _, ok := asm.Label[label]; ok {
				err = ErrLabelDuplicate
				return
			}
			asm.Label[label] = index
		case strings.HasPrefix(line, ".equ"):
			// directive, emits no instruction
		default:
			index++
		}
	}

	// Pass 2: encode instructions.
	program := &Program{Labels: maps.Clone(asm.Label)}
	for _, src := range lines {
		line, lineno = src.text, src.lineno
		if line == "" || strings.HasSuffix(line, ":") {
			continue
		}

		if asm.Verbose {
			log.Printf("%v: %v", lineno, line)
		}

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}
		if len(words) == 0 {
			continue
		}

		var ins Instruction
		ins, err = asm.parseWords(words)
		if err != nil {
			return
		}
		program.add(ins, lineno)
	}

	prog = program

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		num, nerr := ParseNumber(str)
		if nerr != nil {
			// Ignore non-numeric equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(num)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = st_int64
	return
}

// parseLine expands a single cleaned line into operand words: $()
// expressions are evaluated, commas become whitespace, and equates
// substitute for matching operand tokens. Returns no words for
// directive-only lines.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = strconv.Itoa(lineno)

	// Do $() evaluations
	re := regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return strconv.FormatInt(value, 10)
	})
	if err != nil {
		return
	}

	words = strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words[1:] {
		equate, ok := asm.Equate[word]
		if ok {
			words[1+n] = equate
		}
	}

	return
}

// parseWords encodes one tokenized statement as an Instruction.
func (asm *Assembler) parseWords(words []string) (ins Instruction, err error) {
	mnemonic := strings.ToUpper(words[0])
	args := words[1:]

	// Pseudo-instructions expand to exactly one primitive, using r0 as
	// the zero register.
	switch mnemonic {
	case "LI":
		err = needArgs(mnemonic, args, 2)
		if err != nil {
			return
		}
		var rd Reg
		var imm uint16
		rd, err = parseReg(args[0])
		if err != nil {
			return
		}
		imm, err = parseImm(args[1])
		if err != nil {
			return
		}
		ins = MakeAluImm(rd, 0, imm)
		return
	case "MOV":
		err = needArgs(mnemonic, args, 2)
		if err != nil {
			return
		}
		var rd, rs Reg
		rd, err = parseReg(args[0])
		if err != nil {
			return
		}
		rs, err = parseReg(args[1])
		if err != nil {
			return
		}
		ins = MakeAlu(OP_ADD, rd, rs, 0)
		return
	}

	op, ok := opMap[mnemonic]
	if !ok {
		err = ErrUnknownInstruction(words[0])
		return
	}

	format := op.Format()
	err = needArgs(mnemonic, args, format.Operands())
	if err != nil {
		return
	}

	switch format {
	case FORMAT_RRR:
		var rd, rs1, rs2 Reg
		rd, err = parseReg(args[0])
		if err != nil {
			return
		}
		rs1, err = parseReg(args[1])
		if err != nil {
			return
		}
		rs2, err = parseReg(args[2])
		if err != nil {
			return
		}
		ins = MakeAlu(op, rd, rs1, rs2)
	case FORMAT_RRI:
		var rd, rs1 Reg
		var imm uint16
		rd, err = parseReg(args[0])
		if err != nil {
			return
		}
		rs1, err = parseReg(args[1])
		if err != nil {
			return
		}
		imm, err = parseImm(args[2])
		if err != nil {
			return
		}
		ins = MakeAluImm(rd, rs1, imm)
	case FORMAT_RA:
		// Addresses are numeric only, no label indirection.
		var reg Reg
		var addr uint16
		reg, err = parseReg(args[0])
		if err != nil {
			return
		}
		addr, err = parseImm(args[1])
		if err != nil {
			return
		}
		ins = MakeMem(op, reg, addr)
	case FORMAT_BRANCH:
		var rs1, rs2 Reg
		var target uint16
		rs1, err = parseReg(args[0])
		if err != nil {
			return
		}
		rs2, err = parseReg(args[1])
		if err != nil {
			return
		}
		target, err = asm.parseTarget(args[2])
		if err != nil {
			return
		}
		ins = MakeBranch(op, rs1, rs2, target)
	case FORMAT_TARGET:
		var target uint16
		target, err = asm.parseTarget(args[0])
		if err != nil {
			return
		}
		ins = MakeJump(target)
	case FORMAT_REG:
		var reg Reg
		reg, err = parseReg(args[0])
		if err != nil {
			return
		}
		ins = MakeIo(op, reg)
	case FORMAT_NONE:
		ins = Instruction{Op: op}
	}

	return
}

// needArgs checks the operand count for a mnemonic.
func needArgs(mnemonic string, args []string, want int) (err error) {
	if len(args) != want {
		err = &ErrOperandCount{Mnemonic: mnemonic, Want: want, Got: len(args)}
	}
	return
}

// parseReg parses a register token 'r0'..'r31' (case-insensitive).
func parseReg(token string) (reg Reg, err error) {
	t := strings.ToLower(token)
	if len(t) < 2 || t[0] != 'r' {
		err = ErrParseRegister(token)
		return
	}
	index, perr := strconv.ParseUint(t[1:], 10, 8)
	if perr != nil || index >= NUM_REGS {
		err = ErrParseRegister(token)
		return
	}
	reg = Reg(index)
	return
}

// parseImm parses an immediate token, range-checks it to
// [-32768, 65535], and masks it to 16 bits.
func parseImm(token string) (imm uint16, err error) {
	value, err := ParseNumber(token)
	if err != nil {
		return
	}
	if value < -32768 || value > 65535 {
		err = ErrValueRange(value)
		return
	}
	imm = uint16(value)
	return
}

// parseTarget resolves a branch or jump target: a label if one exists
// with that exact name, otherwise a numeric instruction index. Forward
// references work because pass 1 already built the complete label table.
func (asm *Assembler) parseTarget(token string) (target uint16, err error) {
	if index, ok := asm.Label[token]; ok {
		target = uint16(index)
		return
	}
	return parseImm(token)
}
