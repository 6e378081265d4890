package emulator

import (
	"bytes"
	"io"
	"maps"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/uvt-arch/cpyu16/cpu"
)

func doLoad(t *testing.T, program []string) (emu *Emulator) {
	emu = NewEmulator()
	err := emu.Load(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
		return
	}
	return
}

func doRun(t *testing.T, program []string, input string) (emu *Emulator, output string, ticks int, err error) {
	emu = doLoad(t, program)
	emu.Input = strings.NewReader(input)
	var buf bytes.Buffer
	emu.Output = &buf

	ticks, err = emu.Run()
	output = buf.String()
	return
}

func TestNewEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	assert.NotNil(emu.Program)
	assert.Equal(os.Stdin, emu.Input)
	assert.Equal(os.Stdout, emu.Output)
	assert.Nil(emu.Trace)
}

func TestEmulatorRun(t *testing.T) {
	assert := assert.New(t)

	emu, output, ticks, err := doRun(t, []string{
		"IN r1",
		"IN r2",
		"ADD r3, r1, r2",
		"OUT r3",
		"HALT",
	}, "2\n3\n")
	assert.NoError(err)
	assert.Equal("+00005 (0x0005)\n", output)
	assert.Equal(4, ticks)
	assert.Equal(cpu.STATUS_HALTED, emu.Machine.Status)
}

func TestEmulatorLoadError(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.Load(strings.NewReader("BOGUS r1"))
	assert.Error(err)

	var syntax *cpu.ErrSyntax
	if assert.ErrorAs(err, &syntax) {
		assert.Equal(1, syntax.LineNo)
	}
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	_, _, _, err := doRun(t, []string{
		"LI r1, 1",
		"; nothing on this line",
		"IN r2",
		"HALT",
	}, "")
	assert.Error(err)
	assert.ErrorIs(err, cpu.ErrInputClosed)

	var runtime *ErrRuntime
	if assert.ErrorAs(err, &runtime) {
		assert.Equal(3, runtime.LineNo)
	}
}

func TestEmulatorFreshState(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"IN r1",
		"ST r1, 0",
		"LD r2, 0",
		"OUT r2",
		"HALT",
	}

	emu := doLoad(t, program)

	var buf bytes.Buffer
	emu.Input = strings.NewReader("11\n")
	emu.Output = &buf
	_, err := emu.Run()
	assert.NoError(err)
	assert.Equal("+00011 (0x000b)\n", buf.String())

	// A second run starts from zeroed registers and memory.
	buf.Reset()
	emu.Input = strings.NewReader("22\n")
	_, err = emu.Run()
	assert.NoError(err)
	assert.Equal("+00022 (0x0016)\n", buf.String())
	assert.Equal(uint16(22), emu.Machine.Mem[0])
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	emu := doLoad(t, []string{
		".equ COUNT 3",
		"start:",
		"HALT",
	})

	defines := maps.Collect(emu.Defines())
	assert.Equal("3", defines["COUNT"])
	assert.Equal("0", defines["start"])
	assert.Equal("32", defines["NUM_REGS"])
	assert.Equal("65536", defines["MEM_SIZE"])
}

func TestEmulatorListing(t *testing.T) {
	assert := assert.New(t)

	emu := doLoad(t, []string{
		"LI r1, 10",
		"OUT r1",
		"HALT",
	})

	var buf bytes.Buffer
	err := emu.Listing(&buf)
	assert.NoError(err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if assert.Equal(3, len(lines)) {
		assert.Contains(lines[0], "00000")
		assert.Contains(lines[0], "ADDI r1, r0, 10")
		assert.Contains(lines[0], "; line 1")
		assert.Contains(lines[2], "HALT")
		assert.Contains(lines[2], "; line 3")
	}
}

func TestEmulatorTrace(t *testing.T) {
	assert := assert.New(t)

	emu := doLoad(t, []string{
		"LI r1, 7",
		"HALT",
	})
	emu.Output = io.Discard
	var trace bytes.Buffer
	emu.Trace = &trace

	_, err := emu.Run()
	assert.NoError(err)
	assert.Contains(trace.String(), "PC=00000")
	assert.Contains(trace.String(), "r1=0007")
}
