package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		token string
		value int64
		ok    bool
	}){
		{"0", 0, true},
		{"123", 123, true},
		{"-5", -5, true},
		{"+7", 7, true},
		{"0x2a", 42, true},
		{"0X2A", 42, true},
		{"-0X000A", -10, true},
		{"0xFFFE", 0xfffe, true},
		{"70000", 70000, true},
		{" 42 ", 42, true},
		{"+ 42", 42, true},
		{"-65536", -65536, true},
		{"", 0, false},
		{"   ", 0, false},
		{"+", 0, false},
		{"-", 0, false},
		{"0x", 0, false},
		{"-0x", 0, false},
		{"12z", 0, false},
		{"0xg1", 0, false},
		{"--5", 0, false},
		{"+-5", 0, false},
		{"5-", 0, false},
		{"1_0", 0, false},
	}

	for _, entry := range table {
		value, err := ParseNumber(entry.token)
		if entry.ok {
			assert.NoError(err, entry.token)
			assert.Equal(entry.value, value, entry.token)
		} else {
			assert.Error(err, entry.token)
		}
	}
}

func TestParseNumberErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := ParseNumber("")
	assert.ErrorIs(err, ErrNumberEmpty)

	_, err = ParseNumber(" \t ")
	assert.ErrorIs(err, ErrNumberEmpty)

	_, err = ParseNumber("0x")
	assert.ErrorIs(err, ErrNumberDigits)

	_, err = ParseNumber("-")
	assert.ErrorIs(err, ErrNumberDigits)

	var parse ErrParseNumber
	_, err = ParseNumber("wat")
	assert.ErrorAs(err, &parse)

	// Magnitude beyond 63 bits is reported as out of range, not as a
	// syntax error.
	var outOfRange ErrParseRange
	_, err = ParseNumber("99999999999999999999999999")
	assert.ErrorAs(err, &outOfRange)
}
