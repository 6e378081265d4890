package cpu

import (
	"errors"
	"strconv"
	"strings"
)

// ParseNumber parses a text token as a signed integer literal: an
// optional single leading + or -, an optional 0x/0X prefix selecting
// hexadecimal, then one or more digits of the selected base. Surrounding
// whitespace is tolerated, including between the sign and the digits.
//
// Range checking against the machine's 16-bit limits is the caller's
// responsibility.
func ParseNumber(token string) (value int64, err error) {
	s := strings.TrimSpace(token)
	if s == "" {
		err = ErrNumberEmpty
		return
	}

	neg := false
	switch s[0] {
	case '+':
		s = strings.TrimSpace(s[1:])
	case '-':
		neg = true
		s = strings.TrimSpace(s[1:])
	}

	base := 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}
	if s == "" {
		err = ErrNumberDigits
		return
	}

	// ParseUint rejects embedded signs and underscores, matching the
	// literal grammar exactly.
	magnitude, perr := strconv.ParseUint(s, base, 63)
	if perr != nil {
		if errors.Is(perr, strconv.ErrRange) {
			err = ErrParseRange(token)
		} else {
			err = ErrParseNumber(token)
		}
		return
	}

	value = int64(magnitude)
	if neg {
		value = -value
	}

	return
}
