// Package radix converts digit strings in an arbitrary positional base to
// arbitrary-precision integers and back.
package radix

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// MinBase and MaxBase bound the radixes accepted by Decode and Encode.
const (
	MinBase = 2
	MaxBase = big.MaxBase
)

// ErrInvalidDigit is returned when a digit string cannot be read in the
// declared base, or the base itself is unsupported.
var ErrInvalidDigit = errors.New("invalid digit")

// Decode returns the integer that digits represents in the given base.
// A single leading sign is allowed. For bases up to 36 letters are
// case-insensitive; above 36 lower case letters come before upper case.
func Decode(digits string, base int) (*big.Int, error) {
	if base < MinBase || base > MaxBase {
		return nil, fmt.Errorf("%w: base %d outside [%d, %d]", ErrInvalidDigit, base, MinBase, MaxBase)
	}
	s := strings.TrimSpace(digits)
	body := strings.TrimLeft(s, "+-")
	if len(s)-len(body) > 1 {
		return nil, fmt.Errorf("%w: repeated sign in %q", ErrInvalidDigit, digits)
	}
	if body == "" {
		return nil, fmt.Errorf("%w: no digits in %q", ErrInvalidDigit, digits)
	}
	for i, r := range body {
		if digitValue(r, base) >= base {
			return nil, fmt.Errorf("%w: %q at position %d is not a base-%d digit", ErrInvalidDigit, r, i, base)
		}
	}

	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("%w: cannot read %q in base %d", ErrInvalidDigit, digits, base)
	}
	return v, nil
}

// Encode renders v in the given base using the same digit alphabet Decode
// reads.
func Encode(v *big.Int, base int) (string, error) {
	if v == nil {
		return "", errors.New("radix: nil value")
	}
	if base < MinBase || base > MaxBase {
		return "", fmt.Errorf("%w: base %d outside [%d, %d]", ErrInvalidDigit, base, MinBase, MaxBase)
	}
	return v.Text(base), nil
}

// digitValue mirrors math/big's digit alphabet. It returns MaxBase+1 for
// runes that are never digits.
func digitValue(r rune, base int) int {
	switch {
	case '0' <= r && r <= '9':
		return int(r - '0')
	case 'a' <= r && r <= 'z':
		return int(r-'a') + 10
	case 'A' <= r && r <= 'Z':
		if base <= 36 {
			return int(r-'A') + 10
		}
		return int(r-'A') + 36
	}
	return MaxBase + 1
}
