// Package phone validates and normalizes phone number strings.
//
// A raw number is an optional leading '+' followed by at least ten characters
// drawn from digits, whitespace and hyphens. The normalized form drops the
// whitespace and hyphens; it is the only form the rest of the system stores
// or compares.
//
// Whitespace is the wide set: ASCII \t \n \v \f \r, every Unicode space
// separator (NBSP, ideographic space...), U+2028, U+2029 and U+FEFF. RE2's
// own \s class covers only the ASCII subset.
package phone

import (
	"errors"
	"fmt"
	"regexp"
)

// Number is a normalized phone number: digits with an optional leading '+'.
type Number string

func (n Number) String() string { return string(n) }

// ErrInvalidFormat is matched (errors.Is) by every ValidationError.
var ErrInvalidFormat = errors.New("invalid phone number format")

// ValidationError reports a raw string that failed the format check.
type ValidationError struct {
	Input string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidFormat.Error(), e.Input)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidFormat }

const spaceClass = `\t\n\v\f\r\p{Zs}\x{2028}\x{2029}\x{FEFF}`

var (
	formatRe    = regexp.MustCompile(`^\+?[\d` + spaceClass + `-]{10,}$`)
	separatorRe = regexp.MustCompile(`[` + spaceClass + `-]`)
)

// Normalize validates raw and returns its normalized form.
func Normalize(raw string) (Number, error) {
	if !formatRe.MatchString(raw) {
		return "", &ValidationError{Input: raw}
	}
	return Number(separatorRe.ReplaceAllString(raw, "")), nil
}
