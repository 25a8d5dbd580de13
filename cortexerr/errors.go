package cortexerr

import (
	"fmt"
	"strings"
)

// curated is an implementation of the go language error interface. it
// defers formatting to Error() so that Is()/Has() can compare against the
// original pattern rather than an already-interpolated string.
type curated struct {
	pattern string
	values  []interface{}
	code    Code
	hasCode bool
}

// Errorf creates a new curated error from a pattern and values, in the
// manner of fmt.Errorf, but the pattern is retained so Is()/Has() can match
// on it later.
func Errorf(pattern string, values ...interface{}) error {
	return curated{pattern: pattern, values: values}
}

// Coded creates a new curated error and attaches a taxonomy Code to it.
func Coded(code Code, pattern string, values ...interface{}) error {
	return curated{pattern: pattern, values: values, code: code, hasCode: true}
}

// Error returns the normalised error message: the removal of duplicate
// adjacent error message parts in the error chain.
func (er curated) Error() string {
	s := fmt.Errorf(er.pattern, er.values...).Error()

	p := strings.SplitN(s, ": ", 3)
	if len(p) > 1 && p[0] == p[1] {
		return strings.Join(p[1:], ": ")
	}
	return strings.Join(p, ": ")
}

// Unwrap lets errors.Is/errors.As descend into any wrapped curated values.
func (er curated) Unwrap() error {
	for _, v := range er.values {
		if e, ok := v.(error); ok {
			return e
		}
	}
	return nil
}

// IsAny reports whether err was created by this package.
func IsAny(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(curated)
	return ok
}

// Is reports whether err was created from the given pattern.
func Is(err error, pattern string) bool {
	if err == nil {
		return false
	}
	if er, ok := err.(curated); ok {
		return er.pattern == pattern
	}
	return false
}

// Has reports whether pattern appears anywhere in err's curated chain.
func Has(err error, pattern string) bool {
	if err == nil || !IsAny(err) {
		return false
	}
	if Is(err, pattern) {
		return true
	}
	for _, v := range err.(curated).values {
		if e, ok := v.(curated); ok {
			if Has(e, pattern) {
				return true
			}
		}
	}
	return false
}

// CodeOf recovers the Code attached by Coded(), and whether one was
// attached at all.
func CodeOf(err error) (Code, bool) {
	if err == nil {
		return 0, false
	}
	if er, ok := err.(curated); ok && er.hasCode {
		return er.code, true
	}
	return 0, false
}
