// Package shell tokenizes hook command lines the way a POSIX shell would,
// without doing any expansion. Variables and command substitutions are left
// untouched.
package shell

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMismatchedQuotes is returned when the input has unbalanced quotes.
	ErrMismatchedQuotes = errors.New("mismatched quotes")

	// ErrTrailingBackslash is returned when the input ends mid-escape.
	ErrTrailingBackslash = errors.New("trailing backslash")
)

// Split splits a command line into tokens, respecting single and double
// quoted segments and backslash escapes.
func Split(input string) ([]string, error) {
	var tokens []string
	var sb strings.Builder

	var inDouble, inSingle, escaped, pending bool

	flush := func() {
		if pending || sb.Len() > 0 {
			tokens = append(tokens, sb.String())
			sb.Reset()
			pending = false
		}
	}

	for i := 0; i < len(input); i++ {
		c := input[i]

		if escaped {
			sb.WriteByte(c)
			escaped = false
			continue
		}

		switch {
		case c == '\\' && !inSingle:
			escaped = true
		case c == '"' && !inSingle:
			inDouble = !inDouble
			pending = true
		case c == '\'' && !inDouble:
			inSingle = !inSingle
			pending = true
		case (c == ' ' || c == '\t') && !inDouble && !inSingle:
			flush()
		default:
			sb.WriteByte(c)
		}
	}

	if inDouble || inSingle {
		return nil, fmt.Errorf("split %q: %w", input, ErrMismatchedQuotes)
	}

	if escaped {
		return nil, fmt.Errorf("split %q: %w", input, ErrTrailingBackslash)
	}

	flush()

	return tokens, nil
}
