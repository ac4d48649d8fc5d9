package source

import (
	"errors"
	"fmt"
	"strings"
)

// MaxLineSize bounds the lines handed to a scanner: a line must be shorter
// than MaxLineSize bytes.
const MaxLineSize = 4096

// ErrLineTooLong is matched by errors.Is on a *LineTooLongError.
var ErrLineTooLong = errors.New("line too long")

// LineTooLongError reports the first line reaching the limit.
type LineTooLongError struct {
	// Line is the 1-based line number.
	Line int
	// Max is the limit that was reached.
	Max int
}

func (e *LineTooLongError) Error() string {
	return fmt.Sprintf("line %d too long (max size=%d)", e.Line, e.Max)
}

// Is makes errors.Is(err, ErrLineTooLong) succeed.
func (e *LineTooLongError) Is(target error) bool {
	return target == ErrLineTooLong
}

// SplitLines splits body into lines. "\r\n" and "\n" both end a line and a
// final newline does not produce an empty trailing line. When a line is max
// bytes or longer, the lines before it are returned together with a
// *LineTooLongError.
func SplitLines(body string, max int) ([]string, error) {
	lines := splitRaw(body)
	for i, line := range lines {
		if max > 0 && len(line) >= max {
			return lines[:i], &LineTooLongError{Line: i + 1, Max: max}
		}
	}
	return lines, nil
}

func splitRaw(body string) []string {
	if body == "" {
		return nil
	}
	body = strings.TrimSuffix(body, "\n")
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
