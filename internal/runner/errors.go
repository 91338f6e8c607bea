package runner

import (
	"errors"
	"fmt"
	"monkey/internal/parser"
	"monkey/internal/util"
	"strings"
)

// ParseErrors is returned when a source has syntax errors. Nothing is
// evaluated in that case.
type ParseErrors struct {
	Errors []*parser.ParseError
}

func (e *ParseErrors) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d parse error(s):\n\t%s", len(e.Errors), strings.Join(msgs, "\n\t"))
}

// RuntimeError carries the message of an evaluation error.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string {
	return "runtime error: " + e.Message
}

// FormatError renders err for a terminal. Parse errors get the offending
// source lines with a caret under each position.
func FormatError(src string, err error) string {
	var parseErrs *ParseErrors
	var runtimeErr *RuntimeError

	switch {
	case errors.As(err, &parseErrs):
		var out strings.Builder
		for _, pe := range parseErrs.Errors {
			fmt.Fprintf(&out, "Error: %s\n", pe.Msg)
			fmt.Fprintf(&out, "    --> %d:%d\n", pe.Line, pe.Column)
			if lines := util.GetContextLines(src, pe.Line, pe.Column); lines != "" {
				out.WriteString(lines)
				out.WriteString("\n")
			}
		}
		return out.String()
	case errors.As(err, &runtimeErr):
		return "Error: " + runtimeErr.Message + "\n"
	default:
		return "Error: " + err.Error() + "\n"
	}
}
