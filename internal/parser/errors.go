package parser

import (
	"fmt"
	"monkey/internal/token"
)

// ParseError is a syntax error tied to the token that caused it.
type ParseError struct {
	Token  token.Token
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("[%3d:%2d] %s", e.Line, e.Column, e.Msg)
}
