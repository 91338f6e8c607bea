package lexer

import (
	"monkey/internal/token"
	"strings"
)

// readString consumes a double quoted string starting at the opening quote.
// An unterminated string produces an ILLEGAL token holding the raw text.
func (l *Lexer) readString(start mark) token.Token {
	var result strings.Builder

	l.readChar() // consume the opening "

	for {
		if l.atEOF() {
			return newToken(token.ILLEGAL, l.input[start.position:], start)
		}

		if l.ch == '"' {
			l.readChar() // consume the closing "
			break
		}

		if l.ch == '\\' {
			l.readChar() // move to the escaped character
			if l.atEOF() {
				return newToken(token.ILLEGAL, l.input[start.position:], start)
			}
			switch l.ch {
			case 'n':
				result.WriteRune('\n')
			case 't':
				result.WriteRune('\t')
			case 'r':
				result.WriteRune('\r')
			case '\\':
				result.WriteRune('\\')
			case '"':
				result.WriteRune('"')
			default:
				result.WriteRune('\\')
				result.WriteRune(l.ch)
			}
		} else {
			result.WriteRune(l.ch)
		}

		l.readChar()
	}

	return newToken(token.STRING, result.String(), start)
}
