package lexer

import (
	"monkey/internal/token"
)

// NextToken returns the next token of the input. Once the input is exhausted
// every call returns EOF.
func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	start := l.mark()

	switch l.ch {
	case '=':
		tok = l.handleCompoundToken(token.ASSIGN, '=', token.EQ)
	case '+':
		tok = newToken(token.PLUS, string(l.ch), start)
	case '-':
		tok = newToken(token.MINUS, string(l.ch), start)
	case '!':
		tok = l.handleCompoundToken(token.BANG, '=', token.NOT_EQ)
	case '/':
		tok = newToken(token.SLASH, string(l.ch), start)
	case '*':
		tok = newToken(token.ASTERISK, string(l.ch), start)
	case '<':
		tok = newToken(token.LT, string(l.ch), start)
	case '>':
		tok = newToken(token.GT, string(l.ch), start)
	case ';':
		tok = newToken(token.SEMICOLON, string(l.ch), start)
	case ':':
		tok = newToken(token.COLON, string(l.ch), start)
	case ',':
		tok = newToken(token.COMMA, string(l.ch), start)
	case '{':
		tok = newToken(token.LBRACE, string(l.ch), start)
	case '}':
		tok = newToken(token.RBRACE, string(l.ch), start)
	case '(':
		tok = newToken(token.LPAREN, string(l.ch), start)
	case ')':
		tok = newToken(token.RPAREN, string(l.ch), start)
	case '[':
		tok = newToken(token.LBRACKET, string(l.ch), start)
	case ']':
		tok = newToken(token.RBRACKET, string(l.ch), start)
	case '"':
		return l.readString(start)
	default:
		if l.atEOF() {
			return newToken(token.EOF, "", start)
		}
		if isLetter(l.ch) {
			literal := l.readIdentifier()
			return newToken(token.LookupIdent(literal), literal, start)
		}
		if isDigit(l.ch) {
			return newToken(token.INT, l.readNumber(), start)
		}
		tok = newToken(token.ILLEGAL, string(l.ch), start)
	}

	l.readChar()
	return tok
}
