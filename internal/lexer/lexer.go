package lexer

import (
	"iter"
	"monkey/internal/token"
	"unicode"
	"unicode/utf8"
)

type Lexer struct {
	input        string
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; 0 means EOF
	line         int  // line of ch, 1-based
	column       int  // column of ch in runes, 1-based
}

// mark records where a token starts.
type mark struct {
	position int
	line     int
	column   int
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.Reset()
	return l
}

// Reset rewinds the lexer to the start of its input.
func (l *Lexer) Reset() {
	l.position = 0
	l.readPosition = 0
	l.ch = 0
	l.line = 1
	l.column = 1
	l.readChar()
}

// Source returns the text being tokenized.
func (l *Lexer) Source() string {
	return l.input
}

// All yields every token of the input up to and including EOF. Each
// iteration starts again from the beginning, so ranging twice produces the
// same sequence.
func (l *Lexer) All() iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		l.Reset()
		for {
			tok := l.NextToken()
			if !yield(tok) || tok.Type == token.EOF {
				return
			}
		}
	}
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) mark() mark {
	return mark{position: l.position, line: l.line, column: l.column}
}

func (l *Lexer) handleCompoundToken(
	t token.TokenType,
	ch1 rune,
	t1 token.TokenType,
) token.Token {
	start := l.mark()
	if l.peekChar() == ch1 {
		first := l.ch
		l.readChar()
		literal := string(first) + string(l.ch)
		return newToken(t1, literal, start)
	}
	return newToken(t, string(l.ch), start)
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.ch {
		case ' ', '\t', '\r', '\n':
			l.readChar()
		case '#':
			l.skipToLineEnd()
		case '/':
			if l.peekChar() == '/' {
				l.skipToLineEnd()
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) skipToLineEnd() {
	for l.ch != '\n' && !l.atEOF() {
		l.readChar()
	}
}

// readChar advances by one UTF-8 rune, updating byte positions and the
// line/column of the new current rune
func (l *Lexer) readChar() {
	if l.readPosition > 0 && !l.atEOF() {
		if l.ch == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// readIdentifier returns the substring (bytes) covering the identifier runes
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() string {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// Unicode-aware so identifiers like café or 变量 work
func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.Is(unicode.Mn, ch) || unicode.Is(unicode.Mc, ch)
}

// integers are ASCII only
func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func newToken(tokenType token.TokenType, literal string, start mark) token.Token {
	return token.Token{
		Type:     tokenType,
		Literal:  literal,
		Position: start.position,
		Line:     start.line,
		Column:   start.column,
	}
}
