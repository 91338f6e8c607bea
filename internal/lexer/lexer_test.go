package lexer

import (
	"monkey/internal/token"
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `let five = 5;
let ten = 10;

let add = fn(x, y) {
  x + y;
};

let result = add(five, ten);
!-/*5;
5 < 10 > 5;

if (5 < 10) {
	return true;
} else {
	return false;
}
// comment
# alt comment
10 == 10; // comment
10 != 9; # alt comment
""
"foobar"
"foo bar"
[1, 2];
{"foo": "bar"}
while (x) { x = null; }
a[1:2]
// comment at eof
//`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.LET, "let"},
		{token.IDENT, "five"},
		{token.ASSIGN, "="},
		{token.INT, "5"},
		{token.SEMICOLON, ";"},
		{token.LET, "let"},
		{token.IDENT, "ten"},
		{token.ASSIGN, "="},
		{token.INT, "10"},
		{token.SEMICOLON, ";"},
		{token.LET, "let"},
		{token.IDENT, "add"},
		{token.ASSIGN, "="},
		{token.FUNCTION, "fn"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.COMMA, ","},
		{token.IDENT, "y"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.IDENT, "y"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.SEMICOLON, ";"},
		{token.LET, "let"},
		{token.IDENT, "result"},
		{token.ASSIGN, "="},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "five"},
		{token.COMMA, ","},
		{token.IDENT, "ten"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.BANG, "!"},
		{token.MINUS, "-"},
		{token.SLASH, "/"},
		{token.ASTERISK, "*"},
		{token.INT, "5"},
		{token.SEMICOLON, ";"},
		{token.INT, "5"},
		{token.LT, "<"},
		{token.INT, "10"},
		{token.GT, ">"},
		{token.INT, "5"},
		{token.SEMICOLON, ";"},
		{token.IF, "if"},
		{token.LPAREN, "("},
		{token.INT, "5"},
		{token.LT, "<"},
		{token.INT, "10"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.TRUE, "true"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.ELSE, "else"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.FALSE, "false"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.INT, "10"},
		{token.EQ, "=="},
		{token.INT, "10"},
		{token.SEMICOLON, ";"},
		{token.INT, "10"},
		{token.NOT_EQ, "!="},
		{token.INT, "9"},
		{token.SEMICOLON, ";"},
		{token.STRING, ""},
		{token.STRING, "foobar"},
		{token.STRING, "foo bar"},
		{token.LBRACKET, "["},
		{token.INT, "1"},
		{token.COMMA, ","},
		{token.INT, "2"},
		{token.RBRACKET, "]"},
		{token.SEMICOLON, ";"},
		{token.LBRACE, "{"},
		{token.STRING, "foo"},
		{token.COLON, ":"},
		{token.STRING, "bar"},
		{token.RBRACE, "}"},
		{token.WHILE, "while"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.NULL, "null"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.IDENT, "a"},
		{token.LBRACKET, "["},
		{token.INT, "1"},
		{token.COLON, ":"},
		{token.INT, "2"},
		{token.RBRACKET, "]"},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q '%q', got=%q: '%q'",
				i, tt.expectedType, tt.expectedLiteral, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNextStringToken(t *testing.T) {
	input := `"\n\t\r\\\"" "\q" "héllo" "unterminated`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.STRING, "\n\t\r\\\""},
		{token.STRING, `\q`},
		{token.STRING, "héllo"},
		{token.ILLEGAL, `"unterminated`},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q: '%q'",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestIllegalCharacters(t *testing.T) {
	input := "a @ $ 1.5 变量"

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.IDENT, "a"},
		{token.ILLEGAL, "@"},
		{token.ILLEGAL, "$"},
		{token.INT, "1"},
		{token.ILLEGAL, "."},
		{token.INT, "5"},
		{token.IDENT, "变量"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType || tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - expected %q %q, got %q %q",
				i, tt.expectedType, tt.expectedLiteral, tok.Type, tok.Literal)
		}
	}
}

func TestPositions(t *testing.T) {
	input := "let x = 1;\n  x + \"é\" + y"

	tests := []struct {
		literal  string
		position int
		line     int
		column   int
	}{
		{"let", 0, 1, 1},
		{"x", 4, 1, 5},
		{"=", 6, 1, 7},
		{"1", 8, 1, 9},
		{";", 9, 1, 10},
		{"x", 13, 2, 3},
		{"+", 15, 2, 5},
		{"é", 17, 2, 7},
		{"+", 22, 2, 11},
		{"y", 24, 2, 13},
		{"", 25, 2, 14},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Literal != tt.literal {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.literal, tok.Literal)
		}
		if tok.Position != tt.position || tok.Line != tt.line || tok.Column != tt.column {
			t.Errorf("tests[%d] %q - expected pos=%d %d:%d, got pos=%d %d:%d",
				i, tt.literal, tt.position, tt.line, tt.column, tok.Position, tok.Line, tok.Column)
		}
	}
}

func TestEOFIsSticky(t *testing.T) {
	l := New("x")
	l.NextToken()
	for i := 0; i < 3; i++ {
		tok := l.NextToken()
		if tok.Type != token.EOF {
			t.Fatalf("call %d - expected EOF, got %q", i, tok.Type)
		}
		if tok.Position != 1 || tok.Column != 2 {
			t.Fatalf("call %d - EOF moved to pos=%d col=%d", i, tok.Position, tok.Column)
		}
	}
}

func TestAllRestarts(t *testing.T) {
	l := New(`let s = "a"; s[0:1] # done`)

	var first []token.Token
	for tok := range l.All() {
		first = append(first, tok)
	}
	if first[len(first)-1].Type != token.EOF {
		t.Fatalf("sequence does not end with EOF: %v", first[len(first)-1])
	}

	// consume part of the input by hand, then iterate again
	l.NextToken()
	l.NextToken()

	var second []token.Token
	for tok := range l.All() {
		second = append(second, tok)
	}

	if len(first) != len(second) {
		t.Fatalf("token count differs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("token %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestAllStopsEarly(t *testing.T) {
	l := New("a b c d")
	count := 0
	for range l.All() {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Fatalf("expected to stop after 2 tokens, got %d", count)
	}
}
