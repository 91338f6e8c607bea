package ast

import (
	"monkey/internal/token"
	"testing"
)

func TestString(t *testing.T) {
	program := &Program{
		Statements: []Statement{
			&LetStatement{
				Token: token.Token{Type: token.LET, Literal: "let"},
				Name: &Identifier{
					Token: token.Token{Type: token.IDENT, Literal: "myVar"},
					Value: "myVar",
				},
				Value: &Identifier{
					Token: token.Token{Type: token.IDENT, Literal: "anotherVar"},
					Value: "anotherVar",
				},
			},
			&ExpressionStatement{
				Token: token.Token{Type: token.IDENT, Literal: "myVar"},
				Expression: &RangeIndexExpression{
					Token: token.Token{Type: token.LBRACKET, Literal: "["},
					Left:  &Identifier{Token: token.Token{Type: token.IDENT, Literal: "s"}, Value: "s"},
					End:   &IntegerLiteral{Token: token.Token{Type: token.INT, Literal: "2"}, Value: 2},
				},
			},
		},
	}

	expected := "let myVar = anotherVar;(s[:2]);"
	if program.String() != expected {
		t.Errorf("program.String() wrong. expected=%q, got=%q", expected, program.String())
	}
}

func TestStringToleratesMissingNodes(t *testing.T) {
	stmt := &ExpressionStatement{
		Expression: &InfixExpression{Operator: "+", Left: nil, Right: nil},
	}
	if got := stmt.String(); got != "( + );" {
		t.Errorf("unexpected string %q", got)
	}

	var block *BlockStatement
	if got := block.String(); got != "" {
		t.Errorf("nil block should render empty, got %q", got)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", `"plain"`},
		{"a\nb", `"a\nb"`},
		{`say "hi"`, `"say \"hi\""`},
		{`back\slash`, `"back\\slash"`},
		{"tab\there", `"tab\there"`},
	}

	for _, tt := range tests {
		if got := Quote(tt.input); got != tt.expected {
			t.Errorf("Quote(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}
