package parser

import (
	"fmt"
	"io"
	"monkey/internal/ast"
	"monkey/internal/lexer"
	"monkey/internal/token"
	"strconv"
)

const (
	_           int = iota
	LOWEST          //
	ASSIGN          // x = y, binds to the right
	EQUALS          // ==
	LESSGREATER     // > or <
	SUM             // +
	PRODUCT         // *
	PREFIX          // -X or !X
	CALL            // myFunction(X)
	INDEX           // array[index]
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:   ASSIGN,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       LESSGREATER,
	token.GT:       LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.SLASH:    PRODUCT,
	token.ASTERISK: PRODUCT,
	token.LPAREN:   CALL,
	token.LBRACKET: INDEX,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l      *lexer.Lexer
	errors []*ParseError

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn

	tracer     io.Writer
	traceLevel int
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		errors: []*ParseError{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.ILLEGAL, p.parseIllegal)
	p.registerPrefix(token.NULL, p.parseNull)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.IF, p.parseIfExpression)
	p.registerPrefix(token.FUNCTION, p.parseFunctionLiteral)
	p.registerPrefix(token.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(token.LBRACE, p.parseHashLiteral)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.PLUS, p.parseInfixExpression)
	p.registerInfix(token.MINUS, p.parseInfixExpression)
	p.registerInfix(token.SLASH, p.parseInfixExpression)
	p.registerInfix(token.ASTERISK, p.parseInfixExpression)
	p.registerInfix(token.EQ, p.parseInfixExpression)
	p.registerInfix(token.NOT_EQ, p.parseInfixExpression)
	p.registerInfix(token.LT, p.parseInfixExpression)
	p.registerInfix(token.GT, p.parseInfixExpression)
	p.registerInfix(token.ASSIGN, p.parseAssignExpression)

	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.LBRACKET, p.parseIndexExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) addError(message string, args ...interface{}) {
	p.addErrorAt(p.curToken, message, args...)
}

func (p *Parser) addErrorAt(tok token.Token, message string, args ...interface{}) {
	p.errors = append(p.errors, &ParseError{
		Token:  tok,
		Line:   tok.Line,
		Column: tok.Column,
		Msg:    fmt.Sprintf(message, args...),
	})
}

func (p *Parser) peekError(t token.TokenType) {
	// Line and column are taken from the peek token, the one that was wrong.
	p.addErrorAt(p.peekToken, "expected next token to be %s, got %s instead", t, p.peekToken.Type)
}

func (p *Parser) noPrefixParseFnError(t token.TokenType) {
	p.addError("no prefix parse function for %s found", t)
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	} else {
		p.peekError(t)
		return false
	}
}

func (p *Parser) Errors() []*ParseError {
	return p.errors
}

// ParseProgram parses the whole input. A statement that fails to parse is
// dropped and parsing resumes at the next statement, so one pass can report
// several errors.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(token.EOF) {
		errCount := len(p.errors)
		stmt := p.parseStatement()
		if len(p.errors) > errCount {
			p.synchronize(false)
			continue
		}
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

// synchronize skips ahead to the token that starts the next statement: the
// one after a ';', a statement keyword, or EOF. Inside a block it also stops
// at the closing brace.
func (p *Parser) synchronize(inBlock bool) {
	for !p.curTokenIs(token.EOF) {
		if inBlock && p.curTokenIs(token.RBRACE) {
			return
		}
		if p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			return
		}
		switch p.peekToken.Type {
		case token.LET, token.RETURN, token.WHILE:
			p.nextToken()
			return
		case token.RBRACE:
			if inBlock {
				p.nextToken()
				return
			}
		}
		p.nextToken()
	}
}

func (p *Parser) parseStatement() ast.Statement {
	defer p.untrace(p.trace("parseStatement"))

	switch p.curToken.Type {
	case token.LET:
		return p.parseLetStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLetStatement() ast.Statement {
	defer p.untrace(p.trace("parseLetStatement"))

	stmt := &ast.LetStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}

	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}

	p.nextToken()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}

	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	defer p.untrace(p.trace("parseReturnStatement"))

	stmt := &ast.ReturnStatement{Token: p.curToken}

	// bare `return;` and `return }` return null
	if p.peekTokenIs(token.SEMICOLON) || p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) {
		if p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
		}
		return stmt
	}

	p.nextToken()

	stmt.ReturnValue = p.parseExpression(LOWEST)
	if stmt.ReturnValue == nil {
		return nil
	}

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}

	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	defer p.untrace(p.trace("parseWhileStatement"))

	stmt := &ast.WhileStatement{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	stmt.Body = p.parseBlockStatement()

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}

	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	defer p.untrace(p.trace("parseExpressionStatement"))

	stmt := &ast.ExpressionStatement{Token: p.curToken}

	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}

	return stmt
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	defer p.untrace(p.trace("parseExpression"))

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) parseIllegal() ast.Expression {
	if len(p.curToken.Literal) > 0 && p.curToken.Literal[0] == '"' {
		p.addError("unterminated string %s", p.curToken.Literal)
	} else {
		p.addError("illegal character %q", p.curToken.Literal)
	}
	return nil
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	defer p.untrace(p.trace("parseIntegerLiteral"))

	lit := &ast.IntegerLiteral{Token: p.curToken}

	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addError("could not parse %q as integer", p.curToken.Literal)
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.Boolean{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNull() ast.Expression {
	return &ast.Null{Token: p.curToken}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	defer p.untrace(p.trace("parsePrefixExpression"))

	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()

	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	defer p.untrace(p.trace("parseInfixExpression"))

	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	defer p.untrace(p.trace("parseAssignExpression"))

	name, ok := left.(*ast.Identifier)
	if !ok {
		p.addError("invalid assignment target %s", left.String())
		return nil
	}

	expression := &ast.AssignExpression{Token: p.curToken, Name: name}

	// one below ASSIGN so that a = b = c groups as a = (b = c)
	p.nextToken()
	expression.Value = p.parseExpression(ASSIGN - 1)
	if expression.Value == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseIfExpression() ast.Expression {
	defer p.untrace(p.trace("parseIfExpression"))

	expression := &ast.IfExpression{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	p.nextToken()
	expression.Condition = p.parseExpression(LOWEST)

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	expression.Consequence = p.parseBlockStatement()

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()

		if p.peekTokenIs(token.IF) {
			p.nextToken() // consume the IF token
			elseToken := p.curToken
			elseIfExpression := p.parseIfExpression()
			if elseIfExpression == nil {
				return nil
			}
			expression.Alternative = &ast.BlockStatement{
				Token: elseToken,
				Statements: []ast.Statement{
					&ast.ExpressionStatement{
						Token:      elseToken,
						Expression: elseIfExpression,
					},
				},
			}
		} else if !p.expectPeek(token.LBRACE) {
			return nil
		} else {
			expression.Alternative = p.parseBlockStatement()
		}
	}

	return expression
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	defer p.untrace(p.trace("parseBlockStatement"))

	block := &ast.BlockStatement{Token: p.curToken}
	block.Statements = []ast.Statement{}

	p.nextToken()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		errCount := len(p.errors)
		stmt := p.parseStatement()
		if len(p.errors) > errCount {
			p.synchronize(true)
			continue
		}
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}

	if p.curTokenIs(token.EOF) {
		p.addError("expected %s to close block opened at %d:%d, got EOF",
			token.RBRACE, block.Token.Line, block.Token.Column)
	}

	return block
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	defer p.untrace(p.trace("parseFunctionLiteral"))

	lit := &ast.FunctionLiteral{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	parameters, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	lit.Parameters = parameters

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	lit.Body = p.parseBlockStatement()

	return lit
}

func (p *Parser) parseFunctionParameters() ([]*ast.Identifier, bool) {
	parameters := []*ast.Identifier{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return parameters, true
	}

	seen := map[string]bool{}
	for {
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
		ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		if seen[ident.Value] {
			p.addError("duplicate parameter %s", ident.Value)
			return nil, false
		}
		seen[ident.Value] = true
		parameters = append(parameters, ident)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken() // consume comma
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}

	return parameters, true
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	defer p.untrace(p.trace("parseCallExpression"))

	exp := &ast.CallExpression{Token: p.curToken, Function: function}
	args, ok := p.parseExpressionList(token.RPAREN)
	if !ok {
		return nil
	}
	exp.Arguments = args
	return exp
}

func (p *Parser) parseExpressionList(end token.TokenType) ([]ast.Expression, bool) {
	list := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}

	p.nextToken()
	item := p.parseExpression(LOWEST)
	if item == nil {
		return nil, false
	}
	list = append(list, item)

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		item = p.parseExpression(LOWEST)
		if item == nil {
			return nil, false
		}
		list = append(list, item)
	}

	if !p.expectPeek(end) {
		return nil, false
	}

	return list, true
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	array := &ast.ArrayLiteral{Token: p.curToken}

	elements, ok := p.parseExpressionList(token.RBRACKET)
	if !ok {
		return nil
	}
	array.Elements = elements

	return array
}

// parseIndexExpression handles both a[i] and the range forms a[i:j], a[:j],
// a[i:] and a[:].
func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	defer p.untrace(p.trace("parseIndexExpression"))

	bracket := p.curToken

	p.nextToken() // consume '['

	var start ast.Expression
	if !p.curTokenIs(token.COLON) {
		start = p.parseExpression(LOWEST)
		if start == nil {
			return nil
		}
		if !p.peekTokenIs(token.COLON) {
			if !p.expectPeek(token.RBRACKET) {
				return nil
			}
			return &ast.IndexExpression{Token: bracket, Left: left, Index: start}
		}
		p.nextToken() // move onto ':'
	}

	rangeExpr := &ast.RangeIndexExpression{Token: bracket, Left: left, Start: start}

	if !p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		rangeExpr.End = p.parseExpression(LOWEST)
		if rangeExpr.End == nil {
			return nil
		}
	}

	if !p.expectPeek(token.RBRACKET) {
		return nil
	}

	return rangeExpr
}

func (p *Parser) parseHashLiteral() ast.Expression {
	defer p.untrace(p.trace("parseHashLiteral"))

	hash := &ast.HashLiteral{Token: p.curToken}
	hash.Pairs = []ast.HashPair{}

	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()

		key := p.parseExpression(LOWEST)
		if key == nil {
			return nil
		}

		if !p.expectPeek(token.COLON) {
			return nil
		}

		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}

		hash.Pairs = append(hash.Pairs, ast.HashPair{Key: key, Value: value})

		if !p.peekTokenIs(token.RBRACE) && !p.expectPeek(token.COMMA) {
			return nil
		}
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}

	return hash
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}
