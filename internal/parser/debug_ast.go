package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"monkey/internal/ast"
	"os"
)

// WalkAST recursively traverses an AST and serializes it into a map structure for JSON output.
// Keys carry a numeric prefix so encoding/json keeps them in a readable order.
func WalkAST(node ast.Node) interface{} {
	switch n := node.(type) {
	case nil:
		return nil

	case *ast.Program:
		statements := make([]interface{}, len(n.Statements))
		for i, s := range n.Statements {
			statements[i] = WalkAST(s)
		}
		return map[string]interface{}{
			"0.type":       "Program",
			"1.statements": statements,
		}

	case *ast.LetStatement:
		return map[string]interface{}{
			"0.type":     "LetStatement",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.name":     n.Name.Value,
			"3.value":    WalkAST(n.Value),
		}

	case *ast.ReturnStatement:
		return map[string]interface{}{
			"0.type":        "ReturnStatement",
			"1.position":    position(n.Token.Line, n.Token.Column),
			"2.returnValue": WalkAST(n.ReturnValue),
		}

	case *ast.ExpressionStatement:
		return map[string]interface{}{
			"0.type":       "ExpressionStatement",
			"1.position":   position(n.Token.Line, n.Token.Column),
			"2.expression": WalkAST(n.Expression),
		}

	case *ast.BlockStatement:
		if n == nil {
			return nil
		}
		statements := make([]interface{}, len(n.Statements))
		for i, s := range n.Statements {
			statements[i] = WalkAST(s)
		}
		return map[string]interface{}{
			"0.type":       "BlockStatement",
			"1.position":   position(n.Token.Line, n.Token.Column),
			"2.statements": statements,
		}

	case *ast.WhileStatement:
		return map[string]interface{}{
			"0.type":      "WhileStatement",
			"1.position":  position(n.Token.Line, n.Token.Column),
			"2.condition": WalkAST(n.Condition),
			"3.body":      WalkAST(n.Body),
		}

	case *ast.Identifier:
		return map[string]interface{}{
			"0.type":     "Identifier",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.value":    n.Value,
		}

	case *ast.IntegerLiteral:
		return map[string]interface{}{
			"0.type":     "IntegerLiteral",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.value":    n.Value,
		}

	case *ast.StringLiteral:
		return map[string]interface{}{
			"0.type":     "StringLiteral",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.value":    n.Value,
		}

	case *ast.Boolean:
		return map[string]interface{}{
			"0.type":     "Boolean",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.value":    n.Value,
		}

	case *ast.Null:
		return map[string]interface{}{
			"0.type":     "Null",
			"1.position": position(n.Token.Line, n.Token.Column),
		}

	case *ast.PrefixExpression:
		return map[string]interface{}{
			"0.type":     "PrefixExpression",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.operator": n.Operator,
			"3.right":    WalkAST(n.Right),
		}

	case *ast.InfixExpression:
		return map[string]interface{}{
			"0.type":     "InfixExpression",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.left":     WalkAST(n.Left),
			"3.operator": n.Operator,
			"4.right":    WalkAST(n.Right),
		}

	case *ast.AssignExpression:
		return map[string]interface{}{
			"0.type":     "AssignExpression",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.name":     n.Name.Value,
			"3.value":    WalkAST(n.Value),
		}

	case *ast.IfExpression:
		return map[string]interface{}{
			"0.type":        "IfExpression",
			"1.position":    position(n.Token.Line, n.Token.Column),
			"2.condition":   WalkAST(n.Condition),
			"3.consequence": WalkAST(n.Consequence),
			"4.alternative": WalkAST(n.Alternative),
		}

	case *ast.FunctionLiteral:
		params := make([]string, len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = p.Value
		}
		return map[string]interface{}{
			"0.type":       "FunctionLiteral",
			"1.position":   position(n.Token.Line, n.Token.Column),
			"2.parameters": params,
			"3.body":       WalkAST(n.Body),
		}

	case *ast.CallExpression:
		args := make([]interface{}, len(n.Arguments))
		for i, a := range n.Arguments {
			args[i] = WalkAST(a)
		}
		return map[string]interface{}{
			"0.type":      "CallExpression",
			"1.position":  position(n.Token.Line, n.Token.Column),
			"2.function":  WalkAST(n.Function),
			"3.arguments": args,
		}

	case *ast.ArrayLiteral:
		elements := make([]interface{}, len(n.Elements))
		for i, e := range n.Elements {
			elements[i] = WalkAST(e)
		}
		return map[string]interface{}{
			"0.type":     "ArrayLiteral",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.elements": elements,
		}

	case *ast.HashLiteral:
		pairs := make([]interface{}, len(n.Pairs))
		for i, pair := range n.Pairs {
			pairs[i] = map[string]interface{}{
				"0.key":   WalkAST(pair.Key),
				"1.value": WalkAST(pair.Value),
			}
		}
		return map[string]interface{}{
			"0.type":     "HashLiteral",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.pairs":    pairs,
		}

	case *ast.IndexExpression:
		return map[string]interface{}{
			"0.type":     "IndexExpression",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.left":     WalkAST(n.Left),
			"3.index":    WalkAST(n.Index),
		}

	case *ast.RangeIndexExpression:
		return map[string]interface{}{
			"0.type":     "RangeIndexExpression",
			"1.position": position(n.Token.Line, n.Token.Column),
			"2.left":     WalkAST(n.Left),
			"3.start":    WalkAST(n.Start),
			"4.end":      WalkAST(n.End),
		}

	default:
		return map[string]interface{}{
			"0.type": "Unknown: " + n.String(),
		}
	}
}

func position(line, column int) string {
	return fmt.Sprintf("%d:%d", line, column)
}

// WriteAST encodes node as indented JSON to w.
func WriteAST(node ast.Node, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")  // Pretty-print the JSON
	encoder.SetEscapeHTML(false) // Disable escaping of characters like <, >, &

	if err := encoder.Encode(WalkAST(node)); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// WriteASTToJSON takes a root AST node and writes it to a JSON file.
func WriteASTToJSON(node ast.Node, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	return WriteAST(node, file)
}
