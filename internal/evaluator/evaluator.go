package evaluator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"monkey/internal/ast"
	"monkey/internal/object"
	"os"
	"time"
)

var (
	NULL  = object.NULL
	TRUE  = object.TRUE
	FALSE = object.FALSE
)

// DefaultMaxCallDepth bounds nested function calls when Config leaves it unset.
const DefaultMaxCallDepth = 10000

type Config struct {
	Output       io.Writer // print and println write here; os.Stdout if nil
	MaxCallDepth int       // DefaultMaxCallDepth if zero or less
	Builtins     *Registry // NewRegistry() if nil
	Sleep        func(time.Duration)
}

type Evaluator struct {
	envStack []*object.Environment // Environment stack encapsulated in an evaluator struct

	builtins     *Registry
	out          io.Writer
	sleep        func(time.Duration)
	maxCallDepth int
	callDepth    int
}

func New(cfg Config) *Evaluator {
	e := &Evaluator{
		builtins:     cfg.Builtins,
		out:          cfg.Output,
		sleep:        cfg.Sleep,
		maxCallDepth: cfg.MaxCallDepth,
	}
	if e.builtins == nil {
		e.builtins = NewRegistry()
	}
	if e.out == nil {
		e.out = os.Stdout
	}
	if e.sleep == nil {
		e.sleep = time.Sleep
	}
	if e.maxCallDepth <= 0 {
		e.maxCallDepth = DefaultMaxCallDepth
	}
	return e
}

func (e *Evaluator) PushEnv(env *object.Environment) {
	e.envStack = append(e.envStack, env)
}

// CurrentEnv returns the innermost scope. It panics when no environment has
// been pushed.
func (e *Evaluator) CurrentEnv() *object.Environment {
	// Access the current environment from the top frame
	if len(e.envStack) == 0 {
		panic("Environment stack is empty in the current frame")
	}
	return e.envStack[len(e.envStack)-1]
}

func (e *Evaluator) PopEnv() {
	if len(e.envStack) == 0 {
		panic("Attempted to pop from an empty environment stack")
	}
	e.envStack = e.envStack[:len(e.envStack)-1]
}

// Output, NewError and Sleep make the evaluator an object.EvaluatorContext
// for the builtins it calls.
func (e *Evaluator) Output() io.Writer { return e.out }

func (e *Evaluator) NewError(message string, a ...interface{}) *object.Error {
	return newError(message, a...)
}

func (e *Evaluator) Sleep(d time.Duration) { e.sleep(d) }

// EvalProgram runs program with env as its global scope. A top-level return
// yields the returned value.
func (e *Evaluator) EvalProgram(program *ast.Program, env *object.Environment) object.Object {
	e.PushEnv(env)
	defer e.PopEnv()
	return e.Eval(program)
}

// Eval evaluates node in the current scope. With no scope pushed it returns
// an error; use EvalProgram or PushEnv first.
func (e *Evaluator) Eval(node ast.Node) object.Object {
	if len(e.envStack) == 0 {
		return newError("no environment to evaluate %T in", node)
	}

	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return e.evalProgram(node)

	case *ast.BlockStatement:
		return e.evalBlockStatement(node)

	case *ast.ExpressionStatement:
		return e.Eval(node.Expression)

	case *ast.ReturnStatement:
		if node.ReturnValue == nil {
			return &object.ReturnValue{Value: NULL}
		}
		val := e.Eval(node.ReturnValue)
		if e.isSignal(val) {
			return val
		}
		return &object.ReturnValue{Value: val}

	case *ast.LetStatement:
		val := e.Eval(node.Value)
		if e.isSignal(val) {
			return val
		}
		return e.CurrentEnv().Define(node.Name.Value, val)

	case *ast.WhileStatement:
		return e.evalWhileStatement(node)

	// Expressions
	case *ast.IntegerLiteral:
		return &object.Integer{Value: node.Value}

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}

	case *ast.Boolean:
		return nativeBoolToBooleanObject(node.Value)

	case *ast.Null:
		return NULL

	case *ast.PrefixExpression:
		right := e.Eval(node.Right)
		if e.isSignal(right) {
			return right
		}
		return e.evalPrefixExpression(node.Operator, right)

	case *ast.InfixExpression:
		left := e.Eval(node.Left)
		if e.isSignal(left) {
			return left
		}

		right := e.Eval(node.Right)
		if e.isSignal(right) {
			return right
		}

		return e.evalInfixExpression(node.Operator, left, right)

	case *ast.AssignExpression:
		val := e.Eval(node.Value)
		if e.isSignal(val) {
			return val
		}

		// the name must already be defined in some enclosing scope
		if _, err := e.CurrentEnv().Assign(node.Name.Value, val); err != nil {
			if errors.Is(err, object.ErrUndefined) {
				return newError("identifier not found: %s", node.Name.Value)
			}
			return newError("%s", err)
		}
		return val

	case *ast.IfExpression:
		return e.evalIfExpression(node)

	case *ast.Identifier:
		return e.evalIdentifier(node)

	case *ast.FunctionLiteral:
		return &object.Function{
			Parameters: node.Parameters,
			Env:        e.CurrentEnv(),
			Body:       node.Body,
		}

	case *ast.CallExpression:
		function := e.Eval(node.Function)
		if e.isSignal(function) {
			return function
		}

		args := e.evalExpressions(node.Arguments)
		if len(args) == 1 && e.isSignal(args[0]) {
			return args[0]
		}

		return e.applyFunction(function, args)

	case *ast.ArrayLiteral:
		elements := e.evalExpressions(node.Elements)
		if len(elements) == 1 && e.isSignal(elements[0]) {
			return elements[0]
		}
		return &object.Array{Elements: elements}

	case *ast.HashLiteral:
		return e.evalHashLiteral(node)

	case *ast.IndexExpression:
		left := e.Eval(node.Left)
		if e.isSignal(left) {
			return left
		}
		index := e.Eval(node.Index)
		if e.isSignal(index) {
			return index
		}
		return e.evalIndexExpression(left, index)

	case *ast.RangeIndexExpression:
		return e.evalRangeIndexExpression(node)
	}

	return newError("cannot evaluate %T", node)
}

func (e *Evaluator) evalProgram(program *ast.Program) object.Object {
	var result object.Object = NULL

	for _, statement := range program.Statements {
		result = e.Eval(statement)

		switch result := result.(type) {
		case *object.ReturnValue:
			return result.Value
		case *object.Error:
			return result
		}
	}

	return result
}

// evalBlockStatement runs the block in a fresh scope so that lets inside it
// are not visible afterwards.
func (e *Evaluator) evalBlockStatement(block *ast.BlockStatement) object.Object {
	e.PushEnv(object.NewEnclosedEnvironment(e.CurrentEnv()))
	defer e.PopEnv()

	return e.evalStatements(block.Statements)
}

// evalStatements stops at the first return or error and hands it up still
// wrapped, so enclosing blocks stop too.
func (e *Evaluator) evalStatements(statements []ast.Statement) object.Object {
	var result object.Object = NULL

	for _, statement := range statements {
		result = e.Eval(statement)

		rt := result.Type()
		if rt == object.RETURN_VALUE_OBJ || rt == object.ERROR_OBJ {
			return result
		}
	}

	return result
}

func (e *Evaluator) evalWhileStatement(ws *ast.WhileStatement) object.Object {
	for {
		condition := e.Eval(ws.Condition)
		if e.isSignal(condition) {
			return condition
		}
		if !e.isTruthy(condition) {
			return NULL
		}

		result := e.evalBlockStatement(ws.Body)
		rt := result.Type()
		if rt == object.RETURN_VALUE_OBJ || rt == object.ERROR_OBJ {
			return result
		}
	}
}

func nativeBoolToBooleanObject(input bool) *object.Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

func (e *Evaluator) evalPrefixExpression(operator string, right object.Object) object.Object {
	switch operator {
	case "!":
		return e.evalBangOperatorExpression(right)
	case "-":
		return e.evalMinusPrefixOperatorExpression(right)
	default:
		return newError("unknown operator: %s%s", operator, right.Type())
	}
}

func (e *Evaluator) evalBangOperatorExpression(right object.Object) object.Object {
	return nativeBoolToBooleanObject(!e.isTruthy(right))
}

func (e *Evaluator) evalMinusPrefixOperatorExpression(right object.Object) object.Object {
	if right.Type() != object.INTEGER_OBJ {
		return newError("unknown operator: -%s", right.Type())
	}

	value := right.(*object.Integer).Value
	return &object.Integer{Value: -value}
}

func (e *Evaluator) evalInfixExpression(
	operator string,
	left, right object.Object,
) object.Object {
	switch {
	case left.Type() == object.INTEGER_OBJ && right.Type() == object.INTEGER_OBJ:
		return e.evalIntegerInfixExpression(operator, left, right)
	case left.Type() == object.STRING_OBJ && right.Type() == object.STRING_OBJ:
		return e.evalStringInfixExpression(operator, left, right)
	case operator == "==":
		return nativeBoolToBooleanObject(object.Equal(left, right))
	case operator == "!=":
		return nativeBoolToBooleanObject(!object.Equal(left, right))
	case left.Type() != right.Type():
		return newError("type mismatch: %s %s %s",
			left.Type(), operator, right.Type())
	default:
		return newError("unknown operator: %s %s %s",
			left.Type(), operator, right.Type())
	}
}

func (e *Evaluator) evalIntegerInfixExpression(
	operator string,
	left, right object.Object,
) object.Object {
	leftVal := left.(*object.Integer).Value
	rightVal := right.(*object.Integer).Value

	switch operator {
	case "+":
		return &object.Integer{Value: leftVal + rightVal}
	case "-":
		return &object.Integer{Value: leftVal - rightVal}
	case "*":
		return &object.Integer{Value: leftVal * rightVal}
	case "/":
		if rightVal == 0 {
			return newError("division by zero")
		}
		return &object.Integer{Value: leftVal / rightVal}
	case "<":
		return nativeBoolToBooleanObject(leftVal < rightVal)
	case ">":
		return nativeBoolToBooleanObject(leftVal > rightVal)
	case "==":
		return nativeBoolToBooleanObject(leftVal == rightVal)
	case "!=":
		return nativeBoolToBooleanObject(leftVal != rightVal)
	default:
		return newError("unknown operator: %s %s %s",
			left.Type(), operator, right.Type())
	}
}

func (e *Evaluator) evalStringInfixExpression(
	operator string,
	left, right object.Object,
) object.Object {
	leftVal := left.(*object.String).Value
	rightVal := right.(*object.String).Value

	switch operator {
	case "+":
		return &object.String{Value: leftVal + rightVal}
	case "<":
		return nativeBoolToBooleanObject(leftVal < rightVal)
	case ">":
		return nativeBoolToBooleanObject(leftVal > rightVal)
	case "==":
		return nativeBoolToBooleanObject(leftVal == rightVal)
	case "!=":
		return nativeBoolToBooleanObject(leftVal != rightVal)
	default:
		return newError("unknown operator: %s %s %s",
			left.Type(), operator, right.Type())
	}
}

func (e *Evaluator) evalIfExpression(
	ie *ast.IfExpression,
) object.Object {
	condition := e.Eval(ie.Condition)
	if e.isSignal(condition) {
		return condition
	}

	if e.isTruthy(condition) {
		return e.evalBlockStatement(ie.Consequence)
	} else if ie.Alternative != nil {
		return e.evalBlockStatement(ie.Alternative)
	} else {
		return NULL
	}
}

// evalIdentifier looks in scope first so a let can shadow a builtin.
func (e *Evaluator) evalIdentifier(
	node *ast.Identifier,
) object.Object {
	if val, ok := e.CurrentEnv().Get(node.Value); ok {
		return val
	}

	if builtin, ok := e.builtins.Lookup(node.Value); ok {
		return builtin
	}

	return newError("identifier not found: %s", node.Value)
}

func (e *Evaluator) isTruthy(obj object.Object) bool {
	switch obj := obj.(type) {
	case *object.Null:
		return false
	case *object.Boolean:
		return obj.Value
	default:
		return true
	}
}

func newError(format string, a ...interface{}) *object.Error {
	return &object.Error{Message: fmt.Sprintf(format, a...)}
}

// isSignal reports an error or a pending return. Either one stops the
// enclosing expression and travels up unchanged.
func (e *Evaluator) isSignal(obj object.Object) bool {
	if obj != nil {
		rt := obj.Type()
		return rt == object.ERROR_OBJ || rt == object.RETURN_VALUE_OBJ
	}
	return false
}

func (e *Evaluator) evalExpressions(
	exps []ast.Expression,
) []object.Object {
	result := make([]object.Object, 0, len(exps))

	for _, exp := range exps {
		evaluated := e.Eval(exp)
		if e.isSignal(evaluated) {
			return []object.Object{evaluated}
		}
		result = append(result, evaluated)
	}

	return result
}

func (e *Evaluator) applyFunction(fnObj object.Object, args []object.Object) object.Object {
	switch fn := fnObj.(type) {
	case *object.Function:
		if len(args) != len(fn.Parameters) {
			return newError("wrong number of arguments: want=%d, got=%d",
				len(fn.Parameters), len(args))
		}
		if e.callDepth >= e.maxCallDepth {
			slog.Warn("call depth limit reached", slog.Int("max-call-depth", e.maxCallDepth))
			return newError("maximum call depth %d exceeded", e.maxCallDepth)
		}

		e.callDepth++
		defer func() { e.callDepth-- }()

		// Create a new call frame and push it
		e.PushEnv(e.extendFunctionEnv(fn, args))
		defer e.PopEnv()

		return e.unwrapReturnValue(e.evalStatements(fn.Body.Statements))

	case *object.Builtin:
		return fn.Fn(e, args...)

	default:
		return newError("not a function: %s", fnObj.Type())
	}
}

// extendFunctionEnv binds parameters in a scope enclosed by the closure's
// captured environment, not the caller's.
func (e *Evaluator) extendFunctionEnv(
	fn *object.Function,
	args []object.Object,
) *object.Environment {
	env := object.NewEnclosedEnvironment(fn.Env)

	for i, param := range fn.Parameters {
		env.Define(param.Value, args[i])
	}

	return env
}

func (e *Evaluator) unwrapReturnValue(obj object.Object) object.Object {
	if returnValue, ok := obj.(*object.ReturnValue); ok {
		return returnValue.Value
	}

	return obj
}

func (e *Evaluator) evalHashLiteral(
	node *ast.HashLiteral,
) object.Object {
	hash := object.NewHash()

	for _, pair := range node.Pairs {
		key := e.Eval(pair.Key)
		if e.isSignal(key) {
			return key
		}

		hashKey, ok := key.(object.Hashable)
		if !ok {
			return newError("unusable as hash key: %s", key.Type())
		}

		value := e.Eval(pair.Value)
		if e.isSignal(value) {
			return value
		}

		hash.Put(hashKey, value)
	}

	return hash
}

func (e *Evaluator) evalIndexExpression(left, index object.Object) object.Object {
	switch {
	case left.Type() == object.ARRAY_OBJ && index.Type() == object.INTEGER_OBJ:
		return e.evalArrayIndexExpression(left, index)
	case left.Type() == object.STRING_OBJ && index.Type() == object.INTEGER_OBJ:
		return e.evalStringIndexExpression(left, index)
	case left.Type() == object.HASH_OBJ:
		return e.evalHashIndexExpression(left, index)
	case left.Type() == object.ARRAY_OBJ || left.Type() == object.STRING_OBJ:
		return newError("index must be INTEGER, got %s", index.Type())
	default:
		return newError("index operator not supported: %s", left.Type())
	}
}

func (e *Evaluator) evalArrayIndexExpression(array, index object.Object) object.Object {
	arrayObject := array.(*object.Array)
	idx := index.(*object.Integer).Value
	length := int64(len(arrayObject.Elements))

	if idx < 0 || idx >= length {
		return newError("index out of range: %d (len %d)", idx, length)
	}

	return arrayObject.Elements[idx]
}

// strings index by rune, not byte
func (e *Evaluator) evalStringIndexExpression(str, index object.Object) object.Object {
	runes := []rune(str.(*object.String).Value)
	idx := index.(*object.Integer).Value
	length := int64(len(runes))

	if idx < 0 || idx >= length {
		return newError("index out of range: %d (len %d)", idx, length)
	}

	return &object.String{Value: string(runes[idx])}
}

func (e *Evaluator) evalHashIndexExpression(hash, index object.Object) object.Object {
	hashObject := hash.(*object.Hash)

	key, ok := index.(object.Hashable)
	if !ok {
		return newError("unusable as hash key: %s", index.Type())
	}

	value, ok := hashObject.Get(key)
	if !ok {
		return NULL
	}

	return value
}

func (e *Evaluator) evalRangeIndexExpression(node *ast.RangeIndexExpression) object.Object {
	left := e.Eval(node.Left)
	if e.isSignal(left) {
		return left
	}

	var length int
	switch left := left.(type) {
	case *object.Array:
		length = len(left.Elements)
	case *object.String:
		length = len([]rune(left.Value))
	default:
		return newError("range index not supported: %s", left.Type())
	}

	start, signal := e.evalRangeBound(node.Start, 0)
	if signal != nil {
		return signal
	}
	end, signal := e.evalRangeBound(node.End, int64(length))
	if signal != nil {
		return signal
	}

	from, to := clampRange(start, end, length)

	switch left := left.(type) {
	case *object.Array:
		elements := make([]object.Object, to-from)
		copy(elements, left.Elements[from:to])
		return &object.Array{Elements: elements}
	default:
		runes := []rune(left.(*object.String).Value)
		return &object.String{Value: string(runes[from:to])}
	}
}

func (e *Evaluator) evalRangeBound(exp ast.Expression, def int64) (int64, object.Object) {
	if exp == nil {
		return def, nil
	}

	bound := e.Eval(exp)
	if e.isSignal(bound) {
		return 0, bound
	}

	integer, ok := bound.(*object.Integer)
	if !ok {
		return 0, newError("range bound must be INTEGER, got %s", bound.Type())
	}
	return integer.Value, nil
}

// clampRange limits both bounds to [0, length]; a start past the end gives
// an empty range.
func clampRange(start, end int64, length int) (int, int) {
	n := int64(length)
	start = max(0, min(start, n))
	end = max(0, min(end, n))
	if start > end {
		start = end
	}
	return int(start), int(end)
}
