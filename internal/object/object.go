package object

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"monkey/internal/ast"
	"slices"
	"strings"
	"time"
)

const (
	NULL_OBJ    = "NULL"
	BOOLEAN_OBJ = "BOOLEAN"
	INTEGER_OBJ = "INTEGER"
	STRING_OBJ  = "STRING"

	ARRAY_OBJ = "ARRAY"
	HASH_OBJ  = "HASH"

	FUNCTION_OBJ = "FUNCTION"
	BUILTIN_OBJ  = "BUILTIN"

	RETURN_VALUE_OBJ = "RETURN_VALUE"
	ERROR_OBJ        = "ERROR"
)

var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

// EvaluatorContext is what a builtin sees of the interpreter running it.
type EvaluatorContext interface {
	Output() io.Writer
	NewError(message string, a ...interface{}) *Error
	Sleep(d time.Duration)
}

type BuiltinFunction func(ctx EvaluatorContext, args ...Object) Object

type ObjectType string

type Hashable interface {
	Object
	MapKey() MapKey
}

type Object interface {
	Type() ObjectType
	Inspect() string
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return fmt.Sprintf("%d", i.Value) }
func (i *Integer) MapKey() MapKey {
	return MapKey{Type: i.Type(), Int: i.Value}
}

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return fmt.Sprintf("%t", b.Value) }
func (b *Boolean) MapKey() MapKey {
	var value int64

	if b.Value {
		value = 1
	} else {
		value = 0
	}

	return MapKey{Type: b.Type(), Int: value}
}

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }
func (s *String) MapKey() MapKey {
	return MapKey{Type: s.Type(), Str: s.Value}
}

type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

type Error struct {
	Message string
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return "ERROR: " + e.Message }

type Function struct {
	Parameters []*ast.Identifier
	Body       *ast.BlockStatement
	Env        *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	var out bytes.Buffer

	params := []string{}
	for _, p := range f.Parameters {
		params = append(params, p.String())
	}

	out.WriteString("fn(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") ")
	out.WriteString(f.Body.String())

	return out.String()
}

type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "builtin " + b.Name }

type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string  { return inspect(a, map[Object]bool{}) }

// MapKey identifies a hash key by type and value. Equal keys compare equal
// with ==, so it can index a Go map directly.
type MapKey struct {
	Type ObjectType
	Int  int64
	Str  string
}

func (k MapKey) compare(other MapKey) int {
	return cmp.Or(
		cmp.Compare(k.Type, other.Type),
		cmp.Compare(k.Int, other.Int),
		cmp.Compare(k.Str, other.Str),
	)
}

type HashPair struct {
	Key   Hashable
	Value Object
}

type Hash struct {
	Pairs map[MapKey]HashPair
}

func NewHash() *Hash {
	return &Hash{Pairs: map[MapKey]HashPair{}}
}

func (h *Hash) Type() ObjectType { return HASH_OBJ }
func (h *Hash) Inspect() string  { return inspect(h, map[Object]bool{}) }

// Put simplify adding objects to a hash
func (h *Hash) Put(k Hashable, v Object) *Hash {
	if h.Pairs == nil {
		h.Pairs = map[MapKey]HashPair{}
	}
	h.Pairs[k.MapKey()] = HashPair{
		Key:   k,
		Value: v,
	}
	return h
}

func (h *Hash) Get(k Hashable) (Object, bool) {
	pair, ok := h.Pairs[k.MapKey()]
	return pair.Value, ok
}

// Delete removes k and returns the value it held.
func (h *Hash) Delete(k Hashable) (Object, bool) {
	pair, ok := h.Pairs[k.MapKey()]
	if ok {
		delete(h.Pairs, k.MapKey())
	}
	return pair.Value, ok
}

// SortedPairs returns the pairs ordered by key: booleans, then integers, then
// strings, each in natural order.
func (h *Hash) SortedPairs() []HashPair {
	keys := make([]MapKey, 0, len(h.Pairs))
	for k := range h.Pairs {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, MapKey.compare)

	pairs := make([]HashPair, len(keys))
	for i, k := range keys {
		pairs[i] = h.Pairs[k]
	}
	return pairs
}

// inspect renders containers, printing a container that contains itself as
// [...] or {...} instead of recursing forever.
func inspect(obj Object, seen map[Object]bool) string {
	switch obj := obj.(type) {
	case *Array:
		if seen[obj] {
			return "[...]"
		}
		seen[obj] = true
		defer delete(seen, obj)

		elements := make([]string, len(obj.Elements))
		for i, e := range obj.Elements {
			elements[i] = inspect(e, seen)
		}
		return "[" + strings.Join(elements, ", ") + "]"

	case *Hash:
		if seen[obj] {
			return "{...}"
		}
		seen[obj] = true
		defer delete(seen, obj)

		pairs := []string{}
		for _, pair := range obj.SortedPairs() {
			pairs = append(pairs, fmt.Sprintf("%s: %s",
				pair.Key.Inspect(), inspect(pair.Value, seen)))
		}
		return "{" + strings.Join(pairs, ", ") + "}"

	default:
		return obj.Inspect()
	}
}

// Equal reports whether two values are equal. Integers, booleans, strings and
// null compare by value; arrays, hashes and functions by identity.
func Equal(a, b Object) bool {
	switch a := a.(type) {
	case *Integer:
		b, ok := b.(*Integer)
		return ok && a.Value == b.Value
	case *Boolean:
		b, ok := b.(*Boolean)
		return ok && a.Value == b.Value
	case *String:
		b, ok := b.(*String)
		return ok && a.Value == b.Value
	case *Null:
		_, ok := b.(*Null)
		return ok
	default:
		return a == b
	}
}
