package evaluator

import (
	"bytes"
	"monkey/internal/object"
	"slices"
	"testing"
	"time"
)

func TestBuiltinFunctions(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{`len("")`, 0},
		{`len("four")`, 4},
		{`len("héllo")`, 5},
		{`len([1, 2, 3])`, 3},
		{`len({"a": 1, "b": 2})`, 2},
		{`len(1)`, errorf("argument to `len` not supported, got INTEGER")},
		{`len("one", "two")`, errorf("wrong number of arguments: want=1, got=2")},
		{`let a = [1]; push(a, 2, 3); len(a)`, 3},
		{`push(1, 1)`, errorf("argument to `push` must be ARRAY, got INTEGER")},
		{`push([])`, errorf("wrong number of arguments: want=2+, got=1")},
		{`let a = [1, 2]; pop(a) + len(a) * 10`, 12},
		{`pop([])`, nil},
		{`pop({})`, errorf("argument to `pop` must be ARRAY, got HASH")},
		{`let h = {}; insert(h, "k", 5); h["k"]`, 5},
		{`insert({}, [], 1)`, errorf("unusable as hash key: ARRAY")},
		{`insert([], 1, 1)`, errorf("argument to `insert` must be HASH, got ARRAY")},
		{`let h = {"k": 5}; delete(h, "k")`, 5},
		{`let h = {"k": 5}; delete(h, "k"); len(h)`, 0},
		{`delete({}, "missing")`, nil},
		{`keys([])`, errorf("argument to `keys` must be HASH, got ARRAY")},
		{`is_null(null)`, true},
		{`is_null({}["x"])`, true},
		{`is_null(0)`, false},
		{`type(1)`, "INTEGER"},
		{`type("s")`, "STRING"},
		{`type(null)`, "NULL"},
		{`type(fn() {})`, "FUNCTION"},
		{`type(len)`, "BUILTIN"},
		{`type([])`, "ARRAY"},
		{`type({})`, "HASH"},
		{`sleep("1")`, errorf("argument to `sleep` must be INTEGER, got STRING")},
		{`sleep(-1)`, errorf("argument to `sleep` must not be negative, got -1")},
		{`sleep(9223372036855)`, errorf("argument to `sleep` too large, got 9223372036855 (max 9223372036854)")},
	}

	cfg := Config{Output: &bytes.Buffer{}, Sleep: func(time.Duration) {}}
	for _, tt := range tests {
		testExpected(t, testEvalWith(t, cfg, tt.input), tt.expected)
	}
}

func TestKeysAreSorted(t *testing.T) {
	evaluated := testEval(t, `keys({"b": 1, 10: 2, "a": 3, 2: 4, true: 5})`)
	if got := evaluated.Inspect(); got != "[true, 2, 10, a, b]" {
		t.Errorf("keys wrong. got=%q", got)
	}
}

func TestPrintWritesToConfiguredOutput(t *testing.T) {
	var out bytes.Buffer
	cfg := Config{Output: &out}

	evaluated := testEvalWith(t, cfg, `print("a", 1, [2]); println(); println("x", true, {"k": null});`)
	testNullObject(t, evaluated)

	if got, want := out.String(), "a 1 [2]\nx true {k: null}\n"; got != want {
		t.Errorf("output wrong. got=%q, want=%q", got, want)
	}
}

func TestSleepUsesConfiguredSleeper(t *testing.T) {
	var slept []time.Duration
	cfg := Config{Sleep: func(d time.Duration) { slept = append(slept, d) }}

	testNullObject(t, testEvalWith(t, cfg, "sleep(0); sleep(25);"))

	want := []time.Duration{0, 25 * time.Millisecond}
	if !slices.Equal(slept, want) {
		t.Errorf("sleeper called with %v, want %v", slept, want)
	}
}

func TestBuiltinsCanBeShadowed(t *testing.T) {
	testIntegerObject(t, testEval(t, "let len = fn(x) { 42 }; len([1]);"), 42)
	testIntegerObject(t, testEval(t, "let f = fn(push) { push }; f(3);"), 3)
}

func TestRegistry(t *testing.T) {
	custom := &object.Builtin{
		Name: "answer",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			return &object.Integer{Value: 42}
		},
	}
	fakeLen := &object.Builtin{Name: "len"}

	r := NewRegistry(map[string]*object.Builtin{"answer": custom, "len": fakeLen})

	if fn, ok := r.Lookup("answer"); !ok || fn != custom {
		t.Errorf("extension builtin not registered")
	}
	if fn, ok := r.Lookup("len"); !ok || fn == fakeLen {
		t.Errorf("extension replaced core builtin len")
	}
	if _, ok := r.Lookup("nope"); ok {
		t.Errorf("unexpected builtin nope")
	}

	names := r.Names()
	if !slices.IsSorted(names) {
		t.Errorf("names not sorted: %v", names)
	}
	for _, name := range []string{"answer", "delete", "insert", "is_null", "keys", "len",
		"pop", "print", "println", "push", "sleep", "type"} {
		if !slices.Contains(names, name) {
			t.Errorf("missing builtin %s", name)
		}
	}

	if _, ok := NewRegistry().Lookup("answer"); ok {
		t.Errorf("extension leaked into another registry")
	}

	testIntegerObject(t, testEvalWith(t, Config{Builtins: r}, "answer()"), 42)
}
