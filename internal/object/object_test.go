package object

import (
	"errors"
	"testing"
)

func TestStringMapKey(t *testing.T) {
	hello1 := &String{Value: "Hello World"}
	hello2 := &String{Value: "Hello World"}
	diff1 := &String{Value: "My name is johnny"}
	diff2 := &String{Value: "My name is johnny"}

	if hello1.MapKey() != hello2.MapKey() {
		t.Errorf("strings with same content have different map keys")
	}

	if diff1.MapKey() != diff2.MapKey() {
		t.Errorf("strings with same content have different map keys")
	}

	if hello1.MapKey() == diff1.MapKey() {
		t.Errorf("strings with different content have same map keys")
	}
}

func TestBooleanMapKey(t *testing.T) {
	true1 := &Boolean{Value: true}
	true2 := &Boolean{Value: true}
	false1 := &Boolean{Value: false}
	false2 := &Boolean{Value: false}

	if true1.MapKey() != true2.MapKey() {
		t.Errorf("trues do not have same map key")
	}

	if false1.MapKey() != false2.MapKey() {
		t.Errorf("falses do not have same map key")
	}

	if true1.MapKey() == false1.MapKey() {
		t.Errorf("true has same map key as false")
	}
}

func TestIntegerMapKey(t *testing.T) {
	one1 := &Integer{Value: 1}
	one2 := &Integer{Value: 1}
	two1 := &Integer{Value: 2}
	two2 := &Integer{Value: 2}

	if one1.MapKey() != one2.MapKey() {
		t.Errorf("integers with same content have different map keys")
	}

	if two1.MapKey() != two2.MapKey() {
		t.Errorf("integers with same content have different map keys")
	}

	if one1.MapKey() == two1.MapKey() {
		t.Errorf("integers with different content have same map keys")
	}
}

func TestMapKeysDoNotCollideAcrossTypes(t *testing.T) {
	h := NewHash()
	h.Put(&Integer{Value: 1}, &String{Value: "int"})
	h.Put(TRUE, &String{Value: "bool"})
	h.Put(&String{Value: "1"}, &String{Value: "string"})

	if len(h.Pairs) != 3 {
		t.Fatalf("expected 3 distinct keys, got %d", len(h.Pairs))
	}

	v, ok := h.Get(&Boolean{Value: true})
	if !ok || v.Inspect() != "bool" {
		t.Errorf("lookup by an equal boolean failed: %v %v", v, ok)
	}
}

func TestHashInspectIsSorted(t *testing.T) {
	h := NewHash()
	h.Put(&String{Value: "b"}, &Integer{Value: 2})
	h.Put(&Integer{Value: 10}, &Integer{Value: 3})
	h.Put(&String{Value: "a"}, &Integer{Value: 1})
	h.Put(&Integer{Value: 2}, &Integer{Value: 4})
	h.Put(FALSE, NULL)

	expected := "{false: null, 2: 4, 10: 3, a: 1, b: 2}"
	if h.Inspect() != expected {
		t.Errorf("Inspect wrong. expected=%q, got=%q", expected, h.Inspect())
	}

	removed, ok := h.Delete(&String{Value: "a"})
	if !ok || removed.Inspect() != "1" {
		t.Errorf("Delete returned %v %v", removed, ok)
	}
	if _, ok := h.Get(&String{Value: "a"}); ok {
		t.Errorf("key still present after Delete")
	}
}

func TestInspectSelfReferentialContainers(t *testing.T) {
	arr := &Array{Elements: []Object{&Integer{Value: 1}}}
	arr.Elements = append(arr.Elements, arr)

	if arr.Inspect() != "[1, [...]]" {
		t.Errorf("unexpected array inspect %q", arr.Inspect())
	}

	h := NewHash()
	h.Put(&String{Value: "self"}, h)
	h.Put(&String{Value: "list"}, &Array{Elements: []Object{h}})
	if h.Inspect() != "{list: [{...}], self: {...}}" {
		t.Errorf("unexpected hash inspect %q", h.Inspect())
	}

	shared := &Array{}
	outer := &Array{Elements: []Object{shared, shared}}
	if outer.Inspect() != "[[], []]" {
		t.Errorf("a repeated non-cyclic element was elided: %q", outer.Inspect())
	}
}

func TestEqual(t *testing.T) {
	arr := &Array{}
	tests := []struct {
		a, b     Object
		expected bool
	}{
		{&Integer{Value: 1}, &Integer{Value: 1}, true},
		{&Integer{Value: 1}, &Integer{Value: 2}, false},
		{&String{Value: "x"}, &String{Value: "x"}, true},
		{TRUE, &Boolean{Value: true}, true},
		{NULL, &Null{}, true},
		{&Integer{Value: 1}, &String{Value: "1"}, false},
		{NULL, FALSE, false},
		{arr, arr, true},
		{arr, &Array{}, false},
		{NewHash(), NewHash(), false},
	}

	for i, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.expected {
			t.Errorf("tests[%d] Equal(%s, %s) = %t, want %t", i, tt.a.Inspect(), tt.b.Inspect(), got, tt.expected)
		}
	}
}

func TestEnvironmentScoping(t *testing.T) {
	global := NewEnvironment()
	global.Define("a", &Integer{Value: 1})

	inner := NewEnclosedEnvironment(global)
	inner.Define("b", &Integer{Value: 2})

	if v, ok := inner.Get("a"); !ok || v.Inspect() != "1" {
		t.Errorf("inner scope cannot see outer binding: %v %v", v, ok)
	}
	if _, ok := global.Get("b"); ok {
		t.Errorf("outer scope sees inner binding")
	}

	if _, err := inner.Assign("a", &Integer{Value: 5}); err != nil {
		t.Fatalf("assign to outer binding failed: %v", err)
	}
	if v, _ := global.Get("a"); v.Inspect() != "5" {
		t.Errorf("assignment did not reach defining scope, got %s", v.Inspect())
	}

	inner.Define("a", &Integer{Value: 9})
	if v, _ := global.Get("a"); v.Inspect() != "5" {
		t.Errorf("shadowing changed the outer binding, got %s", v.Inspect())
	}

	_, err := inner.Assign("missing", NULL)
	if !errors.Is(err, ErrUndefined) {
		t.Errorf("expected ErrUndefined, got %v", err)
	}

	names := inner.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("unexpected names %v", names)
	}
}
