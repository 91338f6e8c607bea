package evaluator

import (
	"fmt"
	"math"
	"monkey/internal/object"
	"strings"
	"time"
)

// maxSleepMillis is the longest sleep that fits in a time.Duration.
const maxSleepMillis = math.MaxInt64 / int64(time.Millisecond)

var builtins = map[string]*object.Builtin{
	"type":  funcType(),
	"len":   funcLen(),
	"print": funcPrint(),

	"println": funcPrintLn(),
	"is_null": funcIsNull(),
	"sleep":   funcSleep(),

	// array functions
	"push": funcPush(),
	"pop":  funcPop(),

	// hash functions
	"keys":   funcKeys(),
	"insert": funcInsert(),
	"delete": funcDelete(),
}

func wrongArgCount(ctx object.EvaluatorContext, got int, want string) *object.Error {
	return ctx.NewError("wrong number of arguments: want=%s, got=%d", want, got)
}

// funcPush appends to the array in place and returns it.
func funcPush() *object.Builtin {
	return &object.Builtin{
		Name: "push",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if len(args) < 2 {
				return wrongArgCount(ctx, len(args), "2+")
			}
			arr, ok := args[0].(*object.Array)
			if !ok {
				return ctx.NewError("argument to `push` must be ARRAY, got %s",
					args[0].Type())
			}

			arr.Elements = append(arr.Elements, args[1:]...)
			return arr
		},
	}
}

// funcPop removes and returns the last element of an array.
// Returns NULL if the array is empty.
func funcPop() *object.Builtin {
	return &object.Builtin{
		Name: "pop",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if len(args) != 1 {
				return wrongArgCount(ctx, len(args), "1")
			}
			arr, ok := args[0].(*object.Array)
			if !ok {
				return ctx.NewError("argument to `pop` must be ARRAY, got %s",
					args[0].Type())
			}

			length := len(arr.Elements)
			if length > 0 {
				popped := arr.Elements[length-1]
				arr.Elements[length-1] = nil
				arr.Elements = arr.Elements[:length-1]
				return popped
			}

			return NULL
		},
	}
}

func funcPrint() *object.Builtin {
	return &object.Builtin{
		Name: "print",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			fmt.Fprint(ctx.Output(), joinInspected(args))
			return NULL
		},
	}
}

func funcPrintLn() *object.Builtin {
	return &object.Builtin{
		Name: "println",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			fmt.Fprintln(ctx.Output(), joinInspected(args))
			return NULL
		},
	}
}

func joinInspected(args []object.Object) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.Inspect()
	}
	return strings.Join(parts, " ")
}

// funcLen counts runes for strings, elements for arrays and pairs for hashes.
func funcLen() *object.Builtin {
	return &object.Builtin{
		Name: "len",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if len(args) != 1 {
				return wrongArgCount(ctx, len(args), "1")
			}

			switch arg := args[0].(type) {
			case *object.Array:
				return &object.Integer{Value: int64(len(arg.Elements))}
			case *object.Hash:
				return &object.Integer{Value: int64(len(arg.Pairs))}
			case *object.String:
				return &object.Integer{Value: int64(len([]rune(arg.Value)))}
			default:
				return ctx.NewError("argument to `len` not supported, got %s",
					args[0].Type())
			}
		},
	}
}

func funcType() *object.Builtin {
	return &object.Builtin{
		Name: "type",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if len(args) != 1 {
				return wrongArgCount(ctx, len(args), "1")
			}

			return &object.String{
				Value: string(args[0].Type()),
			}
		},
	}
}

func funcIsNull() *object.Builtin {
	return &object.Builtin{
		Name: "is_null",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if len(args) != 1 {
				return wrongArgCount(ctx, len(args), "1")
			}
			return nativeBoolToBooleanObject(args[0] == NULL)
		},
	}
}

// funcSleep pauses for the given number of milliseconds and returns NULL.
func funcSleep() *object.Builtin {
	return &object.Builtin{
		Name: "sleep",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if len(args) != 1 {
				return wrongArgCount(ctx, len(args), "1")
			}
			ms, ok := args[0].(*object.Integer)
			if !ok {
				return ctx.NewError("argument to `sleep` must be INTEGER, got %s",
					args[0].Type())
			}
			if ms.Value < 0 {
				return ctx.NewError("argument to `sleep` must not be negative, got %d", ms.Value)
			}
			if ms.Value > maxSleepMillis {
				return ctx.NewError("argument to `sleep` too large, got %d (max %d)", ms.Value, maxSleepMillis)
			}

			ctx.Sleep(time.Duration(ms.Value) * time.Millisecond)
			return NULL
		},
	}
}

func funcKeys() *object.Builtin {
	return &object.Builtin{
		Name: "keys",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if len(args) != 1 {
				return wrongArgCount(ctx, len(args), "1")
			}
			hash, ok := args[0].(*object.Hash)
			if !ok {
				return ctx.NewError("argument to `keys` must be HASH, got %s",
					args[0].Type())
			}

			pairs := hash.SortedPairs()
			keys := make([]object.Object, len(pairs))
			for i, pair := range pairs {
				keys[i] = pair.Key
			}
			return &object.Array{Elements: keys}
		},
	}
}

// funcInsert sets hash[key] = value in place and returns the hash.
func funcInsert() *object.Builtin {
	return &object.Builtin{
		Name: "insert",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if len(args) != 3 {
				return wrongArgCount(ctx, len(args), "3")
			}
			hash, ok := args[0].(*object.Hash)
			if !ok {
				return ctx.NewError("argument to `insert` must be HASH, got %s",
					args[0].Type())
			}
			key, ok := args[1].(object.Hashable)
			if !ok {
				return ctx.NewError("unusable as hash key: %s", args[1].Type())
			}

			return hash.Put(key, args[2])
		},
	}
}

// funcDelete removes key from the hash in place and returns the removed
// value, or NULL when the key was absent.
func funcDelete() *object.Builtin {
	return &object.Builtin{
		Name: "delete",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if len(args) != 2 {
				return wrongArgCount(ctx, len(args), "2")
			}
			hash, ok := args[0].(*object.Hash)
			if !ok {
				return ctx.NewError("argument to `delete` must be HASH, got %s",
					args[0].Type())
			}
			key, ok := args[1].(object.Hashable)
			if !ok {
				return ctx.NewError("unusable as hash key: %s", args[1].Type())
			}

			if removed, ok := hash.Delete(key); ok {
				return removed
			}
			return NULL
		},
	}
}
