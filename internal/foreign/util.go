package foreign

import (
	"fmt"
	"monkey/internal/object"
	"strconv"
	"time"
)

func unpackString(arg object.Object, argName string) (string, error) {
	value, ok := arg.(*object.String)
	if !ok {
		return "", fmt.Errorf("argument to `%s` must be a STRING, got=%s", argName, arg.Type())
	}
	return value.Value, nil
}

func unpackInteger(arg object.Object, argName string) (int64, error) {
	value, ok := arg.(*object.Integer)
	if !ok {
		return -1, fmt.Errorf("argument to `%s` must be an INTEGER, got=%s", argName, arg.Type())
	}
	return value.Value, nil
}

// toParams converts query arguments into driver values.
func toParams(args []object.Object, argName string) ([]interface{}, error) {
	params := make([]interface{}, len(args))
	for i, arg := range args {
		switch arg := arg.(type) {
		case *object.Integer:
			params[i] = arg.Value
		case *object.String:
			params[i] = arg.Value
		case *object.Boolean:
			params[i] = arg.Value
		case *object.Null:
			params[i] = nil
		default:
			return nil, fmt.Errorf("argument to `%s` cannot be bound as a query parameter, got=%s",
				argName, arg.Type())
		}
	}
	return params, nil
}

// fromColumn maps a scanned column value back into a language value.
func fromColumn(v interface{}) object.Object {
	switch x := v.(type) {
	case nil:
		return object.NULL
	case int64:
		return &object.Integer{Value: x}
	case float64:
		return &object.String{Value: strconv.FormatFloat(x, 'f', -1, 64)}
	case []byte:
		return &object.String{Value: string(x)}
	case string:
		return &object.String{Value: x}
	case bool:
		if x {
			return object.TRUE
		}
		return object.FALSE
	case time.Time:
		return &object.String{Value: x.Format(time.RFC3339)}
	default:
		return &object.String{Value: fmt.Sprintf("%v", v)}
	}
}
