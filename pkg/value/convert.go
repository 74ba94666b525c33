package value

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ErrCannotConvert is returned when a Host<->Scalar conversion has no total
// mapping for the given input (e.g. converting an empty array to a scalar).
type ErrCannotConvert struct {
	From string
	To   string
}

func (e *ErrCannotConvert) Error() string {
	return fmt.Sprintf("cannot convert %s to %s", e.From, e.To)
}

// FromHost converts an embedded Go primitive into a Scalar Value, per the
// Host -> Scalar conversion contract in §4.1. Absent/nil becomes Null.
// Grounded on pkg/interpreter/evaluator.go's coercion helpers, generalized
// via reflection to cover fixed-size arrays and slices uniformly.
func FromHost(v interface{}) (Value, error) {
	if v == nil {
		return Null(), nil
	}
	switch t := v.(type) {
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return Str(t), nil
	case int:
		return IntFromInt64(int64(t)), nil
	case int8:
		return IntFromInt64(int64(t)), nil
	case int16:
		return IntFromInt64(int64(t)), nil
	case int32:
		return IntFromInt64(int64(t)), nil
	case int64:
		return IntFromInt64(t), nil
	case uint:
		return IntFromInt64(int64(t)), nil
	case uint8:
		return IntFromInt64(int64(t)), nil
	case uint16:
		return IntFromInt64(int64(t)), nil
	case uint32:
		return IntFromInt64(int64(t)), nil
	case uint64:
		return IntFromInt64(int64(t)), nil
	case Int128:
		return Int(t), nil
	case float32:
		return Decimal(float64(t)), nil
	case float64:
		return Decimal(t), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return Null(), nil
		}
		return FromHost(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := FromHost(rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return Arr(items), nil
	default:
		return Value{}, &ErrCannotConvert{From: rv.Type().String(), To: "Scalar Value"}
	}
}

// ToBool implements the Scalar -> Boolean conversion rule from §4.1:
// Integer/Decimal "≥1" is true; String accepts the literals
// true|yes|false|no, else parses as a number and applies the numeric rule.
func ToBool(v Value) (bool, error) {
	switch v.Kind {
	case KindBoolean:
		return v.boolean, nil
	case KindInteger:
		return v.integer.Cmp(Int128FromInt64(1)) >= 0, nil
	case KindDecimal:
		return v.decimal >= 1, nil
	case KindString:
		switch strings.ToLower(v.str) {
		case "true", "yes":
			return true, nil
		case "false", "no":
			return false, nil
		}
		if f, err := strconv.ParseFloat(v.str, 64); err == nil {
			return f >= 1, nil
		}
		return false, &ErrCannotConvert{From: "string", To: "boolean"}
	case KindArray:
		if len(v.array) == 0 {
			return false, &ErrCannotConvert{From: "empty array", To: "boolean"}
		}
		return ToBool(v.array[0])
	case KindNull:
		return false, nil
	default:
		return false, &ErrCannotConvert{From: v.Kind.String(), To: "boolean"}
	}
}

// ToInt implements Scalar -> Integer: Boolean maps {true:1, false:0},
// Decimal truncates, Array recurses on element 0.
func ToInt(v Value) (Int128, error) {
	switch v.Kind {
	case KindInteger:
		return v.integer, nil
	case KindBoolean:
		if v.boolean {
			return Int128FromInt64(1), nil
		}
		return Int128FromInt64(0), nil
	case KindDecimal:
		return Int128FromInt64(int64(v.decimal)), nil
	case KindString:
		if i, err := strconv.ParseInt(strings.TrimSpace(v.str), 10, 64); err == nil {
			return Int128FromInt64(i), nil
		}
		return Int128{}, &ErrCannotConvert{From: "string", To: "integer"}
	case KindArray:
		if len(v.array) == 0 {
			return Int128{}, &ErrCannotConvert{From: "empty array", To: "integer"}
		}
		return ToInt(v.array[0])
	default:
		return Int128{}, &ErrCannotConvert{From: v.Kind.String(), To: "integer"}
	}
}

// ToFloat implements Scalar -> Decimal (standard numeric cast).
func ToFloat(v Value) (float64, error) {
	switch v.Kind {
	case KindDecimal:
		return v.decimal, nil
	case KindInteger:
		return v.integer.Float64(), nil
	case KindBoolean:
		if v.boolean {
			return 1, nil
		}
		return 0, nil
	case KindString:
		if f, err := strconv.ParseFloat(v.str, 64); err == nil {
			return f, nil
		}
		return 0, &ErrCannotConvert{From: "string", To: "decimal"}
	case KindArray:
		if len(v.array) == 0 {
			return 0, &ErrCannotConvert{From: "empty array", To: "decimal"}
		}
		return ToFloat(v.array[0])
	default:
		return 0, &ErrCannotConvert{From: v.Kind.String(), To: "decimal"}
	}
}
