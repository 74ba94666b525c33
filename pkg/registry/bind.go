package registry

import (
	"fmt"
	"reflect"

	"github.com/glint-lang/glint/pkg/value"
)

// Bind wraps a concrete Go function of the shape
// func(A, B, ...) (R, error) or func(A, B, ...) R
// into a Callable, converting each Scalar Value argument into the
// function's declared parameter type and its return value back into a
// Scalar Value via the Host<->Scalar conversion contract (§4.1).
//
// Grounded on pkg/interpreter/evaluator.go's reflection-based dispatch for
// dotted method calls (reflect.ValueOf(...).MethodByName(...)), repurposed
// here as a single generic arity-agnostic adapter in place of the arity-
// indexed const-generic trait family original_source/src/function/mod.rs
// generates via its impl_to_wrapped_function! macro — Go has no const
// generics, so one reflect-driven wrapper covers every arity instead of N
// generated trait impls.
func Bind(fn interface{}) (Callable, error) {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return nil, fmt.Errorf("registry.Bind: %T is not a function", fn)
	}
	if ft.NumOut() == 0 || ft.NumOut() > 2 {
		return nil, fmt.Errorf("registry.Bind: %T must return (value) or (value, error)", fn)
	}
	returnsErr := ft.NumOut() == 2
	if returnsErr && !ft.Out(1).Implements(reflect.TypeOf((*error)(nil)).Elem()) {
		return nil, fmt.Errorf("registry.Bind: second return value of %T must be error", fn)
	}

	numParams := ft.NumIn()
	paramTypes := make([]reflect.Type, numParams)
	for i := 0; i < numParams; i++ {
		paramTypes[i] = ft.In(i)
	}

	return func(args ArgIter) (value.Value, error) {
		if args.Len() != numParams {
			return value.Value{}, &RuntimeError{Kind: "ArityMismatch", Message: fmt.Sprintf("expected %d arguments, got %d", numParams, args.Len())}
		}
		in := make([]reflect.Value, numParams)
		for i := 0; i < numParams; i++ {
			arg, ok, err := args.Next()
			if err != nil {
				return value.Value{}, err
			}
			if !ok {
				return value.Value{}, &RuntimeError{Kind: "MissingArgument", Message: fmt.Sprintf("argument %d missing", i)}
			}
			converted, err := convertArg(arg, paramTypes[i])
			if err != nil {
				return value.Value{}, &RuntimeError{Kind: "ArgumentConversionFailed", Message: err.Error()}
			}
			in[i] = converted
		}

		out := fv.Call(in)
		if returnsErr {
			if errVal := out[1].Interface(); errVal != nil {
				return value.Value{}, &RuntimeError{Kind: "FunctionError", Message: errVal.(error).Error()}
			}
		}
		result, err := value.FromHost(out[0].Interface())
		if err != nil {
			return value.Value{}, &RuntimeError{Kind: "FunctionError", Message: err.Error()}
		}
		return result, nil
	}, nil
}

func convertArg(v value.Value, want reflect.Type) (reflect.Value, error) {
	switch want.Kind() {
	case reflect.Bool:
		b, err := value.ToBool(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b), nil
	case reflect.String:
		s := value.Display(v)
		if v.Kind == value.KindString {
			s = v.Text()
		}
		return reflect.ValueOf(s).Convert(want), nil
	case reflect.Float32, reflect.Float64:
		f, err := value.ToFloat(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(f).Convert(want), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, err := value.ToInt(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(i.Int64()).Convert(want), nil
	case reflect.Struct:
		if want == reflect.TypeOf(value.Int128{}) {
			i, err := value.ToInt(v)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(i), nil
		}
		if want == reflect.TypeOf(value.Value{}) {
			return reflect.ValueOf(v), nil
		}
	case reflect.Slice:
		items := v.Items()
		out := reflect.MakeSlice(want, len(items), len(items))
		for i, item := range items {
			converted, err := convertArg(item, want.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(converted)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot convert %s into %s", v.Kind, want)
}
