package registry

import "github.com/glint-lang/glint/pkg/value"

// registerBuiltins populates bare built-in functions that the front-end's
// desugaring rules rely on — currently just "index", the target of array
// access `a[i]` per §4.4.
func registerBuiltins(r *Registry) {
	r.bare["index"] = &Resolved{
		name:           "index",
		InlineableFlag: true,
		Callable: func(args ArgIter) (value.Value, error) {
			arr, _, err := args.Next()
			if err != nil {
				return value.Value{}, err
			}
			idx, _, err := args.Next()
			if err != nil {
				return value.Value{}, err
			}
			if arr.Kind != value.KindArray {
				return value.Value{}, &RuntimeError{Kind: "CannotApplyOperator", Message: "index requires an Array receiver"}
			}
			i, err := value.ToInt(idx)
			if err != nil {
				return value.Value{}, err
			}
			items := arr.Items()
			n := i.Int64()
			if n < 0 || n >= int64(len(items)) {
				return value.Value{}, &RuntimeError{Kind: "IndexOutOfBounds", Message: "array index out of bounds"}
			}
			return items[n], nil
		},
	}
}
