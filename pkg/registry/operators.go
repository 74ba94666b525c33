package registry

import (
	"math"

	"github.com/glint-lang/glint/pkg/value"
)

// Precedence table, low to high, per spec §4.2. All operators are
// left-associative infix except the two unary forms. Grounded on the
// precedence-climbing structure of pkg/parser/parser.go's
// currentBinaryOp, re-keyed to this language's operator set.
const (
	PrecOr       = 1 // ||
	PrecXor      = 2 // ^
	PrecAnd      = 3 // &&
	PrecShift    = 4 // <<, >>
	PrecCompare  = 5 // ==, !=, <, <=, >, >=
	PrecModulo   = 6 // %
	PrecMulDiv   = 7 // *, /
	PrecAddSub   = 8 // +, -
)

// BinaryOperators maps each infix symbol to its climbing precedence, for
// the front-end's precedence-climbing parser.
var BinaryOperators = map[string]int{
	"||": PrecOr,
	"^":  PrecXor,
	"&&": PrecAnd,
	"<<": PrecShift,
	">>": PrecShift,
	"==": PrecCompare,
	"!=": PrecCompare,
	"<":  PrecCompare,
	"<=": PrecCompare,
	">":  PrecCompare,
	">=": PrecCompare,
	"%":  PrecModulo,
	"*":  PrecMulDiv,
	"/":  PrecMulDiv,
	"+":  PrecAddSub,
	"-":  PrecAddSub,
}

// kindRank orders {Boolean, Integer, Decimal} for the "max of both operand
// kinds" arithmetic result-kind rule in §4.2.
func kindRank(k value.Kind) int {
	switch k {
	case value.KindBoolean:
		return 0
	case value.KindInteger:
		return 1
	case value.KindDecimal:
		return 2
	default:
		return -1
	}
}

// RuntimeError is the structured error every operator/function may return,
// per §4.2 and the runtime-error taxonomy in §7.
type RuntimeError struct {
	Kind    string
	Message string
}

func (e *RuntimeError) Error() string { return e.Kind + ": " + e.Message }

func cannotApply(op string, a, b value.Value) error {
	return &RuntimeError{
		Kind:    "CannotApplyOperator",
		Message: op + " cannot apply to " + a.Kind.String() + " and " + b.Kind.String(),
	}
}

// registerOperators populates the fixed operator tables at Registry
// construction time (§4.2: "all built-in operators are inlineable").
// Short-circuiting operators &&/|| are deliberately modeled as ordinary
// strict two-argument functions and therefore evaluate both sides; see
// SPEC_FULL.md §9.1 for why this is not a bug.
func registerOperators(r *Registry) {
	bin := map[string]func(a, b value.Value) (value.Value, error){
		"+":  addOp,
		"-":  subOp,
		"*":  mulOp,
		"/":  divOp,
		"%":  modOp,
		"==": func(a, b value.Value) (value.Value, error) { return value.Bool(value.Equal(a, b)), nil },
		"!=": func(a, b value.Value) (value.Value, error) { return value.Bool(!value.Equal(a, b)), nil },
		"<":  cmpOp(func(c int) bool { return c < 0 }),
		"<=": cmpOp(func(c int) bool { return c <= 0 }),
		">":  cmpOp(func(c int) bool { return c > 0 }),
		">=": cmpOp(func(c int) bool { return c >= 0 }),
		"&&": logicalOp(func(a, b bool) bool { return a && b }),
		"||": logicalOp(func(a, b bool) bool { return a || b }),
		"^":  xorOp,
		"<<": shiftOp(func(v value.Int128, n uint) value.Int128 { return v.Lsh(n) }),
		">>": shiftOp(func(v value.Int128, n uint) value.Int128 { return v.Rsh(n) }),
	}
	for symbol, fn := range bin {
		fn := fn
		symbol := symbol
		r.binaryOps[symbol] = &Resolved{
			name:           symbol,
			InlineableFlag: true,
			Callable: func(args ArgIter) (value.Value, error) {
				a, _, err := args.Next()
				if err != nil {
					return value.Value{}, err
				}
				b, _, err := args.Next()
				if err != nil {
					return value.Value{}, err
				}
				return fn(a, b)
			},
		}
	}

	r.unaryOps["!"] = &Resolved{
		name:           "!",
		InlineableFlag: true,
		Callable: func(args ArgIter) (value.Value, error) {
			a, _, err := args.Next()
			if err != nil {
				return value.Value{}, err
			}
			b, err := value.ToBool(a)
			if err != nil {
				return value.Value{}, err
			}
			return value.Bool(!b), nil
		},
	}
	r.unaryOps["-"] = &Resolved{
		name:           "-",
		InlineableFlag: true,
		Callable: func(args ArgIter) (value.Value, error) {
			a, _, err := args.Next()
			if err != nil {
				return value.Value{}, err
			}
			switch a.Kind {
			case value.KindInteger:
				return value.Int(value.Int128Zero.Sub(a.Int())), nil
			case value.KindDecimal:
				return value.Decimal(-a.Float()), nil
			default:
				return value.Value{}, &RuntimeError{Kind: "CannotApplyOperator", Message: "unary - on " + a.Kind.String()}
			}
		},
	}
}

// addOp implements §4.2's arithmetic rule: result kind is the max of both
// operand kinds in {Boolean, Integer, Decimal}; Boolean arithmetic is
// logical (+ -> ||); String with any operand concatenates via Display;
// Array + Array concatenates.
func addOp(a, b value.Value) (value.Value, error) {
	if a.Kind == value.KindString || b.Kind == value.KindString {
		return value.Str(value.Display(a) + value.Display(b)), nil
	}
	if a.Kind == value.KindArray && b.Kind == value.KindArray {
		return value.Arr(append(append([]value.Value{}, a.Items()...), b.Items()...)), nil
	}
	return numericOp(a, b, "+",
		func(x, y bool) bool { return x || y },
		func(x, y value.Int128) value.Int128 { return x.Add(y) },
		func(x, y float64) float64 { return x + y },
	)
}

func subOp(a, b value.Value) (value.Value, error) {
	return numericOp(a, b, "-",
		func(x, y bool) bool { return x && !y },
		func(x, y value.Int128) value.Int128 { return x.Sub(y) },
		func(x, y float64) float64 { return x - y },
	)
}

func mulOp(a, b value.Value) (value.Value, error) {
	return numericOp(a, b, "*",
		func(x, y bool) bool { return x && y },
		func(x, y value.Int128) value.Int128 { return x.Mul(y) },
		func(x, y float64) float64 { return x * y },
	)
}

// divOp and modOp have no Boolean-arithmetic case: per §4.2 only +, -, *
// extend to Booleans, and original_source/src/reduced_value_impl/
// impl_operators.rs rejects Boolean / and % outright.
func divOp(a, b value.Value) (value.Value, error) {
	return numericOp(a, b, "/",
		nil,
		func(x, y value.Int128) value.Int128 { return x.Div(y) },
		func(x, y float64) float64 { return x / y },
	)
}

func modOp(a, b value.Value) (value.Value, error) {
	return numericOp(a, b, "%",
		nil,
		func(x, y value.Int128) value.Int128 { return x.Mod(y) },
		func(x, y float64) float64 { return math.Mod(x, y) },
	)
}

func xorOp(a, b value.Value) (value.Value, error) {
	ai, err := value.ToInt(a)
	if err != nil {
		return value.Value{}, err
	}
	bi, err := value.ToInt(b)
	if err != nil {
		return value.Value{}, err
	}
	return value.Int(ai.Xor(bi)), nil
}

func shiftOp(apply func(value.Int128, uint) value.Int128) func(a, b value.Value) (value.Value, error) {
	return func(a, b value.Value) (value.Value, error) {
		// <<, >> require both operands to be integers; Booleans/Decimals
		// convert via truncation to Integer first.
		ai, err := value.ToInt(a)
		if err != nil {
			return value.Value{}, err
		}
		bi, err := value.ToInt(b)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int(apply(ai, uint(bi.Int64()))), nil
	}
}

func cmpOp(accept func(int) bool) func(a, b value.Value) (value.Value, error) {
	return func(a, b value.Value) (value.Value, error) {
		af, err := value.ToFloat(a)
		if err != nil {
			return value.Value{}, err
		}
		bf, err := value.ToFloat(b)
		if err != nil {
			return value.Value{}, err
		}
		switch {
		case af < bf:
			return value.Bool(accept(-1)), nil
		case af > bf:
			return value.Bool(accept(1)), nil
		default:
			return value.Bool(accept(0)), nil
		}
	}
}

func logicalOp(apply func(a, b bool) bool) func(a, b value.Value) (value.Value, error) {
	return func(a, b value.Value) (value.Value, error) {
		ab, err := value.ToBool(a)
		if err != nil {
			return value.Value{}, err
		}
		bb, err := value.ToBool(b)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(apply(ab, bb)), nil
	}
}

// numericOp resolves the arithmetic result kind as the max of both operand
// kinds (Boolean < Integer < Decimal), then dispatches to the matching
// operation, per §4.2.
func numericOp(a, b value.Value, symbol string, boolOp func(bool, bool) bool, intOp func(value.Int128, value.Int128) value.Int128, floatOp func(float64, float64) float64) (value.Value, error) {
	ra, rb := kindRank(a.Kind), kindRank(b.Kind)
	if ra < 0 || rb < 0 {
		return value.Value{}, cannotApply(symbol, a, b)
	}
	switch {
	case ra == 0 && rb == 0:
		if boolOp == nil {
			return value.Value{}, cannotApply(symbol, a, b)
		}
		return value.Bool(boolOp(a.Bool(), b.Bool())), nil
	case max(ra, rb) == 1:
		ai, err := value.ToInt(a)
		if err != nil {
			return value.Value{}, err
		}
		bi, err := value.ToInt(b)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int(intOp(ai, bi)), nil
	default:
		af, err := value.ToFloat(a)
		if err != nil {
			return value.Value{}, err
		}
		bf, err := value.ToFloat(b)
		if err != nil {
			return value.Value{}, err
		}
		return value.Decimal(floatOp(af, bf)), nil
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
