// Package value implements the tagged scalar/array universe shared by host
// and script code, plus the AST-value extension (function call nodes and
// variable references) used internally by the front-end and execution
// layers before and after compaction.
package value

// Kind discriminates the variants of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindDecimal
	KindString
	KindArray

	// AST-only kinds. These never appear in a Scalar Value that crosses
	// the embedding boundary (§3 invariant).
	KindFunctionCall
	KindScopedVariable
	KindDirectVariable
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindFunctionCall:
		return "function_call"
	case KindScopedVariable:
		return "scoped_variable"
	case KindDirectVariable:
		return "direct_variable"
	default:
		return "unknown"
	}
}

// Value is the discriminated union described in spec §3: a Scalar Value
// when Kind is one of the first six, and an AST Value when Kind is one of
// the trailing three. Keeping both under one struct (rather than splitting
// Scalar and AST into separate Go types) mirrors the teacher's preference
// for a single tagged struct with a Kind field over a deep interface
// hierarchy on the hot evaluation path (pkg/vm/value.go, pkg/compiler's
// literal folding switches).
type Value struct {
	Kind Kind

	boolean bool
	integer Int128
	decimal float64
	str     string
	array   []Value

	// AST-only payload.
	call     *FunctionCall
	blockLvl int
	varIndex int
}

// FunctionCall is the AST Value function-call node: a reference to a
// resolved host function together with an ordered argument list.
type FunctionCall struct {
	Callable CallableRef
	Args     []Value
}

// CallableRef is satisfied by *registry.Resolved without this package
// importing registry (which itself imports value) — avoids a cycle.
type CallableRef interface {
	Name() string
	Inlineable() bool
}

func Null() Value                    { return Value{Kind: KindNull} }
func Bool(b bool) Value              { return Value{Kind: KindBoolean, boolean: b} }
func Int(i Int128) Value             { return Value{Kind: KindInteger, integer: i} }
func IntFromInt64(i int64) Value     { return Value{Kind: KindInteger, integer: Int128FromInt64(i)} }
func Decimal(f float64) Value        { return Value{Kind: KindDecimal, decimal: f} }
func Str(s string) Value             { return Value{Kind: KindString, str: s} }
func Arr(items []Value) Value        { return Value{Kind: KindArray, array: items} }

func FnCall(c CallableRef, args []Value) Value {
	return Value{Kind: KindFunctionCall, call: &FunctionCall{Callable: c, Args: args}}
}

// ScopedVar builds a compile-time-only scoped variable reference
// (block_level, index_within_block). Must never survive past compaction.
func ScopedVar(blockLevel, index int) Value {
	return Value{Kind: KindScopedVariable, blockLvl: blockLevel, varIndex: index}
}

// DirectVar builds a post-compaction dense variable reference.
func DirectVar(index int) Value {
	return Value{Kind: KindDirectVariable, varIndex: index}
}

func (v Value) IsBool() bool    { return v.Kind == KindBoolean }
func (v Value) Bool() bool      { return v.boolean }
func (v Value) Int() Int128     { return v.integer }
func (v Value) Float() float64  { return v.decimal }
func (v Value) Text() string    { return v.str }
func (v Value) Items() []Value  { return v.array }
func (v Value) Call() *FunctionCall { return v.call }
func (v Value) BlockLevel() int { return v.blockLvl }
func (v Value) VarIndex() int   { return v.varIndex }

// IsSimple reports whether v is a Scalar Value containing no function
// calls and no variable references — the "simple value" of the glossary,
// eligible for compile-time inlining.
func (v Value) IsSimple() bool {
	switch v.Kind {
	case KindNull, KindBoolean, KindInteger, KindDecimal, KindString:
		return true
	case KindArray:
		for _, item := range v.array {
			if !item.IsSimple() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsConstantTrue reports whether v is the Boolean literal true.
func (v Value) IsConstantTrue() bool { return v.Kind == KindBoolean && v.boolean }

// IsConstantFalse reports whether v is the Boolean literal false.
func (v Value) IsConstantFalse() bool { return v.Kind == KindBoolean && !v.boolean }

// Equal implements the structural equality law from §4.1.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBoolean:
		return a.boolean == b.boolean
	case KindInteger:
		return a.integer.Cmp(b.integer) == 0
	case KindDecimal:
		return a.decimal == b.decimal
	case KindString:
		return a.str == b.str
	case KindArray:
		if len(a.array) != len(b.array) {
			return false
		}
		for i := range a.array {
			if !Equal(a.array[i], b.array[i]) {
				return false
			}
		}
		return true
	case KindDirectVariable:
		return a.varIndex == b.varIndex
	case KindScopedVariable:
		return a.blockLvl == b.blockLvl && a.varIndex == b.varIndex
	default:
		return false
	}
}
