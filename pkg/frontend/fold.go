package frontend

import (
	"github.com/glint-lang/glint/pkg/registry"
	"github.com/glint-lang/glint/pkg/value"
)

// fold applies the Fold rule of §4.4: if fn is inlineable and every
// argument resolved to a simple value, invoke it immediately and
// substitute the result; otherwise emit a function-call AST value
// carrying the resolved callable and the (possibly non-simple) argument
// values. Diagnostics use the position of the call/operator token.
func (p *Parser) fold(fn *registry.Resolved, args []value.Value, line, column int) value.Value {
	allSimple := true
	for _, a := range args {
		if !a.IsSimple() {
			allSimple = false
			break
		}
	}
	if fn.Inlineable() && allSimple {
		result, err := fn.Call(registry.NewArgIter(args))
		if err != nil {
			p.diags.Add(DiagCouldntInlineFunction, line, column, "%s", err.Error())
			return value.Null()
		}
		return result
	}
	return value.FnCall(fn, args)
}

// resolveProperty implements the property-chain rule of §4.4: for each
// segment `p` after the head, look up a function associated to the
// current known type, first trying `get_p`, then `p`; the previous result
// is prepended as the first argument; an optional `(…)` block supplies
// the remaining arguments. write, if non-nil, is appended as the final
// argument and forces the lookup prefix to `set_`.
func (p *Parser) resolveProperty(receiver value.Value, receiverType string, segment string, explicitArgs []value.Value, write *value.Value, line, column int) (value.Value, string) {
	prefix := "get_"
	if write != nil {
		prefix = "set_"
	}
	args := append([]value.Value{receiver}, explicitArgs...)
	if write != nil {
		args = append(args, *write)
	}

	if receiverType == "" {
		p.diags.Add(DiagUnknownTypeForInlining, line, column, "cannot resolve property %q: receiver has no known type", segment)
		return value.Null(), ""
	}

	fn, ok := p.reg.FindFunction(receiverType, "", prefix+segment)
	if !ok {
		fn, ok = p.reg.FindFunction(receiverType, "", segment)
	}
	if !ok {
		p.diags.Add(DiagFunctionNotFound, line, column, "no property function %q or %q associated to type %q", prefix+segment, segment, receiverType)
		return value.Null(), ""
	}
	return p.fold(fn, args, line, column), fn.DeclaredReturnType
}

// resolveCall implements §4.4's function-call rule: the receiver, if any,
// is consumed as the first argument; resolution uses the §4.2 algorithm.
func (p *Parser) resolveCall(associatedType, module, name string, args []value.Value, line, column int) value.Value {
	fn, ok := p.reg.FindFunction(associatedType, module, name)
	if !ok {
		if near, found := nearestName(name, p.reg.KnownFunctionNames()); found {
			p.diags.Add(DiagFunctionNotFound, line, column, "function %q not found (module=%q, associated_type=%q); did you mean %q?", name, module, associatedType, near)
		} else {
			p.diags.Add(DiagFunctionNotFound, line, column, "function %q not found (module=%q, associated_type=%q)", name, module, associatedType)
		}
		return value.Null()
	}
	return p.fold(fn, args, line, column)
}

// resolveBinary folds a binary operator application.
func (p *Parser) resolveBinary(symbol string, left, right value.Value, line, column int) value.Value {
	fn, ok := p.reg.FindBinaryOperator(symbol)
	if !ok {
		p.diags.Add(DiagFunctionNotFound, line, column, "unknown binary operator %q", symbol)
		return value.Null()
	}
	return p.fold(fn, []value.Value{left, right}, line, column)
}

// resolveUnary folds a unary operator application.
func (p *Parser) resolveUnary(symbol string, operand value.Value, line, column int) value.Value {
	fn, ok := p.reg.FindUnaryOperator(symbol)
	if !ok {
		p.diags.Add(DiagFunctionNotFound, line, column, "unknown unary operator %q", symbol)
		return value.Null()
	}
	return p.fold(fn, []value.Value{operand}, line, column)
}

// resolveIndex implements array access `a[i]` as the built-in inlineable
// "index" function taking (array, usize); an out-of-bounds index is a
// compile-time error when both sides are simple.
func (p *Parser) resolveIndex(arr, idx value.Value, line, column int) value.Value {
	if arr.IsSimple() && idx.IsSimple() && arr.Kind == value.KindArray {
		i, err := value.ToInt(idx)
		if err == nil {
			items := arr.Items()
			n := i.Int64()
			if n < 0 || n >= int64(len(items)) {
				p.diags.Add(DiagCouldntInlineFunction, line, column, "index %d out of bounds for array of length %d", n, len(items))
				return value.Null()
			}
			return items[n]
		}
	}
	fn, ok := p.reg.FindFunction("", "", "index")
	if !ok {
		p.diags.Add(DiagFunctionNotFound, line, column, "built-in \"index\" function not registered")
		return value.Null()
	}
	return p.fold(fn, []value.Value{arr, idx}, line, column)
}
