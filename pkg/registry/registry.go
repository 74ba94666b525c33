// Package registry implements the Host Registry (R): a mutable catalog of
// constants, operators, bare functions, module-qualified functions, and
// type-associated functions, each carrying a typed call shim and metadata.
//
// Grounded on the resolution chain in pkg/interpreter/evaluator.go
// (builtins -> reflected dotted methods -> user functions -> generics),
// generalized into the table-based (associated_type?, module?, name)
// lookup described in spec §4.2, and on
// original_source/src/function/mod.rs's VBFunction calling convention
// (a callable accepting a lazy sequence of argument results).
package registry

import "github.com/glint-lang/glint/pkg/value"

// Callable accepts a lazily-resolved sequence of argument values and
// yields one Scalar Value or a structured runtime error. Implementations
// may inspect argument errors as they arise (§4.5 tree-walker contract).
type Callable func(args ArgIter) (value.Value, error)

// ArgIter is a lazy sequence of already-resolved argument results, handed
// to a Callable instead of a plain slice so a callable can short-circuit
// without the caller having had to resolve every argument up front.
type ArgIter interface {
	Next() (value.Value, bool, error)
	Len() int
}

// sliceArgIter adapts a pre-resolved []value.Value into an ArgIter for
// host functions invoked during inlining,
// where arguments are already simple values with no error to carry.
type sliceArgIter struct {
	items []value.Value
	pos   int
}

func NewArgIter(items []value.Value) ArgIter { return &sliceArgIter{items: items} }

func (s *sliceArgIter) Next() (value.Value, bool, error) {
	if s.pos >= len(s.items) {
		return value.Value{}, false, nil
	}
	v := s.items[s.pos]
	s.pos++
	return v, true, nil
}

func (s *sliceArgIter) Len() int { return len(s.items) }

// FuncDef is the definition struct passed to AddFunction, per §3's
// "Resolved Host Function" and §4.2's add_function contract.
type FuncDef struct {
	Name               string
	Module             string // empty means a bare (unqualified) function
	AssociatedType     string // empty means not a method/getter/setter
	Callable           Callable
	Inlineable         bool
	DeclaredReturnType string
}

// Resolved is the Resolved Host Function shape from §3: {callable,
// declared_return_type?, inlineable}. It also implements
// value.CallableRef so a resolved function can be embedded in a
// FunctionCall AST node without pkg/value importing pkg/registry.
type Resolved struct {
	name               string
	Callable           Callable
	DeclaredReturnType string
	InlineableFlag     bool
}

func (r *Resolved) Name() string      { return r.name }
func (r *Resolved) Inlineable() bool  { return r.InlineableFlag }
func (r *Resolved) Call(args ArgIter) (value.Value, error) { return r.Callable(args) }

type constant struct {
	Value value.Value
	Type  string
}

// key identifies a function by the triple the spec requires: an optional
// associated type, an optional module, and a mandatory name.
type key struct {
	associatedType string
	module         string
	name           string
}

// Registry is the mutable catalog described in §4.2. Constructed once per
// engine instance; read-only during compilation (§5).
type Registry struct {
	constants map[string]constant

	// bare[name] holds module-less, associated-type-less functions.
	bare map[string]*Resolved
	// moduleBare[module][name] holds module-qualified bare functions.
	moduleBare map[string]map[string]*Resolved
	// assoc[assocType][name] holds built-in associated (method/getter/setter) functions.
	assoc map[string]map[string]*Resolved
	// moduleAssoc[module][assocType][name] holds module-scoped associated functions.
	moduleAssoc map[string]map[string]map[string]*Resolved
	// moduleOrder preserves insertion order for the "first match wins" fallback.
	moduleOrder []string

	unaryOps  map[string]*Resolved
	binaryOps map[string]*Resolved
}

// New constructs an empty Registry with the fixed operator tables
// pre-populated (§4.2 "fixed tables populated at construction").
func New() *Registry {
	r := &Registry{
		constants:   make(map[string]constant),
		bare:        make(map[string]*Resolved),
		moduleBare:  make(map[string]map[string]*Resolved),
		assoc:       make(map[string]map[string]*Resolved),
		moduleAssoc: make(map[string]map[string]map[string]*Resolved),
		unaryOps:    make(map[string]*Resolved),
		binaryOps:   make(map[string]*Resolved),
	}
	registerOperators(r)
	registerBuiltins(r)
	return r
}

// AddConstant is idempotent overwrite (§4.2).
func (r *Registry) AddConstant(name string, v value.Value, declaredType string) {
	r.constants[name] = constant{Value: v, Type: declaredType}
}

// FindConstant returns a constant's value and declared type.
func (r *Registry) FindConstant(name string) (value.Value, string, bool) {
	c, ok := r.constants[name]
	return c.Value, c.Type, ok
}

// AddFunction registers a function definition, filing it into the bare,
// module-qualified, or associated-type table as appropriate.
func (r *Registry) AddFunction(def FuncDef) {
	resolved := &Resolved{
		name:               def.Name,
		Callable:           def.Callable,
		DeclaredReturnType: def.DeclaredReturnType,
		InlineableFlag:     def.Inlineable,
	}

	switch {
	case def.AssociatedType != "" && def.Module != "":
		if _, ok := r.moduleAssoc[def.Module]; !ok {
			r.moduleAssoc[def.Module] = make(map[string]map[string]*Resolved)
			r.moduleOrder = append(r.moduleOrder, def.Module)
		}
		if _, ok := r.moduleAssoc[def.Module][def.AssociatedType]; !ok {
			r.moduleAssoc[def.Module][def.AssociatedType] = make(map[string]*Resolved)
		}
		r.moduleAssoc[def.Module][def.AssociatedType][def.Name] = resolved
	case def.AssociatedType != "":
		if _, ok := r.assoc[def.AssociatedType]; !ok {
			r.assoc[def.AssociatedType] = make(map[string]*Resolved)
		}
		r.assoc[def.AssociatedType][def.Name] = resolved
	case def.Module != "":
		if _, ok := r.moduleBare[def.Module]; !ok {
			r.moduleBare[def.Module] = make(map[string]*Resolved)
			r.moduleOrder = append(r.moduleOrder, def.Module)
		}
		r.moduleBare[def.Module][def.Name] = resolved
	default:
		r.bare[def.Name] = resolved
	}
}

// FindFunction implements the resolution algorithm of §4.2.
func (r *Registry) FindFunction(associatedType, module, name string) (*Resolved, bool) {
	switch {
	case associatedType != "" && module != "":
		if m, ok := r.moduleAssoc[module]; ok {
			if fn, ok := m[associatedType][name]; ok {
				return fn, true
			}
		}
		return nil, false

	case associatedType != "":
		if fn, ok := r.assoc[associatedType][name]; ok {
			return fn, true
		}
		for _, mod := range r.moduleOrder {
			if fn, ok := r.moduleAssoc[mod][associatedType][name]; ok {
				return fn, true
			}
		}
		return nil, false

	case module != "":
		if fn, ok := r.moduleBare[module][name]; ok {
			return fn, true
		}
		return nil, false

	default:
		if fn, ok := r.bare[name]; ok {
			return fn, true
		}
		for _, mod := range r.moduleOrder {
			if fn, ok := r.moduleBare[mod][name]; ok {
				return fn, true
			}
		}
		return nil, false
	}
}

// KnownFunctionNames returns every bare and module-qualified function
// name on file, for building "did you mean" diagnostics — it never
// considers associated-type functions, since those are only reachable
// through a property chain and a typo there means a different error
// (no such property), not a misspelled function name.
func (r *Registry) KnownFunctionNames() []string {
	names := make([]string, 0, len(r.bare))
	for name := range r.bare {
		names = append(names, name)
	}
	for _, byName := range r.moduleBare {
		for name := range byName {
			names = append(names, name)
		}
	}
	return names
}

func (r *Registry) FindUnaryOperator(symbol string) (*Resolved, bool) {
	fn, ok := r.unaryOps[symbol]
	return fn, ok
}

func (r *Registry) FindBinaryOperator(symbol string) (*Resolved, bool) {
	fn, ok := r.binaryOps[symbol]
	return fn, ok
}
