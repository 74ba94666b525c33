// Package compile implements the Compile Context (C): a per-compilation
// scoped symbol table plus source-position remapping, tracking both
// embedder-declared input variables and local variables introduced by the
// script, with per-scope validity of their known value and known type.
//
// Grounded directly on original_source/src/engine/context.rs
// (ContextBuilder, InputVariable) — the distilled spec's §4.3 is close to
// a prose transliteration of that file. The parent-chain scoping
// discipline it expresses with indexed vectors-of-vectors is kept as-is;
// only the host language changes (Rust Vec -> Go slice).
package compile

import "github.com/glint-lang/glint/pkg/value"

// Variable is the Compile-Time Variable of spec §3.
type Variable struct {
	Name                string
	FirstValue          value.Value
	DeclaredType        string
	HasDeclaredType     bool
	CurrentKnownValue   value.Value
	HasKnownValue       bool
	TypeValidUpToDepth  int
	ValueValidUpToDepth int
	Inlineable          bool
	CanInline           bool
}

// InlineableValue returns the variable's tracked value only if it is
// eligible for compile-time substitution (CanInline && has a known value).
func (v *Variable) InlineableValue() (value.Value, bool) {
	if !v.CanInline || !v.HasKnownValue {
		return value.Value{}, false
	}
	return v.CurrentKnownValue, true
}

type scopeLevel struct {
	blockLevel int
	vars       []*Variable
}

// Context is the ContextBuilder of spec §4.3. Scope 0 holds
// embedder-declared input variables; scopes >=1 are pushed by statement
// blocks (loop bodies, conditional branches).
type Context struct {
	inUse   []scopeLevel
	past    []scopeLevel
	nextLvl int

	startedParsing bool

	lineOffset         int
	columnOffset       int
	columnOffsetFixed  bool

	// inliningSuspended is the "forbid/permit inlining" toggle set by
	// SuspendInlining; the parser never sets it, see SPEC_FULL.md §9.1.
	inliningSuspended bool
}

// New constructs a Context with scope 0 already pushed, matching
// ContextBuilder::default in context.rs.
func New() *Context {
	c := &Context{}
	c.PushBlock()
	return c
}

// CurrentDepth is the number of scopes currently on the stack.
func (c *Context) CurrentDepth() int { return len(c.inUse) }

// PushBlock pushes a new scope, used when entering a statement block.
func (c *Context) PushBlock() {
	c.inUse = append(c.inUse, scopeLevel{blockLevel: c.nextLvl})
	c.nextLvl++
}

// PopBlock pops the innermost scope. For every variable still live in
// outer scopes, if its ValueValidUpToDepth/TypeValidUpToDepth exceeds the
// new depth, the corresponding tracked field is cleared — the central
// invalidation rule of §3/§4.3/§9.
func (c *Context) PopBlock() {
	last := c.inUse[len(c.inUse)-1]
	c.inUse = c.inUse[:len(c.inUse)-1]
	if len(last.vars) > 0 {
		c.past = append(c.past, last)
	}

	depth := c.CurrentDepth()
	for _, lvl := range c.inUse {
		for _, v := range lvl.vars {
			if v.ValueValidUpToDepth > depth {
				v.HasKnownValue = false
				v.CurrentKnownValue = value.Value{}
			}
			if v.TypeValidUpToDepth > depth {
				v.HasDeclaredType = false
				v.DeclaredType = ""
			}
		}
	}
}

// SuspendInlining marks that no variable is inlineable for the duration
// of the caller's work. Call the returned func to restore the previous
// state. The parser does not call it: while-predicates are parsed with
// inlining left on.
func (c *Context) SuspendInlining() (restore func()) {
	prev := c.inliningSuspended
	c.inliningSuspended = true
	return func() { c.inliningSuspended = prev }
}

func (c *Context) inliningAllowed() bool { return !c.inliningSuspended }

// PushVariable implements §4.3's push_variable: if the name matches an
// existing scope-0 variable and the context is still consuming inputs (no
// statements processed yet), the existing entry is overwritten in place;
// otherwise a fresh entry is pushed at the current scope. asLet forces a
// fresh variable even during input-consuming phase (a `let` declaration
// never merges with an existing scope-0 input).
func (c *Context) PushVariable(v *Variable, asLet bool) (blockLevel, index int) {
	if !asLet && !c.startedParsing {
		for i, existing := range c.inUse[0].vars {
			if existing.Name == v.Name {
				depth := c.CurrentDepth()
				if existing.HasDeclaredType != v.HasDeclaredType || existing.DeclaredType != v.DeclaredType {
					v.TypeValidUpToDepth = depth
					v.ValueValidUpToDepth = depth
				}
				if existing.HasKnownValue != v.HasKnownValue || !value.Equal(existing.CurrentKnownValue, v.CurrentKnownValue) {
					v.ValueValidUpToDepth = depth
				}
				existing.CurrentKnownValue = v.CurrentKnownValue
				existing.HasKnownValue = v.HasKnownValue
				return c.inUse[0].blockLevel, i
			}
		}
		c.inUse[0].vars = append(c.inUse[0].vars, v)
		return c.inUse[0].blockLevel, len(c.inUse[0].vars) - 1
	}

	last := len(c.inUse) - 1
	c.inUse[last].vars = append(c.inUse[last].vars, v)
	return c.inUse[last].blockLevel, len(c.inUse[last].vars) - 1
}

// BeginStatements marks that input-variable consumption has ended and
// statement processing has begun; after this, PushVariable no longer
// overwrites a matching scope-0 input and always appends a fresh entry at
// the current scope.
func (c *Context) BeginStatements() { c.startedParsing = true }

// FindVariable searches scopes deepest-first and returns the variable
// along with its (block_level, index).
func (c *Context) FindVariable(name string) (blockLevel, index int, v *Variable, ok bool) {
	for i := len(c.inUse) - 1; i >= 0; i-- {
		lvl := c.inUse[i]
		for j := len(lvl.vars) - 1; j >= 0; j-- {
			if lvl.vars[j].Name == name {
				if c.inliningAllowed() {
					return lvl.blockLevel, j, lvl.vars[j], true
				}
				// While inlining is suspended, hand back a shallow copy
				// with CanInline forced false so callers can't fold it.
				copyVar := *lvl.vars[j]
				copyVar.CanInline = false
				return lvl.blockLevel, j, &copyVar, true
			}
		}
	}
	return 0, 0, nil, false
}

// VisibleVariableNames lists every variable name reachable from the
// current scope, deepest-first, for building "did you mean"
// diagnostics when an identifier lookup fails.
func (c *Context) VisibleVariableNames() []string {
	var names []string
	for i := len(c.inUse) - 1; i >= 0; i-- {
		for j := len(c.inUse[i].vars) - 1; j >= 0; j-- {
			names = append(names, c.inUse[i].vars[j].Name)
		}
	}
	return names
}

// MarkNonInlineable records that the variable identified by
// (blockLevel, index) was assigned to at a deeper scope and can no longer
// be folded; it narrows the validity depths down to the current depth,
// per §4.4's ASSIGNMENT rule.
func (c *Context) MarkNonInlineable(blockLevel, index int) {
	v := c.GetVariableAt(blockLevel, index)
	if v == nil {
		return
	}
	depth := c.CurrentDepth()
	v.TypeValidUpToDepth = depth
	v.ValueValidUpToDepth = depth
	v.HasKnownValue = false
	v.CurrentKnownValue = value.Value{}
}

// GetVariableAt looks up a variable by its (block_level, index) identity.
func (c *Context) GetVariableAt(blockLevel, index int) *Variable {
	for _, lvl := range c.inUse {
		if lvl.blockLevel == blockLevel {
			if index < len(lvl.vars) {
				return lvl.vars[index]
			}
			return nil
		}
	}
	return nil
}

// ScopeEntry pairs a block level with the variables declared at it, as
// produced by TakeAllVariables.
type ScopeEntry struct {
	BlockLevel int
	Vars       []*Variable
}

// TakeAllVariables consumes both live and popped scopes into one stream,
// preserving (block_level, index) identity — used by the liveness pass.
func (c *Context) TakeAllVariables() []ScopeEntry {
	entries := make([]ScopeEntry, 0, len(c.inUse)+len(c.past))
	for _, lvl := range c.inUse {
		entries = append(entries, ScopeEntry{BlockLevel: lvl.blockLevel, Vars: lvl.vars})
	}
	for _, lvl := range c.past {
		entries = append(entries, ScopeEntry{BlockLevel: lvl.blockLevel, Vars: lvl.vars})
	}
	c.inUse = nil
	c.past = nil
	return entries
}

// SetStartPositionOffset configures the (line_offset, column_offset) used
// by RemapPosition, per §4.3.
func (c *Context) SetStartPositionOffset(lineOffset, columnOffset int) {
	c.lineOffset = lineOffset
	c.columnOffset = columnOffset
}

// SetColumnOffsetFixed configures whether the column offset applies
// unconditionally (true) or only on the first source line (false).
func (c *Context) SetColumnOffsetFixed(fixed bool) {
	c.columnOffsetFixed = fixed
}

// RemapPosition applies the transform in §4.3: line += line_offset; if the
// original line is 1 or the offset is fixed, column += column_offset, else
// column passes through unchanged.
func (c *Context) RemapPosition(line, column int) (int, int) {
	remappedLine := line + c.lineOffset
	if line == 1 || c.columnOffsetFixed {
		return remappedLine, column + c.columnOffset
	}
	return remappedLine, column
}
