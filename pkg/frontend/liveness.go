package frontend

import (
	"sort"

	"github.com/glint-lang/glint/pkg/compile"
	"github.com/glint-lang/glint/pkg/value"
)

// CompiledProgram is the post-compaction AST: no statement is a
// pre-compaction assignment and no value is a scoped variable reference
// (§8 invariant).
type CompiledProgram struct {
	Statements             []Statement
	InitialFrame           []value.Value
	ParameterizedVariables map[string]int
}

type scopeKey struct {
	blockLevel int
	varIndex   int
}

// Compact runs the liveness and compaction pass of §4.4: collect every
// (block_level, var_index) pair actually referenced, assign each a dense
// index in lexicographic order, rewrite scoped references/assignments to
// their direct form, and build the initial runtime frame plus the
// parameterized-variable name table.
func Compact(prog *Program, ctx *compile.Context) *CompiledProgram {
	seen := map[scopeKey]bool{}
	collectStatements(prog.Statements, seen)

	keys := make([]scopeKey, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].blockLevel != keys[j].blockLevel {
			return keys[i].blockLevel < keys[j].blockLevel
		}
		return keys[i].varIndex < keys[j].varIndex
	})

	denseIndex := make(map[scopeKey]int, len(keys))
	for i, k := range keys {
		denseIndex[k] = i
	}

	entries := ctx.TakeAllVariables()
	firstValueOf := map[scopeKey]value.Value{}
	nameOf := map[scopeKey]string{}
	for _, entry := range entries {
		for idx, v := range entry.Vars {
			k := scopeKey{blockLevel: entry.BlockLevel, varIndex: idx}
			firstValueOf[k] = v.FirstValue
			nameOf[k] = v.Name
		}
	}

	frame := make([]value.Value, len(keys))
	params := map[string]int{}
	for _, k := range keys {
		frame[denseIndex[k]] = firstValueOf[k]
		if k.blockLevel == 0 {
			if name, ok := nameOf[k]; ok {
				params[name] = denseIndex[k]
			}
		}
	}

	stmts := rewriteStatements(prog.Statements, denseIndex)
	return &CompiledProgram{Statements: stmts, InitialFrame: frame, ParameterizedVariables: params}
}

func collectStatements(stmts []Statement, seen map[scopeKey]bool) {
	for _, s := range stmts {
		switch st := s.(type) {
		case *WhileStmt:
			collectValue(st.Cond, seen)
			collectStatements(st.Body, seen)
		case *IfElseStmt:
			for _, c := range st.Clauses {
				collectValue(c.Cond, seen)
				collectStatements(c.Body, seen)
			}
		case *ScopedAssignStmt:
			seen[scopeKey{st.BlockLevel, st.VarIndex}] = true
			collectValue(st.Expr, seen)
		case *DirectAssignStmt:
			collectValue(st.Expr, seen)
		case *ExprStmt:
			collectValue(st.Expr, seen)
		case *ReturnStmt:
			collectValue(st.Expr, seen)
		}
	}
}

func collectValue(v value.Value, seen map[scopeKey]bool) {
	switch v.Kind {
	case value.KindScopedVariable:
		seen[scopeKey{v.BlockLevel(), v.VarIndex()}] = true
	case value.KindArray:
		for _, item := range v.Items() {
			collectValue(item, seen)
		}
	case value.KindFunctionCall:
		for _, arg := range v.Call().Args {
			collectValue(arg, seen)
		}
	}
}

func rewriteStatements(stmts []Statement, denseIndex map[scopeKey]int) []Statement {
	out := make([]Statement, len(stmts))
	for i, s := range stmts {
		switch st := s.(type) {
		case *WhileStmt:
			out[i] = &WhileStmt{Cond: rewriteValue(st.Cond, denseIndex), Body: rewriteStatements(st.Body, denseIndex)}
		case *IfElseStmt:
			clauses := make([]Clause, len(st.Clauses))
			for j, c := range st.Clauses {
				clauses[j] = Clause{Cond: rewriteValue(c.Cond, denseIndex), Body: rewriteStatements(c.Body, denseIndex)}
			}
			out[i] = &IfElseStmt{Clauses: clauses}
		case *ScopedAssignStmt:
			idx := denseIndex[scopeKey{st.BlockLevel, st.VarIndex}]
			out[i] = &DirectAssignStmt{Index: idx, Expr: rewriteValue(st.Expr, denseIndex)}
		case *DirectAssignStmt:
			out[i] = &DirectAssignStmt{Index: st.Index, Expr: rewriteValue(st.Expr, denseIndex)}
		case *ExprStmt:
			out[i] = &ExprStmt{Expr: rewriteValue(st.Expr, denseIndex)}
		case *ReturnStmt:
			out[i] = &ReturnStmt{Expr: rewriteValue(st.Expr, denseIndex)}
		default:
			out[i] = s
		}
	}
	return out
}

func rewriteValue(v value.Value, denseIndex map[scopeKey]int) value.Value {
	switch v.Kind {
	case value.KindScopedVariable:
		return value.DirectVar(denseIndex[scopeKey{v.BlockLevel(), v.VarIndex()}])
	case value.KindArray:
		items := make([]value.Value, len(v.Items()))
		for i, item := range v.Items() {
			items[i] = rewriteValue(item, denseIndex)
		}
		return value.Arr(items)
	case value.KindFunctionCall:
		call := v.Call()
		args := make([]value.Value, len(call.Args))
		for i, arg := range call.Args {
			args[i] = rewriteValue(arg, denseIndex)
		}
		return value.FnCall(call.Callable, args)
	default:
		return v
	}
}
