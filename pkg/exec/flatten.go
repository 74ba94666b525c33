package exec

import (
	"github.com/glint-lang/glint/pkg/frontend"
	"github.com/glint-lang/glint/pkg/value"
)

// BlockKind discriminates the pooled block variants, mirroring
// original_source/src/execution/optimized_ast.rs's OptimizedBlock enum
// (WhileBlock / IfElseBlocks / IfBlock / OptimizedAssignament / FnCall /
// ReturnCall).
type BlockKind int

const (
	BlockWhile BlockKind = iota
	BlockIfElse
	BlockAssign
	BlockExprStmt
	BlockReturn
)

// Block is one pooled statement. Condition and expression payloads stay
// as value.Value — itself already a flat, pointer-light tagged struct —
// rather than being pooled into a third index vector the way
// original_source/src/execution/optimized_ast.rs's OptimizedFullValue
// pool does. What IS
// pooled, matching §4.5's "improves cache locality and makes cloning
// cheap" rationale, is the statement/block structure itself: a clause's
// body is a contiguous [start, start+len) range into the shared
// Statements index pool instead of a separately heap-allocated slice per
// clause.
type Block struct {
	Kind BlockKind

	Cond  value.Value // While / IfElse-clause condition
	Index int         // BlockAssign: dense frame index
	Value value.Value  // expr payload (Assign / ExprStmt / Return)

	BodyStart, BodyLen     int // While / IfElse-clause body range into Statements
	ClauseStart, ClauseLen int // BlockIfElse: range into Blocks, each itself a BlockWhile-shaped (cond, body) pair
}

// Program is the flattened-arena form of a CompiledProgram: two
// contiguous pools (Blocks, Statements) plus the runtime frame seed and
// parameter table carried over unchanged.
type Program struct {
	Blocks     []Block
	Statements []int // indices into Blocks, in execution order

	InitialFrame           []value.Value
	ParameterizedVariables map[string]int
}

// Flatten converts a CompiledProgram into its arena form (AST::to_optimized
// in §6's embedding API).
func Flatten(prog *frontend.CompiledProgram) *Program {
	fp := &Program{ParameterizedVariables: prog.ParameterizedVariables}
	fp.InitialFrame = make([]value.Value, len(prog.InitialFrame))
	copy(fp.InitialFrame, prog.InitialFrame)
	// The top-level list occupies the head of the shared Statements pool,
	// followed by a return-null sentinel so a walk of the pool from index 0
	// stops there; nested body ranges are appended after it.
	n := len(prog.Statements)
	fp.Statements = make([]int, n+1)
	for i, s := range prog.Statements {
		idx := flattenStatement(fp, s)
		fp.Statements[i] = idx
	}
	fp.Statements[n] = appendBlock(fp, Block{Kind: BlockReturn, Value: value.Null()})
	return fp
}

func flattenStatements(fp *Program, stmts []frontend.Statement) []int {
	indices := make([]int, 0, len(stmts))
	for _, s := range stmts {
		indices = append(indices, flattenStatement(fp, s))
	}
	return indices
}

func flattenStatement(fp *Program, s frontend.Statement) int {
	switch st := s.(type) {
	case *frontend.WhileStmt:
		bodyIdxs := flattenStatements(fp, st.Body)
		start := appendStatements(fp, bodyIdxs)
		return appendBlock(fp, Block{Kind: BlockWhile, Cond: st.Cond, BodyStart: start, BodyLen: len(bodyIdxs)})

	case *frontend.IfElseStmt:
		clauses := make([]Block, 0, len(st.Clauses))
		for _, c := range st.Clauses {
			bodyIdxs := flattenStatements(fp, c.Body)
			start := appendStatements(fp, bodyIdxs)
			clauses = append(clauses, Block{Kind: BlockWhile, Cond: c.Cond, BodyStart: start, BodyLen: len(bodyIdxs)})
		}
		clauseStart := len(fp.Blocks)
		fp.Blocks = append(fp.Blocks, clauses...)
		return appendBlock(fp, Block{Kind: BlockIfElse, ClauseStart: clauseStart, ClauseLen: len(st.Clauses)})

	case *frontend.DirectAssignStmt:
		return appendBlock(fp, Block{Kind: BlockAssign, Index: st.Index, Value: st.Expr})

	case *frontend.ExprStmt:
		return appendBlock(fp, Block{Kind: BlockExprStmt, Value: st.Expr})

	case *frontend.ReturnStmt:
		return appendBlock(fp, Block{Kind: BlockReturn, Value: st.Expr})

	default:
		return appendBlock(fp, Block{Kind: BlockExprStmt})
	}
}

func appendBlock(fp *Program, b Block) int {
	fp.Blocks = append(fp.Blocks, b)
	return len(fp.Blocks) - 1
}

func appendStatements(fp *Program, idxs []int) int {
	start := len(fp.Statements)
	fp.Statements = append(fp.Statements, idxs...)
	return start
}
