package frontend

import (
	"github.com/glint-lang/glint/pkg/compile"
	"github.com/glint-lang/glint/pkg/registry"
)

// Compile runs the whole front-end pipeline: tokenize, parse with
// interleaved folding, then run the liveness/compaction pass. Returns a
// *CompiledProgram ready for either executor (§4.5), or a *CompileError
// wrapping every accumulated diagnostic.
func Compile(source string, ctx *compile.Context, reg *registry.Registry) (*CompiledProgram, error) {
	lexer := NewLexer(source)
	tokens, err := lexer.Tokenize()
	if err != nil {
		if le, ok := err.(*LexError); ok {
			line, col := ctx.RemapPosition(le.Line, le.Column)
			return nil, &CompileError{Diagnostics: []*Diagnostic{{
				Kind: DiagGrammarError, Message: le.Message, Line: line, Column: col,
			}}}
		}
		return nil, err
	}

	parser := NewParser(tokens, ctx, reg)
	program := parser.ParseProgram()
	if parser.Diagnostics().HasErrors() {
		items := parser.Diagnostics().Items()
		for _, d := range items {
			d.Line, d.Column = ctx.RemapPosition(d.Line, d.Column)
		}
		return nil, &CompileError{Diagnostics: items}
	}

	return Compact(program, ctx), nil
}
