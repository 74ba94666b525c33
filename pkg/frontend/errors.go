package frontend

import "fmt"

// DiagnosticKind enumerates the compile-time diagnostic taxonomy of §7.
type DiagnosticKind string

const (
	DiagGrammarError             DiagnosticKind = "GrammarError"
	DiagIdentifierNotInScope     DiagnosticKind = "IdentifierNotInScope"
	DiagFunctionNotFound         DiagnosticKind = "FunctionNotFound"
	DiagCouldntInlineFunction    DiagnosticKind = "CouldntInlineFunction"
	DiagUnknownTypeForInlining   DiagnosticKind = "UnknownTypeForInlining"
	DiagNumericLiteralOutOfRange DiagnosticKind = "NumericLiteralOutOfRange"
	DiagPredicateNotBoolean      DiagnosticKind = "PredicateNotBoolean"
)

// Diagnostic is one accumulated compile-time problem, attributed to a
// remapped source position. Grounded on pkg/parser/errors.go's
// accumulate-rather-than-abort discipline, stripped of pretty-printing
// (out of scope per SPEC_FULL.md §1).
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
	Line    int
	Column  int
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s at %d:%d: %s", d.Kind, d.Line, d.Column, d.Message)
}

// Diagnostics accumulates problems across one compilation; STATEMENTS
// blocks report every error they find rather than stopping at the first
// (§4.4 "Statement construction").
type Diagnostics struct {
	items []*Diagnostic
}

func (d *Diagnostics) Add(kind DiagnosticKind, line, column int, format string, args ...interface{}) {
	d.items = append(d.items, &Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
	})
}

func (d *Diagnostics) HasErrors() bool { return len(d.items) > 0 }

func (d *Diagnostics) Items() []*Diagnostic { return d.items }

// CompileError is returned from Compile when any diagnostic accumulated.
type CompileError struct {
	Diagnostics []*Diagnostic
}

func (e *CompileError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "compile failed"
	}
	return fmt.Sprintf("compile failed with %d diagnostic(s): %s", len(e.Diagnostics), e.Diagnostics[0].Error())
}
