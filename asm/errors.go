// Package asm implements the MiMA's two-pass assembler: a hand-rolled
// line scanner (there is no parser-combinator library in reach the way
// the reference implementation reaches for one) that turns assembly
// source into object code, a symbol table, and a list of diagnostics.
package asm

import "fmt"

// DiagnosticKind distinguishes the ways a syntactically valid program can
// still warrant a warning.
type DiagnosticKind int

const (
	UnusedLocalLabel DiagnosticKind = iota
)

// Diagnostic is a non-fatal warning about an otherwise valid program.
type Diagnostic struct {
	LineNumber int
	Kind       DiagnosticKind
	Label      string
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case UnusedLocalLabel:
		return fmt.Sprintf("[Line %d] Warning: The local label %q is never referenced.", d.LineNumber, d.Label)
	default:
		return fmt.Sprintf("[Line %d] Warning", d.LineNumber)
	}
}

// ParseError reports a line whose syntax the scanner could not match
// against the statement grammar.
type ParseError struct {
	LineNumber int
	Token      string
}

func (e *ParseError) Error() string {
	token := e.Token
	if token == "" {
		token = "???"
	}
	return fmt.Sprintf("[Line %d] Error: Failed to parse token starting at %q.", e.LineNumber, token)
}

// LabelErrorKind distinguishes the ways a syntactically correct program
// can misuse a label.
type LabelErrorKind int

const (
	BadDefPrefix LabelErrorKind = iota
	Duplicate
	BehindFullMemory
	NotResolved
)

// LabelError reports a misused label: a bad definition prefix, a
// duplicate definition, a definition past the end of linear memory, or a
// reference that never resolves.
type LabelError struct {
	LineNumber int
	Kind       LabelErrorKind
	Label      string
}

func (e *LabelError) Error() string {
	var msg string
	switch e.Kind {
	case BadDefPrefix:
		msg = fmt.Sprintf("A device prefix like %q is not allowed in a local label definition. If you want to prefix your local label, please use \"this\".", e.Label)
	case Duplicate:
		msg = fmt.Sprintf("The label definition %q is a duplicate.", e.Label)
	case BehindFullMemory:
		msg = fmt.Sprintf("The label definition %q is located at an invalid address.", e.Label)
	case NotResolved:
		msg = fmt.Sprintf("The label reference %q cannot be resolved.", e.Label)
	}
	return fmt.Sprintf("[Line %d] %s", e.LineNumber, msg)
}

// OverflowError reports that a program needs more words than fit in
// linear memory.
type OverflowError struct {
	LineNumber int
	Limit      int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("[Line %d] The maximum number of machine words (%d) is exceeded.", e.LineNumber, e.Limit)
}
