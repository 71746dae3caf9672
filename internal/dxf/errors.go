package dxf

import (
	"fmt"
)

// ParseError indicates structurally unreadable input: the text yielded no
// usable group-code/value pairs at all. Everything less severe is reported
// as an Issue and parsing continues.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unreadable DXF input: %s", e.Reason)
}

// ErrUnknownBlock indicates an INSERT references a block that was never defined.
type ErrUnknownBlock struct {
	Name string
}

func (e *ErrUnknownBlock) Error() string {
	return fmt.Sprintf("insert references unknown block %q", e.Name)
}

// IssueKind classifies recoverable problems found while reading a drawing.
type IssueKind string

const (
	IssueSyntax      IssueKind = "syntax"      // malformed group-code line
	IssueValidation  IssueKind = "validation"  // entity failed shape constraints
	IssueUnsupported IssueKind = "unsupported" // entity kinds without a converter
	IssueCycle       IssueKind = "cycle"       // block self-reference
	IssueCanceled    IssueKind = "canceled"    // cooperative cancellation marker
)

// Issue is a recoverable problem recorded during parsing or conversion.
// Issues are accumulated and returned alongside the result, never thrown
// mid-pipeline.
type Issue struct {
	Kind IssueKind

	// Line is the 1-based input line the issue was detected on.
	// Zero when the issue is not bound to a specific line.
	Line int

	// Entity is the DXF entity kind involved, if any (e.g. "CIRCLE").
	Entity string

	// Handle is the entity handle, if the record carried one.
	Handle string

	Message string
}

func (i Issue) String() string {
	switch {
	case i.Line > 0 && i.Entity != "":
		return fmt.Sprintf("line %d: %s %s: %s", i.Line, i.Entity, i.Handle, i.Message)
	case i.Line > 0:
		return fmt.Sprintf("line %d: %s", i.Line, i.Message)
	case i.Entity != "":
		return fmt.Sprintf("%s %s: %s", i.Entity, i.Handle, i.Message)
	default:
		return i.Message
	}
}
