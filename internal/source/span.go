package source

import (
	"fmt"
)

// Span is a source range of the original program text. Start is inclusive,
// End points at the last column covered by the construct.
type Span struct {
	File  FileID
	Start Pos
	End   Pos
}

// Empty reports whether the span carries no position at all.
func (s Span) Empty() bool {
	return !s.Start.IsValid()
}

// String renders the span in the parser's location format: "L.C-C" for
// single-line ranges and "L.C-L.C" otherwise. The file part is left to
// FileSet.Location.
func (s Span) String() string {
	if s.Empty() {
		return "?"
	}
	switch {
	case !s.End.IsValid() || s.End == s.Start:
		return fmt.Sprintf("%d.%d", s.Start.Line, s.Start.Col)
	case s.End.Line == s.Start.Line:
		return fmt.Sprintf("%d.%d-%d", s.Start.Line, s.Start.Col, s.End.Col)
	default:
		return fmt.Sprintf("%d.%d-%d.%d", s.Start.Line, s.Start.Col, s.End.Line, s.End.Col)
	}
}

// Cover returns the smallest span enclosing both s and other.
func (s Span) Cover(other Span) Span {
	if s.File != other.File || other.Empty() {
		return s
	}
	if s.Empty() {
		return other
	}
	if other.Start.Before(s.Start) {
		s.Start = other.Start
	}
	if s.End.Before(other.End) {
		s.End = other.End
	}
	return s
}

// Less orders spans by file and start position.
func (s Span) Less(other Span) bool {
	if s.File != other.File {
		return s.File < other.File
	}
	if s.Start != other.Start {
		return s.Start.Before(other.Start)
	}
	return s.End.Before(other.End)
}
