package diag

import (
	"opp/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is immutable once emitted.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	// Fatal diagnostics stop the remaining passes of the current unit.
	Fatal bool
	Notes []Note
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// Label is the "[FATAL ]ERROR" prefix of the plain rendering.
func (d Diagnostic) Label() string {
	if d.Fatal {
		return "FATAL " + d.Severity.String()
	}
	return d.Severity.String()
}
