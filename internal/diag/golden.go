package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"opp/internal/source"
)

type goldenDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatGoldenDiagnostics renders diagnostics into a stable, single-line-per-entry
// representation suitable for golden files. Entries are sorted deterministically
// and returned as a single string (empty when nothing remains).
func FormatGoldenDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}

	rendered := make([]goldenDiagnostic, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		rendered = append(rendered, resolve(fs, d.Primary, severityLabel(d), d.Code, d.Message))
		if !includeNotes {
			continue
		}
		for _, note := range d.Notes {
			rendered = append(rendered, resolve(fs, note.Span, "note", d.Code, note.Msg))
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func resolve(fs *source.FileSet, span source.Span, sev string, code Code, msg string) goldenDiagnostic {
	out := goldenDiagnostic{
		Severity: sev,
		Code:     code.ID(),
		Line:     span.Start.Line,
		Column:   span.Start.Col,
		Message:  sanitizeMessage(msg),
	}
	if path := fs.DisplayPath(span.File, source.PathRelative); path != "" {
		out.Path = normalizePath(path)
	}
	return out
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func severityLabel(d *Diagnostic) string {
	label := "info"
	switch d.Severity {
	case SevError:
		label = "error"
	case SevWarning:
		label = "warning"
	}
	if d.Fatal {
		return "fatal-" + label
	}
	return label
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
