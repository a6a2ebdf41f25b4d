package diagfmt

import (
	"opp/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode = source.PathMode

const (
	PathModeAuto     = source.PathAuto
	PathModeAbsolute = source.PathAbsolute
	PathModeRelative = source.PathRelative
	PathModeBasename = source.PathBase
)

// PlainOpts configures the one-line rendering.
type PlainOpts struct {
	Color    bool
	PathMode PathMode
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	Context   int8 // строки контекста вокруг primary
	PathMode  PathMode
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode     PathMode
	Max          int // обрезка вывода, не Bag
	IncludeNotes bool
}

// location renders "path:L.C-C", or just the span when the file is unknown.
func location(fs *source.FileSet, span source.Span, mode PathMode) string {
	path := fs.DisplayPath(span.File, mode)
	if path == "" {
		return span.String()
	}
	return path + ":" + span.String()
}
