package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"opp/internal/diag"
	"opp/internal/source"
)

// Format selects a renderer.
type Format uint8

const (
	FormatPretty Format = iota
	FormatPlain
	FormatShort
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatPlain:
		return "plain"
	case FormatShort:
		return "short"
	case FormatJSON:
		return "json"
	default:
		return "pretty"
	}
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pretty":
		return FormatPretty, nil
	case "plain":
		return FormatPlain, nil
	case "short":
		return FormatShort, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatPretty, fmt.Errorf("unknown diagnostics format %q (expected pretty|plain|short|json)", s)
	}
}

// Options объединяет настройки всех рендереров.
type Options struct {
	Format    Format
	Color     bool
	PathMode  PathMode
	Context   int8
	Max       int
	ShowNotes bool
}

// Render writes bag with the renderer chosen by opts.Format.
func Render(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts Options) error {
	switch opts.Format {
	case FormatPlain:
		return Plain(w, bag, fs, PlainOpts{Color: opts.Color, PathMode: opts.PathMode})
	case FormatShort:
		return Short(w, bag, fs, opts.PathMode)
	case FormatJSON:
		return JSON(w, bag, fs, JSONOpts{PathMode: opts.PathMode, Max: opts.Max, IncludeNotes: opts.ShowNotes})
	default:
		return Pretty(w, bag, fs, PrettyOpts{
			Color:     opts.Color,
			Context:   opts.Context,
			PathMode:  opts.PathMode,
			ShowNotes: opts.ShowNotes,
		})
	}
}
