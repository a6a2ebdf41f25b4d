package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"opp/internal/diag"
	"opp/internal/source"
)

var (
	fatalColor   = color.New(color.FgRed, color.Bold, color.ReverseVideo)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	locColor     = color.New(color.FgHiBlack)
	noteColor    = color.New(color.FgBlue, color.Bold)
)

func labelColor(d *diag.Diagnostic) *color.Color {
	switch {
	case d.Fatal:
		return fatalColor
	case d.Severity == diag.SevError:
		return errorColor
	case d.Severity == diag.SevWarning:
		return warningColor
	default:
		return infoColor
	}
}

// paint применяет цвет только когда он включён опцией, независимо от
// глобального color.NoColor.
func paint(c *color.Color, on bool, s string) string {
	if !on {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}

// Plain writes one line per diagnostic:
//
//	[FATAL ]ERROR:<message> at location: <path:L.C-C>
func Plain(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PlainOpts) error {
	for _, d := range bag.Items() {
		_, err := fmt.Fprintf(w, "%s:%s at location: %s\n",
			paint(labelColor(&d), opts.Color, d.Label()),
			d.Message,
			paint(locColor, opts.Color, location(fs, d.Primary, opts.PathMode)),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Short is the compiler-style "path:L:C: CODE message" form, notes omitted.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode) error {
	for _, d := range bag.Items() {
		path := fs.DisplayPath(d.Primary.File, mode)
		if path == "" {
			path = "<unknown>"
		}
		_, err := fmt.Fprintf(w, "%s:%d:%d: %s %s\n",
			path, d.Primary.Start.Line, d.Primary.Start.Col, d.Code.ID(), d.Message)
		if err != nil {
			return err
		}
	}
	return nil
}
