package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"opp/internal/diag"
	"opp/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Порядок диагностик сохраняется. Для каждой печатается
//
//	error[SEM3005]: <message>
//	  --> path:L.C-C
//	   |
//	 3 |     x := 'hello'
//	   |     ^^^^^^^^^^^^
//
// Excerpt печатается только если текст программы доступен в FileSet.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := &prettyPrinter{w: w, fs: fs, opts: opts}
	for i, d := range bag.Items() {
		if i > 0 {
			p.line("")
		}
		p.diagnostic(&d)
	}
	return p.err
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
	err  error
}

func (p *prettyPrinter) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *prettyPrinter) diagnostic(d *diag.Diagnostic) {
	label := strings.ToLower(d.Severity.String())
	if d.Fatal {
		label = "fatal " + label
	}
	header := paint(labelColor(d), p.opts.Color, fmt.Sprintf("%s[%s]", label, d.Code.ID()))
	p.line("%s: %s", header, d.Message)

	gutter := p.gutterWidth(d)
	p.line("%s%s %s", strings.Repeat(" ", gutter), paint(locColor, p.opts.Color, "-->"), location(p.fs, d.Primary, p.opts.PathMode))
	p.excerpt(d.Primary, gutter, labelColor(d))

	if !p.opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		note := paint(noteColor, p.opts.Color, "note")
		if n.Span.Empty() {
			p.line("%s= %s: %s", strings.Repeat(" ", gutter+1), note, n.Msg)
			continue
		}
		p.line("%s= %s: %s (%s)", strings.Repeat(" ", gutter+1), note, n.Msg, location(p.fs, n.Span, p.opts.PathMode))
	}
}

func (p *prettyPrinter) gutterWidth(d *diag.Diagnostic) int {
	last := d.Primary.Start.Line + p.context()
	return len(strconv.FormatUint(uint64(last), 10)) + 1
}

func (p *prettyPrinter) context() uint32 {
	if p.opts.Context <= 0 {
		return 0
	}
	return uint32(p.opts.Context)
}

func (p *prettyPrinter) excerpt(span source.Span, gutter int, caretColor *color.Color) {
	f := p.fs.Get(span.File)
	if f == nil || len(f.Content) == 0 || span.Empty() {
		return
	}
	target := f.GetLine(span.Start.Line)
	if target == "" && span.Start.Line > lineCount(f) {
		return
	}

	pad := strings.Repeat(" ", gutter)
	bar := paint(locColor, p.opts.Color, "|")
	p.line("%s%s", pad, bar)

	first := span.Start.Line
	if ctx := p.context(); first > ctx {
		first -= ctx
	} else {
		first = 1
	}
	for ln := first; ln < span.Start.Line; ln++ {
		p.line("%*d %s %s", gutter-1, ln, bar, expandTabs(f.GetLine(ln)))
	}
	p.line("%*d %s %s", gutter-1, span.Start.Line, bar, expandTabs(target))

	lead, width := caretRange(target, span)
	carets := strings.Repeat("^", width)
	p.line("%s%s %s%s", pad, bar, strings.Repeat(" ", lead), paint(caretColor, p.opts.Color, carets))

	for ln := span.Start.Line + 1; ln <= span.Start.Line+p.context(); ln++ {
		text := f.GetLine(ln)
		if text == "" && ln > lineCount(f) {
			break
		}
		p.line("%*d %s %s", gutter-1, ln, bar, expandTabs(text))
	}
}

// caretRange returns the display offset and width of span on its first line.
// Columns count runes; wide runes take two cells.
func caretRange(text string, span source.Span) (lead, width int) {
	runes := []rune(text)
	start := int(span.Start.Col) - 1
	start = max(0, min(start, len(runes)))
	end := len(runes)
	if span.End.Line == span.Start.Line && span.End.Col >= span.Start.Col {
		end = min(int(span.End.Col), len(runes))
	}
	lead = displayWidth(string(runes[:start]))
	width = displayWidth(string(runes[start:max(start, end)]))
	return lead, max(width, 1)
}

func lineCount(f *source.File) uint32 {
	n, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	return n + 1
}

func displayWidth(s string) int {
	return runewidth.StringWidth(expandTabs(s))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
