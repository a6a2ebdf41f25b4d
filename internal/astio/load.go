package astio

import (
	"fmt"

	"opp/internal/ast"
	"opp/internal/source"
)

// Unit is one decoded AST document.
type Unit struct {
	Doc     source.FileID // the document itself
	File    source.FileID // the program text spans refer to
	Builder *ast.Builder
	Program ast.NodeID
}

// Load reads path into fs and decodes it.
func Load(fs *source.FileSet, path string, format Format) (*Unit, error) {
	docID, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Decode(fs, docID, format)
}

// Decode builds the AST of a document already stored in fs. When the
// document names its source program, that file is loaded next to the
// document (or registered as virtual when missing) and spans point into it.
func Decode(fs *source.FileSet, docID source.FileID, format Format) (*Unit, error) {
	f := fs.Get(docID)
	if f == nil {
		return nil, fmt.Errorf("unknown file %d", docID)
	}
	if format == FormatAuto {
		format = DetectFormat(f.Path)
	}
	doc, err := Unmarshal(f.Content, format)
	if err != nil {
		return nil, err
	}
	spanFile := docID
	if doc.Source != "" {
		spanFile = fs.AttachSource(docID, source.SourcePath(f.Path, doc.Source), doc.Source)
	}
	builder, program, err := Build(doc, spanFile)
	if err != nil {
		return nil, err
	}
	return &Unit{Doc: docID, File: spanFile, Builder: builder, Program: program}, nil
}
