package source

// FileID identifies an input within one FileSet: an AST document or the
// program text its locations refer to.
type FileID uint32

type FileFlags uint8

const (
	// FileVirtual: содержимое не с диска. Source text that could not be
	// found is registered this way with no content.
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// IsVirtual reports whether f was added from memory rather than loaded.
func (f *File) IsVirtual() bool { return f.Flags&FileVirtual != 0 }

// Pos is a human-readable position in a source file, as reported by the parser.
type Pos struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// IsValid reports whether the position was set.
func (p Pos) IsValid() bool {
	return p.Line != 0
}

// Before reports whether p precedes other.
func (p Pos) Before(other Pos) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Col < other.Col
}
