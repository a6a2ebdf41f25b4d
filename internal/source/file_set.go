package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet holds the inputs of one analysis run. An AST document may be
// paired with the program text its locations point into; spans then carry
// the text's FileID and the document stays reachable through the pairing.
type FileSet struct {
	files   []File
	latest  map[string]FileID // путь -> последняя версия
	sources map[FileID]FileID // документ -> текст программы
	baseDir string
}

func NewFileSet() *FileSet {
	return &FileSet{
		latest:  make(map[string]FileID),
		sources: make(map[FileID]FileID),
	}
}

// SetBaseDir sets the directory relative paths are shown against.
// Empty means the working directory.
func (fileSet *FileSet) SetBaseDir(dir string) { fileSet.baseDir = dir }

func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir != "" {
		return fileSet.baseDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

// Add stores content under a fresh FileID. Adding a path again creates a
// new version; GetLatest returns the newest one.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("file set overflow: %w", err))
	}
	id := FileID(n)
	path = normalizePath(path)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fileSet.latest[path] = id
	return id
}

// Load reads path, strips a BOM and turns CRLF into LF before Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- inputs are named by the user
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var flags FileFlags
	content, bom := removeBOM(content)
	if bom {
		flags |= FileHadBOM
	}
	content, crlf := normalizeCRLF(content)
	if crlf {
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(path, content, flags), nil
}

func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// AttachSource pairs document doc with the program text at path. A file
// already in the set is reused, otherwise it is loaded. When path is empty
// or unreadable an empty virtual file called name stands in, so locations
// still print a path but show no source lines.
func (fileSet *FileSet) AttachSource(doc FileID, path, name string) FileID {
	id, ok := FileID(0), false
	if path != "" {
		if id, ok = fileSet.GetLatest(path); !ok {
			var err error
			id, err = fileSet.Load(path)
			ok = err == nil
		}
	}
	if !ok {
		id = fileSet.AddVirtual(name, nil)
	}
	fileSet.sources[doc] = id
	return id
}

// SourceOf returns the program text attached to doc.
func (fileSet *FileSet) SourceOf(doc FileID) (FileID, bool) {
	id, ok := fileSet.sources[doc]
	return id, ok
}

// SourcePath resolves a program text name the way a document refers to
// it: relative names are taken from the document's directory.
func SourcePath(docPath, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(filepath.Dir(docPath), name)
}

// Get returns nil for IDs outside the set.
func (fileSet *FileSet) Get(id FileID) *File {
	if fileSet == nil || int(id) >= len(fileSet.files) {
		return nil
	}
	return &fileSet.files[id]
}

func (fileSet *FileSet) Len() int { return len(fileSet.files) }

func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fileSet.latest[normalizePath(path)]
	return id, ok
}

// PathMode selects how DisplayPath renders a file path.
type PathMode uint8

const (
	// PathAuto keeps short or relative paths and cuts long absolute ones
	// down to the base name.
	PathAuto PathMode = iota
	PathAbsolute
	PathRelative // against BaseDir
	PathBase
)

// DisplayPath renders the path of id, or "" for an unknown file.
func (fileSet *FileSet) DisplayPath(id FileID, mode PathMode) string {
	f := fileSet.Get(id)
	if f == nil {
		return ""
	}
	switch mode {
	case PathAbsolute:
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
	case PathRelative:
		if rel, err := RelativePath(f.Path, fileSet.BaseDir()); err == nil {
			return rel
		}
	case PathBase:
		return BaseName(f.Path)
	default:
		if len(f.Path) >= 40 && filepath.IsAbs(f.Path) {
			return BaseName(f.Path)
		}
	}
	return f.Path
}

// Location renders a span as "path:L.C-C", the form used in dumps.
func (fileSet *FileSet) Location(span Span) string {
	path := fileSet.DisplayPath(span.File, PathAuto)
	if path == "" {
		return span.String()
	}
	return path + ":" + span.String()
}

// GetLine returns line n (1-based) without its newline, or "" past the end.
func (f *File) GetLine(n uint32) string {
	if n == 0 {
		return ""
	}
	start := 0
	if n > 1 {
		if int(n-2) >= len(f.LineIdx) {
			return ""
		}
		start = int(f.LineIdx[n-2]) + 1
	}
	if start >= len(f.Content) {
		return ""
	}
	end := len(f.Content)
	if int(n-1) < len(f.LineIdx) {
		end = min(end, int(f.LineIdx[n-1]))
	}
	return string(f.Content[start:end])
}
