package driver

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"opp/internal/diag"
	"opp/internal/project"
	"opp/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит результаты проверки документов на диске, ключ - хеш
// содержимого документа и опций анализа. Thread-safe.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the cached outcome of checking one document.
type DiskPayload struct {
	Schema uint16 `msgpack:"v"`
	// Source is the resolved path of the program text, "" when spans point
	// at the document itself.
	Source        string             `msgpack:"src,omitempty"`
	SourceVirtual bool               `msgpack:"srcv,omitempty"`
	Diagnostics   []CachedDiagnostic `msgpack:"d"`
}

type CachedDiagnostic struct {
	Severity uint8        `msgpack:"sev"`
	Code     uint16       `msgpack:"code"`
	Message  string       `msgpack:"msg"`
	Fatal    bool         `msgpack:"fatal,omitempty"`
	Primary  CachedSpan   `msgpack:"at"`
	Notes    []CachedNote `msgpack:"notes,omitempty"`
}

type CachedNote struct {
	Span CachedSpan `msgpack:"at"`
	Msg  string     `msgpack:"msg"`
}

// CachedSpan drops the FileID: InSource selects the program text over the
// document when the payload is restored.
type CachedSpan struct {
	InSource bool      `msgpack:"s,omitempty"`
	Start    [2]uint32 `msgpack:"b"`
	End      [2]uint32 `msgpack:"e"`
}

// OpenDiskCache initializes a disk cache in dir, or in the user cache
// directory for app when dir is empty.
func OpenDiskCache(app, dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *DiskCache) Dir() string {
	return c.dir
}

func (c *DiskCache) pathFor(key project.Digest) string {
	// подкаталог "units" - удобно чистить руками
	return filepath.Join(c.dir, "units", key.String()+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if removeErr := os.Remove(f.Name()); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) && err == nil {
			err = removeErr
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload. Entries written by another schema
// version are reported as missing.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := msgpack.Unmarshal(data, out); err != nil {
		return false, err
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

func toCachedSpan(sp source.Span, srcFile source.FileID, hasSource bool) CachedSpan {
	return CachedSpan{
		InSource: hasSource && sp.File == srcFile,
		Start:    [2]uint32{sp.Start.Line, sp.Start.Col},
		End:      [2]uint32{sp.End.Line, sp.End.Col},
	}
}

func (cs CachedSpan) span(doc, src source.FileID) source.Span {
	file := doc
	if cs.InSource {
		file = src
	}
	return source.Span{
		File:  file,
		Start: source.Pos{Line: cs.Start[0], Col: cs.Start[1]},
		End:   source.Pos{Line: cs.End[0], Col: cs.End[1]},
	}
}

// diagnosticsToPayload converts a finished bag for caching.
func diagnosticsToPayload(items []diag.Diagnostic, fs *source.FileSet, doc source.FileID) *DiskPayload {
	payload := &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Diagnostics: make([]CachedDiagnostic, 0, len(items)),
	}
	src, hasSource := fs.SourceOf(doc)
	if hasSource {
		if f := fs.Get(src); f != nil {
			payload.Source = f.Path
			payload.SourceVirtual = f.IsVirtual()
		}
	}
	for _, d := range items {
		cd := CachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Fatal:    d.Fatal,
			Primary:  toCachedSpan(d.Primary, src, hasSource),
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, CachedNote{Span: toCachedSpan(n.Span, src, hasSource), Msg: n.Msg})
		}
		payload.Diagnostics = append(payload.Diagnostics, cd)
	}
	return payload
}

// payloadToBag restores cached diagnostics; the program text named by the
// payload is registered in fs the same way astio does it.
func payloadToBag(payload *DiskPayload, fs *source.FileSet, doc source.FileID, max int) *diag.Bag {
	src := doc
	if payload.Source != "" {
		path := payload.Source
		if payload.SourceVirtual {
			path = ""
		}
		src = fs.AttachSource(doc, path, payload.Source)
	}
	bag := diag.NewBag(max)
	for _, cd := range payload.Diagnostics {
		d := diag.New(diag.Severity(cd.Severity), diag.Code(cd.Code), cd.Primary.span(doc, src), cd.Message)
		d.Fatal = cd.Fatal
		for _, n := range cd.Notes {
			d = d.WithNote(n.Span.span(doc, src), n.Msg)
		}
		bag.Add(d)
	}
	return bag
}
