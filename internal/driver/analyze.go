package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"opp/internal/astio"
	"opp/internal/diag"
	"opp/internal/observ"
	"opp/internal/project"
	"opp/internal/sema"
	"opp/internal/source"
	"opp/internal/trace"
)

// Options configure AnalyzeFile / AnalyzeDir.
type Options struct {
	Sema   sema.Options
	Format astio.Format
	// Jobs bounds parallel files; <= 0 means GOMAXPROCS.
	Jobs int
	// Cache is consulted and filled when not nil. Results restored from it
	// carry diagnostics only.
	Cache *DiskCache
	// Progress receives events; the caller owns and closes the channel.
	Progress chan<- Event
	// Sort orders each bag by position and drops duplicates. The cache
	// always stores emission order.
	Sort bool
}

// FileResult is the outcome for one AST document. Files holds every file
// the diagnostics refer to.
type FileResult struct {
	Path    string
	Files   *source.FileSet
	Unit    *astio.Unit  // nil when loading failed or the result was cached
	Sema    *sema.Result // nil when loading failed or the result was cached
	Bag     *diag.Bag
	Cached  bool
	Timings *observ.Timer
}

// HasErrors reports whether the file produced any error diagnostic.
func (r *FileResult) HasErrors() bool {
	return r.Bag != nil && r.Bag.HasErrors()
}

// ListDocuments returns a sorted list of all AST documents under dir.
func ListDocuments(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && astio.IsDocument(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// детерминированный порядок
	sort.Strings(files)
	return files, nil
}

// AnalyzeFile checks a single document. Load and decode failures become
// diagnostics; the error is only returned for cancellation.
func AnalyzeFile(ctx context.Context, path string, opts Options) (*FileResult, error) {
	return analyzeOne(ctx, path, &opts)
}

// AnalyzeDir checks every document under dir in parallel.
func AnalyzeDir(ctx context.Context, dir string, opts Options) ([]*FileResult, error) {
	files, err := ListDocuments(dir)
	if err != nil {
		return nil, err
	}
	return AnalyzeFiles(ctx, files, opts)
}

// AnalyzeFiles checks the given documents in parallel, bounded by
// opts.Jobs. Results keep the order of files.
func AnalyzeFiles(ctx context.Context, files []string, opts Options) ([]*FileResult, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "analyze")
	defer span.WithExtra("files", strconv.Itoa(len(files))).End("")

	results := make([]*FileResult, len(files))
	if len(files) == 0 {
		return results, nil
	}
	for _, path := range files {
		opts.emit(path, StageLoad, StatusQueued)
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			res, err := analyzeOne(gctx, path, &opts)
			// индекс i уникален, мьютекс не нужен
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func analyzeOne(ctx context.Context, path string, opts *Options) (*FileResult, error) {
	res, err := analyzeUnit(ctx, path, opts)
	if err == nil && opts.Sort {
		res.Bag.Dedup()
		res.Bag.Sort()
	}
	return res, err
}

func analyzeUnit(ctx context.Context, path string, opts *Options) (*FileResult, error) {
	ctx, span := trace.Start(ctx, trace.ScopeUnit, "unit")
	defer span.WithExtra("path", path).End("")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timer := observ.NewTimer()
	files := source.NewFileSet()
	res := &FileResult{Path: path, Files: files, Timings: timer}
	opts.emit(path, StageLoad, StatusWorking)

	phase := timer.Begin("load")
	docID, err := files.Load(path)
	if err != nil {
		timer.End(phase, "failed")
		res.Bag = diag.NewBag(opts.Sema.MaxDiagnostics)
		reportLoadError(res, files.AddVirtual(path, nil), err)
		opts.emit(path, StageLoad, StatusError)
		return res, nil
	}

	key := cacheKey(files.Get(docID).Hash, opts)
	if opts.Cache != nil {
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		switch {
		case err != nil:
			trace.Point(ctx, trace.ScopeUnit, "cache-corrupt", err.Error())
		case hit:
			res.Bag = payloadToBag(&payload, files, docID, opts.Sema.MaxDiagnostics)
			res.Cached = true
			timer.End(phase, "cached")
			opts.emit(path, StageCheck, StatusCached)
			return res, nil
		}
	}

	unit, err := astio.Decode(files, docID, opts.Format)
	timer.End(phase, "")
	if err != nil {
		res.Bag = diag.NewBag(opts.Sema.MaxDiagnostics)
		reportLoadError(res, docID, err)
		opts.emit(path, StageLoad, StatusError)
		return res, nil
	}
	res.Unit = unit

	opts.emit(path, StageCheck, StatusWorking)
	semaOpts := opts.Sema
	semaOpts.Timer = timer
	semaRes, err := sema.Check(ctx, unit.Builder, unit.Program, semaOpts)
	if err != nil {
		return nil, err
	}
	res.Sema = &semaRes
	res.Bag = semaRes.Bag

	if opts.Cache != nil {
		payload := diagnosticsToPayload(res.Bag.Items(), files, unit.Doc)
		if err := opts.Cache.Put(key, payload); err != nil {
			trace.Point(ctx, trace.ScopeUnit, "cache-write-failed", err.Error())
		}
	}

	status := StatusDone
	if res.Bag.HasErrors() {
		status = StatusError
	}
	opts.emit(path, StageCheck, status)
	return res, nil
}

// reportLoadError turns an I/O or decoding failure into diagnostics
// attached to file. Repeated decoder messages are reported once.
func reportLoadError(res *FileResult, file source.FileID, err error) {
	r := diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag})
	at := source.Span{File: file}

	var list astio.ErrorList
	if errors.As(err, &list) {
		for _, e := range list {
			diag.ReportError(r, diag.IOMalformedInput, at, e.Error()).Emit()
		}
		return
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		diag.ReportError(r, diag.IOLoadFileError, at, fmt.Sprintf("failed to load file: %v", err)).Emit()
		return
	}
	diag.ReportError(r, diag.IOMalformedInput, at, err.Error()).Emit()
}

// cacheKey binds the document hash to every option that changes the result.
func cacheKey(docHash [32]byte, opts *Options) project.Digest {
	fingerprint := fmt.Sprintf("schema=%d;max=%d;validate=%t;entry=%t;format=%s",
		diskCacheSchemaVersion,
		opts.Sema.MaxDiagnostics,
		opts.Sema.Validate,
		opts.Sema.RequireEntry,
		opts.Format,
	)
	return project.Combine(project.Digest(docHash), project.HashString(fingerprint))
}
