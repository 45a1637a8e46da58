package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"quill/internal/cache"
	"quill/internal/checksum"
	"quill/internal/diag"
	"quill/internal/document"
	"quill/internal/engine"
	"quill/internal/lang"
	"quill/internal/observ"
	"quill/internal/source"
	"quill/internal/trace"
)

// NewSession loads the tag helper manifests of the configuration and
// builds the engine every document of the run shares.
func NewSession(opts Options) (*Session, error) {
	s := &Session{opts: opts, fsys: opts.FS, imports: newImportCache()}
	if s.fsys == nil {
		if opts.Config.Root == "" {
			return nil, errors.New("driver: configuration has no project root")
		}
		s.fsys = os.DirFS(opts.Config.Root)
	}
	if s.opts.Tracer == nil {
		s.opts.Tracer = trace.Nop
	}
	s.Files = source.NewFileSet()

	helpers, err := LoadTagHelpers(s.fsys, opts.Config.TagHelpers.Manifests)
	if err != nil {
		return nil, err
	}
	s.TagHelpers = helpers

	eng, err := NewEngine(opts.Config, s.Files, helpers, s.opts.Tracer)
	if err != nil {
		return nil, err
	}
	s.Engine = eng
	s.configSum = configChecksum(eng.Configuration())
	return s, nil
}

// CompileFile compiles one document. name is relative to the project root.
// An unreadable source becomes an IO5001 diagnostic; an unreadable import
// is an error unless imports.suppress_errors is set.
func (s *Session) CompileFile(ctx context.Context, name string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = path.Clean(filepath.ToSlash(name))
	bag := diag.NewBag(s.opts.MaxDiagnostics)
	res := &Result{Path: name, Bag: bag}

	span := trace.Begin(s.opts.Tracer, trace.ScopeDocument, name, trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	timer := observ.NewTimer()
	load := timer.Begin("load")
	id, err := s.Files.LoadFS(s.fsys, name)
	if err != nil {
		timer.End(load, "failed")
		bag.Add(diag.Unlocatedf(diag.IOLoadFailed, "failed to load %s: %v", name, err))
		return res, nil
	}
	res.FileID = id
	kind := lang.FileKindFromPath(name)
	if s.opts.FileKind != nil {
		kind = *s.opts.FileKind
	}
	imports, err := s.loadImports(name, kind, bag)
	if err != nil {
		return nil, err
	}
	timer.End(load, fmt.Sprintf("%d imports", len(imports)))

	doc := document.New(s.Files.Get(id), imports...)
	doc.FileKind = kind
	key := s.cacheKey(doc)
	if s.cached(key, doc, res) {
		report := timer.Report()
		res.Timing = &report
		return res, nil
	}

	current := -1
	err = s.Engine.RunContext(trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()}), doc, func(ev engine.PhaseEvent) {
		switch ev.Status {
		case engine.PhaseStart:
			current = timer.Begin(ev.Name)
		case engine.PhaseEnd:
			note := ""
			if ev.Err != nil {
				note = "failed"
			}
			timer.End(current, note)
		}
		if s.opts.Observer != nil {
			s.opts.Observer(name, ev)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	out := doc.Output()
	res.Document = doc
	res.Output = out.Text
	bag.AddAll(out.Diagnostics)
	bag.Sort()
	s.store(key, doc, res)

	report := timer.Report()
	res.Timing = &report
	if s.opts.Timings {
		appendTimingDiagnostic(bag, timingPayload{Kind: "document", Path: name, TotalMS: report.TotalMS, Phases: report.Phases})
	}
	return res, nil
}

// CompileAll compiles every document under opts.Paths with one session.
// Results follow the order of the expanded paths.
func CompileAll(ctx context.Context, opts Options) ([]*Result, error) {
	s, err := NewSession(opts)
	if err != nil {
		return nil, err
	}
	return s.CompileAll(ctx)
}

func (s *Session) CompileAll(ctx context.Context) ([]*Result, error) {
	span := trace.Begin(s.opts.Tracer, trace.ScopeDriver, "compile", 0)
	defer span.End("")
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	names, err := s.Expand(s.opts.Paths)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}
	jobs := s.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]*Result, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(names)))
	for i, name := range names {
		g.Go(func() error {
			res, err := s.CompileFile(gctx, name)
			if err != nil {
				return err
			}
			results[i] = res
			if s.opts.OnResult != nil {
				s.opts.OnResult(res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Expand turns files and directories into sorted project-relative document
// names. Directories contribute every .quill and .qcomp file except
// _ViewImports.quill.
func (s *Session) Expand(paths []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, p := range paths {
		name, err := s.relative(p)
		if err != nil {
			return nil, err
		}
		info, err := fs.Stat(s.fsys, name)
		if err != nil {
			// отсутствующий файл станет диагностикой IO5001
			add(name)
			continue
		}
		if !info.IsDir() {
			add(name)
			continue
		}
		var found []string
		err = fs.WalkDir(s.fsys, name, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && IsDocument(p) {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		slices.Sort(found)
		for _, f := range found {
			add(f)
		}
	}
	return out, nil
}

// IsDocument reports whether a directory walk compiles name.
func IsDocument(name string) bool {
	base := path.Base(name)
	if strings.EqualFold(base, lang.ViewImports) {
		return false
	}
	ext := strings.ToLower(path.Ext(base))
	return ext == ".quill" || ext == lang.ComponentExtension
}

// relative maps an OS path onto the project file system.
func (s *Session) relative(p string) (string, error) {
	if !filepath.IsAbs(p) {
		return path.Clean(filepath.ToSlash(p)), nil
	}
	rel, err := filepath.Rel(s.opts.Config.Root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the project root %s", p, s.opts.Config.Root)
	}
	return filepath.ToSlash(rel), nil
}

func configChecksum(c engine.Configuration) checksum.Digest {
	return checksum.Of(func(b *checksum.Builder) {
		checksum.AppendEnum(b, c.Version)
		b.AppendBool(c.DesignTime).
			AppendString(c.RootNamespace).
			AppendBool(c.ParseLeadingDirectives).
			AppendInt(int64(c.CodeGen.IndentSize)).
			AppendBool(c.CodeGen.IndentWithTabs)
		checksum.AppendEnum(b, c.CodeGen.NewLine)
		b.AppendBool(c.CodeGen.DesignTime).
			AppendString(c.CodeGen.RootNamespace).
			AppendBool(c.CodeGen.SuppressChecksum).
			AppendBool(c.CodeGen.SuppressMetadataAttributes).
			AppendBool(c.CodeGen.SuppressPrimaryMethodBody)
	})
}

func (s *Session) cacheKey(doc *document.CodeDocument) checksum.Digest {
	rec := cache.Record{SourceChecksum: doc.Checksum(), TagHelperChecksum: s.TagHelpers.Checksum()}
	return checksum.Combine(rec.Key(), s.configSum, checksum.Of(func(b *checksum.Builder) {
		checksum.AppendEnum(b, doc.FileKind)
		b.AppendString(doc.Source.Path)
	}))
}

// cached fills res from the disk cache. Only documents that compiled
// without diagnostics are stored, so a hit has none either.
func (s *Session) cached(key checksum.Digest, doc *document.CodeDocument, res *Result) bool {
	if s.opts.DiskCache == nil {
		return false
	}
	var rec cache.Record
	ok, err := s.opts.DiskCache.Get(key, &rec)
	if err != nil || !ok {
		return false
	}
	if rec.Schema != cache.RecordSchema || rec.SourceChecksum != doc.Checksum() || rec.HasErrors || rec.DiagnosticCount > 0 {
		return false
	}
	res.Output = rec.Output
	res.Cached = true
	return true
}

func (s *Session) store(key checksum.Digest, doc *document.CodeDocument, res *Result) {
	if s.opts.DiskCache == nil || res.Bag.Len() > 0 {
		return
	}
	rec := &cache.Record{
		Schema:            cache.RecordSchema,
		Path:              res.Path,
		SourceChecksum:    doc.Checksum(),
		TagHelperChecksum: s.TagHelpers.Checksum(),
		Output:            res.Output,
	}
	if err := s.opts.DiskCache.Put(key, rec); err != nil {
		res.Bag.Add(diag.Diagnostic{Severity: diag.SevWarning, Code: diag.IOInfo, Message: "disk cache: " + err.Error(), Unlocated: true})
	}
}
