// Package driver runs the whole pipeline over source files: load, parse,
// check, lower, re-check and print, with an optional on-disk cache of the
// printed result.
package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"yieldc/internal/ast"
	"yieldc/internal/diag"
	"yieldc/internal/format"
	"yieldc/internal/iterlower"
	"yieldc/internal/logging"
	"yieldc/internal/observ"
	"yieldc/internal/parser"
	"yieldc/internal/sema"
	"yieldc/internal/source"
)

// SourceExt is the extension of source files picked up from directories.
const SourceExt = ".ys"

// Options configure a Lower run.
type Options struct {
	// Jobs bounds per-file parallelism and is passed on to iterlower; <=0 means GOMAXPROCS.
	Jobs           int
	MaxDiagnostics int
	Dispose        iterlower.DisposeMode
	Format         format.Options
	// TextOnly allows cache hits: units restored from the cache carry no AST.
	TextOnly bool
	// NoLower stops after the front end; units keep their iterator methods.
	NoLower bool
	Cache   *DiskCache
	Timer   *observ.Timer
}

// Unit is the outcome for one source file.
type Unit struct {
	Path   string
	FileID source.FileID
	// AST is the lowered unit; nil for cache hits and files that failed to load.
	AST *ast.Unit
	// Sema is the result of re-checking the lowered unit.
	Sema     *sema.Result
	Lowering *iterlower.Result
	Bag      *diag.Bag
	// Text is the printed lowered unit; nil when the front end reported errors.
	Text      []byte
	Iterators int
	Failed    int
	Cached    bool

	hash    Digest
	loaded  bool
	frontOK bool
}

// Session holds every unit of one run.
type Session struct {
	FileSet *source.FileSet
	Units   []*Unit
}

// Diagnostics merges the unit bags in file order and keeps the first
// maxDiagnostics (<=0 keeps all).
func (s *Session) Diagnostics(maxDiagnostics int) *diag.Bag {
	all := diag.NewBag(0)
	for _, u := range s.Units {
		all.Merge(u.Bag)
	}
	all.Sort()
	out := diag.NewBag(maxDiagnostics)
	for _, d := range all.Items() {
		if !out.Add(d) {
			break
		}
	}
	return out
}

// HasErrors reports whether any unit has an error diagnostic.
func (s *Session) HasErrors() bool {
	for _, u := range s.Units {
		if u.Bag.HasErrors() {
			return true
		}
	}
	return false
}

// ListSources expands directories to their *.ys files (sorted) and keeps
// files as given. Duplicates are dropped.
func ListSources(args []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		var files []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, SourceExt) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
		// Сортируем для детерминированного порядка
		sort.Strings(files)
		for _, f := range files {
			add(f)
		}
	}
	return out, nil
}

// Lower runs the pipeline over paths. Source problems end up in the unit
// bags; the returned error is reserved for cancellation and internal faults.
func Lower(ctx context.Context, paths []string, opts Options) (*Session, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	log := logging.Logger().Named("driver")
	sess := &Session{FileSet: source.NewFileSet()}

	// FileSet не потокобезопасен: загружаем последовательно
	done := opts.Timer.Track("load")
	for _, path := range paths {
		sess.Units = append(sess.Units, loadUnit(sess.FileSet, path, opts.MaxDiagnostics))
	}
	done(fmt.Sprintf("%d files", len(paths)))

	if opts.TextOnly && opts.Cache != nil && !opts.NoLower {
		done = opts.Timer.Track("cache lookup")
		hits := 0
		for i, u := range sess.Units {
			if !u.loaded {
				continue
			}
			var payload DiskPayload
			ok, err := opts.Cache.Get(unitKey(u, opts), &payload)
			if err != nil {
				log.Warn("cache read failed", zap.String("path", u.Path), zap.Error(err))
				continue
			}
			if ok && payload.ContentHash == u.hash {
				sess.Units[i] = diskPayloadToUnit(&payload, u.Path, u.FileID, opts.MaxDiagnostics)
				hits++
			}
		}
		done(fmt.Sprintf("%d hits", hits))
	}

	var work []*Unit
	for _, u := range sess.Units {
		if u.loaded && !u.Cached {
			work = append(work, u)
		}
	}

	done = opts.Timer.Track("parse+check")
	err := forEachUnit(ctx, jobs, work, func(u *Unit) error {
		r := diag.BagReporter{Bag: u.Bag}
		u.AST = parser.Parse(sess.FileSet, u.FileID, r)
		u.Sema = sema.Check(u.AST, sema.Options{Reporter: r})
		u.Iterators = len(u.Sema.Iterators())
		u.frontOK = !u.Bag.HasErrors()
		return nil
	})
	done("")
	if err != nil {
		return nil, err
	}

	// методы внутри юнита iterlower распараллеливает сам
	if !opts.NoLower {
		done = opts.Timer.Track("lower")
		for _, u := range work {
			if err := lowerUnit(ctx, u, jobs, opts.Dispose); err != nil {
				return nil, err
			}
		}
		done("")
	}

	done = opts.Timer.Track("print")
	err = forEachUnit(ctx, jobs, work, func(u *Unit) error {
		if !u.frontOK {
			return nil
		}
		text, err := format.FormatUnit(u.AST, opts.Format)
		if err != nil {
			return fmt.Errorf("%s: print: %w", u.Path, err)
		}
		u.Text = text
		return nil
	})
	done("")
	if err != nil {
		return nil, err
	}

	if opts.Cache != nil && !opts.NoLower {
		done = opts.Timer.Track("cache store")
		for _, u := range work {
			if err := opts.Cache.Put(unitKey(u, opts), unitToDiskPayload(u, u.hash)); err != nil {
				log.Warn("cache write failed", zap.String("path", u.Path), zap.Error(err))
			}
		}
		done("")
	}
	return sess, nil
}

func loadUnit(fset *source.FileSet, path string, maxDiagnostics int) *Unit {
	u := &Unit{Path: path, Bag: diag.NewBag(maxDiagnostics)}
	id, err := fset.Load(path)
	if err != nil {
		// пустой виртуальный файл, чтобы span диагностики резолвился
		u.FileID = fset.AddVirtual(path, nil)
		diag.ReportError(diag.BagReporter{Bag: u.Bag}, diag.IOLoadFileError,
			source.Span{File: u.FileID}, "failed to load file: "+err.Error()).Emit()
		return u
	}
	u.FileID = id
	u.hash = fset.Get(id).Hash
	u.loaded = true
	return u
}

func unitKey(u *Unit, opts Options) Digest {
	return cacheKey(u.hash, opts.Dispose, opts.Format.IndentWidth, opts.Format.UseTabs)
}

// lowerUnit lowers u unless its front end failed, then re-checks the result.
// A lowered unit that no longer checks is an internal error of the pass.
func lowerUnit(ctx context.Context, u *Unit, jobs int, mode iterlower.DisposeMode) error {
	if !u.frontOK {
		return nil
	}
	res, err := iterlower.LowerUnit(ctx, u.AST, u.Sema, iterlower.Options{
		Jobs:     jobs,
		Reporter: diag.BagReporter{Bag: u.Bag},
		Dispose:  mode,
	})
	if err != nil {
		return fmt.Errorf("%s: lower: %w", u.Path, err)
	}
	u.Lowering = res
	u.Failed = res.Failed
	if len(res.Lowered) == 0 {
		return nil
	}

	recheck := diag.NewBag(0)
	u.Sema = sema.Check(u.AST, sema.Options{Reporter: diag.BagReporter{Bag: recheck}})
	r := diag.BagReporter{Bag: u.Bag}
	for _, d := range recheck.Items() {
		diag.ReportError(r, diag.IterInternal, d.Primary,
			"lowered code does not check: "+d.Message).Emit()
	}
	return nil
}

// forEachUnit runs fn over units with at most jobs goroutines.
func forEachUnit(ctx context.Context, jobs int, units []*Unit, fn func(u *Unit) error) error {
	if len(units) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))
	for _, u := range units {
		u := u
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(u)
		})
	}
	return g.Wait()
}
