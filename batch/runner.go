// Package batch renders many IR files to .pxd files concurrently, with an
// optional output cache, and compares existing files against fresh output
// for check mode.
package batch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/pxdgen/cache"
	"github.com/teranos/pxdgen/errors"
	"github.com/teranos/pxdgen/ir"
	"github.com/teranos/pxdgen/logger"
	"github.com/teranos/pxdgen/typegen"
	"github.com/teranos/pxdgen/typegen/cython"
)

// Options configures a Runner.
type Options struct {
	// Jobs bounds concurrent targets; 0 means GOMAXPROCS.
	Jobs int
	// OutputDir receives outputs of targets without an explicit Output.
	// Empty writes next to each input.
	OutputDir string
	// StubCimportPrefix applies to targets that do not set their own.
	StubCimportPrefix string
	// Cache is consulted before rendering. Nil disables caching.
	Cache *cache.Cache
	// Version goes into the banner of every generated file.
	Version string
}

// Runner renders targets.
type Runner struct {
	opts   Options
	logger *zap.SugaredLogger
}

// NewRunner creates a runner.
func NewRunner(opts Options) *Runner {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Runner{opts: opts, logger: logger.ComponentLogger("batch")}
}

// Outcome describes one generated target.
type Outcome struct {
	Input       string                 `json:"input"`
	Output      string                 `json:"output"`
	Cached      bool                   `json:"cached"`
	Unchanged   bool                   `json:"unchanged"`
	Phased      bool                   `json:"phased"`
	InnerCycles []string               `json:"inner_cycles,omitempty"`
	Scopes      []typegen.ScopeSummary `json:"scopes"`
	DurationMS  int64                  `json:"duration_ms"`
}

// Rendered is a target's file content before it is written.
type Rendered struct {
	Target  Target
	Output  string
	Result  *typegen.Result
	Content []byte
	Cached  bool
}

// Run renders and writes every target, stopping at the first failure.
// Outcomes are in target order. Files whose content did not change are
// left untouched.
func (r *Runner) Run(ctx context.Context, targets []Target) ([]Outcome, error) {
	if err := r.validate(targets); err != nil {
		return nil, err
	}
	ctx = logger.WithRunID(ctx, uuid.NewString())
	start := time.Now()

	outcomes := make([]Outcome, len(targets))
	err := r.each(ctx, targets, func(ctx context.Context, i int, t Target) error {
		begin := time.Now()
		rd, err := r.Render(ctx, t)
		if err != nil {
			return err
		}
		unchanged, err := writeFileAtomic(rd.Output, rd.Content)
		if err != nil {
			return err
		}

		o := Outcome{
			Input:       t.Input,
			Output:      rd.Output,
			Cached:      rd.Cached,
			Unchanged:   unchanged,
			Phased:      rd.Result.Phased(),
			InnerCycles: rd.Result.InnerCycles(),
			Scopes:      rd.Result.Scopes,
			DurationMS:  time.Since(begin).Milliseconds(),
		}
		outcomes[i] = o

		log := r.log(logger.WithTarget(ctx, t.Input))
		if len(o.InnerCycles) > 0 {
			log.Warnw("struct bodies left in index order",
				logger.FieldInnerCycles, o.InnerCycles)
		}
		if logger.ShouldLogTrace(logger.Verbosity) {
			for _, s := range o.Scopes {
				log.Debugw("scope plan",
					logger.FieldNamespace, s.Namespace,
					logger.FieldPhased, s.Phased,
					logger.FieldCycles, s.Cycles,
					logger.FieldForwardRefs, s.ForwardRefs)
			}
		}
		log.Infow("generated",
			logger.FieldOutput, o.Output,
			logger.FieldPhased, o.Phased,
			logger.FieldCached, o.Cached,
			logger.FieldDurationMS, o.DurationMS)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log(ctx).Debugw("run complete",
		logger.FieldCount, len(targets),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return outcomes, nil
}

// Check renders every target in memory and compares the result with the
// files on disk. The returned result's Err reports out-of-date files.
func (r *Runner) Check(ctx context.Context, targets []Target) (*typegen.CheckResult, error) {
	if err := r.validate(targets); err != nil {
		return nil, err
	}
	ctx = logger.WithRunID(ctx, uuid.NewString())

	expected := make([]typegen.Expected, len(targets))
	err := r.each(ctx, targets, func(ctx context.Context, i int, t Target) error {
		rd, err := r.Render(ctx, t)
		if err != nil {
			return err
		}
		expected[i] = typegen.Expected{Path: rd.Output, Content: rd.Content}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := typegen.CompareOutputs(expected)
	r.log(ctx).Debugw("check complete",
		logger.FieldCount, len(targets),
		"up_to_date", res.UpToDate)
	return res, nil
}

// Render loads one target's IR and renders it, using the cache when one is
// configured. Cache failures are logged and never fail the render.
func (r *Runner) Render(ctx context.Context, t Target) (*Rendered, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := r.log(logger.WithTarget(ctx, t.Input))

	h, data, err := ir.LoadFile(t.Input)
	if err != nil {
		return nil, err
	}

	prefix := r.stubPrefix(t)
	gen := cython.New(cython.Options{StubCimportPrefix: prefix})
	key := cache.KeyFor(data, gen.Language(), "version="+r.opts.Version+";stub_cimport_prefix="+prefix)

	rd := &Rendered{Target: t, Output: r.OutputPath(t)}
	res, err := r.opts.Cache.Get(key)
	switch {
	case err == nil:
		rd.Cached = true
	case errors.IsCacheMiss(err):
		res = gen.Generate(h)
		if err := r.opts.Cache.Put(key, res); err != nil {
			log.Warnw("cache write failed", logger.FieldCacheKey, key.String(), logger.FieldError, err)
		}
	default:
		log.Warnw("cache read failed", logger.FieldCacheKey, key.String(), logger.FieldError, err)
		res = gen.Generate(h)
	}

	rd.Result = res
	rd.Content = typegen.FileContent(res, filepath.Base(t.Input), r.opts.Version)
	return rd, nil
}

// OutputPath returns where t is written.
func (r *Runner) OutputPath(t Target) string {
	if t.Output != "" {
		return t.Output
	}
	return OutputPath(t.Input, r.opts.OutputDir)
}

func (r *Runner) stubPrefix(t Target) string {
	if t.StubCimportPrefix != nil {
		return *t.StubCimportPrefix
	}
	return r.opts.StubCimportPrefix
}

// validate rejects empty runs and targets that would write the same file.
func (r *Runner) validate(targets []Target) error {
	if len(targets) == 0 {
		return errors.ErrNoTargets
	}
	seen := make(map[string]string, len(targets))
	for _, t := range targets {
		out := filepath.Clean(r.OutputPath(t))
		if prev, ok := seen[out]; ok {
			return errors.Newf("targets %s and %s both write %s", prev, t.Input, out)
		}
		seen[out] = t.Input
	}
	return nil
}

func (r *Runner) each(ctx context.Context, targets []Target, fn func(context.Context, int, Target) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs(len(targets)))
	for i, t := range targets {
		g.Go(func() error {
			if err := fn(gctx, i, t); err != nil {
				return errors.Wrapf(err, "target %s", t.Input)
			}
			return nil
		})
	}
	return g.Wait()
}

func (r *Runner) jobs(n int) int {
	jobs := r.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, n))
}

func (r *Runner) log(ctx context.Context) *zap.SugaredLogger {
	fields := logger.FieldsFromContext(ctx)
	if len(fields) == 0 {
		return r.logger
	}
	return r.logger.With(fields...)
}

// writeFileAtomic replaces path with content through a temp file in the same
// directory. It reports unchanged, without writing, when path already holds
// exactly content.
func writeFileAtomic(path string, content []byte) (unchanged bool, err error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
		return true, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, errors.Wrapf(err, "failed to create output directory %s", dir)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return false, errors.Wrapf(err, "failed to create temp file for %s", path)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(content); err != nil {
		f.Close()
		return false, errors.Wrapf(err, "failed to write %s", path)
	}
	if err = f.Close(); err != nil {
		return false, errors.Wrapf(err, "failed to write %s", path)
	}
	if err = os.Chmod(tmp, 0o644); err != nil {
		return false, errors.Wrapf(err, "failed to set mode on %s", path)
	}
	if err = os.Rename(tmp, path); err != nil {
		return false, errors.Wrapf(err, "failed to replace %s", path)
	}
	return false, nil
}
