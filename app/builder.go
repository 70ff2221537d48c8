// Package app runs the glugen build manifest: standalone header generation
// followed by shader injection.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"

	"github.com/xopoww/glugen/config"
	"github.com/xopoww/glugen/flatten"
	"github.com/xopoww/glugen/fsx"
	"github.com/xopoww/glugen/inject"
)

// ErrStale is returned in check mode when an output differs from what
// would be generated.
var ErrStale = errors.New("generated files are out of date")

type JobKind int

const (
	Flatten JobKind = iota
	Inject
)

var jobKindNames = [...]string{"flatten", "inject"}

func (k JobKind) String() string {
	if k < 0 || int(k) >= len(jobKindNames) {
		return fmt.Sprintf("JobKind(%d)", int(k))
	}
	return jobKindNames[k]
}

type Job struct {
	Kind   JobKind
	Input  string
	Output string
}

type Option func(*Builder)

func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) { b.log = logger }
}

// WithCheck switches the builder to check mode: nothing is written and
// diffs of stale outputs go to w.
func WithCheck(w io.Writer) Option {
	return func(b *Builder) {
		b.check = true
		b.diffOut = w
	}
}

type Builder struct {
	cfg       *config.Config
	log       *zap.Logger
	flattener *flatten.Flattener
	injector  *inject.Injector

	check   bool
	diffOut io.Writer
}

func NewBuilder(cfg *config.Config, opts ...Option) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &Builder{cfg: cfg, log: zap.NewNop(), diffOut: io.Discard}
	for _, opt := range opts {
		opt(b)
	}

	b.flattener = flatten.New(flatten.Options{
		AllowIndent: cfg.Flatten.AllowIndent,
		Logger:      b.log,
	})

	injectOpts, err := cfg.InjectOptions()
	if err != nil {
		return nil, err
	}
	injectOpts.Logger = b.log
	if b.injector, err = inject.New(injectOpts); err != nil {
		return nil, err
	}
	return b, nil
}

// Jobs lists the work described by the manifest in execution order.
func (b *Builder) Jobs() []Job {
	var jobs []Job
	for _, h := range b.cfg.Flatten.Headers {
		jobs = append(jobs, Job{
			Kind:   Flatten,
			Input:  b.cfg.Path(filepath.Join(b.cfg.Flatten.InputDir, h)),
			Output: b.cfg.Path(filepath.Join(b.cfg.Flatten.OutputDir, h)),
		})
	}
	for _, j := range b.cfg.Inject.Jobs {
		jobs = append(jobs, Job{
			Kind:   Inject,
			Input:  b.cfg.Path(j.Input),
			Output: b.cfg.Path(j.Output),
		})
	}
	return jobs
}

// Run executes the jobs one after another and stops at the first failure.
// Outputs of jobs that completed before the failure are kept.
func (b *Builder) Run() error {
	stale := 0
	for _, job := range b.Jobs() {
		b.log.Info("generating",
			zap.Stringer("kind", job.Kind),
			zap.String("input", job.Input),
			zap.String("output", job.Output))

		content, err := b.generate(job)
		if err != nil {
			return fmt.Errorf("%s %s: %w", job.Kind, job.Input, err)
		}

		if b.check {
			upToDate, err := b.compare(job, content)
			if err != nil {
				return err
			}
			if !upToDate {
				stale++
			}
			continue
		}

		if err := fsx.WriteFile(job.Output, []byte(content), 0o644); err != nil {
			return err
		}
	}

	if stale > 0 {
		return fmt.Errorf("%w: %d file(s)", ErrStale, stale)
	}
	return nil
}

func (b *Builder) generate(job Job) (string, error) {
	switch job.Kind {
	case Flatten:
		return b.flattener.Flatten(job.Input)
	case Inject:
		return b.injector.Process(job.Input)
	}
	return "", fmt.Errorf("unknown job kind %d", job.Kind)
}

// compare reports whether the existing output matches content and writes
// a unified diff otherwise. Generated symbol names are random, so they are
// masked before comparing inject outputs.
func (b *Builder) compare(job Job, content string) (bool, error) {
	data, err := os.ReadFile(job.Output)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("read %q: %w", job.Output, err)
	}
	existing := string(data)

	if job.Kind == Inject {
		symbols := b.injector.SymbolPattern()
		existing = symbols.ReplaceAllString(existing, "<symbol>")
		content = symbols.ReplaceAllString(content, "<symbol>")
	}
	if existing == content {
		return true, nil
	}

	b.log.Warn("stale output", zap.String("output", job.Output))
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(existing),
		B:        difflib.SplitLines(content),
		FromFile: job.Output,
		ToFile:   job.Output + " (generated)",
		Context:  3,
	})
	if err != nil {
		return false, fmt.Errorf("diff %q: %w", job.Output, err)
	}
	if _, err := io.WriteString(b.diffOut, diff); err != nil {
		return false, err
	}
	return false, nil
}
