// Package reload re-reads a document and swaps the result into a
// navigation engine without disturbing it on failure.
package reload

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/frankie567/openapi-tools/internal/model"
	"github.com/frankie567/openapi-tools/internal/nav"
	"github.com/frankie567/openapi-tools/internal/openapi"
)

var ErrReload = errors.New("reload failed")

// ReloadError wraps the fetch or parse error that stopped a reload.
type ReloadError struct {
	Source string
	Cause  error
}

func (e *ReloadError) Error() string {
	msg := "reload failed"
	if e.Source != "" {
		msg += " for " + e.Source
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ReloadError) Unwrap() error { return e.Cause }

func (e *ReloadError) Is(target error) bool { return target == ErrReload }

// Loader produces a resolved graph for a source.
type Loader interface {
	Load(ctx context.Context, src openapi.Source) (*model.Graph, error)
}

// Result reports a finished reload that was still current when applied.
type Result struct {
	Seq        uint64
	Generation uint64
	// Unchanged is set when the new document hashes the same as the old.
	Unchanged bool
	Err       error
}

type Option func(*Coordinator)

func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// WithNotify registers fn to receive every applied result. fn runs on the
// goroutine that applies results.
func WithNotify(fn func(Result)) Option {
	return func(c *Coordinator) { c.notify = fn }
}

// Coordinator reloads one source into one engine. The engine is only
// touched from Reload and from functions handed to post.
type Coordinator struct {
	engine *nav.Engine
	loader Loader
	src    openapi.Source
	log    *slog.Logger
	notify func(Result)

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func New(engine *nav.Engine, loader Loader, src openapi.Source, opts ...Option) *Coordinator {
	c := &Coordinator{engine: engine, loader: loader, src: src}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	return c
}

func (c *Coordinator) Source() openapi.Source { return c.src }

// Reload loads the source and applies it. On failure it returns a
// *ReloadError and the engine is left as it was. It supersedes any
// reload started with Start.
func (c *Coordinator) Reload(ctx context.Context) error {
	seq, ctx, cancel := c.begin(ctx)
	defer cancel()
	g, err := c.loader.Load(ctx, c.src)
	res := c.complete(seq, g, err)
	return res.Err
}

// Start runs a reload in the background and hands its completion to
// post, which must run the function on the goroutine that owns the
// engine. A newer Start or Reload cancels this one and its completion is
// then dropped.
func (c *Coordinator) Start(ctx context.Context, post func(func())) {
	seq, ctx, cancel := c.begin(ctx)
	go func() {
		defer cancel()
		g, err := c.loader.Load(ctx, c.src)
		post(func() { c.complete(seq, g, err) })
	}()
}

func (c *Coordinator) begin(ctx context.Context) (uint64, context.Context, context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.log.Debug("reload superseded", "seq", c.seq)
	}
	c.seq++
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.log.Debug("reload start", "seq", c.seq, "source", c.src.Location)
	return c.seq, ctx, cancel
}

// latest reports whether seq is the most recent request and, if so,
// clears the in-flight cancel.
func (c *Coordinator) latest(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return false
	}
	c.cancel = nil
	return true
}

func (c *Coordinator) complete(seq uint64, g *model.Graph, err error) Result {
	if !c.latest(seq) {
		c.log.Debug("reload discarded", "seq", seq)
		return Result{Seq: seq, Err: &ReloadError{Source: c.src.Location, Cause: context.Canceled}}
	}

	prev := c.engine.Graph()
	res := Result{Seq: seq, Generation: prev.Generation}
	if err != nil {
		res.Err = &ReloadError{Source: c.src.Location, Cause: err}
		c.log.Warn("reload failed", "seq", seq, "err", err)
	} else {
		g.Generation = prev.Generation + 1
		res.Generation = g.Generation
		res.Unchanged = g.Fingerprint == prev.Fingerprint
		c.engine.Reload(g)
		c.log.Info("reload applied", "seq", seq, "generation", g.Generation, "unchanged", res.Unchanged)
	}
	if c.notify != nil {
		c.notify(res)
	}
	return res
}
