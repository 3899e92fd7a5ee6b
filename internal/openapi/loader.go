package openapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/frankie567/openapi-tools/internal/model"
)

// Loader runs the fetch, decode, build and resolve pipeline.
type Loader struct {
	Fetcher  *Fetcher
	MaxDepth int
	Log      *slog.Logger
}

func NewLoader(timeout time.Duration, maxDepth int, log *slog.Logger) *Loader {
	return &Loader{Fetcher: NewFetcher(timeout), MaxDepth: maxDepth, Log: log}
}

// Load produces a resolved graph for src. Errors are *FetchError or
// *ParseError. The returned graph has generation zero; callers stamp it.
func (l *Loader) Load(ctx context.Context, src Source) (*model.Graph, error) {
	log := l.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	fetcher := l.Fetcher
	if fetcher == nil {
		fetcher = NewFetcher(DefaultTimeout)
	}

	start := time.Now()
	log.Debug("load start", "source", src.Location)
	data, err := fetcher.Fetch(ctx, src)
	if err != nil {
		log.Debug("load failed", "source", src.Location, "err", err)
		return nil, err
	}
	g, err := Parse(data, ResolveOptions{MaxDepth: l.MaxDepth})
	if err != nil {
		log.Debug("parse failed", "source", src.Location, "err", err)
		return nil, err
	}
	g.Source = src.Location

	var cyclic int
	for _, s := range g.Schemas() {
		if s.Cyclic {
			cyclic++
		}
	}
	log.Debug("load done",
		"source", src.Location,
		"bytes", len(data),
		"endpoints", len(g.Endpoints),
		"schemas", len(g.Components),
		"dangling", len(g.DanglingEdges()),
		"cyclic", cyclic,
		"elapsed", time.Since(start))
	return g, nil
}

// Parse decodes, builds and resolves raw document bytes.
func Parse(data []byte, opts ResolveOptions) (*model.Graph, error) {
	tree, err := Decode(data)
	if err != nil {
		return nil, err
	}
	g, err := Build(tree)
	if err != nil {
		return nil, err
	}
	if g.Fingerprint, err = Fingerprint(data); err != nil {
		return nil, err
	}
	return Resolve(g, opts), nil
}
