// Package nav holds the navigation state over one document graph: the
// active view mode, the current frame and the back-stack.
package nav

import (
	"fmt"
	"log/slog"

	"github.com/frankie567/openapi-tools/internal/model"
)

type Mode string

const (
	ModeEndpoints Mode = "endpoints"
	ModeSchemas   Mode = "schemas"
)

func (m Mode) Title() string {
	if m == ModeSchemas {
		return "Schemas"
	}
	return "Endpoints"
}

// ResetPolicy decides where navigation lands when no frame survives a
// reload.
type ResetPolicy string

const (
	// ResetActiveMode returns to the root of the mode that was active.
	ResetActiveMode ResetPolicy = "active"
	// ResetEndpoints returns to the endpoint list.
	ResetEndpoints ResetPolicy = "endpoints"
)

func ParseResetPolicy(s string) (ResetPolicy, error) {
	switch ResetPolicy(s) {
	case ResetActiveMode, ResetEndpoints:
		return ResetPolicy(s), nil
	}
	return "", fmt.Errorf("unknown reset policy %q (want %q or %q)", s, ResetActiveMode, ResetEndpoints)
}

// Frame is one navigation position. The zero locator is the root list of
// Mode.
type Frame struct {
	Locator model.Locator
	Mode    Mode
}

func (f Frame) IsRoot() bool { return f.Locator.IsZero() }

type Option func(*Engine)

func WithResetPolicy(p ResetPolicy) Option {
	return func(e *Engine) { e.reset = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine owns a graph and the navigation state over it. Transitions are
// synchronous and must all happen on one goroutine.
type Engine struct {
	g       *model.Graph
	mode    Mode
	current Frame
	stack   []Frame
	reset   ResetPolicy
	log     *slog.Logger
}

func New(g *model.Graph, opts ...Option) *Engine {
	e := &Engine{g: g, mode: ModeEndpoints, reset: ResetActiveMode}
	for _, o := range opts {
		o(e)
	}
	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}
	e.current = e.root()
	return e
}

func (e *Engine) Graph() *model.Graph { return e.g }

func (e *Engine) Mode() Mode { return e.mode }

func (e *Engine) Current() Frame { return e.current }

func (e *Engine) root() Frame { return Frame{Mode: e.mode} }

func (e *Engine) inferMode(l model.Locator) Mode {
	switch {
	case l.IsZero():
		return e.mode
	case l.IsEndpoint():
		return ModeEndpoints
	}
	return ModeSchemas
}

// SelectTopLevel switches the active view mode. The back-stack is kept.
func (e *Engine) SelectTopLevel(m Mode) {
	e.mode = m
	if e.current.IsRoot() {
		e.current = e.root()
	}
	e.log.Debug("nav select", "mode", m)
}

// Open moves to l, pushing the current frame unless it is the root or
// already at l. Opening the zero locator returns to the root. Opening the
// frame on top of the stack from the root pops it rather than pushing a
// duplicate.
func (e *Engine) Open(l model.Locator) {
	if e.current.Locator == l {
		return
	}
	if !e.current.IsRoot() {
		e.stack = append(e.stack, e.current)
	}
	e.current = Frame{Locator: l, Mode: e.inferMode(l)}
	for n := len(e.stack); n > 0 && e.stack[n-1].Locator == l; n = len(e.stack) {
		e.stack = e.stack[:n-1]
	}
	e.log.Debug("nav open", "locator", l, "depth", len(e.stack))
}

// Back pops the previous frame. With an empty stack it returns to the
// root; at the root it does nothing.
func (e *Engine) Back() {
	switch {
	case len(e.stack) > 0:
		e.current = e.stack[len(e.stack)-1]
		e.stack = e.stack[:len(e.stack)-1]
	case !e.current.IsRoot():
		e.current = e.root()
	default:
		return
	}
	e.log.Debug("nav back", "locator", e.current.Locator, "depth", len(e.stack))
}

// Reload swaps in g and keeps every frame whose locator still exists.
func (e *Engine) Reload(g *model.Graph) {
	e.g = g
	survives := func(f Frame) bool { return f.IsRoot() || g.Has(f.Locator) }

	var stack []Frame
	for _, f := range e.stack {
		if survives(f) {
			stack = append(stack, f)
		}
	}
	current := e.current
	if !survives(current) {
		if len(stack) == 0 {
			e.applyReset()
			return
		}
		current = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
	}

	var collapsed []Frame
	for _, f := range stack {
		if n := len(collapsed); n > 0 && collapsed[n-1].Locator == f.Locator {
			continue
		}
		collapsed = append(collapsed, f)
	}
	for len(collapsed) > 0 && collapsed[len(collapsed)-1].Locator == current.Locator {
		collapsed = collapsed[:len(collapsed)-1]
	}
	e.current, e.stack = current, collapsed
	e.log.Debug("nav reload", "generation", g.Generation, "locator", current.Locator, "depth", len(collapsed))
}

func (e *Engine) applyReset() {
	if e.reset == ResetEndpoints {
		e.mode = ModeEndpoints
	}
	e.current, e.stack = e.root(), nil
	e.log.Debug("nav reset", "generation", e.g.Generation, "policy", e.reset, "mode", e.mode)
}

// Crumb is a labelled frame of the breadcrumb trail.
type Crumb struct {
	Frame
	Label string
}

// Snapshot is a copy of the navigation state.
type Snapshot struct {
	Generation  uint64
	Mode        Mode
	Current     Frame
	Stack       []Frame
	Breadcrumbs []Crumb
}

func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Generation: e.g.Generation,
		Mode:       e.mode,
		Current:    e.current,
		Stack:      append([]Frame(nil), e.stack...),
	}
	for _, f := range append(s.Stack, e.current) {
		s.Breadcrumbs = append(s.Breadcrumbs, Crumb{Frame: f, Label: e.label(f)})
	}
	return s
}

func (e *Engine) label(f Frame) string {
	if f.IsRoot() {
		return f.Mode.Title()
	}
	return e.g.Label(f.Locator)
}
