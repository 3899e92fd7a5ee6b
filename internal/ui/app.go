// Package ui is the terminal browser: a list pane of endpoints or schemas,
// a detail pane for the open entity, and a breadcrumb footer.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jroimartin/gocui"

	"github.com/frankie567/openapi-tools/internal/model"
	"github.com/frankie567/openapi-tools/internal/nav"
	"github.com/frankie567/openapi-tools/internal/reload"
)

type focusPane int

const (
	paneList focusPane = iota
	paneDetail
)

// Reloader is the part of the reload coordinator the UI drives.
type Reloader interface {
	Start(ctx context.Context, post func(func()))
}

type App struct {
	engine   *nav.Engine
	reloader Reloader
	label    string
	log      *slog.Logger

	g      *gocui.Gui
	ctx    context.Context
	cancel context.CancelFunc

	focus focusPane

	items     []item
	filtered  []item
	filter    string
	filtering bool
	listSel   int

	lines     []line
	detailSel int
	tab       tab
	shown     nav.Frame

	status    string
	statusErr bool
}

// NewApp builds the browser over engine. label names the document source
// in the header.
func NewApp(engine *nav.Engine, reloader Reloader, label string, log *slog.Logger) *App {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	a := &App{engine: engine, reloader: reloader, label: label, log: log}
	a.refreshList()
	return a
}

// OnReload reports a finished reload in the footer. It runs on the UI
// goroutine.
func (a *App) OnReload(r reload.Result) {
	switch {
	case r.Err != nil:
		a.status, a.statusErr = "reload failed: "+r.Err.Error(), true
	case r.Unchanged:
		a.status, a.statusErr = fmt.Sprintf("reloaded, no changes (generation %d)", r.Generation), false
	default:
		a.status, a.statusErr = fmt.Sprintf("reloaded (generation %d)", r.Generation), false
	}
	a.refreshList()
	a.shown = nav.Frame{Locator: "-"}
}

func (a *App) Run() error {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return err
	}
	defer g.Close()
	a.g = g
	a.ctx, a.cancel = context.WithCancel(context.Background())
	defer a.cancel()

	g.BgColor = gocui.ColorBlack
	g.FgColor = gocui.ColorWhite
	g.InputEsc = true
	g.SetManagerFunc(a.layout)

	if err := a.bindKeys(); err != nil {
		return err
	}
	if err := g.MainLoop(); err != nil && !errors.Is(err, gocui.ErrQuit) {
		return err
	}
	return nil
}

func (a *App) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	split := maxX * 2 / 5
	if split < 30 {
		split = maxX / 2
	}

	if v, err := g.SetView("header", 0, 0, maxX-1, 2); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = false
	}
	if v, err := g.SetView("list", 0, 2, split, maxY-4); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Highlight = true
		v.SelFgColor = gocui.ColorBlack
		v.SelBgColor = gocui.ColorGreen
	}
	if v, err := g.SetView("detail", split+1, 2, maxX-1, maxY-4); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Highlight = true
		v.SelFgColor = gocui.ColorBlack
		v.SelBgColor = gocui.ColorCyan
		v.Wrap = false
	}
	if v, err := g.SetView("footer", 0, maxY-4, maxX-1, maxY); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = false
	}

	a.renderHeader()
	a.renderList()
	a.renderDetail()
	a.renderFooter()

	current := "list"
	if a.focus == paneDetail {
		current = "detail"
	}
	if _, err := g.SetCurrentView(current); err != nil {
		return err
	}
	return nil
}

func (a *App) bindKeys() error {
	g := a.g
	bindings := []struct {
		key     any
		handler func(*gocui.Gui, *gocui.View) error
	}{
		{gocui.KeyCtrlC, a.quit},
		{gocui.KeyEsc, a.escape},
		{gocui.KeyEnter, a.enter},
		{gocui.KeyTab, a.nextTab},
		{gocui.KeyArrowDown, a.move(1)},
		{gocui.KeyArrowUp, a.move(-1)},
		{gocui.KeyPgdn, a.move(10)},
		{gocui.KeyPgup, a.move(-10)},
		{gocui.KeyArrowLeft, a.setFocus(paneList)},
		{gocui.KeyArrowRight, a.setFocus(paneDetail)},
		{gocui.KeyBackspace, a.backspace},
		{gocui.KeyBackspace2, a.backspace},
		{gocui.KeyCtrlR, a.startReload},
	}
	for _, b := range bindings {
		if err := g.SetKeybinding("", b.key, gocui.ModNone, b.handler); err != nil {
			return err
		}
	}
	// Every printable key goes through one handler so that typing a
	// filter never triggers a command.
	for r := rune(32); r <= rune(126); r++ {
		if err := g.SetKeybinding("", r, gocui.ModNone, a.typeRune(r)); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) quit(*gocui.Gui, *gocui.View) error { return gocui.ErrQuit }

func (a *App) typeRune(r rune) func(*gocui.Gui, *gocui.View) error {
	return func(g *gocui.Gui, v *gocui.View) error {
		if a.filtering {
			a.filter += string(r)
			a.recomputeFilter()
			return nil
		}
		switch r {
		case 'q':
			return gocui.ErrQuit
		case '/':
			a.filtering = true
			a.focus = paneList
		case 'e':
			a.selectMode(nav.ModeEndpoints)
		case 's':
			a.selectMode(nav.ModeSchemas)
		case 'b':
			a.back()
		case 'j':
			return a.move(1)(g, v)
		case 'k':
			return a.move(-1)(g, v)
		case 'h':
			a.focus = paneList
		case 'l':
			a.focus = paneDetail
		case 'r':
			return a.startReload(g, v)
		}
		return nil
	}
}

func (a *App) escape(*gocui.Gui, *gocui.View) error {
	if a.filtering || a.filter != "" {
		a.filtering = false
		a.filter = ""
		a.recomputeFilter()
		return nil
	}
	a.back()
	return nil
}

func (a *App) backspace(*gocui.Gui, *gocui.View) error {
	if !a.filtering || a.filter == "" {
		return nil
	}
	a.filter = a.filter[:len(a.filter)-1]
	a.recomputeFilter()
	return nil
}

func (a *App) enter(*gocui.Gui, *gocui.View) error {
	if a.filtering {
		a.filtering = false
		return nil
	}
	switch a.focus {
	case paneList:
		if a.listSel < 0 || a.listSel >= len(a.filtered) || a.filtered[a.listSel].header {
			return nil
		}
		a.open(a.filtered[a.listSel].loc)
		a.focus = paneDetail
	case paneDetail:
		if a.detailSel < 0 || a.detailSel >= len(a.lines) {
			return nil
		}
		if link := a.lines[a.detailSel].link; !link.IsZero() {
			a.open(link)
		}
	}
	return nil
}

func (a *App) open(l model.Locator) {
	a.engine.Open(l)
	a.status = ""
	a.log.Debug("ui open", "locator", l)
}

func (a *App) back() {
	a.engine.Back()
	a.status = ""
	if a.engine.Current().IsRoot() {
		a.focus = paneList
	}
}

func (a *App) selectMode(m nav.Mode) {
	if a.engine.Mode() == m {
		return
	}
	a.engine.SelectTopLevel(m)
	a.filter = ""
	a.filtering = false
	a.listSel = 0
	a.focus = paneList
	a.refreshList()
}

func (a *App) nextTab(*gocui.Gui, *gocui.View) error {
	switch l := a.engine.Current().Locator; {
	case l.IsEndpoint():
		a.tab = (a.tab + 1) % tabCount
	case !l.IsZero():
		a.tab = (a.tab + 1) % schemaTabCount
	case a.focus == paneList:
		a.focus = paneDetail
		return nil
	default:
		a.focus = paneList
		return nil
	}
	a.detailSel = 0
	a.shown = nav.Frame{Locator: "-"}
	return nil
}

func (a *App) setFocus(p focusPane) func(*gocui.Gui, *gocui.View) error {
	return func(*gocui.Gui, *gocui.View) error {
		a.focus = p
		return nil
	}
}

func (a *App) move(delta int) func(*gocui.Gui, *gocui.View) error {
	return func(*gocui.Gui, *gocui.View) error {
		if a.focus == paneDetail {
			a.detailSel = clamp(a.detailSel+delta, len(a.lines))
			return nil
		}
		a.listSel = clamp(a.listSel+delta, len(a.filtered))
		return nil
	}
}

func (a *App) startReload(*gocui.Gui, *gocui.View) error {
	if a.reloader == nil {
		return nil
	}
	a.status, a.statusErr = "reloading…", false
	g := a.g
	a.reloader.Start(a.ctx, func(fn func()) {
		g.Update(func(*gocui.Gui) error {
			fn()
			return nil
		})
	})
	return nil
}

func (a *App) refreshList() {
	a.items = listItems(a.engine)
	a.recomputeFilter()
}

func (a *App) recomputeFilter() {
	a.filtered = filterItems(a.items, a.filter)
	a.listSel = clamp(a.listSel, len(a.filtered))
	if a.filter == "" && a.listSel == 0 && len(a.filtered) > 1 && a.filtered[0].header {
		a.listSel = 1
	}
}

func (a *App) renderHeader() {
	v, err := a.g.View("header")
	if err != nil {
		return
	}
	v.Clear()
	fmt.Fprint(v, headerText(a.engine.Graph(), a.label))
}

func (a *App) renderList() {
	v, err := a.g.View("list")
	if err != nil {
		return
	}
	v.Clear()
	v.Title = a.engine.Mode().Title()
	if a.filtering || a.filter != "" {
		v.Title += " /" + a.filter
	}
	for _, it := range a.filtered {
		fmt.Fprintln(v, it.text)
	}
	if len(a.filtered) == 0 {
		fmt.Fprintln(v, colorDim+"(nothing)"+colorReset)
	}
	scrollTo(v, a.listSel)
}

func (a *App) renderDetail() {
	v, err := a.g.View("detail")
	if err != nil {
		return
	}
	current := a.engine.Current()
	if current != a.shown {
		if current.Locator != a.shown.Locator && a.shown.Locator != "-" {
			a.tab = tabInfo
		}
		a.shown = current
		a.detailSel = 0
	}
	var title string
	title, a.lines = detailLines(a.engine, current, a.tab)
	a.detailSel = clamp(a.detailSel, len(a.lines))

	v.Clear()
	v.Title = title
	for _, l := range a.lines {
		text := l.text
		if !l.link.IsZero() {
			text += colorDim + "  →" + colorReset
		}
		fmt.Fprintln(v, text)
	}
	scrollTo(v, a.detailSel)
}

func (a *App) renderFooter() {
	v, err := a.g.View("footer")
	if err != nil {
		return
	}
	v.Clear()
	fmt.Fprintln(v, breadcrumbText(a.engine.Snapshot()))

	msg := a.status
	switch {
	case msg != "" && a.statusErr:
		msg = colorRed + msg + colorReset
	case msg != "":
	case a.filtering:
		msg = "type: filter   enter: done   esc: clear"
	case a.focus == paneDetail && !a.engine.Current().IsRoot():
		msg = "enter: open   tab: next tab   b/esc: back   e/s: endpoints/schemas   ctrl+r: reload   q: quit"
	default:
		msg = "enter: open   /: filter   b/esc: back   e/s: endpoints/schemas   ←/→: pane   ctrl+r: reload   q: quit"
	}
	fmt.Fprint(v, strings.TrimRight(msg, "\n"))
}

// scrollTo moves the cursor of v to row idx, shifting the origin so the
// row stays visible.
func scrollTo(v *gocui.View, idx int) {
	_, h := v.Size()
	if h <= 0 {
		return
	}
	_, oy := v.Origin()
	switch {
	case idx < oy:
		oy = idx
	case idx >= oy+h:
		oy = idx - h + 1
	}
	_ = v.SetOrigin(0, oy)
	_ = v.SetCursor(0, idx-oy)
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
