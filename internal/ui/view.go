package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"

	"github.com/seamtext/seam/internal/app"
	"github.com/seamtext/seam/internal/config"
	"github.com/seamtext/seam/internal/engine/align"
)

// ReloadEvent carries a freshly loaded configuration into the event loop.
type ReloadEvent struct {
	tcell.EventTime
	Config config.Config
}

// View is the interactive side-by-side presentation of a diff session.
// Each pane renders from its own top line; with sync_scroll enabled the
// tops are derived from the session's scroll group, otherwise the panes
// scroll independently.
type View struct {
	screen  tcell.Screen
	session *app.DiffSession
	log     zerolog.Logger

	focus align.PaneID
	tops  [2]int // per-pane top line when sync is off
}

// New creates a view on the default terminal screen.
func New(session *app.DiffSession, log zerolog.Logger) (*View, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(screen, session, log), nil
}

// NewWithScreen creates a view on the given screen. Tests pass a
// simulation screen here.
func NewWithScreen(screen tcell.Screen, session *app.DiffSession, log zerolog.Logger) *View {
	return &View{
		screen:  screen,
		session: session,
		log:     log,
		focus:   align.PaneA,
	}
}

// PostReload hands a reloaded configuration to the running event loop.
func (v *View) PostReload(cfg config.Config) {
	ev := &ReloadEvent{Config: cfg}
	ev.SetEventNow()
	_ = v.screen.PostEvent(ev)
}

// Interrupt asks the event loop to exit. Safe to call from any goroutine.
func (v *View) Interrupt() {
	_ = v.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// Run owns the screen until the user quits.
func (v *View) Run() error {
	if err := v.screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer v.screen.Fini()

	for {
		if err := v.draw(); err != nil {
			return err
		}
		switch ev := v.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if v.handleKey(ev) {
				return nil
			}
		case *tcell.EventResize:
			v.screen.Sync()
		case *ReloadEvent:
			v.session.SetConfig(ev.Config)
			v.log.Info().Msg("configuration reloaded")
		case *tcell.EventInterrupt:
			return nil
		}
	}
}

// handleKey reacts to one key event and reports whether to quit.
func (v *View) handleKey(ev *tcell.EventKey) bool {
	_, h := v.screen.Size()
	page := h - 2
	if page < 1 {
		page = 1
	}

	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return true
	case tcell.KeyUp:
		v.scrollBy(-1)
	case tcell.KeyDown:
		v.scrollBy(1)
	case tcell.KeyPgUp:
		v.scrollBy(-page)
	case tcell.KeyPgDn:
		v.scrollBy(page)
	case tcell.KeyHome:
		v.scrollTo(0)
	case tcell.KeyEnd:
		v.scrollTo(int(v.session.Document(v.focus).Buffer().LineCount()) - 1)
	case tcell.KeyTab:
		if v.focus == align.PaneA {
			v.focus = align.PaneB
		} else {
			v.focus = align.PaneA
		}
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'j':
			v.scrollBy(1)
		case 'k':
			v.scrollBy(-1)
		case 'g':
			v.scrollTo(0)
		case 'G':
			v.scrollTo(int(v.session.Document(v.focus).Buffer().LineCount()) - 1)
		case 'r':
			if err := v.session.Recompute(); err != nil {
				v.log.Error().Err(err).Msg("recompute failed")
			}
		case 'D':
			v.deleteLine()
		case 'O':
			v.openLine()
		}
	}
	return false
}

// deleteLine removes the focused pane's top visible line, newline
// included, so marker and alignment behavior is exercisable from the
// keyboard.
func (v *View) deleteLine() {
	p := v.focus
	buf := v.session.Document(p).Buffer()
	line := uint32(v.top(p))
	start := buf.LineStartOffset(line)
	end := buf.LineEndOffset(line)
	if end < buf.Len() {
		end++
	} else if start > 0 {
		// Last line of the buffer: take the preceding newline instead.
		start--
	}
	if end == start {
		return
	}
	if _, err := v.session.Delete(p, start, end-start); err != nil {
		v.log.Error().Err(err).Msg("delete line failed")
		return
	}
	v.scrollTo(v.top(p))
}

// openLine inserts a blank line above the focused pane's top visible line.
func (v *View) openLine() {
	p := v.focus
	off := v.session.Document(p).Buffer().LineStartOffset(uint32(v.top(p)))
	if _, err := v.session.Insert(p, off, []byte("\n")); err != nil {
		v.log.Error().Err(err).Msg("open line failed")
	}
}

func (v *View) scrollBy(delta int) {
	v.scrollTo(v.top(v.focus) + delta)
}

func (v *View) scrollTo(line int) {
	count := int(v.session.Document(v.focus).Buffer().LineCount())
	if line < 0 {
		line = 0
	}
	if line >= count {
		line = count - 1
	}
	if v.session.Config().View.SyncScroll {
		if err := v.session.HandleScroll(v.focus, line); err != nil {
			v.log.Error().Err(err).Msg("scroll failed")
		}
		return
	}
	v.tops[v.focus] = line
}

// top returns the first visible line of a pane.
func (v *View) top(p align.PaneID) int {
	if v.session.Config().View.SyncScroll {
		line, err := v.session.Viewport(p)
		if err != nil {
			v.log.Error().Err(err).Msg("deriving viewport failed")
			return 0
		}
		return line
	}
	return v.tops[p]
}

// draw renders one frame.
func (v *View) draw() error {
	rows, err := v.session.Rows()
	if err != nil {
		return err
	}
	kindsA, kindsB := lineKinds(rows)

	v.screen.Clear()
	w, h := v.screen.Size()
	paneW := (w - 1) / 2
	content := h - 1
	if paneW < 1 || content < 1 {
		v.screen.Show()
		return nil
	}

	for y := 0; y < content; y++ {
		v.screen.SetContent(paneW, y, '│', nil, styleDivider)
	}
	v.drawPane(align.PaneA, 0, paneW, content, kindsA)
	v.drawPane(align.PaneB, paneW+1, w-paneW-1, content, kindsB)
	v.drawStatus(h-1, w)

	v.screen.Show()
	return nil
}

// lineKinds indexes the display rows by pane line for coloring.
func lineKinds(rows []align.Row) (a, b map[int]align.RowKind) {
	a = make(map[int]align.RowKind)
	b = make(map[int]align.RowKind)
	for _, r := range rows {
		if r.ALine >= 0 {
			a[r.ALine] = r.Kind
		}
		if r.BLine >= 0 {
			b[r.BLine] = r.Kind
		}
	}
	return a, b
}

func (v *View) drawPane(p align.PaneID, x, width, height int, kinds map[int]align.RowKind) {
	cfg := v.session.Config().View
	buf := v.session.Document(p).Buffer()
	count := int(buf.LineCount())
	top := v.top(p)

	numW := 0
	if cfg.LineNumbers {
		numW = 5
	}

	for y := 0; y < height; y++ {
		line := top + y
		if line >= count {
			v.screen.SetContent(x, y, '~', nil, styleLineNum)
			continue
		}
		kind := kinds[line]
		if cfg.LineNumbers {
			drawText(v.screen, x, y, numW, fmt.Sprintf("%4d ", line+1), styleLineNum, 1)
		}
		style := rowStyle(kind)
		drawText(v.screen, x+numW, y, width-numW, buf.LineText(uint32(line)), style, cfg.TabWidth)
	}
}

func (v *View) drawStatus(y, width int) {
	s := v.session
	focusName := s.Document(v.focus).Name
	status := fmt.Sprintf(" %s │ %s  [%s]  A:%d B:%d ",
		s.Document(align.PaneA).Name,
		s.Document(align.PaneB).Name,
		focusName,
		v.top(align.PaneA)+1,
		v.top(align.PaneB)+1,
	)
	for x := 0; x < width; x++ {
		v.screen.SetContent(x, y, ' ', nil, styleStatus)
	}
	drawText(v.screen, 0, y, width, status, styleStatus, 1)
}

// drawText writes text clipped to width, expanding tabs and accounting
// for wide runes.
func drawText(screen tcell.Screen, x, y, width int, text string, style tcell.Style, tabWidth int) {
	col := 0
	for _, r := range text {
		if col >= width {
			return
		}
		if r == '\t' {
			next := (col/tabWidth + 1) * tabWidth
			for col < next && col < width {
				screen.SetContent(x+col, y, ' ', nil, style)
				col++
			}
			continue
		}
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col+rw > width {
			return
		}
		screen.SetContent(x+col, y, r, nil, style)
		col += rw
	}
}
