package app

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/seamtext/seam/internal/config"
	"github.com/seamtext/seam/internal/engine/align"
	"github.com/seamtext/seam/internal/engine/marker"
)

func newSession(t *testing.T, aText, bText string, cfg config.Config) *DiffSession {
	t.Helper()
	// Tests assert on freshly realigned rows.
	cfg.Diff.RecomputeDebounce = 0
	s, err := NewDiffSession(
		NewDocument("a.txt", []byte(aText)),
		NewDocument("b.txt", []byte(bText)),
		cfg,
		zerolog.Nop(),
	)
	if err != nil {
		t.Fatalf("NewDiffSession: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestSessionRows(t *testing.T) {
	s := newSession(t, "a\nx\nb", "a\ny\nb", config.Default())

	rows, err := s.Rows()
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	want := []align.RowKind{align.RowContext, align.RowModification, align.RowContext}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i, k := range want {
		if rows[i].Kind != k {
			t.Errorf("row %d kind = %v, want %v", i, rows[i].Kind, k)
		}
	}
}

func TestSessionEditUpdatesRows(t *testing.T) {
	s := newSession(t, "a\nb\nc", "a\nb\nc", config.Default())

	// Change pane B's middle line; the next Rows call must show it.
	doc := s.Document(align.PaneB)
	start := doc.Buffer().LineStartOffset(1)
	if _, err := s.Replace(align.PaneB, start, 1, []byte("B")); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if !s.NeedsRecompute() {
		t.Error("edit should leave a recompute pending")
	}

	rows, err := s.Rows()
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if s.NeedsRecompute() {
		t.Error("Rows should have recomputed")
	}
	if rows[1].Kind != align.RowModification {
		t.Errorf("row 1 kind = %v, want modification", rows[1].Kind)
	}
	if rows[0].Kind != align.RowContext || rows[2].Kind != align.RowContext {
		t.Errorf("surrounding rows = %v, %v", rows[0].Kind, rows[2].Kind)
	}
}

func TestSessionRecomputeDebounce(t *testing.T) {
	cfg := config.Default()
	cfg.Diff.RecomputeDebounce = time.Hour
	s, err := NewDiffSession(
		NewDocument("a.txt", []byte("a\nb\nc")),
		NewDocument("b.txt", []byte("a\nb\nc")),
		cfg,
		zerolog.Nop(),
	)
	if err != nil {
		t.Fatalf("NewDiffSession: %v", err)
	}
	t.Cleanup(s.Close)

	doc := s.Document(align.PaneB)
	start := doc.Buffer().LineStartOffset(1)
	if _, err := s.Replace(align.PaneB, start, 1, []byte("B")); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	// Within the quiet window Rows renders the previous alignment.
	rows, err := s.Rows()
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if !s.NeedsRecompute() {
		t.Error("Rows inside the debounce window should not recompute")
	}
	if rows[1].Kind != align.RowContext {
		t.Errorf("row 1 kind = %v, want stale context", rows[1].Kind)
	}

	// An explicit recompute overrides the debounce.
	if err := s.Recompute(); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	rows, err = s.Rows()
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if rows[1].Kind != align.RowModification {
		t.Errorf("row 1 kind = %v, want modification", rows[1].Kind)
	}
}

func TestSessionScrollSync(t *testing.T) {
	s := newSession(t, "h\nc1\nc2\nc3", "h\nnew\nc1\nc2\nc3", config.Default())

	if err := s.HandleScroll(align.PaneA, 2); err != nil {
		t.Fatalf("HandleScroll: %v", err)
	}
	top, err := s.Viewport(align.PaneB)
	if err != nil {
		t.Fatalf("Viewport: %v", err)
	}
	if top != 3 {
		t.Errorf("pane B top = %d, want 3", top)
	}
}

func TestSessionScrollSyncDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.View.SyncScroll = false
	s := newSession(t, "a\nb\nc\nd", "a\nb\nc\nd", cfg)

	if err := s.HandleScroll(align.PaneA, 3); err != nil {
		t.Fatalf("HandleScroll: %v", err)
	}
	if got := s.Scroll().ScrollLine(); got != 0 {
		t.Errorf("ScrollLine = %d, scrolling should be ignored", got)
	}
}

func TestSessionCloseReleasesAnchors(t *testing.T) {
	a := NewDocument("a.txt", []byte("a\nx\nb"))
	b := NewDocument("b.txt", []byte("a\ny\nb"))
	s, err := NewDiffSession(a, b, config.Default(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewDiffSession: %v", err)
	}

	if a.Markers().Count() == 0 {
		t.Fatal("expected alignment anchors in document A")
	}
	s.Close()
	if n := a.Markers().Count(); n != 0 {
		t.Errorf("document A still holds %d markers", n)
	}
	if n := b.Markers().Count(); n != 0 {
		t.Errorf("document B still holds %d markers", n)
	}

	if err := s.Recompute(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Recompute after close = %v, want ErrSessionClosed", err)
	}
}

func TestSessionUserMarkersSurviveEdits(t *testing.T) {
	s := newSession(t, "a\nx\nb", "a\ny\nb", config.Default())
	a := s.Document(align.PaneA)

	// User marker on the "b" line of pane A.
	id, err := a.CreateMarker(4, marker.BiasRight)
	if err != nil {
		t.Fatalf("CreateMarker: %v", err)
	}

	// Edits to pane B leave pane A positions alone.
	if _, err := s.Insert(align.PaneB, 0, []byte("top\n")); err != nil {
		t.Fatalf("Insert B: %v", err)
	}
	off, err := a.ResolveMarker(id)
	if err != nil {
		t.Fatalf("ResolveMarker: %v", err)
	}
	if off != 4 {
		t.Errorf("marker at %d after pane B edit, want 4", off)
	}

	// Edits to pane A shift it, and a recompute pass leaves it intact.
	if _, err := s.Insert(align.PaneA, 0, []byte("top\n")); err != nil {
		t.Fatalf("Insert A: %v", err)
	}
	if _, err := s.Rows(); err != nil {
		t.Fatalf("Rows: %v", err)
	}
	off, err = a.ResolveMarker(id)
	if err != nil {
		t.Fatalf("ResolveMarker: %v", err)
	}
	if off != 8 {
		t.Errorf("marker at %d after pane A edit, want 8", off)
	}
}
