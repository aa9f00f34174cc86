package app

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/seamtext/seam/internal/config"
	"github.com/seamtext/seam/internal/engine/align"
	"github.com/seamtext/seam/internal/engine/buffer"
	"github.com/seamtext/seam/internal/engine/panesync"
)

// DiffSession is an open side-by-side comparison of two documents. It
// routes edits into the alignment, defers re-diffing until asked, and
// exposes the row and scroll state the view renders from.
type DiffSession struct {
	cfg config.Config
	log zerolog.Logger

	a, b *Document

	alignment *align.Alignment
	scroll    *panesync.Group

	pendingRecompute bool
	lastEdit         time.Time
	closed           bool
}

// NewDiffSession aligns two documents and prepares them for display.
func NewDiffSession(a, b *Document, cfg config.Config, log zerolog.Logger) (*DiffSession, error) {
	alignment, err := align.New(a.Pane(), b.Pane())
	if err != nil {
		return nil, err
	}

	s := &DiffSession{
		cfg:       cfg,
		log:       log,
		a:         a,
		b:         b,
		alignment: alignment,
		scroll:    panesync.NewGroup(alignment),
	}

	log.Info().
		Stringer("doc_a", a.ID).
		Stringer("doc_b", b.ID).
		Int("chunks", len(alignment.Chunks())).
		Msg("diff session opened")
	return s, nil
}

// Document returns the document shown in the given pane.
func (s *DiffSession) Document(p align.PaneID) *Document {
	if p == align.PaneA {
		return s.a
	}
	return s.b
}

// Config returns the session's configuration snapshot.
func (s *DiffSession) Config() config.Config { return s.cfg }

// SetConfig swaps in a reloaded configuration.
func (s *DiffSession) SetConfig(cfg config.Config) { s.cfg = cfg }

// Scroll returns the session's scroll group.
func (s *DiffSession) Scroll() *panesync.Group { return s.scroll }

// Insert applies an insertion to one pane and keeps the alignment current.
func (s *DiffSession) Insert(p align.PaneID, offset buffer.ByteOffset, data []byte) (buffer.EditInfo, error) {
	info, err := s.Document(p).Insert(offset, data)
	if err != nil {
		return info, err
	}
	return info, s.recordEdit(p, info)
}

// Delete applies a deletion to one pane and keeps the alignment current.
func (s *DiffSession) Delete(p align.PaneID, offset, length buffer.ByteOffset) (buffer.EditInfo, error) {
	info, err := s.Document(p).Delete(offset, length)
	if err != nil {
		return info, err
	}
	return info, s.recordEdit(p, info)
}

// Replace applies a replacement to one pane and keeps the alignment current.
func (s *DiffSession) Replace(p align.PaneID, offset, length buffer.ByteOffset, data []byte) (buffer.EditInfo, error) {
	info, err := s.Document(p).Replace(offset, length, data)
	if err != nil {
		return info, err
	}
	return info, s.recordEdit(p, info)
}

// recordEdit feeds a completed edit into the alignment. The buffer and
// marker tree have already seen it by the time this runs.
func (s *DiffSession) recordEdit(p align.PaneID, info buffer.EditInfo) error {
	if err := s.alignment.OnEdit(p, int(info.Lines.Start), int(info.LinesRemoved), info.LineDelta()); err != nil {
		return err
	}
	s.pendingRecompute = true
	s.lastEdit = time.Now()
	s.log.Debug().
		Stringer("pane", p).
		Int64("offset", int64(info.Delta.Offset)).
		Int64("len_delta", int64(info.Delta.LenDelta())).
		Int("line_delta", info.LineDelta()).
		Msg("edit recorded")
	return nil
}

// NeedsRecompute reports whether edits are waiting to be re-diffed.
func (s *DiffSession) NeedsRecompute() bool { return s.pendingRecompute }

// Recompute re-diffs the dirty chunks immediately, regardless of the
// configured debounce.
func (s *DiffSession) Recompute() error {
	if s.closed {
		return ErrSessionClosed
	}
	if !s.pendingRecompute {
		return nil
	}
	if err := s.alignment.RecomputeDirty(); err != nil {
		return err
	}
	s.pendingRecompute = false
	s.log.Debug().Int("chunks", len(s.alignment.Chunks())).Msg("alignment recomputed")
	return nil
}

// Rows returns the current display rows. Pending edits are re-diffed
// once they have been quiet for the configured debounce; during a burst
// the rows come from the previous alignment, whose marker anchors keep
// them positioned even though hunk contents lag behind.
func (s *DiffSession) Rows() ([]align.Row, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.pendingRecompute && time.Since(s.lastEdit) >= s.cfg.Diff.RecomputeDebounce {
		if err := s.Recompute(); err != nil {
			return nil, err
		}
	}
	return s.alignment.DisplayRows()
}

// HandleScroll records a scroll of one pane.
func (s *DiffSession) HandleScroll(p align.PaneID, topLine int) error {
	if !s.cfg.View.SyncScroll {
		return nil
	}
	return s.scroll.HandleScroll(p, topLine)
}

// Viewport returns the top line the given pane should display.
func (s *DiffSession) Viewport(p align.PaneID) (int, error) {
	return s.scroll.DeriveViewport(p)
}

// Close releases the alignment's anchors. The documents outlive the
// session and stay usable.
func (s *DiffSession) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.alignment.Close()
	s.log.Info().Msg("diff session closed")
}
