package panesync

import (
	"github.com/seamtext/seam/internal/engine/align"
)

// Group synchronizes the viewports of the two panes of an alignment.
// The shared scroll position lives in pane A's line space; every other
// position is derived from it through the alignment's current anchors,
// so the group never needs to observe buffer edits itself.
//
// Like the alignment it wraps, a Group is not safe for concurrent use.
type Group struct {
	al     *align.Alignment
	scroll int
	last   align.PaneID
}

// NewGroup creates a scroll group over the alignment.
func NewGroup(al *align.Alignment) *Group {
	return &Group{al: al, last: align.PaneA}
}

// ScrollLine returns the shared position in pane A's line space.
func (g *Group) ScrollLine() int { return g.scroll }

// LastScrolled returns the pane whose scroll most recently set the
// shared position.
func (g *Group) LastScrolled() align.PaneID { return g.last }

// HandleScroll records that pane p's viewport now starts at topLine and
// moves the shared position to match.
func (g *Group) HandleScroll(p align.PaneID, topLine int) error {
	ref, err := g.translate(p, align.PaneA, topLine)
	if err != nil {
		return err
	}
	g.scroll = ref
	g.last = p
	return nil
}

// ScrollBy moves the shared position by delta lines in pane A's space.
func (g *Group) ScrollBy(delta int) error {
	line, err := g.clampLine(align.PaneA, g.scroll+delta)
	if err != nil {
		return err
	}
	g.scroll = line
	return nil
}

// DeriveViewport returns the top line pane p should display for the
// current shared position.
func (g *Group) DeriveViewport(p align.PaneID) (int, error) {
	return g.translate(align.PaneA, p, g.scroll)
}

// translate maps a line of pane `from` to the corresponding line of pane
// `to`: offset from the last anchor at or before the line, carried over
// to the other pane and capped at the next anchor. A pane scrolled
// through a region the other pane has fewer lines for walks the other
// pane to the next shared boundary and holds it there.
func (g *Group) translate(from, to align.PaneID, line int) (int, error) {
	if from == to {
		return g.clampLine(to, line)
	}
	anchors, err := g.anchors()
	if err != nil {
		return 0, err
	}

	cur := align.Anchor{}
	next := -1
	for i, a := range anchors {
		if paneLine(a, from) <= line {
			cur = a
		} else {
			next = i
			break
		}
	}

	mapped := paneLine(cur, to) + (line - paneLine(cur, from))
	if next >= 0 && mapped > paneLine(anchors[next], to) {
		mapped = paneLine(anchors[next], to)
	}
	return g.clampLine(to, mapped)
}

// anchors returns the alignment's anchors with an implicit origin anchor
// so translation always has a base at the top of both panes.
func (g *Group) anchors() ([]align.Anchor, error) {
	anchors, err := g.al.Anchors()
	if err != nil {
		return nil, err
	}
	if len(anchors) == 0 || anchors[0] != (align.Anchor{}) {
		anchors = append([]align.Anchor{{}}, anchors...)
	}
	return anchors, nil
}

func (g *Group) clampLine(p align.PaneID, line int) (int, error) {
	count, err := g.lineCount(p)
	if err != nil {
		return 0, err
	}
	if line < 0 {
		return 0, nil
	}
	if line >= count {
		return count - 1, nil
	}
	return line, nil
}

func (g *Group) lineCount(p align.PaneID) (int, error) {
	pane, err := g.al.Pane(p)
	if err != nil {
		return 0, err
	}
	return int(pane.Buffer.LineCount()), nil
}

func paneLine(a align.Anchor, p align.PaneID) int {
	if p == align.PaneA {
		return a.ALine
	}
	return a.BLine
}
