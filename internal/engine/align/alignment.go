package align

import (
	"errors"
	"fmt"

	"github.com/seamtext/seam/internal/engine/buffer"
	"github.com/seamtext/seam/internal/engine/linediff"
	"github.com/seamtext/seam/internal/engine/marker"
)

// ErrDiffMismatch is returned when a diff does not cover the panes it is
// being aligned against.
var ErrDiffMismatch = errors.New("align: diff does not cover pane contents")

// RowKind classifies one display row of the aligned view.
type RowKind uint8

const (
	RowContext RowKind = iota
	RowModification
	RowDeletion
	RowAddition
)

// String returns a short name for the row kind.
func (k RowKind) String() string {
	switch k {
	case RowContext:
		return "context"
	case RowModification:
		return "modification"
	case RowDeletion:
		return "deletion"
	case RowAddition:
		return "addition"
	default:
		return fmt.Sprintf("RowKind(%d)", uint8(k))
	}
}

// Row is one line of the side-by-side view. A pane line of -1 means the
// pane contributes nothing on this row and the cell renders as filler.
type Row struct {
	Kind  RowKind
	ALine int
	BLine int
}

// Anchor is a chunk boundary present in both panes, used to translate
// scroll positions between them.
type Anchor struct {
	ALine int
	BLine int
}

// Alignment maintains the chunk sequence for a pair of panes.
// It is not safe for concurrent use; the owning view serializes access.
type Alignment struct {
	panes  [paneCount]Pane
	chunks []*Chunk
}

// New diffs the two pane buffers and builds their alignment.
func New(a, b Pane) (*Alignment, error) {
	diff := linediff.DiffStrings(a.Buffer.Text(), b.Buffer.Text())
	return Build(a, b, diff)
}

// Build constructs an alignment from an externally computed diff. The
// diff's line totals must match the pane buffers.
func Build(a, b Pane, diff linediff.Result) (*Alignment, error) {
	al := &Alignment{panes: [paneCount]Pane{a, b}}
	if diff.ALines != int(a.Buffer.LineCount()) || diff.BLines != int(b.Buffer.LineCount()) {
		return nil, ErrDiffMismatch
	}
	chunks, err := al.buildChunks(0, 0, diff)
	if err != nil {
		return nil, err
	}
	al.chunks = chunks
	return al, nil
}

// Pane returns the pane on the given side.
func (al *Alignment) Pane(p PaneID) (Pane, error) {
	if int(p) >= paneCount {
		return Pane{}, ErrUnknownPane
	}
	return al.panes[p], nil
}

// Chunks returns the current chunk sequence.
func (al *Alignment) Chunks() []*Chunk { return al.chunks }

// Close releases every chunk anchor back to its marker tree. The
// alignment must not be used afterwards.
func (al *Alignment) Close() {
	for _, c := range al.chunks {
		for p, id := range c.starts {
			if id != 0 {
				_ = al.panes[p].Markers.Delete(id)
			}
		}
	}
	al.chunks = nil
}

// DisplayRows resolves every chunk to its current position and expands
// the chunk sequence into renderable rows.
func (al *Alignment) DisplayRows() ([]Row, error) {
	starts, err := al.resolveStarts()
	if err != nil {
		return nil, err
	}
	var rows []Row
	for i, c := range al.chunks {
		a, b := starts[i][PaneA], starts[i][PaneB]
		if c.kind == Context {
			for k := 0; k < c.lineCount; k++ {
				rows = append(rows, Row{Kind: RowContext, ALine: a + k, BLine: b + k})
			}
			continue
		}
		ai, bi := 0, 0
		for _, op := range c.ops {
			for k := 0; k < max(op.ALines, op.BLines); k++ {
				r := Row{ALine: -1, BLine: -1}
				switch {
				case k < op.ALines && k < op.BLines:
					r.Kind = RowModification
					r.ALine = a + ai + k
					r.BLine = b + bi + k
				case k < op.ALines:
					r.Kind = RowDeletion
					r.ALine = a + ai + k
				default:
					r.Kind = RowAddition
					r.BLine = b + bi + k
				}
				rows = append(rows, r)
			}
			ai += op.ALines
			bi += op.BLines
		}
	}
	return rows, nil
}

// Anchors returns the chunk boundaries present in both panes, in order.
func (al *Alignment) Anchors() ([]Anchor, error) {
	starts, err := al.resolveStarts()
	if err != nil {
		return nil, err
	}
	var anchors []Anchor
	for i, c := range al.chunks {
		if c.starts[PaneA] != 0 && c.starts[PaneB] != 0 {
			anchors = append(anchors, Anchor{ALine: starts[i][PaneA], BLine: starts[i][PaneB]})
		}
	}
	return anchors, nil
}

// OnEdit records an edit to one pane. startLine is the first edited line
// in post-edit coordinates, removedLines how many line boundaries the
// removed span crossed, and lineDelta the change in the pane's line
// count. The owning marker tree must already have seen the edit.
//
// Every damaged chunk is marked dirty for a later RecomputeDirty. A
// context chunk containing the edit also adjusts its line count so the
// edited pane stays fully covered while dirty; the chunk still goes
// dirty, since an edit applied to one pane means the run is no longer
// identical in both.
func (al *Alignment) OnEdit(p PaneID, startLine, removedLines, lineDelta int) error {
	if int(p) >= paneCount {
		return ErrUnknownPane
	}
	starts, err := al.resolveStarts()
	if err != nil {
		return err
	}
	// Containment goes by anchor positions, not chunk line counts: a
	// dirty chunk's counts are stale, its markers are not. A point edit
	// belongs to the last anchored chunk at or before its line. A removal
	// that crossed line boundaries may have crossed chunk boundaries too:
	// the swallowed chunks' anchors have collapsed onto the edit point,
	// so they all resolve to startLine, and the chunk before them may
	// have lost its tail. That whole stretch is damaged.
	first, last := -1, -1
	for i, c := range al.chunks {
		if c.starts[p] == 0 {
			continue
		}
		s := starts[i][p]
		if s > startLine {
			break
		}
		if first < 0 || s < startLine || removedLines == 0 {
			first = i
		}
		last = i
	}
	if last < 0 {
		return ErrLineOutOfRange
	}
	c := al.chunks[first]
	if c.kind == Context {
		c.lineCount = max(0, c.lineCount+lineDelta)
	}
	for i := first; i <= last; i++ {
		al.chunks[i].dirty = true
	}
	return nil
}

// RecomputeDirty re-diffs every dirty region over its current line range
// and splices the result back into the chunk sequence. Adjacent dirty
// chunks realign as one region, so damage spanning chunk boundaries is
// re-diffed whole. Clean chunks and their anchors are untouched.
func (al *Alignment) RecomputeDirty() error {
	starts, err := al.resolveStarts()
	if err != nil {
		return err
	}
	out := make([]*Chunk, 0, len(al.chunks))
	for i := 0; i < len(al.chunks); i++ {
		c := al.chunks[i]
		if !c.dirty {
			out = append(out, c)
			continue
		}
		j := i
		for j+1 < len(al.chunks) && al.chunks[j+1].dirty {
			j++
		}
		aStart, aEnd := starts[i][PaneA], al.chunkEnd(starts, j, PaneA)
		bStart, bEnd := starts[i][PaneB], al.chunkEnd(starts, j, PaneB)
		for k := i; k <= j; k++ {
			for p, id := range al.chunks[k].starts {
				if id != 0 {
					_ = al.panes[p].Markers.Delete(id)
				}
			}
		}
		diff := linediff.Diff(al.lineSlice(PaneA, aStart, aEnd), al.lineSlice(PaneB, bStart, bEnd))
		repl, err := al.buildChunks(aStart, bStart, diff)
		if err != nil {
			return err
		}
		out = append(out, repl...)
		i = j
	}
	al.chunks = out
	return nil
}

// Rebuild discards the chunk sequence and realigns the panes from a
// fresh whole-document diff.
func (al *Alignment) Rebuild() error {
	diff := linediff.DiffStrings(al.panes[PaneA].Buffer.Text(), al.panes[PaneB].Buffer.Text())
	chunks, err := al.buildChunks(0, 0, diff)
	if err != nil {
		return err
	}
	for _, c := range al.chunks {
		for p, id := range c.starts {
			if id != 0 {
				_ = al.panes[p].Markers.Delete(id)
			}
		}
	}
	al.chunks = chunks
	return nil
}

// Validate checks that the chunk sequence exactly covers both pane
// buffers. Dirty chunks carry stale counts, so validate only after
// RecomputeDirty.
func (al *Alignment) Validate() error {
	for p := PaneA; int(p) < paneCount; p++ {
		total := 0
		for _, c := range al.chunks {
			total += c.paneLines(p)
		}
		if want := int(al.panes[p].Buffer.LineCount()); total != want {
			return fmt.Errorf("align: pane %s chunks cover %d lines, buffer has %d", p, total, want)
		}
	}
	return nil
}

// buildChunks expands a diff into chunks anchored at absolute lines
// aBase and bBase.
func (al *Alignment) buildChunks(aBase, bBase int, diff linediff.Result) ([]*Chunk, error) {
	var chunks []*Chunk
	aLine, bLine := 0, 0
	for _, h := range diff.Hunks {
		if ctx := h.AStart - aLine; ctx > 0 {
			c, err := al.newContext(ctx, aBase+aLine, bBase+bLine)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, c)
			aLine += ctx
			bLine += ctx
		}
		c, err := al.newHunk(h.Ops, aBase+aLine, bBase+bLine)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
		aLine += h.ALines()
		bLine += h.BLines()
	}
	if rem := diff.ALines - aLine; rem > 0 {
		c, err := al.newContext(rem, aBase+aLine, bBase+bLine)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

func (al *Alignment) newContext(lines, aLine, bLine int) (*Chunk, error) {
	c := &Chunk{kind: Context, lineCount: lines}
	var err error
	if c.starts[PaneA], err = al.anchor(PaneA, aLine); err != nil {
		return nil, err
	}
	if c.starts[PaneB], err = al.anchor(PaneB, bLine); err != nil {
		return nil, err
	}
	return c, nil
}

func (al *Alignment) newHunk(ops []linediff.Op, aLine, bLine int) (*Chunk, error) {
	c := &Chunk{kind: Hunk, ops: append([]linediff.Op(nil), ops...)}
	var err error
	if c.paneLines(PaneA) > 0 {
		if c.starts[PaneA], err = al.anchor(PaneA, aLine); err != nil {
			return nil, err
		}
	}
	if c.paneLines(PaneB) > 0 {
		if c.starts[PaneB], err = al.anchor(PaneB, bLine); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// anchor drops a left-biased marker at the start of the given line.
func (al *Alignment) anchor(p PaneID, line int) (marker.ID, error) {
	off := al.panes[p].Buffer.LineStartOffset(uint32(line))
	return al.panes[p].Markers.Create(marker.ByteOffset(off), marker.BiasLeft)
}

// resolveStarts walks the chunk sequence resolving every anchor to its
// current line, carrying a running line for panes a chunk is absent from.
func (al *Alignment) resolveStarts() ([][paneCount]int, error) {
	starts := make([][paneCount]int, len(al.chunks))
	var run [paneCount]int
	for i, c := range al.chunks {
		for p := PaneA; int(p) < paneCount; p++ {
			if id := c.starts[p]; id != 0 {
				off, err := al.panes[p].Markers.Resolve(id)
				if err != nil {
					return nil, err
				}
				run[p] = int(al.panes[p].Buffer.LineOfOffset(buffer.ByteOffset(off)))
			}
			starts[i][p] = run[p]
			run[p] += c.paneLines(p)
		}
	}
	return starts, nil
}

// chunkEnd returns the line the chunk at index i ends at in pane p: the
// resolved start of the next chunk with content there, or the buffer end.
func (al *Alignment) chunkEnd(starts [][paneCount]int, i int, p PaneID) int {
	for j := i + 1; j < len(al.chunks); j++ {
		if al.chunks[j].starts[p] != 0 {
			return starts[j][p]
		}
	}
	return int(al.panes[p].Buffer.LineCount())
}

func (al *Alignment) lineSlice(p PaneID, start, end int) []string {
	lines := make([]string, 0, end-start)
	for l := start; l < end; l++ {
		lines = append(lines, al.panes[p].Buffer.LineText(uint32(l)))
	}
	return lines
}
