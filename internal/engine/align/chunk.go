package align

import (
	"errors"
	"fmt"

	"github.com/seamtext/seam/internal/engine/buffer"
	"github.com/seamtext/seam/internal/engine/linediff"
	"github.com/seamtext/seam/internal/engine/marker"
)

// PaneID selects one side of an alignment.
type PaneID uint8

const (
	PaneA PaneID = iota
	PaneB

	paneCount = 2
)

// String returns "A" or "B".
func (p PaneID) String() string {
	switch p {
	case PaneA:
		return "A"
	case PaneB:
		return "B"
	default:
		return fmt.Sprintf("Pane(%d)", uint8(p))
	}
}

var (
	// ErrUnknownPane is returned when a PaneID is not part of the alignment.
	ErrUnknownPane = errors.New("align: unknown pane")
	// ErrLineOutOfRange is returned when an edit refers to a line no chunk covers.
	ErrLineOutOfRange = errors.New("align: line out of range")
)

// Pane couples a buffer with the marker tree that tracks positions in it.
// The tree must be wired to the buffer's edits before the alignment sees
// them, so that resolving a chunk marker always reflects the latest text.
type Pane struct {
	Buffer  *buffer.Buffer
	Markers *marker.Tree
}

// ChunkKind distinguishes unchanged runs from changed regions.
type ChunkKind uint8

const (
	// Context is a run of lines identical in both panes.
	Context ChunkKind = iota
	// Hunk is a changed region described by an op sequence.
	Hunk
)

// String returns a short name for the kind.
func (k ChunkKind) String() string {
	switch k {
	case Context:
		return "context"
	case Hunk:
		return "hunk"
	default:
		return fmt.Sprintf("ChunkKind(%d)", uint8(k))
	}
}

// Chunk is one aligned region. Start markers are held per pane; a zero
// marker id means the chunk has no content in that pane and therefore no
// anchor there.
type Chunk struct {
	kind      ChunkKind
	lineCount int // context only
	ops       []linediff.Op
	starts    [paneCount]marker.ID
	dirty     bool
}

// Kind reports whether the chunk is a context run or a hunk.
func (c *Chunk) Kind() ChunkKind { return c.kind }

// Dirty reports whether the chunk needs recomputation.
func (c *Chunk) Dirty() bool { return c.dirty }

// Ops returns the hunk's op sequence. It is nil for context chunks.
func (c *Chunk) Ops() []linediff.Op { return c.ops }

// paneLines returns how many lines the chunk consumes in the given pane.
func (c *Chunk) paneLines(p PaneID) int {
	if c.kind == Context {
		return c.lineCount
	}
	total := 0
	for _, op := range c.ops {
		if p == PaneA {
			total += op.ALines
		} else {
			total += op.BLines
		}
	}
	return total
}
