package marker

import (
	"errors"
	"fmt"
)

// ByteOffset represents a byte position in the tracked buffer.
type ByteOffset = int64

// Errors returned by marker operations.
var (
	// ErrOffsetOutOfRange indicates a creation offset beyond the buffer end.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrMarkerNotFound indicates a stale or already-deleted marker id.
	// Callers should treat it as "this position no longer exists" and drop
	// their reference.
	ErrMarkerNotFound = errors.New("marker not found")
)

// ID is an opaque marker identifier. Callers hold IDs, never raw offsets,
// across edits.
type ID uint64

// Bias is a marker's policy for resolving ties when an edit occurs exactly
// at its offset.
type Bias uint8

const (
	// BiasLeft markers stay put when text is inserted at their offset and
	// collapse to the edit start when their position is deleted.
	BiasLeft Bias = iota

	// BiasRight markers are pushed forward by insertions at their offset
	// and collapse past the replacement text when their position is deleted.
	BiasRight
)

// String returns a human-readable representation of the bias.
func (b Bias) String() string {
	switch b {
	case BiasLeft:
		return "left"
	case BiasRight:
		return "right"
	default:
		return "unknown"
	}
}

// Info describes a marker's current state, as returned by range queries.
type Info struct {
	ID     ID
	Offset ByteOffset
	Bias   Bias
}

// String returns a human-readable representation of the marker info.
func (i Info) String() string {
	return fmt.Sprintf("marker(%d@%d,%s)", i.ID, i.Offset, i.Bias)
}
