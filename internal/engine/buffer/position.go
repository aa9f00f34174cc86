package buffer

import (
	"fmt"
	"sync/atomic"
)

// ByteOffset represents a byte position in the buffer.
// This is the fundamental position type, directly indexing into the text.
type ByteOffset = int64

// Point represents a line and column position.
// Both Line and Column are 0-indexed.
// Column is measured in bytes from the start of the line.
type Point struct {
	Line   uint32 // 0-indexed line number
	Column uint32 // 0-indexed column (byte offset within line)
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// PointUTF16 represents a line and column position where the column is
// measured in UTF-16 code units, as used by wire protocols that predate
// sensible encodings.
type PointUTF16 struct {
	Line   uint32 // 0-indexed line number
	Column uint32 // 0-indexed column in UTF-16 code units
}

// String returns a human-readable representation of the point.
func (p PointUTF16) String() string {
	return fmt.Sprintf("(%d:%d utf16)", p.Line, p.Column)
}

// LineRange is a contiguous range of lines touched by an edit.
// Start is the first affected line; End is the last affected line after the
// edit has been applied. Both are inclusive and 0-indexed.
type LineRange struct {
	Start uint32
	End   uint32
}

// String returns a human-readable representation of the line range.
func (lr LineRange) String() string {
	return fmt.Sprintf("lines[%d..%d]", lr.Start, lr.End)
}

// RevisionID uniquely identifies a buffer revision.
// Each modification to the buffer creates a new revision.
type RevisionID uint64

var revisionCounter atomic.Uint64

// NewRevisionID generates a new unique revision ID.
func NewRevisionID() RevisionID {
	return RevisionID(revisionCounter.Add(1))
}
