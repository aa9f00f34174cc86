package piece

import "fmt"

// ByteOffset represents a byte position in the document.
// This is the fundamental position type, directly indexing into the text.
type ByteOffset = int64

// Slab identifies which backing buffer a piece references.
type Slab uint8

const (
	// SlabOriginal references the immutable content the table was created with.
	SlabOriginal Slab = iota

	// SlabAdd references the append-only buffer that grows with insertions.
	SlabAdd
)

// String returns a human-readable representation of the slab.
func (s Slab) String() string {
	switch s {
	case SlabOriginal:
		return "original"
	case SlabAdd:
		return "add"
	default:
		return "unknown"
	}
}

// MaxPieceLen is the maximum byte length of a single piece. Longer runs are
// chunked so that scans within one piece (newline counting, line seeks)
// stay bounded.
const MaxPieceLen = 4096

// Piece is a contiguous run of bytes in one of the table's slabs.
// It caches the number of newlines in its run so line queries can skip
// whole pieces without touching slab bytes.
type Piece struct {
	Slab     Slab
	Start    ByteOffset // offset into the slab
	Length   ByteOffset // run length in bytes
	Newlines uint32     // count of '\n' bytes in the run
}

// End returns the offset one past the last byte of the run within its slab.
func (p Piece) End() ByteOffset {
	return p.Start + p.Length
}

// String returns a human-readable representation of the piece.
func (p Piece) String() string {
	return fmt.Sprintf("%s[%d:%d](nl=%d)", p.Slab, p.Start, p.End(), p.Newlines)
}
