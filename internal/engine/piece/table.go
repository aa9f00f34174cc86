package piece

import (
	"bytes"
	"errors"
)

// Errors returned by table operations.
var (
	// ErrOutOfRange indicates an offset or range beyond the document bounds.
	// Bounds are never silently clamped; callers track document length and
	// silent clamping would desynchronize their bookkeeping.
	ErrOutOfRange = errors.New("offset out of range")
)

// Table is a piece-table text store. The zero value is not usable; create
// tables with New or FromBytes.
type Table struct {
	original []byte // immutable after creation
	add      []byte // append-only
	root     *node
}

// New creates an empty table.
func New() *Table {
	return &Table{}
}

// FromBytes creates a table whose original slab is data.
// The table takes ownership of data; the caller must not modify it afterward.
func FromBytes(data []byte) *Table {
	t := &Table{original: data}
	t.root = buildRun(SlabOriginal, 0, ByteOffset(len(data)), data)
	return t
}

// FromString creates a table with the given initial content.
func FromString(s string) *Table {
	return FromBytes([]byte(s))
}

// buildRun builds a balanced run of pieces covering data, chunked to
// MaxPieceLen so per-piece scans stay bounded.
func buildRun(slab Slab, start, length ByteOffset, data []byte) *node {
	var run *node
	for off := ByteOffset(0); off < length; off += MaxPieceLen {
		end := off + MaxPieceLen
		if end > length {
			end = length
		}
		p := Piece{
			Slab:     slab,
			Start:    start + off,
			Length:   end - off,
			Newlines: countNewlines(data[off:end]),
		}
		run = merge(run, newNode(p))
	}
	return run
}

func countNewlines(data []byte) uint32 {
	return uint32(bytes.Count(data, []byte{'\n'}))
}

// Len returns the total byte length of the document.
func (t *Table) Len() ByteOffset {
	return subtreeBytes(t.root)
}

// IsEmpty returns true if the table contains no text.
func (t *Table) IsEmpty() bool {
	return t.Len() == 0
}

// NewlineCount returns the number of '\n' bytes in the document.
func (t *Table) NewlineCount() uint32 {
	return subtreeNewlines(t.root)
}

// LineCount returns the number of lines (newlines + 1).
func (t *Table) LineCount() uint32 {
	return t.NewlineCount() + 1
}

// PieceCount returns the number of pieces. Useful for debugging.
func (t *Table) PieceCount() int {
	return countPieces(t.root)
}

func countPieces(n *node) int {
	if n == nil {
		return 0
	}
	return 1 + countPieces(n.left) + countPieces(n.right)
}

// pieceData returns the slab bytes a piece references.
func (t *Table) pieceData(p Piece) []byte {
	if p.Slab == SlabOriginal {
		return t.original[p.Start:p.End()]
	}
	return t.add[p.Start:p.End()]
}

// splitPiece splits p at the given offset within the run, recounting
// newlines for the left half only; the right half keeps the remainder.
func (t *Table) splitPiece(p Piece, off ByteOffset) (Piece, Piece) {
	data := t.pieceData(p)
	leftNewlines := countNewlines(data[:off])
	left := Piece{Slab: p.Slab, Start: p.Start, Length: off, Newlines: leftNewlines}
	right := Piece{
		Slab:     p.Slab,
		Start:    p.Start + off,
		Length:   p.Length - off,
		Newlines: p.Newlines - leftNewlines,
	}
	return left, right
}

// split divides the subtree into two trees holding the first off bytes and
// the rest, splitting the piece that straddles the boundary if any.
func (t *Table) split(n *node, off ByteOffset) (*node, *node) {
	if n == nil {
		return nil, nil
	}
	leftBytes := subtreeBytes(n.left)
	if off <= leftBytes {
		a, b := t.split(n.left, off)
		n.left = b
		n.update()
		return a, n
	}
	off -= leftBytes
	if off >= n.p.Length {
		a, b := t.split(n.right, off-n.p.Length)
		n.right = a
		n.update()
		return n, b
	}

	// Boundary falls inside this node's piece.
	pl, pr := t.splitPiece(n.p, off)
	n.p = pl
	right := merge(newNode(pr), n.right)
	n.right = nil
	n.update()
	return n, right
}

// Insert inserts data at the given byte offset.
// Returns ErrOutOfRange if offset > Len().
func (t *Table) Insert(offset ByteOffset, data []byte) error {
	if offset < 0 || offset > t.Len() {
		return ErrOutOfRange
	}
	if len(data) == 0 {
		return nil
	}

	addStart := ByteOffset(len(t.add))
	t.add = append(t.add, data...)

	left, right := t.split(t.root, offset)

	// Typing at the tail of the previous insertion extends that piece
	// instead of creating a new one per keystroke.
	if left != nil {
		last := rightmostPiece(left)
		if last.Slab == SlabAdd && last.End() == addStart &&
			last.Length+ByteOffset(len(data)) <= MaxPieceLen {
			growRightmost(left, ByteOffset(len(data)), countNewlines(data))
			t.root = merge(left, right)
			return nil
		}
	}

	run := buildRun(SlabAdd, addStart, ByteOffset(len(data)), data)
	t.root = merge(merge(left, run), right)
	return nil
}

// Delete removes length bytes starting at offset.
// Returns ErrOutOfRange if the range exceeds the document bounds.
func (t *Table) Delete(offset, length ByteOffset) error {
	if offset < 0 || length < 0 || offset+length > t.Len() {
		return ErrOutOfRange
	}
	if length == 0 {
		return nil
	}

	left, rest := t.split(t.root, offset)
	_, right := t.split(rest, length)
	t.root = t.coalesce(left, right)
	return nil
}

// coalesce joins two trees, merging the pieces bounding the seam when they
// reference adjacent slab bytes. This keeps piece counts from growing on
// repeated deletions inside a previously contiguous run.
func (t *Table) coalesce(left, right *node) *node {
	if left == nil || right == nil {
		return merge(left, right)
	}
	last := rightmostPiece(left)
	first := leftmostPiece(right)
	if last.Slab == first.Slab && last.End() == first.Start &&
		last.Length+first.Length <= MaxPieceLen {
		rest, p := popLeftmost(right)
		growRightmost(left, p.Length, p.Newlines)
		return merge(left, rest)
	}
	return merge(left, right)
}

func leftmostPiece(n *node) Piece {
	for n.left != nil {
		n = n.left
	}
	return n.p
}

// Slice returns the bytes in [start, end). The result is a fresh copy;
// content is returned raw and never validated as text.
// Returns ErrOutOfRange if the range exceeds the document bounds.
func (t *Table) Slice(start, end ByteOffset) ([]byte, error) {
	if start < 0 || start > end || end > t.Len() {
		return nil, ErrOutOfRange
	}
	if start == end {
		return nil, nil
	}
	out := make([]byte, 0, end-start)
	out = t.appendRange(out, t.root, start, end)
	return out, nil
}

// appendRange appends the subtree's bytes intersected with [start, end)
// (in subtree-local coordinates) to out.
func (t *Table) appendRange(out []byte, n *node, start, end ByteOffset) []byte {
	if n == nil || start >= end {
		return out
	}
	leftBytes := subtreeBytes(n.left)
	if start < leftBytes {
		stop := end
		if stop > leftBytes {
			stop = leftBytes
		}
		out = t.appendRange(out, n.left, start, stop)
	}

	pieceStart := leftBytes
	pieceEnd := leftBytes + n.p.Length
	if start < pieceEnd && end > pieceStart {
		from := max64(start, pieceStart) - pieceStart
		to := min64(end, pieceEnd) - pieceStart
		data := t.pieceData(n.p)
		out = append(out, data[from:to]...)
	}

	if end > pieceEnd {
		from := max64(start, pieceEnd) - pieceEnd
		out = t.appendRange(out, n.right, from, end-pieceEnd)
	}
	return out
}

// Bytes returns the full document content as a fresh copy.
func (t *Table) Bytes() []byte {
	out, _ := t.Slice(0, t.Len())
	return out
}

// String returns the full document content as a string.
// Use sparingly for large documents.
func (t *Table) String() string {
	return string(t.Bytes())
}

// LineStartOffset returns the byte offset of the start of the given line.
// Lines are 0-indexed. Offsets past the last line resolve to Len().
func (t *Table) LineStartOffset(line uint32) ByteOffset {
	if line == 0 {
		return 0
	}
	if line > t.NewlineCount() {
		return t.Len()
	}

	// Seek to one past the line-th newline.
	remaining := line
	var off ByteOffset
	n := t.root
	for n != nil {
		if subtreeNewlines(n.left) >= remaining {
			n = n.left
			continue
		}
		remaining -= subtreeNewlines(n.left)
		off += subtreeBytes(n.left)
		if n.p.Newlines >= remaining {
			data := t.pieceData(n.p)
			return off + nthNewline(data, remaining) + 1
		}
		remaining -= n.p.Newlines
		off += n.p.Length
		n = n.right
	}
	return t.Len()
}

// nthNewline returns the offset of the n-th (1-based) newline in data.
func nthNewline(data []byte, n uint32) ByteOffset {
	var off ByteOffset
	for {
		i := bytes.IndexByte(data, '\n')
		n--
		if n == 0 {
			return off + ByteOffset(i)
		}
		off += ByteOffset(i + 1)
		data = data[i+1:]
	}
}

// LineEndOffset returns the byte offset of the end of the given line,
// not including the newline.
func (t *Table) LineEndOffset(line uint32) ByteOffset {
	if line >= t.NewlineCount() {
		return t.Len()
	}
	return t.LineStartOffset(line+1) - 1
}

// LineOfOffset returns the 0-indexed line containing the given offset,
// counting the newlines strictly before it. Offsets past the end resolve
// to the last line.
func (t *Table) LineOfOffset(offset ByteOffset) uint32 {
	if offset < 0 {
		return 0
	}
	if offset > t.Len() {
		offset = t.Len()
	}

	var line uint32
	n := t.root
	for n != nil {
		leftBytes := subtreeBytes(n.left)
		if offset < leftBytes {
			n = n.left
			continue
		}
		line += subtreeNewlines(n.left)
		offset -= leftBytes
		if offset < n.p.Length {
			data := t.pieceData(n.p)
			return line + countNewlines(data[:offset])
		}
		line += n.p.Newlines
		offset -= n.p.Length
		n = n.right
	}
	return line
}

// Clone returns an independent copy of the table. Slab bytes are shared:
// the original slab is immutable and existing add-slab bytes are never
// rewritten, so the clone's pieces always see the content they referenced
// at clone time.
func (t *Table) Clone() *Table {
	return &Table{
		original: t.original,
		add:      t.add[:len(t.add):len(t.add)],
		root:     t.root.clone(),
	}
}

func min64(a, b ByteOffset) ByteOffset {
	if a < b {
		return a
	}
	return b
}

func max64(a, b ByteOffset) ByteOffset {
	if a > b {
		return a
	}
	return b
}
