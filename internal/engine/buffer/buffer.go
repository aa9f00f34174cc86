package buffer

import (
	"errors"
	"io"
	"sync"
	"unicode/utf8"

	"github.com/seamtext/seam/internal/engine/piece"
)

// Errors returned by buffer operations. Bounds violations are always
// reported, never silently clamped: a caller that tracks document length
// (a protocol client, a marker owner) must see its mistake at the call site.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// Buffer wraps a piece table with revision tracking, coordinate conversion,
// and edit notification. It is the TextBuffer of the editor core.
type Buffer struct {
	mu         sync.RWMutex
	table      *piece.Table
	revisionID RevisionID
	listeners  []EditListener
}

// NewBuffer creates a new empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{
		table:      piece.New(),
		revisionID: NewRevisionID(),
	}
}

// NewBufferFromBytes creates a buffer with initial content.
// The buffer takes ownership of data.
func NewBufferFromBytes(data []byte) *Buffer {
	return &Buffer{
		table:      piece.FromBytes(data),
		revisionID: NewRevisionID(),
	}
}

// NewBufferFromString creates a buffer with initial content.
func NewBufferFromString(s string) *Buffer {
	return NewBufferFromBytes([]byte(s))
}

// NewBufferFromReader creates a buffer from an io.Reader.
func NewBufferFromReader(r io.Reader) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewBufferFromBytes(data), nil
}

// AddEditListener registers a listener that is invoked after every
// successful mutation, in apply order. Listeners are called outside the
// buffer lock and may read the buffer.
func (b *Buffer) AddEditListener(fn EditListener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// Read Operations

// Text returns the full buffer content as a string.
// For large buffers, prefer ReadRange.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.String()
}

// Bytes returns the full buffer content as a fresh byte slice.
func (b *Buffer) Bytes() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.Bytes()
}

// ReadRange returns the length bytes starting at offset. The content is raw:
// it is never validated as UTF-8.
func (b *Buffer) ReadRange(offset, length ByteOffset) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if offset < 0 || length < 0 || offset+length > b.table.Len() {
		return nil, ErrRangeInvalid
	}
	out, err := b.table.Slice(offset, offset+length)
	if err != nil {
		return nil, ErrRangeInvalid
	}
	return out, nil
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.Len()
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.IsEmpty()
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.LineCount()
}

// LineText returns the text of a specific line (without newline).
func (b *Buffer) LineText(line uint32) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	start := b.table.LineStartOffset(line)
	end := b.table.LineEndOffset(line)
	out, _ := b.table.Slice(start, end)
	return string(out)
}

// LineStartOffset returns the byte offset of the start of a line.
func (b *Buffer) LineStartOffset(line uint32) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.LineStartOffset(line)
}

// LineEndOffset returns the byte offset of the end of a line (before newline).
func (b *Buffer) LineEndOffset(line uint32) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.LineEndOffset(line)
}

// LineOfOffset returns the 0-indexed line containing the given offset.
func (b *Buffer) LineOfOffset(offset ByteOffset) uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.LineOfOffset(offset)
}

// Coordinate Conversion

// OffsetToPoint converts a byte offset to line/column.
func (b *Buffer) OffsetToPoint(offset ByteOffset) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.offsetToPointLocked(offset)
}

func (b *Buffer) offsetToPointLocked(offset ByteOffset) Point {
	if offset < 0 {
		offset = 0
	}
	if offset > b.table.Len() {
		offset = b.table.Len()
	}
	line := b.table.LineOfOffset(offset)
	start := b.table.LineStartOffset(line)
	return Point{Line: line, Column: uint32(offset - start)}
}

// PointToOffset converts line/column to byte offset.
// Columns past the end of the line resolve to the line end.
func (b *Buffer) PointToOffset(point Point) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start := b.table.LineStartOffset(point.Line)
	end := b.table.LineEndOffset(point.Line)
	if ByteOffset(point.Column) >= end-start {
		return end
	}
	return start + ByteOffset(point.Column)
}

// OffsetToPointUTF16 converts a byte offset to a UTF-16 line/column,
// the position encoding used by wire protocols.
func (b *Buffer) OffsetToPointUTF16(offset ByteOffset) PointUTF16 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	p := b.offsetToPointLocked(offset)
	start := b.table.LineStartOffset(p.Line)
	prefix, _ := b.table.Slice(start, offset)
	return PointUTF16{Line: p.Line, Column: utf16Column(prefix)}
}

// PointUTF16ToOffset converts a UTF-16 line/column to a byte offset.
func (b *Buffer) PointUTF16ToOffset(point PointUTF16) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start := b.table.LineStartOffset(point.Line)
	end := b.table.LineEndOffset(point.Line)
	lineText, _ := b.table.Slice(start, end)
	return start + ByteOffset(byteColumnFromUTF16(lineText, point.Column))
}

// Write Operations

// Insert inserts data at the given offset.
// Returns the edit descriptor, including the affected line range.
func (b *Buffer) Insert(offset ByteOffset, data []byte) (EditInfo, error) {
	b.mu.Lock()

	if offset < 0 || offset > b.table.Len() {
		b.mu.Unlock()
		return EditInfo{}, ErrOffsetOutOfRange
	}

	startLine := b.table.LineOfOffset(offset)
	if err := b.table.Insert(offset, data); err != nil {
		b.mu.Unlock()
		return EditInfo{}, ErrOffsetOutOfRange
	}
	b.revisionID = NewRevisionID()

	added := countNewlines(data)
	info := EditInfo{
		Delta:      Delta{Offset: offset, InsertedLen: ByteOffset(len(data))},
		Lines:      LineRange{Start: startLine, End: startLine + added},
		LinesAdded: added,
		Revision:   b.revisionID,
	}
	b.mu.Unlock()

	b.notify(info)
	return info, nil
}

// Delete removes length bytes starting at offset.
// Returns the edit descriptor, including the affected line range.
func (b *Buffer) Delete(offset, length ByteOffset) (EditInfo, error) {
	b.mu.Lock()

	if offset < 0 || length < 0 || offset+length > b.table.Len() {
		b.mu.Unlock()
		return EditInfo{}, ErrOffsetOutOfRange
	}

	startLine := b.table.LineOfOffset(offset)
	removed := b.table.LineOfOffset(offset+length) - startLine
	if err := b.table.Delete(offset, length); err != nil {
		b.mu.Unlock()
		return EditInfo{}, ErrOffsetOutOfRange
	}
	b.revisionID = NewRevisionID()

	info := EditInfo{
		Delta:        Delta{Offset: offset, RemovedLen: length},
		Lines:        LineRange{Start: startLine, End: startLine},
		LinesRemoved: removed,
		Revision:     b.revisionID,
	}
	b.mu.Unlock()

	b.notify(info)
	return info, nil
}

// Replace replaces length bytes at offset with data. It emits a single
// edit descriptor covering both the removal and the insertion, so marker
// bias rules see one edit rather than a delete/insert pair.
func (b *Buffer) Replace(offset, length ByteOffset, data []byte) (EditInfo, error) {
	b.mu.Lock()

	if offset < 0 || length < 0 || offset+length > b.table.Len() {
		b.mu.Unlock()
		return EditInfo{}, ErrOffsetOutOfRange
	}

	startLine := b.table.LineOfOffset(offset)
	removed := b.table.LineOfOffset(offset+length) - startLine
	if err := b.table.Delete(offset, length); err != nil {
		b.mu.Unlock()
		return EditInfo{}, ErrOffsetOutOfRange
	}
	if err := b.table.Insert(offset, data); err != nil {
		b.mu.Unlock()
		return EditInfo{}, ErrOffsetOutOfRange
	}
	b.revisionID = NewRevisionID()

	added := countNewlines(data)
	info := EditInfo{
		Delta: Delta{
			Offset:      offset,
			RemovedLen:  length,
			InsertedLen: ByteOffset(len(data)),
		},
		Lines:        LineRange{Start: startLine, End: startLine + added},
		LinesAdded:   added,
		LinesRemoved: removed,
		Revision:     b.revisionID,
	}
	b.mu.Unlock()

	b.notify(info)
	return info, nil
}

func (b *Buffer) notify(info EditInfo) {
	b.mu.RLock()
	listeners := b.listeners
	b.mu.RUnlock()

	for _, fn := range listeners {
		fn(info)
	}
}

// Buffer State

// RevisionID returns the current revision ID.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// Snapshot returns a read-only snapshot of the current buffer state.
// Safe for concurrent access from other goroutines.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return &Snapshot{
		table:      b.table.Clone(),
		revisionID: b.revisionID,
	}
}

// Helpers

func countNewlines(data []byte) uint32 {
	var n uint32
	for _, c := range data {
		if c == '\n' {
			n++
		}
	}
	return n
}

// utf16Column counts UTF-16 code units in a byte slice.
func utf16Column(s []byte) uint32 {
	var col uint32
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRune(s[i:])
		if r >= 0x10000 {
			col += 2 // surrogate pair
		} else {
			col++
		}
		i += size
	}
	return col
}

// byteColumnFromUTF16 converts a UTF-16 column to a byte offset within a line.
func byteColumnFromUTF16(line []byte, utf16Col uint32) int {
	var col uint32
	var byteCol int
	for byteCol < len(line) && col < utf16Col {
		r, size := utf8.DecodeRune(line[byteCol:])
		if r >= 0x10000 {
			col += 2
		} else {
			col++
		}
		byteCol += size
	}
	return byteCol
}
