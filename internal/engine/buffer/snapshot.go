package buffer

import "github.com/seamtext/seam/internal/engine/piece"

// Snapshot provides a read-only view of a buffer at a specific point in
// time. It is safe for concurrent access and will not change even if the
// original buffer is modified. Snapshots share slab bytes with the live
// buffer; only the piece structure is copied.
type Snapshot struct {
	table      *piece.Table
	revisionID RevisionID
}

// Text returns the full snapshot content as a string.
func (s *Snapshot) Text() string {
	return s.table.String()
}

// Bytes returns the full snapshot content as a fresh byte slice.
func (s *Snapshot) Bytes() []byte {
	return s.table.Bytes()
}

// ReadRange returns the length bytes starting at offset.
func (s *Snapshot) ReadRange(offset, length ByteOffset) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > s.table.Len() {
		return nil, ErrRangeInvalid
	}
	out, err := s.table.Slice(offset, offset+length)
	if err != nil {
		return nil, ErrRangeInvalid
	}
	return out, nil
}

// Len returns the total byte length of the snapshot.
func (s *Snapshot) Len() ByteOffset {
	return s.table.Len()
}

// LineCount returns the number of lines.
func (s *Snapshot) LineCount() uint32 {
	return s.table.LineCount()
}

// LineText returns the text of a specific line (without newline).
func (s *Snapshot) LineText(line uint32) string {
	start := s.table.LineStartOffset(line)
	end := s.table.LineEndOffset(line)
	out, _ := s.table.Slice(start, end)
	return string(out)
}

// LineStartOffset returns the byte offset of the start of a line.
func (s *Snapshot) LineStartOffset(line uint32) ByteOffset {
	return s.table.LineStartOffset(line)
}

// LineOfOffset returns the 0-indexed line containing the given offset.
func (s *Snapshot) LineOfOffset(offset ByteOffset) uint32 {
	return s.table.LineOfOffset(offset)
}

// RevisionID returns the revision the snapshot was taken at.
func (s *Snapshot) RevisionID() RevisionID {
	return s.revisionID
}
