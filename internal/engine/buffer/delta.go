package buffer

import "fmt"

// Delta is the edit descriptor emitted for every successful mutation:
// at Offset, RemovedLen bytes were removed and InsertedLen bytes inserted.
// Marker trees, alignment layers, and protocol clients consume deltas to
// keep their own bookkeeping in step with the buffer.
type Delta struct {
	Offset      ByteOffset
	RemovedLen  ByteOffset
	InsertedLen ByteOffset
}

// String returns a human-readable representation of the delta.
func (d Delta) String() string {
	return fmt.Sprintf("delta(at=%d, -%d, +%d)", d.Offset, d.RemovedLen, d.InsertedLen)
}

// LenDelta returns the change in document length caused by the edit.
func (d Delta) LenDelta() ByteOffset {
	return d.InsertedLen - d.RemovedLen
}

// EditInfo describes a successful edit: the byte delta plus the affected
// line range, in the shape external line-indicator consumers expect.
type EditInfo struct {
	Delta Delta

	// Lines is the affected line range: Lines.Start is the first touched
	// line, Lines.End the last touched line after the edit.
	Lines LineRange

	// LinesAdded and LinesRemoved are the newline count changes.
	LinesAdded   uint32
	LinesRemoved uint32

	// Revision identifies the buffer state after the edit.
	Revision RevisionID
}

// LineDelta returns the net change in line count.
func (e EditInfo) LineDelta() int {
	return int(e.LinesAdded) - int(e.LinesRemoved)
}

// EditListener receives the descriptor of every successful edit, in apply
// order, after the mutation is complete.
type EditListener func(EditInfo)
