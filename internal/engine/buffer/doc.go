// Package buffer provides a thread-safe text buffer built on top of the
// piece-table store. It serves as the primary interface for text manipulation
// in the editor engine.
//
// The buffer package provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - Efficient text operations through the underlying piece table
//   - Coordinate conversion between byte offsets and line/column positions
//   - UTF-16 coordinate support for protocol compatibility
//   - Read-only snapshots for concurrent access
//   - Revision tracking for change management
//   - Edit descriptors describing every successful mutation, delivered to
//     registered listeners (marker trees, alignment layers, protocol clients)
//
// The buffer operates on raw bytes. It never validates content as UTF-8;
// byte validity is a presentation-layer concern.
//
// Position Types:
//
//   - ByteOffset: Raw byte position in the buffer
//   - Point: Line and column position (0-indexed, column in bytes)
//   - PointUTF16: Line and column position with UTF-16 code unit column
//     (for wire-protocol compatibility)
//
// Thread Safety:
//
// All Buffer methods are thread-safe, but the intended model is a single
// logical mutator: one owner applies edits and drives propagation to
// markers and alignment; other goroutines only read snapshots or derived
// values handed to them after an edit has fully propagated.
package buffer
