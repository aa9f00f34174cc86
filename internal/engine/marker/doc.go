// Package marker provides stable position handles over a text buffer.
//
// A marker is an opaque handle bound to a byte offset. As edits occur, the
// tree relocates every marker automatically, so a caller can hold a marker
// id across arbitrary edits elsewhere in the document and resolve it to a
// correct offset at any time. Raw integer offsets go stale on every edit;
// markers are the stable replacement for them.
//
// Markers carry an explicit bias that decides ties when an edit happens
// exactly at the marker's offset:
//
//   - BiasLeft: text inserted at the marker appears to its right; the
//     marker stays put. A marker inside a deleted span collapses to the
//     start of the edit. This suits selection anchors and chunk starts.
//   - BiasRight: text inserted at the marker pushes it forward; a marker
//     inside a deleted span collapses past the replacement text. This
//     reproduces how a cursor follows typed text.
//
// The tree is a treap ordered by current offset. Each node stores a lazy
// shift that applies to its whole subtree, so an edit adjusts all markers
// after it by touching O(log n) nodes; only markers inside the removed
// span are handled individually. Resolution walks parent pointers, summing
// pending shifts along the root path.
//
// Markers are owned by the tree and must be explicitly released with
// Delete; an unreferenced marker is a resource leak, not garbage.
package marker
