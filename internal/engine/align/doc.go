// Package align keeps two buffer variants (the panes of a diff view, or
// synchronized splits) in line-level correspondence as both are edited.
//
// The alignment is an ordered sequence of chunks covering the full extent
// of both panes. A context chunk is an unchanged run with the same line
// count in both panes; a hunk chunk is a changed region encoded as ops
// giving per-pane consumed line counts. Each chunk is anchored by a
// left-biased start marker in every pane where it has content, so chunk
// positions survive edits without the alignment storing a single raw
// offset: resolving a marker through the owning marker tree always yields
// the chunk's current location.
//
// Edits inside a context chunk adjust its line count directly. Edits
// inside a hunk only mark it dirty; a later RecomputeDirty re-diffs just
// the dirty chunk's byte range and splices the result back in, so
// recomputation cost is bounded by the touched region, not the document.
//
// The alignment holds marker ids, never offsets, and does not own the
// buffers it anchors into. Release it with Close before discarding so the
// anchor markers are returned to their trees.
package align
