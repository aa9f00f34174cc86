// Package piece implements a piece-table text store.
//
// Document content is the ordered concatenation of pieces, where each piece
// references a contiguous run of bytes in one of two slabs: the immutable
// original content loaded at creation time, or an append-only add slab that
// grows with every insertion. The pieces partition the document exactly, with
// no gaps or overlaps, at every point in time.
//
// The pieces are kept in a treap (a binary tree ordered by document position,
// kept balanced by a heap order on random priorities), with each subtree
// carrying aggregate byte and newline counts. This gives O(log n) insert,
// delete, slicing, and line lookups, where n is the number of pieces.
//
// The table is not safe for concurrent use; the buffer package layers
// locking, snapshots, and edit notification on top of it.
package piece
