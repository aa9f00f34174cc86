package piece

import "math/rand/v2"

// node is a single treap node holding one piece.
// The tree is ordered by document position (an implicit key derived from
// subtree byte counts) and balanced by a min-heap order on random priorities.
// Each node aggregates the byte and newline totals of its subtree so that
// position and line seeks never touch slab bytes except inside one piece.
type node struct {
	prio  uint64
	left  *node
	right *node

	p Piece

	bytes    ByteOffset // subtree byte total, including p
	newlines uint32     // subtree newline total, including p
}

func newNode(p Piece) *node {
	n := &node{prio: rand.Uint64(), p: p}
	n.update()
	return n
}

// update recomputes the aggregates from the children and the node's piece.
// It must be called whenever a child pointer or the piece changes.
func (n *node) update() {
	n.bytes = n.p.Length + subtreeBytes(n.left) + subtreeBytes(n.right)
	n.newlines = n.p.Newlines + subtreeNewlines(n.left) + subtreeNewlines(n.right)
}

func subtreeBytes(n *node) ByteOffset {
	if n == nil {
		return 0
	}
	return n.bytes
}

func subtreeNewlines(n *node) uint32 {
	if n == nil {
		return 0
	}
	return n.newlines
}

// merge joins two treaps where every byte of a precedes every byte of b.
func merge(a, b *node) *node {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.prio < b.prio {
		a.right = merge(a.right, b)
		a.update()
		return a
	}
	b.left = merge(a, b.left)
	b.update()
	return b
}

// clone returns a deep copy of the subtree. Pieces are value types, so only
// the node structure is duplicated; slab bytes are shared with the original.
func (n *node) clone() *node {
	if n == nil {
		return nil
	}
	c := *n
	c.left = n.left.clone()
	c.right = n.right.clone()
	return &c
}

// popLeftmost removes the first piece of the subtree, returning the remaining
// subtree and the removed piece. The subtree must be non-nil.
func popLeftmost(n *node) (*node, Piece) {
	if n.left == nil {
		return n.right, n.p
	}
	rest, p := popLeftmost(n.left)
	n.left = rest
	n.update()
	return n, p
}

// rightmostPiece returns the last piece of the subtree.
// The subtree must be non-nil.
func rightmostPiece(n *node) Piece {
	for n.right != nil {
		n = n.right
	}
	return n.p
}

// growRightmost extends the last piece of the subtree by extra bytes and
// newlines, updating aggregates on the way back up.
// The subtree must be non-nil.
func growRightmost(n *node, extra ByteOffset, extraNewlines uint32) {
	if n.right == nil {
		n.p.Length += extra
		n.p.Newlines += extraNewlines
	} else {
		growRightmost(n.right, extra, extraNewlines)
	}
	n.update()
}
