package marker

import "math/rand/v2"

// node is a treap node holding one marker. The tree is ordered by current
// offset and balanced by a min-heap order on random priorities.
//
// Offsets are stored lazily: a node's true offset is its off field plus the
// sum of the shift fields of every node on the path from the root to it,
// including its own. Shifts are pushed down whenever the tree is
// restructured through a node, so structural operations always see true
// offsets, while an edit can adjust an entire suffix of the marker set by
// incrementing a single subtree shift.
type node struct {
	id   ID
	bias Bias
	prio uint64

	off   ByteOffset // offset, pending ancestor shifts
	shift ByteOffset // lazy adjustment for this node and its subtree

	left, right, parent *node
}

func (n *node) pushDown() {
	if n.shift == 0 {
		return
	}
	n.off += n.shift
	if n.left != nil {
		n.left.shift += n.shift
	}
	if n.right != nil {
		n.right.shift += n.shift
	}
	n.shift = 0
}

func (n *node) setLeft(c *node) {
	n.left = c
	if c != nil {
		c.parent = n
	}
}

func (n *node) setRight(c *node) {
	n.right = c
	if c != nil {
		c.parent = n
	}
}

// Tree is a marker tree over one buffer. It tracks the buffer's length so
// creation offsets can be validated, and must be told about every edit via
// ApplyEdit, in apply order.
//
// The tree is not internally locked: the editor core has a single logical
// mutator per the engine's concurrency model.
type Tree struct {
	root   *node
	nodes  map[ID]*node
	nextID ID
	length ByteOffset
}

// NewTree creates a marker tree for a buffer of the given byte length.
func NewTree(length ByteOffset) *Tree {
	return &Tree{
		nodes:  make(map[ID]*node),
		length: length,
	}
}

// Len returns the tracked buffer length.
func (t *Tree) Len() ByteOffset {
	return t.length
}

// Count returns the number of live markers.
func (t *Tree) Count() int {
	return len(t.nodes)
}

// Create adds a marker at the given offset with the given bias and returns
// its id. Fails with ErrOffsetOutOfRange if offset > buffer length.
func (t *Tree) Create(offset ByteOffset, bias Bias) (ID, error) {
	if offset < 0 || offset > t.length {
		return 0, ErrOffsetOutOfRange
	}

	t.nextID++
	n := &node{
		id:   t.nextID,
		bias: bias,
		prio: rand.Uint64(),
		off:  offset,
	}
	t.nodes[n.id] = n

	a, b := split(t.root, offset)
	t.setRoot(merge(merge(a, n), b))
	return n.id, nil
}

// Delete releases a marker. Subsequent operations on the id fail with
// ErrMarkerNotFound.
func (t *Tree) Delete(id ID) error {
	n, ok := t.nodes[id]
	if !ok {
		return ErrMarkerNotFound
	}
	delete(t.nodes, id)

	t.pushDownPath(n)
	sub := merge(n.left, n.right)
	switch {
	case n.parent == nil:
		t.setRoot(sub)
	case n.parent.left == n:
		n.parent.setLeft(sub)
	default:
		n.parent.setRight(sub)
	}
	n.left, n.right, n.parent = nil, nil, nil
	return nil
}

// Resolve returns the marker's current offset.
func (t *Tree) Resolve(id ID) (ByteOffset, error) {
	n, ok := t.nodes[id]
	if !ok {
		return 0, ErrMarkerNotFound
	}

	off := n.off
	for x := n; x != nil; x = x.parent {
		off += x.shift
	}
	return off, nil
}

// Bias returns the marker's bias.
func (t *Tree) Bias(id ID) (Bias, error) {
	n, ok := t.nodes[id]
	if !ok {
		return 0, ErrMarkerNotFound
	}
	return n.bias, nil
}

// RangeQuery returns all markers with offsets in [start, end), in
// ascending offset order. Cost is O(log n + k) for k results.
func (t *Tree) RangeQuery(start, end ByteOffset) []Info {
	var out []Info
	collectRange(t.root, 0, start, end, &out)
	return out
}

func collectRange(n *node, acc, start, end ByteOffset, out *[]Info) {
	if n == nil {
		return
	}
	acc += n.shift
	off := n.off + acc

	if off > start {
		collectRange(n.left, acc, start, end, out)
	}
	if off >= start && off < end {
		*out = append(*out, Info{ID: n.id, Offset: off, Bias: n.bias})
	}
	if off < end {
		collectRange(n.right, acc, start, end, out)
	}
}

// ApplyEdit adjusts all markers for an edit that removed removedLen bytes
// at offset and inserted insertedLen bytes in their place.
//
// Markers before the edit are untouched. Markers at or after the removed
// span shift by the length delta via a single subtree adjustment. Markers
// inside the removed span (or exactly at a pure insertion point) collapse
// according to bias: BiasLeft to offset, BiasRight to offset+insertedLen.
func (t *Tree) ApplyEdit(offset, removedLen, insertedLen ByteOffset) {
	if removedLen == 0 && insertedLen == 0 {
		return
	}
	t.length += insertedLen - removedLen

	// The damaged span: markers whose relative order could change. For a
	// pure insertion only markers exactly at the offset are affected by
	// bias; otherwise everything inside the removed range is.
	damageEnd := offset + removedLen
	if removedLen == 0 {
		damageEnd = offset + 1
	}

	before, rest := split(t.root, offset)
	damaged, after := split(rest, damageEnd)

	if after != nil {
		after.shift += insertedLen - removedLen
	}

	// Collapse damaged markers by bias, keeping left-biased markers ahead
	// of right-biased ones so tree order matches offset order.
	var lefts, rights *node
	for _, n := range flatten(damaged) {
		n.left, n.right, n.parent = nil, nil, nil
		n.shift = 0
		if n.bias == BiasLeft {
			n.off = offset
			lefts = merge(lefts, n)
		} else {
			n.off = offset + insertedLen
			rights = merge(rights, n)
		}
	}

	t.setRoot(merge(merge(before, merge(lefts, rights)), after))
}

func (t *Tree) setRoot(n *node) {
	t.root = n
	if n != nil {
		n.parent = nil
	}
}

// pushDownPath applies pending shifts along the root path to n, so that
// n and its children hold true offsets.
func (t *Tree) pushDownPath(n *node) {
	var path []*node
	for x := n; x != nil; x = x.parent {
		path = append(path, x)
	}
	for i := len(path) - 1; i >= 0; i-- {
		path[i].pushDown()
	}
}

// flatten returns the subtree's nodes in order, with all shifts applied.
func flatten(n *node) []*node {
	var out []*node
	var walk func(*node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		n.pushDown()
		walk(n.left)
		out = append(out, n)
		walk(n.right)
	}
	walk(n)
	return out
}

// split divides the treap into nodes with true offset < key and >= key.
// Both results have a nil parent.
func split(n *node, key ByteOffset) (*node, *node) {
	if n == nil {
		return nil, nil
	}
	n.pushDown()
	if n.off < key {
		a, b := split(n.right, key)
		n.setRight(a)
		n.parent = nil
		if b != nil {
			b.parent = nil
		}
		return n, b
	}
	a, b := split(n.left, key)
	n.setLeft(b)
	n.parent = nil
	if a != nil {
		a.parent = nil
	}
	return a, n
}

// merge joins two treaps where every offset in a precedes (or equals the
// smallest of) every offset in b.
func merge(a, b *node) *node {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.prio < b.prio {
		a.pushDown()
		a.setRight(merge(a.right, b))
		return a
	}
	b.pushDown()
	b.setLeft(merge(a, b.left))
	return b
}
