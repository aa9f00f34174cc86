package linediff

import (
	"fmt"
	"strings"
)

// Op is one alignment operation within a hunk: ALines lines consumed from
// side A and BLines from side B. (k, 0) is a deletion, (0, k) an insertion,
// and an op consuming both sides a modification.
type Op struct {
	ALines int
	BLines int
}

// String returns a human-readable representation of the op.
func (o Op) String() string {
	return fmt.Sprintf("(%d,%d)", o.ALines, o.BLines)
}

// Hunk is one changed region: the starting line on each side and the op
// sequence covering it.
type Hunk struct {
	AStart int
	BStart int
	Ops    []Op
}

// ALines returns the total lines the hunk consumes on side A.
func (h Hunk) ALines() int {
	n := 0
	for _, op := range h.Ops {
		n += op.ALines
	}
	return n
}

// BLines returns the total lines the hunk consumes on side B.
func (h Hunk) BLines() int {
	n := 0
	for _, op := range h.Ops {
		n += op.BLines
	}
	return n
}

// Result is a complete line diff. Hunks are ordered and non-overlapping;
// the regions between consecutive hunks (and before the first and after the
// last) are equal on both sides.
type Result struct {
	Hunks  []Hunk
	ALines int
	BLines int
}

// HasChanges returns true if the two inputs differ.
func (r Result) HasChanges() bool {
	return len(r.Hunks) > 0
}

// MaxMyersLines bounds the input size for the exact algorithm. Myers is
// O((N+M)·D) in time and memory; beyond the bound a whole-region
// replacement is produced instead.
const MaxMyersLines = 50000

// SplitLines splits text into diff lines. A trailing newline yields a
// final empty line, matching the buffer convention that a document has
// newline-count+1 lines.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// Diff computes the line diff between a and b.
func Diff(a, b []string) Result {
	res := Result{ALines: len(a), BLines: len(b)}

	// Strip the common prefix and suffix first; edits are usually local
	// and this keeps the quadratic core small.
	prefix := commonPrefix(a, b)
	a, b = a[prefix:], b[prefix:]
	suffix := commonSuffix(a, b)
	a, b = a[:len(a)-suffix], b[:len(b)-suffix]

	if len(a) == 0 && len(b) == 0 {
		return res
	}

	var script []editKind
	if len(a)+len(b) > MaxMyersLines {
		script = replaceAllScript(len(a), len(b))
	} else {
		script = myers(a, b)
	}

	res.Hunks = buildHunks(script, prefix)
	return res
}

// DiffStrings computes the line diff between two documents.
func DiffStrings(a, b string) Result {
	return Diff(SplitLines(a), SplitLines(b))
}

func commonPrefix(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func commonSuffix(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	return n
}

// editKind is one step of the edit script.
type editKind uint8

const (
	editEqual editKind = iota
	editDelete
	editInsert
)

// replaceAllScript is the fallback for oversized inputs: delete everything
// from A, insert everything from B.
func replaceAllScript(n, m int) []editKind {
	script := make([]editKind, 0, n+m)
	for i := 0; i < n; i++ {
		script = append(script, editDelete)
	}
	for i := 0; i < m; i++ {
		script = append(script, editInsert)
	}
	return script
}

// myers runs the Myers O(ND) algorithm and returns the edit script.
func myers(a, b []string) []editKind {
	n, m := len(a), len(b)
	if n == 0 {
		return replaceAllScript(0, m)
	}
	if m == 0 {
		return replaceAllScript(n, 0)
	}

	maxD := n + m
	offset := maxD
	v := make([]int, 2*maxD+1)
	var trace [][]int

	var finalD int
search:
	for d := 0; d <= maxD; d++ {
		saved := make([]int, len(v))
		copy(saved, v)
		trace = append(trace, saved)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x
			if x >= n && y >= m {
				finalD = d
				break search
			}
		}
	}

	// Backtrack from (n, m) through the saved frontiers.
	script := make([]editKind, 0, n+m)
	x, y := n, m
	for d := finalD; d > 0; d-- {
		prev := trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && prev[offset+k-1] < prev[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := prev[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			script = append(script, editEqual)
			x--
			y--
		}
		if prevK == k+1 {
			script = append(script, editInsert)
			y--
		} else {
			script = append(script, editDelete)
			x--
		}
	}
	for x > 0 && y > 0 {
		script = append(script, editEqual)
		x--
		y--
	}

	reverse(script)
	return script
}

func reverse(s []editKind) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// buildHunks groups the edit script into hunks. Within a hunk, a run of
// deletions immediately followed by a run of insertions becomes a single
// op consuming both sides, so aligned viewers can show the overlap as
// modified lines.
func buildHunks(script []editKind, startLine int) []Hunk {
	var hunks []Hunk
	aLine, bLine := startLine, startLine

	i := 0
	for i < len(script) {
		if script[i] == editEqual {
			aLine++
			bLine++
			i++
			continue
		}

		hunk := Hunk{AStart: aLine, BStart: bLine}
		for i < len(script) && script[i] != editEqual {
			dels := 0
			for i < len(script) && script[i] == editDelete {
				dels++
				i++
			}
			ins := 0
			for i < len(script) && script[i] == editInsert {
				ins++
				i++
			}
			hunk.Ops = append(hunk.Ops, Op{ALines: dels, BLines: ins})
			aLine += dels
			bLine += ins
		}
		hunks = append(hunks, hunk)
	}
	return hunks
}
