package align

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/seamtext/seam/internal/engine/buffer"
	"github.com/seamtext/seam/internal/engine/linediff"
	"github.com/seamtext/seam/internal/engine/marker"
)

// newPane builds a pane whose marker tree follows the buffer's edits.
func newPane(text string) Pane {
	buf := buffer.NewBufferFromString(text)
	tree := marker.NewTree(marker.ByteOffset(buf.Len()))
	buf.AddEditListener(func(info buffer.EditInfo) {
		tree.ApplyEdit(
			marker.ByteOffset(info.Delta.Offset),
			marker.ByteOffset(info.Delta.RemovedLen),
			marker.ByteOffset(info.Delta.InsertedLen),
		)
	})
	return Pane{Buffer: buf, Markers: tree}
}

// report applies an edit's line effect to the alignment the way the view
// layer does after every buffer change.
func report(t *testing.T, al *Alignment, p PaneID, info buffer.EditInfo) {
	t.Helper()
	if err := al.OnEdit(p, int(info.Lines.Start), int(info.LinesRemoved), info.LineDelta()); err != nil {
		t.Fatalf("OnEdit: %v", err)
	}
}

func rowKinds(rows []Row) []RowKind {
	kinds := make([]RowKind, len(rows))
	for i, r := range rows {
		kinds[i] = r.Kind
	}
	return kinds
}

func TestBuildFromExplicitDiff(t *testing.T) {
	a := newPane("one\ntwo\nOLD\nend")
	b := newPane("one\ntwo\nNEW\nend")
	diff := linediff.Result{
		ALines: 4,
		BLines: 4,
		Hunks: []linediff.Hunk{{
			AStart: 2,
			BStart: 2,
			Ops:    []linediff.Op{{ALines: 1, BLines: 0}, {ALines: 0, BLines: 1}},
		}},
	}

	al, err := Build(a, b, diff)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer al.Close()

	rows, err := al.DisplayRows()
	if err != nil {
		t.Fatalf("DisplayRows: %v", err)
	}
	want := []Row{
		{Kind: RowContext, ALine: 0, BLine: 0},
		{Kind: RowContext, ALine: 1, BLine: 1},
		{Kind: RowDeletion, ALine: 2, BLine: -1},
		{Kind: RowAddition, ALine: -1, BLine: 2},
		{Kind: RowContext, ALine: 3, BLine: 3},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows %v, want %d", len(rows), rowKinds(rows), len(want))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
	if err := al.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestNewEqualBuffers(t *testing.T) {
	al, err := New(newPane("a\nb\nc"), newPane("a\nb\nc"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer al.Close()

	rows, err := al.DisplayRows()
	if err != nil {
		t.Fatalf("DisplayRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i, r := range rows {
		if r.Kind != RowContext || r.ALine != i || r.BLine != i {
			t.Errorf("row %d = %+v", i, r)
		}
	}
}

func TestNewModificationRow(t *testing.T) {
	al, err := New(newPane("a\nx\nb"), newPane("a\ny\nb"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer al.Close()

	rows, err := al.DisplayRows()
	if err != nil {
		t.Fatalf("DisplayRows: %v", err)
	}
	want := []Row{
		{Kind: RowContext, ALine: 0, BLine: 0},
		{Kind: RowModification, ALine: 1, BLine: 1},
		{Kind: RowContext, ALine: 2, BLine: 2},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestBuildDiffMismatch(t *testing.T) {
	diff := linediff.Result{ALines: 99, BLines: 1}
	if _, err := Build(newPane("a"), newPane("a"), diff); err != ErrDiffMismatch {
		t.Fatalf("err = %v, want ErrDiffMismatch", err)
	}
}

func TestContextEditBecomesHunk(t *testing.T) {
	a := newPane("a\nb\nx\nc")
	b := newPane("a\nb\ny\nc")
	al, err := New(a, b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer al.Close()

	// Add a line inside the leading context run of pane B only. The run
	// is no longer identical in both panes, so the chunk must go dirty
	// and recompute into context plus an insertion.
	info, err := b.Buffer.Insert(1, []byte("\nb2"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	report(t, al, PaneB, info)

	if !al.Chunks()[0].Dirty() {
		t.Fatal("edited context chunk should be dirty")
	}
	if err := al.RecomputeDirty(); err != nil {
		t.Fatalf("RecomputeDirty: %v", err)
	}
	if err := al.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	rows, err := al.DisplayRows()
	if err != nil {
		t.Fatalf("DisplayRows: %v", err)
	}
	// One extra addition row, and the trailing context pairs the right lines.
	if len(rows) != 5 {
		t.Fatalf("got %d rows %v, want 5", len(rows), rowKinds(rows))
	}
	if rows[1].Kind != RowAddition || rows[1].ALine != -1 || rows[1].BLine != 1 {
		t.Errorf("row 1 = %+v, want addition of pane B line 1", rows[1])
	}
	last := rows[len(rows)-1]
	if last.Kind != RowContext || last.ALine != 3 || last.BLine != 4 {
		t.Errorf("last row = %+v, want context 3/4", last)
	}
}

func TestHunkEditRecompute(t *testing.T) {
	a := newPane("a\nx\nb")
	b := newPane("a\ny\nb")
	al, err := New(a, b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer al.Close()

	// Grow the changed line of pane B into two lines.
	off := b.Buffer.LineEndOffset(1)
	info, err := b.Buffer.Insert(off, []byte("\ny2"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	report(t, al, PaneB, info)

	var dirty int
	for _, c := range al.Chunks() {
		if c.Dirty() {
			dirty++
		}
	}
	if dirty != 1 {
		t.Fatalf("dirty chunks = %d, want 1", dirty)
	}
	if err := al.Validate(); err == nil {
		t.Fatal("Validate should fail while a chunk is dirty")
	}

	if err := al.RecomputeDirty(); err != nil {
		t.Fatalf("RecomputeDirty: %v", err)
	}
	if err := al.Validate(); err != nil {
		t.Fatalf("Validate after recompute: %v", err)
	}
	rows, err := al.DisplayRows()
	if err != nil {
		t.Fatalf("DisplayRows: %v", err)
	}
	want := []Row{
		{Kind: RowContext, ALine: 0, BLine: 0},
		{Kind: RowModification, ALine: 1, BLine: 1},
		{Kind: RowAddition, ALine: -1, BLine: 2},
		{Kind: RowContext, ALine: 2, BLine: 3},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows %v, want %d", len(rows), rowKinds(rows), len(want))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestRecomputeResolvesHunk(t *testing.T) {
	a := newPane("a\nx\nb")
	b := newPane("a\ny\nb")
	al, err := New(a, b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer al.Close()

	// Make the changed line identical on both sides; the hunk should
	// dissolve into pure context.
	start := b.Buffer.LineStartOffset(1)
	end := b.Buffer.LineEndOffset(1)
	info, err := b.Buffer.Replace(start, end-start, []byte("x"))
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	report(t, al, PaneB, info)
	if err := al.RecomputeDirty(); err != nil {
		t.Fatalf("RecomputeDirty: %v", err)
	}

	rows, err := al.DisplayRows()
	if err != nil {
		t.Fatalf("DisplayRows: %v", err)
	}
	for i, r := range rows {
		if r.Kind != RowContext {
			t.Errorf("row %d = %+v, want context", i, r)
		}
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows, want 3", len(rows))
	}
}

func TestDeletionOnlyHunkAbsentAnchor(t *testing.T) {
	a := newPane("a\ngone\nb")
	b := newPane("a\nb")
	al, err := New(a, b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer al.Close()

	var hunk *Chunk
	for _, c := range al.Chunks() {
		if c.Kind() == Hunk {
			hunk = c
		}
	}
	if hunk == nil {
		t.Fatal("no hunk chunk")
	}
	if hunk.paneLines(PaneB) != 0 {
		t.Fatalf("hunk consumes %d lines in pane B, want 0", hunk.paneLines(PaneB))
	}
	if hunk.starts[PaneB] != 0 {
		t.Error("hunk should have no anchor in the pane it is absent from")
	}

	rows, err := al.DisplayRows()
	if err != nil {
		t.Fatalf("DisplayRows: %v", err)
	}
	want := []Row{
		{Kind: RowContext, ALine: 0, BLine: 0},
		{Kind: RowDeletion, ALine: 1, BLine: -1},
		{Kind: RowContext, ALine: 2, BLine: 1},
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestAnchors(t *testing.T) {
	a := newPane("a\ngone\nb")
	b := newPane("a\nb")
	al, err := New(a, b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer al.Close()

	anchors, err := al.Anchors()
	if err != nil {
		t.Fatalf("Anchors: %v", err)
	}
	// The deletion-only hunk has no pane-B anchor, so only the two
	// context chunks qualify.
	want := []Anchor{{ALine: 0, BLine: 0}, {ALine: 2, BLine: 1}}
	if len(anchors) != len(want) {
		t.Fatalf("anchors = %v, want %v", anchors, want)
	}
	for i := range want {
		if anchors[i] != want[i] {
			t.Errorf("anchor %d = %+v, want %+v", i, anchors[i], want[i])
		}
	}
}

func TestCloseReleasesAnchors(t *testing.T) {
	a := newPane("a\nx\nb")
	b := newPane("a\ny\nb")
	al, err := New(a, b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Markers.Count() == 0 || b.Markers.Count() == 0 {
		t.Fatal("expected anchors in both trees")
	}
	al.Close()
	if n := a.Markers.Count(); n != 0 {
		t.Errorf("pane A still holds %d markers", n)
	}
	if n := b.Markers.Count(); n != 0 {
		t.Errorf("pane B still holds %d markers", n)
	}
}

func TestOnEditUnknownPane(t *testing.T) {
	al, err := New(newPane("a"), newPane("a"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer al.Close()
	if err := al.OnEdit(PaneID(7), 0, 0, 0); err != ErrUnknownPane {
		t.Fatalf("err = %v, want ErrUnknownPane", err)
	}
}

func TestCrossChunkDeletionRecompute(t *testing.T) {
	a := newPane("c0\nc1\nA2\nc3\nc4\nA5\nc6\nc7\nc8\nc9")
	b := newPane("c0\nc1\nB2\nc3\nc4\nB5\nc6\nc7\nc8\nc9")
	al, err := New(a, b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer al.Close()
	if n := len(al.Chunks()); n != 5 {
		t.Fatalf("chunks = %d, want 5", n)
	}

	// Delete from mid-line 1 through mid-line 7 of pane A. The span
	// swallows both hunks and the middle context run; their anchors
	// collapse onto the deletion point, and every chunk in the stretch
	// must go dirty so the recompute sees the merged line.
	from := a.Buffer.LineStartOffset(1) + 1
	to := a.Buffer.LineStartOffset(7) + 1
	info, err := a.Buffer.Delete(from, to-from)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	report(t, al, PaneA, info)

	if err := al.RecomputeDirty(); err != nil {
		t.Fatalf("RecomputeDirty: %v", err)
	}
	if err := al.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	coverageCheck(t, al)

	// Pane A is down to c0, c7, c8, c9; pane B still has all ten lines.
	rows, err := al.DisplayRows()
	if err != nil {
		t.Fatalf("DisplayRows: %v", err)
	}
	if len(rows) != 10 {
		t.Fatalf("got %d rows %v, want 10", len(rows), rowKinds(rows))
	}
	if rows[0].Kind != RowContext {
		t.Errorf("row 0 = %+v, want context", rows[0])
	}
	for i := 1; i <= 6; i++ {
		if rows[i].Kind != RowAddition || rows[i].ALine != -1 {
			t.Errorf("row %d = %+v, want pane B addition", i, rows[i])
		}
	}
	for i := 7; i < 10; i++ {
		if rows[i].Kind != RowContext {
			t.Errorf("row %d = %+v, want context", i, rows[i])
		}
	}
}

// coverageCheck verifies that the rows enumerate every live line of each
// pane exactly once, in order.
func coverageCheck(t *testing.T, al *Alignment) {
	t.Helper()
	rows, err := al.DisplayRows()
	if err != nil {
		t.Fatalf("DisplayRows: %v", err)
	}
	for p := PaneA; int(p) < paneCount; p++ {
		next := 0
		for i, r := range rows {
			line := r.ALine
			if p == PaneB {
				line = r.BLine
			}
			if line == -1 {
				continue
			}
			if line != next {
				t.Fatalf("pane %s row %d has line %d, want %d", p, i, line, next)
			}
			next++
		}
		if want := int(al.panes[p].Buffer.LineCount()); next != want {
			t.Fatalf("pane %s rows cover %d lines, buffer has %d", p, next, want)
		}
	}
}

func TestRandomEditsKeepCoverage(t *testing.T) {
	rng := rand.New(rand.NewPCG(12, 34))

	genDoc := func(lines int) string {
		var sb strings.Builder
		for i := 0; i < lines; i++ {
			if i > 0 {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(&sb, "line %d v%d", i, rng.IntN(3))
		}
		return sb.String()
	}

	a := newPane(genDoc(30))
	b := newPane(genDoc(30))
	al, err := New(a, b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer al.Close()

	panes := []Pane{a, b}
	for step := 0; step < 400; step++ {
		p := PaneID(rng.IntN(2))
		buf := panes[p].Buffer

		var info buffer.EditInfo
		switch rng.IntN(3) {
		case 0:
			// Point insertion, sometimes spanning new lines.
			off := buffer.ByteOffset(rng.Int64N(int64(buf.Len()) + 1))
			text := "ins"
			if rng.IntN(3) == 0 {
				text = "p\nq"
			}
			info, err = buf.Insert(off, []byte(text))
			if err != nil {
				t.Fatalf("step %d: Insert: %v", step, err)
			}
		case 1:
			// Deletion confined to a single line.
			line := uint32(rng.IntN(int(buf.LineCount())))
			start := buf.LineStartOffset(line)
			end := buf.LineEndOffset(line)
			if end == start {
				continue
			}
			from := start + buffer.ByteOffset(rng.Int64N(int64(end-start)))
			n := buffer.ByteOffset(rng.Int64N(int64(end-from)) + 1)
			info, err = buf.Delete(from, n)
			if err != nil {
				t.Fatalf("step %d: Delete: %v", step, err)
			}
		default:
			// Deletion of an arbitrary span, crossing line and chunk
			// boundaries at will.
			if buf.Len() == 0 {
				continue
			}
			from := buffer.ByteOffset(rng.Int64N(int64(buf.Len())))
			n := buffer.ByteOffset(rng.Int64N(int64(buf.Len()-from)) + 1)
			info, err = buf.Delete(from, n)
			if err != nil {
				t.Fatalf("step %d: Delete: %v", step, err)
			}
		}
		report(t, al, p, info)

		if step%7 == 0 {
			if err := al.RecomputeDirty(); err != nil {
				t.Fatalf("step %d: RecomputeDirty: %v", step, err)
			}
			if err := al.Validate(); err != nil {
				t.Fatalf("step %d: %v", step, err)
			}
			coverageCheck(t, al)
		}
	}

	if err := al.RecomputeDirty(); err != nil {
		t.Fatalf("final RecomputeDirty: %v", err)
	}
	if err := al.Validate(); err != nil {
		t.Fatalf("final Validate: %v", err)
	}
	coverageCheck(t, al)

	// A full rebuild from a fresh diff must agree on coverage.
	if err := al.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	coverageCheck(t, al)
}

func BenchmarkDisplayRows(b *testing.B) {
	var sa, sb strings.Builder
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(&sa, "line %d\n", i)
		if i%50 == 0 {
			fmt.Fprintf(&sb, "changed %d\n", i)
		} else {
			fmt.Fprintf(&sb, "line %d\n", i)
		}
	}
	al, err := New(newPane(sa.String()), newPane(sb.String()))
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	defer al.Close()

	for b.Loop() {
		if _, err := al.DisplayRows(); err != nil {
			b.Fatal(err)
		}
	}
}
