package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/seamtext/seam/internal/engine/align"
	"github.com/seamtext/seam/internal/engine/buffer"
	"github.com/seamtext/seam/internal/engine/marker"
)

// Document is an open text with position tracking attached. The marker
// tree is subscribed to the buffer before the document is handed out, so
// every marker created against it follows subsequent edits.
type Document struct {
	// ID identifies the document for the lifetime of the process.
	ID uuid.UUID

	// Path is the file the document was loaded from (empty for scratch).
	Path string

	// Name is the display name (filename or "untitled").
	Name string

	buf     *buffer.Buffer
	markers *marker.Tree
}

// NewDocument creates a document over the given content.
func NewDocument(path string, content []byte) *Document {
	name := filepath.Base(path)
	if path == "" {
		name = "untitled"
	}

	buf := buffer.NewBufferFromBytes(content)
	tree := marker.NewTree(marker.ByteOffset(buf.Len()))
	buf.AddEditListener(func(info buffer.EditInfo) {
		tree.ApplyEdit(
			marker.ByteOffset(info.Delta.Offset),
			marker.ByteOffset(info.Delta.RemovedLen),
			marker.ByteOffset(info.Delta.InsertedLen),
		)
	})

	return &Document{
		ID:      uuid.New(),
		Path:    path,
		Name:    name,
		buf:     buf,
		markers: tree,
	}
}

// NewScratchDocument creates an empty unsaved document.
func NewScratchDocument() *Document {
	return NewDocument("", nil)
}

// OpenDocument loads a document from disk.
func OpenDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return NewDocument(path, data), nil
}

// Buffer returns the document's text buffer.
func (d *Document) Buffer() *buffer.Buffer { return d.buf }

// Markers returns the document's marker tree.
func (d *Document) Markers() *marker.Tree { return d.markers }

// Pane adapts the document for alignment against another document.
func (d *Document) Pane() align.Pane {
	return align.Pane{Buffer: d.buf, Markers: d.markers}
}

// Text returns the full document content.
func (d *Document) Text() string { return d.buf.Text() }

// Insert inserts data at offset.
func (d *Document) Insert(offset buffer.ByteOffset, data []byte) (buffer.EditInfo, error) {
	return d.buf.Insert(offset, data)
}

// Delete removes length bytes at offset.
func (d *Document) Delete(offset, length buffer.ByteOffset) (buffer.EditInfo, error) {
	return d.buf.Delete(offset, length)
}

// Replace substitutes length bytes at offset with data.
func (d *Document) Replace(offset, length buffer.ByteOffset, data []byte) (buffer.EditInfo, error) {
	return d.buf.Replace(offset, length, data)
}

// OnEdit registers a listener for the document's edits. Listeners run
// after the marker tree has absorbed the edit, so positions they resolve
// are already current.
func (d *Document) OnEdit(fn buffer.EditListener) {
	d.buf.AddEditListener(fn)
}

// CreateMarker places a tracked position in the document.
func (d *Document) CreateMarker(offset buffer.ByteOffset, bias marker.Bias) (marker.ID, error) {
	return d.markers.Create(marker.ByteOffset(offset), bias)
}

// ResolveMarker returns a marker's current offset.
func (d *Document) ResolveMarker(id marker.ID) (buffer.ByteOffset, error) {
	off, err := d.markers.Resolve(id)
	return buffer.ByteOffset(off), err
}

// ReleaseMarker removes a marker from tracking.
func (d *Document) ReleaseMarker(id marker.ID) error {
	return d.markers.Delete(id)
}

// Save writes the document back to its path.
func (d *Document) Save() error {
	if d.Path == "" {
		return ErrNoPath
	}
	return os.WriteFile(d.Path, d.buf.Bytes(), 0o644)
}
