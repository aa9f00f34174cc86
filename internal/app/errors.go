package app

import "errors"

var (
	// ErrNoPath is returned when saving a document that has no file.
	ErrNoPath = errors.New("app: document has no path")
	// ErrSessionClosed is returned when using a closed diff session.
	ErrSessionClosed = errors.New("app: session closed")
)
