// Package app assembles the engine pieces into working sessions.
//
// A Document couples a buffer with the marker tree that follows its
// edits, so any position handed out against the document stays valid as
// the text changes. A DiffSession holds two documents side by side and
// keeps their alignment, scroll correspondence, and re-diffing in step
// with every edit. All mutation of a session happens from one goroutine;
// nothing here adds locking beyond what the buffer itself provides.
package app
