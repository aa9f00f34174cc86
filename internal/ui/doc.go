// Package ui renders a diff session in the terminal.
//
// The view draws the session's display rows side by side with tcell,
// one pane per column, and translates key events into scrolling and
// realignment. It owns the screen for its lifetime; everything else in
// the process logs to a file or stays quiet.
package ui
