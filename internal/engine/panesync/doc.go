// Package panesync keeps the viewports of aligned panes scrolled in
// correspondence.
//
// A Group owns one scroll position, kept in the reference pane's line
// space (pane A of the alignment). Scrolling any pane is translated into
// the reference space through the alignment's anchors, and each pane's
// top line is derived back out the same way. Because the stored position
// is a line in a live buffer and anchors are backed by markers, the
// correspondence survives edits to either pane without the group
// observing them.
package panesync
