// Package linediff computes line-based diffs between two texts using the
// Myers shortest-edit-script algorithm, with a linear-cost fallback for
// oversized inputs.
//
// Unlike unified-diff producers, the output is structural: each hunk is a
// sequence of ops giving the number of lines consumed on each side. A
// deletion consumes only A lines, an insertion only B lines, and a
// modification both. The alignment layer consumes these ops directly; no
// line content is carried in the result.
package linediff
