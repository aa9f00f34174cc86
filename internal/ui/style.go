package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/seamtext/seam/internal/engine/align"
)

// rowStyle returns the cell style for a line with the given diff role.
func rowStyle(kind align.RowKind) tcell.Style {
	switch kind {
	case align.RowDeletion:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case align.RowAddition:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	case align.RowModification:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	default:
		return tcell.StyleDefault
	}
}

var (
	styleLineNum = tcell.StyleDefault.Dim(true)
	styleDivider = tcell.StyleDefault.Dim(true)
	styleStatus  = tcell.StyleDefault.Reverse(true)
)
