// Package tui renders frames to a terminal with tcell and turns terminal
// input into runner commands.
package tui

import "math"

// Layout maps board units to terminal cells. A cell is about twice as tall as
// it is wide, so one column covers half the board units of one row.
type Layout struct {
	OriginX, OriginY int
	Cols, Rows       int
	BoardW, BoardH   float64
}

// Fit sizes the board to the screen, leaving hudWidth columns on the right.
func Fit(screenW, screenH int, boardW, boardH float64, hudWidth int) Layout {
	rows := screenH - 2
	if rows < 4 {
		rows = 4
	}
	unitsPerRow := boardH / float64(rows)
	cols := int(math.Round(boardW / (unitsPerRow / 2)))
	if maxCols := screenW - hudWidth - 2; cols > maxCols && maxCols > 4 {
		cols = maxCols
		unitsPerCol := boardW / float64(cols)
		rows = int(math.Round(boardH / (unitsPerCol * 2)))
	}
	return Layout{OriginX: 1, OriginY: 1, Cols: cols, Rows: rows, BoardW: boardW, BoardH: boardH}
}

func (l Layout) unitsPerCol() float64 { return l.BoardW / float64(l.Cols) }
func (l Layout) unitsPerRow() float64 { return l.BoardH / float64(l.Rows) }

// Cell returns the screen cell of a board point.
func (l Layout) Cell(x, y float64) (int, int) {
	return l.OriginX + int(x/l.unitsPerCol()), l.OriginY + int(y/l.unitsPerRow())
}

// BoardX converts a screen column to a board x at the cell center.
func (l Layout) BoardX(col int) float64 {
	return (float64(col-l.OriginX) + 0.5) * l.unitsPerCol()
}

// BoardPoint is the board coordinate at the center of a cell.
func (l Layout) BoardPoint(col, row int) (float64, float64) {
	return l.BoardX(col), (float64(row-l.OriginY) + 0.5) * l.unitsPerRow()
}

// Contains reports whether a cell lies on the board.
func (l Layout) Contains(col, row int) bool {
	return col >= l.OriginX && col < l.OriginX+l.Cols && row >= l.OriginY && row < l.OriginY+l.Rows
}

// HUDX is the first column right of the board frame.
func (l Layout) HUDX() int { return l.OriginX + l.Cols + 2 }
