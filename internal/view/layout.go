package view

import "math"

// Grid geometry in surface pixels.
const (
	LabelX       = 0
	GridX        = 200
	CellWidth    = 10
	BaselineY    = 15
	RowHeight    = 15
	Font         = "12px monospace"
	Consensus    = "SS_cons"
	ConsensusRow = 0
)

// Cell addresses one character: Row is the display row (0 is SS_cons) and
// Column the alignment column.
type Cell struct {
	Row    int
	Column int
}

// SequenceRow returns the display row of the i-th sequence. Row 1 is left
// empty between SS_cons and the first sequence.
func SequenceRow(i int) int {
	return i + 2
}

// Baseline returns the text baseline of a display row.
func Baseline(row int) float64 {
	return float64(BaselineY + row*RowHeight)
}

// ColumnX returns the left edge of a column.
func ColumnX(column int) float64 {
	return float64(GridX + column*CellWidth)
}

// Position returns the drawing position of a cell.
func Position(c Cell) (x, y float64) {
	return ColumnX(c.Column), Baseline(c.Row)
}

// CellAt maps a point relative to the surface's top-left corner to the
// nearest cell. The result is not clamped to the alignment.
func CellAt(x, y float64) Cell {
	return Cell{
		Row:    roundHalfUp((y - BaselineY) / RowHeight),
		Column: roundHalfUp((x - GridX) / CellWidth),
	}
}

// roundHalfUp rounds halves toward positive infinity, so -0.5 becomes 0
// rather than -1 as math.Round would give.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
