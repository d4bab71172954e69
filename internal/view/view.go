// Package view draws an alignment onto a Surface and turns pointer drags into
// a selection of cells.
//
// A View is not safe for concurrent use. Every method is expected to be
// called from the host's single event loop, which is what makes the
// append-then-redraw in PointerMove atomic with respect to other input.
package view

import (
	"errors"

	"github.com/jpsank/breaker/internal/alignment"
	"github.com/jpsank/breaker/internal/logging"
)

// Keys recognised by KeyDown.
const (
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// ErrNoAlignment is returned by Render when no alignment is attached.
var ErrNoAlignment = errors.New("view: no alignment to render")

// DragState is the pointer state.
type DragState int

const (
	Idle DragState = iota
	Dragging
)

func (s DragState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// View renders one alignment and tracks the cells marked on it.
type View struct {
	surface Surface
	aln     *alignment.Alignment

	// selection keeps every appended cell in order, duplicates included.
	// marked indexes it for the per-cell colour lookup.
	selection []Cell
	marked    map[Cell]struct{}

	state DragState
}

// New creates a view drawing aln onto surface.
func New(surface Surface, aln *alignment.Alignment) *View {
	return &View{
		surface: surface,
		aln:     aln,
		marked:  make(map[Cell]struct{}),
	}
}

// SetAlignment replaces the alignment. The selection is kept as-is.
func (v *View) SetAlignment(aln *alignment.Alignment) {
	v.aln = aln
}

// Alignment returns the attached alignment.
func (v *View) Alignment() *alignment.Alignment {
	return v.aln
}

// Selection returns a copy of the selected cells in the order they were added.
func (v *View) Selection() []Cell {
	out := make([]Cell, len(v.selection))
	copy(out, v.selection)
	return out
}

// State returns the pointer state.
func (v *View) State() DragState {
	return v.state
}

// Dragging reports whether a drag is in progress.
func (v *View) Dragging() bool {
	return v.state == Dragging
}

// Render clears the surface and draws SS_cons followed by every sequence.
func (v *View) Render() error {
	if v.aln == nil {
		return ErrNoAlignment
	}
	logging.Debug("render: %d selected cells", len(v.selection))

	v.surface.SetFont(Font)
	w, h := v.surface.Size()
	v.surface.Clear(0, 0, w, h)

	v.drawRow(Consensus, v.aln.ConsensusStructure, ConsensusRow)
	for i, seq := range v.aln.Sequences {
		v.drawRow(seq.Label(), seq.Residues, SequenceRow(i))
	}
	return nil
}

func (v *View) drawRow(label, text string, row int) {
	y := Baseline(row)
	v.surface.SetFill(ColorDefault)
	v.surface.FillText(label, LabelX, y)
	for col := 0; col < len(text); col++ {
		v.surface.SetFill(v.CellColor(row, col, text[col]))
		v.surface.FillText(text[col:col+1], ColumnX(col), y)
	}
}

// CellColor returns the colour of character ch drawn at (row, column).
// Gaps are always muted. Otherwise a selected cell is highlighted, a paired
// column is structural and anything else uses the default colour.
func (v *View) CellColor(row, column int, ch byte) Color {
	if alignment.IsGap(ch) {
		return ColorMuted
	}
	if _, ok := v.marked[Cell{Row: row, Column: column}]; ok {
		return ColorHighlight
	}
	if v.aln != nil && v.aln.IsPaired(column) {
		return ColorStructural
	}
	return ColorDefault
}

// CellText returns the label and character drawn at c.
func (v *View) CellText(c Cell) (label string, ch byte, ok bool) {
	if v.aln == nil {
		return "", 0, false
	}
	if c.Row == ConsensusRow {
		ss := v.aln.ConsensusStructure
		if c.Column < 0 || c.Column >= len(ss) {
			return "", 0, false
		}
		return Consensus, ss[c.Column], true
	}
	i := c.Row - SequenceRow(0)
	ch, ok = v.aln.Residue(i, c.Column)
	if !ok {
		return "", 0, false
	}
	return v.aln.Sequences[i].Label(), ch, true
}

// PointerDown starts a drag.
func (v *View) PointerDown() {
	v.state = Dragging
}

// PointerUp ends a drag.
func (v *View) PointerUp() {
	v.state = Idle
}

// PointerMove selects the cell under the pointer while dragging and redraws.
// clientX and clientY are in screen units; the surface's bounds are
// subtracted before mapping. Cells outside the alignment are recorded too.
func (v *View) PointerMove(clientX, clientY float64) error {
	if v.state != Dragging {
		return nil
	}
	b := v.surface.Bounds()
	c := CellAt(clientX-b.Left, clientY-b.Top)
	v.selection = append(v.selection, c)
	v.marked[c] = struct{}{}
	return v.Render()
}

// KeyDown handles a key identified by its DOM key name. The arrow keys only
// redraw; they are reserved for moving through the selection.
func (v *View) KeyDown(key string) error {
	switch key {
	case KeyArrowLeft, KeyArrowRight:
		return v.Render()
	}
	return nil
}
