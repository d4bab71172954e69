// Package grid is a terminal drawing surface for the alignment view.
//
// Pixel coordinates are scaled onto terminal cells: one cell is CellWidth by
// CellHeight pixels and text drawn at baseline y lands in the cell row just
// above it. With the view's geometry, column c of display row r ends up in
// terminal cell (20+c, r).
package grid

import (
	"image/color"
	"math"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/jpsank/breaker/internal/view"
)

// Pixel size of one terminal cell.
const (
	CellWidth  = view.CellWidth
	CellHeight = view.RowHeight
)

type cell struct {
	r     rune
	width int
	color view.Color
	// cont marks the trailing half of a wide rune.
	cont bool
}

// Canvas is a fixed-size buffer of coloured cells implementing view.Surface.
type Canvas struct {
	Width  int
	Height int

	cells   [][]cell
	fill    view.Color
	font    string
	palette Palette

	originX, originY int
}

var _ view.Surface = (*Canvas)(nil)

// NewCanvas creates a blank canvas of width x height terminal cells.
func NewCanvas(width, height int, palette Palette) *Canvas {
	c := &Canvas{palette: palette}
	c.Resize(width, height)
	return c
}

// Resize resets the canvas when the size changes.
func (c *Canvas) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if width == c.Width && height == c.Height && c.cells != nil {
		return
	}
	c.cells = make([][]cell, height)
	for y := range c.cells {
		c.cells[y] = make([]cell, width)
	}
	c.Width = width
	c.Height = height
}

// SetOrigin records the terminal cell at which the canvas is displayed.
func (c *Canvas) SetOrigin(x, y int) {
	c.originX, c.originY = x, y
}

// Origin returns the terminal cell at which the canvas is displayed.
func (c *Canvas) Origin() (x, y int) {
	return c.originX, c.originY
}

// SetPalette swaps the colours used by Render.
func (c *Canvas) SetPalette(p Palette) {
	c.palette = p
}

// Font returns the last font requested by the view. Terminals have a single
// font, so it only matters to callers inspecting the canvas.
func (c *Canvas) Font() string {
	return c.font
}

// Clear blanks every cell touched by the pixel rectangle.
func (c *Canvas) Clear(x, y, w, h float64) {
	col0 := max(0, int(math.Floor(x/CellWidth)))
	col1 := min(c.Width, int(math.Ceil((x+w)/CellWidth)))
	row0 := max(0, int(math.Floor(y/CellHeight)))
	row1 := min(c.Height, int(math.Ceil((y+h)/CellHeight)))
	for row := row0; row < row1; row++ {
		for col := col0; col < col1; col++ {
			c.cells[row][col] = cell{}
		}
	}
}

// SetFont implements view.Surface.
func (c *Canvas) SetFont(font string) {
	c.font = font
}

// SetFill implements view.Surface.
func (c *Canvas) SetFill(col view.Color) {
	c.fill = col
}

// FillText draws text with its baseline at pixel (x, y). Glyphs falling off
// the canvas are dropped.
func (c *Canvas) FillText(text string, x, y float64) {
	row := int(math.Round(y/CellHeight)) - 1
	if row < 0 || row >= c.Height {
		return
	}
	col := int(math.Floor(x / CellWidth))
	for _, r := range text {
		width := runewidth.RuneWidth(r)
		if width <= 0 {
			continue
		}
		if col >= c.Width || col+width > c.Width {
			break
		}
		if col >= 0 {
			c.cells[row][col] = cell{r: r, width: width, color: c.fill}
			if width == 2 {
				c.cells[row][col+1] = cell{color: c.fill, cont: true}
			}
		}
		col += width
	}
}

// Bounds returns the canvas rectangle on screen, in pixels.
func (c *Canvas) Bounds() view.Rect {
	w, h := c.Size()
	return view.Rect{
		Left:   float64(c.originX * CellWidth),
		Top:    float64(c.originY * CellHeight),
		Width:  w,
		Height: h,
	}
}

// Size returns the canvas size in pixels.
func (c *Canvas) Size() (w, h float64) {
	return float64(c.Width * CellWidth), float64(c.Height * CellHeight)
}

// ClientPoint converts a terminal cell position to the pixel baseline of
// that cell, in the same space as Bounds.
func ClientPoint(x, y int) (float64, float64) {
	return float64(x * CellWidth), float64((y + 1) * CellHeight)
}

// Lines returns the canvas text without colour.
func (c *Canvas) Lines() []string {
	lines := make([]string, c.Height)
	var b strings.Builder
	for y, row := range c.cells {
		b.Reset()
		for _, cl := range row {
			switch {
			case cl.cont:
			case cl.r == 0:
				b.WriteByte(' ')
			default:
				b.WriteRune(cl.r)
			}
		}
		lines[y] = strings.TrimRight(b.String(), " ")
	}
	return lines
}

// Render converts the canvas to a string, colouring runs of cells that
// share a colour.
func (c *Canvas) Render() string {
	var b strings.Builder
	b.Grow(c.Width * c.Height * 2)

	var run strings.Builder
	for y, row := range c.cells {
		runColor := view.ColorDefault
		flush := func() {
			if run.Len() == 0 {
				return
			}
			b.WriteString(c.style(runColor).Render(run.String()))
			run.Reset()
		}
		for _, cl := range row {
			if cl.cont {
				continue
			}
			if cl.r == 0 {
				if runColor != view.ColorDefault {
					flush()
					runColor = view.ColorDefault
				}
				run.WriteByte(' ')
				continue
			}
			if cl.color != runColor {
				flush()
				runColor = cl.color
			}
			run.WriteRune(cl.r)
		}
		flush()
		if y < c.Height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (c *Canvas) style(col view.Color) lipgloss.Style {
	fg := c.palette.Color(col)
	if fg == nil {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(fg)
}

// Palette maps view colours to terminal colours.
type Palette struct {
	Default    color.Color
	Muted      color.Color
	Structural color.Color
	Highlight  color.Color
}

// DefaultPalette suits dark terminals; "black" text is shown as the
// terminal's foreground.
func DefaultPalette() Palette {
	return Palette{
		Default:    lipgloss.Color("#a9b1d6"),
		Muted:      lipgloss.Color("#565f89"),
		Structural: lipgloss.Color("#7aa2f7"),
		Highlight:  lipgloss.Color("#e0af68"),
	}
}

// Color returns the terminal colour for a view colour.
func (p Palette) Color(c view.Color) color.Color {
	switch c {
	case view.ColorMuted:
		return p.Muted
	case view.ColorStructural:
		return p.Structural
	case view.ColorHighlight:
		return p.Highlight
	default:
		return p.Default
	}
}
