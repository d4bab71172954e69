package view

// Color is one of the four cell colours the view paints with.
type Color int

const (
	ColorDefault Color = iota
	ColorMuted
	ColorStructural
	ColorHighlight
)

// String returns the CSS colour name used by the browser surface.
func (c Color) String() string {
	switch c {
	case ColorMuted:
		return "gray"
	case ColorStructural:
		return "blue"
	case ColorHighlight:
		return "yellow"
	default:
		return "black"
	}
}

// Rect is a rectangle in surface pixels.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

// Surface is a 2D raster drawing target.
type Surface interface {
	// Clear erases the given region.
	Clear(x, y, w, h float64)
	// SetFont selects the font used by later FillText calls.
	SetFont(font string)
	// SetFill selects the colour used by later FillText calls.
	SetFill(c Color)
	// FillText draws text with its baseline at (x, y).
	FillText(text string, x, y float64)
	// Bounds returns where the surface sits on screen, in the same units
	// as pointer positions.
	Bounds() Rect
	// Size returns the surface dimensions in pixels.
	Size() (w, h float64)
}
