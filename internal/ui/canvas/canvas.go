//go:build js && wasm

// Package canvas draws the alignment view on an HTML canvas element.
package canvas

import (
	"syscall/js"

	"github.com/jpsank/breaker/internal/alignment"
	"github.com/jpsank/breaker/internal/view"
)

// Canvas is a view.Surface backed by a 2D canvas context.
type Canvas struct {
	el  js.Value
	ctx js.Value
}

// New wraps a <canvas> element.
func New(el js.Value) *Canvas {
	return &Canvas{
		el:  el,
		ctx: el.Call("getContext", "2d"),
	}
}

// Element returns the wrapped <canvas> element.
func (c *Canvas) Element() js.Value { return c.el }

// Fit sizes the element so every row and column of aln is visible.
// Resizing resets the context state, so it should be followed by a render.
func (c *Canvas) Fit(aln *alignment.Alignment) {
	if aln == nil {
		return
	}
	w := view.ColumnX(aln.Columns())
	h := view.Baseline(view.SequenceRow(len(aln.Sequences))) + view.RowHeight/2
	c.el.Set("width", w)
	c.el.Set("height", h)
}

func (c *Canvas) Clear(x, y, w, h float64) {
	c.ctx.Call("clearRect", x, y, w, h)
}

func (c *Canvas) SetFont(font string) {
	c.ctx.Set("font", font)
}

func (c *Canvas) SetFill(col view.Color) {
	c.ctx.Set("fillStyle", col.String())
}

func (c *Canvas) FillText(text string, x, y float64) {
	c.ctx.Call("fillText", text, x, y)
}

// Bounds returns the element's client rectangle, the frame pointer event
// clientX/clientY are measured in.
func (c *Canvas) Bounds() view.Rect {
	r := c.el.Call("getBoundingClientRect")
	return view.Rect{
		Left:   r.Get("left").Float(),
		Top:    r.Get("top").Float(),
		Width:  r.Get("width").Float(),
		Height: r.Get("height").Float(),
	}
}

func (c *Canvas) Size() (w, h float64) {
	return c.el.Get("width").Float(), c.el.Get("height").Float()
}
