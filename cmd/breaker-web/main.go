//go:build js && wasm

// Command breaker-web runs the alignment view in a browser. The page calls
// breakerLoad(text) with the contents of a Stockholm file.
package main

import (
	"strings"
	"syscall/js"

	"github.com/jpsank/breaker/internal/alignment"
	"github.com/jpsank/breaker/internal/logging"
	"github.com/jpsank/breaker/internal/stockholm"
	"github.com/jpsank/breaker/internal/ui/canvas"
	"github.com/jpsank/breaker/internal/view"
)

const canvasID = "breaker"

// consoleWriter sends log lines to console.log.
type consoleWriter struct{}

func (consoleWriter) Write(p []byte) (int, error) {
	js.Global().Get("console").Call("log", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func main() {
	logging.InitializeWriter(consoleWriter{}, logging.LevelInfo)

	el := canvasElement()
	surface := canvas.New(el)
	v := view.New(surface, nil)

	// JS runs every callback on the page's single event loop, so the view
	// never sees concurrent calls.
	listen(el, "mousedown", func(js.Value) { v.PointerDown() })
	listen(el, "mouseup", func(js.Value) { v.PointerUp() })
	listen(el, "mousemove", func(e js.Value) {
		if err := v.PointerMove(e.Get("clientX").Float(), e.Get("clientY").Float()); err != nil {
			logging.WithError(err, "mousemove")
		}
	})
	listen(el, "keydown", func(e js.Value) {
		if err := v.KeyDown(e.Get("key").String()); err != nil {
			logging.WithError(err, "keydown")
		}
	})

	js.Global().Set("breakerLoad", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 || args[0].Type() != js.TypeString {
			return "breakerLoad: expected Stockholm text"
		}
		aln, err := parse(args[0].String())
		if err != nil {
			logging.WithError(err, "breakerLoad")
			return err.Error()
		}
		v.SetAlignment(aln)
		surface.Fit(aln)
		if err := v.Render(); err != nil {
			logging.WithError(err, "render")
			return err.Error()
		}
		logging.Info("loaded %d sequences, %d columns", len(aln.Sequences), aln.Columns())
		return nil
	}))

	logging.Info("breaker ready")
	select {}
}

// canvasElement returns the page's #breaker canvas, creating it if needed.
func canvasElement() js.Value {
	doc := js.Global().Get("document")
	el := doc.Call("getElementById", canvasID)
	if el.IsNull() {
		el = doc.Call("createElement", "canvas")
		el.Set("id", canvasID)
		doc.Get("body").Call("appendChild", el)
	}
	// Key events only reach a focusable canvas.
	if el.Call("getAttribute", "tabindex").IsNull() {
		el.Call("setAttribute", "tabindex", "0")
	}
	return el
}

func listen(el js.Value, event string, fn func(e js.Value)) {
	el.Call("addEventListener", event, js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			fn(args[0])
		}
		return nil
	}))
}

func parse(text string) (*alignment.Alignment, error) {
	f, err := stockholm.Read(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	return alignment.FromStockholm(f)
}
