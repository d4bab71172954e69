package view

import (
	"errors"
	"reflect"
	"testing"

	"github.com/jpsank/breaker/internal/alignment"
)

type point struct{ x, y float64 }

type glyph struct {
	text  string
	color Color
}

type fakeSurface struct {
	bounds Rect
	w, h   float64

	font   string
	fill   Color
	frame  map[point]glyph
	ops    []string
	clears int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{w: 800, h: 600, frame: make(map[point]glyph)}
}

func (s *fakeSurface) Clear(x, y, w, h float64) {
	s.clears++
	s.ops = nil
	for p := range s.frame {
		if p.x >= x && p.x < x+w && p.y >= y && p.y < y+h {
			delete(s.frame, p)
		}
	}
}

func (s *fakeSurface) SetFont(font string) { s.font = font }

func (s *fakeSurface) SetFill(c Color) { s.fill = c }

func (s *fakeSurface) FillText(text string, x, y float64) {
	s.frame[point{x, y}] = glyph{text: text, color: s.fill}
	s.ops = append(s.ops, text+"@"+s.fill.String())
}

func (s *fakeSurface) Bounds() Rect { return s.bounds }

func (s *fakeSurface) Size() (float64, float64) { return s.w, s.h }

func (s *fakeSurface) at(c Cell) glyph {
	x, y := Position(c)
	return s.frame[point{x, y}]
}

func testAlignment() *alignment.Alignment {
	return &alignment.Alignment{
		ConsensusStructure: "..<>...",
		Sequences: []alignment.Sequence{
			{Name: "seqA", Residues: "AC-GTAC"},
			{Name: "seqB", Residues: "ACUGU-C"},
		},
	}
}

func renderedView(t *testing.T) (*View, *fakeSurface) {
	t.Helper()
	s := newFakeSurface()
	v := New(s, testAlignment())
	if err := v.Render(); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return v, s
}

func TestMappingRoundTrip(t *testing.T) {
	for row := -3; row < 40; row++ {
		for col := -3; col < 120; col++ {
			want := Cell{Row: row, Column: col}
			x, y := Position(want)
			if got := CellAt(x, y); got != want {
				t.Fatalf("CellAt(Position(%v)) = %v", want, got)
			}
		}
	}
}

func TestCellAtRoundsHalfUp(t *testing.T) {
	tests := []struct {
		x, y float64
		want Cell
	}{
		{x: 200, y: 15, want: Cell{0, 0}},
		{x: 204.9, y: 22.4, want: Cell{0, 0}},
		{x: 205, y: 22.5, want: Cell{1, 1}},
		{x: 195, y: 7.5, want: Cell{0, 0}},
		{x: 194.9, y: 7.4, want: Cell{-1, -1}},
		{x: 0, y: 0, want: Cell{-1, -20}},
	}
	for _, tt := range tests {
		if got := CellAt(tt.x, tt.y); got != tt.want {
			t.Errorf("CellAt(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRenderLayout(t *testing.T) {
	_, s := renderedView(t)

	if s.font != Font {
		t.Fatalf("expected font %q, got %q", Font, s.font)
	}
	if s.clears != 1 {
		t.Fatalf("expected one clear, got %d", s.clears)
	}
	if g := s.frame[point{LabelX, 15}]; g.text != Consensus || g.color != ColorDefault {
		t.Fatalf("unexpected consensus label %+v", g)
	}
	if g := s.frame[point{LabelX, 45}]; g.text != "seqA" || g.color != ColorDefault {
		t.Fatalf("first sequence label should sit on row 2, got %+v", g)
	}
	if g := s.frame[point{LabelX, 60}]; g.text != "seqB" {
		t.Fatalf("second sequence label should sit on row 3, got %+v", g)
	}
	if _, ok := s.frame[point{LabelX, 30}]; ok {
		t.Fatalf("row 1 must stay empty")
	}
	if g := s.at(Cell{Row: 2, Column: 6}); g.text != "C" {
		t.Fatalf("expected last residue of seqA at x=260, got %+v", g)
	}
}

func TestRenderColors(t *testing.T) {
	_, s := renderedView(t)

	tests := []struct {
		name string
		cell Cell
		want Color
	}{
		{name: "plain residue", cell: Cell{2, 0}, want: ColorDefault},
		{name: "gap in paired column", cell: Cell{2, 2}, want: ColorMuted},
		{name: "residue in paired column", cell: Cell{2, 3}, want: ColorStructural},
		{name: "gap in unpaired column", cell: Cell{3, 5}, want: ColorMuted},
		{name: "consensus open marker", cell: Cell{0, 2}, want: ColorStructural},
		{name: "consensus dot", cell: Cell{0, 0}, want: ColorDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.at(tt.cell).color; got != tt.want {
				t.Fatalf("color at %v = %v, want %v", tt.cell, got, tt.want)
			}
		})
	}
}

func TestSelectionOverridesStructureButNotGap(t *testing.T) {
	s := newFakeSurface()
	v := New(s, testAlignment())
	v.PointerDown()

	// seqA column 3 is structural, column 2 is a gap.
	for _, c := range []Cell{{2, 3}, {2, 2}, {2, 0}} {
		x, y := Position(c)
		if err := v.PointerMove(x, y); err != nil {
			t.Fatalf("PointerMove failed: %v", err)
		}
	}

	if got := s.at(Cell{2, 3}).color; got != ColorHighlight {
		t.Fatalf("selected structural cell = %v, want highlight", got)
	}
	if got := s.at(Cell{2, 0}).color; got != ColorHighlight {
		t.Fatalf("selected plain cell = %v, want highlight", got)
	}
	if got := s.at(Cell{2, 2}).color; got != ColorMuted {
		t.Fatalf("selected gap = %v, want muted", got)
	}
	if got := s.at(Cell{3, 3}).color; got != ColorStructural {
		t.Fatalf("unselected structural cell in another row = %v, want structural", got)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	v, s := renderedView(t)
	v.PointerDown()
	if err := v.PointerMove(210, 45); err != nil {
		t.Fatalf("PointerMove failed: %v", err)
	}

	first := make(map[point]glyph, len(s.frame))
	for k, g := range s.frame {
		first[k] = g
	}
	firstOps := append([]string(nil), s.ops...)

	if err := v.Render(); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !reflect.DeepEqual(first, s.frame) {
		t.Fatalf("second render changed the frame")
	}
	if !reflect.DeepEqual(firstOps, s.ops) {
		t.Fatalf("second render issued different draw calls")
	}
}

func TestPointerDragSelectsOrigin(t *testing.T) {
	s := newFakeSurface()
	v := New(s, testAlignment())

	v.PointerDown()
	if !v.Dragging() {
		t.Fatalf("expected dragging after PointerDown")
	}
	if err := v.PointerMove(200, 15); err != nil {
		t.Fatalf("PointerMove failed: %v", err)
	}

	if got := v.Selection(); !reflect.DeepEqual(got, []Cell{{0, 0}}) {
		t.Fatalf("selection = %v, want [(0,0)]", got)
	}
	if got := s.at(Cell{0, 0}).color; got != ColorHighlight {
		t.Fatalf("selected consensus cell = %v, want highlight", got)
	}
}

func TestPointerMoveUsesSurfaceBounds(t *testing.T) {
	s := newFakeSurface()
	s.bounds = Rect{Left: 40, Top: 100}
	v := New(s, testAlignment())

	v.PointerDown()
	if err := v.PointerMove(40+230, 100+45); err != nil {
		t.Fatalf("PointerMove failed: %v", err)
	}
	if got := v.Selection(); !reflect.DeepEqual(got, []Cell{{2, 3}}) {
		t.Fatalf("selection = %v, want [(2,3)]", got)
	}
}

func TestPointerMoveWhileIdle(t *testing.T) {
	s := newFakeSurface()
	v := New(s, testAlignment())

	if err := v.PointerMove(200, 15); err != nil {
		t.Fatalf("PointerMove failed: %v", err)
	}
	if len(v.Selection()) != 0 || s.clears != 0 {
		t.Fatalf("idle move must not select or redraw")
	}

	v.PointerDown()
	v.PointerUp()
	if v.State() != Idle {
		t.Fatalf("expected idle after PointerUp, got %v", v.State())
	}
	if err := v.PointerMove(200, 15); err != nil {
		t.Fatalf("PointerMove failed: %v", err)
	}
	if len(v.Selection()) != 0 {
		t.Fatalf("move after PointerUp must not select")
	}
}

func TestSelectionKeepsDuplicatesAndOutOfRange(t *testing.T) {
	s := newFakeSurface()
	v := New(s, testAlignment())
	v.PointerDown()

	moves := []point{{200, 15}, {201, 16}, {-500, -500}, {5000, 5000}}
	for _, p := range moves {
		if err := v.PointerMove(p.x, p.y); err != nil {
			t.Fatalf("PointerMove failed: %v", err)
		}
	}
	want := []Cell{{0, 0}, {0, 0}, {-34, -70}, {332, 480}}
	if got := v.Selection(); !reflect.DeepEqual(got, want) {
		t.Fatalf("selection = %v, want %v", got, want)
	}
	if s.clears != len(moves) {
		t.Fatalf("expected a redraw per move, got %d", s.clears)
	}
}

func TestKeyDownRedrawsOnly(t *testing.T) {
	v, s := renderedView(t)

	for _, k := range []string{KeyArrowLeft, KeyArrowRight} {
		if err := v.KeyDown(k); err != nil {
			t.Fatalf("KeyDown(%s) failed: %v", k, err)
		}
	}
	if s.clears != 3 {
		t.Fatalf("expected arrow keys to redraw, clears=%d", s.clears)
	}
	if err := v.KeyDown("Enter"); err != nil {
		t.Fatalf("KeyDown(Enter) failed: %v", err)
	}
	if s.clears != 3 {
		t.Fatalf("other keys must be ignored, clears=%d", s.clears)
	}
	if len(v.Selection()) != 0 || v.Dragging() {
		t.Fatalf("keys must not change selection or drag state")
	}
}

func TestRenderWithoutAlignment(t *testing.T) {
	s := newFakeSurface()
	v := New(s, nil)
	if err := v.Render(); !errors.Is(err, ErrNoAlignment) {
		t.Fatalf("expected ErrNoAlignment, got %v", err)
	}
	if s.clears != 0 {
		t.Fatalf("nothing should be drawn without an alignment")
	}

	v.PointerDown()
	if err := v.PointerMove(200, 15); !errors.Is(err, ErrNoAlignment) {
		t.Fatalf("expected PointerMove to surface ErrNoAlignment, got %v", err)
	}
}

func TestCellText(t *testing.T) {
	v := New(newFakeSurface(), testAlignment())

	tests := []struct {
		cell      Cell
		wantLabel string
		wantCh    byte
		wantOK    bool
	}{
		{cell: Cell{0, 2}, wantLabel: Consensus, wantCh: '<', wantOK: true},
		{cell: Cell{2, 3}, wantLabel: "seqA", wantCh: 'G', wantOK: true},
		{cell: Cell{3, 5}, wantLabel: "seqB", wantCh: '-', wantOK: true},
		{cell: Cell{1, 0}},
		{cell: Cell{2, 7}},
		{cell: Cell{-1, 0}},
	}
	for _, tt := range tests {
		label, ch, ok := v.CellText(tt.cell)
		if label != tt.wantLabel || ch != tt.wantCh || ok != tt.wantOK {
			t.Errorf("CellText(%v) = (%q, %q, %v), want (%q, %q, %v)",
				tt.cell, label, ch, ok, tt.wantLabel, tt.wantCh, tt.wantOK)
		}
	}
}
