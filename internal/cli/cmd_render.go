package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpsank/breaker/internal/alignment"
	"github.com/jpsank/breaker/internal/stockholm"
	"github.com/jpsank/breaker/internal/ui/grid"
	"github.com/jpsank/breaker/internal/ui/viewer"
	"github.com/jpsank/breaker/internal/view"
)

func buildRenderCommand(e *env) *cobra.Command {
	var (
		color   bool
		selects []string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Print one frame of an alignment",
		Long: `Draws the alignment once, exactly as the viewer does, and prints it.

Cells given with --select are highlighted as if they had been dragged over.
Rows are display rows: 0 is SS_cons and sequence i is on row i+2.

With --format sto the parsed file is written back out as a single-block
Stockholm alignment instead, after checking it has a usable SS_cons.`,
		Args: exactFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case formatGrid:
			case formatStockholm:
				return writeStockholm(cmd.OutOrStdout(), args[0])
			default:
				return usageError{fmt.Errorf("unknown format %q: want %s or %s", format, formatGrid, formatStockholm)}
			}
			cells, err := parseCells(selects)
			if err != nil {
				return usageError{err}
			}
			aln, err := alignment.LoadFile(args[0])
			if err != nil {
				return err
			}
			frame, err := renderFrame(aln, cells, viewer.PaletteFromConfig(e.cfg.Palette), color)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), frame)
			return nil
		},
	}
	cmd.Flags().BoolVar(&color, "color", false, "emit ANSI colours")
	cmd.Flags().StringSliceVarP(&selects, "select", "s", nil, "highlight cells given as row:column")
	cmd.Flags().StringVarP(&format, "format", "f", formatGrid, "output format: grid or sto")
	return cmd
}

// Output formats of the render command.
const (
	formatGrid      = "grid"
	formatStockholm = "sto"
)

// writeStockholm re-emits the alignment at path with its blocks joined.
func writeStockholm(w io.Writer, path string) error {
	f, err := stockholm.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if _, err := alignment.FromStockholm(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return stockholm.Write(w, f)
}

// frameSize returns the grid size, in terminal cells, needed to draw aln.
func frameSize(aln *alignment.Alignment) (width, height int) {
	width = view.GridX/view.CellWidth + aln.Columns()
	height = view.SequenceRow(len(aln.Sequences))
	return width, height
}

// renderFrame drives a view over an off-screen canvas: a drag across cells
// followed by one render.
func renderFrame(aln *alignment.Alignment, cells []view.Cell, palette grid.Palette, color bool) (string, error) {
	width, height := frameSize(aln)
	canvas := grid.NewCanvas(width, height, palette)
	v := view.New(canvas, aln)

	if len(cells) > 0 {
		v.PointerDown()
		for _, c := range cells {
			x, y := view.Position(c)
			if err := v.PointerMove(x, y); err != nil {
				return "", err
			}
		}
		v.PointerUp()
	}
	if err := v.Render(); err != nil {
		return "", err
	}

	if color {
		return canvas.Render() + "\n", nil
	}
	return strings.Join(canvas.Lines(), "\n") + "\n", nil
}

// parseCells parses "row:column" pairs.
func parseCells(specs []string) ([]view.Cell, error) {
	cells := make([]view.Cell, 0, len(specs))
	for _, s := range specs {
		rowText, colText, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("invalid cell %q: want row:column", s)
		}
		row, err := strconv.Atoi(strings.TrimSpace(rowText))
		if err != nil {
			return nil, fmt.Errorf("invalid row in %q: %w", s, err)
		}
		col, err := strconv.Atoi(strings.TrimSpace(colText))
		if err != nil {
			return nil, fmt.Errorf("invalid column in %q: %w", s, err)
		}
		cells = append(cells, view.Cell{Row: row, Column: col})
	}
	return cells, nil
}
