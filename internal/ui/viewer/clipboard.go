package viewer

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/jpsank/breaker/internal/view"
)

// copyToClipboard is replaced in tests.
var copyToClipboard = CopyToClipboard

// CopyToClipboard writes text to the system clipboard with a macOS pbcopy fallback.
func CopyToClipboard(text string) error {
	if runtime.GOOS == "darwin" {
		cmd := exec.Command("pbcopy")
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err == nil {
			return nil
		}
	}
	return clipboard.WriteAll(text)
}

// SelectionText formats every selected cell that lies on a drawn character
// as "label<TAB>column<TAB>char", one per line, in selection order. Columns
// are 1-based.
func SelectionText(v *view.View) (string, int) {
	var b strings.Builder
	n := 0
	for _, c := range v.Selection() {
		label, ch, ok := v.CellText(c)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s\t%d\t%c\n", label, c.Column+1, ch)
		n++
	}
	return b.String(), n
}
