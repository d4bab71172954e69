// Package viewer hosts the alignment view in a terminal program. Mouse
// events become pointer events on the view and the grid canvas is the
// drawing surface.
package viewer

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	"github.com/jpsank/breaker/internal/alignment"
	"github.com/jpsank/breaker/internal/config"
	"github.com/jpsank/breaker/internal/keymap"
	"github.com/jpsank/breaker/internal/logging"
	"github.com/jpsank/breaker/internal/perf"
	"github.com/jpsank/breaker/internal/ui/grid"
	"github.com/jpsank/breaker/internal/view"
)

const (
	gridZoneID   = "breaker-grid"
	headerHeight = 1
	footerHeight = 1
	statusTTL    = 3 * time.Second
)

var (
	colorBackground = lipgloss.Color("#1a1b26")
	colorForeground = lipgloss.Color("#a9b1d6")
	colorMuted      = lipgloss.Color("#565f89")
	colorPrimary    = lipgloss.Color("#7aa2f7")
	colorError      = lipgloss.Color("#f7768e")
)

type styles struct {
	Title  lipgloss.Style
	Muted  lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:  lipgloss.NewStyle().Foreground(colorPrimary).Bold(true),
		Muted:  lipgloss.NewStyle().Foreground(colorMuted),
		Status: lipgloss.NewStyle().Foreground(colorForeground),
		Error:  lipgloss.NewStyle().Foreground(colorError),
	}
}

// Model is the bubbletea model for the alignment viewer.
type Model struct {
	path   string
	view   *view.View
	canvas *grid.Canvas
	keymap keymap.KeyMap
	styles styles
	zone   *zone.Manager

	width  int
	height int

	status    string
	statusErr bool
	statusSeq int

	msgSender func(tea.Msg)
}

// New creates a viewer for aln, which was loaded from path.
func New(path string, aln *alignment.Alignment, cfg *config.Config) *Model {
	canvas := grid.NewCanvas(80, 24, PaletteFromConfig(cfg.Palette))
	canvas.SetOrigin(0, headerHeight)
	return &Model{
		path:   path,
		view:   view.New(canvas, aln),
		canvas: canvas,
		keymap: keymap.New(cfg.KeyMap),
		styles: defaultStyles(),
	}
}

// PaletteFromConfig converts configured hex colours, falling back to the
// defaults for empty entries.
func PaletteFromConfig(p config.Palette) grid.Palette {
	out := grid.DefaultPalette()
	if p.Default != "" {
		out.Default = lipgloss.Color(p.Default)
	}
	if p.Muted != "" {
		out.Muted = lipgloss.Color(p.Muted)
	}
	if p.Structural != "" {
		out.Structural = lipgloss.Color(p.Structural)
	}
	if p.Highlight != "" {
		out.Highlight = lipgloss.Color(p.Highlight)
	}
	return out
}

// SetZone sets the zone manager used to locate the grid on screen.
func (m *Model) SetZone(z *zone.Manager) { m.zone = z }

// SetMsgSender sets the function used to deliver messages from background
// goroutines such as the file watcher.
func (m *Model) SetMsgSender(send func(tea.Msg)) { m.msgSender = send }

// NotifyFileChanged is the file watcher callback. It runs off the event loop
// and only forwards a message.
func (m *Model) NotifyFileChanged(path string) {
	if m.msgSender != nil {
		m.msgSender(FileChanged{Path: path})
	}
}

// AlignmentView returns the alignment view.
func (m *Model) AlignmentView() *view.View { return m.view }

// Canvas returns the drawing surface.
func (m *Model) Canvas() *grid.Canvas { return m.canvas }

// Init draws the first frame.
func (m *Model) Init() tea.Cmd {
	m.render()
	return nil
}

// Update handles window, keyboard, mouse and reload messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.canvas.Resize(msg.Width, msg.Height-headerHeight-footerHeight)
		m.render()

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)

	case tea.MouseClickMsg:
		if msg.Button == tea.MouseLeft {
			m.syncOrigin()
			m.view.PointerDown()
		}

	case tea.MouseReleaseMsg:
		m.view.PointerUp()

	case tea.MouseMotionMsg:
		if !m.view.Dragging() {
			return m, nil
		}
		defer perf.Time("viewer_drag")()
		m.syncOrigin()
		x, y := grid.ClientPoint(msg.X, msg.Y)
		if err := m.view.PointerMove(x, y); err != nil {
			logging.WithError(err, "pointer move")
		}

	case FileChanged:
		return m, reloadCmd(msg.Path)

	case AlignmentReloaded:
		m.view.SetAlignment(msg.Alignment)
		m.render()
		logging.Info("reloaded %s", msg.Path)
		return m, m.setStatus(fmt.Sprintf("reloaded %s", filepath.Base(msg.Path)), false)

	case ReloadFailed:
		logging.WithError(msg.Err, "reload "+msg.Path)
		return m, m.setStatus(fmt.Sprintf("reload failed: %v", msg.Err), true)

	case SelectionCopied:
		if msg.Err != nil {
			logging.WithError(msg.Err, "copy selection")
			return m, m.setStatus(fmt.Sprintf("copy failed: %v", msg.Err), true)
		}
		return m, m.setStatus(fmt.Sprintf("copied %d cells", msg.Count), false)

	case statusDismissed:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusErr = false
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit
	case key.Matches(msg, m.keymap.Left):
		m.keyDown(view.KeyArrowLeft)
	case key.Matches(msg, m.keymap.Right):
		m.keyDown(view.KeyArrowRight)
	case key.Matches(msg, m.keymap.Copy):
		text, n := SelectionText(m.view)
		if n == 0 {
			return m.setStatus("nothing selected", false)
		}
		return func() tea.Msg {
			return SelectionCopied{Count: n, Err: copyToClipboard(text)}
		}
	}
	return nil
}

func (m *Model) keyDown(k string) {
	if err := m.view.KeyDown(k); err != nil {
		logging.WithError(err, "key "+k)
	}
}

func (m *Model) render() {
	defer perf.Time("viewer_render")()
	if err := m.view.Render(); err != nil {
		logging.WithError(err, "render")
	}
}

// syncOrigin moves the canvas origin to where the grid was last drawn.
func (m *Model) syncOrigin() {
	if m.zone == nil {
		return
	}
	if z := m.zone.Get(gridZoneID); z != nil && !z.IsZero() {
		m.canvas.SetOrigin(z.StartX, z.StartY)
	}
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.status = text
	m.statusErr = isErr
	m.statusSeq++
	seq := m.statusSeq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return statusDismissed{seq: seq}
	})
}

// View renders the header, the grid and the status line.
func (m *Model) View() tea.View {
	var v tea.View
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.BackgroundColor = colorBackground
	v.ForegroundColor = colorForeground

	body := m.canvas.Render()
	if m.zone != nil {
		body = m.zone.Mark(gridZoneID, body)
	}
	content := strings.Join([]string{m.headerLine(), body, m.statusLine()}, "\n")
	if m.zone != nil {
		content = m.zone.Scan(content)
	}
	v.SetContent(content)
	return v
}

func (m *Model) headerLine() string {
	title := m.styles.Title.Render("breaker")
	info := fmt.Sprintf("%s  %d sequences  %d selected",
		filepath.Base(m.path), m.sequenceCount(), len(m.view.Selection()))
	line := title + "  " + m.styles.Muted.Render(info)
	return m.truncate(line)
}

func (m *Model) statusLine() string {
	if m.status != "" {
		style := m.styles.Status
		if m.statusErr {
			style = m.styles.Error
		}
		return m.truncate(style.Render(m.status))
	}
	return m.truncate(m.styles.Muted.Render(strings.Join(keymap.Hints(m.keymap), "  ")))
}

func (m *Model) truncate(s string) string {
	if m.width <= 0 {
		return s
	}
	return ansi.Truncate(s, m.width, "…")
}

func (m *Model) sequenceCount() int {
	if aln := m.view.Alignment(); aln != nil {
		return len(aln.Sequences)
	}
	return 0
}

func reloadCmd(path string) tea.Cmd {
	return func() tea.Msg {
		aln, err := alignment.LoadFile(path)
		if err != nil {
			return ReloadFailed{Path: path, Err: err}
		}
		return AlignmentReloaded{Path: path, Alignment: aln}
	}
}
