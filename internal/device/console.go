package device

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	domain "github.com/oshokin/alarm-ap/internal/domain/alarm"
)

// panelWidth mimics a 128 px wide OLED with an 8 px font.
const panelWidth = 16

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Align(lipgloss.Center)

	alarmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	textStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))
)

// ConsoleDisplay draws the display panel on a terminal.
type ConsoleDisplay struct {
	mu    sync.Mutex
	out   io.Writer
	width int
}

// NewConsoleDisplay creates a display writing to out.
func NewConsoleDisplay(out io.Writer) *ConsoleDisplay {
	return &ConsoleDisplay{
		out:   out,
		width: contentWidth(out),
	}
}

// Show renders text as a bordered panel.
func (d *ConsoleDisplay) Show(_ context.Context, text domain.DisplayText) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := fmt.Fprintln(d.out, d.render(text)); err != nil {
		return fmt.Errorf("draw display: %w", err)
	}

	return nil
}

// Close implements Display.
func (*ConsoleDisplay) Close() error {
	return nil
}

func (d *ConsoleDisplay) render(text domain.DisplayText) string {
	style := textStyle
	if text == domain.DisplayAlarm {
		style = alarmStyle
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		style.Render(text.Line1),
		style.Render(text.Line2),
	)

	return panelStyle.Width(d.width).Render(body)
}

// contentWidth returns the panel width, narrowed to the terminal when out is one.
func contentWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return panelWidth
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return panelWidth
	}

	// Border takes two columns.
	return min(panelWidth, width-2)
}
