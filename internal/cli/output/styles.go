package output

import "github.com/charmbracelet/lipgloss"

// Status symbols
const (
	symbolSuccess = "✓"
	symbolFailure = "✗"
	symbolWarning = "!"
	symbolSkipped = "-"
)

// Styles holds the lipgloss styles used by the renderer.
type Styles struct {
	Header        lipgloss.Style
	Bold          lipgloss.Style
	Muted         lipgloss.Style
	Info          lipgloss.Style
	Success       lipgloss.Style
	Warning       lipgloss.Style
	Error         lipgloss.Style
	Path          lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// NewStyles builds styles bound to r.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header:        r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Bold:          r.NewStyle().Bold(true),
		Muted:         r.NewStyle().Foreground(lipgloss.Color("8")),
		Info:          r.NewStyle().Foreground(lipgloss.Color("14")),
		Success:       r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:       r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:         r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Path:          r.NewStyle().Foreground(lipgloss.Color("6")),
		StatusSuccess: r.NewStyle().Foreground(lipgloss.Color("10")),
		StatusFailed:  r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}
