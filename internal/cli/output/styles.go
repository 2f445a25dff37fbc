package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles of text mode.
type Styles struct {
	Header1       lipgloss.Style
	Header2       lipgloss.Style
	Bold          lipgloss.Style
	Muted         lipgloss.Style
	Success       lipgloss.Style
	Warning       lipgloss.Style
	Error         lipgloss.Style
	Info          lipgloss.Style
	QueryName     lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
	StatusSkipped lipgloss.Style
}

// NewStyles returns the styles for a terminal, or unstyled ones when color is
// disabled.
func NewStyles(color bool) Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return Styles{
			Header1: plain, Header2: plain, Bold: plain, Muted: plain,
			Success: plain, Warning: plain, Error: plain, Info: plain,
			QueryName: plain, StatusSuccess: plain, StatusFailed: plain, StatusSkipped: plain,
		}
	}

	green := lipgloss.Color("10")
	red := lipgloss.Color("9")
	yellow := lipgloss.Color("11")
	blue := lipgloss.Color("12")
	gray := lipgloss.Color("8")

	return Styles{
		Header1:       lipgloss.NewStyle().Bold(true).Underline(true),
		Header2:       lipgloss.NewStyle().Bold(true).Foreground(blue),
		Bold:          lipgloss.NewStyle().Bold(true),
		Muted:         lipgloss.NewStyle().Foreground(gray),
		Success:       lipgloss.NewStyle().Foreground(green),
		Warning:       lipgloss.NewStyle().Foreground(yellow),
		Error:         lipgloss.NewStyle().Foreground(red).Bold(true),
		Info:          lipgloss.NewStyle().Foreground(blue),
		QueryName:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		StatusSuccess: lipgloss.NewStyle().Foreground(green),
		StatusFailed:  lipgloss.NewStyle().Foreground(red),
		StatusSkipped: lipgloss.NewStyle().Foreground(gray),
	}
}
