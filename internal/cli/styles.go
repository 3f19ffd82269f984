package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	secondaryColor = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	textColor      = lipgloss.Color("#F9FAFB") // Light gray
)

// Accent color per settings theme
var themeColors = map[string]lipgloss.Color{
	"dark":  lipgloss.Color("#7C3AED"), // Purple
	"white": lipgloss.Color("#374151"), // Slate
	"mint":  lipgloss.Color("#10B981"), // Mint
	"sky":   lipgloss.Color("#0EA5E9"), // Sky
	"peach": lipgloss.Color("#FB923C"), // Peach
}

// styles are the lipgloss styles for one theme
type styles struct {
	title       lipgloss.Style
	header      lipgloss.Style
	label       lipgloss.Style
	value       lipgloss.Style
	muted       lipgloss.Style
	tag         lipgloss.Style
	success     lipgloss.Style
	warning     lipgloss.Style
	err         lipgloss.Style
	card        lipgloss.Style
	barFull     lipgloss.Style
	barEmpty    lipgloss.Style
	tableHeader lipgloss.Style
}

func newStyles(theme string) styles {
	primary, ok := themeColors[theme]
	if !ok {
		primary = themeColors["dark"]
	}
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(primary).
			Padding(0, 1),
		label: lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(20),
		value: lipgloss.NewStyle().
			Bold(true),
		muted: lipgloss.NewStyle().
			Foreground(mutedColor),
		tag: lipgloss.NewStyle().
			Foreground(primary),
		success: lipgloss.NewStyle().
			Foreground(secondaryColor),
		warning: lipgloss.NewStyle().
			Foreground(warningColor),
		err: lipgloss.NewStyle().
			Foreground(errorColor),
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1),
		barFull: lipgloss.NewStyle().
			Foreground(secondaryColor),
		barEmpty: lipgloss.NewStyle().
			Foreground(mutedColor),
		tableHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
	}
}

// metric renders a label/value row
func (s styles) metric(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Left, s.label.Render(label), s.value.Render(value))
}

// progressBar renders a bar filled to percent (0..1)
func (s styles) progressBar(percent float64, width int) string {
	filled := min(max(int(percent*float64(width)), 0), width)
	return s.barFull.Render(strings.Repeat("█", filled)) +
		s.barEmpty.Render(strings.Repeat("░", width-filled))
}

// tags renders a tag set as a comma-separated list
func (s styles) tags(values []string) string {
	if len(values) == 0 {
		return s.muted.Render("-")
	}
	return s.tag.Render(strings.Join(values, ", "))
}
