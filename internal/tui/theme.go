package tui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Name      string
	Base      lipgloss.Style
	Border    lipgloss.Color
	Header    lipgloss.Style
	Block     lipgloss.Style
	Completed lipgloss.Style
	Locked    lipgloss.Style
	Edited    lipgloss.Style
	Event     lipgloss.Style
	Selected  lipgloss.Style
	Input     lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Dim       lipgloss.Style
	Highlight lipgloss.Style
}

var Themes = map[string]Theme{
	"default": {
		Name:      "Default",
		Base:      lipgloss.NewStyle().Margin(1, 2),
		Border:    lipgloss.Color("63"),
		Header:    lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		Block:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Completed: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true),
		Locked:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Edited:    lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		Event:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
		Selected:  lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		Input:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("205")).Padding(0, 1).Width(60),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("63")),
	},
	"dracula": {
		Name:      "Dracula",
		Base:      lipgloss.NewStyle().Margin(1, 2),
		Border:    lipgloss.Color("62"),                                            // Purple
		Header:    lipgloss.NewStyle().Foreground(lipgloss.Color("50")).Bold(true), // Cyan
		Block:     lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Completed: lipgloss.NewStyle().Foreground(lipgloss.Color("60")).Strikethrough(true),
		Locked:    lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true), // Yellow
		Edited:    lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
		Event:     lipgloss.NewStyle().Foreground(lipgloss.Color("60")).Italic(true),
		Selected:  lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true), // Pink
		Input:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("50")).Padding(0, 1).Width(60),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("215")).Bold(true), // Orange
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("60")),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("62")),
	},
}

// CurrentTheme holds the active theme.
var CurrentTheme = Themes["default"]

func SetTheme(name string) {
	if t, ok := Themes[name]; ok {
		CurrentTheme = t
	}
}
