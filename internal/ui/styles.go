package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorStar      = lipgloss.Color("220") // Yellow
	colorError     = lipgloss.Color("196") // Red
)

// ActiveTab style for the selected tab label.
var ActiveTab = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 2)

// InactiveTab style for other tab labels.
var InactiveTab = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 2)

// SelectedItem style for the highlighted repository name.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NormalItem style for other repository names.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// Description style for repository descriptions.
var Description = lipgloss.NewStyle().
	Foreground(colorSecondary).
	PaddingLeft(3)

// InsightText style for generated insights.
var InsightText = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Italic(true).
	PaddingLeft(3)

// StarCount style for star counts.
var StarCount = lipgloss.NewStyle().
	Foreground(colorStar)

// LanguageBadge style for the language label.
var LanguageBadge = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Background(lipgloss.Color("236")).
	Padding(0, 1).
	MarginLeft(1)

// Muted style for secondary text such as citations and empty states.
var Muted = lipgloss.NewStyle().
	Foreground(colorMuted)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for the error banner.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorError).
	Padding(0, 1)
