package cliui

import (
	"os"
	"sync/atomic"

	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	StepStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	KeyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	ValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	NameStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	DimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	HashStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	WarnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

	// REPL prompts
	UserPromptStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	AgentPromptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

var colorEnabled atomic.Bool

func init() {
	colorEnabled.Store(lipgloss.ColorProfile() != termenv.Ascii)
}

// SetColor turns styled output on or off for the whole process. Turning it
// on keeps the profile detected for stdout, so piped output stays plain.
func SetColor(enabled bool) {
	if !enabled || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		colorEnabled.Store(false)
		return
	}

	lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).EnvColorProfile())
	colorEnabled.Store(lipgloss.ColorProfile() != termenv.Ascii)
}

// ColorEnabled reports whether styles currently render escape sequences.
func ColorEnabled() bool {
	return colorEnabled.Load()
}

// SuccessMark is a green ✓.
func SuccessMark() string {
	return successStyle.Render("✓")
}

// FailMark is a red ✗.
func FailMark() string {
	return failStyle.Render("✗")
}

func glamourStyle() string {
	if !ColorEnabled() {
		return styles.NoTTYStyle
	}
	if lipgloss.HasDarkBackground() {
		return styles.DarkStyle
	}
	return styles.LightStyle
}
