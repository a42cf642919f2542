package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ngp theme (CLI + TUI).
// Kept intentionally small: reusable styles and a few emojis.

const (
	IconSkill   = "⚡"
	IconMission = "🎯"
	IconDone    = "✅"
	IconSparkle = "✨"
	IconTrophy  = "🏆"
	IconCoin    = "🪙"
	IconCycle   = "🔁"
	IconJournal = "📓"
	IconCapsule = "📦"
	IconCompass = "🧭"
	IconToken   = "🎟️"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Dim   = lipgloss.NewStyle().Foreground(cMuted)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
	BadgeTarget  = lipgloss.NewStyle().Bold(true).Foreground(cAccent).Render("TARGET HIT")
	BadgeToken   = lipgloss.NewStyle().Bold(true).Foreground(cGood).Render("REFLECTION TOKEN")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// CycleStateText colors a cycle state for lists and the status screen.
func CycleStateText(state string) string {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "active":
		return Good.Render("active")
	case "not_ready":
		return Warn.Render("not ready")
	case "awaiting_rollover":
		return H2.Render("awaiting rollover")
	default:
		return Muted.Render(state)
	}
}

// PriorityText colors a navigator priority.
func PriorityText(priority string) string {
	switch strings.ToLower(strings.TrimSpace(priority)) {
	case "high":
		return Bad.Render("high")
	case "normal":
		return Warn.Render("normal")
	default:
		return Muted.Render("low")
	}
}

// XPBar renders a fixed-width progress bar, e.g. [#####-----].
func XPBar(value, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	filled := int(float64(value) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// DifficultyText renders difficulty as filled pips, e.g. ●●●○○.
func DifficultyText(d int) string {
	if d < 1 {
		d = 1
	}
	if d > 5 {
		d = 5
	}
	return strings.Repeat("●", d) + strings.Repeat("○", 5-d)
}
