package tui

import (
	"fmt"
	"strings"

	"ngp/internal/engine"
	"ngp/internal/storage"
	"ngp/internal/ui"
)

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	// Simple 2-column layout.
	leftW := 30
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 20 {
			leftW = 20
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	max := len(linesLeft)
	if len(linesRight) > max {
		max = len(linesRight)
	}

	var body strings.Builder
	for i := 0; i < max; i++ {
		l := ""
		r := ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.player == nil {
		return "ngp — loading…"
	}
	threshold, err := engine.XPThreshold(m.player.Level)
	if err != nil {
		threshold = m.player.XP + 1
	}
	bar := ui.XPBar(m.player.XP, threshold, 30)
	return fmt.Sprintf("ngp | %s the %s | Level %d | XP %d/%d %s | %s %d",
		m.player.DisplayName, m.player.ClassName, m.player.Level,
		m.player.XP, threshold, bar, ui.IconCoin, m.player.Coins)
}

func (m boardModel) renderSidebar() string {
	if m.player == nil {
		return "Skills\n\nLoading…"
	}
	lines := []string{"Skills"}
	if len(m.skills) == 0 {
		lines = append(lines, "(none yet)")
	}
	for _, s := range m.skills {
		lines = append(lines, renderSkill(s, m.counts[s.ID]))
		if s.CycleStart != nil && s.CycleEnd != nil {
			lines = append(lines, fmt.Sprintf("  %s %s → %s", ui.IconCycle,
				s.CycleStart.Format("Jan 2"), s.CycleEnd.Format("Jan 2")))
		}
	}
	lines = append(lines, "")
	lines = append(lines, "Keys")
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- c/space: complete")
	lines = append(lines, "- 1-5: energy filter, 0: off")
	lines = append(lines, "- t: reveal targets")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func renderSkill(s *storage.Skill, missionCount int) string {
	threshold, err := engine.XPThreshold(s.Level)
	if err != nil {
		threshold = s.XP + 1
	} else if s.IsFocus {
		threshold *= engine.FocusThresholdFactor
	}
	bar := ui.XPBar(s.XP, threshold, 12)
	focus := ""
	if s.IsFocus {
		focus = " " + ui.IconSparkle
	}
	state := ""
	if missionCount < engine.ReadinessThreshold {
		state = " " + fmt.Sprintf("(%d/%d missions)", missionCount, engine.ReadinessThreshold)
	}
	return fmt.Sprintf("- %s %s L%d %s%s%s", s.Icon, s.Name, s.Level, bar, focus, state)
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}

	targets := map[string]bool{}
	hit := map[string]bool{}
	if m.revealTarget {
		for _, s := range m.skills {
			if s.TargetMissionID != nil {
				targets[*s.TargetMissionID] = true
				if s.HitTargetInCycle {
					hit[*s.TargetMissionID] = true
				}
			}
		}
	}

	var out []string
	out = append(out, "Suggestions")
	if len(m.suggestions) == 0 {
		out = append(out, "(nothing to flag)")
	} else {
		for _, sg := range m.suggestions {
			out = append(out, fmt.Sprintf("- [%s] %s", ui.PriorityText(sg.Priority.String()), sg.Message))
		}
	}
	out = append(out, "")

	title := "Missions"
	if m.energyFilter > 0 {
		title = fmt.Sprintf("Missions (energy ≤ %d)", m.energyFilter)
	}
	out = append(out, title)

	visible := m.visibleMissions()
	if len(visible) == 0 {
		out = append(out, "(empty)")
		return strings.Join(out, "\n")
	}
	for i, ms := range visible {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		mark := ""
		if targets[ms.ID] {
			mark = " " + ui.IconMission
			if hit[ms.ID] {
				mark = " " + ui.IconDone
			}
		}
		out = append(out, fmt.Sprintf("%s%s %s e%d%s", cursor, ms.Title, ui.DifficultyText(ms.Difficulty), ms.Energy, mark))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
