package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ngp/internal/engine"
	"ngp/internal/navigator"
	"ngp/internal/storage"
	"ngp/internal/ui"
)

type boardModel struct {
	ctx context.Context
	svc *engine.Service

	width  int
	height int

	player      *storage.Player
	skills      []*storage.Skill
	missions    []*storage.Mission
	counts      map[string]int
	suggestions []navigator.Suggestion

	revealTarget bool
	energyFilter int // 0 = off, 1-5 = show missions at or below

	selected int
	lastLog  string
	loading  bool
	err      error
}

type loadedMsg struct {
	player      *storage.Player
	skills      []*storage.Skill
	missions    []*storage.Mission
	counts      map[string]int
	suggestions []navigator.Suggestion
	err         error
}

type completedMsg struct {
	res *engine.CompleteResult
	err error
}

func newBoardModel(ctx context.Context, svc *engine.Service, revealTarget bool) boardModel {
	return boardModel{
		ctx:          ctx,
		svc:          svc,
		revealTarget: revealTarget,
		loading:      true,
		lastLog:      "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		// Roll any expired cycles before reading, so windows on screen are
		// current.
		if _, err := m.svc.RefreshCycles(m.ctx); err != nil {
			return loadedMsg{err: err}
		}
		p, err := m.svc.PlayerRepo().GetOrCreateMain(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		skills, err := m.svc.SkillRepo().List(m.ctx, false)
		if err != nil {
			return loadedMsg{err: err}
		}
		missions, err := m.svc.MissionRepo().List(m.ctx, false)
		if err != nil {
			return loadedMsg{err: err}
		}
		counts, err := m.svc.MissionCountsBySkill(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		snap, err := navigator.Collect(m.ctx, m.svc)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{
			player:      p,
			skills:      skills,
			missions:    missions,
			counts:      counts,
			suggestions: navigator.Analyze(snap),
		}
	}
}

func (m boardModel) completeCmd(id string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteMission(m.ctx, id)
		return completedMsg{res: res, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.player = msg.player
		m.skills = msg.skills
		m.missions = msg.missions
		m.counts = msg.counts
		m.suggestions = msg.suggestions
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = completionLog(msg.res)
		return m, m.loadCmd()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m boardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r":
		m.loading = true
		m.lastLog = "Refreshing…"
		return m, m.loadCmd()
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "j":
		if m.selected < len(m.visibleMissions())-1 {
			m.selected++
		}
		return m, nil
	case "t":
		m.revealTarget = !m.revealTarget
		if m.revealTarget {
			m.lastLog = "Targets revealed."
		} else {
			m.lastLog = "Targets hidden."
		}
		return m, nil
	case "0":
		m.energyFilter = 0
		m.selected = 0
		m.lastLog = "Energy filter off."
		return m, nil
	case "1", "2", "3", "4", "5":
		n, _ := strconv.Atoi(key)
		m.energyFilter = n
		m.selected = 0
		m.lastLog = fmt.Sprintf("Showing missions up to energy %d.", n)
		return m, nil
	case "c", " ":
		visible := m.visibleMissions()
		if m.selected < 0 || m.selected >= len(visible) {
			return m, nil
		}
		target := visible[m.selected]
		m.lastLog = fmt.Sprintf("Completing %q…", target.Title)
		return m, m.completeCmd(target.ID)
	}
	return m, nil
}

// visibleMissions applies the energy filter. Low-energy days show only the
// missions the player can actually face.
func (m boardModel) visibleMissions() []*storage.Mission {
	if m.energyFilter == 0 {
		return m.missions
	}
	var out []*storage.Mission
	for _, ms := range m.missions {
		if ms.Energy <= m.energyFilter {
			out = append(out, ms)
		}
	}
	return out
}

func completionLog(res *engine.CompleteResult) string {
	parts := []string{fmt.Sprintf("Completed %q: +%d XP, +%d coins", res.MissionTitle, res.PlayerXP+res.CyclePlayerXP, res.Coins)}
	for _, a := range res.SkillAwards {
		if a.TargetHit {
			parts = append(parts, ui.BadgeTarget+" "+a.SkillName)
		}
		if a.LevelAfter > a.LevelBefore {
			parts = append(parts, fmt.Sprintf("%s %s → L%d", ui.BadgeLevelUp, a.SkillName, a.LevelAfter))
		}
	}
	if res.PlayerLevelUp() {
		parts = append(parts, fmt.Sprintf("%s player → L%d", ui.BadgeLevelUp, res.PlayerLevelAfter))
	}
	if res.ReflectionToken {
		parts = append(parts, ui.BadgeToken)
	}
	return strings.Join(parts, "  ")
}
