package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"ngp/internal/engine"
)

func RunBoard(ctx context.Context, svc *engine.Service, revealTarget bool, out io.Writer) error {
	m := newBoardModel(ctx, svc, revealTarget)
	p := tea.NewProgram(m, tea.WithOutput(out))
	_, err := p.Run()
	return err
}
