package tui

import (
	"context"
	"errors"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/takaishi/yoink/logging"
)

// Run drives the interactive session until the user confirms an action or
// quits. The UI draws on stderr so stdout stays free for the print action.
func Run(ctx context.Context, opts Options) (Outcome, error) {
	log := logging.For("tui")
	m := New(opts)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithOutput(os.Stderr),
		tea.WithInputTTY(),
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	opts.Orchestrator.Cancel()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return Outcome{Cancelled: true}, nil
		}
		log.Error("tui_failed", slog.String("error", err.Error()))
		return Outcome{}, err
	}

	out := final.(*Model).Outcome()
	log.Info("session_ended",
		slog.String("action", out.Action.String()),
		slog.Bool("cancelled", out.Cancelled),
		slog.String("candidate", out.Candidate.String()),
	)
	return out, nil
}
