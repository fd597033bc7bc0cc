package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/ui"
	"github.com/desertthunder/marquee/internal/watchlist"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for the account named by --email.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/marquee-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.logger = fileLogger

	db, err := r.openDatabase(ctx, cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := repositories.NewUserRepository(db).GetByEmail(ctx, cmd.String("email"))
	if err != nil {
		return fmt.Errorf("failed to find user %s: %w", cmd.String("email"), err)
	}

	engine := watchlist.New(db, shared.WithLogger(r.logger, "component", "watchlist"))
	model := ui.NewModel(ctx, engine, auth.CallerOf(user))
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
