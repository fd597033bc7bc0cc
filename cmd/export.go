package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/tasks"
	"github.com/desertthunder/marquee/internal/watchlist"
	"github.com/urfave/cli/v3"
)

// Export writes one of a user's watchlists to disk, or all of them with --all. Markdown exports get their own directory
// with the watchlist image saved next to README.md.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	watchlistID := int64(cmd.Int("watchlist"))
	if !cmd.Bool("all") && watchlistID <= 0 {
		return fmt.Errorf("%w: --watchlist must be a positive id (or use --all)", shared.ErrInvalidArgument)
	}

	db, err := r.openDatabase(ctx, cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := repositories.NewUserRepository(db).GetByEmail(ctx, cmd.String("user"))
	if err != nil {
		return fmt.Errorf("failed to find user %s: %w", cmd.String("user"), err)
	}

	engine := watchlist.New(db, shared.WithLogger(r.logger, "component", "watchlist"))
	if cmd.Bool("all") {
		return r.bulkExport(ctx, engine, auth.CallerOf(user), tasks.BulkExportOpts{
			Format:     format,
			OutputDir:  cmd.String("output"),
			NumWorkers: int(cmd.Int("workers")),
		})
	}

	export, err := engine.Export(ctx, auth.CallerOf(user), watchlistID)
	if err != nil {
		return err
	}
	r.logger.Info("exporting watchlist", "watchlist_id", watchlistID, "entries", len(export.Entries), "format", format)

	if format == formatter.FormatMarkdown {
		result, err := formatter.WriteMarkdownExport(export, cmd.String("output"), r.logger.Warnf)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %q to %s\n", export.Watchlist.Name, result.Directory)
		for _, f := range result.Files {
			r.writePlain("  %s\n", f)
		}
		return nil
	}

	path, err := formatter.WriteExport(export, format, cmd.String("output"))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Exported %q (%d movies) to %s\n", export.Watchlist.Name, len(export.Entries), path)
}

// bulkExport runs a [tasks.Exporter] and prints its progress as it arrives.
func (r *Runner) bulkExport(ctx context.Context, engine *watchlist.Engine, caller auth.Caller, opts tasks.BulkExportOpts) error {
	exporter := tasks.NewExporter(engine, shared.WithLogger(r.logger, "component", "export"))

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := exporter.BulkExport(ctx, progress, caller, opts)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("Exported %d of %d watchlists to %s", result.SuccessfulExports, result.TotalWatchlists, result.OutputDirectory)
	if result.FailedExports > 0 {
		return fmt.Errorf("%d watchlists failed to export (see %s)", result.FailedExports, result.ManifestPath)
	}
	return nil
}
