package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"golang.org/x/time/rate"
)

// Source loads watchlists for export. [watchlist.Engine] satisfies it.
type Source interface {
	ListWatchlists(ctx context.Context, caller auth.Caller) ([]*models.Watchlist, error)
	Export(ctx context.Context, caller auth.Caller, watchlistID int64) (*models.WatchlistExport, error)
}

// BulkExportOpts contains configuration for bulk watchlist exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format (default: csv)
	OutputDir  string           // Base output directory (default: marquee_export_{epoch})
	NumWorkers int              // Concurrent writers (default: 5, max: 10)
	RateLimit  float64          // Exports started per second (default: 5)
}

// WatchlistExportResult is the outcome of exporting one watchlist.
type WatchlistExportResult struct {
	WatchlistID int64    `json:"watchlistId"`
	Name        string   `json:"name"`
	Entries     int      `json:"entries"`
	Success     bool     `json:"success"`
	Files       []string `json:"files,omitempty"`
	Error       error    `json:"-"`
	Message     string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export and is written as the manifest.
type BulkExportResult struct {
	Format            formatter.Format        `json:"format"`
	ExportedAt        time.Time               `json:"exportedAt"`
	TotalWatchlists   int                     `json:"totalWatchlists"`
	SuccessfulExports int                     `json:"successfulExports"`
	FailedExports     int                     `json:"failedExports"`
	OutputDirectory   string                  `json:"outputDirectory"`
	ManifestPath      string                  `json:"-"`
	Results           []WatchlistExportResult `json:"results"`
}

// exportJob is a loaded watchlist, or the error that stopped it loading.
type exportJob struct {
	watchlist *models.Watchlist
	export    *models.WatchlistExport
	err       error
}

// Exporter writes every watchlist a caller owns to disk.
type Exporter struct {
	source Source
	logger *log.Logger
}

// NewExporter creates an [Exporter] reading from source.
func NewExporter(source Source, logger *log.Logger) *Exporter {
	return &Exporter{source: source, logger: logger}
}

// BulkExport exports all of the caller's watchlists concurrently and writes export_manifest.json
// into the output directory.
//
// Loading runs on one goroutine paced by a rate limiter, since markdown exports download cover images.
// A watchlist that fails to load or write is recorded as failed and the rest carry on.
func (e *Exporter) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, caller auth.Caller, opts BulkExportOpts) (*BulkExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatCSV
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("marquee_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	lists, err := e.source.ListWatchlists(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlists: %w", err)
	}
	sendProgress(prog, fetchingWatchlistsUpdate(len(lists)))

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Format:          opts.Format,
		ExportedAt:      time.Now().UTC(),
		TotalWatchlists: len(lists),
		OutputDirectory: opts.OutputDir,
		Results:         make([]WatchlistExportResult, 0, len(lists)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan exportJob, len(lists))
	results := make(chan WatchlistExportResult, len(lists))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	loaded := make(chan struct{})
	go func() {
		defer close(loaded)
		defer close(jobs)
		for i, w := range lists {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			export, err := e.source.Export(ctx, caller, w.ID)
			if err != nil {
				jobs <- exportJob{watchlist: w, err: fmt.Errorf("failed to load watchlist: %w", err)}
				continue
			}

			jobs <- exportJob{watchlist: w, export: export}
			sendProgress(prog, exportingUpdate(i+1, len(lists), w.Name))
		}
	}()

	// only workers send on results
	go func() {
		<-loaded
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(lists), res))
		} else {
			result.FailedExports++
			res.Message = res.Error.Error()
			e.logger.Warn("watchlist export failed", "watchlist_id", res.WatchlistID, "error", res.Error)
			sendProgress(prog, exportFailedUpdate(completed, len(lists), res))
		}
		result.Results = append(result.Results, res)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	sort.Slice(result.Results, func(i, j int) bool {
		return result.Results[i].WatchlistID < result.Results[j].WatchlistID
	})

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

func (e *Exporter) exportWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan exportJob, results chan<- WatchlistExportResult, opts BulkExportOpts) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if job.err != nil {
			results <- WatchlistExportResult{WatchlistID: job.watchlist.ID, Name: job.watchlist.Name, Error: job.err}
			continue
		}
		results <- e.exportSingle(job, opts)
	}
}

// exportSingle writes one watchlist. Markdown gets a directory per watchlist; other formats one file.
func (e *Exporter) exportSingle(j exportJob, opts BulkExportOpts) WatchlistExportResult {
	result := WatchlistExportResult{
		WatchlistID: j.watchlist.ID,
		Name:        j.watchlist.Name,
		Entries:     len(j.export.Entries),
	}

	if opts.Format == formatter.FormatMarkdown {
		dir := filepath.Join(opts.OutputDir, fmt.Sprintf("watchlist_%d", j.watchlist.ID))
		md, err := formatter.WriteMarkdownExport(j.export, dir, e.logger.Warnf)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = md.Files
		result.Success = true
		return result
	}

	path := filepath.Join(opts.OutputDir, formatter.DefaultFilename(j.export, opts.Format))
	written, err := formatter.WriteExport(j.export, opts.Format, path)
	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return result
	}
	result.Files = []string{written}
	result.Success = true
	return result
}
