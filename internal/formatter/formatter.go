// package formatter renders watchlist exports as CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// ParseFormat accepts the format names and their common file extensions.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q (expected csv, markdown, txt or json)", shared.ErrInvalidArgument, s)
	}
}

// Ext returns the file extension for f without the dot.
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Export renders export in format f.
func Export(export *models.WatchlistExport, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export, "")
	case FormatText:
		return ExportToText(export)
	case FormatJSON:
		return shared.MarshalJSON(export, true)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, f)
	}
}

// ExportToCSV converts a WatchlistExport to CSV with columns: Rank, Title, Movie ID, Added, Watched, Rating
func ExportToCSV(export *models.WatchlistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "Title", "Movie ID", "Added", "Watched", "Rating"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range export.Entries {
		record := []string{
			strconv.Itoa(e.Rank),
			e.MovieTitle,
			strconv.FormatInt(e.MovieID, 10),
			formatDate(&e.DateAdded),
			formatDate(e.DateWatched),
			formatRating(e.Rating),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a WatchlistExport to Markdown with an optional cover image
func ExportToMarkdown(export *models.WatchlistExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer
	w := export.Watchlist

	fmt.Fprintf(&buf, "# %s\n\n", w.Name)
	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}
	if w.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", w.Description)
	}
	fmt.Fprintf(&buf, "**Movies**: %d\n", len(export.Entries))
	fmt.Fprintf(&buf, "**Watched**: %d\n\n", watchedCount(export))

	buf.WriteString("## Movies\n\n")
	for _, e := range export.Entries {
		box := " "
		if e.Watched() {
			box = "x"
		}
		fmt.Fprintf(&buf, "%d. [%s] %s", e.Rank, box, e.MovieTitle)
		if e.Rating != nil {
			fmt.Fprintf(&buf, " (%s/100)", formatRating(e.Rating))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a WatchlistExport to plain text
func ExportToText(export *models.WatchlistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Watchlist: %s\n", export.Watchlist.Name)
	if export.Watchlist.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", export.Watchlist.Description)
	}
	fmt.Fprintf(&buf, "Movies: %d (%d watched)\n\n", len(export.Entries), watchedCount(export))

	for _, e := range export.Entries {
		line := fmt.Sprintf("%d. %s", e.Rank, e.MovieTitle)
		if e.DateWatched != nil {
			line += " - watched " + formatDate(e.DateWatched)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// DefaultFilename is the file an export is written to when no path is given.
func DefaultFilename(export *models.WatchlistExport, f Format) string {
	return fmt.Sprintf("watchlist_%d.%s", export.Watchlist.ID, f.Ext())
}

// WriteExport renders export in format f and writes it to path, defaulting to [DefaultFilename].
// It returns the path written.
func WriteExport(export *models.WatchlistExport, f Format, path string) (string, error) {
	if path == "" {
		path = DefaultFilename(export, f)
	}

	data, err := Export(export, f)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport writes {dir}/README.md and, when the watchlist has an image, {dir}/cover.jpg.
//
// The directory defaults to watchlist_{id}. A cover that fails to download is skipped.
func WriteMarkdownExport(export *models.WatchlistExport, outputDir string, logf func(string, ...any)) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = fmt.Sprintf("watchlist_%d", export.Watchlist.ID)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}

	var cover string
	if url := export.Watchlist.Image; url != "" {
		data, err := DownloadImage(url)
		if err == nil {
			path := filepath.Join(outputDir, "cover.jpg")
			err = os.WriteFile(path, data, 0644)
			if err == nil {
				cover = "cover.jpg"
				result.CoverImage = path
				result.Files = append(result.Files, path)
			}
		}
		if err != nil && logf != nil {
			logf("skipping cover image: %v", err)
		}
	}

	md, err := ExportToMarkdown(export, cover)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, md, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	result.Files = append(result.Files, mdFile)

	return result, nil
}

func watchedCount(export *models.WatchlistExport) int {
	n := 0
	for _, e := range export.Entries {
		if e.Watched() {
			n++
		}
	}
	return n
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func formatRating(r *float64) string {
	if r == nil {
		return ""
	}
	return strconv.FormatFloat(*r, 'f', 1, 64)
}
