// Package tasks runs long-running watchlist jobs with progress reporting.
//
// # Bulk Export
//
// [Exporter.BulkExport] writes every watchlist a caller owns into one directory:
//   - watchlists are loaded one at a time, paced by a rate limiter
//   - a pool of workers renders and writes each export through the formatter package
//   - failures are recorded per watchlist and never abort the run
//   - export_manifest.json summarizes the results
//
// # Progress Reporting
//
// Updates are sent as [ProgressUpdate] values on an optional channel. Sends never block; when the
// buffer is full the update is dropped.
package tasks
