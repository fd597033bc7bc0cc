// Package repositories implements SQLite persistence for all domain entities.
//
// Every repository wraps a [DBTX], which both *sql.DB and *sql.Tx satisfy, so services compose several
// repositories inside one transaction with [WithTx].
//
// Key Implementations:
//   - [UserRepository] : accounts with email lookups
//   - [MovieRepository] : catalog movies and their tag relations
//   - [TagRepository] : genres, cast, studios, publishers and platforms with find-or-create by name
//   - [WatchlistRepository] : user-owned watchlists
//   - [EntryRepository] : ranked watchlist membership, reordering and watched state
//   - [RatingRepository] : rating upserts, aggregates, chart rows and leaderboards
//
// Driver errors are classified into the sentinels from the shared package: unique violations become
// ErrConflict, foreign key violations and missing rows become ErrNotFound, and busy/locked databases
// or expired contexts become ErrTransient.
package repositories
