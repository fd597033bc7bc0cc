// Package models defines domain entities for the marquee watchlist and rating service.
//
// Persistent entities implement [Model] and are stored by the repositories package:
//   - [User] : accounts, either password-based or linked to an external provider
//   - [Movie] : catalog entries with a [Visibility] and tag relations
//   - [Tag] : genres, cast, studios, publishers and platforms, distinguished by [TagKind]
//   - [Watchlist] : a user-owned, named, ranked collection of movies
//   - [WatchlistEntry] : one movie inside a watchlist with its rank and watched date
//   - [RatingEntry] : one user's rating and review of one movie
//
// Read-side shapes such as [ChartBucket], [RatingSummary] and [LeaderboardRow] are produced by queries
// and never written back.
package models
