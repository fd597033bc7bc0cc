package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/marquee/internal/cache"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// openCache connects to the configured redis cache. A disabled or unreachable cache is an error here,
// unlike at server startup where the API falls back to running uncached.
func (r *Runner) openCache(ctx context.Context, cmd *cli.Command) (cache.Store, error) {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if !config.Cache.Enabled {
		return nil, fmt.Errorf("%w: cache.enabled is false", shared.ErrServiceUnavailable)
	}
	if config.Cache.Addr == cache.MemoryAddr {
		return nil, fmt.Errorf("%w: the memory cache lives inside the server process", shared.ErrServiceUnavailable)
	}

	store := cache.Open(ctx, config.Cache, r.logger)
	if _, ok := store.(cache.Nop); ok {
		return nil, fmt.Errorf("%w: redis at %s", shared.ErrServiceUnavailable, config.Cache.Addr)
	}
	return store, nil
}

// CacheStatus reports whether redis is reachable and the current leaderboard generation.
func (r *Runner) CacheStatus(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openCache(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	gen, err := cache.Counter(ctx, store, cache.LeaderboardGeneration)
	if err != nil {
		return err
	}
	r.writePlain("✓ Cache reachable at %s\n", r.config.Cache.Addr)
	return r.writePlain("Leaderboard generation: %d\n", gen)
}

// CacheInvalidate orphans every cached leaderboard page by bumping the generation counter.
func (r *Runner) CacheInvalidate(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openCache(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	gen, err := store.Incr(ctx, cache.LeaderboardGeneration)
	if err != nil {
		return err
	}
	r.logger.Info("leaderboards invalidated", "generation", gen)
	return r.writePlain("✓ Leaderboard cache invalidated (generation %d)\n", gen)
}
