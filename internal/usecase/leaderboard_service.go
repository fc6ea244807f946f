package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/kotoba/backend/internal/domain"
)

// LeaderboardServiceConfig holds configuration for the leaderboard service
type LeaderboardServiceConfig struct {
	Size     int
	CacheTTL time.Duration
}

// LeaderboardService ranks quiz results per category with caching
type LeaderboardService struct {
	results  domain.ResultRepository
	cache    domain.CacheRepository
	size     int
	cacheTTL time.Duration

	// generations counts invalidations per category; a board read before the
	// latest invalidation is not cached.
	mu          sync.Mutex
	generations map[domain.Category]uint64
}

// NewLeaderboardService creates a new leaderboard service with dependencies
func NewLeaderboardService(
	results domain.ResultRepository,
	cache domain.CacheRepository,
	config LeaderboardServiceConfig,
) *LeaderboardService {
	size := config.Size
	if size <= 0 {
		size = 10
	}
	ttl := config.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &LeaderboardService{
		results:  results,
		cache:    cache,
		size:        size,
		cacheTTL:    ttl,
		generations: make(map[domain.Category]uint64),
	}
}

// Leaderboard returns the ranked top results of one category.
// Flow: check cache -> query results -> rank -> cache -> return
func (s *LeaderboardService) Leaderboard(ctx context.Context, rawCategory string) ([]domain.LeaderboardEntry, error) {
	category, err := domain.ParseCategory(rawCategory)
	if err != nil {
		return nil, err
	}
	return s.leaderboard(ctx, category)
}

// AllLeaderboards returns the leaderboard of every category, fetched concurrently
func (s *LeaderboardService) AllLeaderboards(ctx context.Context) (map[domain.Category][]domain.LeaderboardEntry, error) {
	boards := make([][]domain.LeaderboardEntry, len(domain.Categories))

	g, gctx := errgroup.WithContext(ctx)
	for i, category := range domain.Categories {
		g.Go(func() error {
			entries, err := s.leaderboard(gctx, category)
			if err != nil {
				return err
			}
			boards[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[domain.Category][]domain.LeaderboardEntry, len(domain.Categories))
	for i, category := range domain.Categories {
		out[category] = boards[i]
	}
	return out, nil
}

// Invalidate drops the cached leaderboard of a category
func (s *LeaderboardService) Invalidate(ctx context.Context, category domain.Category) {
	s.mu.Lock()
	s.generations[category]++
	s.mu.Unlock()

	if err := s.cache.Delete(ctx, cacheKey(category)); err != nil {
		log.Warn().Err(err).Str("component", "leaderboard").Str("category", string(category)).Msg("cache invalidation failed")
	}
}

func (s *LeaderboardService) leaderboard(ctx context.Context, category domain.Category) ([]domain.LeaderboardEntry, error) {
	key := cacheKey(category)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		if entries, ok := cached.([]domain.LeaderboardEntry); ok {
			return entries, nil
		}
	}

	s.mu.Lock()
	generation := s.generations[category]
	s.mu.Unlock()

	results, err := s.results.TopResults(ctx, category, s.size)
	if err != nil {
		return nil, fmt.Errorf("top results for %s: %w", category, err)
	}

	entries := rankResults(results)

	s.mu.Lock()
	if s.generations[category] == generation {
		if err := s.cache.Set(ctx, key, entries, s.cacheTTL); err != nil {
			// a failed cache write only costs a query next time
			log.Warn().Err(err).Str("component", "leaderboard").Msg("cache write failed")
		}
	}
	s.mu.Unlock()

	return entries, nil
}

// rankResults assigns 1-based ranks to results already ordered by the repository
func rankResults(results []domain.QuizResult) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(results))
	for i := range results {
		r := &results[i]
		entries = append(entries, domain.LeaderboardEntry{
			Rank:           i + 1,
			UserName:       r.UserName,
			Score:          r.Score,
			TotalQuestions: r.TotalQuestions,
			Percentage:     r.Percentage(),
			CompletedAt:    r.CompletedAt,
		})
	}
	return entries
}

// cacheKey format: "leaderboard:{category}"
func cacheKey(category domain.Category) string {
	return "leaderboard:" + string(category)
}
