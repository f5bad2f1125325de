package reports

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const dashboardCacheKey = "reports:dashboard"

// Service serves the read-only report projections. Dashboard counts are hit
// on every page of every role, so they are cached in Redis for a short TTL;
// a cache outage degrades to direct queries, never to an error.
type Service struct {
	repo   Repository
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewService builds Service. cache may be nil to disable caching.
func NewService(repo Repository, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// Dashboard returns the per-stage pending counts.
func (s *Service) Dashboard(ctx context.Context) (DashboardCounts, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, dashboardCacheKey).Bytes()
		if err == nil {
			var counts DashboardCounts
			if err := json.Unmarshal(raw, &counts); err == nil {
				return counts, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("dashboard cache read", slog.Any("error", err))
		}
	}
	counts, err := s.repo.DashboardCounts(ctx)
	if err != nil {
		return DashboardCounts{}, err
	}
	if s.cache != nil {
		if raw, err := json.Marshal(counts); err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, raw, s.ttl).Err(); err != nil {
				s.logger.Warn("dashboard cache write", slog.Any("error", err))
			}
		}
	}
	return counts, nil
}

// InvalidateDashboard drops the cached counts after a stage transition.
func (s *Service) InvalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey).Err(); err != nil {
		s.logger.Warn("dashboard cache invalidate", slog.Any("error", err))
	}
}

// StockLevels returns every product's baseline against its live quantity.
func (s *Service) StockLevels(ctx context.Context) ([]StockLevel, error) {
	return s.repo.StockLevels(ctx)
}

// OrderSummary returns order counts and value grouped by each stage.
func (s *Service) OrderSummary(ctx context.Context) (OrderSummary, error) {
	return s.repo.OrderSummary(ctx)
}
