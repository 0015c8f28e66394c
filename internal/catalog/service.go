package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheKey = "catalog:permissions"

// RepositoryPort defines data access methods for the catalog.
type RepositoryPort interface {
	ListPermissions(ctx context.Context) ([]PermissionDescriptor, error)
}

// Service loads the permission catalog, caching it in Redis. Concurrent
// cache misses collapse into a single database load.
type Service struct {
	repo   RepositoryPort
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewService constructs a Service.
func NewService(repo RepositoryPort, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// Load returns the current catalog. An empty catalog is valid and cached
// like any other result.
func (s *Service) Load(ctx context.Context) (*Catalog, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var descriptors []PermissionDescriptor
			if err := json.Unmarshal(raw, &descriptors); err == nil {
				return New(descriptors), nil
			}
		} else if !errors.Is(err, redis.Nil) && s.logger != nil {
			s.logger.Warn("catalog cache read", slog.Any("error", err))
		}
	}

	result, err, _ := s.group.Do(cacheKey, func() (any, error) {
		descriptors, err := s.repo.ListPermissions(ctx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if raw, err := json.Marshal(descriptors); err == nil {
				if err := s.cache.Set(ctx, cacheKey, raw, s.ttl).Err(); err != nil && s.logger != nil {
					s.logger.Warn("catalog cache write", slog.Any("error", err))
				}
			}
		}
		return descriptors, nil
	})
	if err != nil {
		return nil, err
	}
	descriptors, _ := result.([]PermissionDescriptor)
	return New(descriptors), nil
}

// Invalidate drops the cached catalog so the next Load hits the database.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey).Err(); err != nil && !errors.Is(err, redis.Nil) && s.logger != nil {
		s.logger.Warn("catalog cache invalidate", slog.Any("error", err))
	}
}
