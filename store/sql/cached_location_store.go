package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-gateway/core"
)

const locationCacheKeyPrefix = "go-gateway::location::v1"

// CachedLocationStore layers a cache service over locator and id reads.
// Writes invalidate both keys so resolution never serves a location that
// was just re-pointed at a different driver.
type CachedLocationStore struct {
	base  core.LocationStore
	cache repositorycache.CacheService
}

func NewCachedLocationStore(base core.LocationStore, cacheService repositorycache.CacheService) (*CachedLocationStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base location store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: location cache service is required")
	}
	return &CachedLocationStore{base: base, cache: cacheService}, nil
}

func locationCacheKey(kind string, value string) string {
	return strings.Join([]string{
		locationCacheKeyPrefix,
		kind,
		url.PathEscape(strings.TrimSpace(value)),
	}, "::")
}

func (s *CachedLocationStore) GetLocation(ctx context.Context, id string) (core.Location, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Location{}, fmt.Errorf("sqlstore: cached location store is not configured")
	}
	return repositorycache.GetOrFetch(ctx, s.cache, locationCacheKey("id", id), func(ctx context.Context) (core.Location, error) {
		return s.base.GetLocation(ctx, id)
	})
}

func (s *CachedLocationStore) FindByLocator(ctx context.Context, locator string) (core.Location, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Location{}, fmt.Errorf("sqlstore: cached location store is not configured")
	}
	return repositorycache.GetOrFetch(ctx, s.cache, locationCacheKey("locator", locator), func(ctx context.Context) (core.Location, error) {
		return s.base.FindByLocator(ctx, locator)
	})
}

func (s *CachedLocationStore) SaveLocation(ctx context.Context, location core.Location) (core.Location, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Location{}, fmt.Errorf("sqlstore: cached location store is not configured")
	}
	saved, err := s.base.SaveLocation(ctx, location)
	if err != nil {
		return core.Location{}, err
	}
	s.cache.Delete(ctx, locationCacheKey("id", saved.ID))
	s.cache.Delete(ctx, locationCacheKey("locator", saved.Locator))
	return saved, nil
}

// ListLocations always goes to the base store; batch scans are already
// bounded and caching pages would mask newly saved records.
func (s *CachedLocationStore) ListLocations(ctx context.Context, offset int, limit int) ([]core.Location, error) {
	if s == nil || s.base == nil {
		return nil, fmt.Errorf("sqlstore: cached location store is not configured")
	}
	return s.base.ListLocations(ctx, offset, limit)
}

var _ core.LocationStore = (*CachedLocationStore)(nil)
