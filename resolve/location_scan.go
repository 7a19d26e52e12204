package resolve

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/goliatone/go-gateway/core"
)

const defaultScanBatchSize = 200

// LocationScanStrategy resolves against the location store. It tries an
// exact locator lookup first, then scans stored locations in bounded
// batches treating each stored locator as a match pattern, so a single
// record can claim a family of locators.
type LocationScanStrategy struct {
	store     core.LocationStore
	batchSize int
}

type ScanOption func(*LocationScanStrategy)

func WithBatchSize(size int) ScanOption {
	return func(s *LocationScanStrategy) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

func NewLocationScanStrategy(store core.LocationStore, options ...ScanOption) *LocationScanStrategy {
	strategy := &LocationScanStrategy{store: store, batchSize: defaultScanBatchSize}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(strategy)
	}
	return strategy
}

func (s *LocationScanStrategy) Name() string { return "location-scan" }

func (s *LocationScanStrategy) Resolve(ctx context.Context, query core.ResolveQuery) (*core.Location, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	locator := query.Locator()

	location, err := s.store.FindByLocator(ctx, locator)
	if err == nil {
		return &location, nil
	}
	if !errors.Is(err, core.ErrLocationNotFound) {
		return nil, err
	}

	for offset := 0; ; offset += s.batchSize {
		batch, err := s.store.ListLocations(ctx, offset, s.batchSize)
		if err != nil {
			return nil, err
		}
		for _, candidate := range batch {
			if locatorMatches(candidate.Locator, locator) {
				matched := candidate
				return &matched, nil
			}
		}
		if len(batch) < s.batchSize {
			return nil, nil
		}
	}
}

// locatorMatches treats a stored locator as a pattern when it is
// wrapped in slashes, mirroring scope grants; otherwise it must cover
// the requested locator exactly or as a path prefix.
func locatorMatches(stored string, requested string) bool {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return false
	}
	if len(stored) > 1 && strings.HasPrefix(stored, "/") && strings.HasSuffix(stored, "/") {
		body := strings.TrimSuffix(strings.TrimPrefix(stored, "/"), "/")
		pattern, err := regexp.Compile(body)
		if err != nil {
			return false
		}
		return pattern.MatchString(requested)
	}
	if stored == requested {
		return true
	}
	return strings.HasPrefix(requested, strings.TrimSuffix(stored, "/")+"/")
}

var _ core.ResolverStrategy = (*LocationScanStrategy)(nil)
