package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-gateway/core"
)

type LocationStore struct {
	db   *bun.DB
	repo repository.Repository[*locationRecord]
}

func (s *LocationStore) GetLocation(ctx context.Context, id string) (core.Location, error) {
	if s == nil || s.repo == nil {
		return core.Location{}, fmt.Errorf("sqlstore: location store is not configured")
	}
	record, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if isNotFound(err) {
			return core.Location{}, fmt.Errorf("%w: %s", core.ErrLocationNotFound, id)
		}
		return core.Location{}, err
	}
	return record.toDomain(), nil
}

func (s *LocationStore) FindByLocator(ctx context.Context, locator string) (core.Location, error) {
	if s == nil || s.repo == nil {
		return core.Location{}, fmt.Errorf("sqlstore: location store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("locator", "=", strings.TrimSpace(locator)),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.Location{}, err
	}
	if len(records) == 0 {
		return core.Location{}, fmt.Errorf("%w: %s", core.ErrLocationNotFound, locator)
	}
	return records[0].toDomain(), nil
}

func (s *LocationStore) SaveLocation(ctx context.Context, location core.Location) (core.Location, error) {
	if s == nil || s.repo == nil {
		return core.Location{}, fmt.Errorf("sqlstore: location store is not configured")
	}
	if strings.TrimSpace(location.Locator) == "" {
		return core.Location{}, fmt.Errorf("sqlstore: location locator is required")
	}
	if strings.TrimSpace(location.Driver) == "" {
		return core.Location{}, fmt.Errorf("sqlstore: location driver is required")
	}
	now := time.Now().UTC()
	record := newLocationRecord(location, now)
	if record.ID == "" {
		record.ID = uuid.NewString()
		created, err := s.repo.Create(ctx, record)
		if err != nil {
			return core.Location{}, err
		}
		return created.toDomain(), nil
	}
	updated, err := s.repo.Update(ctx, record, repository.UpdateByID(record.ID))
	if err != nil {
		return core.Location{}, err
	}
	return updated.toDomain(), nil
}

func (s *LocationStore) ListLocations(ctx context.Context, offset int, limit int) ([]core.Location, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: location store is not configured")
	}
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	records, _, err := s.repo.List(ctx,
		repository.OrderBy("created_at ASC"),
		repository.SelectPaginate(limit, offset),
	)
	if err != nil {
		return nil, err
	}
	locations := make([]core.Location, 0, len(records))
	for _, record := range records {
		locations = append(locations, record.toDomain())
	}
	return locations, nil
}
