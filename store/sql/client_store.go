package sqlstore

import (
	"context"
	"fmt"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-gateway/core"
)

type ClientStore struct {
	db   *bun.DB
	repo repository.Repository[*clientRecord]
}

func (s *ClientStore) GetClient(ctx context.Context, id string) (core.Client, error) {
	if s == nil || s.repo == nil {
		return core.Client{}, fmt.Errorf("sqlstore: client store is not configured")
	}
	record, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if isNotFound(err) {
			return core.Client{}, fmt.Errorf("%w: %s", core.ErrClientNotFound, id)
		}
		return core.Client{}, err
	}
	return record.toDomain(), nil
}

func (s *ClientStore) GetClientByName(ctx context.Context, name string) (core.Client, error) {
	if s == nil || s.repo == nil {
		return core.Client{}, fmt.Errorf("sqlstore: client store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("name", "=", strings.TrimSpace(name)),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.Client{}, err
	}
	if len(records) == 0 {
		return core.Client{}, fmt.Errorf("%w: %s", core.ErrClientNotFound, name)
	}
	return records[0].toDomain(), nil
}
