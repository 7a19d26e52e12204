package sqlstore

import (
	"context"
	"fmt"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-gateway/core"
)

type UserStore struct {
	db   *bun.DB
	repo repository.Repository[*userRecord]
}

func (s *UserStore) GetUser(ctx context.Context, id string) (core.User, error) {
	if s == nil || s.repo == nil {
		return core.User{}, fmt.Errorf("sqlstore: user store is not configured")
	}
	record, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if isNotFound(err) {
			return core.User{}, fmt.Errorf("%w: %s", core.ErrUserNotFound, id)
		}
		return core.User{}, err
	}
	return record.toDomain(), nil
}
