package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-gateway/core"
)

type TokenStore struct {
	db   *bun.DB
	repo repository.Repository[*tokenRecord]
}

func (s *TokenStore) GetToken(ctx context.Context, id string) (core.Token, error) {
	if s == nil || s.repo == nil {
		return core.Token{}, fmt.Errorf("sqlstore: token store is not configured")
	}
	record, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if isNotFound(err) {
			return core.Token{}, fmt.Errorf("%w: %s", core.ErrTokenNotFound, id)
		}
		return core.Token{}, err
	}
	return record.toDomain(), nil
}

func (s *TokenStore) FindTokenByValue(ctx context.Context, value string) (core.Token, error) {
	if s == nil || s.repo == nil {
		return core.Token{}, fmt.Errorf("sqlstore: token store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("value", "=", strings.TrimSpace(value)),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.Token{}, err
	}
	if len(records) == 0 {
		return core.Token{}, fmt.Errorf("%w: value lookup", core.ErrTokenNotFound)
	}
	return records[0].toDomain(), nil
}

func (s *TokenStore) ListUserTokens(ctx context.Context, userID string) ([]core.Token, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: token store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("user_id", "=", strings.TrimSpace(userID)),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}
	tokens := make([]core.Token, 0, len(records))
	for _, record := range records {
		tokens = append(tokens, record.toDomain())
	}
	return tokens, nil
}

func (s *TokenStore) CreateToken(ctx context.Context, token core.Token) (core.Token, error) {
	if s == nil || s.repo == nil {
		return core.Token{}, fmt.Errorf("sqlstore: token store is not configured")
	}
	if err := token.Validate(); err != nil {
		return core.Token{}, err
	}
	record := newTokenRecord(token, time.Now().UTC())
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return core.Token{}, err
	}
	return created.toDomain(), nil
}

func (s *TokenStore) DeleteToken(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: token store is not configured")
	}
	result, err := s.db.NewDelete().
		Model((*tokenRecord)(nil)).
		Where("id = ?", strings.TrimSpace(id)).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: %s", core.ErrTokenNotFound, id)
	}
	return nil
}

// DeleteSiblingBearers is a filtered delete so concurrent saves against
// the same refresh lineage stay idempotent: whichever save runs last
// still leaves exactly one live bearer.
func (s *TokenStore) DeleteSiblingBearers(ctx context.Context, linkedTokenID string, keepID string) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: token store is not configured")
	}
	result, err := s.db.NewDelete().
		Model((*tokenRecord)(nil)).
		Where("token_type = ?", string(core.TokenTypeBearer)).
		Where("linked_token_id = ?", strings.TrimSpace(linkedTokenID)).
		Where("id != ?", strings.TrimSpace(keepID)).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(affected), nil
}

func (s *TokenStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: token store is not configured")
	}
	result, err := s.db.NewDelete().
		Model((*tokenRecord)(nil)).
		Where("expires_at IS NOT NULL").
		Where("expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(affected), nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
