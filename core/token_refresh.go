package core

import (
	"context"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// RefreshToken mints fresh credentials anchored at the given value. The
// value may name a refresh token directly or a bearer linked to one; the
// linked bearer resolves to its refresh token before anything else.
// Provider-role pairs relay the grant upstream and are replaced whole;
// consumer-role pairs mint a new bearer locally while the refresh
// credential the caller holds stays valid. An upstream denial leaves the
// stored pair untouched and returns a nil pair with no error so callers
// can surface the original credentials failing closed.
//
// Provider replacement order is fixed: persist the new refresh token,
// then the new bearer, then delete the stale pair. A crash at any step
// leaves at least one usable pair; stale halves that survive a crash age
// out through the reaper.
func (s *Service) RefreshToken(ctx context.Context, refreshValue string) (*TokenPair, error) {
	if s == nil || s.tokenStore == nil {
		return nil, gatewayError(
			"core: token store is not configured",
			goerrors.CategoryInternal,
			500,
			GatewayErrorInternal,
			nil,
		)
	}
	startedAt := s.clock()

	current, err := s.tokenStore.FindTokenByValue(ctx, strings.TrimSpace(refreshValue))
	if err != nil {
		s.observeOperation(ctx, startedAt, "token_refresh", err, nil)
		return nil, s.mapError(err)
	}
	if current.Type == TokenTypeBearer {
		if linked := strings.TrimSpace(current.LinkedTokenID); linked != "" {
			current, err = s.tokenStore.GetToken(ctx, linked)
			if err != nil {
				s.observeOperation(ctx, startedAt, "token_refresh", err, nil)
				return nil, s.mapError(err)
			}
		}
	}
	if current.Type != TokenTypeRefresh {
		err = gatewayError(
			"core: token "+current.ID+" is not a refresh token",
			goerrors.CategoryBadInput,
			400,
			GatewayErrorBadInput,
			map[string]any{"token_id": current.ID, "token_type": string(current.Type)},
		)
		s.observeOperation(ctx, startedAt, "token_refresh", err, nil)
		return nil, err
	}
	if current.Expired(s.clock()) {
		err = tokenExpiredError(current.ID)
		s.observeOperation(ctx, startedAt, "token_refresh", err, nil)
		return nil, err
	}

	client, err := s.loadClient(ctx, current.ClientID)
	if err != nil {
		s.observeOperation(ctx, startedAt, "token_refresh", err, nil)
		return nil, s.mapError(err)
	}

	var pair *TokenPair
	switch client.Role {
	case ClientRoleProvider:
		pair, err = s.refreshUpstream(ctx, client, current)
	case ClientRoleConsumer:
		pair, err = s.refreshLocal(ctx, current)
	default:
		pair, err = nil, nil
	}
	s.observeOperation(ctx, startedAt, "token_refresh", err, map[string]any{
		"client_id":  current.ClientID,
		"token_type": string(current.Type),
		"refreshed":  pair != nil,
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	return pair, nil
}

func (s *Service) refreshUpstream(ctx context.Context, client Client, current Token) (*TokenPair, error) {
	if s.exchanger == nil {
		return nil, gatewayError(
			"core: upstream exchanger is not configured",
			goerrors.CategoryInternal,
			500,
			GatewayErrorInternal,
			nil,
		)
	}
	wire, ok, err := s.exchanger.RefreshGrant(ctx, client, current.Value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	// The upstream is not required to rotate the refresh value; fall
	// back to the current one so the new pair always has an anchor.
	if strings.TrimSpace(wire.RefreshToken) == "" {
		wire.RefreshToken = current.Value
	}
	if strings.TrimSpace(wire.Scope) == "" {
		wire.Scope = strings.Join(current.FormalScope(), " ")
	}
	return s.replacePair(ctx, current, wire)
}

// refreshLocal mints a replacement bearer against the refresh token the
// caller already holds. The refresh record survives; the save hook
// prunes the previous bearer sharing the same refresh anchor.
func (s *Service) refreshLocal(ctx context.Context, current Token) (*TokenPair, error) {
	bearer := Token{
		ID:            uuid.NewString(),
		Type:          TokenTypeBearer,
		Value:         uuid.NewString(),
		Scope:         append([]string(nil), current.Scope...),
		UserID:        current.UserID,
		ClientID:      current.ClientID,
		ClientRole:    current.ClientRole,
		ClientName:    current.ClientName,
		LinkedTokenID: current.ID,
	}
	saved, err := s.SaveToken(ctx, bearer)
	if err != nil {
		return nil, err
	}
	refresh := current
	return &TokenPair{Access: saved, Refresh: &refresh}, nil
}

// replacePair swaps the whole pair for a provider grant the upstream
// accepted: new refresh first, new bearer second, stale halves last.
func (s *Service) replacePair(ctx context.Context, current Token, wire FormalToken) (*TokenPair, error) {
	user := User{ID: current.UserID}
	if s.userStore != nil && strings.TrimSpace(current.UserID) != "" {
		if loaded, err := s.userStore.GetUser(ctx, current.UserID); err == nil {
			user = loaded
		}
	}
	client, err := s.loadClient(ctx, current.ClientID)
	if err != nil {
		return nil, err
	}
	pair, err := s.IssueTokens(client, user, wire)
	if err != nil {
		return nil, err
	}
	saved, err := s.SaveTokenPair(ctx, pair)
	if err != nil {
		return nil, err
	}
	staleIDs := []string{current.ID}
	if linked := strings.TrimSpace(current.LinkedTokenID); linked != "" {
		staleIDs = append(staleIDs, linked)
	}
	for _, staleID := range staleIDs {
		if err := s.tokenStore.DeleteToken(ctx, staleID); err != nil && !errors.Is(err, ErrTokenNotFound) {
			s.logError(ctx, "stale token delete failed", map[string]any{
				"token_id": staleID,
				"error":    err.Error(),
			})
		}
	}
	return &saved, nil
}
