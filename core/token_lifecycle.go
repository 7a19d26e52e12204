package core

import (
	"context"
	"errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// IssueTokens builds the stored pair for a wire-format grant. This is
// construction only; SaveTokenPair persists the result. The bearer and
// the refresh token cross-link before either touches the store so a
// partially persisted pair is never silently unlinked.
func (s *Service) IssueTokens(client Client, user User, wire FormalToken) (TokenPair, error) {
	if strings.TrimSpace(wire.AccessToken) == "" {
		return TokenPair{}, goerrors.NewValidation("core: access token value is required")
	}
	if err := client.Validate(); err != nil {
		return TokenPair{}, s.mapError(err)
	}

	now := s.clock()
	access := Token{
		ID:         uuid.NewString(),
		Type:       TokenTypeBearer,
		Value:      strings.TrimSpace(wire.AccessToken),
		Scope:      wire.Scopes(),
		UserID:     user.ID,
		ClientID:   client.ID,
		ClientRole: client.Role,
		ClientName: client.Name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if wire.ExpiresIn > 0 {
		expiresAt := now.Add(time.Duration(wire.ExpiresIn) * time.Second)
		access.ExpiresAt = &expiresAt
	}

	pair := TokenPair{Access: access}
	if refreshValue := strings.TrimSpace(wire.RefreshToken); refreshValue != "" {
		refresh := Token{
			ID:         uuid.NewString(),
			Type:       TokenTypeRefresh,
			Value:      refreshValue,
			Scope:      wire.Scopes(),
			UserID:     user.ID,
			ClientID:   client.ID,
			ClientRole: client.Role,
			ClientName: client.Name,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		pair.Access.LinkedTokenID = refresh.ID
		refresh.LinkedTokenID = pair.Access.ID
		pair.Refresh = &refresh
	}
	return pair, nil
}

// SaveTokenPair persists a constructed pair, refresh token first so the
// bearer's link never points at a record that does not exist yet.
func (s *Service) SaveTokenPair(ctx context.Context, pair TokenPair) (TokenPair, error) {
	if pair.Refresh != nil {
		saved, err := s.SaveToken(ctx, *pair.Refresh)
		if err != nil {
			return TokenPair{}, err
		}
		pair.Refresh = &saved
		pair.Access.LinkedTokenID = saved.ID
	}
	access, err := s.SaveToken(ctx, pair.Access)
	if err != nil {
		return TokenPair{}, err
	}
	pair.Access = access
	return pair, nil
}

// SaveToken runs the create hooks around the store write: the before
// hook stamps client identity, namespaces provider scopes, computes
// expiry and guards consumer issuance; the after hook prunes sibling
// bearers sharing the same refresh token.
func (s *Service) SaveToken(ctx context.Context, token Token) (Token, error) {
	if s == nil || s.tokenStore == nil {
		return Token{}, gatewayError(
			"core: token store is not configured",
			goerrors.CategoryInternal,
			500,
			GatewayErrorInternal,
			nil,
		)
	}
	startedAt := s.clock()

	prepared, err := s.beforeCreateToken(ctx, token)
	if err != nil {
		s.observeOperation(ctx, startedAt, "token_save", err, map[string]any{
			"token_type": string(token.Type),
			"client_id":  token.ClientID,
		})
		return Token{}, s.mapError(err)
	}

	created, err := s.tokenStore.CreateToken(ctx, prepared)
	if err == nil {
		err = s.afterCreateToken(ctx, created)
	}
	s.observeOperation(ctx, startedAt, "token_save", err, map[string]any{
		"token_type": string(prepared.Type),
		"client_id":  prepared.ClientID,
	})
	if err != nil {
		return Token{}, s.mapError(err)
	}
	return created, nil
}

func (s *Service) beforeCreateToken(ctx context.Context, token Token) (Token, error) {
	token.Value = strings.TrimSpace(token.Value)
	token.ClientID = strings.TrimSpace(token.ClientID)
	if err := token.Validate(); err != nil {
		return Token{}, err
	}
	if strings.TrimSpace(token.ID) == "" {
		token.ID = uuid.NewString()
	}

	client, err := s.loadClient(ctx, token.ClientID)
	if err != nil {
		return Token{}, err
	}
	token.ClientName = client.Name
	token.ClientRole = client.Role

	switch client.Role {
	case ClientRoleProvider:
		token.Scope = namespaceScopes(client.Name, token.Scope)
	case ClientRoleConsumer:
		// The scope guard only applies to user-owned tokens; a token
		// without an owning user ends its lifecycle after stamping.
		if token.Type == TokenTypeBearer && strings.TrimSpace(token.UserID) != "" {
			if err := s.guardConsumerScopes(ctx, token, client); err != nil {
				return Token{}, err
			}
		}
	}

	if token.ExpiresAt == nil {
		token.ExpiresAt = s.computeExpiry(client, token.Type)
	}

	now := s.clock()
	if token.CreatedAt.IsZero() {
		token.CreatedAt = now
	}
	token.UpdatedAt = now
	return token, nil
}

func (s *Service) afterCreateToken(ctx context.Context, token Token) error {
	if token.Type != TokenTypeBearer || strings.TrimSpace(token.LinkedTokenID) == "" {
		return nil
	}
	pruned, err := s.tokenStore.DeleteSiblingBearers(ctx, token.LinkedTokenID, token.ID)
	if err != nil {
		return err
	}
	if pruned > 0 {
		s.logInfo(ctx, "pruned sibling bearer tokens", map[string]any{
			"token_id": token.ID,
			"pruned":   pruned,
		})
	}
	return nil
}

// guardConsumerScopes refuses consumer issuance when a requested scope
// is covered neither by the user or client grants nor by an existing
// token the user already holds.
func (s *Service) guardConsumerScopes(ctx context.Context, token Token, client Client) error {
	var userGrant []string
	if s.userStore != nil && strings.TrimSpace(token.UserID) != "" {
		if user, err := s.userStore.GetUser(ctx, token.UserID); err == nil {
			userGrant = user.Scope
		}
	}
	_, unauthorized := PartitionScopes(token.Scope, userGrant, client.Scope)
	if len(unauthorized) == 0 {
		return nil
	}

	var existing []Token
	if s.tokenStore != nil && strings.TrimSpace(token.UserID) != "" {
		existing, _ = s.tokenStore.ListUserTokens(ctx, token.UserID)
	}
	for _, scope := range unauthorized {
		if backedByExistingToken(existing, scope, s.clock()) {
			continue
		}
		return noTokenForScopeError(scope)
	}
	return nil
}

func backedByExistingToken(tokens []Token, scope string, now time.Time) bool {
	for _, token := range tokens {
		if token.Type != TokenTypeBearer || token.Expired(now) {
			continue
		}
		if ScopeMatches(token.FormalScope(), scope) {
			return true
		}
	}
	return false
}

// computeExpiry resolves the effective expiry for a token with no wire
// expiry. The client override is tri-state: nil falls back to the
// configured default, a negative duration means the token never expires.
func (s *Service) computeExpiry(client Client, tokenType TokenType) *time.Time {
	var override *time.Duration
	var fallback time.Duration
	switch tokenType {
	case TokenTypeRefresh:
		override = client.ExpireRefreshTokenIn
		fallback = s.config.Token.RefreshTokenTTL()
	default:
		override = client.ExpireAccessTokenIn
		fallback = s.config.Token.AccessTokenTTL()
	}

	ttl := fallback
	if override != nil {
		if *override < 0 {
			return nil
		}
		ttl = *override
	}
	expiresAt := s.clock().Add(ttl)
	return &expiresAt
}

func (s *Service) loadClient(ctx context.Context, clientID string) (Client, error) {
	if s == nil || s.clientStore == nil {
		return Client{}, gatewayError(
			"core: client store is not configured",
			goerrors.CategoryInternal,
			500,
			GatewayErrorInternal,
			nil,
		)
	}
	client, err := s.clientStore.GetClient(ctx, clientID)
	if err != nil {
		return Client{}, err
	}
	return client, nil
}

func namespaceScopes(clientName string, scopes []string) []string {
	clientName = strings.TrimSpace(clientName)
	if clientName == "" {
		return scopes
	}
	prefix := clientName + "."
	out := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" {
			continue
		}
		if strings.HasPrefix(scope, prefix) {
			out = append(out, scope)
			continue
		}
		out = append(out, prefix+scope)
	}
	return out
}

// RevokeToken deletes a token and its linked counterpart. A missing
// counterpart is not an error; revocation is idempotent on the pair.
func (s *Service) RevokeToken(ctx context.Context, id string) error {
	if s == nil || s.tokenStore == nil {
		return gatewayError(
			"core: token store is not configured",
			goerrors.CategoryInternal,
			500,
			GatewayErrorInternal,
			nil,
		)
	}
	startedAt := s.clock()
	token, err := s.tokenStore.GetToken(ctx, strings.TrimSpace(id))
	if err != nil {
		s.observeOperation(ctx, startedAt, "token_revoke", err, map[string]any{"token_id": id})
		return s.mapError(err)
	}
	if linked := strings.TrimSpace(token.LinkedTokenID); linked != "" {
		if err := s.tokenStore.DeleteToken(ctx, linked); err != nil && !errors.Is(err, ErrTokenNotFound) {
			s.observeOperation(ctx, startedAt, "token_revoke", err, map[string]any{"token_id": id})
			return s.mapError(err)
		}
	}
	err = s.tokenStore.DeleteToken(ctx, token.ID)
	s.observeOperation(ctx, startedAt, "token_revoke", err, map[string]any{
		"token_id":   token.ID,
		"token_type": string(token.Type),
	})
	if err != nil {
		return s.mapError(err)
	}
	return nil
}

// ReapExpiredTokens deletes every token past its expiry and reports how
// many were removed.
func (s *Service) ReapExpiredTokens(ctx context.Context) (int, error) {
	if s == nil || s.tokenStore == nil {
		return 0, gatewayError(
			"core: token store is not configured",
			goerrors.CategoryInternal,
			500,
			GatewayErrorInternal,
			nil,
		)
	}
	startedAt := s.clock()
	reaped, err := s.tokenStore.DeleteExpired(ctx, s.clock())
	s.observeOperation(ctx, startedAt, "token_reap", err, map[string]any{"reaped": reaped})
	if err != nil {
		return 0, s.mapError(err)
	}
	return reaped, nil
}
