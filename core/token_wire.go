package core

import (
	"context"
	"math"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// FormalToken is the wire shape of an issued grant, matching the OAuth
// token endpoint response body.
type FormalToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}

func (t FormalToken) Scopes() []string {
	return strings.Fields(t.Scope)
}

// WireToken renders the stored pair anchored at the given token id back
// into wire form. Either half of the pair resolves; a refresh id follows
// its link to the bearer. The scope comes back de-namespaced, and the
// remaining lifetime is rounded to whole seconds.
func (s *Service) WireToken(ctx context.Context, tokenID string) (FormalToken, error) {
	if s == nil || s.tokenStore == nil {
		return FormalToken{}, gatewayError(
			"core: token store is not configured",
			goerrors.CategoryInternal,
			500,
			GatewayErrorInternal,
			nil,
		)
	}
	bearer, err := s.tokenStore.GetToken(ctx, strings.TrimSpace(tokenID))
	if err != nil {
		return FormalToken{}, s.mapError(err)
	}
	if bearer.Type == TokenTypeRefresh {
		if linked := strings.TrimSpace(bearer.LinkedTokenID); linked != "" {
			bearer, err = s.tokenStore.GetToken(ctx, linked)
			if err != nil {
				return FormalToken{}, s.mapError(err)
			}
		}
	}
	if bearer.Type != TokenTypeBearer {
		return FormalToken{}, gatewayError(
			"core: token "+bearer.ID+" does not resolve to a bearer token",
			goerrors.CategoryBadInput,
			400,
			GatewayErrorBadInput,
			map[string]any{"token_id": bearer.ID, "token_type": string(bearer.Type)},
		)
	}

	wire := FormalToken{
		AccessToken: bearer.Value,
		Scope:       strings.Join(bearer.FormalScope(), " "),
		TokenType:   "bearer",
	}
	if bearer.ExpiresAt != nil {
		wire.ExpiresIn = roundedSecondsUntil(s.clock(), *bearer.ExpiresAt)
	}
	if bearer.LinkedTokenID != "" {
		refresh, err := s.tokenStore.GetToken(ctx, bearer.LinkedTokenID)
		if err == nil {
			wire.RefreshToken = refresh.Value
		}
	}
	return wire, nil
}

func roundedSecondsUntil(now time.Time, expiresAt time.Time) int64 {
	remaining := expiresAt.Sub(now).Seconds()
	if remaining <= 0 {
		return 0
	}
	return int64(math.Round(remaining))
}
