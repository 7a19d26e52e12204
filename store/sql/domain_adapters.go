package sqlstore

import (
	"strings"
	"time"

	"github.com/goliatone/go-gateway/core"
)

func newTokenRecord(token core.Token, now time.Time) *tokenRecord {
	record := &tokenRecord{
		ID:         strings.TrimSpace(token.ID),
		TokenType:  string(token.Type),
		Value:      token.Value,
		Scope:      append([]string(nil), token.Scope...),
		ClientID:   token.ClientID,
		ClientRole: string(token.ClientRole),
		ClientName: token.ClientName,
		CreatedAt:  token.CreatedAt,
		UpdatedAt:  token.UpdatedAt,
	}
	if record.Scope == nil {
		record.Scope = []string{}
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = now
	}
	if linked := strings.TrimSpace(token.LinkedTokenID); linked != "" {
		record.LinkedTokenID = &linked
	}
	if userID := strings.TrimSpace(token.UserID); userID != "" {
		record.UserID = &userID
	}
	if token.ExpiresAt != nil {
		expiresAt := *token.ExpiresAt
		record.ExpiresAt = &expiresAt
	}
	return record
}

func (r *tokenRecord) toDomain() core.Token {
	if r == nil {
		return core.Token{}
	}
	token := core.Token{
		ID:         r.ID,
		Type:       core.TokenType(r.TokenType),
		Value:      r.Value,
		Scope:      append([]string(nil), r.Scope...),
		ClientID:   r.ClientID,
		ClientRole: core.ClientRole(r.ClientRole),
		ClientName: r.ClientName,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.LinkedTokenID != nil {
		token.LinkedTokenID = *r.LinkedTokenID
	}
	if r.UserID != nil {
		token.UserID = *r.UserID
	}
	if r.ExpiresAt != nil {
		expiresAt := *r.ExpiresAt
		token.ExpiresAt = &expiresAt
	}
	return token
}

func (r *clientRecord) toDomain() core.Client {
	if r == nil {
		return core.Client{}
	}
	client := core.Client{
		ID:                   r.ID,
		Name:                 r.Name,
		Role:                 core.ClientRole(r.Role),
		Scope:                append([]string(nil), r.Scope...),
		RedirectURI:          r.RedirectURI,
		TokenURI:             r.TokenURI,
		UpstreamClientID:     r.UpstreamClientID,
		UpstreamClientSecret: r.UpstreamClientSecret,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
	client.ExpireAccessTokenIn = expiryOverrideFromSeconds(r.ExpireAccessTokenIn)
	client.ExpireRefreshTokenIn = expiryOverrideFromSeconds(r.ExpireRefreshTokenIn)
	return client
}

// expiryOverrideFromSeconds maps the stored nullable seconds column onto
// the tri-state override: NULL means default, -1 means never expires.
func expiryOverrideFromSeconds(seconds *int64) *time.Duration {
	if seconds == nil {
		return nil
	}
	if *seconds < 0 {
		never := -1 * time.Second
		return &never
	}
	override := time.Duration(*seconds) * time.Second
	return &override
}

func (r *userRecord) toDomain() core.User {
	if r == nil {
		return core.User{}
	}
	return core.User{
		ID:        r.ID,
		Scope:     append([]string(nil), r.Scope...),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func newLocationRecord(location core.Location, now time.Time) *locationRecord {
	record := &locationRecord{
		ID:        strings.TrimSpace(location.ID),
		Locator:   strings.TrimSpace(location.Locator),
		Driver:    strings.TrimSpace(location.Driver),
		Auth:      strings.TrimSpace(location.Auth),
		Metadata:  copyAnyMap(location.Metadata),
		CreatedAt: location.CreatedAt,
		UpdatedAt: now,
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	return record
}

func (r *locationRecord) toDomain() core.Location {
	if r == nil {
		return core.Location{}
	}
	return core.Location{
		ID:        r.ID,
		Locator:   r.Locator,
		Driver:    r.Driver,
		Auth:      r.Auth,
		Metadata:  copyAnyMap(r.Metadata),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func copyAnyMap(values map[string]any) map[string]any {
	copied := make(map[string]any, len(values))
	for key, value := range values {
		copied[key] = value
	}
	return copied
}
