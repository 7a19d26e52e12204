package core

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidTokenType  = errors.New("core: invalid token type")
	ErrInvalidClientRole = errors.New("core: invalid client role")
	ErrTokenNotFound     = errors.New("core: token not found")
	ErrClientNotFound    = errors.New("core: client not found")
	ErrUserNotFound      = errors.New("core: user not found")
	ErrLocationNotFound  = errors.New("core: location not found")
)

type TokenType string

const (
	TokenTypeBearer  TokenType = "bearer"
	TokenTypeRefresh TokenType = "refresh"
)

type ClientRole string

const (
	ClientRoleProvider ClientRole = "provider"
	ClientRoleConsumer ClientRole = "consumer"
)

// DefaultOperateScope is the scope required to operate on a resolved
// location when the location record does not name one.
const DefaultOperateScope = "rpc.getResponse"

// Token is a scoped credential. A bearer token and its refresh token
// reference each other through LinkedTokenID; the pair is never longer
// than two records.
type Token struct {
	ID            string
	Type          TokenType
	Value         string
	LinkedTokenID string
	Scope         []string
	ExpiresAt     *time.Time
	UserID        string
	ClientID      string
	ClientRole    ClientRole
	ClientName    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (t Token) Validate() error {
	switch t.Type {
	case TokenTypeBearer, TokenTypeRefresh:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTokenType, t.Type)
	}
	if strings.TrimSpace(t.Value) == "" {
		return fmt.Errorf("core: token value is required")
	}
	if strings.TrimSpace(t.ClientID) == "" {
		return fmt.Errorf("core: token client id is required")
	}
	return nil
}

// Expired reports whether the token is past its expiry. Tokens with no
// expiry never expire.
func (t Token) Expired(now time.Time) bool {
	if t.ExpiresAt == nil {
		return false
	}
	return !now.Before(*t.ExpiresAt)
}

// FormalScope returns the scope list as callers see it on the wire.
// Provider-role tokens store scopes namespaced as "{clientName}.{scope}";
// the prefix is stripped on read-back. Consumer-role scopes are verbatim.
func (t Token) FormalScope() []string {
	if t.ClientRole != ClientRoleProvider || strings.TrimSpace(t.ClientName) == "" {
		return append([]string(nil), t.Scope...)
	}
	prefix := t.ClientName + "."
	out := make([]string, 0, len(t.Scope))
	for _, scope := range t.Scope {
		out = append(out, strings.TrimPrefix(scope, prefix))
	}
	return out
}

// Client is an application allowed to request or provide tokens. A
// provider-role client relays issuance and refresh to an upstream OAuth
// endpoint; a consumer-role client mints tokens locally.
//
// The expiry overrides are tri-state: nil means "use the configured
// default", a negative duration means "never expires", anything else
// replaces the default.
type Client struct {
	ID                   string
	Name                 string
	Role                 ClientRole
	Scope                []string
	ExpireAccessTokenIn  *time.Duration
	ExpireRefreshTokenIn *time.Duration
	RedirectURI          string
	TokenURI             string
	UpstreamClientID     string
	UpstreamClientSecret string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("core: client name is required")
	}
	switch c.Role {
	case ClientRoleProvider, ClientRoleConsumer:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidClientRole, c.Role)
	}
}

// User is a principal owning zero or more tokens. Tokens hold a weak
// reference to it by identifier.
type User struct {
	ID        string
	Scope     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location is the resolvable unit: a canonical locator plus the driver
// that handles it and the scope required to operate on it.
type Location struct {
	ID        string
	Locator   string
	Driver    string
	Auth      string
	Metadata  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuthScope returns the scope required to operate on the location,
// falling back to DefaultOperateScope.
func (l Location) AuthScope() string {
	if scope := strings.TrimSpace(l.Auth); scope != "" {
		return scope
	}
	return DefaultOperateScope
}

// ResolveQuery describes an incoming locator: the effective scheme, host
// and path of a request, or a raw locator string submitted over RPC.
type ResolveQuery struct {
	Scheme string
	Host   string
	Path   string
	Raw    string
}

// Locator renders the canonical locator form used for matching against
// stored locations.
func (q ResolveQuery) Locator() string {
	if raw := strings.TrimSpace(q.Raw); raw != "" {
		return raw
	}
	scheme := strings.TrimSpace(strings.ToLower(q.Scheme))
	if scheme == "" {
		scheme = "http"
	}
	host := strings.TrimSpace(strings.ToLower(q.Host))
	path := strings.TrimSpace(q.Path)
	if path == "" {
		path = "/"
	}
	return scheme + "://" + host + path
}

// Fingerprint is the deterministic cache key for the query.
func (q ResolveQuery) Fingerprint() string {
	sum := sha256.Sum256([]byte(q.Locator()))
	return hex.EncodeToString(sum[:])
}

// TokenPair is the result of issuing tokens from a wire-format grant:
// always an access token, optionally a linked refresh token.
type TokenPair struct {
	Access  Token
	Refresh *Token
}

// Response is the protocol-neutral result of a dispatched operation.
// Both transports map it onto their own surface.
type Response struct {
	Status  int
	Headers map[string]string
	Body    []byte
}
