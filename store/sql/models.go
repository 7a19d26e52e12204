package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type tokenRecord struct {
	bun.BaseModel `bun:"table:gateway_tokens,alias:gt"`

	ID            string     `bun:"id,pk"`
	TokenType     string     `bun:"token_type,notnull"`
	Value         string     `bun:"value,notnull"`
	LinkedTokenID *string    `bun:"linked_token_id"`
	Scope         []string   `bun:"scope,type:jsonb,notnull"`
	ExpiresAt     *time.Time `bun:"expires_at,nullzero"`
	UserID        *string    `bun:"user_id"`
	ClientID      string     `bun:"client_id,notnull"`
	ClientRole    string     `bun:"client_role,notnull"`
	ClientName    string     `bun:"client_name"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type clientRecord struct {
	bun.BaseModel `bun:"table:gateway_clients,alias:gc"`

	ID                   string    `bun:"id,pk"`
	Name                 string    `bun:"name,notnull,unique"`
	Role                 string    `bun:"role,notnull"`
	Scope                []string  `bun:"scope,type:jsonb,notnull"`
	ExpireAccessTokenIn  *int64    `bun:"expire_access_token_in"`
	ExpireRefreshTokenIn *int64    `bun:"expire_refresh_token_in"`
	RedirectURI          string    `bun:"redirect_uri"`
	TokenURI             string    `bun:"token_uri"`
	UpstreamClientID     string    `bun:"upstream_client_id"`
	UpstreamClientSecret string    `bun:"upstream_client_secret"`
	CreatedAt            time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt            time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type userRecord struct {
	bun.BaseModel `bun:"table:gateway_users,alias:gu"`

	ID        string    `bun:"id,pk"`
	Scope     []string  `bun:"scope,type:jsonb,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type locationRecord struct {
	bun.BaseModel `bun:"table:gateway_locations,alias:gl"`

	ID        string         `bun:"id,pk"`
	Locator   string         `bun:"locator,notnull,unique"`
	Driver    string         `bun:"driver,notnull"`
	Auth      string         `bun:"auth"`
	Metadata  map[string]any `bun:"metadata,type:jsonb,notnull"`
	CreatedAt time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
