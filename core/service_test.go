package core

import (
	"context"
	"testing"
	"time"
)

func TestAuthorizeToken_ScopeAndExpiry(t *testing.T) {
	clock := newFixedClock(time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC))
	svc := newTestService(t, WithNow(clock.Now))
	ctx := context.Background()

	expiresAt := clock.Now().Add(time.Hour)
	token := Token{
		ID:        "tok_1",
		Type:      TokenTypeBearer,
		Value:     "acc",
		Scope:     []string{"rpc.getResponse"},
		ExpiresAt: &expiresAt,
		ClientID:  "client_p",
	}

	if err := svc.AuthorizeToken(ctx, token, DefaultOperateScope); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if err := svc.AuthorizeToken(ctx, token, "admin.users"); !IsScopeNotAuthorized(err) {
		t.Fatalf("expected scope-not-authorized error, got %v", err)
	}

	clock.Advance(2 * time.Hour)
	if err := svc.AuthorizeToken(ctx, token, DefaultOperateScope); !hasTextCode(err, GatewayErrorTokenExpired) {
		t.Fatalf("expected token-expired error, got %v", err)
	}
}

func TestAuthorizeToken_ProviderScopeIsDeNamespaced(t *testing.T) {
	svc := newTestService(t)
	token := Token{
		ID:         "tok_1",
		Type:       TokenTypeBearer,
		Value:      "acc",
		Scope:      []string{"github.rpc.getResponse"},
		ClientID:   "client_p",
		ClientRole: ClientRoleProvider,
		ClientName: "github",
	}
	if err := svc.AuthorizeToken(context.Background(), token, DefaultOperateScope); err != nil {
		t.Fatalf("authorize: %v", err)
	}
}

func TestAuthorize_RequiresContextToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.Authorize(ctx, DefaultOperateScope); !hasTextCode(err, GatewayErrorUnauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}

	token := Token{ID: "tok_1", Type: TokenTypeBearer, Value: "acc", Scope: []string{DefaultOperateScope}, ClientID: "c"}
	if err := svc.Authorize(WithToken(ctx, token), DefaultOperateScope); err != nil {
		t.Fatalf("authorize with context token: %v", err)
	}
}

func TestResolveLocation_NilResolverIsPassThrough(t *testing.T) {
	svc := newTestService(t)
	location, err := svc.ResolveLocation(context.Background(), ResolveQuery{Raw: "https://example.com/x"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if location != nil {
		t.Fatalf("expected nil location without a resolver, got %#v", location)
	}
}

func TestNewService_ConfigLayering(t *testing.T) {
	svc, err := NewService(Config{
		HTTP: HTTPConfig{AuthPathPrefix: "/oauth"},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if svc.AuthPathPrefix() != "/oauth" {
		t.Fatalf("expected runtime override, got %q", svc.AuthPathPrefix())
	}
	cfg := svc.Config()
	if cfg.Token.AccessTokenTTLSeconds != DefaultConfig().Token.AccessTokenTTLSeconds {
		t.Fatalf("expected default token ttl to survive layering, got %d", cfg.Token.AccessTokenTTLSeconds)
	}
	if cfg.ServiceName != "gateway" {
		t.Fatalf("expected default service name, got %q", cfg.ServiceName)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	cfg.Resolver.BatchSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected zero batch size to fail validation")
	}
}
