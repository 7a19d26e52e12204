package sqlstore_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"testing"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-gateway/core"
	gatewaymigrations "github.com/goliatone/go-gateway/migrations"
	sqlstore "github.com/goliatone/go-gateway/store/sql"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "go-gateway-tests"
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:gateway-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{
		driver: "sqlite3",
		server: dsn,
	}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	_, err = gatewaymigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != gatewaymigrations.DialectSQLite {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, gatewaymigrations.WithValidationTargets(gatewaymigrations.DialectSQLite))
	if err != nil {
		_ = client.Close()
		t.Fatalf("register migrations: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	return client, func() {
		_ = client.Close()
	}
}

func seedClient(t *testing.T, client *persistence.Client, id string, name string, role string) {
	t.Helper()
	_, err := client.DB().ExecContext(
		context.Background(),
		"INSERT INTO gateway_clients (id, name, role, scope) VALUES (?, ?, ?, '[]')",
		id, name, role,
	)
	if err != nil {
		t.Fatalf("seed client %s: %v", name, err)
	}
}

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	for _, table := range []string{"gateway_clients", "gateway_users", "gateway_tokens", "gateway_locations"} {
		var tableName string
		if err := client.DB().NewRaw(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
			table,
		).Scan(context.Background(), &tableName); err != nil {
			t.Fatalf("query sqlite master: %v", err)
		}
		if tableName != table {
			t.Fatalf("expected %s table, got %q", table, tableName)
		}
	}
}

func TestTokenStore_RoundTripAndSiblingPruning(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	seedClient(t, client, "client_1", "github", "provider")

	refreshID := uuid.NewString()
	staleID := uuid.NewString()
	freshID := uuid.NewString()

	tokens := factory.TokenStore()
	refresh, err := tokens.CreateToken(ctx, core.Token{
		ID:            refreshID,
		Type:          core.TokenTypeRefresh,
		Value:         "refresh-value",
		LinkedTokenID: staleID,
		Scope:         []string{"github.repos"},
		ClientID:      "client_1",
		ClientRole:    core.ClientRoleProvider,
		ClientName:    "github",
		UserID:        "user_1",
	})
	if err != nil {
		t.Fatalf("create refresh token: %v", err)
	}
	if refresh.LinkedTokenID != staleID {
		t.Fatalf("expected linked token id round trip, got %q", refresh.LinkedTokenID)
	}

	for i, id := range []string{staleID, freshID} {
		if _, err := tokens.CreateToken(ctx, core.Token{
			ID:            id,
			Type:          core.TokenTypeBearer,
			Value:         fmt.Sprintf("bearer-value-%d", i),
			LinkedTokenID: refreshID,
			Scope:         []string{"github.repos"},
			ClientID:      "client_1",
			ClientRole:    core.ClientRoleProvider,
			ClientName:    "github",
			UserID:        "user_1",
		}); err != nil {
			t.Fatalf("create bearer %s: %v", id, err)
		}
	}

	found, err := tokens.FindTokenByValue(ctx, "bearer-value-1")
	if err != nil {
		t.Fatalf("find token by value: %v", err)
	}
	if found.ID != freshID {
		t.Fatalf("expected fresh bearer %s, got %q", freshID, found.ID)
	}
	if len(found.Scope) != 1 || found.Scope[0] != "github.repos" {
		t.Fatalf("expected scope round trip, got %#v", found.Scope)
	}

	pruned, err := tokens.DeleteSiblingBearers(ctx, refreshID, freshID)
	if err != nil {
		t.Fatalf("delete sibling bearers: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected 1 pruned sibling, got %d", pruned)
	}
	if _, err := tokens.GetToken(ctx, staleID); !errors.Is(err, core.ErrTokenNotFound) {
		t.Fatalf("expected stale bearer gone, got %v", err)
	}

	listed, err := tokens.ListUserTokens(ctx, "user_1")
	if err != nil {
		t.Fatalf("list user tokens: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected refresh plus surviving bearer, got %d", len(listed))
	}
}

func TestTokenStore_DeleteExpiredLeavesOpenEndedTokens(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	seedClient(t, client, "client_1", "dashboard", "consumer")

	tokens := factory.TokenStore()
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expiredID := uuid.NewString()
	foreverID := uuid.NewString()

	fixtures := []core.Token{
		{ID: expiredID, Type: core.TokenTypeBearer, Value: "v1", ClientID: "client_1", ExpiresAt: &past},
		{ID: uuid.NewString(), Type: core.TokenTypeBearer, Value: "v2", ClientID: "client_1", ExpiresAt: &future},
		{ID: foreverID, Type: core.TokenTypeBearer, Value: "v3", ClientID: "client_1"},
	}
	for _, fixture := range fixtures {
		if _, err := tokens.CreateToken(ctx, fixture); err != nil {
			t.Fatalf("create token %s: %v", fixture.ID, err)
		}
	}

	reaped, err := tokens.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if reaped != 1 {
		t.Fatalf("expected 1 reaped token, got %d", reaped)
	}
	if _, err := tokens.GetToken(ctx, expiredID); !errors.Is(err, core.ErrTokenNotFound) {
		t.Fatalf("expected expired token gone, got %v", err)
	}
	if _, err := tokens.GetToken(ctx, foreverID); err != nil {
		t.Fatalf("expected open ended token to survive: %v", err)
	}
}

func TestLocationStore_SaveFindAndList(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}

	locations := factory.LocationStore()
	saved, err := locations.SaveLocation(ctx, core.Location{
		Locator:  "gateway.example.com/reports",
		Driver:   "http",
		Auth:     "reports.read",
		Metadata: map[string]any{"forward_url": "http://internal:9000/reports"},
	})
	if err != nil {
		t.Fatalf("save location: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected generated location id")
	}

	saved.Auth = "reports.admin"
	updated, err := locations.SaveLocation(ctx, saved)
	if err != nil {
		t.Fatalf("update location: %v", err)
	}
	if updated.Auth != "reports.admin" {
		t.Fatalf("expected updated auth scope, got %q", updated.Auth)
	}

	found, err := locations.FindByLocator(ctx, "gateway.example.com/reports")
	if err != nil {
		t.Fatalf("find by locator: %v", err)
	}
	if found.ID != saved.ID {
		t.Fatalf("expected same record, got %q want %q", found.ID, saved.ID)
	}
	if forward, _ := found.Metadata["forward_url"].(string); forward != "http://internal:9000/reports" {
		t.Fatalf("expected metadata round trip, got %#v", found.Metadata)
	}

	if _, err := locations.FindByLocator(ctx, "gateway.example.com/missing"); !errors.Is(err, core.ErrLocationNotFound) {
		t.Fatalf("expected location not found, got %v", err)
	}

	listed, err := locations.ListLocations(ctx, 0, 10)
	if err != nil {
		t.Fatalf("list locations: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected single location, got %d", len(listed))
	}
}

func TestClientAndUserStores_ExpiryOverridesAndLookup(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}

	_, err = client.DB().ExecContext(ctx,
		"INSERT INTO gateway_clients (id, name, role, scope, expire_access_token_in, expire_refresh_token_in) VALUES (?, ?, ?, ?, ?, ?)",
		"client_1", "github", "provider", `["repos"]`, int64(3600), int64(-1),
	)
	if err != nil {
		t.Fatalf("seed client: %v", err)
	}
	_, err = client.DB().ExecContext(ctx,
		"INSERT INTO gateway_users (id, scope) VALUES (?, ?)",
		"user_1", `["read", "write"]`,
	)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	loaded, err := factory.ClientStore().GetClientByName(ctx, "github")
	if err != nil {
		t.Fatalf("get client by name: %v", err)
	}
	if loaded.ID != "client_1" || loaded.Role != core.ClientRoleProvider {
		t.Fatalf("unexpected client: %#v", loaded)
	}
	if loaded.ExpireAccessTokenIn == nil || *loaded.ExpireAccessTokenIn != time.Hour {
		t.Fatalf("expected 1h access expiry override, got %v", loaded.ExpireAccessTokenIn)
	}
	if loaded.ExpireRefreshTokenIn == nil || *loaded.ExpireRefreshTokenIn >= 0 {
		t.Fatalf("expected never-expire refresh override, got %v", loaded.ExpireRefreshTokenIn)
	}

	user, err := factory.UserStore().GetUser(ctx, "user_1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if len(user.Scope) != 2 || user.Scope[0] != "read" {
		t.Fatalf("expected user scope round trip, got %#v", user.Scope)
	}

	if _, err := factory.ClientStore().GetClient(ctx, "missing"); !errors.Is(err, core.ErrClientNotFound) {
		t.Fatalf("expected client not found, got %v", err)
	}
	if _, err := factory.UserStore().GetUser(ctx, "missing"); !errors.Is(err, core.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}
