package gateway

import (
	"context"
	"io"
	"testing"

	gatewaycommand "github.com/goliatone/go-gateway/command"
	"github.com/goliatone/go-gateway/core"
	gatewayquery "github.com/goliatone/go-gateway/query"
)

func TestNewFacade_WiresCommandsAndQueries(t *testing.T) {
	svc := &stubFacadeService{}

	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	commands := facade.Commands()
	if commands.SaveToken == nil || commands.RefreshToken == nil || commands.Dispatch == nil {
		t.Fatalf("expected command handlers to be wired")
	}
	queries := facade.Queries()
	if queries.WireToken == nil || queries.ResolveLocation == nil || queries.ListLocations == nil {
		t.Fatalf("expected query handlers to be wired")
	}
}

func TestFacade_CommandAndQueryDelegation(t *testing.T) {
	svc := &stubFacadeService{}

	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	if err := facade.Commands().RevokeToken.Execute(context.Background(), gatewaycommand.RevokeTokenMessage{
		TokenID: "tok_1",
	}); err != nil {
		t.Fatalf("execute revoke command: %v", err)
	}
	if svc.lastRevokedID != "tok_1" {
		t.Fatalf("unexpected revoke delegation payload %q", svc.lastRevokedID)
	}

	wire, err := facade.Queries().WireToken.Query(context.Background(), gatewayquery.WireTokenMessage{
		BearerID: "tok_1",
	})
	if err != nil {
		t.Fatalf("query wire token: %v", err)
	}
	if wire.AccessToken != "access-1" {
		t.Fatalf("unexpected wire token result: %#v", wire)
	}

	location, err := facade.Queries().ResolveLocation.Query(context.Background(), gatewayquery.ResolveLocationMessage{
		Query: core.ResolveQuery{Host: "gateway.example.com", Path: "/reports"},
	})
	if err != nil {
		t.Fatalf("query resolve location: %v", err)
	}
	if location == nil || location.Driver != "http" {
		t.Fatalf("unexpected resolve result: %#v", location)
	}
}

func TestFacade_ResolvesStoreBackedReaders(t *testing.T) {
	store := &stubFacadeLocationStore{}
	svc := &stubFacadeService{locations: store}

	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	if err := facade.Commands().SaveLocation.Execute(context.Background(), gatewaycommand.SaveLocationMessage{
		Location: core.Location{Locator: "gateway.example.com/reports", Driver: "http"},
	}); err != nil {
		t.Fatalf("execute save location: %v", err)
	}
	if !store.saved {
		t.Fatalf("expected save to hit the service location store")
	}

	if _, err := facade.Queries().ListLocations.Query(context.Background(), gatewayquery.ListLocationsMessage{Limit: 10}); err != nil {
		t.Fatalf("query list locations: %v", err)
	}
	if !store.listed {
		t.Fatalf("expected list to hit the service location store")
	}
}

func TestNewFacade_RequiresService(t *testing.T) {
	facade, err := NewFacade(nil)
	if err == nil {
		t.Fatalf("expected nil service error")
	}
	if facade != nil {
		t.Fatalf("expected nil facade on error")
	}
}

type stubFacadeService struct {
	lastRevokedID string
	locations     core.LocationStore
}

func (s *stubFacadeService) SaveToken(_ context.Context, token core.Token) (core.Token, error) {
	return token, nil
}

func (s *stubFacadeService) RefreshToken(context.Context, string) (*core.TokenPair, error) {
	return &core.TokenPair{Access: core.Token{ID: "tok_new"}}, nil
}

func (s *stubFacadeService) RevokeToken(_ context.Context, id string) error {
	s.lastRevokedID = id
	return nil
}

func (s *stubFacadeService) ReapExpiredTokens(context.Context) (int, error) {
	return 0, nil
}

func (s *stubFacadeService) Dispatch(context.Context, string, core.Location, io.Reader) (core.Response, error) {
	return core.Response{Status: 200}, nil
}

func (s *stubFacadeService) WireToken(context.Context, string) (core.FormalToken, error) {
	return core.FormalToken{AccessToken: "access-1", TokenType: "bearer"}, nil
}

func (s *stubFacadeService) ResolveLocation(context.Context, core.ResolveQuery) (*core.Location, error) {
	return &core.Location{ID: "loc_1", Locator: "gateway.example.com/reports", Driver: "http"}, nil
}

func (s *stubFacadeService) LocationStore() core.LocationStore {
	return s.locations
}

type stubFacadeLocationStore struct {
	saved  bool
	listed bool
}

func (s *stubFacadeLocationStore) GetLocation(context.Context, string) (core.Location, error) {
	return core.Location{}, core.ErrLocationNotFound
}

func (s *stubFacadeLocationStore) FindByLocator(context.Context, string) (core.Location, error) {
	return core.Location{}, core.ErrLocationNotFound
}

func (s *stubFacadeLocationStore) SaveLocation(_ context.Context, location core.Location) (core.Location, error) {
	s.saved = true
	location.ID = "loc_1"
	return location, nil
}

func (s *stubFacadeLocationStore) ListLocations(context.Context, int, int) ([]core.Location, error) {
	s.listed = true
	return nil, nil
}
