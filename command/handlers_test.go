package command

import (
	"context"
	"fmt"
	"io"
	"testing"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-gateway/core"
)

type stubMutatingService struct {
	saveTokenFn    func(ctx context.Context, token core.Token) (core.Token, error)
	refreshTokenFn func(ctx context.Context, refreshValue string) (*core.TokenPair, error)
	revokeTokenFn  func(ctx context.Context, id string) error
	reapFn         func(ctx context.Context) (int, error)
}

func (s stubMutatingService) SaveToken(ctx context.Context, token core.Token) (core.Token, error) {
	if s.saveTokenFn == nil {
		return core.Token{}, fmt.Errorf("unexpected SaveToken call")
	}
	return s.saveTokenFn(ctx, token)
}

func (s stubMutatingService) RefreshToken(ctx context.Context, refreshValue string) (*core.TokenPair, error) {
	if s.refreshTokenFn == nil {
		return nil, fmt.Errorf("unexpected RefreshToken call")
	}
	return s.refreshTokenFn(ctx, refreshValue)
}

func (s stubMutatingService) RevokeToken(ctx context.Context, id string) error {
	if s.revokeTokenFn == nil {
		return fmt.Errorf("unexpected RevokeToken call")
	}
	return s.revokeTokenFn(ctx, id)
}

func (s stubMutatingService) ReapExpiredTokens(ctx context.Context) (int, error) {
	if s.reapFn == nil {
		return 0, fmt.Errorf("unexpected ReapExpiredTokens call")
	}
	return s.reapFn(ctx)
}

func TestSaveTokenCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := core.Token{ID: "tok_1", Type: core.TokenTypeBearer, Value: "v", ClientID: "client_1"}
	called := false

	svc := stubMutatingService{
		saveTokenFn: func(_ context.Context, token core.Token) (core.Token, error) {
			called = true
			if token.Value != "v" {
				t.Fatalf("expected token value v, got %q", token.Value)
			}
			return expected, nil
		},
	}

	cmd := NewSaveTokenCommand(svc)
	collector := gocmd.NewResult[core.Token]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, SaveTokenMessage{Token: core.Token{
		Type:     core.TokenTypeBearer,
		Value:    "v",
		ClientID: "client_1",
	}})
	if err != nil {
		t.Fatalf("execute save token: %v", err)
	}
	if !called {
		t.Fatalf("expected save token service invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.ID != expected.ID {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestMutationCommands_DelegateToService(t *testing.T) {
	t.Run("refresh", func(t *testing.T) {
		expected := &core.TokenPair{Access: core.Token{ID: "tok_new"}}
		called := false
		svc := stubMutatingService{
			refreshTokenFn: func(_ context.Context, refreshValue string) (*core.TokenPair, error) {
				called = true
				if refreshValue != "refresh-1" {
					t.Fatalf("unexpected refresh value %q", refreshValue)
				}
				return expected, nil
			},
		}
		cmd := NewRefreshTokenCommand(svc)
		collector := gocmd.NewResult[*core.TokenPair]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := cmd.Execute(ctx, RefreshTokenMessage{RefreshValue: "refresh-1"}); err != nil {
			t.Fatalf("execute refresh: %v", err)
		}
		if !called {
			t.Fatalf("expected refresh invocation")
		}
		stored, ok := collector.Load()
		if !ok || stored == nil {
			t.Fatalf("expected refresh result")
		}
		if stored.Access.ID != "tok_new" {
			t.Fatalf("unexpected refresh result: %#v", stored)
		}
	})

	t.Run("revoke", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			revokeTokenFn: func(_ context.Context, id string) error {
				called = true
				if id != "tok_1" {
					t.Fatalf("unexpected revoke id %q", id)
				}
				return nil
			},
		}
		cmd := NewRevokeTokenCommand(svc)
		if err := cmd.Execute(context.Background(), RevokeTokenMessage{TokenID: "tok_1"}); err != nil {
			t.Fatalf("execute revoke: %v", err)
		}
		if !called {
			t.Fatalf("expected revoke invocation")
		}
	})

	t.Run("reap", func(t *testing.T) {
		svc := stubMutatingService{
			reapFn: func(_ context.Context) (int, error) {
				return 3, nil
			},
		}
		cmd := NewReapTokensCommand(svc)
		collector := gocmd.NewResult[int]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := cmd.Execute(ctx, ReapTokensMessage{}); err != nil {
			t.Fatalf("execute reap: %v", err)
		}
		reaped, ok := collector.Load()
		if !ok || reaped != 3 {
			t.Fatalf("expected 3 reaped tokens, got %d (stored=%v)", reaped, ok)
		}
	})
}

type stubLocationWriter struct {
	saveFn func(ctx context.Context, location core.Location) (core.Location, error)
}

func (s stubLocationWriter) SaveLocation(ctx context.Context, location core.Location) (core.Location, error) {
	return s.saveFn(ctx, location)
}

func TestSaveLocationCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	writer := stubLocationWriter{
		saveFn: func(_ context.Context, location core.Location) (core.Location, error) {
			location.ID = "loc_1"
			return location, nil
		},
	}
	cmd := NewSaveLocationCommand(writer)
	collector := gocmd.NewResult[core.Location]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, SaveLocationMessage{Location: core.Location{
		Locator: "gateway.example.com/reports",
		Driver:  "http",
	}})
	if err != nil {
		t.Fatalf("execute save location: %v", err)
	}
	stored, ok := collector.Load()
	if !ok || stored.ID != "loc_1" {
		t.Fatalf("expected stored location, got %#v (stored=%v)", stored, ok)
	}
}

type stubDispatchService struct {
	dispatchFn func(ctx context.Context, method string, location core.Location, body io.Reader) (core.Response, error)
}

func (s stubDispatchService) Dispatch(ctx context.Context, method string, location core.Location, body io.Reader) (core.Response, error) {
	return s.dispatchFn(ctx, method, location, body)
}

func TestDispatchCommand_DefaultsMethodAndStoresResponse(t *testing.T) {
	svc := stubDispatchService{
		dispatchFn: func(_ context.Context, method string, location core.Location, body io.Reader) (core.Response, error) {
			if method != "GET" {
				t.Fatalf("expected default GET method, got %q", method)
			}
			if location.Locator != "gateway.example.com/reports" {
				t.Fatalf("unexpected locator %q", location.Locator)
			}
			if body != nil {
				t.Fatalf("expected nil body for empty payload")
			}
			return core.Response{Status: 200, Body: []byte("ok")}, nil
		},
	}
	cmd := NewDispatchCommand(svc)
	collector := gocmd.NewResult[core.Response]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, DispatchMessage{Location: core.Location{
		Locator: "gateway.example.com/reports",
		Driver:  "http",
	}})
	if err != nil {
		t.Fatalf("execute dispatch: %v", err)
	}
	stored, ok := collector.Load()
	if !ok || stored.Status != 200 {
		t.Fatalf("expected 200 response, got %#v (stored=%v)", stored, ok)
	}
}

func TestCommands_RequireDependencies(t *testing.T) {
	if err := NewSaveTokenCommand(nil).Execute(context.Background(), SaveTokenMessage{}); err == nil {
		t.Fatalf("expected dependency error for save token")
	}
	if err := NewRefreshTokenCommand(nil).Execute(context.Background(), RefreshTokenMessage{}); err == nil {
		t.Fatalf("expected dependency error for refresh")
	}
	if err := NewRevokeTokenCommand(nil).Execute(context.Background(), RevokeTokenMessage{}); err == nil {
		t.Fatalf("expected dependency error for revoke")
	}
	if err := NewReapTokensCommand(nil).Execute(context.Background(), ReapTokensMessage{}); err == nil {
		t.Fatalf("expected dependency error for reap")
	}
	if err := NewSaveLocationCommand(nil).Execute(context.Background(), SaveLocationMessage{}); err == nil {
		t.Fatalf("expected dependency error for save location")
	}
	if err := NewDispatchCommand(nil).Execute(context.Background(), DispatchMessage{}); err == nil {
		t.Fatalf("expected dependency error for dispatch")
	}
}

func TestMessages_Validate(t *testing.T) {
	if err := (SaveTokenMessage{}).Validate(); err == nil {
		t.Fatalf("expected invalid empty token")
	}
	if err := (RefreshTokenMessage{RefreshValue: "  "}).Validate(); err == nil {
		t.Fatalf("expected invalid blank refresh value")
	}
	if err := (RevokeTokenMessage{}).Validate(); err == nil {
		t.Fatalf("expected invalid empty token id")
	}
	if err := (ReapTokensMessage{}).Validate(); err != nil {
		t.Fatalf("reap message should validate: %v", err)
	}
	if err := (SaveLocationMessage{Location: core.Location{Locator: "x"}}).Validate(); err == nil {
		t.Fatalf("expected missing driver to fail validation")
	}
	valid := SaveTokenMessage{Token: core.Token{Type: core.TokenTypeBearer, Value: "v", ClientID: "c"}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid save token message: %v", err)
	}
}
