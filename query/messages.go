package query

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-gateway/core"
)

const (
	TypeWireToken       = "gateway.query.token.wire"
	TypeListUserTokens  = "gateway.query.token.list"
	TypeResolveLocation = "gateway.query.location.resolve"
	TypeListLocations   = "gateway.query.location.list"
)

type WireTokenMessage struct {
	BearerID string
}

func (WireTokenMessage) Type() string { return TypeWireToken }

func (m WireTokenMessage) Validate() error {
	if strings.TrimSpace(m.BearerID) == "" {
		return fmt.Errorf("query: bearer token id is required")
	}
	return nil
}

type ListUserTokensMessage struct {
	UserID string
}

func (ListUserTokensMessage) Type() string { return TypeListUserTokens }

func (m ListUserTokensMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("query: user id is required")
	}
	return nil
}

type ResolveLocationMessage struct {
	Query core.ResolveQuery
}

func (ResolveLocationMessage) Type() string { return TypeResolveLocation }

func (m ResolveLocationMessage) Validate() error {
	// Locator() always renders a default form, so the emptiness check
	// has to look at the caller-supplied fields.
	if strings.TrimSpace(m.Query.Raw) == "" && strings.TrimSpace(m.Query.Host) == "" {
		return fmt.Errorf("query: resolve locator or host is required")
	}
	return nil
}

type ListLocationsMessage struct {
	Offset int
	Limit  int
}

func (ListLocationsMessage) Type() string { return TypeListLocations }

func (m ListLocationsMessage) Validate() error {
	if m.Offset < 0 {
		return fmt.Errorf("query: offset must be >= 0")
	}
	if m.Limit < 0 {
		return fmt.Errorf("query: limit must be >= 0")
	}
	return nil
}
