package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-gateway/core"
)

const (
	TypeSaveToken    = "gateway.command.token.save"
	TypeRefreshToken = "gateway.command.token.refresh"
	TypeRevokeToken  = "gateway.command.token.revoke"
	TypeReapTokens   = "gateway.command.token.reap"
	TypeSaveLocation = "gateway.command.location.save"
	TypeDispatch     = "gateway.command.dispatch"
)

type SaveTokenMessage struct {
	Token core.Token
}

func (SaveTokenMessage) Type() string { return TypeSaveToken }

func (m SaveTokenMessage) Validate() error {
	if err := m.Token.Validate(); err != nil {
		return fmt.Errorf("command: %w", err)
	}
	return nil
}

type RefreshTokenMessage struct {
	RefreshValue string
}

func (RefreshTokenMessage) Type() string { return TypeRefreshToken }

func (m RefreshTokenMessage) Validate() error {
	if strings.TrimSpace(m.RefreshValue) == "" {
		return fmt.Errorf("command: refresh token value is required")
	}
	return nil
}

type RevokeTokenMessage struct {
	TokenID string
}

func (RevokeTokenMessage) Type() string { return TypeRevokeToken }

func (m RevokeTokenMessage) Validate() error {
	if strings.TrimSpace(m.TokenID) == "" {
		return fmt.Errorf("command: token id is required")
	}
	return nil
}

type ReapTokensMessage struct{}

func (ReapTokensMessage) Type() string { return TypeReapTokens }

func (ReapTokensMessage) Validate() error { return nil }

type SaveLocationMessage struct {
	Location core.Location
}

func (SaveLocationMessage) Type() string { return TypeSaveLocation }

func (m SaveLocationMessage) Validate() error {
	if strings.TrimSpace(m.Location.Locator) == "" {
		return fmt.Errorf("command: location locator is required")
	}
	if strings.TrimSpace(m.Location.Driver) == "" {
		return fmt.Errorf("command: location driver is required")
	}
	return nil
}

type DispatchMessage struct {
	Method   string
	Location core.Location
	Body     []byte
}

func (DispatchMessage) Type() string { return TypeDispatch }

func (m DispatchMessage) Validate() error {
	if strings.TrimSpace(m.Location.Locator) == "" {
		return fmt.Errorf("command: dispatch locator is required")
	}
	if strings.TrimSpace(m.Location.Driver) == "" {
		return fmt.Errorf("command: dispatch driver is required")
	}
	return nil
}
