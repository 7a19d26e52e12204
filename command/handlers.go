package command

import (
	"bytes"
	"context"
	"io"
	"net/http"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-gateway/core"
)

type MutatingService interface {
	SaveToken(ctx context.Context, token core.Token) (core.Token, error)
	RefreshToken(ctx context.Context, refreshValue string) (*core.TokenPair, error)
	RevokeToken(ctx context.Context, id string) error
	ReapExpiredTokens(ctx context.Context) (int, error)
}

type LocationWriter interface {
	SaveLocation(ctx context.Context, location core.Location) (core.Location, error)
}

type DispatchService interface {
	Dispatch(ctx context.Context, method string, location core.Location, body io.Reader) (core.Response, error)
}

type SaveTokenCommand struct {
	service MutatingService
}

func NewSaveTokenCommand(service MutatingService) *SaveTokenCommand {
	return &SaveTokenCommand{service: service}
}

func (c *SaveTokenCommand) Execute(ctx context.Context, msg SaveTokenMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: token service is required")
	}
	out, err := c.service.SaveToken(ctx, msg.Token)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RefreshTokenCommand struct {
	service MutatingService
}

func NewRefreshTokenCommand(service MutatingService) *RefreshTokenCommand {
	return &RefreshTokenCommand{service: service}
}

func (c *RefreshTokenCommand) Execute(ctx context.Context, msg RefreshTokenMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: refresh service is required")
	}
	out, err := c.service.RefreshToken(ctx, msg.RefreshValue)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RevokeTokenCommand struct {
	service MutatingService
}

func NewRevokeTokenCommand(service MutatingService) *RevokeTokenCommand {
	return &RevokeTokenCommand{service: service}
}

func (c *RevokeTokenCommand) Execute(ctx context.Context, msg RevokeTokenMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: revoke service is required")
	}
	return c.service.RevokeToken(ctx, msg.TokenID)
}

type ReapTokensCommand struct {
	service MutatingService
}

func NewReapTokensCommand(service MutatingService) *ReapTokensCommand {
	return &ReapTokensCommand{service: service}
}

func (c *ReapTokensCommand) Execute(ctx context.Context, _ ReapTokensMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: reaper service is required")
	}
	out, err := c.service.ReapExpiredTokens(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SaveLocationCommand struct {
	writer LocationWriter
}

func NewSaveLocationCommand(writer LocationWriter) *SaveLocationCommand {
	return &SaveLocationCommand{writer: writer}
}

func (c *SaveLocationCommand) Execute(ctx context.Context, msg SaveLocationMessage) error {
	if c == nil || c.writer == nil {
		return commandDependencyError("command: location writer is required")
	}
	out, err := c.writer.SaveLocation(ctx, msg.Location)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DispatchCommand struct {
	service DispatchService
}

func NewDispatchCommand(service DispatchService) *DispatchCommand {
	return &DispatchCommand{service: service}
}

func (c *DispatchCommand) Execute(ctx context.Context, msg DispatchMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: dispatch service is required")
	}
	method := msg.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if len(msg.Body) > 0 {
		body = bytes.NewReader(msg.Body)
	}
	out, err := c.service.Dispatch(ctx, method, msg.Location, body)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
