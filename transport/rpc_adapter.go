package transport

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-gateway/core"
)

// MethodGetResponse is the exposed RPC method name; it doubles as the
// default scope required to operate on a resolved location.
const MethodGetResponse = "rpc.getResponse"

// CallRequest is the RPC-side equivalent of an inbound HTTP request: a
// raw locator plus the verb and optional body to dispatch with.
type CallRequest struct {
	Locator string `json:"locator"`
	Method  string `json:"method,omitempty"`
	Token   string `json:"token,omitempty"`
	Body    []byte `json:"body,omitempty"`
}

// CallResult mirrors the HTTP response shape. Resolved reports whether
// any strategy claimed the locator; an unresolved call is a valid
// negative, not an error.
type CallResult struct {
	Resolved bool              `json:"resolved"`
	Status   int               `json:"status,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
	Body     []byte            `json:"body,omitempty"`
}

// RPCAdapter exposes the dispatch pipeline as a named remote method.
// Proxy-style drivers recover the raw transport handles from the
// connection context the caller attached.
type RPCAdapter struct {
	service GatewayService
	tokens  TokenFinder
	logger  core.Logger
}

type RPCOption func(*RPCAdapter)

func WithRPCLogger(logger core.Logger) RPCOption {
	return func(a *RPCAdapter) {
		a.logger = logger
	}
}

func WithRPCTokenFinder(tokens TokenFinder) RPCOption {
	return func(a *RPCAdapter) {
		a.tokens = tokens
	}
}

func NewRPCAdapter(service GatewayService, options ...RPCOption) *RPCAdapter {
	adapter := &RPCAdapter{service: service, logger: glog.Nop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(adapter)
	}
	adapter.logger = glog.Ensure(adapter.logger)
	return adapter
}

func (a *RPCAdapter) MethodName() string { return MethodGetResponse }

func (a *RPCAdapter) Call(ctx context.Context, req CallRequest) (CallResult, error) {
	if a == nil || a.service == nil {
		return CallResult{}, transportError(
			"transport: rpc adapter requires a gateway service",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			nil,
		)
	}
	locator := strings.TrimSpace(req.Locator)
	if locator == "" {
		return CallResult{}, transportError(
			"transport: locator is required",
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			nil,
		)
	}

	location, err := a.service.ResolveLocation(ctx, core.ResolveQuery{Raw: locator})
	if err != nil {
		a.logger.Error("resolution failed", "locator", locator, "error", err)
		return CallResult{}, err
	}
	if location == nil {
		return CallResult{Resolved: false}, nil
	}

	if value := strings.TrimSpace(req.Token); value != "" && a.tokens != nil {
		if token, err := a.tokens.FindTokenByValue(ctx, value); err == nil {
			ctx = core.WithToken(ctx, token)
			if userID := strings.TrimSpace(token.UserID); userID != "" {
				ctx = core.WithUser(ctx, &core.User{ID: userID})
			}
		}
	}
	if err := a.service.Authorize(ctx, location.AuthScope()); err != nil {
		return CallResult{}, err
	}

	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	response, err := a.service.Dispatch(ctx, method, *location, bytes.NewReader(req.Body))
	if err != nil {
		return CallResult{}, err
	}
	return CallResult{
		Resolved: true,
		Status:   response.Status,
		Headers:  response.Headers,
		Body:     response.Body,
	}, nil
}
