package core

import (
	"context"
	"net/http"
)

type contextKey string

const (
	contextKeyToken          contextKey = "gateway.token"
	contextKeyUser           contextKey = "gateway.user"
	contextKeyRequestHandles contextKey = "gateway.request_handles"
)

// RequestHandles carries the raw transport handles of the inbound
// request so proxy-style drivers can stream bytes directly to the
// original connection.
type RequestHandles struct {
	Writer  http.ResponseWriter
	Request *http.Request
}

// WithToken returns a context carrying the caller's current token.
// Request-scoped state is always threaded explicitly; there is no
// ambient current-token global.
func WithToken(ctx context.Context, token Token) context.Context {
	return context.WithValue(ctx, contextKeyToken, token)
}

func TokenFromContext(ctx context.Context) (Token, bool) {
	if ctx == nil {
		return Token{}, false
	}
	token, ok := ctx.Value(contextKeyToken).(Token)
	return token, ok
}

// WithUser attaches the requesting user so user-sensitive drivers can
// scope their behavior. A nil user leaves the context unchanged.
func WithUser(ctx context.Context, user *User) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKeyUser, user)
}

// UserFromContext returns the current user or nil when the request is
// not user-scoped.
func UserFromContext(ctx context.Context) *User {
	if ctx == nil {
		return nil
	}
	user, ok := ctx.Value(contextKeyUser).(*User)
	if !ok {
		return nil
	}
	return user
}

func WithRequestHandles(ctx context.Context, handles RequestHandles) context.Context {
	return context.WithValue(ctx, contextKeyRequestHandles, handles)
}

func RequestHandlesFromContext(ctx context.Context) (RequestHandles, bool) {
	if ctx == nil {
		return RequestHandles{}, false
	}
	handles, ok := ctx.Value(contextKeyRequestHandles).(RequestHandles)
	return handles, ok
}
