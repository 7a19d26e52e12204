package transport

import (
	"context"
	"io"
	"net/http"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-gateway/core"
)

// GatewayService is the slice of the core the transports need.
type GatewayService interface {
	ResolveLocation(ctx context.Context, query core.ResolveQuery) (*core.Location, error)
	Authorize(ctx context.Context, required string) error
	Dispatch(ctx context.Context, method string, location core.Location, body io.Reader) (core.Response, error)
	AuthPathPrefix() string
}

// TokenFinder loads the stored credential for an opaque bearer value.
type TokenFinder interface {
	FindTokenByValue(ctx context.Context, value string) (core.Token, error)
}

// HTTPAdapter intercepts requests it can resolve and passes everything
// else through untouched. Paths under the auth prefix are never
// intercepted.
type HTTPAdapter struct {
	service GatewayService
	tokens  TokenFinder
	logger  core.Logger
}

type HTTPOption func(*HTTPAdapter)

func WithHTTPLogger(logger core.Logger) HTTPOption {
	return func(a *HTTPAdapter) {
		a.logger = logger
	}
}

func WithTokenFinder(tokens TokenFinder) HTTPOption {
	return func(a *HTTPAdapter) {
		a.tokens = tokens
	}
}

func NewHTTPAdapter(service GatewayService, options ...HTTPOption) *HTTPAdapter {
	adapter := &HTTPAdapter{service: service, logger: glog.Nop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(adapter)
	}
	adapter.logger = glog.Ensure(adapter.logger)
	return adapter
}

// Middleware wraps next, intercepting only the requests that resolve to
// a stored location. Resolver failures degrade to pass-through so a
// broken store never takes the host application down with it.
func (a *HTTPAdapter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a == nil || a.service == nil {
			next.ServeHTTP(w, r)
			return
		}
		if prefix := strings.TrimSpace(a.service.AuthPathPrefix()); prefix != "" && strings.HasPrefix(r.URL.Path, prefix) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		query := core.ResolveQuery{
			Scheme: effectiveScheme(r),
			Host:   r.Host,
			Path:   r.URL.Path,
		}
		location, err := a.service.ResolveLocation(ctx, query)
		if err != nil {
			a.logger.Error("resolution failed, passing request through",
				"locator", query.Locator(),
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}
		if location == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx = a.attachToken(ctx, r)
		if err := a.service.Authorize(ctx, location.AuthScope()); err != nil {
			WriteError(w, err)
			return
		}

		recorder := &writeTracker{ResponseWriter: w}
		ctx = core.WithRequestHandles(ctx, core.RequestHandles{Writer: recorder, Request: r})

		response, err := a.service.Dispatch(ctx, r.Method, *location, r.Body)
		if err != nil {
			if !recorder.wrote {
				WriteError(w, err)
			}
			return
		}
		if recorder.wrote {
			return
		}
		writeResponse(w, response)
	})
}

func (a *HTTPAdapter) attachToken(ctx context.Context, r *http.Request) context.Context {
	value := bearerValue(r)
	if value == "" || a.tokens == nil {
		return ctx
	}
	token, err := a.tokens.FindTokenByValue(ctx, value)
	if err != nil {
		return ctx
	}
	ctx = core.WithToken(ctx, token)
	if userID := strings.TrimSpace(token.UserID); userID != "" {
		ctx = core.WithUser(ctx, &core.User{ID: userID})
	}
	return ctx
}

func bearerValue(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}

func effectiveScheme(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); forwarded != "" {
		return strings.ToLower(forwarded)
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func writeResponse(w http.ResponseWriter, response core.Response) {
	for key, value := range response.Headers {
		if strings.TrimSpace(key) == "" {
			continue
		}
		w.Header().Set(key, value)
	}
	status := response.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(response.Body) > 0 {
		w.Write(response.Body)
	}
}

// writeTracker records whether a driver already streamed onto the
// transport writer so the adapter never double-writes headers.
type writeTracker struct {
	http.ResponseWriter
	wrote bool
}

func (t *writeTracker) WriteHeader(status int) {
	t.wrote = true
	t.ResponseWriter.WriteHeader(status)
}

func (t *writeTracker) Write(payload []byte) (int, error) {
	t.wrote = true
	return t.ResponseWriter.Write(payload)
}
