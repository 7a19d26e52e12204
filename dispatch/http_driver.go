package dispatch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-gateway/core"
)

const (
	httpDriverTimeout  = 30 * time.Second
	maxBufferedBody    = 8 << 20 // 8 MiB
	metadataForwardURL = "forward_url"
)

// HTTPDriver forwards operations to the upstream named by the location.
// The forward target defaults to the locator itself and can be
// overridden through the location's forward_url metadata entry.
type HTTPDriver struct {
	client core.HTTPDoer
	user   *core.User
}

// NewHTTPDriverFactory returns a factory producing user-scoped HTTP
// drivers over the shared client.
func NewHTTPDriverFactory(client core.HTTPDoer) core.DriverFactory {
	if client == nil {
		client = &http.Client{Timeout: httpDriverTimeout}
	}
	return func(user *core.User) (core.Driver, error) {
		return &HTTPDriver{client: client, user: user}, nil
	}
}

func (d *HTTPDriver) Name() string { return "http" }

func (d *HTTPDriver) Get(ctx context.Context, location core.Location) (core.Response, error) {
	return d.forward(ctx, http.MethodGet, location, nil)
}

func (d *HTTPDriver) Head(ctx context.Context, location core.Location) (core.Response, error) {
	return d.forward(ctx, http.MethodHead, location, nil)
}

func (d *HTTPDriver) Put(ctx context.Context, location core.Location, body io.Reader) (core.Response, error) {
	return d.forward(ctx, http.MethodPut, location, body)
}

// Proxy streams the upstream body straight onto the transport writer
// when one is attached to the context; otherwise it buffers like Get.
func (d *HTTPDriver) Proxy(ctx context.Context, location core.Location, body io.Reader) (core.Response, error) {
	handles, ok := core.RequestHandlesFromContext(ctx)
	if !ok || handles.Writer == nil {
		return d.forward(ctx, http.MethodGet, location, body)
	}

	res, err := d.do(ctx, http.MethodGet, location, body)
	if err != nil {
		return core.Response{}, err
	}
	defer res.Body.Close()

	for key, values := range res.Header {
		for _, value := range values {
			handles.Writer.Header().Add(key, value)
		}
	}
	handles.Writer.WriteHeader(res.StatusCode)
	if _, err := io.Copy(handles.Writer, res.Body); err != nil {
		return core.Response{}, fmt.Errorf("dispatch: proxy stream copy failed: %w", err)
	}
	return core.Response{Status: res.StatusCode, Headers: flattenHeader(res.Header)}, nil
}

func (d *HTTPDriver) forward(ctx context.Context, method string, location core.Location, body io.Reader) (core.Response, error) {
	res, err := d.do(ctx, method, location, body)
	if err != nil {
		return core.Response{}, err
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(res.Body, maxBufferedBody))
	if err != nil {
		return core.Response{}, fmt.Errorf("dispatch: upstream body read failed: %w", err)
	}
	return core.Response{
		Status:  res.StatusCode,
		Headers: flattenHeader(res.Header),
		Body:    payload,
	}, nil
}

func (d *HTTPDriver) do(ctx context.Context, method string, location core.Location, body io.Reader) (*http.Response, error) {
	target := forwardTarget(location)
	if target == "" {
		return nil, fmt.Errorf("dispatch: location %s has no forward target", location.ID)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("dispatch: upstream request build failed: %w", err)
	}
	if d.user != nil && strings.TrimSpace(d.user.ID) != "" {
		req.Header.Set("X-Gateway-User", d.user.ID)
	}
	return d.client.Do(req)
}

func forwardTarget(location core.Location) string {
	if raw, ok := location.Metadata[metadataForwardURL]; ok {
		if target, ok := raw.(string); ok && strings.TrimSpace(target) != "" {
			return strings.TrimSpace(target)
		}
	}
	return strings.TrimSpace(location.Locator)
}

func flattenHeader(header http.Header) map[string]string {
	out := make(map[string]string, len(header))
	for key := range header {
		out[key] = header.Get(key)
	}
	return out
}

var (
	_ core.Getter  = (*HTTPDriver)(nil)
	_ core.Header  = (*HTTPDriver)(nil)
	_ core.Putter  = (*HTTPDriver)(nil)
	_ core.Proxier = (*HTTPDriver)(nil)
)
