package dispatch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-gateway/core"
)

type stubHTTPDoer struct {
	status     int
	body       string
	lastMethod string
	lastURL    string
	lastHeader http.Header
}

func (d *stubHTTPDoer) Do(req *http.Request) (*http.Response, error) {
	d.lastMethod = req.Method
	d.lastURL = req.URL.String()
	d.lastHeader = req.Header.Clone()
	return &http.Response{
		StatusCode: d.status,
		Body:       io.NopCloser(strings.NewReader(d.body)),
		Header:     http.Header{"Content-Type": []string{"text/plain"}},
	}, nil
}

func TestHTTPDriver_GetForwardsToLocator(t *testing.T) {
	doer := &stubHTTPDoer{status: http.StatusOK, body: "payload"}
	factory := NewHTTPDriverFactory(doer)
	driver, err := factory(&core.User{ID: "user_1"})
	if err != nil {
		t.Fatalf("build driver: %v", err)
	}

	res, err := driver.(core.Getter).Get(context.Background(), core.Location{
		ID:      "loc_1",
		Locator: "https://upstream.example/a",
	})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if res.Status != http.StatusOK || string(res.Body) != "payload" {
		t.Fatalf("unexpected response: %#v", res)
	}
	if doer.lastURL != "https://upstream.example/a" || doer.lastMethod != http.MethodGet {
		t.Fatalf("unexpected upstream call: %s %s", doer.lastMethod, doer.lastURL)
	}
	if doer.lastHeader.Get("X-Gateway-User") != "user_1" {
		t.Fatalf("expected the user header to be stamped")
	}
}

func TestHTTPDriver_ForwardURLMetadataOverridesLocator(t *testing.T) {
	doer := &stubHTTPDoer{status: http.StatusOK}
	factory := NewHTTPDriverFactory(doer)
	driver, _ := factory(nil)

	_, err := driver.(core.Getter).Get(context.Background(), core.Location{
		Locator:  "https://public.example/short",
		Metadata: map[string]any{"forward_url": "https://internal.example/real"},
	})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doer.lastURL != "https://internal.example/real" {
		t.Fatalf("expected metadata target, got %q", doer.lastURL)
	}
}

func TestHTTPDriver_ProxyStreamsOntoTransportWriter(t *testing.T) {
	doer := &stubHTTPDoer{status: http.StatusOK, body: "streamed"}
	factory := NewHTTPDriverFactory(doer)
	driver, _ := factory(nil)

	recorder := httptest.NewRecorder()
	ctx := core.WithRequestHandles(context.Background(), core.RequestHandles{
		Writer:  recorder,
		Request: httptest.NewRequest(http.MethodGet, "https://public.example/short", nil),
	})

	res, err := driver.(core.Proxier).Proxy(ctx, core.Location{Locator: "https://upstream.example/a"}, nil)
	if err != nil {
		t.Fatalf("proxy: %v", err)
	}
	if res.Status != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Status)
	}
	if recorder.Body.String() != "streamed" {
		t.Fatalf("expected the body streamed onto the writer, got %q", recorder.Body.String())
	}
	if recorder.Header().Get("Content-Type") != "text/plain" {
		t.Fatalf("expected upstream headers copied")
	}
}
