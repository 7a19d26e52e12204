package gateway

import (
	"github.com/goliatone/go-gateway/core"
	"github.com/goliatone/go-gateway/dispatch"
)

// HTTPDriverName is the registry key for the bundled HTTP forwarder.
const HTTPDriverName = "http"

// NewDriverRegistry returns a registry seeded with the HTTP driver. A nil
// client falls back to the driver's default.
func NewDriverRegistry(client core.HTTPDoer) (*dispatch.Registry, error) {
	registry := dispatch.NewRegistry()
	if err := registry.Register(HTTPDriverName, dispatch.NewHTTPDriverFactory(client)); err != nil {
		return nil, err
	}
	return registry, nil
}

// NewDispatcher builds the capability dispatcher over a seeded registry.
func NewDispatcher(client core.HTTPDoer, options ...dispatch.DispatcherOption) (*dispatch.Dispatcher, error) {
	registry, err := NewDriverRegistry(client)
	if err != nil {
		return nil, err
	}
	return dispatch.NewDispatcher(registry, options...), nil
}
