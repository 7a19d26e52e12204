package dispatch

import (
	"context"
	"io"
	"net/http"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-gateway/core"
)

// Dispatcher builds the driver named by a location and invokes the
// capability matching the inbound verb. An unrecognized verb yields a
// synthetic 405 response rather than an error so transports can always
// render something; a missing capability on a known verb is a
// method-not-supported error; an unregistered driver is a server fault.
type Dispatcher struct {
	registry *Registry
	logger   core.Logger
}

type DispatcherOption func(*Dispatcher)

func WithDispatcherLogger(logger core.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func NewDispatcher(registry *Registry, options ...DispatcherOption) *Dispatcher {
	dispatcher := &Dispatcher{registry: registry, logger: glog.Nop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(dispatcher)
	}
	dispatcher.logger = glog.Ensure(dispatcher.logger)
	return dispatcher
}

func (d *Dispatcher) Dispatch(ctx context.Context, method string, location core.Location, body io.Reader) (core.Response, error) {
	if d == nil || d.registry == nil {
		return core.Response{}, core.DriverNotFoundError(location.Driver)
	}
	factory, ok := d.registry.Lookup(location.Driver)
	if !ok {
		d.logger.Error("location names an unregistered driver",
			"driver", location.Driver,
			"location_id", location.ID,
		)
		return core.Response{}, core.DriverNotFoundError(location.Driver)
	}

	driver, err := factory(core.UserFromContext(ctx))
	if err != nil {
		return core.Response{}, err
	}

	switch strings.ToUpper(strings.TrimSpace(method)) {
	case http.MethodGet:
		if getter, ok := driver.(core.Getter); ok {
			return getter.Get(ctx, location)
		}
		return core.Response{}, core.MethodNotSupportedError(driver.Name(), http.MethodGet)
	case http.MethodHead:
		if header, ok := driver.(core.Header); ok {
			return header.Head(ctx, location)
		}
		return core.Response{}, core.MethodNotSupportedError(driver.Name(), http.MethodHead)
	case http.MethodPut:
		if putter, ok := driver.(core.Putter); ok {
			return putter.Put(ctx, location, body)
		}
		return core.Response{}, core.MethodNotSupportedError(driver.Name(), http.MethodPut)
	case http.MethodDelete:
		if deleter, ok := driver.(core.Deleter); ok {
			return deleter.Delete(ctx, location)
		}
		return core.Response{}, core.MethodNotSupportedError(driver.Name(), http.MethodDelete)
	case MethodProxy:
		if proxier, ok := driver.(core.Proxier); ok {
			return proxier.Proxy(ctx, location, body)
		}
		return core.Response{}, core.MethodNotSupportedError(driver.Name(), MethodProxy)
	}

	return core.Response{
		Status: http.StatusMethodNotAllowed,
		Headers: map[string]string{
			"Allow": strings.Join(supportedVerbs(driver), ", "),
		},
	}, nil
}

// MethodProxy is the pseudo-verb for streaming proxy dispatch.
const MethodProxy = "PROXY"

func supportedVerbs(driver core.Driver) []string {
	verbs := []string{}
	if _, ok := driver.(core.Getter); ok {
		verbs = append(verbs, http.MethodGet)
	}
	if _, ok := driver.(core.Header); ok {
		verbs = append(verbs, http.MethodHead)
	}
	if _, ok := driver.(core.Putter); ok {
		verbs = append(verbs, http.MethodPut)
	}
	if _, ok := driver.(core.Deleter); ok {
		verbs = append(verbs, http.MethodDelete)
	}
	if _, ok := driver.(core.Proxier); ok {
		verbs = append(verbs, MethodProxy)
	}
	return verbs
}

var _ core.Dispatcher = (*Dispatcher)(nil)
