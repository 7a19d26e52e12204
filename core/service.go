package core

import (
	"context"
	"io"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Service is the resolution and authorization core shared by every
// transport. Both the HTTP middleware and the RPC method funnel into the
// same resolve, authorize and dispatch calls with identical guarantees.
type Service struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	tokenStore      TokenStore
	clientStore     ClientStore
	userStore       UserStore
	locationStore   LocationStore
	resolver        LocationResolver
	dispatcher      Dispatcher
	exchanger       UpstreamExchanger
	now             func() time.Time
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("gateway", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("gateway"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.now == nil {
		builder.now = func() time.Time { return time.Now().UTC() }
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if needsStores(builder) && builder.repositoryFactory != nil {
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			storeProvider, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			if storeProvider != nil {
				if builder.tokenStore == nil {
					builder.tokenStore = storeProvider.TokenStore()
				}
				if builder.clientStore == nil {
					builder.clientStore = storeProvider.ClientStore()
				}
				if builder.userStore == nil {
					builder.userStore = storeProvider.UserStore()
				}
				if builder.locationStore == nil {
					builder.locationStore = storeProvider.LocationStore()
				}
			}
		}
	}

	if builder.exchanger == nil {
		builder.exchanger = NewHTTPUpstreamExchanger(builder.httpClient)
	}

	return &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorFactory:    builder.errorFactory,
		errorMapper:     builder.errorMapper,
		tokenStore:      builder.tokenStore,
		clientStore:     builder.clientStore,
		userStore:       builder.userStore,
		locationStore:   builder.locationStore,
		resolver:        builder.resolver,
		dispatcher:      builder.dispatcher,
		exchanger:       builder.exchanger,
		now:             builder.now,
	}, nil
}

func needsStores(builder serviceBuilder) bool {
	return builder.tokenStore == nil ||
		builder.clientStore == nil ||
		builder.userStore == nil ||
		builder.locationStore == nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}

// Config returns the resolved runtime configuration.
func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

// AuthPathPrefix returns the HTTP path prefix the gateway never
// intercepts.
func (s *Service) AuthPathPrefix() string {
	if s == nil {
		return ""
	}
	return s.config.HTTP.AuthPathPrefix
}

func (s *Service) LocationStore() LocationStore {
	if s == nil {
		return nil
	}
	return s.locationStore
}

func (s *Service) TokenStore() TokenStore {
	if s == nil {
		return nil
	}
	return s.tokenStore
}

func (s *Service) clock() time.Time {
	if s == nil || s.now == nil {
		return time.Now().UTC()
	}
	return s.now()
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	if mapped := s.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}

// ResolveLocation runs the configured resolver chain. A nil location
// with a nil error means no strategy claimed the query; callers treat
// that as a valid negative, not a failure.
func (s *Service) ResolveLocation(ctx context.Context, query ResolveQuery) (*Location, error) {
	if s == nil || s.resolver == nil {
		return nil, nil
	}
	startedAt := s.clock()
	location, err := s.resolver.Resolve(ctx, query)
	s.observeOperation(ctx, startedAt, "resolve", err, map[string]any{
		"locator":  query.Locator(),
		"resolved": location != nil,
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	return location, nil
}

// Authorize checks the context's current token against the required
// scope. Expired tokens are rejected regardless of whether the reaper
// already swept them.
func (s *Service) Authorize(ctx context.Context, required string) error {
	token, ok := TokenFromContext(ctx)
	if !ok {
		return gatewayError(
			"core: no token in request context",
			goerrors.CategoryAuth,
			401,
			GatewayErrorUnauthorized,
			map[string]any{"scope": required},
		)
	}
	return s.AuthorizeToken(ctx, token, required)
}

func (s *Service) AuthorizeToken(_ context.Context, token Token, required string) error {
	if token.Expired(s.clock()) {
		return tokenExpiredError(token.ID)
	}
	if !ScopeMatches(token.FormalScope(), required) {
		return scopeNotAuthorizedError([]string{required})
	}
	return nil
}

// Dispatch forwards the operation to the configured dispatcher.
func (s *Service) Dispatch(ctx context.Context, method string, location Location, body io.Reader) (Response, error) {
	if s == nil || s.dispatcher == nil {
		return Response{}, gatewayError(
			"core: dispatcher is not configured",
			goerrors.CategoryInternal,
			500,
			GatewayErrorInternal,
			nil,
		)
	}
	startedAt := s.clock()
	response, err := s.dispatcher.Dispatch(ctx, method, location, body)
	s.observeOperation(ctx, startedAt, "dispatch", err, map[string]any{
		"driver": location.Driver,
		"method": method,
	})
	if err != nil {
		return Response{}, s.mapError(err)
	}
	return response, nil
}
