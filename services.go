package gateway

import "github.com/goliatone/go-gateway/core"

type Config = core.Config

type HTTPConfig = core.HTTPConfig

type CacheConfig = core.CacheConfig

type TokenConfig = core.TokenConfig

type Option = core.Option

type Service = core.Service

type Token = core.Token
type TokenPair = core.TokenPair
type FormalToken = core.FormalToken
type Client = core.Client
type User = core.User
type Location = core.Location
type ResolveQuery = core.ResolveQuery
type Response = core.Response

type TokenStore = core.TokenStore
type ClientStore = core.ClientStore
type UserStore = core.UserStore
type LocationStore = core.LocationStore
type LocationResolver = core.LocationResolver
type Dispatcher = core.Dispatcher
type UpstreamExchanger = core.UpstreamExchanger
type MetricsRecorder = core.MetricsRecorder

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorFactory      = core.WithErrorFactory
	WithErrorMapper       = core.WithErrorMapper
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithPersistenceClient = core.WithPersistenceClient
	WithRepositoryFactory = core.WithRepositoryFactory
	WithTokenStore        = core.WithTokenStore
	WithClientStore       = core.WithClientStore
	WithUserStore         = core.WithUserStore
	WithLocationStore     = core.WithLocationStore
	WithResolver          = core.WithResolver
	WithDispatcher        = core.WithDispatcher
	WithUpstreamExchanger = core.WithUpstreamExchanger
	WithHTTPClient        = core.WithHTTPClient
	WithNow               = core.WithNow
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}
