package gateway

import (
	"fmt"

	gatewaycommand "github.com/goliatone/go-gateway/command"
	"github.com/goliatone/go-gateway/core"
	gatewayquery "github.com/goliatone/go-gateway/query"
)

// CommandQueryService is the surface the facade needs from the core
// service: token mutation, dispatching, and resolution.
type CommandQueryService interface {
	gatewaycommand.MutatingService
	gatewaycommand.DispatchService
	gatewayquery.TokenWirer
	gatewayquery.LocationResolver
}

type Commands struct {
	SaveToken    *gatewaycommand.SaveTokenCommand
	RefreshToken *gatewaycommand.RefreshTokenCommand
	RevokeToken  *gatewaycommand.RevokeTokenCommand
	ReapTokens   *gatewaycommand.ReapTokensCommand
	SaveLocation *gatewaycommand.SaveLocationCommand
	Dispatch     *gatewaycommand.DispatchCommand
}

type Queries struct {
	WireToken       *gatewayquery.WireTokenQuery
	ListUserTokens  *gatewayquery.ListUserTokensQuery
	ResolveLocation *gatewayquery.ResolveLocationQuery
	ListLocations   *gatewayquery.ListLocationsQuery
}

// Facade bundles the go-command handlers over one service instance so
// hosts register them in a single pass.
type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	tokenReader    gatewayquery.TokenReader
	locationReader gatewayquery.LocationReader
	locationWriter gatewaycommand.LocationWriter
}

func WithTokenReader(reader gatewayquery.TokenReader) FacadeOption {
	return func(options *facadeOptions) {
		options.tokenReader = reader
	}
}

func WithLocationReader(reader gatewayquery.LocationReader) FacadeOption {
	return func(options *facadeOptions) {
		options.locationReader = reader
	}
}

func WithLocationWriter(writer gatewaycommand.LocationWriter) FacadeOption {
	return func(options *facadeOptions) {
		options.locationWriter = writer
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("gateway: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.tokenReader == nil {
		cfg.tokenReader = resolveTokenReader(service)
	}
	if cfg.locationReader == nil || cfg.locationWriter == nil {
		store := resolveLocationStore(service)
		if cfg.locationReader == nil {
			cfg.locationReader = store
		}
		if cfg.locationWriter == nil {
			cfg.locationWriter = store
		}
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		SaveToken:    gatewaycommand.NewSaveTokenCommand(service),
		RefreshToken: gatewaycommand.NewRefreshTokenCommand(service),
		RevokeToken:  gatewaycommand.NewRevokeTokenCommand(service),
		ReapTokens:   gatewaycommand.NewReapTokensCommand(service),
		SaveLocation: gatewaycommand.NewSaveLocationCommand(cfg.locationWriter),
		Dispatch:     gatewaycommand.NewDispatchCommand(service),
	}
	facade.queries = Queries{
		WireToken:       gatewayquery.NewWireTokenQuery(service),
		ListUserTokens:  gatewayquery.NewListUserTokensQuery(cfg.tokenReader),
		ResolveLocation: gatewayquery.NewResolveLocationQuery(service),
		ListLocations:   gatewayquery.NewListLocationsQuery(cfg.locationReader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

var _ CommandQueryService = (*core.Service)(nil)

func resolveTokenReader(service CommandQueryService) gatewayquery.TokenReader {
	if reader, ok := service.(gatewayquery.TokenReader); ok {
		return reader
	}
	provider, ok := service.(interface{ TokenStore() core.TokenStore })
	if !ok {
		return nil
	}
	store := provider.TokenStore()
	if store == nil {
		return nil
	}
	return store
}

func resolveLocationStore(service CommandQueryService) core.LocationStore {
	provider, ok := service.(interface{ LocationStore() core.LocationStore })
	if !ok {
		return nil
	}
	return provider.LocationStore()
}
