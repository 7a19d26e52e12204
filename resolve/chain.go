package resolve

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-gateway/core"
)

// Chain tries each strategy in order. A strategy claims a query by
// returning a location or declines with (nil, nil); the first claim
// wins. Strategy failures degrade to a miss for that strategy so a
// broken strategy never takes down resolution for the rest of the
// chain.
type Chain struct {
	strategies []core.ResolverStrategy
	logger     core.Logger
}

type ChainOption func(*Chain)

func WithChainLogger(logger core.Logger) ChainOption {
	return func(c *Chain) {
		c.logger = logger
	}
}

func NewChain(strategies []core.ResolverStrategy, options ...ChainOption) *Chain {
	chain := &Chain{logger: glog.Nop()}
	for _, strategy := range strategies {
		if strategy == nil {
			continue
		}
		chain.strategies = append(chain.strategies, strategy)
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(chain)
	}
	chain.logger = glog.Ensure(chain.logger)
	return chain
}

func (c *Chain) Resolve(ctx context.Context, query core.ResolveQuery) (*core.Location, error) {
	if c == nil {
		return nil, nil
	}
	locator := query.Locator()
	for _, strategy := range c.strategies {
		location, err := strategy.Resolve(ctx, query)
		if err != nil {
			c.logger.Error("resolver strategy failed",
				"strategy", strategy.Name(),
				"locator", locator,
				"error", err,
			)
			continue
		}
		if location != nil {
			return location, nil
		}
	}
	return nil, nil
}

var _ core.LocationResolver = (*Chain)(nil)
