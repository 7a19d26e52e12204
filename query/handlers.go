package query

import (
	"context"

	"github.com/goliatone/go-gateway/core"
)

type TokenWirer interface {
	WireToken(ctx context.Context, bearerID string) (core.FormalToken, error)
}

type TokenReader interface {
	ListUserTokens(ctx context.Context, userID string) ([]core.Token, error)
}

type LocationResolver interface {
	ResolveLocation(ctx context.Context, query core.ResolveQuery) (*core.Location, error)
}

type LocationReader interface {
	ListLocations(ctx context.Context, offset int, limit int) ([]core.Location, error)
}

type WireTokenQuery struct {
	wirer TokenWirer
}

func NewWireTokenQuery(wirer TokenWirer) *WireTokenQuery {
	return &WireTokenQuery{wirer: wirer}
}

func (q *WireTokenQuery) Query(ctx context.Context, msg WireTokenMessage) (core.FormalToken, error) {
	if q == nil || q.wirer == nil {
		return core.FormalToken{}, queryDependencyError("query: token wirer is required")
	}
	return q.wirer.WireToken(ctx, msg.BearerID)
}

type ListUserTokensQuery struct {
	reader TokenReader
}

func NewListUserTokensQuery(reader TokenReader) *ListUserTokensQuery {
	return &ListUserTokensQuery{reader: reader}
}

func (q *ListUserTokensQuery) Query(ctx context.Context, msg ListUserTokensMessage) ([]core.Token, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: token reader is required")
	}
	return q.reader.ListUserTokens(ctx, msg.UserID)
}

type ResolveLocationQuery struct {
	resolver LocationResolver
}

func NewResolveLocationQuery(resolver LocationResolver) *ResolveLocationQuery {
	return &ResolveLocationQuery{resolver: resolver}
}

func (q *ResolveLocationQuery) Query(ctx context.Context, msg ResolveLocationMessage) (*core.Location, error) {
	if q == nil || q.resolver == nil {
		return nil, queryDependencyError("query: location resolver is required")
	}
	return q.resolver.ResolveLocation(ctx, msg.Query)
}

type ListLocationsQuery struct {
	reader LocationReader
}

func NewListLocationsQuery(reader LocationReader) *ListLocationsQuery {
	return &ListLocationsQuery{reader: reader}
}

func (q *ListLocationsQuery) Query(ctx context.Context, msg ListLocationsMessage) ([]core.Location, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: location reader is required")
	}
	return q.reader.ListLocations(ctx, msg.Offset, msg.Limit)
}
