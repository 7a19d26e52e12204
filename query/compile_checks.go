package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-gateway/core"
)

var (
	_ gocmd.Querier[WireTokenMessage, core.FormalToken]     = (*WireTokenQuery)(nil)
	_ gocmd.Querier[ListUserTokensMessage, []core.Token]    = (*ListUserTokensQuery)(nil)
	_ gocmd.Querier[ResolveLocationMessage, *core.Location] = (*ResolveLocationQuery)(nil)
	_ gocmd.Querier[ListLocationsMessage, []core.Location]  = (*ListLocationsQuery)(nil)
)
