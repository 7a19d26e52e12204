package sqlstore

import "github.com/goliatone/go-gateway/core"

var (
	_ core.TokenStore    = (*TokenStore)(nil)
	_ core.ClientStore   = (*ClientStore)(nil)
	_ core.UserStore     = (*UserStore)(nil)
	_ core.LocationStore = (*LocationStore)(nil)
	_ core.LocationStore = (*CachedLocationStore)(nil)

	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
