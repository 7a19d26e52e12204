package core

import (
	"context"
	"io"
	"net/http"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// TokenStore is the persistence contract for credentials. Deletions are
// filter-based so pruning stays idempotent under concurrent saves.
type TokenStore interface {
	GetToken(ctx context.Context, id string) (Token, error)
	FindTokenByValue(ctx context.Context, value string) (Token, error)
	ListUserTokens(ctx context.Context, userID string) ([]Token, error)
	CreateToken(ctx context.Context, token Token) (Token, error)
	DeleteToken(ctx context.Context, id string) error
	// DeleteSiblingBearers removes every bearer token sharing
	// linkedTokenID other than keepID and reports how many went away.
	DeleteSiblingBearers(ctx context.Context, linkedTokenID string, keepID string) (int, error)
	// DeleteExpired removes tokens whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type ClientStore interface {
	GetClient(ctx context.Context, id string) (Client, error)
	GetClientByName(ctx context.Context, name string) (Client, error)
}

type UserStore interface {
	GetUser(ctx context.Context, id string) (User, error)
}

type LocationStore interface {
	GetLocation(ctx context.Context, id string) (Location, error)
	FindByLocator(ctx context.Context, locator string) (Location, error)
	SaveLocation(ctx context.Context, location Location) (Location, error)
	// ListLocations pages through stored locations so resolver
	// strategies can scan bounded batches.
	ListLocations(ctx context.Context, offset int, limit int) ([]Location, error)
}

type StoreProvider interface {
	TokenStore() TokenStore
	ClientStore() ClientStore
	UserStore() UserStore
	LocationStore() LocationStore
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

// ResolverStrategy is one entry in the resolution chain. A strategy
// either claims the query by returning a location or declines by
// returning (nil, nil); declining is not an error.
type ResolverStrategy interface {
	Name() string
	Resolve(ctx context.Context, query ResolveQuery) (*Location, error)
}

type LocationResolver interface {
	Resolve(ctx context.Context, query ResolveQuery) (*Location, error)
}

// Driver handles a protocol on behalf of resolved locations. Concrete
// drivers implement the capability subset meaningful for their protocol
// through the narrow interfaces below; the dispatcher fails missing
// capabilities with a method-not-supported error.
type Driver interface {
	Name() string
}

type Getter interface {
	Get(ctx context.Context, location Location) (Response, error)
}

type Header interface {
	Head(ctx context.Context, location Location) (Response, error)
}

type Putter interface {
	Put(ctx context.Context, location Location, body io.Reader) (Response, error)
}

type Deleter interface {
	Delete(ctx context.Context, location Location) (Response, error)
}

// Proxier streams the upstream response. Drivers that need the raw
// transport handles recover them via RequestHandlesFromContext.
type Proxier interface {
	Proxy(ctx context.Context, location Location, body io.Reader) (Response, error)
}

// DriverFactory builds a driver instance, optionally scoped to the
// requesting user for user-sensitive drivers.
type DriverFactory func(user *User) (Driver, error)

type Dispatcher interface {
	Dispatch(ctx context.Context, method string, location Location, body io.Reader) (Response, error)
}

// HTTPDoer is the outbound HTTP contract used for the upstream refresh
// exchange.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// UpstreamExchanger performs the refresh-token grant against a
// provider-role client's upstream token endpoint. A non-success upstream
// status yields ok == false with no error; transport failures are
// errors.
type UpstreamExchanger interface {
	RefreshGrant(ctx context.Context, client Client, refreshValue string) (FormalToken, bool, error)
}
