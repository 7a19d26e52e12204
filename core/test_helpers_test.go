package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryTokenStore struct {
	mu     sync.Mutex
	seq    int
	tokens map[string]Token
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: map[string]Token{}}
}

func (s *memoryTokenStore) GetToken(_ context.Context, id string) (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[id]
	if !ok {
		return Token{}, fmt.Errorf("%w: %s", ErrTokenNotFound, id)
	}
	return token, nil
}

func (s *memoryTokenStore) FindTokenByValue(_ context.Context, value string) (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, token := range s.tokens {
		if token.Value == value {
			return token, nil
		}
	}
	return Token{}, fmt.Errorf("%w: value lookup", ErrTokenNotFound)
}

func (s *memoryTokenStore) ListUserTokens(_ context.Context, userID string) ([]Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Token{}
	for _, token := range s.tokens {
		if token.UserID == userID {
			out = append(out, token)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryTokenStore) CreateToken(_ context.Context, token Token) (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(token.ID) == "" {
		s.seq++
		token.ID = fmt.Sprintf("tok_%d", s.seq)
	}
	s.tokens[token.ID] = token
	return token, nil
}

func (s *memoryTokenStore) DeleteToken(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[id]; !ok {
		return fmt.Errorf("%w: %s", ErrTokenNotFound, id)
	}
	delete(s.tokens, id)
	return nil
}

func (s *memoryTokenStore) DeleteSiblingBearers(_ context.Context, linkedTokenID string, keepID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, token := range s.tokens {
		if token.Type != TokenTypeBearer || token.LinkedTokenID != linkedTokenID || id == keepID {
			continue
		}
		delete(s.tokens, id)
		deleted++
	}
	return deleted, nil
}

func (s *memoryTokenStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, token := range s.tokens {
		if token.Expired(now) {
			delete(s.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *memoryTokenStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

type memoryClientStore struct {
	mu      sync.Mutex
	clients map[string]Client
}

func newMemoryClientStore(clients ...Client) *memoryClientStore {
	store := &memoryClientStore{clients: map[string]Client{}}
	for _, client := range clients {
		store.clients[client.ID] = client
	}
	return store
}

func (s *memoryClientStore) GetClient(_ context.Context, id string) (Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	client, ok := s.clients[id]
	if !ok {
		return Client{}, fmt.Errorf("%w: %s", ErrClientNotFound, id)
	}
	return client, nil
}

func (s *memoryClientStore) GetClientByName(_ context.Context, name string) (Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, client := range s.clients {
		if client.Name == name {
			return client, nil
		}
	}
	return Client{}, fmt.Errorf("%w: %s", ErrClientNotFound, name)
}

type memoryUserStore struct {
	mu    sync.Mutex
	users map[string]User
}

func newMemoryUserStore(users ...User) *memoryUserStore {
	store := &memoryUserStore{users: map[string]User{}}
	for _, user := range users {
		store.users[user.ID] = user
	}
	return store
}

func (s *memoryUserStore) GetUser(_ context.Context, id string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return User{}, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	return user, nil
}

type memoryLocationStore struct {
	mu        sync.Mutex
	seq       int
	locations []Location
}

func newMemoryLocationStore(locations ...Location) *memoryLocationStore {
	return &memoryLocationStore{locations: append([]Location(nil), locations...)}
}

func (s *memoryLocationStore) GetLocation(_ context.Context, id string) (Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, location := range s.locations {
		if location.ID == id {
			return location, nil
		}
	}
	return Location{}, fmt.Errorf("%w: %s", ErrLocationNotFound, id)
}

func (s *memoryLocationStore) FindByLocator(_ context.Context, locator string) (Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, location := range s.locations {
		if location.Locator == locator {
			return location, nil
		}
	}
	return Location{}, fmt.Errorf("%w: %s", ErrLocationNotFound, locator)
}

func (s *memoryLocationStore) SaveLocation(_ context.Context, location Location) (Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(location.ID) == "" {
		s.seq++
		location.ID = fmt.Sprintf("loc_%d", s.seq)
	}
	for i, existing := range s.locations {
		if existing.ID == location.ID {
			s.locations[i] = location
			return location, nil
		}
	}
	s.locations = append(s.locations, location)
	return location, nil
}

func (s *memoryLocationStore) ListLocations(_ context.Context, offset int, limit int) ([]Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset >= len(s.locations) {
		return []Location{}, nil
	}
	end := offset + limit
	if end > len(s.locations) {
		end = len(s.locations)
	}
	return append([]Location(nil), s.locations[offset:end]...), nil
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(now time.Time) *fixedClock {
	return &fixedClock{now: now}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t interface{ Fatalf(string, ...any) }, options ...Option) *Service {
	svc, err := NewService(Config{}, options...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}
