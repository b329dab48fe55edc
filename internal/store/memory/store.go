// Package memory provides an in-process implementation of the user and
// secret stores. It backs tests and DATABASE_URL-less development runs:
// correct semantics, zero setup, no durability.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"whisperboard/internal/auth"
	"whisperboard/internal/secrets"
)

type linkKey struct {
	provider string
	userID   string
}

// Store implements auth.UserStore and secrets.Store behind one mutex, which
// stands in for the schema-level uniqueness constraints of the GORM store:
// find-or-create and local creation are serialized, so a key can never be
// created twice.
type Store struct {
	mu         sync.Mutex
	users      map[string]*auth.UserIdentity
	byUsername map[string]string  // username -> user id
	byLink     map[linkKey]string // (provider, providerUserID) -> user id
	board      []*secrets.Secret
	byBody     map[string]*secrets.Secret
}

func New() *Store {
	return &Store{
		users:      make(map[string]*auth.UserIdentity),
		byUsername: make(map[string]string),
		byLink:     make(map[linkKey]string),
		byBody:     make(map[string]*secrets.Secret),
	}
}

// =============================================================================
// auth.UserStore
// =============================================================================

func (s *Store) GetByID(ctx context.Context, id string) (*auth.UserIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*auth.UserIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byUsername[username]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (s *Store) GetByProvider(ctx context.Context, provider, providerUserID string) (*auth.UserIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byLink[linkKey{provider, providerUserID}]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (s *Store) CreateLocal(ctx context.Context, username, passwordHash string) (*auth.UserIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byUsername[username]; taken {
		return nil, auth.ErrDuplicateUsername
	}
	u := &auth.UserIdentity{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
	}
	s.users[u.ID] = u
	s.byUsername[username] = u.ID
	return cloneUser(u), nil
}

func (s *Store) GetOrCreateByProvider(ctx context.Context, provider, providerUserID string) (*auth.UserIdentity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := linkKey{provider, providerUserID}
	if id, ok := s.byLink[key]; ok {
		return cloneUser(s.users[id]), false, nil
	}
	u := &auth.UserIdentity{
		ID:    uuid.NewString(),
		Links: []auth.ProviderLink{{Provider: provider, ProviderUserID: providerUserID}},
	}
	s.users[u.ID] = u
	s.byLink[key] = u.ID
	return cloneUser(u), true, nil
}

// UserCount reports the number of stored identities. Test helper.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// =============================================================================
// secrets.Store
// =============================================================================

func (s *Store) List(ctx context.Context) ([]*secrets.Secret, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*secrets.Secret, len(s.board))
	for i, sec := range s.board {
		out[i] = cloneSecret(sec)
	}
	return out, nil
}

func (s *Store) Add(ctx context.Context, ownerID, body string) (*secrets.Secret, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byBody[body]; ok {
		return cloneSecret(existing), nil
	}
	sec := &secrets.Secret{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Body:      body,
		CreatedAt: time.Now(),
	}
	s.board = append(s.board, sec)
	s.byBody[body] = sec
	return cloneSecret(sec), nil
}

func (s *Store) Delete(ctx context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sec := range s.board {
		if sec.ID == id {
			if sec.OwnerID != ownerID {
				return secrets.ErrNotFound
			}
			s.board = append(s.board[:i], s.board[i+1:]...)
			delete(s.byBody, sec.Body)
			return nil
		}
	}
	return secrets.ErrNotFound
}

func cloneUser(u *auth.UserIdentity) *auth.UserIdentity {
	out := *u
	out.Links = append([]auth.ProviderLink(nil), u.Links...)
	return &out
}

func cloneSecret(sec *secrets.Secret) *secrets.Secret {
	out := *sec
	return &out
}
