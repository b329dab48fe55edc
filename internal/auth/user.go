package auth

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by store lookups that match no record.
	ErrNotFound = errors.New("auth: not found")

	// ErrDuplicateUsername is returned by CreateLocal when the username is taken.
	ErrDuplicateUsername = errors.New("auth: username already taken")

	// ErrInvalidProviderIdentity is returned when a federated identity has no
	// usable provider-assigned id.
	ErrInvalidProviderIdentity = errors.New("auth: invalid provider identity")

	// ErrInvalidSession is returned when a session payload cannot be decoded.
	ErrInvalidSession = errors.New("auth: invalid session")
)

// ProviderLink ties a federated provider account to a user identity.
// A (Provider, ProviderUserID) pair resolves to at most one user system-wide.
type ProviderLink struct {
	Provider       string `json:"provider"`         // "google", "facebook"
	ProviderUserID string `json:"provider_user_id"` // id assigned by the provider
}

// UserIdentity is a unified user account. A user always has at least one
// authentication path: a local password credential, a provider link, or both.
type UserIdentity struct {
	ID           string         `json:"id"`
	Username     string         `json:"username,omitempty"`      // set for local accounts, unique when set
	PasswordHash string         `json:"password_hash,omitempty"` // bcrypt hash, set for local accounts
	Links        []ProviderLink `json:"links,omitempty"`
}

// HasLocalCredential reports whether the user can log in with a password.
func (u *UserIdentity) HasLocalCredential() bool {
	return u.PasswordHash != ""
}

// LinkedTo reports whether the user has a link for the given provider.
func (u *UserIdentity) LinkedTo(provider string) bool {
	for _, l := range u.Links {
		if l.Provider == provider {
			return true
		}
	}
	return false
}

// UserStore is the persistence contract for user identities.
//
// Uniqueness of usernames and of (provider, providerUserID) pairs is enforced
// by the backing store, not by check-then-act logic in callers. Implementations
// live in internal/store.
type UserStore interface {
	// GetByID retrieves a user by id. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*UserIdentity, error)

	// GetByUsername retrieves a local user by username. Returns ErrNotFound if absent.
	GetByUsername(ctx context.Context, username string) (*UserIdentity, error)

	// GetByProvider retrieves the user linked to (provider, providerUserID).
	// Returns ErrNotFound if no such link exists.
	GetByProvider(ctx context.Context, provider, providerUserID string) (*UserIdentity, error)

	// CreateLocal creates a user with a username and password credential.
	// Returns ErrDuplicateUsername if the username is taken; the existing
	// record is left untouched.
	CreateLocal(ctx context.Context, username, passwordHash string) (*UserIdentity, error)

	// GetOrCreateByProvider atomically finds or creates the user linked to
	// (provider, providerUserID). Concurrent calls with the same pair always
	// yield the same user, never two records. The created flag reports whether
	// this call created the user.
	GetOrCreateByProvider(ctx context.Context, provider, providerUserID string) (u *UserIdentity, created bool, err error)
}
