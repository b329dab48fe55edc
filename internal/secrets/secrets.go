// Package secrets holds the secret-record model and its persistence contract.
// Secrets are shared anonymously: every authenticated user sees the full
// board, but only the owner may delete an entry.
package secrets

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Delete when no secret matches the id for the
// given owner.
var ErrNotFound = errors.New("secrets: not found")

// Secret is one anonymous entry on the board. OwnerID scopes deletion; it is
// never rendered.
type Secret struct {
	ID        string
	OwnerID   string
	Body      string
	CreatedAt time.Time
}

// Store is the persistence contract for secrets.
type Store interface {
	// List returns all secrets in creation order.
	List(ctx context.Context) ([]*Secret, error)

	// Add stores a secret for owner. Submitting a body that already exists
	// returns the existing record instead of storing a duplicate.
	Add(ctx context.Context, ownerID, body string) (*Secret, error)

	// Delete removes the secret with the given id, but only when owner owns
	// it. Returns ErrNotFound otherwise; someone else's secret is untouched.
	Delete(ctx context.Context, id, ownerID string) error
}
