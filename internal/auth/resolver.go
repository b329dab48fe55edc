package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Resolver maps a federated provider identity to a local user, creating the
// user on first sight. It is the single entry point for every OAuth provider.
type Resolver struct {
	Store  UserStore
	Logger *slog.Logger
}

// NewResolver returns a Resolver over the given store.
func NewResolver(store UserStore, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{Store: store, Logger: logger}
}

// Resolve finds or creates the user linked to (provider, providerUserID).
// Repeated calls with the same pair return the same user id.
//
// A blank providerUserID is rejected with ErrInvalidProviderIdentity before
// the store is touched: an empty linking key would collapse every such
// identity into one account.
func (rv *Resolver) Resolve(ctx context.Context, provider, providerUserID string) (*UserIdentity, error) {
	if strings.TrimSpace(provider) == "" || strings.TrimSpace(providerUserID) == "" {
		return nil, ErrInvalidProviderIdentity
	}

	user, created, err := rv.Store.GetOrCreateByProvider(ctx, provider, providerUserID)
	if err != nil {
		return nil, fmt.Errorf("auth: resolving %s identity: %w", provider, err)
	}
	if created {
		rv.Logger.Info("created user for federated identity",
			"provider", provider, "user_id", user.ID)
	}
	return user, nil
}
