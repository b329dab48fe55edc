package auth

import (
	"context"
	"net/http"
)

type ctxKey int

const userCtxKey ctxKey = iota

// Gate is the single access-control checkpoint. Every protected handler is
// wrapped in RequireUser; nothing else decides whether a request is
// authenticated.
type Gate struct {
	Sessions *Sessions

	// LoginURL is where unauthenticated requests are redirected.
	// Defaults to "/login".
	LoginURL string
}

func (g *Gate) loginURL() string {
	if g.LoginURL == "" {
		return "/login"
	}
	return g.LoginURL
}

// RequireUser admits the request only when the session decodes to a valid
// identity, which it attaches to the request context. Otherwise it redirects
// to the login page without invoking next.
func (g *Gate) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		su, ok := g.Sessions.Current(r.Context())
		if !ok {
			http.Redirect(w, r, g.loginURL(), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), su)))
	})
}

// WithUser attaches the session identity to the context when present but
// never blocks the request. For pages that render differently when logged in.
func (g *Gate) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if su, ok := g.Sessions.Current(r.Context()); ok {
			r = r.WithContext(withUser(r.Context(), su))
		}
		next.ServeHTTP(w, r)
	})
}

func withUser(ctx context.Context, su SessionUser) context.Context {
	return context.WithValue(ctx, userCtxKey, su)
}

// CurrentUser returns the identity the gate attached to the context.
func CurrentUser(ctx context.Context) (SessionUser, bool) {
	su, ok := ctx.Value(userCtxKey).(SessionUser)
	return su, ok
}
