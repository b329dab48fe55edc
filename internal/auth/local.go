package auth

import (
	"errors"
	"log/slog"
	"net/http"
)

// Local serves username/password login and registration.
//
// Every failure path, from an unknown username to a storage fault, ends in
// the same redirect to FailureURL. The response never distinguishes "no such
// user" from "wrong password", so usernames cannot be enumerated through the
// login form.
type Local struct {
	Store    UserStore
	Hasher   *Hasher
	Sessions *Sessions
	Logger   *slog.Logger

	// SuccessURL is where authenticated users land. Defaults to "/secrets".
	SuccessURL string
	// FailureURL is the redirect target for every failed attempt. Defaults to "/login".
	FailureURL string
}

func (l *Local) successURL() string {
	if l.SuccessURL == "" {
		return "/secrets"
	}
	return l.SuccessURL
}

func (l *Local) failureURL() string {
	if l.FailureURL == "" {
		return "/login"
	}
	return l.FailureURL
}

func (l *Local) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

// HandleLogin processes the login form.
func (l *Local) HandleLogin(w http.ResponseWriter, r *http.Request) {
	username, password, ok := loginForm(r)
	if !ok {
		http.Redirect(w, r, l.failureURL(), http.StatusFound)
		return
	}

	user, err := l.Store.GetByUsername(r.Context(), username)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			l.logger().Error("login lookup failed", "err", err)
		}
		http.Redirect(w, r, l.failureURL(), http.StatusFound)
		return
	}
	if !user.HasLocalCredential() || !l.Hasher.Verify(password, user.PasswordHash) {
		http.Redirect(w, r, l.failureURL(), http.StatusFound)
		return
	}

	if err := l.Sessions.Establish(r.Context(), user); err != nil {
		l.logger().Error("establishing session failed", "err", err)
		http.Redirect(w, r, l.failureURL(), http.StatusFound)
		return
	}
	http.Redirect(w, r, l.successURL(), http.StatusFound)
}

// HandleRegister processes the registration form. A taken username fails the
// registration; it never merges with or mutates the existing account.
func (l *Local) HandleRegister(w http.ResponseWriter, r *http.Request) {
	username, password, ok := loginForm(r)
	if !ok {
		http.Redirect(w, r, l.failureURL(), http.StatusFound)
		return
	}

	hash, err := l.Hasher.Hash(password)
	if err != nil {
		l.logger().Warn("rejecting registration password", "err", err)
		http.Redirect(w, r, l.failureURL(), http.StatusFound)
		return
	}

	user, err := l.Store.CreateLocal(r.Context(), username, hash)
	if err != nil {
		if !errors.Is(err, ErrDuplicateUsername) {
			l.logger().Error("creating local user failed", "err", err)
		}
		http.Redirect(w, r, l.failureURL(), http.StatusFound)
		return
	}

	if err := l.Sessions.Establish(r.Context(), user); err != nil {
		l.logger().Error("establishing session failed", "err", err)
		http.Redirect(w, r, l.failureURL(), http.StatusFound)
		return
	}
	http.Redirect(w, r, l.successURL(), http.StatusFound)
}

// HandleLogout clears the session on every path. A destroy error is logged,
// never propagated: the user ends up logged out and redirected home
// regardless.
func (l *Local) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := l.Sessions.Destroy(r.Context()); err != nil {
		l.logger().Warn("destroying session failed", "err", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func loginForm(r *http.Request) (username, password string, ok bool) {
	if err := r.ParseForm(); err != nil {
		return "", "", false
	}
	username = r.PostFormValue("username")
	password = r.PostFormValue("password")
	if username == "" || password == "" {
		return "", "", false
	}
	return username, password, true
}
