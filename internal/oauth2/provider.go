// Package oauth2 drives the two-step authorization-code dance against the
// configured identity providers. Each Provider is an explicit value built at
// startup and injected where needed; there is no process-wide registration.
package oauth2

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
)

// HandleUserFunc is invoked after a successful callback with the verified
// provider-assigned user id. The profile map is informational only; the id
// is the single field trusted for identity resolution.
type HandleUserFunc func(provider string, token *oauth2.Token, providerUserID string, profile map[string]any, w http.ResponseWriter, r *http.Request)

// Provider runs the redirect dance for one OAuth2 identity provider.
type Provider struct {
	// Name identifies the provider in provider links ("google", "facebook").
	Name string

	// OnUser is called with the provider user id once the callback verifies.
	OnUser HandleUserFunc

	// FailureURL receives the redirect when any step of the callback fails.
	// Defaults to "/login". Failures are never retried automatically.
	FailureURL string

	// UserInfoURL is the profile endpoint queried with the access token.
	// Overridable in tests.
	UserInfoURL string

	Logger *slog.Logger

	config oauth2.Config
}

// New builds a Provider from raw oauth2 settings. The per-provider
// constructors in this package are the usual way in.
func New(name string, config oauth2.Config, userInfoURL string, onUser HandleUserFunc) *Provider {
	return &Provider{
		Name:        name,
		OnUser:      onUser,
		UserInfoURL: userInfoURL,
		config:      config,
	}
}

func (p *Provider) failureURL() string {
	if p.FailureURL == "" {
		return "/login"
	}
	return p.FailureURL
}

func (p *Provider) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// Begin redirects the browser to the provider's authorization endpoint.
// The anti-CSRF state lands in a short-lived cookie; nothing else changes
// locally, so an abandoned flow needs no cleanup.
func (p *Provider) Begin(w http.ResponseWriter, r *http.Request) {
	state := setStateCookie(w, p.logger())
	http.Redirect(w, r, p.config.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the flow: state check, code-for-token exchange, profile
// fetch, then hands the provider user id to OnUser. Any failure redirects to
// the login entry point without establishing a session.
func (p *Provider) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || r.FormValue("state") != stateCookie.Value {
		p.fail(w, r, fmt.Errorf("state mismatch"))
		return
	}
	clearStateCookie(w)

	token, err := p.config.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		p.fail(w, r, fmt.Errorf("exchanging code: %w", err))
		return
	}

	id, profile, err := p.fetchUserInfo(r.Context(), token)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	p.OnUser(p.Name, token, id, profile, w, r)
}

func (p *Provider) fail(w http.ResponseWriter, r *http.Request, err error) {
	p.logger().Warn("oauth callback failed", "provider", p.Name, "err", err)
	http.Redirect(w, r, p.failureURL(), http.StatusTemporaryRedirect)
}

func (p *Provider) fetchUserInfo(ctx context.Context, token *oauth2.Token) (string, map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return "", nil, fmt.Errorf("building profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("fetching %s profile: %w", p.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("%s profile endpoint returned %d", p.Name, resp.StatusCode)
	}

	var profile map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", nil, fmt.Errorf("decoding %s profile: %w", p.Name, err)
	}

	id := profileID(profile)
	if id == "" {
		return "", nil, fmt.Errorf("%s profile has no usable id", p.Name)
	}
	return id, profile, nil
}

// profileID extracts the provider-assigned user id. Some providers return it
// as a JSON number.
func profileID(profile map[string]any) string {
	switch v := profile["id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case json.Number:
		return v.String()
	}
	return ""
}
