// Package web wires the HTTP surface: the route table, the handlers that
// render the board, and the glue between the OAuth providers and the
// authentication core.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	xoauth2 "golang.org/x/oauth2"

	"whisperboard/internal/auth"
	"whisperboard/internal/oauth2"
	"whisperboard/internal/secrets"
)

// OAuthConfig carries one provider's registered application credentials.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Enabled reports whether the provider is configured at all. Unconfigured
// providers still mount their routes; they just fail to the login page.
func (c OAuthConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Config assembles a Server.
type Config struct {
	Users    auth.UserStore
	Board    secrets.Store
	Hasher   *auth.Hasher
	Sessions *auth.Sessions
	Logger   *slog.Logger

	Google   OAuthConfig
	Facebook OAuthConfig
}

// Server owns the route table and handlers.
type Server struct {
	logger   *slog.Logger
	board    secrets.Store
	sessions *auth.Sessions
	gate     *auth.Gate
	local    *auth.Local
	resolver *auth.Resolver

	// Google and Facebook are replaceable before Handler is called, which is
	// how tests point them at a mock provider.
	Google   *oauth2.Provider
	Facebook *oauth2.Provider
}

// New builds the server and its OAuth providers. Both providers funnel their
// verified identities through the same resolver and session path as local
// login.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		logger:   logger,
		board:    cfg.Board,
		sessions: cfg.Sessions,
		gate:     &auth.Gate{Sessions: cfg.Sessions, LoginURL: "/login"},
		resolver: auth.NewResolver(cfg.Users, logger),
		local: &auth.Local{
			Store:    cfg.Users,
			Hasher:   cfg.Hasher,
			Sessions: cfg.Sessions,
			Logger:   logger,
		},
	}
	s.Google = oauth2.NewGoogle(cfg.Google.ClientID, cfg.Google.ClientSecret,
		cfg.Google.CallbackURL, s.SaveUserAndRedirect)
	s.Google.Logger = logger
	s.Facebook = oauth2.NewFacebook(cfg.Facebook.ClientID, cfg.Facebook.ClientSecret,
		cfg.Facebook.CallbackURL, s.SaveUserAndRedirect)
	s.Facebook.Logger = logger

	if !cfg.Google.Enabled() {
		logger.Warn("google oauth credentials not set, sign-in via google will fail")
	}
	if !cfg.Facebook.Enabled() {
		logger.Warn("facebook oauth credentials not set, sign-in via facebook will fail")
	}
	return s
}

// Handler returns the full middleware-wrapped handler. The session manager
// wraps everything so any handler can read or establish a session.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.Handle("/", s.gate.WithUser(http.HandlerFunc(s.handleHome))).Methods(http.MethodGet)

	r.HandleFunc("/login", s.handleLoginForm).Methods(http.MethodGet)
	r.HandleFunc("/login", s.local.HandleLogin).Methods(http.MethodPost)
	r.HandleFunc("/register", s.handleRegisterForm).Methods(http.MethodGet)
	r.HandleFunc("/register", s.local.HandleRegister).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.local.HandleLogout).Methods(http.MethodGet)

	r.HandleFunc("/auth/google", s.Google.Begin).Methods(http.MethodGet)
	r.HandleFunc("/auth/google/secrets", s.Google.Callback).Methods(http.MethodGet)
	r.HandleFunc("/auth/facebook", s.Facebook.Begin).Methods(http.MethodGet)
	r.HandleFunc("/auth/facebook/secrets", s.Facebook.Callback).Methods(http.MethodGet)

	// Everything below passes through the gate; the handlers themselves are
	// unreachable without a decoded session.
	r.Handle("/secrets", s.gate.RequireUser(http.HandlerFunc(s.handleSecrets))).Methods(http.MethodGet)
	r.Handle("/submit", s.gate.RequireUser(http.HandlerFunc(s.handleSubmitForm))).Methods(http.MethodGet)
	r.Handle("/submit", s.gate.RequireUser(http.HandlerFunc(s.handleSubmit))).Methods(http.MethodPost)
	r.Handle("/delete", s.gate.RequireUser(http.HandlerFunc(s.handleDelete))).Methods(http.MethodPost)

	return s.sessions.Manager.LoadAndSave(r)
}

// SaveUserAndRedirect is the shared tail of both provider callbacks: resolve
// the federated identity to a user, establish the session, land on the board.
func (s *Server) SaveUserAndRedirect(provider string, _ *xoauth2.Token, providerUserID string, _ map[string]any, w http.ResponseWriter, r *http.Request) {
	user, err := s.resolver.Resolve(r.Context(), provider, providerUserID)
	if err != nil {
		s.logger.Warn("resolving federated identity failed", "provider", provider, "err", err)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	if err := s.sessions.Establish(r.Context(), user); err != nil {
		s.logger.Error("establishing session failed", "provider", provider, "err", err)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/secrets", http.StatusFound)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
