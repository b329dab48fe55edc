package web

import (
	"errors"
	"net/http"
	"strings"

	"whisperboard/internal/auth"
	"whisperboard/internal/secrets"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	su, loggedIn := auth.CurrentUser(r.Context())
	s.render(w, "home", map[string]any{"LoggedIn": loggedIn, "Username": su.Username})
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "login", nil)
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "register", nil)
}

func (s *Server) handleSubmitForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "submit", nil)
}

// secretView is what the board template sees: the body, plus whether the
// viewer may delete the entry. Ownership is never shown, only acted on.
type secretView struct {
	ID        string
	Body      string
	Deletable bool
}

func (s *Server) handleSecrets(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r.Context())
	all, err := s.board.List(r.Context())
	if err != nil {
		s.logger.Error("listing secrets failed", "err", err)
		http.Error(w, "something went wrong", http.StatusInternalServerError)
		return
	}
	views := make([]secretView, len(all))
	for i, sec := range all {
		views[i] = secretView{
			ID:        sec.ID,
			Body:      sec.Body,
			Deletable: sec.OwnerID == su.ID,
		}
	}
	s.render(w, "secrets", map[string]any{"Secrets": views, "Username": su.Username})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r.Context())
	body := strings.TrimSpace(r.PostFormValue("secret"))
	if body != "" {
		if _, err := s.board.Add(r.Context(), su.ID, body); err != nil {
			s.logger.Error("adding secret failed", "err", err)
		}
	}
	// Duplicate or empty submissions land back on the board either way.
	http.Redirect(w, r, "/secrets", http.StatusFound)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r.Context())
	id := r.PostFormValue("secret_id")
	if id != "" {
		err := s.board.Delete(r.Context(), id, su.ID)
		if err != nil && !errors.Is(err, secrets.ErrNotFound) {
			s.logger.Error("deleting secret failed", "err", err)
		}
	}
	http.Redirect(w, r, "/secrets", http.StatusFound)
}
