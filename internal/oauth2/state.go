package oauth2

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"
)

const stateCookieName = "oauthstate"

// stateTTL keeps the state cookie alive just long enough for the round trip
// to the provider and back.
const stateTTL = 10 * time.Minute

// setStateCookie generates a random anti-CSRF state value and parks it in a
// short-lived cookie so the callback can check what the provider echoes back.
func setStateCookie(w http.ResponseWriter, logger *slog.Logger) string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		logger.Error("generating oauth state failed", "err", err)
	}
	state := base64.URLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(stateTTL),
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
	})
	return state
}

func clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:    stateCookieName,
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Now(),
	})
}
