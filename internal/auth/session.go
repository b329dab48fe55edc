package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/golang-jwt/jwt/v5"
)

// sessionTokenKey is the session variable holding the encoded identity.
const sessionTokenKey = "authToken"

// SessionUser is the minimal identity reference carried by a session.
// It deliberately excludes the password credential and provider links; anyone
// needing richer data re-fetches from the UserStore.
type SessionUser struct {
	ID       string
	Username string
}

// Codec serializes an authenticated identity into a compact signed token and
// reconstructs it on each request. Decode never consults the store: the
// session layer answers "is this request authenticated", the store answers
// "what can this identity do".
type Codec struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// NewCodec returns a Codec signing with secret. TTL defaults to one day.
func NewCodec(secret, issuer string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Codec{Secret: secret, Issuer: issuer, TTL: ttl}
}

// Encode serializes u into an HS256-signed token carrying only the user id
// and username.
func (c *Codec) Encode(u *UserIdentity) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      u.ID,
		"username": u.Username,
		"iss":      c.Issuer,
		"iat":      now.Unix(),
		"exp":      now.Add(c.TTL).Unix(),
	})
	signed, err := token.SignedString([]byte(c.Secret))
	if err != nil {
		return "", fmt.Errorf("auth: signing session token: %w", err)
	}
	return signed, nil
}

// Decode reconstructs the minimal identity reference from an encoded token.
// Any malformed, tampered or expired token yields ErrInvalidSession.
func (c *Codec) Decode(encoded string) (SessionUser, error) {
	token, err := jwt.Parse(encoded, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(c.Secret), nil
	})
	if err != nil || !token.Valid {
		return SessionUser{}, ErrInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return SessionUser{}, ErrInvalidSession
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return SessionUser{}, ErrInvalidSession
	}
	username, _ := claims["username"].(string)
	return SessionUser{ID: sub, Username: username}, nil
}

// Sessions binds the codec to a server-side session store. The client only
// ever holds the opaque session cookie managed by scs; the encoded identity
// stays on the server.
type Sessions struct {
	Manager *scs.SessionManager
	Codec   *Codec
	Logger  *slog.Logger
}

// NewSessions wires a session manager and codec together.
func NewSessions(manager *scs.SessionManager, codec *Codec, logger *slog.Logger) *Sessions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sessions{Manager: manager, Codec: codec, Logger: logger}
}

// Establish records u as the authenticated identity for the current session.
// The session token is renewed first so a pre-login session id is never
// carried across the privilege boundary.
func (s *Sessions) Establish(ctx context.Context, u *UserIdentity) error {
	if err := s.Manager.RenewToken(ctx); err != nil {
		return fmt.Errorf("auth: renewing session token: %w", err)
	}
	encoded, err := s.Codec.Encode(u)
	if err != nil {
		return err
	}
	s.Manager.Put(ctx, sessionTokenKey, encoded)
	return nil
}

// Current returns the identity attached to the request's session, if any.
// Undecodable tokens count as unauthenticated.
func (s *Sessions) Current(ctx context.Context) (SessionUser, bool) {
	encoded := s.Manager.GetString(ctx, sessionTokenKey)
	if encoded == "" {
		return SessionUser{}, false
	}
	su, err := s.Codec.Decode(encoded)
	if err != nil {
		s.Logger.Warn("discarding undecodable session token", "err", err)
		return SessionUser{}, false
	}
	return su, true
}

// Destroy ends the current session. The caller logs a returned error but
// never surfaces it as an auth failure; the session data is gone either way.
func (s *Sessions) Destroy(ctx context.Context) error {
	s.Manager.Remove(ctx, sessionTokenKey)
	return s.Manager.Destroy(ctx)
}
