package auth_test

import (
	"testing"

	"whisperboard/internal/auth"
)

func TestHasLocalCredential(t *testing.T) {
	tests := []struct {
		name string
		user auth.UserIdentity
		want bool
	}{
		{"local user", auth.UserIdentity{ID: "u1", Username: "alice", PasswordHash: "$2a$10$x"}, true},
		{"provider-only user", auth.UserIdentity{ID: "u2", Links: []auth.ProviderLink{{Provider: "google", ProviderUserID: "g1"}}}, false},
		{"empty user", auth.UserIdentity{ID: "u3"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.HasLocalCredential(); got != tt.want {
				t.Errorf("HasLocalCredential() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLinkedTo(t *testing.T) {
	u := auth.UserIdentity{
		ID: "u1",
		Links: []auth.ProviderLink{
			{Provider: "google", ProviderUserID: "g1"},
			{Provider: "facebook", ProviderUserID: "f1"},
		},
	}

	if !u.LinkedTo("google") || !u.LinkedTo("facebook") {
		t.Error("user should report both of its provider links")
	}
	if u.LinkedTo("github") {
		t.Error("user reported a link it does not have")
	}
}
