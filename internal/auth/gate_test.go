package auth_test

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/alexedwards/scs/v2"

	"whisperboard/internal/auth"
)

// gateFixture mounts a protected resource behind the gate plus a trivial
// login endpoint, so tests can drive the full cookie round trip.
type gateFixture struct {
	server  *httptest.Server
	client  *http.Client
	visited *bool
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	manager := scs.New()
	sessions := auth.NewSessions(manager, testCodec(), nil)
	gate := &auth.Gate{Sessions: sessions}

	visited := false
	mux := http.NewServeMux()
	mux.Handle("GET /protected", gate.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visited = true
		su, ok := auth.CurrentUser(r.Context())
		if !ok {
			t.Error("gate admitted a request without a context identity")
		}
		w.Write([]byte("hello " + su.Username))
	})))
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.Establish(r.Context(), &auth.UserIdentity{ID: "u1", Username: "alice"}); err != nil {
			t.Errorf("Establish failed: %v", err)
		}
	})
	mux.HandleFunc("GET /logout", func(w http.ResponseWriter, r *http.Request) {
		sessions.Destroy(r.Context())
	})

	server := httptest.NewServer(manager.LoadAndSave(mux))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &gateFixture{server: server, client: client, visited: &visited}
}

func (f *gateFixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := f.client.Get(f.server.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	return resp
}

func (f *gateFixture) post(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := f.client.PostForm(f.server.URL+path, url.Values{})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	return resp
}

func TestGateRedirectsUnauthenticated(t *testing.T) {
	f := newGateFixture(t)

	resp := f.get(t, "/protected")
	if resp.StatusCode != http.StatusFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusFound)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	if *f.visited {
		t.Error("protected handler ran for an unauthenticated request")
	}
}

func TestGateAdmitsAuthenticated(t *testing.T) {
	f := newGateFixture(t)

	f.post(t, "/login")
	resp := f.get(t, "/protected")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if !*f.visited {
		t.Error("protected handler did not run for an authenticated request")
	}
}

func TestGateBlocksAfterLogout(t *testing.T) {
	f := newGateFixture(t)

	f.post(t, "/login")
	f.get(t, "/logout")

	*f.visited = false
	resp := f.get(t, "/protected")
	if resp.StatusCode != http.StatusFound {
		t.Errorf("status after logout = %d, want %d", resp.StatusCode, http.StatusFound)
	}
	if *f.visited {
		t.Error("protected handler ran after logout")
	}
}
