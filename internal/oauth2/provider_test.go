package oauth2_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	xoauth2 "golang.org/x/oauth2"

	"whisperboard/internal/oauth2"
)

// mockProviderServer stands in for a real identity provider, serving the
// token-exchange and profile endpoints.
type mockProviderServer struct {
	server *httptest.Server

	tokenError    bool
	userInfoError bool
	profile       map[string]any
}

func newMockProviderServer() *mockProviderServer {
	mock := &mockProviderServer{
		profile: map[string]any{
			"id":   "g123",
			"name": "Test User",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if mock.tokenError {
			http.Error(w, "token exchange failed", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "mock_access_token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if mock.userInfoError {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mock.profile)
	})

	mock.server = httptest.NewServer(mux)
	return mock
}

func (m *mockProviderServer) Close() {
	m.server.Close()
}

type handledUser struct {
	provider       string
	providerUserID string
	profile        map[string]any
}

func newTestProvider(mock *mockProviderServer) (*oauth2.Provider, *[]handledUser) {
	var handled []handledUser
	p := oauth2.New("test", xoauth2.Config{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		RedirectURL:  "http://localhost:3000/auth/test/secrets",
		Scopes:       []string{"profile"},
		Endpoint: xoauth2.Endpoint{
			AuthURL:  mock.server.URL + "/auth",
			TokenURL: mock.server.URL + "/token",
		},
	}, mock.server.URL+"/userinfo", func(provider string, _ *xoauth2.Token, providerUserID string, profile map[string]any, w http.ResponseWriter, r *http.Request) {
		handled = append(handled, handledUser{provider, providerUserID, profile})
		http.Redirect(w, r, "/secrets", http.StatusFound)
	})
	return p, &handled
}

func TestBeginRedirectsToProvider(t *testing.T) {
	mock := newMockProviderServer()
	defer mock.Close()
	p, _ := newTestProvider(mock)

	rr := httptest.NewRecorder()
	p.Begin(rr, httptest.NewRequest(http.MethodGet, "/auth/test", nil))

	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusFound)
	}

	location, err := url.Parse(rr.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(location.String(), mock.server.URL+"/auth") {
		t.Errorf("redirect target = %s, want provider authorize endpoint", location)
	}
	query := location.Query()
	if query.Get("client_id") != "test-client-id" {
		t.Error("authorize URL missing client_id")
	}
	if query.Get("response_type") != "code" {
		t.Error("authorize URL missing response_type=code")
	}

	state := query.Get("state")
	if state == "" {
		t.Fatal("authorize URL missing state")
	}
	cookie := stateCookie(rr.Result().Cookies())
	if cookie == nil {
		t.Fatal("no oauthstate cookie set")
	}
	if cookie.Value != state {
		t.Error("state cookie does not match the state in the authorize URL")
	}
}

func TestBeginStatesAreUnique(t *testing.T) {
	mock := newMockProviderServer()
	defer mock.Close()
	p, _ := newTestProvider(mock)

	states := make(map[string]bool)
	for i := 0; i < 8; i++ {
		rr := httptest.NewRecorder()
		p.Begin(rr, httptest.NewRequest(http.MethodGet, "/auth/test", nil))
		cookie := stateCookie(rr.Result().Cookies())
		if cookie == nil || cookie.Value == "" {
			t.Fatal("Begin set no state")
		}
		if states[cookie.Value] {
			t.Fatal("Begin reused a state value")
		}
		states[cookie.Value] = true
	}
}

func TestCallbackSuccess(t *testing.T) {
	mock := newMockProviderServer()
	defer mock.Close()
	p, handled := newTestProvider(mock)

	rr := httptest.NewRecorder()
	p.Callback(rr, callbackRequest("state-1", "state-1", "code-1"))

	if len(*handled) != 1 {
		t.Fatalf("OnUser called %d times, want 1", len(*handled))
	}
	got := (*handled)[0]
	if got.provider != "test" || got.providerUserID != "g123" {
		t.Errorf("OnUser got (%s, %s), want (test, g123)", got.provider, got.providerUserID)
	}
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/secrets" {
		t.Errorf("callback response = %d %s", rr.Code, rr.Header().Get("Location"))
	}
}

func TestCallbackFailures(t *testing.T) {
	tests := []struct {
		name      string
		configure func(mock *mockProviderServer)
		request   func() *http.Request
	}{
		{
			name:      "state mismatch",
			configure: func(*mockProviderServer) {},
			request:   func() *http.Request { return callbackRequest("state-a", "state-b", "code-1") },
		},
		{
			name:      "missing state cookie",
			configure: func(*mockProviderServer) {},
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/auth/test/secrets?state=s&code=c", nil)
			},
		},
		{
			name:      "token exchange fails",
			configure: func(m *mockProviderServer) { m.tokenError = true },
			request:   func() *http.Request { return callbackRequest("s", "s", "code-1") },
		},
		{
			name:      "profile endpoint fails",
			configure: func(m *mockProviderServer) { m.userInfoError = true },
			request:   func() *http.Request { return callbackRequest("s", "s", "code-1") },
		},
		{
			name:      "profile has no id",
			configure: func(m *mockProviderServer) { m.profile = map[string]any{"name": "No ID"} },
			request:   func() *http.Request { return callbackRequest("s", "s", "code-1") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockProviderServer()
			defer mock.Close()
			p, handled := newTestProvider(mock)
			p.FailureURL = "/login"
			tt.configure(mock)

			rr := httptest.NewRecorder()
			p.Callback(rr, tt.request())

			if len(*handled) != 0 {
				t.Error("OnUser must not be called on a failed callback")
			}
			if rr.Code != http.StatusTemporaryRedirect {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusTemporaryRedirect)
			}
			if loc := rr.Header().Get("Location"); loc != "/login" {
				t.Errorf("Location = %q, want /login", loc)
			}
		})
	}
}

// The provider id arrives as a JSON number from some providers; it must still
// resolve to a stable string key.
func TestCallbackNumericProfileID(t *testing.T) {
	mock := newMockProviderServer()
	defer mock.Close()
	mock.profile = map[string]any{"id": float64(98765), "login": "tester"}
	p, handled := newTestProvider(mock)

	rr := httptest.NewRecorder()
	p.Callback(rr, callbackRequest("s", "s", "code-1"))

	if len(*handled) != 1 {
		t.Fatalf("OnUser called %d times, want 1", len(*handled))
	}
	if got := (*handled)[0].providerUserID; got != "98765" {
		t.Errorf("providerUserID = %q, want 98765", got)
	}
}

func callbackRequest(cookieState, queryState, code string) *http.Request {
	target := "/auth/test/secrets?state=" + url.QueryEscape(queryState) + "&code=" + url.QueryEscape(code)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.AddCookie(&http.Cookie{Name: "oauthstate", Value: cookieState})
	return req
}

func stateCookie(cookies []*http.Cookie) *http.Cookie {
	for _, c := range cookies {
		if c.Name == "oauthstate" {
			return c
		}
	}
	return nil
}
