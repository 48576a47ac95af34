package authsdk

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/quill/pkg/httpx"
	"github.com/aussiebroadwan/quill/pkg/jwtx"
)

// fakeServer answers the auth endpoints with canned behaviour and records
// what the session sends to /echo.
type fakeServer struct {
	srv    *httptest.Server
	issuer *jwtx.TokenIssuer

	refreshCalls atomic.Int32
	logoutCalls  atomic.Int32
	echoCalls    atomic.Int32

	// refreshOK controls whether /auth/refresh issues a token.
	refreshOK atomic.Bool
	// stale is the bearer /echo rejects; "*" rejects everything.
	stale atomic.Value
	// refreshGate, when set, holds /auth/refresh until it is closed.
	refreshGate atomic.Pointer[chan struct{}]

	mu     sync.Mutex
	bodies []string
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	issuer, err := jwtx.NewTokenIssuer(
		[]byte("fake-access-secret-0123456789abcdef"),
		[]byte("fake-refresh-secret-0123456789abcde"),
		"fake", time.Minute, time.Hour)
	require.NoError(t, err)

	f := &fakeServer{issuer: issuer}
	f.stale.Store("")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		if gate := f.refreshGate.Load(); gate != nil {
			select {
			case <-*gate:
			case <-r.Context().Done():
				return
			}
		}
		if !f.refreshOK.Load() {
			ErrTokenInvalid.WriteError(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, TokenResponse{AccessToken: f.token(t, "user-1")})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.logoutCalls.Add(1)
		if f.rejects(r) {
			ErrTokenInvalid.WriteError(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, struct{}{})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if f.rejects(r) {
			ErrTokenInvalid.WriteError(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, Identity{Subject: "user-1"})
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		f.echoCalls.Add(1)
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.bodies = append(f.bodies, string(body))
		f.mu.Unlock()
		if f.rejects(r) {
			ErrTokenInvalid.WriteError(w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeServer) rejects(r *http.Request) bool {
	stale := f.stale.Load().(string)
	auth := r.Header.Get("Authorization")
	return auth == "" || stale == "*" || auth == "Bearer "+stale
}

func (f *fakeServer) token(t *testing.T, sub string) string {
	t.Helper()
	tok, _, err := f.issuer.IssueAccessToken(sub, sub+"@example.com", "editor")
	require.NoError(t, err)
	return tok
}

func (f *fakeServer) seenBodies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.bodies...)
}

func (f *fakeServer) session(opts ...Option) *Session {
	opts = append([]Option{WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	return NewSession(NewSDKClient(f.srv.URL), opts...)
}

// withToken puts s in the authenticated state holding token.
func withToken(t *testing.T, s *Session, token string) {
	t.Helper()
	id, err := identityFromToken(token)
	require.NoError(t, err)
	s.set(token, id, true)
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
