package authsdk

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/aussiebroadwan/quill/pkg/jwtx"
)

// MaxRefreshAttempts is the number of consecutive failed refreshes after
// which the session stops calling the server until the next Login.
const MaxRefreshAttempts = 3

// sharedRefreshTimeout bounds a refresh shared by several callers, since it
// no longer follows any one caller's context.
const sharedRefreshTimeout = 30 * time.Second

// State is the lifecycle state of a Session.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "uninitialized"
	}
}

// Option configures a Session.
type Option func(*Session)

// WithStorage sets where the access token is persisted. Defaults to memory.
func WithStorage(ts TokenStorage) Option {
	return func(s *Session) { s.storage = ts }
}

// WithLogger sets the logger used for best-effort failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithValidatePath sets the authenticated endpoint Initialize uses to check
// a restored token. Defaults to MePath.
func WithValidatePath(path string) Option {
	return func(s *Session) { s.validatePath = path }
}

// WithSingleFlight controls whether concurrent refreshes share one request.
// On by default; with refresh rotation enabled on the server, turning it off
// makes all but one concurrent refresh fail.
func WithSingleFlight(on bool) Option {
	return func(s *Session) { s.singleFlight = on }
}

// Session holds the client side of a login: the access token, the identity
// decoded from it and the refresh bookkeeping. The refresh token itself is
// only ever in the SDKClient's cookie jar.
type Session struct {
	client       *SDKClient
	storage      TokenStorage
	logger       *slog.Logger
	validatePath string
	singleFlight bool

	group    singleflight.Group
	initOnce sync.Once

	mu              sync.RWMutex
	accessToken     string
	identity        *Identity
	isLoading       bool
	refreshAttempts int
	state           State
}

// NewSession creates a session bound to client. Call Initialize to restore a
// previous session, or Login to start a new one.
func NewSession(client *SDKClient, opts ...Option) *Session {
	s := &Session{
		client:       client,
		storage:      NewMemoryStorage(),
		validatePath: MePath,
		singleFlight: true,
		isLoading:    true,
		state:        StateUninitialized,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Initialize restores the session from storage, falling back to the refresh
// cookie. Only the first call does anything. It always leaves IsLoading false.
func (s *Session) Initialize(ctx context.Context) {
	s.initOnce.Do(func() { s.initialize(ctx) })
}

func (s *Session) initialize(ctx context.Context) {
	s.mu.Lock()
	s.state = StateLoading
	s.isLoading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isLoading = false
		if s.state == StateLoading {
			s.state = StateAnonymous
		}
		s.mu.Unlock()
	}()

	token, err := s.storage.Load()
	if err != nil {
		s.logger.Warn("load stored access token failed", slog.Any("err", err))
		token = ""
	}

	if token != "" {
		id, err := identityFromToken(token)
		if err != nil {
			s.logger.Info("stored access token unreadable, clearing", slog.Any("err", err))
			s.clear(false)
			token = ""
		} else {
			s.set(token, id, false)
			if !s.validate(ctx, token) {
				token, _ = s.RefreshAccessToken(ctx)
			}
		}
	}

	if token == "" {
		if _, err := s.RefreshAccessToken(ctx); err != nil {
			s.logger.Debug("no session to restore", slog.Any("err", err))
			s.clear(false)
		}
	}
}

func (s *Session) validate(ctx context.Context, token string) bool {
	resp, err := s.client.doRequest(ctx, http.MethodGet, s.validatePath, nil, bearer(token))
	if err != nil {
		return false
	}
	defer drain(resp)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Login authenticates and replaces any current session. Errors come back
// as *Error and leave the session as it was.
func (s *Session) Login(ctx context.Context, email, password string) (Identity, error) {
	tok, err := s.client.Login(ctx, email, password)
	if err != nil {
		return Identity{}, err
	}
	id, err := identityFromToken(tok.AccessToken)
	if err != nil {
		return Identity{}, &Error{Kind: KindServerError, Message: "unreadable access token", Err: err}
	}

	s.mu.Lock()
	s.refreshAttempts = 0
	s.mu.Unlock()
	s.set(tok.AccessToken, id, true)
	return id, nil
}

// Logout tells the server to revoke the refresh cookie, then clears local
// state whatever the server said. The cookie is also expired in the jar, so
// a logout the server rejected cannot be undone by the next refresh. Safe to
// call with no session.
func (s *Session) Logout(ctx context.Context) {
	s.logout(ctx, true)
	s.client.forgetRefreshCookie()
}

// logout keeps the refresh counter when forced by a failed refresh.
func (s *Session) logout(ctx context.Context, resetCounter bool) {
	if token := s.AccessToken(); token != "" {
		if err := s.client.Logout(ctx, token); err != nil {
			s.logger.Warn("logout request failed", slog.Any("err", err))
		}
	}
	s.clear(resetCounter)
}

// RefreshAccessToken obtains a new access token with the refresh cookie.
// After MaxRefreshAttempts consecutive failures it returns
// ErrRefreshExhausted without calling the server. Any failure logs the
// session out, except the caller's own context ending.
//
// With single-flight on, concurrent callers share one request. It runs
// detached from every caller's context, and each caller stops waiting when
// its own context is done.
func (s *Session) RefreshAccessToken(ctx context.Context) (string, error) {
	if !s.singleFlight {
		return s.refresh(ctx)
	}

	ch := s.group.DoChan("refresh", func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedRefreshTimeout)
		defer cancel()
		return s.refresh(flightCtx)
	})
	select {
	case res := <-ch:
		return res.Val.(string), res.Err
	case <-ctx.Done():
		return "", networkError(ctx.Err())
	}
}

func (s *Session) refresh(ctx context.Context) (string, error) {
	if s.RefreshAttempts() >= MaxRefreshAttempts {
		s.logout(ctx, false)
		return "", ErrRefreshExhausted
	}

	tok, err := s.client.Refresh(ctx)
	var id Identity
	if err == nil {
		if id, err = identityFromToken(tok.AccessToken); err != nil {
			err = &Error{Kind: KindTokenInvalid, Message: refreshFailedMessage, Err: err}
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			// Abandoned, not rejected: the cookie may still be good.
			return "", err
		}
		s.mu.Lock()
		s.refreshAttempts++
		s.mu.Unlock()
		s.logout(ctx, false)
		return "", err
	}

	s.mu.Lock()
	s.refreshAttempts = 0
	s.mu.Unlock()
	s.set(tok.AccessToken, id, true)
	return tok.AccessToken, nil
}

func (s *Session) set(token string, id Identity, persist bool) {
	s.mu.Lock()
	s.accessToken = token
	s.identity = &id
	s.state = StateAuthenticated
	s.mu.Unlock()

	if persist {
		if err := s.storage.Save(token); err != nil {
			s.logger.Warn("persist access token failed", slog.Any("err", err))
		}
	}
}

func (s *Session) clear(resetCounter bool) {
	s.mu.Lock()
	s.accessToken = ""
	s.identity = nil
	s.state = StateAnonymous
	if resetCounter {
		s.refreshAttempts = 0
	}
	s.mu.Unlock()

	if err := s.storage.Clear(); err != nil {
		s.logger.Warn("clear stored access token failed", slog.Any("err", err))
	}
}

// AccessToken returns the current access token, or "".
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// Identity returns the identity decoded from the current token.
func (s *Session) Identity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLoading
}

// RefreshAttempts returns the number of consecutive failed refreshes.
func (s *Session) RefreshAttempts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshAttempts
}

// identityFromToken decodes the claims without checking the signature. The
// server is the authority; this is only for display and routing decisions.
func identityFromToken(token string) (Identity, error) {
	claims, err := jwtx.ParseUnverified(token)
	if err != nil {
		return Identity{}, err
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("access token has no subject")
	}
	return Identity{Subject: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}
