package authsdk

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Do sends req with the session's access token, using the SDKClient's HTTP
// client and cookie jar.
//
// With no token held it refreshes first; if that fails the request goes out
// without a bearer and is not retried. A 401 is retried once after a refresh,
// unless the request is a logout or its body cannot be replayed.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	return s.intercept(req, s.client.HTTPClient.Do)
}

// Transport returns a RoundTripper applying the same pipeline as Do, for
// use in an http.Client of the caller's own. base defaults to
// http.DefaultTransport.
func (s *Session) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return s.intercept(req, base.RoundTrip)
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func (s *Session) intercept(
	req *http.Request,
	send func(*http.Request) (*http.Response, error),
) (*http.Response, error) {
	ctx := req.Context()

	// retried is per call; a failed refresh before sending uses it up.
	retried := false
	token := s.AccessToken()
	if token == "" {
		var err error
		if token, err = s.RefreshAccessToken(ctx); err != nil {
			s.logger.Debug("no session, sending unauthenticated",
				slog.String("path", req.URL.Path), slog.Any("err", err))
			retried = true
		}
	}

	out := withBearer(req, token)
	for ; ; retried = true {
		resp, err := send(out)
		if err != nil {
			return nil, networkError(err)
		}
		if resp.StatusCode != http.StatusUnauthorized || retried || isLogout(req) {
			return resp, nil
		}
		if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
			return resp, nil
		}
		drain(resp)

		s.logger.Debug("access token rejected, refreshing", slog.String("path", req.URL.Path))
		if token, err = s.RefreshAccessToken(ctx); err != nil {
			return nil, err
		}

		out = withBearer(req, token)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("replay request body: %w", err)
			}
			out.Body = body
		}
	}
}

func withBearer(req *http.Request, token string) *http.Request {
	out := req.Clone(req.Context())
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	return out
}

func isLogout(req *http.Request) bool {
	return strings.Contains(req.URL.Path, LogoutPath)
}

// call runs a JSON request through Do and decodes the response.
func (s *Session) call(ctx context.Context, method, path string, body, target any, expected int) error {
	req, err := s.client.newRequest(ctx, method, path, body, nil)
	if err != nil {
		return err
	}
	resp, err := s.Do(req)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, expected, KindTokenInvalid, unexpectedMessage)
}
