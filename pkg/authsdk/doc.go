/*
Package authsdk is the Go client for the quill API and the home of the error
types both sides of the wire share.

# SDKClient vs Session

SDKClient performs single calls and owns the cookie jar that holds the
refresh token:

	client := authsdk.NewSDKClient("https://cms.example.com")
	health, err := client.GetLiveness(ctx)

Session keeps a login alive. It holds the access token, decodes the
identity from it and refreshes transparently:

	session := authsdk.NewSession(client,
		authsdk.WithStorage(authsdk.NewFileStorage("/var/lib/app/token")),
	)
	session.Initialize(ctx) // restore a previous login if the cookie survives

	id, err := session.Login(ctx, "editor@example.com", password)
	items, err := session.ListContents(ctx)
	session.Logout(ctx)

# Refresh and retry

Every request sent through Session.Do (or an http.Client using
Session.Transport) carries the access token. A 401 triggers one refresh and
one retry; a second 401 is returned to the caller. Requests to the logout
endpoint are never retried. With no token held, the session refreshes before
sending; if that fails the request goes out without a bearer.

Concurrent refreshes share a single request by default. The shared request
does not follow any one caller's context, so a caller that gives up does not
fail the others, and a cancelled refresh does not count as a failure. With
WithSingleFlight(false) each caller refreshes on its own, which only works
when the server has refresh rotation disabled.

After MaxRefreshAttempts consecutive failures the session is logged out and
RefreshAccessToken returns ErrRefreshExhausted without contacting the server
until the next Login.

# Errors

All errors returned by the SDK are *Error values with a Kind:

	if errors.Is(err, authsdk.ErrRoleDenied) {
		// 403
	}

The server writes the same values with (*Error).WriteError.
*/
package authsdk
