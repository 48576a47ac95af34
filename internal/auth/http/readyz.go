package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/quill/pkg/authsdk"
	"github.com/aussiebroadwan/quill/pkg/httpx"
	"github.com/aussiebroadwan/quill/pkg/slogx"
)

// Pinger is anything /readyz can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SignerCheck reports whether tokens can be signed.
type SignerCheck interface {
	Validate() error
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Checks the database, the refresh token store and the token signer
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	db Pinger,
	tokens Pinger,
	signer SignerCheck,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := slogx.FromContext(r.Context())
		checks := &authsdk.HealthChecks{
			Database:   "ok",
			TokenStore: "ok",
			Signer:     "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK
		fail := func(field *string, what string, err error) {
			l.Warn("readiness check failed", "check", what, "err", err)
			*field = "error"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := db.Ping(r.Context()); err != nil {
			fail(&checks.Database, "database", err)
		}
		if err := tokens.Ping(r.Context()); err != nil {
			fail(&checks.TokenStore, "token_store", err)
		}
		if err := signer.Validate(); err != nil {
			fail(&checks.Signer, "signer", err)
		}

		httpx.WriteJSON(w, statusCode, authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
