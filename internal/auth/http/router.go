package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/quill/internal/auth/domain"
	"github.com/aussiebroadwan/quill/internal/auth/metrics"
	"github.com/aussiebroadwan/quill/internal/auth/service"
	"github.com/aussiebroadwan/quill/internal/auth/store"
	"github.com/aussiebroadwan/quill/pkg/httpx"
	"github.com/aussiebroadwan/quill/pkg/jwtx"
	"github.com/aussiebroadwan/quill/pkg/slogx"

	_ "github.com/aussiebroadwan/quill/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	metrics      *metrics.Metrics

	store            store.Store
	AuthService      *service.AuthService
	UserService      *service.UserService
	ContentService   *service.ContentService
	BootstrapService *service.BootstrapService

	// CookieSecure sets the Secure flag on the refresh cookie.
	CookieSecure bool
}

// NewRouter builds a router. verifier checks access tokens.
func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      m,
		logger:       logger,
		CookieSecure: true,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerContents()
	r.registerUsers()
	r.registerSystem()
	r.registerBootstrap()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Quill CMS API
//	@version		0.1.0
//	@description	Content and user management with JWT sessions.
//	@description
//	@description				Access tokens are HS256 JWTs sent as Bearer tokens. Refresh tokens travel only in the HttpOnly refresh_token cookie and are revocable server side.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/quill
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured runs h behind authentication, the role gate and a per-user limit.
// An empty roles list admits any authenticated user.
func (r *Router) secured(h http.HandlerFunc, limit httpx.RateLimitConfig, roles ...string) http.Handler {
	mws := []httpx.Middleware{httpx.AuthnMiddleware(r.verifier, r.AuthService)}
	if len(roles) > 0 {
		mws = append(mws, httpx.RequireRoles(roles...))
	}
	mws = append(mws, httpx.RateLimitByUser(limit))
	return httpx.Chain(h, mws...)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Auth: r.AuthService, CookieSecure: r.CookieSecure}

	// POST /auth/login - strict rate limit by IP + email (brute force)
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	// POST /auth/refresh - cookie only, limited by IP
	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /auth/logout", r.secured(h.HandleLogout, httpx.ModerateLimit))
	r.Mux.Handle("GET /auth/me", r.secured(h.HandleMe, httpx.LenientLimit))
}

func (r *Router) registerContents() {
	h := &ContentsHandler{Contents: r.ContentService}

	r.Mux.Handle("GET /contents", r.secured(h.HandleList, httpx.LenientLimit, domain.ContentReaders...))
	r.Mux.Handle("GET /contents/{id}", r.secured(h.HandleGet, httpx.LenientLimit, domain.ContentReaders...))
	r.Mux.Handle("POST /contents", r.secured(h.HandleCreate, httpx.LenientLimit, domain.ContentWriters...))
	r.Mux.Handle("PATCH /contents/{id}", r.secured(h.HandleUpdate, httpx.LenientLimit, domain.ContentWriters...))
	r.Mux.Handle("DELETE /contents/{id}", r.secured(h.HandleDelete, httpx.LenientLimit, domain.ContentWriters...))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{Users: r.UserService}

	// POST /auth/register - public sign-up, strict rate limit by IP
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("GET /users", r.secured(h.HandleList, httpx.ModerateLimit, domain.UserManagers...))
	r.Mux.Handle("POST /users", r.secured(h.HandleCreate, httpx.ModerateLimit, domain.UserManagers...))
	r.Mux.Handle("PATCH /users/{id}", r.secured(h.HandleUpdate, httpx.ModerateLimit, domain.UserManagers...))
	r.Mux.Handle("DELETE /users/{id}", r.secured(h.HandleDelete, httpx.ModerateLimit, domain.UserManagers...))
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - very strict rate limit by IP (one-time setup endpoint)
	bootstrapHandler := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(bootstrapHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.AuthService, r.AuthService.Issuer),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	if r.metrics != nil {
		r.Mux.Handle("GET /metrics", r.metrics.Handler())
	}
}
