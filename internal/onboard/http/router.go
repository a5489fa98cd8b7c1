package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/onboard/internal/onboard/metrics"
	"github.com/aussiebroadwan/onboard/internal/onboard/service"
	"github.com/aussiebroadwan/onboard/internal/onboard/store"
	"github.com/aussiebroadwan/onboard/pkg/httpx"
	"github.com/aussiebroadwan/onboard/pkg/jwtx"
	"github.com/aussiebroadwan/onboard/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/aussiebroadwan/onboard/api/onboard" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       jwtx.Signer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer

	RegistrationService  *service.RegistrationService
	VerificationService  *service.VerificationService
	PasswordResetService *service.PasswordResetService
}

// NewRouter creates a router. m and gatherer may be nil, in which case
// requests are not measured and /metrics is not served.
func NewRouter(
	signer jwtx.Signer,
	buildVersion string,
	st store.Store,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      m,
		gatherer:     gatherer,
		logger:       logger,
	}

	// Set default middleware chain. Metrics sits innermost so it sees the
	// pattern the mux matched.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		r.metrics.Middleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOwners()
	r.registerPassword()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Onboard Service API
//	@version		0.1.0
//	@description	Restaurant owner registration with emailed one-time codes, and OTP-gated password reset.
//	@description
//	@description	Every error response has the shape {"error": "<code>", "error_description": "<message>"}.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/onboard
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerOwners() {
	h := &OwnerHandler{
		RegistrationService: r.RegistrationService,
		VerificationService: r.VerificationService,
	}

	// POST /register - moderate rate limit by IP (account creation)
	r.Mux.Handle("POST /v1/owners/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /verify-otp - strict rate limit by email (prevent brute force of codes)
	r.Mux.Handle("POST /v1/owners/verify-otp",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyOTP),
			httpx.RateLimitByJSONField(httpx.StrictLimit, "email"),
		),
	)

	// POST /resend-otp - strict rate limit by email (each call sends an email)
	r.Mux.Handle("POST /v1/owners/resend-otp",
		httpx.Chain(http.HandlerFunc(h.HandleResendOTP),
			httpx.RateLimitByJSONField(httpx.StrictLimit, "email"),
		),
	)
}

func (r *Router) registerPassword() {
	h := &PasswordHandler{PasswordResetService: r.PasswordResetService}

	r.Mux.Handle("POST /v1/password/forgot",
		httpx.Chain(http.HandlerFunc(h.HandleForgot),
			httpx.RateLimitByJSONField(httpx.StrictLimit, "email"),
		),
	)
	r.Mux.Handle("POST /v1/password/verify-otp",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyOTP),
			httpx.RateLimitByJSONField(httpx.StrictLimit, "email"),
		),
	)

	// The token is single-use, so a moderate limit is enough here
	r.Mux.Handle("POST /v1/password/reset",
		httpx.Chain(http.HandlerFunc(h.HandleReset),
			httpx.RateLimitByIP(httpx.ModerateLimit),
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
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	if r.gatherer != nil {
		r.Mux.Handle("GET /metrics",
			httpx.Chain(metrics.Handler(r.gatherer),
				httpx.RateLimitByIP(httpx.PublicLimit),
			),
		)
	}
}
