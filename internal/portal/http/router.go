package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/borealfin/portal/internal/portal/service"
	"github.com/borealfin/portal/internal/portal/store"
	"github.com/borealfin/portal/internal/portal/upstream"
	"github.com/borealfin/portal/pkg/httpx"
	"github.com/borealfin/portal/pkg/jwtx"
	"github.com/borealfin/portal/pkg/slogx"

	_ "github.com/borealfin/portal/api/portal" // Swagger docs
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       *jwtx.Signer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	Profiles     *service.ProfileService
	OTPs         *service.OTPService
	Sessions     *service.SessionService
	Guard        *service.GuardService
	Refresh      *service.RefreshCoordinator
	Applications *service.ApplicationService
	Linked       *service.LinkedService
	Retries      *service.UploadRetryQueue
	ESign        *upstream.ESignClient
}

func NewRouter(signer *jwtx.Signer, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOTP()
	r.registerProfile()
	r.registerRouting()
	r.registerSessions()
	r.registerApplications()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Client Portal API
//	@version		0.1.0
//	@description	Phone-verified loan application portal: one-time-code login,
//	@description	resumable application wizard, document submission and status tracking.
//
//	@contact.name				BorealFin Platform Team
//	@contact.url				https://github.com/borealfin/portal
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
//	@description				Portal access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerOTP() {
	h := &OTPHandler{
		OTPs:     r.OTPs,
		Profiles: r.Profiles,
		Sessions: r.Sessions,
		Refresh:  r.Refresh,
	}

	// Both endpoints are brute-forceable and pre-auth; limit by source IP
	// and by the phone named in the body.
	r.Mux.Handle("POST /v1/otp/request",
		httpx.Chain(http.HandlerFunc(h.HandleRequest),
			httpx.RateLimitByIP(httpx.OTPLimit),
			httpx.RateLimitByClaimedPhone(httpx.OTPLimit),
		),
	)
	r.Mux.Handle("POST /v1/otp/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIP(httpx.OTPLimit),
			httpx.RateLimitByClaimedPhone(httpx.OTPLimit),
		),
	)
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{Profiles: r.Profiles}

	r.Mux.Handle("GET /v1/profile",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.PortalAuthMiddleware(r.signer),
			httpx.RateLimitByPhone(httpx.SessionLimit),
		),
	)

	// Prefill is pre-auth by nature: it feeds the login form.
	r.Mux.Handle("GET /v1/profile/prefill",
		httpx.Chain(http.HandlerFunc(h.HandlePrefill),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerRouting() {
	h := &RoutingHandler{
		Profiles:     r.Profiles,
		Applications: r.Applications,
		Sessions:     r.Sessions,
		Guard:        r.Guard,
	}

	r.Mux.Handle("GET /v1/boot",
		httpx.Chain(http.HandlerFunc(h.HandleBoot),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /v1/resume/{token}",
		httpx.Chain(http.HandlerFunc(h.HandleResume),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("POST /v1/guard",
		httpx.Chain(http.HandlerFunc(h.HandleGuard),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	// Status lookups are bucketed per IP plus the application token in the
	// query string.
	r.Mux.Handle("GET /v1/status",
		httpx.Chain(http.HandlerFunc(h.HandleStatus),
			httpx.RateLimitMiddleware(httpx.SessionLimit, httpx.CompositeKeyExtractor(":",
				httpx.IPKeyExtractor,
				httpx.QueryParamKeyExtractor("token"),
			)),
		),
	)
}

func (r *Router) registerSessions() {
	h := &SessionHandler{Refresh: r.Refresh}

	r.Mux.Handle("POST /v1/session/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.SessionLimit),
		),
	)
}

func (r *Router) registerApplications() {
	h := &ApplicationHandler{
		Applications: r.Applications,
		Linked:       r.Linked,
		Retries:      r.Retries,
		ESign:        r.ESign,
	}

	r.Mux.Handle("POST /v1/applications",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByIP(httpx.SessionLimit),
		),
	)
	r.Mux.Handle("GET /v1/applications/{token}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.SessionLimit),
		),
	)
	r.Mux.Handle("PUT /v1/applications/{token}",
		httpx.Chain(http.HandlerFunc(h.HandleSave),
			httpx.RateLimitByIP(httpx.SessionLimit),
		),
	)
	r.Mux.Handle("GET /v1/applications/{token}/missing-documents",
		httpx.Chain(http.HandlerFunc(h.HandleMissingDocuments),
			httpx.RateLimitByIP(httpx.SessionLimit),
		),
	)
	r.Mux.Handle("GET /v1/applications/{token}/links",
		httpx.Chain(http.HandlerFunc(h.HandleListLinks),
			httpx.RateLimitByIP(httpx.SessionLimit),
		),
	)

	// Mutating endpoints require a verified portal session.
	r.Mux.Handle("POST /v1/applications/{token}/submit",
		httpx.Chain(http.HandlerFunc(h.HandleSubmit),
			httpx.PortalAuthMiddleware(r.signer),
			httpx.RateLimitByPhone(httpx.SessionLimit),
		),
	)
	r.Mux.Handle("POST /v1/applications/{token}/links",
		httpx.Chain(http.HandlerFunc(h.HandleAddLink),
			httpx.PortalAuthMiddleware(r.signer),
			httpx.RateLimitByPhone(httpx.SessionLimit),
		),
	)
	r.Mux.Handle("POST /v1/applications/{token}/signing-url",
		httpx.Chain(http.HandlerFunc(h.HandleSigningURL),
			httpx.PortalAuthMiddleware(r.signer),
			httpx.RateLimitByPhone(httpx.SessionLimit),
		),
	)
	r.Mux.Handle("GET /v1/applications/{token}/sign-status",
		httpx.Chain(http.HandlerFunc(h.HandleSignStatus),
			httpx.RateLimitByIP(httpx.SessionLimit),
		),
	)
	r.Mux.Handle("POST /v1/uploads/retry",
		httpx.Chain(http.HandlerFunc(h.HandleRetryUploads),
			httpx.RateLimitByIP(httpx.SessionLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}
