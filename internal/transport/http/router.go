package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/qwiktax/lsp-oms/internal/application/auth"
	"github.com/qwiktax/lsp-oms/internal/application/enterprise"
	"github.com/qwiktax/lsp-oms/internal/application/otp"
	"github.com/qwiktax/lsp-oms/internal/application/site"
	"github.com/qwiktax/lsp-oms/internal/config"
	"github.com/qwiktax/lsp-oms/internal/domain"
	"github.com/qwiktax/lsp-oms/internal/infrastructure/cognito"
	"github.com/qwiktax/lsp-oms/internal/infrastructure/dynamo"
	"github.com/qwiktax/lsp-oms/internal/infrastructure/google"
	jwtinfra "github.com/qwiktax/lsp-oms/internal/infrastructure/jwt"
	s3infra "github.com/qwiktax/lsp-oms/internal/infrastructure/s3"
	"github.com/qwiktax/lsp-oms/internal/infrastructure/smtp"
	"github.com/qwiktax/lsp-oms/internal/infrastructure/sns"
	"github.com/qwiktax/lsp-oms/internal/transport/http/handler"
	appmiddleware "github.com/qwiktax/lsp-oms/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AuthRepo       *dynamo.AuthRepo
	EnterpriseRepo *dynamo.EnterpriseRepo
	SiteRepo       *dynamo.SiteRepo
	Directory      *cognito.Client
	JWTProvider    *jwtinfra.Provider
	// ProviderVerifier validates directory-issued ID tokens. Nil disables
	// directory auth (local development without a user pool).
	ProviderVerifier appmiddleware.ProviderVerifier
	GoogleVerifier   *google.Verifier
	SMSSender        sns.SMSSender
	Mailer           smtp.Mailer
	S3Store          *s3infra.Store
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "x-access-token"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var providerMw func(http.Handler) http.Handler
	if deps.ProviderVerifier != nil {
		providerMw = appmiddleware.RequireProvider(deps.ProviderVerifier)
	} else {
		providerMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10, applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		Store:     deps.AuthRepo,
		Directory: deps.Directory,
		Google:    deps.GoogleVerifier,
		Tokens:    deps.JWTProvider,
	})
	otpSvc := otp.NewService(otp.ServiceDeps{
		Store:      deps.AuthRepo,
		Members:    deps.EnterpriseRepo,
		SMS:        deps.SMSSender,
		Tokens:     deps.JWTProvider,
		TestPrefix: cfg.OTPTestPrefix,
	})
	enterpriseSvc := enterprise.NewService(enterprise.ServiceDeps{
		Enterprises: deps.EnterpriseRepo,
		Auth:        deps.AuthRepo,
		Directory:   deps.Directory,
	})
	siteSvc := site.NewService(site.ServiceDeps{
		Store:  deps.SiteRepo,
		Mailer: deps.Mailer,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	otpH := handler.NewOTPHandler(otpSvc)
	enterpriseH := handler.NewEnterpriseHandler(enterpriseSvc)
	siteH := handler.NewSiteHandler(siteSvc)
	uploadH := handler.NewUploadHandler(deps.S3Store)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.Get("/test", healthH.Test)
		r.Post("/test", healthH.Test)

		r.Route("/auth", func(r chi.Router) {
			r.With(sensitiveRL.Limit).Post("/signup", authH.Signup)
			r.Post("/confirm", authH.Confirm)
			r.With(sensitiveRL.Limit).Post("/login", authH.Login)
			r.Post("/forgot-password", authH.ForgotPassword)
			r.Post("/confirm-forgot-password", authH.ConfirmForgotPassword)
			r.Post("/resend-code", authH.ResendCode)
			r.With(sensitiveRL.Limit).Post("/sendOTP", otpH.Send)
			r.With(sensitiveRL.Limit).Post("/verifyOTP", otpH.Verify)
			r.With(sensitiveRL.Limit).Post("/google", authH.GoogleLogin)
			r.With(providerMw).Post("/validate-token", authH.ValidateToken)
			r.With(appmiddleware.CheckToken(deps.JWTProvider)).Post("/check-token", authH.CheckToken)
		})

		r.Get("/public/site/{subdomain}", siteH.GetBySubdomain)
		r.With(sensitiveRL.Limit).Post("/public/lead", siteH.SubmitLead)

		// ── Superadmin routes (directory token, superadmin role) ─────────────
		r.Route("/superadmin", func(r chi.Router) {
			r.Use(providerMw)
			r.Use(appmiddleware.RequireRole(domain.AdminRole(domain.EnterpriseSuperadmin)))

			r.Get("/getAllEnterprises", enterpriseH.GetAllEnterprises)
			r.Post("/getAllEnterprisesOfType", enterpriseH.GetAllEnterprisesOfType)
			r.Post("/getAllUsersOfEnterprise", enterpriseH.GetAllUsersOfEnterprise)
			r.Get("/listUnconfirmedUsers", enterpriseH.ListUnconfirmedUsers)
			r.Post("/confirmuserSignup", enterpriseH.ConfirmUserSignup)
			r.Post("/deleteEnterprise", enterpriseH.DeleteEnterprise)
			r.Get("/listPendingDirectoryUsers", enterpriseH.ListPendingDirectoryUsers)
		})

		// ── Firm admin routes (directory token, tenant-scoped) ───────────────
		r.Route("/admin", func(r chi.Router) {
			r.Use(providerMw)
			r.Use(appmiddleware.SameEnterprise)

			r.Post("/saveDraftSiteSettings", siteH.SaveDraft)
			r.Get("/getDraftSiteSettings", siteH.GetDraft)
			r.Post("/publishSiteSettings", siteH.Publish)
			r.Get("/getLiveSiteSettings", siteH.GetLive)
		})

		// ── Asset uploads (directory token) ──────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(providerMw)
			r.Post("/upload/asset", uploadH.UploadAsset)
			r.Get("/upload/asset-url", uploadH.GetAssetURL)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
