package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/uniform-manager/internal/auth"
	"github.com/frahmantamala/uniform-manager/internal/importer"
	"github.com/frahmantamala/uniform-manager/internal/request"
	"github.com/frahmantamala/uniform-manager/internal/role"
	"github.com/frahmantamala/uniform-manager/internal/staff"
	"github.com/frahmantamala/uniform-manager/internal/stock"
	"github.com/frahmantamala/uniform-manager/internal/transport/middleware"
	"github.com/frahmantamala/uniform-manager/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

const APIPrefix = "/api/v1"

// Handlers groups the domain handlers mounted under /api/v1. Nil handlers are skipped.
type Handlers struct {
	Stock    *stock.Handler
	Staff    *staff.Handler
	Role     *role.Handler
	Request  *request.Handler
	Importer *importer.Handler
}

type Options struct {
	AllowedOrigins string
	AuthEnabled    bool
	Tokens         auth.TokenValidator
	// MetricsHandler is mounted at MetricsPath when set.
	MetricsHandler http.Handler
	MetricsPath    string
	OpenAPIFile    string
}

func RegisterAllRoutes(router *chi.Mux, health *HealthHandler, h Handlers, opts Options, logger *slog.Logger) {
	if opts.OpenAPIFile == "" {
		opts.OpenAPIFile = "./api/openapi.yml"
	}

	// Apply global middleware
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	if _, err := swagger.LoadSpec(context.Background(), opts.OpenAPIFile); err != nil {
		logger.Warn("openapi spec failed to load, swagger ui may be broken", "path", opts.OpenAPIFile, "error", err)
	}

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get(swagger.DefaultSpecURL, func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, opts.OpenAPIFile)
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler(swagger.DefaultSpecURL))

	if opts.MetricsHandler != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, opts.MetricsHandler)
	}

	router.Route(APIPrefix, func(r chi.Router) {
		r.Get("/health", health.healthCheckHandler)
		r.Get("/ping", health.pingHandler)

		r.Group(func(pr chi.Router) {
			pr.Use(middleware.Authenticate(opts.Tokens, opts.AuthEnabled, logger))

			if h.Stock != nil {
				pr.Get("/uniforms", h.Stock.ListUniforms)
			}

			if h.Staff != nil {
				pr.Get("/staff", h.Staff.ListStaff)
			}

			if h.Role != nil {
				pr.Route("/roles", func(rr chi.Router) {
					rr.Get("/", h.Role.ListRoles)
					rr.With(middleware.RequireAdmin()).Patch("/{id}", h.Role.UpdateRolePolicy)
				})
			}

			if h.Request != nil {
				pr.Route("/requests", func(rr chi.Router) {
					rr.Get("/", h.Request.ListRequests)
					rr.Post("/", h.Request.CreateRequest)
					rr.Get("/{trackingNumber}", h.Request.GetRequest)
					rr.With(middleware.RequireManager()).Put("/{trackingNumber}", h.Request.ChangeRequestStatus)
				})
			}

			if h.Importer != nil {
				pr.Route("/import", func(ir chi.Router) {
					ir.Use(middleware.RequireAdmin())
					ir.Post("/uniforms", h.Importer.ImportUniforms)
					ir.Post("/staff", h.Importer.ImportStaff)
				})
			}
		})
	})
}
