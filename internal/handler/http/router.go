package http

import (
	"log/slog"
	"os"
	"strings"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absensi-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/storage"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterConfig carries the non-handler settings the router needs.
type RouterConfig struct {
	AppName        string
	Version        string
	Env            string
	AllowedOrigins []string
	// StaticDirs maps a disk name to its directory, served under /uploads/{disk}/
	StaticDirs map[string]string
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	userRepo user.UserRepository,
	authHandler AuthHandler,
	checkoutHandler CheckoutHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	authenticated := func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService))
		r.Use(middleware.LoadCurrentUser(userRepo))
	}

	for disk, dir := range cfg.StaticDirs {
		prefix := "/uploads/" + strings.Trim(disk, "/")
		r.Handle(prefix+"/*", staticHandler(prefix, dir))
	}

	// Export downloads require export access
	if dir, ok := cfg.StaticDirs[storage.DiskPublic]; ok {
		r.Group(func(r chi.Router) {
			authenticated(r)
			r.Use(middleware.ExportAccessRequired)

			prefix := "/uploads/" + storage.DiskPublic
			r.Handle(prefix+"/"+storage.ExportsPrefix+"/*", staticHandler(prefix, dir))
		})
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json", "multipart/form-data"))

		r.Post("/auth/login", authHandler.Login)

		// Requires authentication
		r.Group(func(r chi.Router) {
			authenticated(r)

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/navigation", checkoutHandler.Navigation)

			r.Route("/checkouts", func(r chi.Router) {
				r.Get("/", checkoutHandler.List)
				r.Post("/", checkoutHandler.Create)
				r.Get("/form", checkoutHandler.FormDefaults)
				r.Post("/export", checkoutHandler.Export)
				r.Post("/bulk-delete", checkoutHandler.BulkDelete)
				r.Get("/{id}", checkoutHandler.Get)
				r.Put("/{id}", checkoutHandler.Update)
			})
		})
	})

	return r
}
