package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/juliancavero/mirestaurante-back/internal/config"
	"github.com/juliancavero/mirestaurante-back/internal/domain"
	"github.com/juliancavero/mirestaurante-back/internal/handler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"
)

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config,
	logger *slog.Logger,
	health handler.HealthHandler,
	auth handler.AuthHandler,
	home handler.HomeHandler,
	tables handler.TableHandler,
	menu handler.MenuHandler,
	orders handler.OrderHandler,
	upload handler.UploadHandler,
	employees handler.EmployeeHandler,
	reports handler.ReportHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	auth.RegisterRoutes(r)
	home.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	fileServer := http.StripPrefix("/images/", http.FileServer(http.Dir(cfg.UploadDir)))
	r.Get("/images/*", func(w http.ResponseWriter, req *http.Request) {
		fileServer.ServeHTTP(w, req)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))
		// staff-level (waiter/manager/owner)
		pr.Group(func(sr chi.Router) {
			sr.Use(RequireRole(domain.RoleWaiter, domain.RoleManager, domain.RoleOwner))
			tables.RegisterRoutes(sr)
			menu.RegisterRoutes(sr)
			orders.RegisterRoutes(sr)
			upload.RegisterRoutes(sr)
		})
		// manager-level (manager/owner)
		pr.Group(func(mr chi.Router) {
			mr.Use(RequireRole(domain.RoleManager, domain.RoleOwner))
			menu.RegisterAdminRoutes(mr)
			employees.RegisterRoutes(mr)
			reports.RegisterRoutes(mr)
			auth.RegisterSecretRoutes(mr)
		})
	})

	return r
}
