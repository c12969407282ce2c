package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/medimart/health-companion/internal/http/handlers"
	httpmiddleware "github.com/medimart/health-companion/internal/http/middleware"
	"github.com/medimart/health-companion/internal/webchat"
	"github.com/medimart/health-companion/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Companion          *handlers.CompanionHandler
	Webchat            *webchat.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.Companion.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/session", func(r chi.Router) {
		r.Get("/", cfg.Companion.GetSession)
		r.Put("/profile", cfg.Companion.UpdateProfile)
		r.Put("/language", cfg.Companion.UpdateLanguage)
		r.Post("/navigate", cfg.Companion.Navigate)
		r.Post("/panel", cfg.Companion.TogglePanel)
	})

	r.Route("/chat", func(r chi.Router) {
		r.Get("/messages", cfg.Companion.ListMessages)
		r.Post("/messages", cfg.Companion.SendMessage)
		if cfg.Webchat != nil {
			r.Get("/ws", cfg.Webchat.HandleWebSocket)
		}
	})

	r.Route("/scan", func(r chi.Router) {
		r.Post("/", cfg.Companion.ScanMedicine)
		r.Get("/result", cfg.Companion.GetScanResult)
	})

	r.Get("/dashboard", cfg.Companion.GetDashboard)

	return r
}
