package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/medibook/internal/clinic"
	"github.com/wolfman30/medibook/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/medibook/internal/http/middleware"
	"github.com/wolfman30/medibook/internal/webchat"
	"github.com/wolfman30/medibook/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ClinicHandler      *clinic.Handler
	SessionHandler     *handlers.PageSessionHandler
	WebChatHandler     *webchat.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimiter        *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimiter, cfg.Logger))
		}
		if cfg.ClinicHandler != nil {
			api.Get("/hospitals", cfg.ClinicHandler.ListHospitals)
		}
		if cfg.SessionHandler != nil {
			api.Mount("/sessions", sessionRoutes(cfg))
		}
	})

	return r
}

// sessionRoutes adds the WebSocket stream next to the JSON routes.
func sessionRoutes(cfg *Config) chi.Router {
	r := cfg.SessionHandler.Routes()
	if cfg.WebChatHandler != nil {
		r.Get("/{sessionID}/chat/ws", cfg.WebChatHandler.HandleWebSocket)
	}
	return r
}
