package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	appLogger "github.com/FACorreiaa/go-travel-assistant/app/logger"
	_ "github.com/FACorreiaa/go-travel-assistant/docs"
	"github.com/FACorreiaa/go-travel-assistant/internal/api"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/auth"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/chat"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/conversation"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/health"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/navigation"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/trips"
)

// Config contains dependencies needed for the router setup
type Config struct {
	Logger                 *slog.Logger
	AuthHandler            *auth.AuthHandler
	ConversationHandler    conversation.Handler
	ChatHandler            chat.Handler
	TripsHandler           trips.Handler
	NavigationHandler      *navigation.Handler
	HealthHandler          *health.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
	AllowedOrigins         []string
	ChatPerMinute          int
	Timeout                time.Duration
}

// SetupRouter builds the application router with the server-wide middleware
// stack applied.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewMux()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appLogger.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	if cfg.Timeout > 0 {
		r.Use(middleware.Timeout(cfg.Timeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.ErrorResponse(w, r, http.StatusNotFound, "API接口不存在")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.ErrorResponse(w, r, http.StatusMethodNotAllowed, "请求方法不被允许")
	})

	r.Get("/ping", cfg.HealthHandler.Ping)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		// Public
		r.Group(func(r chi.Router) {
			r.Get("/health", cfg.HealthHandler.Health)

			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/refresh", cfg.AuthHandler.RefreshToken)
			r.Post("/auth/logout", cfg.AuthHandler.Logout)
			r.Get("/auth/{provider}", cfg.AuthHandler.BeginOAuth)
			r.Get("/auth/{provider}/callback", cfg.AuthHandler.OAuthCallback)

			r.Post("/locations/navigation", cfg.NavigationHandler.Navigate)
		})

		// Protected
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Get("/auth/verify", cfg.AuthHandler.Verify)

			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", cfg.ConversationHandler.ListConversations)
				r.Post("/", cfg.ConversationHandler.CreateConversation)
				r.Delete("/{id}", cfg.ConversationHandler.DeleteConversation)
				r.Get("/{id}/messages", cfg.ConversationHandler.GetMessages)
			})

			r.With(chatRateLimit(cfg.ChatPerMinute)).Post("/chat/send", cfg.ChatHandler.SendMessage)

			r.Route("/trips", func(r chi.Router) {
				r.Get("/", cfg.TripsHandler.ListTrips)
				r.Post("/", cfg.TripsHandler.CreateTrip)
				r.Get("/{id}", cfg.TripsHandler.GetTrip)
				r.Put("/{id}", cfg.TripsHandler.UpdateTrip)
				r.Delete("/{id}", cfg.TripsHandler.DeleteTrip)
				r.Post("/{id}/activities", cfg.TripsHandler.AddActivity)
			})
		})
	})

	return r
}

// chatRateLimit limits chat requests per client IP. A non-positive limit
// disables it.
func chatRateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			api.ErrorResponse(w, r, http.StatusTooManyRequests, "请求过于频繁，请稍后再试")
		}),
	)
}
