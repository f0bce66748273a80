package container

import (
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-travel-assistant/app/db"
	"github.com/FACorreiaa/go-travel-assistant/config"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/attractions"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/auth"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/chat"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/conversation"
	generativeAI "github.com/FACorreiaa/go-travel-assistant/internal/api/generative_ai"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/health"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/navigation"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/trips"
	"github.com/FACorreiaa/go-travel-assistant/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config              *config.Config
	Logger              *slog.Logger
	Pool                *pgxpool.Pool
	Tokens              *auth.TokenManager
	AuthHandler         *auth.AuthHandler
	ConversationHandler *conversation.HandlerImpl
	ChatHandler         *chat.HandlerImpl
	TripsHandler        *trips.HandlerImpl
	NavigationHandler   *navigation.Handler
	HealthHandler       *health.Handler
}

// NewContainer wires repositories, services and handlers. pool may be nil in
// tests that never touch the database; db is what the repositories query.
func NewContainer(cfg *config.Config, pool *pgxpool.Pool, db database.DB, assistant generativeAI.Assistant, logger *slog.Logger) *Container {
	// Repositories
	authRepo := auth.NewPostgresAuthRepo(db, logger)
	conversationRepo := conversation.NewRepository(db, logger)
	tripsRepo := trips.NewRepository(db, logger)

	// Services
	tokens := auth.NewTokenManager(cfg.JWT)
	authService := auth.NewAuthService(authRepo, tokens, logger)
	conversationService := conversation.NewServiceImpl(conversationRepo, logger)
	extractor := attractions.NewExtractor(attractions.Config{
		MaxAttractions: cfg.Extraction.MaxAttractionsPerResponse,
		DefaultImage:   cfg.Extraction.DefaultAttractionImage,
	})
	chatService := chat.NewServiceImpl(conversationRepo, assistant, extractor, logger)
	tripsService := trips.NewServiceImpl(tripsRepo, logger)
	navigationService := navigation.NewServiceImpl(cfg.Navigation.Services, cfg.Navigation.CacheTTL, logger)

	return &Container{
		Config:              cfg,
		Logger:              logger,
		Pool:                pool,
		Tokens:              tokens,
		AuthHandler:         auth.NewAuthHandler(authService, logger),
		ConversationHandler: conversation.NewHandler(conversationService, logger),
		ChatHandler:         chat.NewHandler(chatService, logger),
		TripsHandler:        trips.NewHandler(tripsService, logger),
		NavigationHandler:   navigation.NewHandler(navigationService, logger),
		HealthHandler:       health.NewHandler(logger),
	}
}

// Router builds the HTTP handler serving every API route.
func (c *Container) Router() http.Handler {
	return router.SetupRouter(&router.Config{
		Logger:                 c.Logger,
		AuthHandler:            c.AuthHandler,
		ConversationHandler:    c.ConversationHandler,
		ChatHandler:            c.ChatHandler,
		TripsHandler:           c.TripsHandler,
		NavigationHandler:      c.NavigationHandler,
		HealthHandler:          c.HealthHandler,
		AuthenticateMiddleware: auth.Authenticate(c.Logger, c.Tokens),
		AllowedOrigins:         c.Config.CORS.AllowedOrigins,
		ChatPerMinute:          c.Config.RateLimit.ChatPerMinute,
		Timeout:                c.Config.Server.Timeout,
	})
}

// Close releases the database pool.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
