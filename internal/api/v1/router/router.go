package router

import (
	"context"
	"net/http"
	"strings"

	"app/internal/api/v1/handler"
	"app/internal/config"
	"app/internal/entitlement"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// New builds the HTTP handler tree, the database pool, and the background
// refund worker. The caller owns the pool and starts the worker.
func New(cfg *config.Config, logger zerolog.Logger) (http.Handler, *pgxpool.Pool, *service.RefundWorker, error) {
	// 1. Open DB connection pool
	dsn := cfg.DatabaseURL
	// Local Postgres usually runs without TLS; production connection strings
	// are expected to carry their own sslmode.
	if cfg.Environment == "development" && !strings.Contains(dsn, "sslmode") {
		separator := "?"
		if strings.Contains(dsn, "?") {
			separator = "&"
		}
		dsn += separator + "sslmode=disable"
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	logger.Info().Msg("Database connection successful")

	// 2. Initialize validator
	validate := validator.New(validator.WithRequiredStructEnabled())

	// 3. Initialize external clients
	identityClient := service.NewGoTrueClient(cfg.SupabaseURL, cfg.SupabaseServiceKey)
	geminiClient := service.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)

	// 4. Initialize repositories & policy & services & handlers
	profileRepo := repository.NewProfileRepo(pool)
	outboxRepo := repository.NewRefundOutboxRepo(pool)

	policy, err := entitlement.NewPolicy(cfg.EntitlementMode, profileRepo, logger)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	logger.Info().Str("entitlement_mode", cfg.EntitlementMode).Msg("Entitlement policy selected")

	authSvc := service.NewAuthService(identityClient, profileRepo, cfg.SignupChatCredits, logger)
	chatSvc := service.NewChatService(profileRepo, policy, geminiClient, outboxRepo, logger)
	kofiSvc := service.NewKofiService(profileRepo, cfg.KofiVerificationToken, cfg.EntitlementMode, logger)

	authHandler := handler.NewAuthHandler(authSvc, validate, logger)
	chatHandler := handler.NewChatHandler(chatSvc, validate, logger)
	webhookHandler := handler.NewWebhookHandler(kofiSvc, logger)

	refundWorker := service.NewRefundWorker(
		profileRepo,
		outboxRepo,
		cfg.RefundPollInterval(),
		cfg.RefundMaxAttempts,
		cfg.RefundBatchSize,
		logger,
	)

	// 5. Initialize middleware
	authMiddleware := middleware.AuthMiddleware(cfg.SupabaseJWTSecret, logger)

	// 6. Create ServeMux router
	apiMux := http.NewServeMux()
	authHandler.RegisterRoutes(apiMux)
	chatHandler.RegisterRoutes(apiMux, authMiddleware)
	webhookHandler.RegisterRoutes(apiMux)

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", apiMux))

	// Static assets served verbatim from the configured directory.
	mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))

	// 7. Apply CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	h := middleware.RequestIDMiddleware(c.Handler(mux))
	h = middleware.LoggerMiddleware(logger)(h)
	return h, pool, refundWorker, nil
}
