// ==============================================================================
// SCREENING API - cmd/server/main.go
// ==============================================================================
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"amlscreen/internal/auth"
	"amlscreen/internal/compliance"
	"amlscreen/internal/defi"
	"amlscreen/internal/explorer"
	"amlscreen/internal/flashtoken"
	"amlscreen/internal/handler"
	"amlscreen/internal/heuristics"
	"amlscreen/internal/middleware"
	"amlscreen/internal/repository/postgres"
	"amlscreen/internal/riskscore"
	"amlscreen/internal/sanctions"
	"amlscreen/internal/scamdb"
	"amlscreen/internal/screening"
	"amlscreen/pkg/cache"
	"amlscreen/pkg/config"
	"amlscreen/pkg/logger"
	"amlscreen/pkg/validator"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// Not an error in production, rely on real environment variables
		fmt.Fprintln(os.Stderr, "no .env file found, using environment")
	}

	cfg := config.Load()
	log := logger.New("screening-api")

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required", nil)
	}

	// Connect to database
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// Connect to Redis. The API degrades to uncached screening without it.
	var (
		redisClient *redis.Client
		reportCache screening.ReportCache
	)
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn("Redis unavailable, report caching disabled", map[string]interface{}{"error": err.Error()})
	} else {
		defer redisCache.Close()
		redisClient = redisCache.Client()
		reportCache = redisCache
	}

	// Repositories
	reportRepo := postgres.NewReportRepository(db)
	userRepo := postgres.NewUserRepository(db)
	apiKeyRepo := postgres.NewAPIKeyRepository(db)

	// Data sources
	sanctionsService := sanctions.NewService(cfg.Providers.SDNListPath, log)
	explorerService := explorer.NewService(cfg.Providers, cfg.Screening.TxSampleSize, log)
	scamService := scamdb.NewService(cfg.Providers)
	riskService := riskscore.NewService(cfg.Providers)

	// Analysis
	heuristicAnalyzer := heuristics.New()
	defiClassifier := defi.NewClassifier(
		defi.DefaultRegistry(),
		cfg.Screening.BurstWindow,
		cfg.Screening.BurstMinStreak,
		cfg.Screening.OpaqueHopAlert,
		cfg.Screening.OpaqueHopEscalate,
	)
	flashDetector := flashtoken.NewService(cfg.Providers.RequestTimeout, cfg.Screening.HolderCountFloor, log)

	screeningService := screening.NewService(
		sanctionsService,
		explorerService,
		scamService,
		riskService,
		heuristicAnalyzer,
		defiClassifier,
		flashDetector,
		reportCache,
		cfg.Screening.CacheTTL,
		log,
	)
	assessor := compliance.NewAssessor()

	authService := auth.NewService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	apiKeyService := auth.NewAPIKeyService(apiKeyRepo)

	// Handlers
	val := validator.New()
	screenHandler := handler.NewScreenHandler(screeningService, assessor, reportRepo, val, log)
	reportHandler := handler.NewReportHandler(reportRepo, log)
	healthHandler := handler.NewHealthHandler(db, redisClient, sanctionsService, scamService, riskService, log)
	authHandler := handler.NewAuthHandler(authService, val, log)
	apiKeyHandler := handler.NewAPIKeyHandler(apiKeyService, log)

	// Setup router
	r := mux.NewRouter()

	// Middleware
	r.Use(middleware.CORS)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.NewLoggingMiddleware(log).Log)
	r.Use(middleware.NewRateLimiter(redisClient, 60, time.Minute).Limit)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recovery)
	r.Use(middleware.BodyLimit(1 << 20))

	// Public routes
	r.HandleFunc("/health", healthHandler.Health).Methods("GET")
	r.HandleFunc("/api/v1/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	authMW := middleware.NewAuthMiddleware(authService, apiKeyService)
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authMW.Authenticate)

	api.HandleFunc("/screen", screenHandler.Screen).Methods("POST")
	api.HandleFunc("/screen", screenHandler.ScreenQuery).Methods("GET")
	api.HandleFunc("/screen/live", screenHandler.LiveScreen).Methods("GET")
	api.HandleFunc("/screen/{chain}/{address}", screenHandler.ScreenByPath).Methods("GET")

	api.HandleFunc("/reports", reportHandler.List).Methods("GET")
	api.HandleFunc("/reports/{id}", reportHandler.Get).Methods("GET")
	api.HandleFunc("/reports/{chain}/{address}/history", reportHandler.History).Methods("GET")

	api.HandleFunc("/keys", apiKeyHandler.CreateAPIKey).Methods("POST")
	api.HandleFunc("/keys", apiKeyHandler.ListAPIKeys).Methods("GET")
	api.HandleFunc("/keys/{id}", apiKeyHandler.RevokeAPIKey).Methods("DELETE")

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Screening API started", map[string]interface{}{
			"address":           srv.Addr,
			"sanctions_entries": sanctionsService.Size(),
			"scam_db":           scamService.Enabled(),
			"risk_scorer":       riskService.Enabled(),
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down Screening API...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Screening API forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Screening API stopped gracefully", nil)
}
