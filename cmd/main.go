package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/avdonin/gw-code-review/internal/facades"
	"github.com/avdonin/gw-code-review/internal/handlers"
	"github.com/avdonin/gw-code-review/internal/jwt"
	"github.com/avdonin/gw-code-review/internal/logger"
	"github.com/avdonin/gw-code-review/internal/middlewares"
	"github.com/avdonin/gw-code-review/internal/repositories"
	"github.com/avdonin/gw-code-review/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title gw-code-review API
// @version 1.0.0
// @description Gateway for user accounts and AI code reviews
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword,
		kafkaAddr, kafkaTopic,
		geminiKey, geminiModel, geminiTimeoutSecond,
		jwtSecret, jwtExpSecond, reviewCacheTTLSecond,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword,
		kafkaAddr, kafkaTopic,
		geminiKey, geminiModel, geminiTimeoutSecond,
		jwtSecret, jwtExpSecond, reviewCacheTTLSecond,
	); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns all
// application, database, Redis, Kafka, generative-API, and JWT configuration.
// The JWT secret has no default on purpose: login reports a configuration
// failure when it is missing instead of silently signing with a known value.
func parseConfig(path string) (
	appHost, appPort, logLevel string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort, redisDB int, redisPassword string,
	kafkaAddr, kafkaTopic string,
	geminiKey, geminiModel string, geminiTimeoutSecond int,
	jwtSecret string, jwtExpSecond, reviewCacheTTLSecond int,
	err error,
) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	appHost = getEnv("APP_HOST", "localhost")
	appPort = getEnv("APP_PORT", "8080")
	logLevel = getEnv("APP_LOG_LEVEL", "info")

	// PostgreSQL config
	pgHost = getEnv("POSTGRES_HOST", "localhost")
	pgUser = getEnv("POSTGRES_USER", "user")
	pgPassword = getEnv("POSTGRES_PASSWORD", "password")
	pgDB = getEnv("POSTGRES_DB", "database")
	if pgPort, err = strconv.Atoi(getEnv("POSTGRES_PORT", "5432")); err != nil {
		return
	}
	if pgMaxOpenConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_OPEN_CONNS", "16")); err != nil {
		return
	}
	if pgMaxIdleConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_IDLE_CONNS", "8")); err != nil {
		return
	}

	// Redis config; empty host disables the review cache
	redisHost = getEnv("REDIS_HOST", "")
	if redisPort, err = strconv.Atoi(getEnv("REDIS_PORT", "6379")); err != nil {
		return
	}
	if redisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return
	}
	redisPassword = getEnv("REDIS_PASSWORD", "")
	if reviewCacheTTLSecond, err = strconv.Atoi(getEnv("REVIEW_CACHE_TTL_SECOND", "3600")); err != nil {
		return
	}

	// Kafka config; empty address disables audit publishing
	kafkaAddr = getEnv("KAFKA_ADDR", "")
	kafkaTopic = getEnv("KAFKA_TOPIC", "auth-audit")

	// Generative API config
	geminiKey = getEnv("GOOGLE_GEMINI_KEY", "")
	geminiModel = getEnv("GEMINI_MODEL", "gemini-2.5-flash")
	if geminiTimeoutSecond, err = strconv.Atoi(getEnv("GEMINI_TIMEOUT_SECOND", "60")); err != nil {
		return
	}

	// JWT config
	jwtSecret = getEnv("JWT_SECRET", "")
	if jwtExpSecond, err = strconv.Atoi(getEnv("JWT_EXP_SECOND", "604800")); err != nil {
		return
	}

	return
}

// run initializes the logger, database, Redis, Kafka, and the generative-API
// client, sets up routes with middleware, and handles graceful shutdown.
func run(ctx context.Context,
	appHost, appPort, logLevel string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort, redisDB int, redisPassword string,
	kafkaAddr, kafkaTopic string,
	geminiKey, geminiModel string, geminiTimeoutSecond int,
	jwtSecret string, jwtExpSecond, reviewCacheTTLSecond int,
) error {
	// Initialize logger
	if err := logger.Initialize(logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	log := logger.Log
	log.Infof("Logger initialized with level %s", logLevel)

	if jwtSecret == "" {
		log.Warn("JWT_SECRET is not set; logins will fail with a configuration error")
	}
	if geminiKey == "" {
		log.Warn("GOOGLE_GEMINI_KEY is not set; review requests will fail")
	}

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		pgUser, pgPassword, pgHost, pgPort, pgDB)
	log.Infof("Connecting to PostgreSQL at %s:%d", pgHost, pgPort)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		log.Errorw("PostgreSQL connection error", "error", err)
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(pgMaxOpenConns)
	db.SetMaxIdleConns(pgMaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		log.Errorw("PostgreSQL ping failed", "error", err)
		return err
	}

	// Connect to Redis when configured
	var reviewCache services.ReviewCache
	if redisHost != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", redisHost, redisPort),
			Password: redisPassword,
			DB:       redisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Errorw("Redis connection error", "error", err)
			return err
		}
		defer rdb.Close()
		reviewCache = repositories.NewReviewCacheRepository(rdb, time.Duration(reviewCacheTTLSecond)*time.Second)
		log.Infof("Review cache enabled, TTL %ds", reviewCacheTTLSecond)
	} else {
		log.Info("Review cache disabled")
	}

	// Connect Kafka audit writer when configured
	var kafkaWriter services.KafkaWriter
	if kafkaAddr != "" {
		kw := &kafka.Writer{
			Addr:     kafka.TCP(kafkaAddr),
			Topic:    kafkaTopic,
			Balancer: &kafka.LeastBytes{},
		}
		defer kw.Close()
		kafkaWriter = kw
		log.Infof("Audit events enabled on topic %s", kafkaTopic)
	} else {
		log.Info("Audit events disabled")
	}

	// Initialize JWT service
	jwtSvc := jwt.New(jwtSecret, time.Duration(jwtExpSecond)*time.Second)

	// Initialize the generative API facade
	geminiClient := &http.Client{Timeout: time.Duration(geminiTimeoutSecond) * time.Second}
	gemini := facades.NewGeminiFacade(geminiClient, facades.DefaultBaseURL, geminiKey, geminiModel)

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db)

	// Initialize services
	authService := services.NewAuthService(userReadRepo, userWriteRepo, jwtSvc, kafkaWriter)
	reviewService := services.NewReviewService(gemini, reviewCache)

	// Initialize handlers
	registerHandler := handlers.NewRegisterHandler(authService)
	loginHandler := handlers.NewLoginHandler(authService)
	reviewHandler := handlers.NewReviewHandler(reviewService)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(log))

	// Public routes
	r.Post("/api/register", registerHandler)
	r.Post("/api/login", loginHandler)

	// Protected routes with JWT middleware
	r.Route("/ai", func(r chi.Router) {
		r.Use(middlewares.AuthMiddleware(jwtSvc))
		r.Post("/get-review", reviewHandler)
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", appHost, appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", appHost, appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		log.Infof("HTTP server listening on %s:%s", appHost, appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	}

	log.Info("HTTP server stopped gracefully")
	return nil
}
