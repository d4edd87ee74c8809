package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/prism-worklet/prism-api/config"
	"github.com/prism-worklet/prism-api/internal/cache"
	"github.com/prism-worklet/prism-api/internal/database/postgres"
	"github.com/prism-worklet/prism-api/internal/handlers"
	"github.com/prism-worklet/prism-api/internal/middleware"
	"github.com/prism-worklet/prism-api/internal/repository"
	"github.com/prism-worklet/prism-api/internal/services"
	"github.com/prism-worklet/prism-api/internal/store"
	"github.com/prism-worklet/prism-api/pkg/db"
	"github.com/prism-worklet/prism-api/pkg/jwt"
	"github.com/prism-worklet/prism-api/pkg/logger"
	"github.com/prism-worklet/prism-api/pkg/mailer"
	"github.com/prism-worklet/prism-api/pkg/metrics"
	"github.com/prism-worklet/prism-api/pkg/password"
	"github.com/prism-worklet/prism-api/pkg/profiling"
	"github.com/prism-worklet/prism-api/pkg/storage"
	"github.com/prism-worklet/prism-api/pkg/tracing"
)

// registerAuthRoutes registers the signup, session and password reset
// endpoints. They all sit behind the shared Redis sliding-window
// limiter so the limit holds across replicas.
func registerAuthRoutes(
	v1 *gin.RouterGroup,
	cfg *config.Config,
	limiter *store.RateLimitStore,
	authHandler *handlers.AuthHandler,
) {
	window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	rateLimit := middleware.SlidingWindowRateLimit(limiter, window, cfg.RateLimit.MaxRequests)
	bodyLimit := middleware.BodySizeLimitMiddleware(100 * 1024)

	auth := v1.Group("/auth")
	auth.Use(rateLimit, bodyLimit)

	auth.POST("/request-otp", authHandler.RequestOTP)
	auth.POST("/verify-otp", authHandler.VerifyOTP)
	auth.POST("/set-password", authHandler.SetPassword)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)
	auth.GET("/me", authHandler.Me)
}

// registerResourceRoutes registers the mentor and worklet CRUD
// endpoints behind the in-process limiter and bearer auth.
func registerResourceRoutes(
	v1 *gin.RouterGroup,
	crudRateLimiter *middleware.RateLimiter,
	tokenManager *jwt.TokenManager,
	mentorHandler *handlers.MentorHandler,
	workletHandler *handlers.WorkletHandler,
) {
	protected := v1.Group("")
	protected.Use(crudRateLimiter.Middleware(), middleware.RequireAccessToken(tokenManager))

	protected.GET("/mentors", mentorHandler.GetAll)
	protected.GET("/mentors/:id", mentorHandler.GetByID)
	protected.POST("/mentors", mentorHandler.Create)
	protected.PUT("/mentors/:id", mentorHandler.Update)
	protected.POST("/mentors/:id/photo", middleware.BodySizeLimitMiddleware(14*1024*1024), mentorHandler.UploadPhoto)
	protected.DELETE("/mentors/:id", mentorHandler.Delete)

	protected.GET("/worklets", workletHandler.GetAll)
	protected.GET("/worklets/:id", workletHandler.GetByID)
	protected.POST("/worklets", workletHandler.Create)
	protected.PUT("/worklets/:id", workletHandler.Update)
	protected.DELETE("/worklets/:id", workletHandler.Delete)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting PRISM API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceVersion,
		cfg.Server.AppEnv,
		cfg.Observability.OTLPEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Initialize continuous profiling
	profilerStop, err := profiling.InitProfiler(
		cfg.Profiling,
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceVersion,
		cfg.Server.AppEnv,
	)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer profilerStop()

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	// Initialize PostgreSQL connection pool
	pool, err := db.NewPool(context.Background(), db.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	defer pool.Close()

	dbClient := postgres.NewClient(pool)

	// NOTE: Database migrations are run separately via the migrate command

	// Initialize Redis (pending signups, refresh registry, blacklist,
	// rate-limit windows)
	redisClient, err := store.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	otpTTL := time.Duration(cfg.Auth.OTPTTLMinutes) * time.Minute
	pendingStore := store.NewPendingStore(redisClient, otpTTL)
	rateLimitStore := store.NewRateLimitStore(redisClient)

	// Initialize token manager
	tokenManager, err := jwt.NewTokenManager(jwt.Config{
		Secret:     cfg.Auth.JWTSecret,
		Algorithm:  cfg.Auth.JWTAlgorithm,
		Issuer:     cfg.Auth.JWTIssuer,
		AccessTTL:  time.Duration(cfg.Auth.AccessTokenTTLMinutes) * time.Minute,
		RefreshTTL: time.Duration(cfg.Auth.RefreshTokenTTLMinutes) * time.Minute,
	}, redisClient)
	if err != nil {
		logger.Fatal("Failed to initialize token manager", zap.Error(err))
	}

	hasher := password.NewHasher(cfg.Auth.BcryptCost)

	// Initialize mail dispatch
	smtpMailer := mailer.NewSMTPMailer(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		Sender:   cfg.SMTP.Sender,
	})
	dispatcher := mailer.NewDispatcher(smtpMailer, cfg.SMTP.QueueSize)

	// Initialize S3 object storage for mentor photos (optional)
	var photoStorage services.PhotoStorage
	if cfg.Storage.AccessKeyID != "" && cfg.Storage.SecretAccessKey != "" {
		storageClient, storageErr := storage.NewClient(
			cfg.Storage.AccessKeyID,
			cfg.Storage.SecretAccessKey,
			cfg.Storage.BucketName,
			cfg.Storage.Endpoint,
			cfg.Storage.Region,
		)
		if storageErr != nil {
			logger.Fatal("Failed to initialize object storage client", zap.Error(storageErr))
		}
		photoStorage = storageClient
	}

	// Initialize mentor cache synchronously before accepting requests
	// so the first reads never hit a cold cache.
	var mentorCache *cache.MentorCache
	if cfg.Cache.DisableMentorsCache {
		logger.Warn("Mentor cache is DISABLED - reading from database on every request")
	} else {
		mentorCache = cache.NewMentorCache(dbClient, cfg.Cache.MentorTTLSeconds)
		if err := mentorCache.Initialize(context.Background()); err != nil {
			logger.Fatal("Failed to initialize mentor cache", zap.Error(err))
		}
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(dbClient)
	mentorRepo := repository.NewMentorRepository(dbClient, mentorCache)
	workletRepo := repository.NewWorkletRepository(dbClient)

	// Initialize services
	authService, err := services.NewAuthService(accountRepo, pendingStore, tokenManager, hasher, dispatcher, otpTTL)
	if err != nil {
		logger.Fatal("Failed to initialize auth service", zap.Error(err))
	}
	mentorService := services.NewMentorService(mentorRepo, photoStorage)
	workletService := services.NewWorkletService(workletRepo, mentorRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	mentorHandler := handlers.NewMentorHandler(mentorService)
	workletHandler := handlers.NewWorkletHandler(workletService)
	healthHandler := handlers.NewHealthHandler(
		dbClient.Ping,
		func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	)

	if err := handlers.RegisterValidators(); err != nil {
		logger.Fatal("Failed to register validators", zap.Error(err))
	}

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS configuration - SECURITY: Only allow specific origins
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// In-process limiters for operational and CRUD endpoints
	generalRateLimiter := middleware.NewRateLimiter(100, 200) // 100 req/sec, burst of 200
	crudRateLimiter := middleware.NewRateLimiter(20, 40)      // 20 req/sec, burst of 40

	// Operational endpoints (not versioned)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/health/db", generalRateLimiter.Middleware(), healthHandler.HealthDB)
	api.GET("/health/redis", generalRateLimiter.Middleware(), healthHandler.HealthRedis)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// API v1 routes
	v1 := router.Group("/api/v1")
	registerAuthRoutes(v1, cfg, rateLimitStore, authHandler)
	registerResourceRoutes(v1, crudRateLimiter, tokenManager, mentorHandler, workletHandler)

	// Create HTTP server
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Drain queued mail before exit
	if err := dispatcher.Shutdown(ctx); err != nil {
		logger.Error("Mail dispatcher shutdown incomplete", zap.Error(err))
	}

	logger.Info("Server exited")
}
