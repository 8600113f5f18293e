package main

import (
	"context"
	"errors"
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

	"github.com/vsconnecto/vsconnecto-api/config"
	"github.com/vsconnecto/vsconnecto-api/internal/cache"
	"github.com/vsconnecto/vsconnecto-api/internal/handlers"
	"github.com/vsconnecto/vsconnecto-api/internal/middleware"
	"github.com/vsconnecto/vsconnecto-api/internal/models"
	"github.com/vsconnecto/vsconnecto-api/internal/repository"
	"github.com/vsconnecto/vsconnecto-api/internal/services"
	"github.com/vsconnecto/vsconnecto-api/pkg/db"
	"github.com/vsconnecto/vsconnecto-api/pkg/httpclient"
	"github.com/vsconnecto/vsconnecto-api/pkg/jwt"
	"github.com/vsconnecto/vsconnecto-api/pkg/logger"
	"github.com/vsconnecto/vsconnecto-api/pkg/metrics"
	"github.com/vsconnecto/vsconnecto-api/pkg/profileclient"
	"github.com/vsconnecto/vsconnecto-api/pkg/profiling"
	"github.com/vsconnecto/vsconnecto-api/pkg/storage"
	"github.com/vsconnecto/vsconnecto-api/pkg/tracing"
	"github.com/vsconnecto/vsconnecto-api/pkg/trigger"
)

// registerUserRoutes registers the authenticated profile and wizard routes
func registerUserRoutes(
	group *gin.RouterGroup,
	tokenManager *jwt.TokenManager,
	userRateLimiter, uploadRateLimiter *middleware.RateLimiter,
	profileHandler *handlers.ProfileHandler,
	wizardHandler *handlers.WizardHandler,
	providerHandler *handlers.ProviderHandler,
) {
	users := group.Group("/users")
	users.Use(middleware.UserAuthMiddleware(tokenManager), userRateLimiter.Middleware())

	users.GET("/profile", profileHandler.GetProfile)
	users.PUT("/profile", middleware.BodySizeLimitMiddleware(64*1024), profileHandler.UpdateProfile)
	users.GET("/search-providers", providerHandler.Search)

	wizard := users.Group("/profile/wizard")
	wizard.GET("/catalog", wizardHandler.Catalog)
	wizard.POST("", middleware.BodySizeLimitMiddleware(1024), wizardHandler.Start)
	wizard.GET("", wizardHandler.State)
	wizard.DELETE("", wizardHandler.Cancel)
	wizard.POST("/steps", middleware.BodySizeLimitMiddleware(64*1024), wizardHandler.Submit)
	wizard.POST("/back", wizardHandler.Back)
	// base64 inflates the 5MB document cap by a third
	wizard.POST("/documents",
		middleware.RequireRole(models.RoleProvider),
		uploadRateLimiter.Middleware(),
		middleware.BodySizeLimitMiddleware(8*1024*1024),
		wizardHandler.UploadDocument)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

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

	logger.Info("Starting VSConnecto API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	tracerShutdown, err := tracing.InitTracer(tracing.Config{
		ServiceName:       cfg.Observability.ServiceName,
		ServiceNamespace:  cfg.Observability.ServiceNamespace,
		ServiceVersion:    cfg.Observability.ServiceVersion,
		ServiceInstanceID: cfg.Observability.ServiceInstanceID,
		Environment:       cfg.Server.AppEnv,
		ExporterEndpoint:  cfg.Observability.ExporterEndpoint,
	})
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

	metrics.Init(cfg.Observability.ServiceName)
	metrics.RecordInfrastructureMetrics()

	stopProfiling, err := profiling.Start(cfg.Profiling, profiling.Identity{
		ServiceName: cfg.Observability.ServiceName,
		Namespace:   cfg.Observability.ServiceNamespace,
		Environment: cfg.Server.AppEnv,
		Version:     cfg.Observability.ServiceVersion,
		InstanceID:  cfg.Observability.ServiceInstanceID,
	})
	if err != nil {
		logger.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer stopProfiling()

	pool, err := db.NewPool(context.Background(), db.PoolConfig{
		URL:        cfg.Database.URL,
		MaxConns:   cfg.Database.MaxConns,
		MinConns:   cfg.Database.MinConns,
		CACertPath: cfg.Database.CACertPath,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	defer pool.Close()

	// NOTE: migrations run separately via the migrate command before the app starts

	userRepo := repository.NewUserRepository(pool)

	// Provider search is served from memory; fill it before accepting requests
	providerCache := cache.NewProviderCache(userRepo, cfg.Cache.ProviderTTLSeconds)
	if err := providerCache.Initialize(); err != nil {
		logger.Fatal("Failed to initialize provider cache", zap.Error(err))
	}
	defer providerCache.Stop()

	wizardStore := cache.NewWizardStore(time.Duration(cfg.Wizard.SessionTTLMinutes) * time.Minute)

	var documents services.DocumentStorage
	if cfg.Storage.Enabled() {
		storageClient, storageErr := storage.NewClient(storage.Config{
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			BucketName:      cfg.Storage.BucketName,
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
		})
		if storageErr != nil {
			logger.Fatal("Failed to initialize document storage client", zap.Error(storageErr))
		}
		documents = storageClient
	} else {
		logger.Warn("Document uploads disabled: storage credentials not configured")
	}

	httpClient := httpclient.NewStandardClient(time.Duration(cfg.ProfileAPI.TimeoutSeconds) * time.Second)

	notifier := trigger.NewNotifier(cfg.EventTriggers.ProfileCompletedTriggerURL, httpClient)
	defer notifier.Wait()

	profileService := services.NewProfileService(userRepo, providerCache)

	// The wizard persists through the remote profile API when one is configured
	var profileStore services.ProfileStore = profileService
	if cfg.ProfileAPI.BaseURL != "" {
		profileStore = profileclient.New(cfg.ProfileAPI.BaseURL, httpClient)
		logger.Info("Wizard persists through remote profile API",
			zap.String("base_url", cfg.ProfileAPI.BaseURL))
	}

	wizardService := services.NewWizardService(wizardStore, profileStore, documents, notifier)
	providerService := services.NewProviderService(providerCache)

	tokenManager := jwt.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTTTLHours)

	handlers.UseJSONFieldNames()
	profileHandler := handlers.NewProfileHandler(profileService)
	wizardHandler := handlers.NewWizardHandler(wizardService)
	providerHandler := handlers.NewProviderHandler(providerService)
	healthHandler := handlers.NewHealthHandler(map[string]handlers.ReadinessCheck{
		"database": userRepo.Ping,
		"provider_cache": func(context.Context) error {
			if !providerCache.IsReady() {
				return errors.New("provider cache not initialized")
			}
			return nil
		},
	})

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS configuration - SECURITY: Only allow specific origins
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	limiterCtx, stopLimiters := context.WithCancel(context.Background())
	defer stopLimiters()

	// SECURITY: Rate limiters to prevent abuse and DoS attacks
	generalRateLimiter := middleware.NewRateLimiter(limiterCtx, 100, 200) // per IP
	userRateLimiter := middleware.NewRateLimiter(limiterCtx, 10, 30)      // per user
	uploadRateLimiter := middleware.NewRateLimiter(limiterCtx, 0.2, 5)    // 1 upload/5s per user, burst of 5

	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1", generalRateLimiter.Middleware())
	registerUserRoutes(v1, tokenManager, userRateLimiter, uploadRateLimiter,
		profileHandler, wizardHandler, providerHandler)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // SECURITY: 1 MB max header size
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited",
		zap.Int("abandoned_wizards", wizardStore.Count()))
}
