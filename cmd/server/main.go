package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/eddiguesti/jengu-backend/internal/analytics"
	"github.com/eddiguesti/jengu-backend/internal/api"
	"github.com/eddiguesti/jengu-backend/internal/apperrors"
	"github.com/eddiguesti/jengu-backend/internal/cache"
	"github.com/eddiguesti/jengu-backend/internal/config"
	"github.com/eddiguesti/jengu-backend/internal/database"
	"github.com/eddiguesti/jengu-backend/internal/enrichment"
	"github.com/eddiguesti/jengu-backend/internal/provider"
	"github.com/eddiguesti/jengu-backend/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection and apply migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	propertyRepo := repository.NewPropertyRepository(db)
	rowRepo := repository.NewPricingRowRepository(db)
	jobRepo := repository.NewJobRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	credentialRepo, err := repository.NewCredentialRepository(db, cfg.Providers.FernetKey)
	if err != nil {
		log.Fatalf("Failed to open credential store: %v", err)
	}

	// Provider cache: shared Redis when configured, otherwise in-process
	var providerCache cache.Cache
	var memoryCache *cache.MemoryCache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisCache.Ping(context.Background()); err != nil {
			log.Fatalf("Failed to connect to redis at %s: %v", cfg.Redis.Addr, err)
		}
		defer redisCache.Close()
		providerCache = redisCache
		log.Printf("Provider cache: redis at %s", cfg.Redis.Addr)
	} else {
		memoryCache = cache.NewMemoryCache()
		providerCache = memoryCache
		log.Printf("Provider cache: in-memory")
	}

	// Provider credentials are injected configuration, decrypted once at boot.
	// A key passed through the environment is written to the encrypted store
	// first, so rotation is a restart with the new value.
	if cfg.Providers.WeatherAPIKey != "" {
		if err := credentialRepo.Set("open-meteo", cfg.Providers.WeatherAPIKey); err != nil {
			log.Fatalf("Failed to store weather provider credential: %v", err)
		}
	}
	weatherKey, err := credentialRepo.Get("open-meteo")
	if err != nil && !errors.Is(err, apperrors.ErrCredentialNotFound) {
		log.Fatalf("Failed to load weather provider credential: %v", err)
	}

	// Feature providers behind the best-effort cache
	weatherSource := provider.NewCachedWeatherSource(
		provider.NewOpenMeteoClient(cfg.Providers.WeatherBaseURL, weatherKey, cfg.Providers.RequestTimeout),
		providerCache,
		cfg.Enrichment.CacheTTL,
	)
	holidaySource := provider.NewCachedHolidaySource(
		provider.NewNagerClient(cfg.Providers.HolidayBaseURL, cfg.Providers.HolidayRateLimit, cfg.Providers.RequestTimeout),
		providerCache,
		cfg.Enrichment.CacheTTL,
	)

	// Background job machinery
	queue := enrichment.NewQueue(cfg.Enrichment.QueueDepth)
	dispatcher := enrichment.NewAnalyticsDispatcher(analyticsRepo, queue)
	runner := enrichment.NewRunner(
		propertyRepo, rowRepo, jobRepo,
		weatherSource, holidaySource, dispatcher,
		cfg.Enrichment.BatchSize, cfg.Enrichment.StageTimeout,
	)
	analyticsService := analytics.NewService(rowRepo, analyticsRepo)
	enrichmentService := enrichment.NewService(propertyRepo, rowRepo, jobRepo, queue)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	queue.Start(workerCtx, cfg.Enrichment.Workers, func(ctx context.Context, task enrichment.Task) {
		switch task.Kind {
		case enrichment.TaskEnrichment:
			runner.Run(ctx, task.JobID, task.PropertyID)
		case enrichment.TaskAnalytics:
			analyticsService.Run(task.JobID, task.PropertyID)
		default:
			log.Printf("dropping task with unknown kind %q", task.Kind)
		}
	})

	// Re-enqueue work interrupted by the previous shutdown
	if err := enrichmentService.RecoverPending(); err != nil {
		log.Printf("Job recovery failed: %v", err)
	}
	if err := dispatcher.RecoverPending(); err != nil {
		log.Printf("Analytics job recovery failed: %v", err)
	}

	// Retention sweeps
	scheduler := cron.New()
	//nolint:errcheck // The schedule spec is a constant
	scheduler.AddFunc("*/10 * * * *", func() {
		enrichmentService.SweepExpired(cfg.Enrichment.JobRetention)
		if memoryCache != nil {
			memoryCache.Sweep()
		}
	})
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(db, propertyRepo, rowRepo, enrichmentService, analyticsService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Let in-flight jobs finish their current batch; interrupted jobs are
	// requeued on the next boot.
	queue.Stop()

	log.Println("Server exited")
}
