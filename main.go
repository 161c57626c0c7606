package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"celluiq/config"
	"celluiq/events"
	"celluiq/providers/brevo"
	"celluiq/providers/gemini"
	"celluiq/services"
	"celluiq/storage"
)

// routerDeps bündelt alles, was die HTTP-Routen brauchen.
type routerDeps struct {
	Pipeline bloodWorkPipeline
	Uploads  bloodWorkLister
	Insights insightReader
	Manual   manualEntry
	Catalog  services.CatalogProvider
	Profiles profileStore
	Shopping shoppingGenerator
	Items    shoppingItems
	Contacts contactAdder
}

func newRouter(cfg *config.Config, deps routerDeps, logging *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(corsMiddleware(cfg))
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	setupWebhookRoutes(router, cfg.WebhookSecret, deps.Profiles, deps.Contacts, logging)

	api := router.Group("/", apiKeyAuthMiddleware(cfg), requireUser())
	setupBloodWorkRoutes(api, deps.Pipeline, deps.Uploads, deps.Profiles, cfg.MaxUploadBytes, logging)
	setupMarkerRoutes(api, deps.Insights, deps.Manual, logging)
	setupReferenceRoutes(api, deps.Catalog, deps.Profiles, logging)
	setupRecommendationRoutes(api, deps.Insights, logging)
	setupDashboardRoutes(api, deps.Insights, logging)
	setupShoppingRoutes(api, deps.Shopping, deps.Items, logging)
	setupProfileRoutes(api, deps.Profiles, logging)

	return router
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}
	ctx := context.Background()

	// Datenbank
	db, err := storage.Open(cfg.DSN(), logging)
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.")
	logging.Info("Running database auto-migration...")
	if err := storage.AutoMigrate(db); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	markerRepo := storage.NewMarkerRepository(db)
	referenceRepo := storage.NewReferenceRepository(db)
	bloodWorkRepo := storage.NewBloodWorkRepository(db)
	profileRepo := storage.NewProfileRepository(db)
	nutritionRepo := storage.NewNutritionRepository(db)
	shoppingRepo := storage.NewShoppingRepository(db)

	// Seeding
	if _, err := services.SeedCatalog(ctx, referenceRepo, logging); err != nil {
		logging.Warn("Failed to seed reference catalog", zap.Error(err))
	}
	seedDefaultFoods(ctx, nutritionRepo, logging)
	seedDefaultSupplements(ctx, nutritionRepo, logging)

	// Redis: Cache und Events
	rdb, err := storage.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logging.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()
	cache := storage.NewCache(rdb, storage.WithPrefix(cfg.CachePrefix), storage.WithDefaultTTL(cfg.CacheTTL))

	backend, err := events.NewPublisher(cfg, rdb, logging)
	if err != nil {
		logging.Fatal("Events backend creation failed", zap.Error(err))
	}
	publisher := &events.InvalidatingPublisher{Next: backend, Cache: cache, Keys: services.UserCacheKeys, Logger: logging}
	defer publisher.Close()
	logging.Info("Events backend ready", zap.String("backend", cfg.EventsBackend))

	// S3
	s3Client, err := storage.NewS3Client(cfg)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}
	documents := storage.NewDocumentStore(s3Client, cfg)

	// Services
	catalog := services.NewCatalogService(referenceRepo, cache, cfg.CacheTTL, logging)
	extractor := gemini.NewExtractor(cfg, logging)
	pipeline := services.NewPipeline(cfg, documents, bloodWorkRepo, markerRepo, catalog, extractor, profileRepo, publisher, logging)
	manual := services.NewManualEntryService(cfg, markerRepo, catalog, profileRepo, publisher, logging)
	insights := services.NewInsightService(markerRepo, catalog, profileRepo, nutritionRepo, cache, cfg.CacheTTL, logging)
	shopping := services.NewShoppingService(markerRepo, profileRepo, nutritionRepo, shoppingRepo, logging)
	logging.Info("Services ready", zap.String("extractor", extractor.Name()), zap.String("status_policy", string(pipeline.Classifier.Policy)))

	router := newRouter(cfg, routerDeps{
		Pipeline: pipeline,
		Uploads:  bloodWorkRepo,
		Insights: insights,
		Manual:   manual,
		Catalog:  catalog,
		Profiles: profileRepo,
		Shopping: shopping,
		Items:    shoppingRepo,
		Contacts: brevo.NewClient(cfg, logging),
	}, logging)

	// Setup Cron
	cronScheduler := cron.New()
	if _, err := cronScheduler.AddFunc(cfg.ProcessPendingSchedule, func() {
		count, err := pipeline.ProcessPending(context.Background(), cfg.PendingBatchSize)
		if err != nil {
			logging.Error("Pending blood work job failed", zap.Error(err))
			return
		}
		if count > 0 {
			logging.Info("Pending blood work job completed", zap.Int("processed", count))
		}
	}); err != nil {
		logging.Fatal("Invalid PROCESS_PENDING_SCHEDULE", zap.Error(err))
	}
	if _, err := cronScheduler.AddFunc(cfg.CatalogRefreshSchedule, func() {
		count, err := catalog.Refresh(context.Background())
		if err != nil {
			logging.Error("Catalog refresh failed", zap.Error(err))
			return
		}
		logging.Info("Catalog refreshed", zap.Int("entries", count))
	}); err != nil {
		logging.Fatal("Invalid CATALOG_REFRESH_SCHEDULE", zap.Error(err))
	}
	cronScheduler.Start()
	defer cronScheduler.Stop()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}
