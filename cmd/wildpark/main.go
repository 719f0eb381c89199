package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wildpark/wildpark/pkg/api"
	"github.com/wildpark/wildpark/pkg/config"
	"github.com/wildpark/wildpark/pkg/identity"
	"github.com/wildpark/wildpark/pkg/imageproxy"
	"github.com/wildpark/wildpark/pkg/logging"
	"github.com/wildpark/wildpark/pkg/middleware"
	"github.com/wildpark/wildpark/pkg/observability"
	"github.com/wildpark/wildpark/pkg/park"
	"github.com/wildpark/wildpark/pkg/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(logging.Config{
		Dir:                cfg.Logging.Dir,
		ConsoleLevel:       cfg.Logging.ConsoleLevel(),
		FileLoggingEnabled: cfg.Logging.FileLoggingEnabled,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	ctx := context.Background()

	mongoClient, db, err := store.Connect(ctx, cfg.Store.MongoURI, cfg.Store.Database, cfg.Store.Timeout)
	if err != nil {
		log.Fatalf("Failed to connect to datastore: %v", err)
	}
	defer mongoClient.Disconnect(ctx)

	users, err := store.NewMongoUsers(ctx, db)
	if err != nil {
		log.Fatalf("Failed to initialize user repository: %v", err)
	}

	verifier, err := identity.NewOIDCVerifier(ctx, cfg.Provider.IssuerURL, cfg.Provider.ClientID)
	if err != nil {
		log.Fatalf("Failed to initialize identity provider: %v", err)
	}
	bridge := identity.NewBridge(verifier, users, logger)

	var flow api.CodeExchanger
	if cfg.Provider.ClientSecret != "" && cfg.Provider.RedirectURL != "" {
		flow, err = identity.NewCodeFlow(ctx, cfg.Provider.IssuerURL, cfg.Provider.ClientID, cfg.Provider.ClientSecret, cfg.Provider.RedirectURL)
		if err != nil {
			log.Fatalf("Failed to initialize authorization-code flow: %v", err)
		}
	}

	var redisClient *redis.Client
	var limiter *middleware.RateLimiter
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		limiter = middleware.NewRateLimiter(redisClient, middleware.DefaultAuthRateLimitConfig(), "wildpark:auth")
	}

	cache, err := imageproxy.NewCache(cfg.Cache.Dir, cfg.Cache.TTL)
	if err != nil {
		log.Fatalf("Failed to initialize image cache: %v", err)
	}
	proxy := imageproxy.NewProxy(cache, nil, logger)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	health := observability.NewHealthChecker(mongoClient, redisClient)

	server := api.NewServer(api.Options{
		Logger:      logger,
		Bridge:      bridge.Exchange,
		CodeFlow:    flow,
		Stores:      buildStores(db, users),
		ImageProxy:  proxy,
		RateLimiter: limiter,
		Metrics:     metrics,
		Registry:    registry,
		Health:      health,
		Development: cfg.Development(),
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info(logging.CategorySystem, "server starting", logging.Fields{
			"addr":        httpServer.Addr,
			"environment": cfg.Environment,
		})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info(logging.CategorySystem, "server shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(logging.CategorySystem, "shutdown error", logging.Fields{"error": err.Error()})
	}
}

func buildStores(db *mongo.Database, users store.Users) api.Stores {
	return api.Stores{
		Users:              users,
		Tours:              store.NewMongoDocuments[park.Tour](db, store.CollectionTours),
		TourMaterials:      store.NewMongoDocuments[park.TourMaterial](db, store.CollectionTourMaterials),
		Activities:         store.NewMongoDocuments[park.Activity](db, store.CollectionActivities),
		Events:             store.NewMongoDocuments[park.Event](db, store.CollectionEvents),
		EventRegistrations: store.NewMongoDocuments[park.EventRegistration](db, store.CollectionEventRegistrations),
		Donations:          store.NewMongoDocuments[park.Donation](db, store.CollectionDonations),
		FuelClaims:         store.NewMongoDocuments[park.FuelClaim](db, store.CollectionFuelClaims),
		Applications:       store.NewMongoDocuments[park.Application](db, store.CollectionApplications),
		EmergencyForms:     store.NewMongoDocuments[park.EmergencyForm](db, store.CollectionEmergencyForms),
		EmergencyReports:   store.NewMongoDocuments[park.EmergencyReport](db, store.CollectionEmergencyReports),
		Complaints:         store.NewMongoDocuments[park.Complaint](db, store.CollectionComplaints),
		Feedbacks:          store.NewMongoDocuments[park.Feedback](db, store.CollectionFeedbacks),
		Bookings:           store.NewMongoDocuments[park.Booking](db, store.CollectionBookings),
	}
}
