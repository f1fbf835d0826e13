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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/teranga-stays/service-rental/internal/application"
	"github.com/teranga-stays/service-rental/internal/config"
	bookingDomain "github.com/teranga-stays/service-rental/internal/domain/booking"
	listingDomain "github.com/teranga-stays/service-rental/internal/domain/listing"
	rentalEvents "github.com/teranga-stays/service-rental/internal/events"
	"github.com/teranga-stays/service-rental/internal/handler"
	"github.com/teranga-stays/service-rental/internal/notification"
	"github.com/teranga-stays/service-rental/internal/payment"
	"github.com/teranga-stays/service-rental/internal/platform/auth"
	"github.com/teranga-stays/service-rental/internal/platform/cache"
	"github.com/teranga-stays/service-rental/internal/platform/database"
	"github.com/teranga-stays/service-rental/internal/platform/health"
	"github.com/teranga-stays/service-rental/internal/platform/kafka"
	"github.com/teranga-stays/service-rental/internal/platform/logger"
	"github.com/teranga-stays/service-rental/internal/platform/metrics"
	"github.com/teranga-stays/service-rental/internal/platform/middleware"
	"github.com/teranga-stays/service-rental/internal/repository"
	"github.com/teranga-stays/service-rental/internal/storage"
)

const serviceName = "service-rental"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName, zap.String("port", cfg.Port))
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := migrate(db, cfg, log); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.AccessDuration, cfg.JWTConfig.RefreshDuration)

	// Initialize Kafka producer
	var publisher interface {
		application.EventPublisher
		Close() error
	}
	if cfg.KafkaConfig.Enabled {
		publisher = kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	} else {
		publisher = kafka.NewNoopProducer(log)
	}
	defer func() { _ = publisher.Close() }()

	// Initialize email
	var sender notification.Sender = notification.NewLogSender(log)
	if cfg.SMTPConfig.Enabled {
		smtp, err := notification.NewSMTPSender(cfg.SMTPConfig.SMTPConfig, log)
		if err != nil {
			log.Fatal("failed to configure SMTP", zap.Error(err))
		}
		sender = smtp
	}
	notifier, err := notification.NewNotifier(sender)
	if err != nil {
		log.Fatal("failed to load email templates", zap.Error(err))
	}

	// Initialize image storage
	var images application.ImageStorage = storage.DisabledImageStorage{}
	if cfg.StorageConfig.Enabled {
		minioStorage, err := storage.NewMinioImageStorage(ctx, cfg.StorageConfig.Config, log)
		if err != nil {
			log.Fatal("failed to connect to object storage", zap.Error(err))
		}
		images = minioStorage
	}

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	listingRepo := repository.NewGormListingRepository(db)
	profileRepo := repository.NewGormProfileRepository(db)
	conversationRepo := repository.NewGormConversationRepository(db)
	reviewRepo := repository.NewGormReviewRepository(db)
	favoriteRepo := repository.NewGormFavoriteRepository(db)

	// Listing reads go through the cache; booking decisions use the store directly.
	var listingCache repository.ListingCache = repository.NoopListingCache{}
	if cfg.RedisConfig.Enabled {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisConfig.RedisConfig)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		listingCache = repository.NewRedisListingCache(redisClient, cfg.RedisConfig.TTL)
	}
	var cachedListings listingDomain.ListingRepository = repository.NewCachedListingRepository(listingRepo, listingCache, log)

	// Initialize application services
	m := metrics.New("rental")
	effects := application.NewEffectRunner(log, m, 0)
	authorizer := application.NewAuthorizer(profileRepo)
	gateway := payment.NewStripeGateway(cfg.PaymentConfig)

	conversationService := application.NewConversationService(conversationRepo, log)
	bookingService := application.NewBookingService(application.BookingServiceDeps{
		Bookings:      bookingRepo,
		Listings:      listingRepo,
		Profiles:      profileRepo,
		Pricing:       bookingDomain.NewStandardPricingStrategy(),
		Conversations: conversationService,
		Notifier:      notifier,
		Authorizer:    authorizer,
		Publisher:     publisher,
		Effects:       effects,
		Metrics:       m,
		PublicBaseURL: cfg.PublicBaseURL,
		Logger:        log,
	})
	paymentService := application.NewPaymentService(application.PaymentServiceDeps{
		Bookings:      bookingRepo,
		Listings:      listingRepo,
		Profiles:      profileRepo,
		Gateway:       gateway,
		Notifier:      notifier,
		Publisher:     publisher,
		Effects:       effects,
		Metrics:       m,
		PublicBaseURL: cfg.PublicBaseURL,
		Logger:        log,
	})
	listingService := application.NewListingService(cachedListings, authorizer, publisher, effects, log)
	imageService := application.NewImageService(cachedListings, images, log)
	reviewService := application.NewReviewService(reviewRepo, bookingRepo, log)
	favoriteService := application.NewFavoriteService(favoriteRepo, cachedListings, log)
	profileService := application.NewProfileService(profileRepo, authorizer, log)

	// Initialize and start payment event consumer in a goroutine
	if cfg.KafkaConfig.Enabled {
		paymentConsumer := rentalEvents.NewPaymentEventConsumer(
			cfg.KafkaConfig.Brokers,
			cfg.KafkaConfig.GroupID,
			paymentService,
			log,
		)
		defer func() { _ = paymentConsumer.Close() }()

		go func() {
			log.Info("starting payment event consumer")
			if err := paymentConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("payment event consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(m.Middleware())

	// Register health and metrics routes
	health.NewHandler(db, serviceName).RegisterRoutes(router)
	m.RegisterRoutes(router)

	// Register routes
	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewListingHandler(listingService, imageService, reviewService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewPaymentHandler(paymentService, gateway, log).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewConversationHandler(conversationService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewReviewHandler(reviewService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewFavoriteHandler(favoriteService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewProfileHandler(profileService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminHandler(bookingService, listingService, profileService).RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}

// migrate auto-migrates in development and applies SQL migrations elsewhere.
func migrate(db *gorm.DB, cfg *config.ServiceConfig, log *zap.Logger) error {
	if cfg.IsDevelopment() {
		if err := db.AutoMigrate(
			&repository.ProfileModel{},
			&repository.ListingModel{},
			&repository.BookingModel{},
			&repository.ConversationModel{},
			&repository.MessageModel{},
			&repository.ReviewModel{},
			&repository.FavoriteModel{},
		); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
		log.Info("database migration completed (dev auto-migrate)")
		return nil
	}
	return database.RunMigrations(cfg.DBConfig.DatabaseURL(), cfg.MigrationsDir, log)
}
