package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"event-lifecycle-system/broker"
	"event-lifecycle-system/handlers"
	"event-lifecycle-system/middleware"
	"event-lifecycle-system/models"
	"event-lifecycle-system/services"
	"event-lifecycle-system/stores"
	"event-lifecycle-system/utils"
	"event-lifecycle-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 25 * 1024 * 1024, // 25MB — photos only, nothing bigger passes through
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Event{},
		&models.EventParticipant{},
		&models.Notification{},
		&models.UserNotification{},
		&models.Venue{},
		&models.PlatformUser{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	eventService := services.NewEventService(db)
	venueService := services.NewVenueService(db)
	notificationService := services.NewNotificationService(db)

	// --- Delivery trigger: NATS is optional; without it the fan-out rows
	// are still written and pollable over HTTP ---
	var publisher services.DeliveryPublisher
	if os.Getenv("NATS_URL") != "" {
		b, err := broker.Connect()
		if err != nil {
			log.Fatal("failed to connect to NATS:", err)
		}
		defer b.Close()
		publisher = b
	} else {
		log.Println("⚠️  NATS_URL not set — delivery trigger publishing disabled")
	}

	// --- Lifecycle engine ---
	eventStore := stores.NewEventStore(db)
	notifier := services.NewRatingNotifier(
		eventStore,
		stores.NewParticipantStore(db),
		stores.NewNotificationStore(db),
		publisher,
	)
	lifecycle := services.NewLifecycleService(eventStore, notifier)

	// Cooperative sweep lock, enabled when Redis is configured
	var sweepLock *services.SweepLock
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		sweepLock = services.NewSweepLock(rdb, 4*time.Minute)
	} else {
		log.Println("⚠️  REDIS_ADDR not set — sweep overlap guarded by conditional updates only")
	}

	// --- Profile sync worker ---
	syncServiceURL := os.Getenv("SYNC_SERVICE_URL")
	if syncServiceURL == "" {
		log.Fatal("SYNC_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("EVENT_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("EVENT_SERVICE_TOKEN environment variable not set")
	}

	syncWorker := workers.NewPlatformUserSyncWorker(db, syncServiceURL, "/api/v1/public/profiles", serviceToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker.Start(ctx)
	lifecycle.StartSweepScheduler(sweepLock)

	// ✅ Setup routes — enforced Gateway auth on everything
	handlers.SetupEventRoutes(app, eventService)
	handlers.SetupVenueRoutes(app, venueService)
	handlers.SetupNotificationRoutes(app, notificationService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Lifecycle sweeps scheduled (start + completion, every minute)")
	log.Println("✅ Platform User Sync Worker running")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
