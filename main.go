package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ranked-tournaments/config"
	"ranked-tournaments/events"
	"ranked-tournaments/handlers"
	"ranked-tournaments/models"
	"ranked-tournaments/services"
	"ranked-tournaments/utils"
	"ranked-tournaments/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 64 * 1024,
	})
	app.Use(recover.New())

	allowedOrigins := strings.Join(cfg.AllowedOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-Player-Name, X-Admin-Secret",
		MaxAge:       86400, // 24 hours
	}))

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	resolver := services.NewTournamentResolver(db, cfg.Ranked, producer)
	seasonService := services.NewSeasonService(db, cfg.Ranked, producer)
	rankedService := services.NewRankedService(db, cfg.Ranked, resolver, seasonService)
	adminService := services.NewAdminService(rankedService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched, err := services.StartRankedScheduler(ctx, rankedService, seasonService)
	if err != nil {
		log.Fatal("failed to start scheduler:", err)
	}

	if cfg.Archive.Enabled() {
		store, err := utils.NewR2ArchiveStore(ctx, cfg.Archive)
		if err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		archiveWorker := workers.NewSeasonArchiveWorker(db, store)
		go archiveWorker.Start(ctx, cfg.ArchivePollInterval)
		log.Printf("✅ Season archive upload running (every %s)", cfg.ArchivePollInterval)
	} else {
		log.Println("⚠️  R2 not configured, season archives stay in the database")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	handlers.SetupRankedRoutes(app, rankedService)
	handlers.SetupAdminRoutes(app, adminService, cfg.AdminSecret)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Printf("✅ Ranked queue: min players %d, max attempts %d, timeout %s",
		cfg.Ranked.MinPlayers, cfg.Ranked.MaxAttempts, cfg.Ranked.Timeout)
	log.Printf("✅ CORS configured for origins: %s", allowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")

	if err := sched.Shutdown(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
