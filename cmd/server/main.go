package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/yourorg/imnotdurnk/internal/auth"
	"github.com/yourorg/imnotdurnk/internal/config"
	appdb "github.com/yourorg/imnotdurnk/internal/db"
	"github.com/yourorg/imnotdurnk/internal/debug"
	"github.com/yourorg/imnotdurnk/internal/handlers"
	"github.com/yourorg/imnotdurnk/internal/mailer"
	"github.com/yourorg/imnotdurnk/internal/pronounce"
	"github.com/yourorg/imnotdurnk/internal/repository"
	"github.com/yourorg/imnotdurnk/internal/routes"
	"github.com/yourorg/imnotdurnk/internal/service"
	"github.com/yourorg/imnotdurnk/internal/storage"
)

const dbConnectAttempts = 12

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	// ============================================================================
	// DB CONNECTION
	// ============================================================================
	db, err := connectWithRetry(cfg)
	if err != nil {
		log.Fatalf("❌ database unavailable: %v", err)
	}
	defer db.Close()
	log.Println("✅ Database ready")

	// ============================================================================
	// DEPENDENCIES
	// ============================================================================
	ctx := context.Background()
	objects, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ object storage: %v", err)
	}
	temp, err := storage.NewTempFiles(cfg.Storage.TempDir)
	if err != nil {
		log.Fatalf("❌ temp storage: %v", err)
	}

	tokens := auth.NewTokens(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	tokenStore := auth.NewStore()
	defer tokenStore.Stop()
	resolver := auth.NewResolver(tokens, tokenStore)

	users := repository.NewUserRepository(db)
	plans := repository.NewPlanRepository(db)
	gameLogs := repository.NewGameLogRepository(db)
	voices := repository.NewVoiceRepository(db)
	transit := repository.NewTransitRepository(db)

	mail := mailer.New(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	scorer := pronounce.NewClient(cfg.Pronounce.URL, cfg.Pronounce.Key)

	calendarSvc := service.NewCalendarService(plans, gameLogs, resolver)
	userSvc := service.NewUserService(users, tokens, tokenStore, mail)
	gameLogSvc := service.NewGameLogService(gameLogs, plans, resolver)
	voiceSvc := service.NewVoiceService(voices, gameLogs, plans, objects, temp, scorer, resolver)
	transitSvc := service.NewTransitService(transit, cfg.TransitCacheSize)

	// ============================================================================
	// HTTP
	// ============================================================================
	if cfg.DebugDashboard {
		debug.Enable()
	}
	stopHeartbeat := make(chan struct{})
	go debug.Heartbeat(10*time.Second, stopHeartbeat)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    20 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	opts := routes.Options{RateLimit: cfg.IsProduction()}
	if local, ok := objects.(*storage.LocalStore); ok {
		opts.LocalFilesDir = local.Dir()
	}
	routes.Register(app, routes.Handlers{
		Calendar: handlers.NewCalendarHandler(calendarSvc),
		User:     handlers.NewUserHandler(userSvc),
		Voice:    handlers.NewVoiceHandler(voiceSvc),
		GameLog:  handlers.NewGameLogHandler(gameLogSvc),
		Transit:  handlers.NewTransitHandler(transitSvc),
		Health:   handlers.NewHealthHandler(db, transit, tokenStore),
	}, opts)

	// ============================================================================
	// GRACEFUL SHUTDOWN
	// ============================================================================
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("🛑 Shutting down...")
		close(stopHeartbeat)
		debug.Disable()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("⚠️  shutdown: %v", err)
		}
	}()

	log.Printf("🚀 Listening on :%s (%s)", cfg.Port, cfg.Env)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
	log.Println("✅ Server stopped")
}

// connectWithRetry waits for MySQL to accept connections, then makes sure
// the schema exists.
func connectWithRetry(cfg *config.Config) (*sql.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= dbConnectAttempts; attempt++ {
		db, err := appdb.Connect(cfg.DSN())
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = db.PingContext(ctx)
			cancel()
			if err == nil {
				if err = appdb.EnsureSchema(db, cfg.DB.SkipSchema); err == nil {
					return db, nil
				}
			}
			db.Close()
		}
		lastErr = err
		log.Printf("db not ready: %v (attempt %d/%d, retrying in 5s)", err, attempt, dbConnectAttempts)
		time.Sleep(5 * time.Second)
	}
	return nil, lastErr
}
