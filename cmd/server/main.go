package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fadilmartias/jobmarket/internal/config"
	"github.com/fadilmartias/jobmarket/internal/domain/fiber/handler"
	"github.com/fadilmartias/jobmarket/internal/event"
	"github.com/fadilmartias/jobmarket/internal/locker"
	"github.com/fadilmartias/jobmarket/internal/logger"
	"github.com/fadilmartias/jobmarket/internal/middleware"
	"github.com/fadilmartias/jobmarket/internal/repository"
	"github.com/fadilmartias/jobmarket/internal/scheduler"
	"github.com/fadilmartias/jobmarket/internal/service"
	"github.com/fadilmartias/jobmarket/internal/usecase"
	"github.com/fadilmartias/jobmarket/internal/util"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	if err := logger.Initialize(appConfig.Env); err != nil {
		log.Fatalf("Could not initialise logger: %v", err)
	}
	defer logger.Sync()
	logr := logger.Named("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			// Status code defaults to 500
			code := fiber.StatusInternalServerError

			// Retrieve the custom status code if it's a *fiber.Error
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}
			if code >= fiber.StatusInternalServerError {
				logr.Errorw("Unhandled error", "path", ctx.Path(), "error", err)
			}

			return util.ErrorResponse(ctx, util.ErrorResponseFormat{Code: code, Message: message})
		},
	})
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c *fiber.Ctx) bool {
			// SSE frames must not sit in a compression buffer
			return c.Path() == "/api/v1/events/stream"
		},
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(300, 1*time.Minute))

	db := ConnectDB()
	if err := repository.Migrate(db); err != nil {
		log.Fatal("migration failed: ", err)
	}

	schedConfig := config.LoadSchedulerConfig()
	notifyConfig := config.LoadNotifyConfig()

	store := repository.NewStore(db)
	bus := event.NewBus(logger.Named("bus"))
	locks := locker.New(appConfig.LockShards)
	opts := usecase.Options{
		Location:       appConfig.Location,
		StartPolicy:    appConfig.StartPolicy,
		MaxHorizonDays: schedConfig.MaxHorizonDays,
		Logger:         logger.Logger,
	}

	templates := usecase.NewTemplateUsecase(store, bus, opts)
	generator := usecase.NewGeneratorUsecase(store, bus, locks, opts)
	sessions := usecase.NewSessionUsecase(store, bus, locks, opts)
	progress := usecase.NewProgressUsecase(store, bus, opts)
	evaluations := usecase.NewEvaluationUsecase(store, bus, opts)

	api := app.Group("/api/v1", middleware.Identity(appConfig.IdentityToken))
	handler.NewTemplateHandler(templates, generator, schedConfig.HorizonDays).RegisterRoutes(api)
	handler.NewSessionHandler(sessions).RegisterRoutes(api)
	handler.NewProgressHandler(progress).RegisterRoutes(api)
	handler.NewEvaluationHandler(evaluations).RegisterRoutes(api)
	handler.NewEventHandler(sessions, bus).RegisterRoutes(api)

	if notifyConfig.WebhookURL != "" {
		notifier := service.NewNotifierService(notifyConfig, logger.Named("notifier"))
		ch, unsubscribe := bus.Subscribe("webhook", notifyConfig.BufferSize)
		defer unsubscribe()
		go notifier.Run(ctx, ch)
		logr.Infow("Webhook notifier enabled", "url", notifyConfig.WebhookURL)
	}

	var sched *scheduler.Scheduler
	if schedConfig.Enabled {
		sched = scheduler.New(generator, scheduler.Config{
			Interval:    schedConfig.Interval,
			HorizonDays: schedConfig.HorizonDays,
		}, logger.Named("scheduler"))
		sched.Start(ctx)
	}

	// Monitor goroutine count
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logr.Debugw("Runtime stats", "goroutines", runtime.NumGoroutine(), "subscribers", bus.Subscribers())
			}
		}
	}()

	go func() {
		<-ctx.Done()
		logr.Info("Shutting down")
		if sched != nil {
			sched.Stop()
		}
		bus.Close()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logr.Warnw("Shutdown error", "error", err)
		}
	}()

	logr.Infow("Server running", "port", appConfig.Port, "env", appConfig.Env)
	if err := app.Listen(appConfig.Port); err != nil {
		log.Fatal(err)
	}
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	var dialector gorm.Dialector
	switch dbConfig.Driver {
	case "sqlite":
		dialector = sqlite.Open(dbConfig.Path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL")
	default:
		dialector = postgres.Open(dbConfig.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Could not get database instance: %v", err)
	}
	switch {
	case dbConfig.Driver == "sqlite":
		sqlDB.SetMaxOpenConns(1)
	case !appConfig.IsProduction():
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	default:
		sqlDB.SetMaxIdleConns(20)
		sqlDB.SetMaxOpenConns(200)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return db
}
