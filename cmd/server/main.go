package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	config "github.com/janboddez/import-from-pixelfed/configs"
	"github.com/janboddez/import-from-pixelfed/internal/api/handlers"
	"github.com/janboddez/import-from-pixelfed/internal/api/middleware"
	job "github.com/janboddez/import-from-pixelfed/internal/jobs"
	"github.com/janboddez/import-from-pixelfed/internal/queue"
	"github.com/janboddez/import-from-pixelfed/internal/repository"
	"github.com/janboddez/import-from-pixelfed/internal/service"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	importedPostRepo := repository.NewImportedPostRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	syncLockRepo := repository.NewSyncLockRepository(db)

	pixelfedService := service.NewPixelfedService()
	storageService := service.NewStorageService(*cfg)
	tokenService := service.NewTokenService(*cfg, accountRepo, pixelfedService)
	mediaService := service.NewMediaService(pixelfedService, mediaAssetRepo, storageService)
	syncService := service.NewSyncService(tokenService, pixelfedService, importedPostRepo, settingsRepo, mediaService)
	settingsService := service.NewSettingsService(settingsRepo, tokenService)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg)
	app.Post("/login", auth.Login)
	app.Post("/logout", auth.Logout)

	pixelfed := handlers.NewPixelfedHandler(*cfg, tokenService)
	app.Get("/auth/pixelfed", pixelfed.Authorize)
	app.Get("/auth/pixelfed/callback", pixelfed.Callback)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	api.Get("/account/info", pixelfed.AccountInfo)
	api.Post("/account/revoke", pixelfed.Revoke)

	settings := handlers.NewSettingsHandler(settingsService)
	api.Get("/settings/info", settings.GetSettingsInfo)
	api.Post("/settings/update", settings.UpdateSettings)

	imports := handlers.NewImportsHandler(importedPostRepo, client)
	api.Get("/imports", imports.ListImports)
	api.Post("/imports/sync", imports.TriggerSync)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(tokenService)

	// queue
	queueW := queue.NewQueue(syncService, syncLockRepo)

	c := cron.New()
	c.AddFunc(cfg.SyncSchedule, func() {
		if err := queue.EnqueueSync(client, queue.SyncStatusesPayload{Reason: "cron"}); err != nil {
			log.Printf("Could not enqueue sync task: %v", err)
		}
	})
	c.AddFunc("@every 06h00m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 1,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeSyncStatuses, queueW.HandleSyncStatusesTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
