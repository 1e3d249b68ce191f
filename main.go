package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"

	"github.com/evergreengarden/portal/app/controllers"
	"github.com/evergreengarden/portal/app/repository"
	"github.com/evergreengarden/portal/internal/pkg/cache"
	"github.com/evergreengarden/portal/internal/pkg/database"
	"github.com/evergreengarden/portal/internal/pkg/documents"
	"github.com/evergreengarden/portal/internal/pkg/env"
	"github.com/evergreengarden/portal/internal/pkg/jobqueue"
	"github.com/evergreengarden/portal/internal/pkg/router"
)

func main() {
	app := NewApplication()

	jobqueue.GetManager().Start()
	defer jobqueue.GetManager().Stop()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
	if err := app.Listen(addr); err != nil {
		log.Fatal(err)
	}
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// Document storage is optional; the proof-of-payment endpoints answer
	// 503 when it is not configured.
	if cfg, err := documents.LoadConfig(); err != nil {
		log.Printf("Warning: document storage disabled: %v", err)
	} else if cfg.IsEnabled() {
		client, err := documents.NewClient(cfg)
		if err != nil {
			log.Printf("Warning: document storage unavailable: %v", err)
		} else {
			controllers.SetDocumentsClient(client)
		}
	}

	app := fiber.New(fiber.Config{
		Views:     html.New("./views", ".html"),
		BodyLimit: 10 * 1024 * 1024, // plenty for proof-of-payment uploads
	})

	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())
	app.Static("/", "./public/assets")

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "./public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	return app
}
