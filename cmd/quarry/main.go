package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/quarry-dev/quarry/db"
	"github.com/quarry-dev/quarry/internal/auth"
	"github.com/quarry-dev/quarry/internal/config"
	"github.com/quarry-dev/quarry/internal/handlers"
	"github.com/quarry-dev/quarry/internal/metrics"
	"github.com/quarry-dev/quarry/internal/router"
	"github.com/quarry-dev/quarry/internal/service"
	"github.com/quarry-dev/quarry/internal/store"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.NewConfig()

	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()

	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := auth.InitJWTSecret(cfg.Auth.JWTSecret); err != nil {
		logger.Fatal("failed to initialize JWT secret", zap.Error(err))
	}

	if err := db.ConnectDatabase(cfg.Postgres.DSN()); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.MigrateDatabase(); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	users := store.NewUserStore(db.DB)
	projects := store.NewProjectStore(db.DB)
	tickets := store.NewTicketStore(db.DB)

	projectService := service.NewProjectService(projects, users)
	ticketService := service.NewTicketService(tickets)

	h := router.Handlers{
		Auth:     handlers.NewAuthHandler(users, cfg.Auth.CookieDomain),
		Projects: handlers.NewProjectHandler(projectService),
		Tickets:  handlers.NewTicketHandler(ticketService),
		Ws:       handlers.NewWsHandler(projectService, cfg.CORS.AllowedOrigins),
	}

	r := router.NewRouter(h, metrics.NewCollector(), cfg.CORS.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server", zap.String("addr", addr))

	if err := r.Run(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
