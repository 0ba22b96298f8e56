package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"

	"github.com/example/fitplay/internal/cache"
	"github.com/example/fitplay/internal/config"
	"github.com/example/fitplay/internal/database"
	"github.com/example/fitplay/internal/events"
	"github.com/example/fitplay/internal/jobs"
	"github.com/example/fitplay/internal/routes"
	"github.com/example/fitplay/internal/services"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)
	database.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword)

	rdb := cache.New(cfg.RedisAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaOrdersTopic, 256)
	producer.Start(ctx)

	scheduler := cron.New()
	sweeper := jobs.NewExpirySweeper(db, services.NewWalletLedger(db))
	if err := sweeper.Register(scheduler); err != nil {
		log.Fatalf("cron registration error: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		AppName: "FitPlay Backend",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, cfg, producer, rdb)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
