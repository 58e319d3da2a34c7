package main

import (
	"context"
	"flag"
	"os"

	"natours_backend/database"
	"natours_backend/internal/config"
	"natours_backend/internal/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// migrate [up|down|status]
func main() {
	flag.Parse()
	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	logger.Init(cfg.Server.Env)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	defer sqlDB.Close()

	ctx := context.Background()
	switch command {
	case "up":
		err = database.Migrate(ctx, sqlDB)
	case "down":
		err = database.Rollback(ctx, sqlDB)
	case "status":
		err = database.Status(ctx, sqlDB)
	default:
		logger.Error("Unknown command", "command", command)
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("Migration command failed", "command", command, "error", err)
	}
}
