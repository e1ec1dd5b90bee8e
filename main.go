package main

import (
	"log"

	"coffeestock-backend/config"
	"coffeestock-backend/internal/api"
	"coffeestock-backend/internal/database"
	"coffeestock-backend/internal/models"
	"coffeestock-backend/internal/services"
	"coffeestock-backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	err = logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	router, err := api.NewRouter()
	if err != nil {
		log.Fatalf("failed to create router: %v", err)
	}

	// Migrate the schema
	err = database.DB.AutoMigrate(&models.User{}, &models.StockSettings{}, &models.CoffeeLog{})
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	if err := services.EnsureStockSettings(); err != nil {
		log.Fatalf("failed to seed stock settings: %v", err)
	}

	if err := services.EnsureBootstrapAdmin(cfg); err != nil {
		log.Fatalf("failed to create bootstrap admin: %v", err)
	}

	if err := router.Run(":8080"); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
