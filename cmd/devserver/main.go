package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/campusdash/orderkit/internal/config"
	"github.com/campusdash/orderkit/internal/devserver"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	menu := devserver.NewMenuStore()
	devserver.SeedDemoMenu(menu)
	orders := devserver.NewOrderStore()

	router := devserver.NewRouter(cfg.DevServer, cfg.Environment, menu, orders, logger)

	logger.Info("dev server listening",
		zap.String("port", cfg.DevServer.Port),
		zap.String("gateway_key_id", cfg.DevServer.GatewayKeyID),
	)
	if err := router.Run(":" + cfg.DevServer.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
