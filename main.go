package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"dunning/cmd"
	"dunning/internal/config"
	"dunning/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load configuration; fall back to default logging when incomplete so
	// that --help and dry runs still work without accounting credentials.
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load configuration: %v", err)
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	log := logger.WithComponent("main")
	log.Info().Msg("Starting dunning CLI")

	cmd.Execute()

	log.Info().Msg("dunning CLI shutdown")
	os.Exit(0)
}
