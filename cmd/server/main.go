package main

import (
	"flag"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rhyrak/go-allocate/internal/allocator"
	"github.com/rhyrak/go-allocate/internal/logger"
	"github.com/rhyrak/go-allocate/internal/repository"
	"github.com/rhyrak/go-allocate/internal/tracing"
)

func main() {
	configPath := flag.String("config", "config.yaml", "YAML configuration file")
	flag.Parse()

	cfg, err := allocator.LoadConfiguration(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}
	logger.Configure(logger.Config{Level: logger.LogLevel(cfg.Logging.Level), Pretty: cfg.Logging.Pretty})
	if cfg.TraceFile != "" {
		if err := tracing.Init("go-allocate-server", "0.1.0", cfg.TraceFile); err != nil {
			logger.Warn().Err(err).Msg("Tracing disabled")
		}
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Error().Err(err).Msg("Failed to create upload dir")
		os.Exit(1)
	}
	runs, err := repository.Open(cfg.DatabaseFile)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open database")
		os.Exit(1)
	}
	defer runs.Close()

	srv := newServer(cfg, runs)
	r := gin.Default()
	srv.routes(r)

	logger.Info().Str("port", cfg.ServerPort).Msg("Listening")
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		logger.Error().Err(err).Msg("Server stopped")
		os.Exit(1)
	}
}
