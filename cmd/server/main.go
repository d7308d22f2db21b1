package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/jaki95/video-workbench/config"
	"github.com/jaki95/video-workbench/internal/cache"
	"github.com/jaki95/video-workbench/internal/pipeline"
	"github.com/jaki95/video-workbench/internal/procsvc"
	"github.com/jaki95/video-workbench/internal/registry"
	"github.com/jaki95/video-workbench/internal/resolver"
	"github.com/jaki95/video-workbench/internal/server"
	"github.com/jaki95/video-workbench/internal/storage"
	"github.com/jaki95/video-workbench/internal/transcode"
	"github.com/jaki95/video-workbench/internal/workspace"
)

func main() {
	port := flag.String("port", "", "Server port (overrides config)")
	configPath := flag.String("config", "./config/config.yaml", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Warn("Failed to load configuration, using defaults", "path", *configPath, "error", err)
		cfg = config.Default()
	}

	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	store, err := newStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	orch := pipeline.New(
		resolver.NewHTTPResolver(cfg.Download.Dir, cfg.Download.UserAgent),
		registry.New(),
		cache.New(),
		store,
		workspace.NewManager(""),
		transcode.NewFFMPEGEngine(),
		procsvc.NewClient(procsvc.Endpoints{
			VocalRemoval:       cfg.Services.VocalRemoval,
			SubtitleExtraction: cfg.Services.SubtitleExtraction,
			AudioEnhancement:   cfg.Services.AudioEnhancement,
		}, cfg.Services.Timeout()),
		procsvc.OutputFormat(cfg.Services.OutputFormat),
	)

	srv := server.New(cfg, orch)

	serverPort := cfg.Server.Port
	if *port != "" {
		serverPort = *port
	}

	if err := srv.Start(serverPort); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func newStore(cfg *config.Config) (storage.ArtifactStore, error) {
	switch cfg.Storage.Type {
	case "gcs":
		return storage.NewGCSStore(
			context.Background(),
			cfg.Download.Dir,
			cfg.Storage.Bucket,
			cfg.Storage.ObjectPrefix,
			cfg.Storage.CredentialsFile,
		)
	default:
		return storage.NewLocalStore(cfg.Download.Dir)
	}
}
