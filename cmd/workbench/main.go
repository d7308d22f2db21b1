package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"github.com/jaki95/video-workbench/config"
	"github.com/jaki95/video-workbench/internal/cache"
	"github.com/jaki95/video-workbench/internal/pipeline"
	"github.com/jaki95/video-workbench/internal/procsvc"
	"github.com/jaki95/video-workbench/internal/registry"
	"github.com/jaki95/video-workbench/internal/resolver"
	"github.com/jaki95/video-workbench/internal/storage"
	"github.com/jaki95/video-workbench/internal/transcode"
	"github.com/jaki95/video-workbench/internal/workspace"
)

// workbench runs a single derived operation against the most recent video in
// a downloads directory, without going through the HTTP server.
func main() {
	action := flag.String("action", "", "Operation to run: vocal_remove, extract_subtitle or enhance_audio (required)")
	dir := flag.String("dir", "", "Downloads directory holding the videos (overrides config)")
	url := flag.String("url", "", "Video URL to fetch first (optional)")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *action == "" {
		log.Fatal("Missing required flag: -action")
	}

	cfg, err := config.Load("./config/config.yaml")
	if err != nil {
		cfg = config.Default()
	}
	if *dir != "" {
		cfg.Download.Dir = *dir
	}

	store, err := storage.NewLocalStore(cfg.Download.Dir)
	if err != nil {
		log.Fatal(err)
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

	steps := 1
	if *url != "" {
		steps = 2
	}

	bar := progressbar.NewOptions(
		steps,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan][1/2][reset] Fetching video..."),
	)

	ctx := context.Background()

	if *url != "" {
		if _, err := orch.ResolveAndRegister(ctx, *url); err != nil {
			log.Fatal(err)
		}
		bar.Add(1)
	}

	bar.Describe(fmt.Sprintf("[cyan][2/2][reset] Running %s...", *action))
	outputPath, err := orch.RunDerivedOperation(ctx, pipeline.Operation(*action))
	if err != nil {
		log.Fatal(err)
	}
	bar.Add(1)

	fmt.Printf("\nDone: %s\n", outputPath)
}
