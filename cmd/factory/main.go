// Command factory runs the video pipeline from the terminal: one run with an
// optional custom prompt, or an endless loop generating from trending topics.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"ai-video-factory/internal/compose"
	"ai-video-factory/internal/config"
	"ai-video-factory/internal/ffmpeg"
	"ai-video-factory/internal/generate"
	"ai-video-factory/internal/ledger"
	"ai-video-factory/internal/media"
	"ai-video-factory/internal/pipeline"
	"ai-video-factory/internal/trends"
	"ai-video-factory/internal/upload"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	prompt := flag.String("prompt", "", "custom image prompt (skips trending topic selection)")
	loop := flag.Bool("loop", false, "run forever, one video per interval")
	noInput := flag.Bool("no-input", false, "never prompt on stdin; use trending topics when -prompt is empty")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("No config file at %s, using defaults", *configPath)
			cfg = config.Default()
		} else {
			log.Fatalf("❌ Config error: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver, store, err := buildDriver(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Startup error: %v", err)
	}
	if store != nil {
		defer store.Close()
	}

	if *loop {
		driver.PickRandomTopic = true
		log.Printf("🔁 Loop mode: one video every %d minute(s)", cfg.Loop.IntervalMin)
		if err := driver.RunLoop(ctx); err != nil && ctx.Err() == nil {
			log.Fatalf("❌ Loop stopped: %v", err)
		}
		return
	}

	// Only prompt interactively on a real terminal; piped or redirected
	// stdin falls through to trending topics.
	customPrompt := *prompt
	if customPrompt == "" && !*noInput && isatty.IsTerminal(os.Stdin.Fd()) {
		customPrompt = askPrompt()
	}

	result, err := driver.RunOnce(ctx, customPrompt)
	if err != nil {
		log.Fatalf("❌ Pipeline failed: %v", err)
	}
	log.Printf("🎉 Done! Video %s → %s", result.VideoID, result.VideoURL)
}

// buildDriver wires the concrete stages together
func buildDriver(ctx context.Context, cfg *config.Config) (*pipeline.Driver, *ledger.Store, error) {
	session := generate.NewSession(cfg.Generation.BaseURL, os.Getenv("GENERATION_API_KEY"))

	encoder, err := ffmpeg.New()
	if err != nil {
		return nil, nil, err
	}

	captions, err := media.NewOverlayRenderer(cfg.Overlay.FontPath, cfg.Overlay.FontSize, cfg.Overlay.Placement)
	if err != nil {
		return nil, nil, fmt.Errorf("overlay renderer: %w", err)
	}

	composer := compose.New(cfg, compose.Deps{
		Images:   session,
		Clips:    session,
		Audio:    session,
		Memory:   session,
		Captions: captions,
		Encoder:  encoder,
	})

	apiKey := os.Getenv("YOUTUBE_API_KEY")
	if apiKey == "" {
		return nil, nil, fmt.Errorf("YOUTUBE_API_KEY not set")
	}
	fetcher, err := trends.NewFetcher(ctx, apiKey, cfg.Trends.MaxResults)
	if err != nil {
		return nil, nil, err
	}

	store, err := ledger.Open(cfg.Paths.Ledger)
	if err != nil {
		log.Printf("Warning: run ledger unavailable: %v", err)
		store = nil
	}

	driver := pipeline.New(cfg, composer, fetcher, session, upload.New(cfg), store)
	return driver, store, nil
}

func askPrompt() string {
	fmt.Print("Enter a custom prompt (leave empty to use trending topics): ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}
