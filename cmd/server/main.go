// Command server exposes the video pipeline over HTTP: POST /generate_video
// runs one pipeline and replies with the uploaded video's ID.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ai-video-factory/internal/api"
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

	session := generate.NewSession(cfg.Generation.BaseURL, os.Getenv("GENERATION_API_KEY"))

	encoder, err := ffmpeg.New()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	captions, err := media.NewOverlayRenderer(cfg.Overlay.FontPath, cfg.Overlay.FontSize, cfg.Overlay.Placement)
	if err != nil {
		log.Fatalf("❌ Overlay renderer: %v", err)
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
		log.Fatal("❌ YOUTUBE_API_KEY not set")
	}
	fetcher, err := trends.NewFetcher(ctx, apiKey, cfg.Trends.MaxResults)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	store, err := ledger.Open(cfg.Paths.Ledger)
	if err != nil {
		log.Printf("Warning: run ledger unavailable: %v", err)
		store = nil
	} else {
		defer store.Close()
	}

	driver := pipeline.New(cfg, composer, fetcher, session, upload.New(cfg), store)

	var history api.RunHistory
	if store != nil {
		history = store
	}
	srv := api.New(fmt.Sprintf(":%d", cfg.Server.Port), driver, history)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("❌ Server error: %v", err)
		}
	case <-ctx.Done():
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Warning: shutdown: %v", err)
		}
	}
}
