// Package pipeline is the thin driver in front of the composer: it picks a
// topic, runs one full assembly, generates upload metadata and publishes the
// result.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"ai-video-factory/internal/compose"
	"ai-video-factory/internal/config"
	"ai-video-factory/internal/generate"
	"ai-video-factory/internal/ledger"
	"ai-video-factory/internal/tags"
	"ai-video-factory/internal/trends"
	"ai-video-factory/internal/types"
)

// ErrNoTrendingTopics means the trend source returned an empty chart; the
// service front end maps this to a client error rather than a server one.
var ErrNoTrendingTopics = errors.New("no trending videos available")

// customTopicLabel is the display topic for user-supplied prompts
const customTopicLabel = "Custom Topic"

// Composer runs one media assembly to completion
type Composer interface {
	Run(ctx context.Context, req types.GenerationRequest) (*types.FinalVideo, error)
}

// Uploader publishes one finished video
type Uploader interface {
	Run(ctx context.Context, videoFile string, meta *types.VideoMetadata) (id, url string, err error)
}

// Driver wires the pipeline stages together for one run at a time
type Driver struct {
	cfg      *config.Config
	composer Composer
	topics   trends.Source
	text     generate.TextGenerator
	uploader Uploader
	store    *ledger.Store // optional

	// PickRandomTopic selects a random chart entry instead of the first;
	// used by loop mode so consecutive runs vary.
	PickRandomTopic bool
}

// Result is the outcome of one driver run
type Result struct {
	RunID     string
	Topic     string
	VideoPath string
	VideoID   string
	VideoURL  string
}

// New creates a Driver. The ledger store may be nil.
func New(cfg *config.Config, composer Composer, topics trends.Source, text generate.TextGenerator, uploader Uploader, store *ledger.Store) *Driver {
	return &Driver{
		cfg:      cfg,
		composer: composer,
		topics:   topics,
		text:     text,
		uploader: uploader,
		store:    store,
	}
}

// RunOnce executes one complete pipeline run. customPrompt, when non-empty,
// bypasses the trending fetch. On upload failure the video file is kept on
// disk and the error returned alongside a Result carrying its path.
func (d *Driver) RunOnce(ctx context.Context, customPrompt string) (*Result, error) {
	runID := uuid.NewString()[:8]
	runDir := filepath.Join(d.cfg.Paths.Output, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}

	log.Printf("🎬 Pipeline starting — Run ID: %s", runID)
	log.Printf("📁 Output dir: %s", runDir)

	state := &types.RunState{
		RunID:     runID,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	defer func() {
		state.CompletedAt = time.Now().UTC().Format(time.RFC3339)
		saveJSON(filepath.Join(runDir, "run_state.json"), state)
	}()

	topic, prompt, err := d.selectTopic(ctx, customPrompt)
	if err != nil {
		state.Error = err.Error()
		return nil, err
	}
	state.Topic = topic
	state.Prompt = prompt
	d.recordStart(ctx, runID, topic)

	req := types.GenerationRequest{
		Topic:        topic,
		Prompt:       prompt,
		DisplayTitle: tags.Title(topic),
		ImageCount:   d.cfg.Generation.ImageCount,
		OutputDir:    runDir,
	}

	final, err := d.composer.Run(ctx, req)
	if err != nil {
		state.Error = err.Error()
		d.recordFinish(ctx, runID, failureState(err), "", "", err.Error())
		return nil, fmt.Errorf("video generation: %w", err)
	}
	state.VideoFile = final.Path

	log.Println("🏷️ Generating tags and metadata...")
	tagList := tags.Generate(ctx, d.text, topic)
	title := tags.Title(topic)
	meta := &types.VideoMetadata{
		Title:       title,
		Description: tags.Description(title, tagList),
		Tags:        tagList,
		CategoryID:  d.cfg.Upload.CategoryID,
		Visibility:  d.cfg.Upload.Visibility,
	}
	state.Metadata = meta

	result := &Result{RunID: runID, Topic: topic, VideoPath: final.Path}

	log.Println("🚀 Uploading to YouTube...")
	videoID, videoURL, err := d.uploader.Run(ctx, final.Path, meta)
	if err != nil {
		// The video stays on disk; only the upload step failed.
		state.Error = err.Error()
		d.recordFinish(ctx, runID, "upload_failed", final.Path, "", err.Error())
		return result, fmt.Errorf("upload: %w", err)
	}

	state.YouTubeID = videoID
	state.YouTubeURL = videoURL
	result.VideoID = videoID
	result.VideoURL = videoURL
	d.recordFinish(ctx, runID, "uploaded", final.Path, videoID, "")

	log.Printf("✅ Video uploaded successfully! %s", videoURL)
	return result, nil
}

// RunLoop runs complete pipelines back to back, sleeping the configured
// interval between them, until the context is cancelled. Runs never overlap.
func (d *Driver) RunLoop(ctx context.Context) error {
	interval := time.Duration(d.cfg.Loop.IntervalMin) * time.Minute
	for {
		if _, err := d.RunOnce(ctx, ""); err != nil {
			log.Printf("❌ Run failed: %v", err)
		}
		log.Printf("⏳ Waiting %s before next run...", interval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// selectTopic resolves the run's topic and image prompt. A custom prompt is
// used verbatim under the "Custom Topic" label; otherwise the trending chart
// supplies the topic and the prompt is derived from it.
func (d *Driver) selectTopic(ctx context.Context, customPrompt string) (topic, prompt string, err error) {
	if customPrompt != "" {
		log.Printf("Using custom prompt: %s", customPrompt)
		return customTopicLabel, customPrompt, nil
	}

	log.Println("⚡ Fetching trending topics...")
	topics, err := d.topics.Trending(ctx, d.cfg.Trends.RegionCode)
	if err != nil {
		return "", "", fmt.Errorf("fetch trending topics: %w", err)
	}
	if len(topics) == 0 {
		return "", "", ErrNoTrendingTopics
	}

	pick := topics[0]
	if d.PickRandomTopic {
		pick = topics[rand.Intn(len(topics))]
	}
	log.Printf("🔥 Selected topic: %s", pick.Title)

	prompt = fmt.Sprintf(
		"Create a fun and visually appealing image about '%s'. Include vibrant colors, smooth transitions, and engaging graphics.",
		pick.Title,
	)
	return pick.Title, prompt, nil
}

func (d *Driver) recordStart(ctx context.Context, runID, topic string) {
	if d.store == nil {
		return
	}
	if err := d.store.StartRun(ctx, runID, topic); err != nil {
		log.Printf("Warning: ledger: %v", err)
	}
}

func (d *Driver) recordFinish(ctx context.Context, runID, state, videoPath, youtubeID, errMsg string) {
	if d.store == nil {
		return
	}
	if err := d.store.FinishRun(ctx, runID, state, videoPath, youtubeID, errMsg); err != nil {
		log.Printf("Warning: ledger: %v", err)
	}
}

func saveJSON(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("Warning: could not marshal JSON for %s: %v", path, err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("Warning: could not save %s: %v", path, err)
	}
}

// failureState maps a composer error to the ledger state label
func failureState(err error) string {
	if reason := compose.ReasonOf(err); reason != "" {
		return string(reason)
	}
	return "failed"
}
