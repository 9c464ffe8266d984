// Package compose owns the media-assembly core: it sequences image
// generation, per-image animation, audio synthesis, concatenation, caption
// overlay and the final encode for one run, and guarantees that every
// intermediate artifact is deleted whatever the outcome.
package compose

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"ai-video-factory/internal/config"
	"ai-video-factory/internal/ffmpeg"
	"ai-video-factory/internal/generate"
	"ai-video-factory/internal/types"
)

// Encoder is the slice of the ffmpeg executor the composer uses
type Encoder interface {
	Normalize(ctx context.Context, opts ffmpeg.NormalizeOptions) error
	Concat(ctx context.Context, inputs []string, output string, fps int) error
	Finalize(ctx context.Context, opts ffmpeg.FinalizeOptions) error
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// ResizeFunc normalizes a still image to the conditioning resolution
type ResizeFunc func(srcPath, workDir string) (string, error)

// CaptionRenderer rasterizes the run's display title into an overlay image
type CaptionRenderer interface {
	RenderCaption(text, outDir string) (string, error)
}

// Deps are the composer's collaborators, injectable for tests
type Deps struct {
	Images   generate.ImageGenerator
	Clips    generate.ClipGenerator
	Audio    generate.AudioGenerator
	Memory   generate.MemoryReleaser
	Resize   ResizeFunc
	Captions CaptionRenderer
	Encoder  Encoder
}

// Composer drives one run through the assembly state machine
type Composer struct {
	cfg   *config.Config
	deps  Deps
	state State
}

// New creates a Composer. A nil Resize falls back to the media package.
func New(cfg *config.Config, deps Deps) *Composer {
	return &Composer{cfg: cfg, deps: deps, state: StateAwaitingImages}
}

// State reports the state the last run ended in
func (c *Composer) State() State { return c.state }

func (c *Composer) setState(s State) {
	c.state = s
	log.Printf("[compose] → %s", s)
}

func (c *Composer) fail(reason FailureReason, err error) *RunError {
	failedIn := c.state
	c.state = StateFailed
	re := &RunError{State: failedIn, Reason: reason, Err: err}
	log.Printf("[compose] ❌ %v", re)
	return re
}

// Run executes one complete assembly for the request and returns the final
// video artifact. Every intermediate file is removed before Run returns,
// whether the run reaches Done or Failed; only the final video survives.
func (c *Composer) Run(ctx context.Context, req types.GenerationRequest) (*types.FinalVideo, error) {
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var intermediates []string
	track := func(path string) string {
		intermediates = append(intermediates, path)
		return path
	}
	defer func() { cleanup(intermediates) }()

	// ── AwaitingImages ──
	c.setState(StateAwaitingImages)
	images := c.generateImages(ctx, req, track)
	if len(images) == 0 {
		return nil, c.fail(NoImagesGenerated, fmt.Errorf("no images generated for prompt %q", req.Prompt))
	}

	// ── AwaitingClips ──
	c.setState(StateAwaitingClips)
	clips := c.animateImages(ctx, req, images, track)
	if len(clips) == 0 {
		return nil, c.fail(NoClipsGenerated, fmt.Errorf("all %d animation attempts failed", len(images)))
	}

	// ── AwaitingAudio ──
	c.setState(StateAwaitingAudio)
	audio := c.synthesizeAudio(ctx, req, track)

	// ── Composing ──
	c.setState(StateComposing)
	timeline, overlayPath, duration, err := c.composeTimeline(ctx, req, clips, track)
	if err != nil {
		return nil, c.fail(CompositionFailed, err)
	}

	// ── Encoding ──
	c.setState(StateEncoding)
	finalPath := filepath.Join(req.OutputDir, "final_video.mp4")
	audioPath := ""
	if audio != nil {
		if _, statErr := os.Stat(audio.Path); statErr == nil {
			audioPath = audio.Path
		}
	}
	err = c.deps.Encoder.Finalize(ctx, ffmpeg.FinalizeOptions{
		Video:       timeline,
		Overlay:     overlayPath,
		Audio:       audioPath,
		Output:      finalPath,
		DurationSec: duration,
		FadeSec:     c.cfg.Video.FadeSec,
		FPS:         c.cfg.Video.FPS,
		Bitrate:     c.cfg.Video.Bitrate,
	})
	if err != nil {
		return nil, c.fail(EncodingFailed, err)
	}

	c.setState(StateDone)
	log.Printf("[compose] ✅ Final video ready: %s (%.1fs)", finalPath, duration)
	return &types.FinalVideo{Path: finalPath, DurationSec: duration}, nil
}

// generateImages requests N still images in ordinal order. Individual
// failures shrink the set rather than aborting; the caller decides whether
// an empty set is fatal. Between images the backend's working memory is
// released and generation is paced to let the device settle.
func (c *Composer) generateImages(ctx context.Context, req types.GenerationRequest, track func(string) string) []types.ImageArtifact {
	count := req.ImageCount
	if count <= 0 {
		count = c.cfg.Generation.ImageCount
	}
	log.Printf("[compose] Generating %d image(s) for prompt: %q", count, req.Prompt)

	var images []types.ImageArtifact
	for i := 0; i < count; i++ {
		outPath := filepath.Join(req.OutputDir, fmt.Sprintf("generated_image_%d.png", i+1))
		_, err := c.deps.Images.GenerateImage(ctx, req.Prompt, generate.ImageParams{
			Steps:         c.cfg.Generation.ImageSteps,
			GuidanceScale: c.cfg.Generation.GuidanceScale,
			Seed:          c.cfg.Generation.Seed,
			OutputPath:    outPath,
		})
		if err != nil {
			log.Printf("[compose] Warning: image %d failed: %v", i+1, err)
		} else {
			images = append(images, types.ImageArtifact{Path: track(outPath), Prompt: req.Prompt, Ordinal: i})
		}

		if i < count-1 {
			c.releaseAndPace(ctx)
		}
	}
	return images
}

func (c *Composer) releaseAndPace(ctx context.Context) {
	if c.deps.Memory != nil {
		if err := c.deps.Memory.ReleaseMemory(ctx); err != nil {
			log.Printf("[compose] Warning: memory release failed: %v", err)
		}
	}
	pause := time.Duration(c.cfg.Generation.InterImagePauseMS) * time.Millisecond
	select {
	case <-ctx.Done():
	case <-time.After(pause):
	}
}

// animateImages resizes and animates each image in ordinal order. A failed
// resize skips the image entirely; a failed animation skips the clip. The
// surviving clips keep their source image's ordinal so concatenation order
// always equals generation order.
func (c *Composer) animateImages(ctx context.Context, req types.GenerationRequest, images []types.ImageArtifact, track func(string) string) []types.ClipArtifact {
	resize := c.deps.Resize
	if resize == nil {
		resize = defaultResize
	}

	var clips []types.ClipArtifact
	for _, img := range images {
		resized, err := resize(img.Path, req.OutputDir)
		if err != nil {
			log.Printf("[compose] Warning: resize failed for image %d, skipping: %v", img.Ordinal, err)
			continue
		}
		track(resized)

		clipPath := filepath.Join(req.OutputDir, fmt.Sprintf("generated_video_%d.mp4", img.Ordinal+1))
		_, err = c.deps.Clips.AnimateImage(ctx, resized, img.Prompt, generate.ClipParams{
			Steps:           c.cfg.Clips.Steps,
			DecodeChunkSize: c.cfg.Clips.DecodeChunkSize,
			FrameRate:       c.cfg.Clips.FrameRate,
			Seed:            c.cfg.Generation.Seed,
			OutputPath:      clipPath,
		})
		if err != nil {
			log.Printf("[compose] Warning: animation failed for image %d, skipping: %v", img.Ordinal, err)
			continue
		}
		clips = append(clips, types.ClipArtifact{
			Path:         track(clipPath),
			ImageOrdinal: img.Ordinal,
			FrameRate:    c.cfg.Clips.FrameRate,
		})
	}
	return clips
}

// synthesizeAudio makes one attempt at the ambient track. Absence of audio
// never fails the run; the mix step is simply skipped downstream.
func (c *Composer) synthesizeAudio(ctx context.Context, req types.GenerationRequest, track func(string) string) *types.AudioArtifact {
	if c.cfg.Audio.Disabled || c.deps.Audio == nil {
		log.Println("[compose] Audio disabled — skipping")
		return nil
	}

	outPath := filepath.Join(req.OutputDir, "generated_audio.wav")
	prompt := fmt.Sprintf("Ambient music inspired by: %s", req.Prompt)
	_, err := c.deps.Audio.SynthesizeAudio(ctx, prompt, c.cfg.Audio.NegativePrompt, generate.AudioParams{
		Steps:       c.cfg.Audio.Steps,
		DurationSec: c.cfg.Audio.DurationSec,
		SampleRate:  c.cfg.Audio.SampleRate,
		Waveforms:   1,
		Seed:        c.cfg.Generation.Seed,
		OutputPath:  outPath,
	})
	if err != nil {
		log.Printf("[compose] Warning: audio synthesis failed, continuing without audio: %v", err)
		return nil
	}
	return &types.AudioArtifact{
		Path:        track(outPath),
		DurationSec: c.cfg.Audio.DurationSec,
		SampleRate:  c.cfg.Audio.SampleRate,
	}
}

// composeTimeline normalizes every clip to the common frame, concatenates in
// ordinal order and renders the caption overlay. Returns the timeline path,
// overlay path and the timeline duration.
func (c *Composer) composeTimeline(ctx context.Context, req types.GenerationRequest, clips []types.ClipArtifact, track func(string) string) (string, string, float64, error) {
	var normalized []string
	for i, clip := range clips {
		normPath := filepath.Join(req.OutputDir, fmt.Sprintf("normalized_%03d.mp4", i))
		err := c.deps.Encoder.Normalize(ctx, ffmpeg.NormalizeOptions{
			Input:  clip.Path,
			Output: normPath,
			Width:  c.cfg.Video.Width,
			Height: c.cfg.Video.Height,
			FPS:    c.cfg.Video.FPS,
		})
		if err != nil {
			return "", "", 0, fmt.Errorf("normalize clip %d: %w", clip.ImageOrdinal, err)
		}
		normalized = append(normalized, track(normPath))
	}

	timeline := track(filepath.Join(req.OutputDir, "timeline.mp4"))
	if err := c.deps.Encoder.Concat(ctx, normalized, timeline, c.cfg.Video.FPS); err != nil {
		return "", "", 0, fmt.Errorf("concatenate clips: %w", err)
	}

	duration, err := c.deps.Encoder.ProbeDuration(ctx, timeline)
	if err != nil {
		return "", "", 0, fmt.Errorf("probe timeline duration: %w", err)
	}

	caption := req.DisplayTitle
	if caption == "" {
		caption = req.Topic
	}
	overlayPath, err := c.deps.Captions.RenderCaption(caption, req.OutputDir)
	if err != nil {
		return "", "", 0, fmt.Errorf("render caption: %w", err)
	}
	track(overlayPath)

	return timeline, overlayPath, duration, nil
}

// cleanup removes every intermediate artifact. Idempotent; missing files are
// fine. Runs on every exit path.
func cleanup(paths []string) {
	if len(paths) == 0 {
		return
	}
	log.Printf("[compose] Cleaning up %d intermediate file(s)...", len(paths))
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Printf("[compose] Warning: could not remove %s: %v", p, err)
		}
	}
}
