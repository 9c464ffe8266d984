package ffmpeg

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// NormalizeOptions scales a clip to the common output frame
type NormalizeOptions struct {
	Input  string
	Output string
	Width  int
	Height int
	FPS    int
}

// FinalizeOptions builds the final artifact from the concatenated timeline
type FinalizeOptions struct {
	Video       string
	Overlay     string
	Audio       string // empty skips the audio mux
	Output      string
	DurationSec float64
	FadeSec     float64
	FPS         int
	Bitrate     string
}

// Normalize re-encodes a clip at the common frame size, letterboxing clips
// whose aspect ratio differs from the target.
func (e *Executor) Normalize(ctx context.Context, opts NormalizeOptions) error {
	return e.run(ctx, normalizeArgs(opts))
}

func normalizeArgs(opts NormalizeOptions) []string {
	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
		opts.Width, opts.Height, opts.Width, opts.Height,
	)
	return []string{
		"-y",
		"-i", opts.Input,
		"-vf", vf,
		"-r", fmt.Sprintf("%d", opts.FPS),
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-pix_fmt", "yuv420p",
		"-an",
		opts.Output,
	}
}

// Concat joins clips in the given order using the concat demuxer. Inputs may
// differ in native resolution or frame rate; the re-encode absorbs that.
func (e *Executor) Concat(ctx context.Context, inputs []string, output string, fps int) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no input clips to concatenate")
	}

	listFile := strings.TrimSuffix(output, filepath.Ext(output)) + "_concat.txt"
	var lines []string
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return fmt.Errorf("resolve clip path: %w", err)
		}
		lines = append(lines, fmt.Sprintf("file '%s'", abs))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	defer os.Remove(listFile)

	log.Printf("[ffmpeg] Concatenating %d clip(s)...", len(inputs))
	return e.run(ctx, concatArgs(listFile, output, fps))
}

func concatArgs(listFile, output string, fps int) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-r", fmt.Sprintf("%d", fps),
		"-pix_fmt", "yuv420p",
		"-an",
		output,
	}
}

// Finalize applies the 1s fades and caption overlay, attaches the audio track
// when present, and writes the final encode.
func (e *Executor) Finalize(ctx context.Context, opts FinalizeOptions) error {
	log.Printf("[ffmpeg] Encoding final video: %s", opts.Output)
	return e.run(ctx, finalizeArgs(opts))
}

func finalizeArgs(opts FinalizeOptions) []string {
	fadeOutStart := opts.DurationSec - opts.FadeSec
	if fadeOutStart < 0 {
		fadeOutStart = 0
	}
	filter := fmt.Sprintf(
		"[0:v]fade=t=in:st=0:d=%.3f,fade=t=out:st=%.3f:d=%.3f[faded];"+
			"[faded][1:v]overlay=(W-w)/2:(H-h)/2[vout]",
		opts.FadeSec, fadeOutStart, opts.FadeSec,
	)

	args := []string{
		"-y",
		"-i", opts.Video,
		"-i", opts.Overlay,
	}
	if opts.Audio != "" {
		args = append(args, "-i", opts.Audio)
	}
	args = append(args,
		"-filter_complex", filter,
		"-map", "[vout]",
	)
	if opts.Audio != "" {
		args = append(args,
			"-map", "2:a",
			"-c:a", "aac",
			"-b:a", "192k",
			"-shortest",
		)
	} else {
		args = append(args, "-an")
	}
	args = append(args,
		"-c:v", "libx264",
		"-r", fmt.Sprintf("%d", opts.FPS),
		"-b:v", opts.Bitrate,
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		opts.Output,
	)
	return args
}
