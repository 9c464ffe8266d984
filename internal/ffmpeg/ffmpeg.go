// Package ffmpeg wraps the ffmpeg and ffprobe binaries for the handful of
// editing operations the composer needs: clip normalization, concatenation,
// caption overlay, fades, audio muxing and the final encode.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Executor runs ffmpeg/ffprobe commands
type Executor struct {
	ffmpegPath  string
	ffprobePath string
}

// New locates ffmpeg and ffprobe in PATH
func New() (*Executor, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}
	return &Executor{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}, nil
}

func (e *Executor) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg %s: %w: %s", args[len(args)-1], err, tail(stderr.String(), 400))
	}
	return nil
}

// ProbeDuration returns a media file's duration in seconds
func (e *Executor) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return dur, nil
}

// tail returns the last n bytes of s, for error context without full logs
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
