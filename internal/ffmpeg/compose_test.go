package ffmpeg

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}
}

func TestNormalizeArgs(t *testing.T) {
	args := normalizeArgs(NormalizeOptions{
		Input:  "in.mp4",
		Output: "out.mp4",
		Width:  1920,
		Height: 1080,
		FPS:    24,
	})
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "scale=1920:1080:force_original_aspect_ratio=decrease")
	assert.Contains(t, joined, "pad=1920:1080:(ow-iw)/2:(oh-ih)/2")
	assert.Contains(t, joined, "setsar=1")
	assert.Contains(t, joined, "-r 24")
	assert.Contains(t, joined, "-c:v libx264")
	assert.Contains(t, joined, "-an")
	assert.Equal(t, "out.mp4", args[len(args)-1])
}

func TestConcatArgs(t *testing.T) {
	args := concatArgs("list.txt", "timeline.mp4", 24)
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-f concat")
	assert.Contains(t, joined, "-safe 0")
	assert.Contains(t, joined, "-i list.txt")
	assert.Contains(t, joined, "-r 24")
	assert.Equal(t, "timeline.mp4", args[len(args)-1])
}

func TestFinalizeArgsWithAudio(t *testing.T) {
	args := finalizeArgs(FinalizeOptions{
		Video:       "timeline.mp4",
		Overlay:     "text_overlay.png",
		Audio:       "generated_audio.wav",
		Output:      "final_video.mp4",
		DurationSec: 8,
		FadeSec:     1,
		FPS:         24,
		Bitrate:     "5000k",
	})
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "fade=t=in:st=0:d=1.000")
	assert.Contains(t, joined, "fade=t=out:st=7.000:d=1.000")
	assert.Contains(t, joined, "overlay=(W-w)/2:(H-h)/2")
	assert.Contains(t, joined, "-i generated_audio.wav")
	assert.Contains(t, joined, "-map 2:a")
	assert.Contains(t, joined, "-c:a aac")
	assert.Contains(t, joined, "-shortest")
	assert.Contains(t, joined, "-b:v 5000k")
	assert.Contains(t, joined, "-movflags +faststart")
	assert.NotContains(t, args, "-an")
}

func TestFinalizeArgsWithoutAudio(t *testing.T) {
	args := finalizeArgs(FinalizeOptions{
		Video:       "timeline.mp4",
		Overlay:     "text_overlay.png",
		Output:      "final_video.mp4",
		DurationSec: 8,
		FadeSec:     1,
		FPS:         24,
		Bitrate:     "5000k",
	})
	joined := strings.Join(args, " ")

	assert.Contains(t, args, "-an")
	assert.NotContains(t, joined, "-map 2:a")
	assert.NotContains(t, joined, "generated_audio")
}

func TestFinalizeArgsShortTimelineClampsFadeOut(t *testing.T) {
	args := finalizeArgs(FinalizeOptions{
		Video:       "timeline.mp4",
		Overlay:     "text_overlay.png",
		Output:      "final_video.mp4",
		DurationSec: 0.5,
		FadeSec:     1,
		FPS:         24,
		Bitrate:     "5000k",
	})
	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "fade=t=out:st=0.000")
}

func TestConcatRejectsEmptyInput(t *testing.T) {
	e := &Executor{ffmpegPath: "ffmpeg", ffprobePath: "ffprobe"}
	err := e.Concat(context.Background(), nil, "out.mp4", 24)
	assert.Error(t, err)
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("short", 400))
	long := strings.Repeat("x", 500)
	got := tail(long, 400)
	assert.Len(t, got, 403)
	assert.True(t, strings.HasPrefix(got, "..."))
}

func TestProbeDurationMissingFile(t *testing.T) {
	skipIfNoFFmpeg(t)

	e, err := New()
	require.NoError(t, err)

	_, err = e.ProbeDuration(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	assert.Error(t, err)
}

func TestNormalizeBadInput(t *testing.T) {
	skipIfNoFFmpeg(t)

	e, err := New()
	require.NoError(t, err)

	dir := t.TempDir()
	err = e.Normalize(context.Background(), NormalizeOptions{
		Input:  filepath.Join(dir, "missing.mp4"),
		Output: filepath.Join(dir, "out.mp4"),
		Width:  1920,
		Height: 1080,
		FPS:    24,
	})
	assert.Error(t, err)
}
