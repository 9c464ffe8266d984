package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-video-factory/internal/compose"
	"ai-video-factory/internal/config"
	"ai-video-factory/internal/generate"
	"ai-video-factory/internal/trends"
	"ai-video-factory/internal/types"
)

type stubComposer struct {
	gotReq types.GenerationRequest
	err    error
}

func (s *stubComposer) Run(ctx context.Context, req types.GenerationRequest) (*types.FinalVideo, error) {
	s.gotReq = req
	if s.err != nil {
		return nil, s.err
	}
	path := filepath.Join(req.OutputDir, "final_video.mp4")
	if err := os.WriteFile(path, []byte("finaldata"), 0644); err != nil {
		return nil, err
	}
	return &types.FinalVideo{Path: path, DurationSec: 8}, nil
}

type stubTrends struct {
	topics []trends.Topic
	err    error
	calls  int
}

func (s *stubTrends) Trending(ctx context.Context, regionCode string) ([]trends.Topic, error) {
	s.calls++
	return s.topics, s.err
}

type stubText struct{ out string }

func (s *stubText) GenerateText(ctx context.Context, prompt string, p generate.TextParams) (string, error) {
	return s.out, nil
}

type stubUploader struct {
	gotMeta *types.VideoMetadata
	err     error
}

func (s *stubUploader) Run(ctx context.Context, videoFile string, meta *types.VideoMetadata) (string, string, error) {
	s.gotMeta = meta
	if s.err != nil {
		return "", "", s.err
	}
	return "yt123", "https://www.youtube.com/watch?v=yt123", nil
}

func testDriver(t *testing.T, composer *stubComposer, topics *stubTrends, uploader *stubUploader) *Driver {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.Output = t.TempDir()
	return New(cfg, composer, topics, &stubText{out: "space, rockets"}, uploader, nil)
}

func readRunState(t *testing.T, outputDir string) *types.RunState {
	t.Helper()
	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(outputDir, entries[0].Name(), "run_state.json"))
	require.NoError(t, err)
	var state types.RunState
	require.NoError(t, json.Unmarshal(data, &state))
	return &state
}

func TestRunOnceTrendingTopic(t *testing.T) {
	composer := &stubComposer{}
	topics := &stubTrends{topics: []trends.Topic{{Title: "Space Travel", ID: "v1"}, {Title: "Other", ID: "v2"}}}
	uploader := &stubUploader{}
	d := testDriver(t, composer, topics, uploader)

	result, err := d.RunOnce(context.Background(), "")
	require.NoError(t, err)

	assert.Len(t, result.RunID, 8)
	assert.Equal(t, "Space Travel", result.Topic)
	assert.Equal(t, "yt123", result.VideoID)
	assert.Equal(t, "https://www.youtube.com/watch?v=yt123", result.VideoURL)

	assert.Equal(t, "Space Travel", composer.gotReq.Topic)
	assert.Contains(t, composer.gotReq.Prompt, "'Space Travel'")
	assert.Equal(t, "Exploring: Space Travel", composer.gotReq.DisplayTitle)
	assert.Equal(t, 2, composer.gotReq.ImageCount)

	require.NotNil(t, uploader.gotMeta)
	assert.Equal(t, "Exploring: Space Travel", uploader.gotMeta.Title)
	assert.Equal(t, []string{"#space", "#rockets"}, uploader.gotMeta.Tags)
	assert.Equal(t, "22", uploader.gotMeta.CategoryID)
	assert.Equal(t, "public", uploader.gotMeta.Visibility)
}

func TestRunOnceCustomPromptSkipsTrending(t *testing.T) {
	composer := &stubComposer{}
	topics := &stubTrends{}
	d := testDriver(t, composer, topics, &stubUploader{})

	result, err := d.RunOnce(context.Background(), "a castle in the clouds")
	require.NoError(t, err)

	assert.Zero(t, topics.calls, "custom prompt must not hit the trends API")
	assert.Equal(t, "Custom Topic", result.Topic)
	assert.Equal(t, "a castle in the clouds", composer.gotReq.Prompt)
}

func TestRunOnceNoTrendingTopics(t *testing.T) {
	d := testDriver(t, &stubComposer{}, &stubTrends{}, &stubUploader{})

	_, err := d.RunOnce(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoTrendingTopics)
}

func TestRunOnceComposerFailure(t *testing.T) {
	composer := &stubComposer{err: errors.New("no images generated")}
	topics := &stubTrends{topics: []trends.Topic{{Title: "Topic", ID: "v1"}}}
	uploader := &stubUploader{}
	d := testDriver(t, composer, topics, uploader)

	_, err := d.RunOnce(context.Background(), "")
	require.Error(t, err)
	assert.Nil(t, uploader.gotMeta, "upload must not run after a failed composition")
}

func TestRunOnceUploadFailureKeepsVideo(t *testing.T) {
	composer := &stubComposer{}
	topics := &stubTrends{topics: []trends.Topic{{Title: "Topic", ID: "v1"}}}
	uploader := &stubUploader{err: errors.New("401 unauthorized")}
	d := testDriver(t, composer, topics, uploader)

	result, err := d.RunOnce(context.Background(), "")
	require.Error(t, err)
	require.NotNil(t, result, "result still reports the local video")

	_, statErr := os.Stat(result.VideoPath)
	assert.NoError(t, statErr, "video file stays on disk for a manual retry")
}

func TestFailureStateLabels(t *testing.T) {
	runErr := &compose.RunError{State: compose.StateAwaitingImages, Reason: compose.NoImagesGenerated}
	assert.Equal(t, "NoImagesGenerated", failureState(fmt.Errorf("wrap: %w", runErr)))
	assert.Equal(t, "failed", failureState(errors.New("something else")))
}

func TestRunOnceWritesRunState(t *testing.T) {
	composer := &stubComposer{}
	topics := &stubTrends{topics: []trends.Topic{{Title: "Space Travel", ID: "v1"}}}
	d := testDriver(t, composer, topics, &stubUploader{})

	_, err := d.RunOnce(context.Background(), "")
	require.NoError(t, err)

	state := readRunState(t, d.cfg.Paths.Output)
	assert.Equal(t, "Space Travel", state.Topic)
	assert.NotEmpty(t, state.Prompt)
	assert.NotEmpty(t, state.VideoFile)
	assert.Equal(t, "yt123", state.YouTubeID)
	assert.NotEmpty(t, state.StartedAt)
	assert.NotEmpty(t, state.CompletedAt)
	require.NotNil(t, state.Metadata)
	assert.Equal(t, "Exploring: Space Travel", state.Metadata.Title)
}
