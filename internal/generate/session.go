// Package generate talks to the model-inference backend that produces the
// raw media artifacts: still images, image-conditioned video clips, ambient
// audio and short text completions.
//
// All model and device state lives behind the backend's HTTP surface; the
// Session is the process's single handle to it and is created once per
// driver, not per call.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ImageParams control one still-image generation call
type ImageParams struct {
	Steps         int     `json:"num_inference_steps"`
	GuidanceScale float64 `json:"guidance_scale"`
	Seed          int64   `json:"seed"`
	OutputPath    string  `json:"-"`
}

// ClipParams control one image-to-video generation call
type ClipParams struct {
	Steps           int    `json:"num_inference_steps"`
	DecodeChunkSize int    `json:"decode_chunk_size"`
	FrameRate       int    `json:"frame_rate"`
	Seed            int64  `json:"seed"`
	OutputPath      string `json:"-"`
}

// AudioParams control one text-to-audio generation call
type AudioParams struct {
	Steps       int     `json:"num_inference_steps"`
	DurationSec float64 `json:"audio_length_in_s"`
	SampleRate  int     `json:"sample_rate"`
	Waveforms   int     `json:"num_waveforms_per_prompt"`
	Seed        int64   `json:"seed"`
	OutputPath  string  `json:"-"`
}

// TextParams control one text-completion call
type TextParams struct {
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k"`
	TopP        float64 `json:"top_p"`
}

// ImageGenerator produces one still image per call
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, p ImageParams) (string, error)
}

// ClipGenerator animates one conditioning image into a short clip
type ClipGenerator interface {
	AnimateImage(ctx context.Context, imagePath, prompt string, p ClipParams) (string, error)
}

// AudioGenerator synthesizes one ambient audio track
type AudioGenerator interface {
	SynthesizeAudio(ctx context.Context, prompt, negativePrompt string, p AudioParams) (string, error)
}

// TextGenerator returns a raw text completion
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, p TextParams) (string, error)
}

// MemoryReleaser asks the backend to drop cached working memory between
// heavy generation calls.
type MemoryReleaser interface {
	ReleaseMemory(ctx context.Context) error
}

// Session is a long-lived handle to the inference backend
type Session struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSession creates a session against the given backend base URL. The API
// key may be empty for backends that do not require one.
func NewSession(baseURL, apiKey string) *Session {
	return &Session{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			// Generation calls are long-running, synchronous model runs.
			Timeout: 15 * time.Minute,
		},
	}
}

// ReleaseMemory tells the backend to free cached device memory. Mitigates
// fragmentation between back-to-back generations; failure is not fatal.
func (s *Session) ReleaseMemory(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/memory/release", nil)
	if err != nil {
		return err
	}
	s.authorize(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("memory release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("memory release: HTTP %d", resp.StatusCode)
	}
	return nil
}

func (s *Session) authorize(req *http.Request) {
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
}

// postForArtifact POSTs a JSON body and writes the binary response to outPath
func (s *Session) postForArtifact(ctx context.Context, endpoint string, body any, outPath string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d from backend: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return saveArtifact(resp.Body, outPath)
}

func saveArtifact(r io.Reader, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read artifact body: %w", err)
	}
	// A tiny body is an error page, not media.
	if len(data) < 100 {
		return fmt.Errorf("artifact response too small (%d bytes)", len(data))
	}
	return os.WriteFile(outPath, data, 0644)
}
