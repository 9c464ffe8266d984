package generate

import (
	"context"
	"fmt"
	"log"
	"time"
)

type imageRequest struct {
	Prompt string `json:"prompt"`
	ImageParams
}

// GenerateImage produces one still image and saves it to p.OutputPath.
// The backend occasionally times out under load, so the call retries up to
// three times with a linear backoff before reporting failure.
func (s *Session) GenerateImage(ctx context.Context, prompt string, p ImageParams) (string, error) {
	body := imageRequest{Prompt: prompt, ImageParams: p}

	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		err = s.postForArtifact(ctx, "/v1/images/generations", body, p.OutputPath)
		if err == nil {
			log.Printf("[generate] ✅ Image saved: %s", p.OutputPath)
			return p.OutputPath, nil
		}
		log.Printf("[generate] Image attempt %d failed: %v", attempt, err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * 3 * time.Second):
		}
	}
	return "", fmt.Errorf("image generation failed after 3 attempts: %w", err)
}
