package generate

import (
	"context"
	"fmt"
	"log"
)

type audioRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	AudioParams
}

// SynthesizeAudio generates one ambient audio track and saves it to
// p.OutputPath. Deterministic for a fixed seed and prompt.
func (s *Session) SynthesizeAudio(ctx context.Context, prompt, negativePrompt string, p AudioParams) (string, error) {
	if p.Waveforms <= 0 {
		p.Waveforms = 1
	}
	body := audioRequest{Prompt: prompt, NegativePrompt: negativePrompt, AudioParams: p}

	log.Printf("[generate] Synthesizing %.1fs of audio...", p.DurationSec)
	if err := s.postForArtifact(ctx, "/v1/audio/generations", body, p.OutputPath); err != nil {
		return "", fmt.Errorf("audio generation: %w", err)
	}

	log.Printf("[generate] ✅ Audio saved: %s", p.OutputPath)
	return p.OutputPath, nil
}
