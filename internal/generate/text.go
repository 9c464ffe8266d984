package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type textRequest struct {
	Prompt string `json:"prompt"`
	TextParams
}

type textResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// GenerateText returns a raw completion for the prompt. Used for tag and
// caption generation; callers sanitize the output themselves.
func (s *Session) GenerateText(ctx context.Context, prompt string, p TextParams) (string, error) {
	payload, err := json.Marshal(textRequest{Prompt: prompt, TextParams: p})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/text/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("text generation: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read text response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("text generation: HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	var parsed textResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse text response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("text generation: %s", parsed.Error)
	}
	return parsed.Text, nil
}
