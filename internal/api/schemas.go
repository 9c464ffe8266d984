package api

import "ai-video-factory/internal/ledger"

// GenerateRequest is the POST /generate_video body; all fields optional
type GenerateRequest struct {
	Prompt string `json:"prompt,omitempty"`
}

// GenerateResponse is the POST /generate_video reply
type GenerateResponse struct {
	Success  bool   `json:"success"`
	VideoID  string `json:"video_id,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RunsResponse is the GET /runs reply
type RunsResponse struct {
	Runs  []ledger.Run `json:"runs"`
	Error string       `json:"error,omitempty"`
}
