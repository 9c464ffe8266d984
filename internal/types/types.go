package types

// GenerationRequest describes one full pipeline run
type GenerationRequest struct {
	Topic        string `json:"topic"`
	Prompt       string `json:"prompt"`
	DisplayTitle string `json:"display_title"`
	ImageCount   int    `json:"image_count"`
	OutputDir    string `json:"output_dir"`
}

// ImageArtifact is one generated still image
type ImageArtifact struct {
	Path    string `json:"path"`
	Prompt  string `json:"prompt"`
	Ordinal int    `json:"ordinal"`
}

// ClipArtifact is one short video clip animated from a still image
type ClipArtifact struct {
	Path         string `json:"path"`
	ImageOrdinal int    `json:"image_ordinal"`
	FrameRate    int    `json:"frame_rate"`
}

// AudioArtifact is the ambient audio track for a run (at most one)
type AudioArtifact struct {
	Path        string  `json:"path"`
	DurationSec float64 `json:"duration_sec"`
	SampleRate  int     `json:"sample_rate"`
}

// OverlayArtifact is the rasterized caption image
type OverlayArtifact struct {
	Path    string `json:"path"`
	Caption string `json:"caption"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// FinalVideo is the sole output of a successful run
type FinalVideo struct {
	Path        string  `json:"path"`
	DurationSec float64 `json:"duration_sec"`
}

// VideoMetadata holds everything the upload step needs
type VideoMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	CategoryID  string   `json:"category_id"`
	Visibility  string   `json:"visibility"`
}

// RunState tracks the full state of one pipeline run, saved as JSON in the run dir
type RunState struct {
	RunID       string         `json:"run_id"`
	StartedAt   string         `json:"started_at"`
	CompletedAt string         `json:"completed_at"`
	Topic       string         `json:"topic"`
	Prompt      string         `json:"prompt"`
	VideoFile   string         `json:"video_file"`
	Metadata    *VideoMetadata `json:"metadata,omitempty"`
	YouTubeID   string         `json:"youtube_id,omitempty"`
	YouTubeURL  string         `json:"youtube_url,omitempty"`
	Error       string         `json:"error,omitempty"`
}
