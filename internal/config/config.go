package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Generation GenerationConfig `yaml:"generation"`
	Clips      ClipsConfig      `yaml:"clips"`
	Audio      AudioConfig      `yaml:"audio"`
	Video      VideoConfig      `yaml:"video"`
	Overlay    OverlayConfig    `yaml:"overlay"`
	Trends     TrendsConfig     `yaml:"trends"`
	Upload     UploadConfig     `yaml:"upload"`
	Paths      PathsConfig      `yaml:"paths"`
	Loop       LoopConfig       `yaml:"loop"`
	Server     ServerConfig     `yaml:"server"`
}

type GenerationConfig struct {
	BaseURL           string  `yaml:"base_url"`
	ImageCount        int     `yaml:"image_count"`
	ImageSteps        int     `yaml:"image_steps"`
	GuidanceScale     float64 `yaml:"guidance_scale"`
	Seed              int64   `yaml:"seed"`
	InterImagePauseMS int     `yaml:"inter_image_pause_ms"`
}

type ClipsConfig struct {
	Steps           int `yaml:"steps"`
	FrameRate       int `yaml:"frame_rate"`
	DecodeChunkSize int `yaml:"decode_chunk_size"`
}

type AudioConfig struct {
	Disabled       bool    `yaml:"disabled"`
	DurationSec    float64 `yaml:"duration_sec"`
	SampleRate     int     `yaml:"sample_rate"`
	Steps          int     `yaml:"steps"`
	NegativePrompt string  `yaml:"negative_prompt"`
}

type VideoConfig struct {
	Width   int     `yaml:"width"`
	Height  int     `yaml:"height"`
	FPS     int     `yaml:"fps"`
	Bitrate string  `yaml:"bitrate"`
	FadeSec float64 `yaml:"fade_sec"`
}

type OverlayConfig struct {
	FontPath  string `yaml:"font_path"`
	FontSize  int    `yaml:"font_size"`
	Placement string `yaml:"placement"` // top | center
}

type TrendsConfig struct {
	RegionCode string `yaml:"region_code"`
	MaxResults int    `yaml:"max_results"`
}

type UploadConfig struct {
	CategoryID  string `yaml:"category_id"`
	Visibility  string `yaml:"visibility"`
	TokenFile   string `yaml:"token_file"`
	MadeForKids bool   `yaml:"made_for_kids"`
	DefaultLang string `yaml:"default_language"`
}

type PathsConfig struct {
	Output string `yaml:"output"`
	Ledger string `yaml:"ledger"`
}

type LoopConfig struct {
	IntervalMin int `yaml:"interval_min"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

// Load reads config.yaml and returns a Config struct with defaults applied
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a Config with every default applied and no file read
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Generation.BaseURL == "" {
		c.Generation.BaseURL = "http://127.0.0.1:8188"
	}
	if c.Generation.ImageCount <= 0 {
		c.Generation.ImageCount = 2
	}
	if c.Generation.ImageSteps <= 0 {
		c.Generation.ImageSteps = 50
	}
	if c.Generation.GuidanceScale <= 0 {
		c.Generation.GuidanceScale = 8.5
	}
	if c.Generation.Seed == 0 {
		c.Generation.Seed = 42
	}
	if c.Generation.InterImagePauseMS <= 0 {
		c.Generation.InterImagePauseMS = 2000
	}
	if c.Clips.Steps <= 0 {
		c.Clips.Steps = 50
	}
	if c.Clips.FrameRate <= 0 {
		c.Clips.FrameRate = 14
	}
	if c.Clips.DecodeChunkSize <= 0 {
		c.Clips.DecodeChunkSize = 8
	}
	if c.Audio.DurationSec <= 0 {
		c.Audio.DurationSec = 10.0
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.Steps <= 0 {
		c.Audio.Steps = 200
	}
	if c.Audio.NegativePrompt == "" {
		c.Audio.NegativePrompt = "No distortion or noise."
	}
	if c.Video.Width <= 0 {
		c.Video.Width = 1920
	}
	if c.Video.Height <= 0 {
		c.Video.Height = 1080
	}
	if c.Video.FPS <= 0 {
		c.Video.FPS = 24
	}
	if c.Video.Bitrate == "" {
		c.Video.Bitrate = "5000k"
	}
	if c.Video.FadeSec <= 0 {
		c.Video.FadeSec = 1.0
	}
	if c.Overlay.FontSize <= 0 {
		c.Overlay.FontSize = 50
	}
	if c.Overlay.Placement == "" {
		c.Overlay.Placement = "top"
	}
	if c.Trends.RegionCode == "" {
		c.Trends.RegionCode = "US"
	}
	if c.Trends.MaxResults <= 0 {
		c.Trends.MaxResults = 10
	}
	if c.Upload.CategoryID == "" {
		c.Upload.CategoryID = "22"
	}
	if c.Upload.Visibility == "" {
		c.Upload.Visibility = "public"
	}
	if c.Upload.TokenFile == "" {
		c.Upload.TokenFile = "youtube_token.json"
	}
	if c.Upload.DefaultLang == "" {
		c.Upload.DefaultLang = "en"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "generated_videos"
	}
	if c.Paths.Ledger == "" {
		c.Paths.Ledger = "factory.db"
	}
	if c.Loop.IntervalMin <= 0 {
		c.Loop.IntervalMin = 60
	}
	if c.Server.Port <= 0 {
		c.Server.Port = 5000
	}
}
