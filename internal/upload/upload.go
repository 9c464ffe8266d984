// Package upload publishes the final video to YouTube via the Data API v3.
package upload

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"ai-video-factory/internal/config"
	"ai-video-factory/internal/types"
)

// Uploader handles authentication and video upload
type Uploader struct {
	cfg *config.Config
}

// New creates a new Uploader
func New(cfg *config.Config) *Uploader {
	return &Uploader{cfg: cfg}
}

// Run uploads the video and returns its ID and watch URL. Authentication
// failure is fatal to the upload only — the video file stays on disk for a
// manual retry.
func (u *Uploader) Run(ctx context.Context, videoFile string, meta *types.VideoMetadata) (string, string, error) {
	log.Println("[upload] Authenticating with YouTube API...")

	tokenSource, err := u.tokenSource(ctx)
	if err != nil {
		return "", "", fmt.Errorf("youtube auth: %w", err)
	}

	client := &http.Client{Transport: &oauth2.Transport{Source: tokenSource}}
	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", "", fmt.Errorf("youtube service: %w", err)
	}

	log.Printf("[upload] Uploading: %q", meta.Title)

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                meta.Title,
			Description:          meta.Description,
			Tags:                 meta.Tags,
			CategoryId:           meta.CategoryID,
			DefaultLanguage:      u.cfg.Upload.DefaultLang,
			DefaultAudioLanguage: u.cfg.Upload.DefaultLang,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           meta.Visibility,
			SelfDeclaredMadeForKids: u.cfg.Upload.MadeForKids,
		},
	}

	f, err := os.Open(videoFile)
	if err != nil {
		return "", "", fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	if fi, statErr := f.Stat(); statErr == nil {
		log.Printf("[upload] File size: %.1f MB", float64(fi.Size())/1024/1024)
	}

	uploaded, err := svc.Videos.Insert([]string{"snippet", "status"}, video).Media(f).Do()
	if err != nil {
		return "", "", fmt.Errorf("youtube upload: %w", err)
	}

	// Persist the refreshed token blob for the next run.
	if tok, tokErr := tokenSource.Token(); tokErr == nil {
		if saveErr := SaveToken(u.cfg.Upload.TokenFile, tok); saveErr != nil {
			log.Printf("[upload] Warning: could not save token: %v", saveErr)
		}
	}

	videoID := uploaded.Id
	videoURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
	log.Printf("[upload] ✅ Uploaded! Video ID: %s", videoID)
	log.Printf("[upload] Video URL: %s", videoURL)
	return videoID, videoURL, nil
}

// tokenSource builds an auto-refreshing token source from the persisted
// token blob, falling back to a refresh token from the environment on first
// run.
func (u *Uploader) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	clientID := os.Getenv("YOUTUBE_CLIENT_ID")
	clientSecret := os.Getenv("YOUTUBE_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("YOUTUBE_CLIENT_ID or YOUTUBE_CLIENT_SECRET not set")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeScope},
	}

	tok, err := LoadToken(u.cfg.Upload.TokenFile)
	if err != nil {
		refreshToken := os.Getenv("YOUTUBE_REFRESH_TOKEN")
		if refreshToken == "" {
			return nil, fmt.Errorf("no token file at %s and YOUTUBE_REFRESH_TOKEN not set", u.cfg.Upload.TokenFile)
		}
		tok = &oauth2.Token{
			RefreshToken: refreshToken,
			Expiry:       time.Now().Add(-time.Hour), // force refresh
		}
	}

	return conf.TokenSource(ctx, tok), nil
}
