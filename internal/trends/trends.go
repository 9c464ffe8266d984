// Package trends fetches trending video topics from the YouTube Data API.
package trends

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Topic is one trending entry, in chart order
type Topic struct {
	Title string
	ID    string
}

// Source yields trending topics; an empty slice is a valid non-error
// outcome meaning "no topic available right now".
type Source interface {
	Trending(ctx context.Context, regionCode string) ([]Topic, error)
}

// Fetcher reads the mostPopular chart
type Fetcher struct {
	svc        *youtube.Service
	maxResults int64
}

// NewFetcher builds a Fetcher using an API key. Extra options are for tests
// (endpoint override).
func NewFetcher(ctx context.Context, apiKey string, maxResults int, extra ...option.ClientOption) (*Fetcher, error) {
	opts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, extra...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	return &Fetcher{svc: svc, maxResults: int64(maxResults)}, nil
}

// Trending returns the region's trending topics in chart order
func (f *Fetcher) Trending(ctx context.Context, regionCode string) ([]Topic, error) {
	resp, err := f.svc.Videos.List([]string{"snippet"}).
		Chart("mostPopular").
		RegionCode(regionCode).
		MaxResults(f.maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("fetch trending videos: %w", err)
	}

	topics := make([]Topic, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Snippet == nil {
			continue
		}
		topics = append(topics, Topic{Title: item.Snippet.Title, ID: item.Id})
	}
	log.Printf("[trends] %d trending topic(s) for region %s", len(topics), regionCode)
	return topics, nil
}
