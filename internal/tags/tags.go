// Package tags turns raw model output into YouTube-safe metadata: hashtags,
// a title and a description.
package tags

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode"

	"ai-video-factory/internal/generate"
)

// DefaultTags substitute when generation or sanitization yields nothing
var DefaultTags = []string{"#trending", "#video", "#defaulttag"}

const (
	maxTags   = 10
	maxTagLen = 30
)

// Generate asks the text backend for tags and sanitizes the result. Any
// failure degrades to the default set; tag problems never fail a run.
func Generate(ctx context.Context, gen generate.TextGenerator, topic string) []string {
	prompt := fmt.Sprintf("Generate relevant tags for a video about %s", topic)
	raw, err := gen.GenerateText(ctx, prompt, generate.TextParams{
		MaxTokens:   50,
		Temperature: 0.7,
		TopK:        50,
		TopP:        0.9,
	})
	if err != nil {
		log.Printf("[tags] Warning: tag generation failed, using defaults: %v", err)
		return DefaultTags
	}
	if strings.TrimSpace(raw) == "" || strings.Contains(strings.ToLower(raw), "<think>") {
		log.Println("[tags] Warning: unusable model output, using defaults")
		return DefaultTags
	}
	return Sanitize(Split(raw))
}

// Split breaks raw model output into candidate tags
func Split(raw string) []string {
	raw = strings.NewReplacer("\n", ",", "|", ",").Replace(raw)
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Sanitize cleans candidate tags for upload: alphanumerics only, lowercased,
// truncated to 30 characters, single-character leftovers dropped, at most 10
// tags, prefixed with '#'. An empty result substitutes the default set.
func Sanitize(raw []string) []string {
	var valid []string
	for _, tag := range raw {
		var b strings.Builder
		for _, r := range tag {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(unicode.ToLower(r))
			}
		}
		// Bound in characters, not bytes, so CJK tags truncate cleanly.
		cleaned := []rune(b.String())
		if len(cleaned) < 2 {
			continue
		}
		if len(cleaned) > maxTagLen {
			cleaned = cleaned[:maxTagLen]
		}
		valid = append(valid, "#"+string(cleaned))
		if len(valid) == maxTags {
			break
		}
	}
	if len(valid) == 0 {
		return DefaultTags
	}
	return valid
}

// Title builds the upload title for a topic
func Title(topic string) string {
	return fmt.Sprintf("Exploring: %s", topic)
}

// Description builds the upload description from the title and tag set
func Description(title string, tagList []string) string {
	return fmt.Sprintf(
		"Check out the latest trends in %s! Stay updated with the most popular topics today.\n\nTags: %s",
		title, strings.Join(tagList, ", "),
	)
}
