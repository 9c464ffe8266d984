package generate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

// AnimateImage turns one conditioning image into a short video clip and
// saves it to p.OutputPath. The seed is fixed by the caller so repeated runs
// of the same image yield the same motion.
func (s *Session) AnimateImage(ctx context.Context, imagePath, prompt string, p ClipParams) (string, error) {
	img, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("open conditioning image: %w", err)
	}
	defer img.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("image", filepath.Base(imagePath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, img); err != nil {
		return "", fmt.Errorf("copy conditioning image: %w", err)
	}

	fields := map[string]string{
		"prompt":              prompt,
		"num_inference_steps": strconv.Itoa(p.Steps),
		"decode_chunk_size":   strconv.Itoa(p.DecodeChunkSize),
		"frame_rate":          strconv.Itoa(p.FrameRate),
		"seed":                strconv.FormatInt(p.Seed, 10),
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return "", err
		}
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/videos/generations", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	s.authorize(req)

	log.Printf("[generate] Animating %s...", filepath.Base(imagePath))
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("clip generation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("clip generation: HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	if err := saveArtifact(resp.Body, p.OutputPath); err != nil {
		return "", fmt.Errorf("save clip: %w", err)
	}

	log.Printf("[generate] ✅ Clip saved: %s", p.OutputPath)
	return p.OutputPath, nil
}
