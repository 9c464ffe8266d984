package media

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

// Conditioning-image size expected by the image-to-video generator.
const (
	ConditioningWidth  = 1024
	ConditioningHeight = 576
)

// ResizeImage resizes a source image to the conditioning resolution using
// bicubic resampling and writes it next to the run's other intermediates.
// A failure means "skip this image" to the caller, not "abort the run".
func ResizeImage(srcPath, workDir string) (string, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open source image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode source image: %w", err)
	}

	resized := resize.Resize(ConditioningWidth, ConditioningHeight, img, resize.Bicubic)

	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", fmt.Errorf("create resize dir: %w", err)
	}
	outPath := filepath.Join(workDir, "resized_"+filepath.Base(srcPath))

	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create resized image: %w", err)
	}
	defer out.Close()

	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(out, resized, &jpeg.Options{Quality: 95})
	default:
		err = png.Encode(out, resized)
	}
	if err != nil {
		return "", fmt.Errorf("encode resized image: %w", err)
	}

	log.Printf("[media] Resized %s -> %dx%d", filepath.Base(srcPath), ConditioningWidth, ConditioningHeight)
	return outPath, nil
}
