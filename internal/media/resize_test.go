package media

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestResizeImageToConditioningResolution(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "generated_image_1.png")
	writeTestPNG(t, src, 512, 512)

	out, err := ResizeImage(src, dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "resized_generated_image_1.png"), out)
	w, h := decodeSize(t, out)
	assert.Equal(t, ConditioningWidth, w)
	assert.Equal(t, ConditioningHeight, h)
}

func TestResizeImageDownscales(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "big.png")
	writeTestPNG(t, src, 2048, 1152)

	out, err := ResizeImage(src, dir)
	require.NoError(t, err)

	w, h := decodeSize(t, out)
	assert.Equal(t, 1024, w)
	assert.Equal(t, 576, h)
}

func TestResizeImageMissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := ResizeImage(filepath.Join(dir, "nope.png"), dir)
	assert.Error(t, err)
}

func TestResizeImageRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(src, []byte("not an image"), 0644))

	_, err := ResizeImage(src, dir)
	assert.Error(t, err)
}
