package media

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderTo(t *testing.T, placement, text string) *image.RGBA {
	t.Helper()
	r, err := NewOverlayRenderer("", 50, placement)
	require.NoError(t, err)

	dir := t.TempDir()
	out, err := r.RenderCaption(text, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "text_overlay.png"), out)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)

	rgba, ok := decoded.(*image.RGBA)
	if !ok {
		b := decoded.Bounds()
		rgba = image.NewRGBA(b)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				rgba.Set(x, y, decoded.At(x, y))
			}
		}
	}
	return rgba
}

// opaqueExtent finds the bounding box of non-transparent pixels
func opaqueExtent(img *image.RGBA) (minX, minY, maxX, maxY int, found bool) {
	b := img.Bounds()
	minX, minY = b.Max.X, b.Max.Y
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
				found = true
				if x < minX {
					minX = x
				}
				if y < minY {
					minY = y
				}
				if x > maxX {
					maxX = x
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	return
}

func TestRenderCaptionCanvasSize(t *testing.T) {
	img := renderTo(t, PlacementTop, "Exploring: Space Travel")
	assert.Equal(t, OverlayWidth, img.Bounds().Dx())
	assert.Equal(t, OverlayHeight, img.Bounds().Dy())
}

func TestRenderCaptionTopPlacement(t *testing.T) {
	img := renderTo(t, PlacementTop, "Exploring: Space Travel")

	minX, minY, maxX, maxY, found := opaqueExtent(img)
	require.True(t, found, "caption must draw some pixels")

	// Text sits near the top margin, well inside the upper quarter.
	assert.GreaterOrEqual(t, minY, 30)
	assert.Less(t, maxY, OverlayHeight/4)

	// Horizontally centered: left and right gaps within a few pixels.
	leftGap := minX
	rightGap := OverlayWidth - 1 - maxX
	assert.InDelta(t, leftGap, rightGap, 4)
}

func TestRenderCaptionCenterPlacement(t *testing.T) {
	img := renderTo(t, PlacementCenter, "Centered")

	_, minY, _, maxY, found := opaqueExtent(img)
	require.True(t, found)

	mid := (minY + maxY) / 2
	assert.InDelta(t, OverlayHeight/2, mid, 40)
}

func TestRenderCaptionEmptyTextStillWritesFile(t *testing.T) {
	r, err := NewOverlayRenderer("", 50, PlacementTop)
	require.NoError(t, err)

	dir := t.TempDir()
	out, err := r.RenderCaption("", dir)
	require.NoError(t, err)
	_, statErr := os.Stat(out)
	assert.NoError(t, statErr)
}

func TestNewOverlayRendererBadFontPath(t *testing.T) {
	_, err := NewOverlayRenderer(filepath.Join(t.TempDir(), "missing.ttf"), 50, PlacementTop)
	assert.Error(t, err)
}

func TestNewOverlayRendererUnknownPlacementDefaultsToTop(t *testing.T) {
	r, err := NewOverlayRenderer("", 50, "bottom-left")
	require.NoError(t, err)
	assert.Equal(t, PlacementTop, r.placement)
}
