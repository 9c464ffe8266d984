package media

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Canvas size of the caption overlay, matching the final video frame.
const (
	OverlayWidth  = 1920
	OverlayHeight = 1080
)

// Vertical placement policies for the rendered caption.
const (
	PlacementTop    = "top"
	PlacementCenter = "center"
)

const topMargin = 50

// OverlayRenderer rasterizes a caption string onto a transparent frame-sized image
type OverlayRenderer struct {
	face      font.Face
	placement string
}

// NewOverlayRenderer loads the caption font. An empty fontPath falls back to
// the embedded Go Bold face so the renderer works without system fonts.
func NewOverlayRenderer(fontPath string, fontSize int, placement string) (*OverlayRenderer, error) {
	ttf := gobold.TTF
	if fontPath != "" {
		data, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", fontPath, err)
		}
		ttf = data
	}

	fnt, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(fontSize),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}

	if placement != PlacementCenter {
		placement = PlacementTop
	}
	return &OverlayRenderer{face: face, placement: placement}, nil
}

// RenderCaption draws the caption horizontally centered on a transparent
// 1920x1080 canvas and saves it as a PNG in outDir. Text extent comes from
// the font's rendered bounding box, so centering holds for any caption.
func (r *OverlayRenderer) RenderCaption(text, outDir string) (string, error) {
	img := image.NewRGBA(image.Rect(0, 0, OverlayWidth, OverlayHeight))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: r.face,
	}

	bounds, _ := drawer.BoundString(text)
	textWidth := (bounds.Max.X - bounds.Min.X).Ceil()
	textHeight := (bounds.Max.Y - bounds.Min.Y).Ceil()

	x := (OverlayWidth-textWidth)/2 - bounds.Min.X.Floor()
	var baseline int
	switch r.placement {
	case PlacementCenter:
		baseline = (OverlayHeight-textHeight)/2 - bounds.Min.Y.Ceil()
	default:
		baseline = topMargin - bounds.Min.Y.Ceil()
	}

	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("create overlay dir: %w", err)
	}
	outPath := filepath.Join(outDir, "text_overlay.png")
	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create overlay file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("encode overlay: %w", err)
	}

	log.Printf("[media] Caption overlay rendered (%s placement): %s", r.placement, outPath)
	return outPath, nil
}
