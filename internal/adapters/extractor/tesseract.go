package extractor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/cp25sy5-modjot/doc-extract-service/internal/domain"
)

// Tesseract runs extraction locally through the gosseract client. Block
// boxes come back in pixels and are converted to fractional coordinates to
// match the extractor contract.
type Tesseract struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

func NewTesseract(lang string) *Tesseract {
	var langs []string
	for _, l := range strings.Split(lang, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return &Tesseract{
		languages:     langs,
		clientFactory: gosseract.NewClient,
	}
}

func (e *Tesseract) Name() string { return "tesseract" }

func (e *Tesseract) Extract(ctx context.Context, img []byte) ([]domain.ExtractedBlock, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	c := e.clientFactory()
	defer c.Close()
	if err := c.SetImageFromBytes(img); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if len(e.languages) > 0 {
		if err := c.SetLanguage(e.languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_BLOCK)
	if err != nil {
		return nil, fmt.Errorf("bounding boxes: %w", err)
	}

	w := float64(cfg.Width)
	h := float64(cfg.Height)
	blocks := make([]domain.ExtractedBlock, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		blocks = append(blocks, domain.ExtractedBlock{
			Type:    "text",
			Content: text,
			Bbox: []float64{
				float64(b.Box.Min.X) / w,
				float64(b.Box.Min.Y) / h,
				float64(b.Box.Max.X) / w,
				float64(b.Box.Max.Y) / h,
			},
		})
	}
	return blocks, nil
}
