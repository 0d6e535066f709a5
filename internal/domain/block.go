package domain

// ExtractedBlock is one detected region as reported by an extraction model.
// Bbox, when present, holds (left, top, right, bottom) as fractions of the
// image dimensions in [0,1].
type ExtractedBlock struct {
	Type    string    `json:"type"`
	Content string    `json:"content"`
	Bbox    []float64 `json:"bbox,omitempty"`
}

// Position is a pixel-space rectangle derived from a fractional bbox.
type Position struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FormattedBlock is the output unit delivered to engines. Position is nil
// when the model reported no bbox for the block.
type FormattedBlock struct {
	Type     string    `json:"type"`
	Text     string    `json:"text"`
	Position *Position `json:"position"`
}

// ExtractionResult is the per-task output document, order-preserving
// relative to the model's block order.
type ExtractionResult struct {
	Boxes []FormattedBlock `json:"boxes"`
}

// FormatBlock maps one extracted block to pixel coordinates. Out-of-range or
// inverted bboxes are applied as-is; this is a pass-through transform, not a
// sanitizer.
func FormatBlock(b ExtractedBlock, imageWidth, imageHeight int) FormattedBlock {
	out := FormattedBlock{
		Type: b.Type,
		Text: b.Content,
	}
	if len(b.Bbox) < 4 {
		return out
	}
	w := float64(imageWidth)
	h := float64(imageHeight)
	out.Position = &Position{
		Left:   b.Bbox[0] * w,
		Top:    b.Bbox[1] * h,
		Width:  (b.Bbox[2] - b.Bbox[0]) * w,
		Height: (b.Bbox[3] - b.Bbox[1]) * h,
	}
	return out
}

// FormatBlocks applies FormatBlock to every block, preserving order. The
// result slice is never nil so the boxes field marshals as [].
func FormatBlocks(blocks []ExtractedBlock, imageWidth, imageHeight int) []FormattedBlock {
	out := make([]FormattedBlock, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, FormatBlock(b, imageWidth, imageHeight))
	}
	return out
}
