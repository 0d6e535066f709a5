package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog"

	"github.com/cp25sy5-modjot/doc-extract-service/internal/domain"
	"github.com/cp25sy5-modjot/doc-extract-service/internal/ports"
)

// Field names of the task contract: one binary input, one JSON output.
const (
	FieldImage  = "image"
	FieldResult = "result"
)

// ErrImageDecode marks inputs that are not valid PNG/JPEG bytes. Not retried;
// the task fails.
var ErrImageDecode = errors.New("image decode failed")

// ExtractionService turns one image payload into an ExtractionResult by
// running the injected extractor and normalizing its blocks to pixel space.
type ExtractionService struct {
	extractor ports.ExtractorPort
	log       zerolog.Logger
}

func NewExtractionService(extractor ports.ExtractorPort, log zerolog.Logger) *ExtractionService {
	return &ExtractionService{
		extractor: extractor,
		log:       log.With().Str("component", "extraction").Logger(),
	}
}

func (s *ExtractionService) Process(ctx context.Context, data map[string]domain.TaskData) (map[string]domain.TaskData, error) {
	in, ok := data[FieldImage]
	if !ok {
		return nil, fmt.Errorf("missing input field %q", FieldImage)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(in.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	blocks, err := s.extractor.Extract(ctx, in.Data)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	result := domain.ExtractionResult{
		Boxes: domain.FormatBlocks(blocks, cfg.Width, cfg.Height),
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	s.log.Debug().
		Str("format", format).
		Int("width", cfg.Width).
		Int("height", cfg.Height).
		Int("blocks", len(result.Boxes)).
		Msg("image processed")

	return map[string]domain.TaskData{
		FieldResult: {Data: payload, Type: domain.FieldJSON},
	}, nil
}
