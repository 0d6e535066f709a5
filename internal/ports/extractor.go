package ports

import (
	"context"

	"github.com/cp25sy5-modjot/doc-extract-service/internal/domain"
)

type ExtractorPort interface {
	// Returns the ordered blocks detected in the image bytes (valid PNG/JPEG
	// expected). Bboxes, when present, are fractional.
	Extract(ctx context.Context, image []byte) ([]domain.ExtractedBlock, error)
	Name() string
}
