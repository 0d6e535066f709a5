package ports

import (
	"context"

	"github.com/cp25sy5-modjot/doc-extract-service/internal/domain"
)

// ProcessorPort is the contract between the task runner and the inference
// unit: exactly one named binary input field in, one named output field out.
type ProcessorPort interface {
	Process(ctx context.Context, data map[string]domain.TaskData) (map[string]domain.TaskData, error)
}
