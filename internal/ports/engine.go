package ports

import (
	"context"

	"github.com/cp25sy5-modjot/doc-extract-service/internal/domain"
)

type EnginePort interface {
	// Announce registers the service descriptor with one engine. A nil error
	// means the engine accepted the registration.
	Announce(ctx context.Context, engineURL string, desc domain.ServiceDescriptor) error
	// Withdraw removes the registration; best-effort, called at shutdown.
	Withdraw(ctx context.Context, engineURL string, desc domain.ServiceDescriptor) error
}
