package usecase

import (
	"context"

	"github.com/tasknest/backend/domain"
)

// ObjectStorage abstracts the remote attachment store so use cases stay
// transport-agnostic.
type ObjectStorage interface {
	// Upload streams a request-scoped buffer to remote storage and returns
	// its durable locator.
	Upload(ctx context.Context, data []byte, contentType string, kind domain.Kind) (string, error)
	// Delete removes the object behind a locator. Advisory by contract:
	// implementations absorb failures instead of returning them.
	Delete(ctx context.Context, locator string)
}
