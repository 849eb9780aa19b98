package services

import (
	"context"

	"sensor-dashboard/models"
)

// ReadingSink receives every recorded reading. Implementations must be safe
// for concurrent use; a failing sink never stops the sampler.
type ReadingSink interface {
	Name() string
	Save(ctx context.Context, r models.Reading) error
}
