package port

import (
	"context"

	"issue-classifier/internal/domain/entity"
)

// VerdictCache keeps verdicts for recently classified image URLs.
type VerdictCache interface {
	// Get returns the cached verdict; ok is false on a miss.
	Get(ctx context.Context, key string) (v *entity.ClassificationVerdict, ok bool, err error)

	// Set stores a verdict.
	Set(ctx context.Context, key string, v *entity.ClassificationVerdict) error
}
