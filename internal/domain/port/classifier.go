package port

import (
	"context"

	"issue-classifier/internal/domain/entity"
)

// Classifier runs the image classification model.
type Classifier interface {
	// Classify returns one probability per class, in the order of Labels.
	Classify(ctx context.Context, img *entity.Raster) (entity.Probabilities, error)

	// Labels returns the class names in model index order.
	Labels() []string
}
