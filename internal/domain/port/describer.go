package port

import (
	"context"

	"issue-classifier/internal/domain/entity"
)

// IssueDescriber writes a short natural-language description of an issue photo.
type IssueDescriber interface {
	// Describe returns 2-3 sentences describing what the photo shows.
	Describe(ctx context.Context, img *entity.SourceImage, issue entity.IssueType) (string, error)
}
