package container

import (
	app "issue-classifier/internal/application"
	"issue-classifier/internal/domain/port"
)

type Container struct {
	SessionService        *app.SessionService
	ClassificationService *app.ClassificationService
}

func New(sessions port.SessionRepository, deps app.Dependencies) *Container {
	sessionService := app.NewSessionService(sessions)
	classificationService := app.NewClassificationService(deps)

	return &Container{
		SessionService:        sessionService,
		ClassificationService: classificationService,
	}
}
