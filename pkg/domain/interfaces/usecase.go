package interfaces

import (
	"context"

	"github.com/m-mizutani/relpub/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent processes a webhook event
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}

// PublishUseCase defines the release publishing pipeline
type PublishUseCase interface {
	// Publish runs the full pipeline: fetch, select, write, upload and notify
	Publish(ctx context.Context) (*model.PublishReport, error)

	// Plan runs fetch and select only and reports what Publish would upload
	Plan(ctx context.Context) (*model.Plan, error)
}
