package interfaces

import (
	"context"

	"github.com/m-mizutani/relpub/pkg/domain/model"
)

// Notifier delivers the run summary to subscribers
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification) error
}
