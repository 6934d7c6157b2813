package interfaces

import (
	"context"
	"user-service/shared/models"
)

// AccountEventPublisher publishes account lifecycle events to other services.
type AccountEventPublisher interface {
	PublishAccountEvent(ctx context.Context, event models.AccountEvent) error
	Close() error
}
