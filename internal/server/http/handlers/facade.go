package handlers

import (
	"context"

	"github.com/ndelgado/cargotrack/internal/domain/model"
)

// CoreFacade is what handlers need from the application layer.
type CoreFacade interface {
	RegisterOrder(ctx context.Context, id, clientID string, state int) (*model.Order, error)
	Order(ctx context.Context, id string) (*model.Order, error)
	TransitionOrder(ctx context.Context, id string, newState int) (*model.TransitionResult, error)
	ResolveRate(ctx context.Context) (*model.RateResolution, error)
	Notifications(ctx context.Context, audienceType model.AudienceType, audienceValue string, limit int, readerID string) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID, userID string) error
}
