package app

import (
	"context"
	"time"

	"github.com/ndelgado/cargotrack/internal/domain/model"
	"github.com/ndelgado/cargotrack/internal/domain/repository"
	"github.com/ndelgado/cargotrack/internal/usecase"
)

// CoreFacade is the single surface the HTTP layer and the background
// worker talk to.
type CoreFacade struct {
	transitions   *usecase.TransitionUseCase
	resolver      *usecase.RateResolver
	notifications repository.NotificationRepository
	rates         repository.RateRepository
}

// NewCoreFacade constructs CoreFacade.
func NewCoreFacade(
	transitions *usecase.TransitionUseCase,
	resolver *usecase.RateResolver,
	notifications repository.NotificationRepository,
	rates repository.RateRepository,
) *CoreFacade {
	return &CoreFacade{
		transitions:   transitions,
		resolver:      resolver,
		notifications: notifications,
		rates:         rates,
	}
}

func (f *CoreFacade) RegisterOrder(ctx context.Context, id, clientID string, state int) (*model.Order, error) {
	return f.transitions.Register(ctx, id, clientID, state)
}

func (f *CoreFacade) Order(ctx context.Context, id string) (*model.Order, error) {
	return f.transitions.Get(ctx, id)
}

func (f *CoreFacade) TransitionOrder(ctx context.Context, id string, newState int) (*model.TransitionResult, error) {
	return f.transitions.Transition(ctx, id, newState)
}

func (f *CoreFacade) ResolveRate(ctx context.Context) (*model.RateResolution, error) {
	return f.resolver.Resolve(ctx)
}

func (f *CoreFacade) Notifications(ctx context.Context, audienceType model.AudienceType, audienceValue string, limit int, readerID string) ([]model.Notification, error) {
	return f.notifications.List(ctx, audienceType, audienceValue, limit, readerID)
}

func (f *CoreFacade) MarkNotificationRead(ctx context.Context, notificationID, userID string) error {
	return f.notifications.MarkRead(ctx, notificationID, userID)
}

func (f *CoreFacade) SweepRateHistory(ctx context.Context, cutoff time.Time) (int64, error) {
	return f.rates.DeleteOlderThan(ctx, cutoff)
}
