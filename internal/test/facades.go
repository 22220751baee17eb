package test

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ndelgado/cargotrack/internal/domain/model"
)

// CoreFacadeStub provides controllable behaviour for HTTP endpoints.
type CoreFacadeStub struct {
	RegisterOrderFn        func(context.Context, string, string, int) (*model.Order, error)
	OrderFn                func(context.Context, string) (*model.Order, error)
	TransitionOrderFn      func(context.Context, string, int) (*model.TransitionResult, error)
	ResolveRateFn          func(context.Context) (*model.RateResolution, error)
	NotificationsFn        func(context.Context, model.AudienceType, string, int, string) ([]model.Notification, error)
	MarkNotificationReadFn func(context.Context, string, string) error
}

// RegisterOrder delegates to provided function or echoes the request.
func (s CoreFacadeStub) RegisterOrder(ctx context.Context, id, clientID string, state int) (*model.Order, error) {
	if s.RegisterOrderFn != nil {
		return s.RegisterOrderFn(ctx, id, clientID, state)
	}
	return &model.Order{ID: id, ClientID: clientID, State: state}, nil
}

// Order returns the configured order or a default one.
func (s CoreFacadeStub) Order(ctx context.Context, id string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return &model.Order{ID: id, ClientID: "client", State: model.StateCreated}, nil
}

// TransitionOrder executes the configured transition handler.
func (s CoreFacadeStub) TransitionOrder(ctx context.Context, id string, newState int) (*model.TransitionResult, error) {
	if s.TransitionOrderFn != nil {
		return s.TransitionOrderFn(ctx, id, newState)
	}
	return &model.TransitionResult{
		Event: model.StateTransitionEvent{
			OrderID:       id,
			ClientID:      "client",
			PreviousState: model.StateCreated,
			NewState:      newState,
			OccurredAt:    time.Unix(0, 0),
		},
	}, nil
}

// ResolveRate returns the configured resolution or a live default.
func (s CoreFacadeStub) ResolveRate(ctx context.Context) (*model.RateResolution, error) {
	if s.ResolveRateFn != nil {
		return s.ResolveRateFn(ctx)
	}
	return &model.RateResolution{Rate: 36.5, Source: "BCV"}, nil
}

// Notifications returns the configured feed.
func (s CoreFacadeStub) Notifications(ctx context.Context, audienceType model.AudienceType, audienceValue string, limit int, readerID string) ([]model.Notification, error) {
	if s.NotificationsFn != nil {
		return s.NotificationsFn(ctx, audienceType, audienceValue, limit, readerID)
	}
	return nil, nil
}

// MarkNotificationRead executes the configured receipt handler.
func (s CoreFacadeStub) MarkNotificationRead(ctx context.Context, notificationID, userID string) error {
	if s.MarkNotificationReadFn != nil {
		return s.MarkNotificationReadFn(ctx, notificationID, userID)
	}
	return nil
}

// RateFacadeStub mimics worker interactions with the application core.
type RateFacadeStub struct {
	ResolveFn func(context.Context) (*model.RateResolution, error)
	SweepFn   func(context.Context, time.Time) (int64, error)

	resolveCalls atomic.Int32
	sweepCalls   atomic.Int32
}

// ResolveRate counts the call and delegates.
func (s *RateFacadeStub) ResolveRate(ctx context.Context) (*model.RateResolution, error) {
	s.resolveCalls.Add(1)
	if s.ResolveFn != nil {
		return s.ResolveFn(ctx)
	}
	return &model.RateResolution{Rate: 36.5, Source: "BCV"}, nil
}

// SweepRateHistory counts the call and delegates.
func (s *RateFacadeStub) SweepRateHistory(ctx context.Context, cutoff time.Time) (int64, error) {
	s.sweepCalls.Add(1)
	if s.SweepFn != nil {
		return s.SweepFn(ctx, cutoff)
	}
	return 0, nil
}

// ResolveCalls reports how many times ResolveRate ran.
func (s *RateFacadeStub) ResolveCalls() int { return int(s.resolveCalls.Load()) }

// SweepCalls reports how many times SweepRateHistory ran.
func (s *RateFacadeStub) SweepCalls() int { return int(s.sweepCalls.Load()) }
