package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domainErrors "github.com/ndelgado/cargotrack/internal/domain/errors"
	"github.com/ndelgado/cargotrack/internal/domain/model"
	"github.com/ndelgado/cargotrack/internal/domain/repository"
)

// TransitionUseCase moves orders through the lifecycle and fans out the
// resulting notifications.
type TransitionUseCase struct {
	orders     repository.OrderRepository
	dispatcher *Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// NewTransitionUseCase constructs TransitionUseCase.
func NewTransitionUseCase(orders repository.OrderRepository, dispatcher *Dispatcher, logger *slog.Logger) *TransitionUseCase {
	return &TransitionUseCase{
		orders:     orders,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Register seeds an order. The order table is owned by the surrounding
// application; this exists so the core can be driven standalone.
func (u *TransitionUseCase) Register(ctx context.Context, id, clientID string, state int) (*model.Order, error) {
	if state == 0 {
		state = model.StateCreated
	}
	if !model.ValidState(state) {
		return nil, fmt.Errorf("%w: %d", domainErrors.ErrInvalidState, state)
	}
	return u.orders.Create(ctx, id, clientID, state)
}

// Get returns the current order row.
func (u *TransitionUseCase) Get(ctx context.Context, id string) (*model.Order, error) {
	return u.orders.Get(ctx, id)
}

// Transition validates and commits the state change, then dispatches
// notifications. Dispatch failures are reported in the result, never as a
// transition failure: the state change is already committed by then.
func (u *TransitionUseCase) Transition(ctx context.Context, orderID string, newState int) (*model.TransitionResult, error) {
	if !model.ValidState(newState) {
		return nil, fmt.Errorf("%w: %d", domainErrors.ErrInvalidState, newState)
	}

	order, err := u.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	at := u.now()
	if err := u.orders.SetState(ctx, orderID, order.State, newState, at); err != nil {
		return nil, err
	}

	ev := model.StateTransitionEvent{
		OrderID:       orderID,
		ClientID:      order.ClientID,
		PreviousState: order.State,
		NewState:      newState,
		OccurredAt:    at,
	}

	ids, dispatchErr := u.dispatcher.Dispatch(ctx, ev)
	if dispatchErr != nil {
		u.logger.Error("notification dispatch incomplete",
			slog.String("order", orderID),
			slog.Int("state", newState),
			slog.String("error", dispatchErr.Error()),
		)
	}

	return &model.TransitionResult{
		Event:       ev,
		NotifiedIDs: ids,
		DispatchErr: dispatchErr,
	}, nil
}
