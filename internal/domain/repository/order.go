package repository

import (
	"context"
	"time"

	"github.com/ndelgado/cargotrack/internal/domain/model"
)

// OrderRepository describes persistence operations with orders. The order
// table itself is owned by the surrounding application; the core only
// reads current state and records transitions.
type OrderRepository interface {
	Create(ctx context.Context, id, clientID string, state int) (*model.Order, error)
	Get(ctx context.Context, id string) (*model.Order, error)
	// SetState persists the new state and appends an audit transition row
	// in the same transaction.
	SetState(ctx context.Context, id string, previous, next int, at time.Time) error
}
