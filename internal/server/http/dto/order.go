package dto

import "time"

// RegisterOrderRequest seeds an order row.
type RegisterOrderRequest struct {
	ID       string `json:"id" binding:"required"`
	ClientID string `json:"clientId" binding:"required"`
	State    int    `json:"state"`
}

// TransitionRequest moves an order to a new lifecycle state.
type TransitionRequest struct {
	State int `json:"state" binding:"required"`
}

// OrderResponse is the order view returned to callers.
type OrderResponse struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"clientId"`
	State     int       `json:"state"`
	Label     string    `json:"label"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TransitionResponse reports the committed transition and the
// notifications it produced.
type TransitionResponse struct {
	OrderID       string   `json:"orderId"`
	PreviousState int      `json:"previousState"`
	NewState      int      `json:"newState"`
	Label         string   `json:"label"`
	Notifications []string `json:"notifications"`
	DispatchError string   `json:"dispatchError,omitempty"`
}
