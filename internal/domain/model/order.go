package model

import "time"

// Order lifecycle states. The numbering is shared with the rest of the
// platform and must not be reordered.
const (
	StateCreated          = 1
	StateUnderReview      = 2
	StateQuoted           = 3
	StateAssignedVzla     = 4
	StateReadyToPack      = 5
	StatePacked           = 6
	StateShipped          = 7
	StateInTransit        = 8
	StateInCustoms        = 9
	StateReceivedVzla     = 10
	StateReadyForDelivery = 11
	StateOutForDelivery   = 12
	StateDelivered        = 13
)

// StateMin and StateMax bound the valid state range.
const (
	StateMin = StateCreated
	StateMax = StateDelivered
)

var stateLabels = map[int]string{
	StateCreated:          "Creado",
	StateUnderReview:      "En Revisión",
	StateQuoted:           "Cotizado",
	StateAssignedVzla:     "Asignado Venezuela",
	StateReadyToPack:      "Listo para Empaque",
	StatePacked:           "Empacado",
	StateShipped:          "Embarcado",
	StateInTransit:        "En Tránsito",
	StateInCustoms:        "En Aduana",
	StateReceivedVzla:     "Recibido Venezuela",
	StateReadyForDelivery: "Listo para Entrega",
	StateOutForDelivery:   "En Reparto",
	StateDelivered:        "Entregado",
}

// ValidState reports whether s is one of the defined lifecycle states.
func ValidState(s int) bool {
	return s >= StateMin && s <= StateMax
}

// StateLabel returns the display label for a state, or empty string for
// values outside the defined range.
func StateLabel(s int) string {
	return stateLabels[s]
}

// Order is the slice of the externally owned order row the core works with.
type Order struct {
	ID        string
	ClientID  string
	State     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StateTransitionEvent describes a single committed state change. It is
// built by the transition use case and consumed synchronously by the
// notification dispatcher, never persisted on its own.
type StateTransitionEvent struct {
	OrderID       string
	ClientID      string
	PreviousState int
	NewState      int
	OccurredAt    time.Time
}

// TransitionResult reports the outcome of a transition: the committed
// event plus the notifications it produced. DispatchErr carries dispatch
// failures without failing the transition itself.
type TransitionResult struct {
	Event       StateTransitionEvent
	NotifiedIDs []string
	DispatchErr error
}
