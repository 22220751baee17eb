package dto

import "time"

// NotificationResponse is one notification row annotated with the
// requesting reader's read state.
type NotificationResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Href        string    `json:"href"`
	Severity    string    `json:"severity"`
	OrderID     string    `json:"orderId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Read        bool      `json:"read"`
}

// MarkReadRequest records a read receipt for one user.
type MarkReadRequest struct {
	UserID string `json:"userId" binding:"required"`
}
