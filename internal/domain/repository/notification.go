package repository

import (
	"context"
	"time"

	"github.com/ndelgado/cargotrack/internal/domain/model"
)

// NotificationRepository describes persistence operations with
// notifications and their read receipts.
type NotificationRepository interface {
	// Insert stores a notification and returns its id. When the record
	// carries a dedupe key that already exists it returns
	// errors.ErrAlreadyExists and stores nothing.
	Insert(ctx context.Context, n *model.Notification) (string, error)
	// ExistsSince reports whether a notification with the same audience,
	// order and title was created at or after since.
	ExistsSince(ctx context.Context, audienceType model.AudienceType, audienceValue, orderID, title string, since time.Time) (bool, error)
	// List returns notifications for an audience, newest first. When
	// readerID is non-empty each row's Read flag reflects that reader's
	// receipt.
	List(ctx context.Context, audienceType model.AudienceType, audienceValue string, limit int, readerID string) ([]model.Notification, error)
	// MarkRead records a read receipt. Marking twice is a no-op.
	MarkRead(ctx context.Context, notificationID, userID string) error
}
