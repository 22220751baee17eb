package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ndelgado/cargotrack/internal/domain/model"
	testhelpers "github.com/ndelgado/cargotrack/internal/test"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestDispatcher(repo *testhelpers.NotificationRepositoryStub) *Dispatcher {
	return NewDispatcher(repo, 12*time.Hour, testLogger())
}

func transitionEvent(orderID, clientID string, previous, next int, at time.Time) model.StateTransitionEvent {
	return model.StateTransitionEvent{
		OrderID:       orderID,
		ClientID:      clientID,
		PreviousState: previous,
		NewState:      next,
		OccurredAt:    at,
	}
}

func TestDispatchQuoteReadyIsEverOnce(t *testing.T) {
	repo := testhelpers.NewNotificationRepositoryStub()
	d := newTestDispatcher(repo)

	ev := transitionEvent("ORD-1", "client-7", 2, model.StateQuoted, time.Now())

	ids, err := d.Dispatch(context.Background(), ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(ids))
	}

	// Retried dispatch of the same transition, and even a later genuine
	// re-entry into the quoted state, must not notify the client again.
	again, err := d.Dispatch(context.Background(), ev)
	if err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected 0 new notifications on retry, got %d", len(again))
	}

	later := transitionEvent("ORD-1", "client-7", 2, model.StateQuoted, ev.OccurredAt.Add(48*time.Hour))
	ids, err = d.Dispatch(context.Background(), later)
	if err != nil {
		t.Fatalf("unexpected error on re-entry: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("quote ready must fire at most once per order, got %d more", len(ids))
	}

	client := repo.ByAudience(model.AudienceUser, "client-7")
	if len(client) != 1 {
		t.Fatalf("expected exactly 1 client notification, got %d", len(client))
	}
	if !strings.Contains(client[0].Title, "quoteReady") {
		t.Fatalf("unexpected title %q", client[0].Title)
	}
}

func TestDispatchAssignedNotifiesBothRoles(t *testing.T) {
	repo := testhelpers.NewNotificationRepositoryStub()
	d := newTestDispatcher(repo)

	ev := transitionEvent("ORD-2", "client-7", 3, model.StateAssignedVzla, time.Now())
	if _, err := d.Dispatch(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vzla := repo.ByAudience(model.AudienceRole, model.RoleVenezuela)
	pagos := repo.ByAudience(model.AudienceRole, model.RolePagos)
	if len(vzla) != 1 || len(pagos) != 1 {
		t.Fatalf("expected 1 notification per role, got venezuela=%d pagos=%d", len(vzla), len(pagos))
	}
	if vzla[0].OrderID != "ORD-2" || pagos[0].OrderID != "ORD-2" {
		t.Fatalf("role notifications must reference the order")
	}

	// Duplicate invocation for the same transition is guarded, but a
	// later distinct transition to the same state notifies again.
	if _, err := d.Dispatch(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(repo.ByAudience(model.AudienceRole, model.RoleVenezuela)); got != 1 {
		t.Fatalf("duplicate dispatch must not duplicate role notifications, got %d", got)
	}

	later := transitionEvent("ORD-2", "client-7", 9, model.StateAssignedVzla, ev.OccurredAt.Add(time.Hour))
	if _, err := d.Dispatch(context.Background(), later); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(repo.ByAudience(model.AudienceRole, model.RolePagos)); got != 2 {
		t.Fatalf("distinct transition to state 4 must notify again, got %d", got)
	}
}

func TestDispatchReadyToPackWindowedDedupe(t *testing.T) {
	repo := testhelpers.NewNotificationRepositoryStub()
	d := newTestDispatcher(repo)

	base := time.Now()
	d.now = func() time.Time { return base }

	ev := transitionEvent("ORD-3", "client-7", 4, model.StateReadyToPack, base)
	if _, err := d.Dispatch(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Re-entry one hour later falls inside the window: suppressed.
	d.now = func() time.Time { return base.Add(time.Hour) }
	ev2 := transitionEvent("ORD-3", "client-7", 6, model.StateReadyToPack, base.Add(time.Hour))
	if _, err := d.Dispatch(context.Background(), ev2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(repo.ByAudience(model.AudienceRole, model.RoleChina)); got != 1 {
		t.Fatalf("expected re-entry within window to dedupe, got %d china notifications", got)
	}

	// Re-entry after thirteen hours is a genuinely new event.
	d.now = func() time.Time { return base.Add(13 * time.Hour) }
	ev3 := transitionEvent("ORD-3", "client-7", 6, model.StateReadyToPack, base.Add(13*time.Hour))
	if _, err := d.Dispatch(context.Background(), ev3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(repo.ByAudience(model.AudienceRole, model.RoleChina)); got != 2 {
		t.Fatalf("expected re-entry after window to notify again, got %d china notifications", got)
	}
}

func TestDispatchGenericStatusChangeSpecialCasesAssignedVzla(t *testing.T) {
	repo := testhelpers.NewNotificationRepositoryStub()
	d := newTestDispatcher(repo)

	ev := transitionEvent("ORD-4", "client-9", 3, model.StateAssignedVzla, time.Now())
	if _, err := d.Dispatch(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	client := repo.ByAudience(model.AudienceUser, "client-9")
	if len(client) != 1 {
		t.Fatalf("expected 1 client notification, got %d", len(client))
	}
	if strings.Contains(client[0].Description, "Asignado Venezuela") {
		t.Fatalf("client must not see the raw status label, got %q", client[0].Description)
	}
	if !strings.Contains(client[0].Description, "awaitingPayment") {
		t.Fatalf("expected awaiting payment wording, got %q", client[0].Description)
	}
	if client[0].Severity != model.SeverityWarn {
		t.Fatalf("expected warn severity, got %s", client[0].Severity)
	}
}

func TestDispatchGenericStatusChangeOtherStates(t *testing.T) {
	repo := testhelpers.NewNotificationRepositoryStub()
	d := newTestDispatcher(repo)

	ev := transitionEvent("ORD-5", "client-1", 8, model.StateInCustoms, time.Now())
	ids, err := d.Dispatch(context.Background(), ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(ids))
	}

	client := repo.ByAudience(model.AudienceUser, "client-1")
	if len(client) != 1 {
		t.Fatalf("expected client notification, got %d", len(client))
	}
	if !strings.Contains(client[0].Title, "En Aduana") {
		t.Fatalf("expected status label in title, got %q", client[0].Title)
	}
}

func TestDispatchNoRulesForInitialState(t *testing.T) {
	repo := testhelpers.NewNotificationRepositoryStub()
	d := newTestDispatcher(repo)

	ev := transitionEvent("ORD-6", "client-1", 2, model.StateCreated, time.Now())
	ids, err := d.Dispatch(context.Background(), ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 0 || len(repo.Notifications) != 0 {
		t.Fatalf("expected no notifications for the initial state")
	}
}

// failOnPagos rejects inserts addressed to the pagos role.
type failOnPagos struct {
	*testhelpers.NotificationRepositoryStub
}

func (f *failOnPagos) Insert(ctx context.Context, n *model.Notification) (string, error) {
	if n.AudienceValue == model.RolePagos {
		return "", errors.New("insert rejected")
	}
	return f.NotificationRepositoryStub.Insert(ctx, n)
}

func TestDispatchRuleFailureDoesNotStopSiblings(t *testing.T) {
	repo := testhelpers.NewNotificationRepositoryStub()
	d := NewDispatcher(&failOnPagos{repo}, 12*time.Hour, testLogger())

	ev := transitionEvent("ORD-7", "client-2", 3, model.StateAssignedVzla, time.Now())
	ids, err := d.Dispatch(context.Background(), ev)
	if err == nil {
		t.Fatal("expected error from failed rule")
	}
	// venezuela role and the client update still went through.
	if len(ids) != 2 {
		t.Fatalf("expected 2 surviving notifications, got %d", len(ids))
	}
	if got := len(repo.ByAudience(model.AudienceRole, model.RoleVenezuela)); got != 1 {
		t.Fatalf("expected venezuela notification despite sibling failure, got %d", got)
	}
	if got := len(repo.ByAudience(model.AudienceRole, model.RolePagos)); got != 0 {
		t.Fatalf("expected no pagos notification, got %d", got)
	}
}
