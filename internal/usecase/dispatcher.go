package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/ndelgado/cargotrack/internal/domain/errors"
	"github.com/ndelgado/cargotrack/internal/domain/model"
	"github.com/ndelgado/cargotrack/internal/domain/repository"
)

// dedupeMode selects how a rule suppresses repeated notifications. The
// three modes are deliberately distinct per rule and must stay that way:
// the asymmetry matches how each notification type behaves in production.
type dedupeMode int

const (
	// dedupePerTransition suppresses duplicates of the same transition
	// event only; a later transition to the same state notifies again.
	dedupePerTransition dedupeMode = iota
	// dedupeOnce suppresses forever: one notification per audience,
	// order and title, no matter how often the state is re-entered.
	dedupeOnce
	// dedupeWindowed suppresses repeats within the configured window;
	// a genuine re-entry after the window notifies again.
	dedupeWindowed
)

// audienceFn resolves the recipient for an event: either a fixed role or
// a value derived from the order, such as the owning client.
type audienceFn func(ev model.StateTransitionEvent) (model.AudienceType, string)

func roleAudience(role string) audienceFn {
	return func(model.StateTransitionEvent) (model.AudienceType, string) {
		return model.AudienceRole, role
	}
}

func clientAudience(ev model.StateTransitionEvent) (model.AudienceType, string) {
	return model.AudienceUser, ev.ClientID
}

type rule struct {
	audience audienceFn
	render   func(model.StateTransitionEvent) (Rendered, error)
	dedupe   dedupeMode
}

// Dispatcher fans a committed state transition out to notifications
// according to a static per-state rule table.
type Dispatcher struct {
	notifications repository.NotificationRepository
	window        time.Duration
	logger        *slog.Logger
	now           func() time.Time
	rules         map[int][]rule
}

// NewDispatcher constructs the dispatcher with the production rule table.
// window bounds the time-windowed dedupe rules.
func NewDispatcher(notifications repository.NotificationRepository, window time.Duration, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		notifications: notifications,
		window:        window,
		logger:        logger,
		now:           time.Now,
	}
	d.rules = buildRules()
	return d
}

// buildRules assembles the transition table. Per-state special cases come
// first, then the generic client-facing status update for every state
// that has one (state 3 carries its own client rule instead).
func buildRules() map[int][]rule {
	rules := map[int][]rule{
		model.StateQuoted: {
			{audience: clientAudience, render: QuoteReady, dedupe: dedupeOnce},
		},
		model.StateAssignedVzla: {
			{audience: roleAudience(model.RoleVenezuela), render: OrderAssigned(model.RoleVenezuela), dedupe: dedupePerTransition},
			{audience: roleAudience(model.RolePagos), render: OrderAssigned(model.RolePagos), dedupe: dedupePerTransition},
		},
		model.StateReadyToPack: {
			{audience: roleAudience(model.RoleChina), render: ReadyToPack, dedupe: dedupeWindowed},
		},
	}

	for state := model.StateMin + 1; state <= model.StateMax; state++ {
		if state == model.StateQuoted {
			continue
		}
		rules[state] = append(rules[state], rule{
			audience: clientAudience,
			render:   StatusChanged,
			dedupe:   dedupeWindowed,
		})
	}

	return rules
}

// Dispatch evaluates every rule for the event's new state and returns the
// ids of notifications actually created. A failing rule is logged and
// collected but never stops its siblings; the returned error joins all
// per-rule failures.
func (d *Dispatcher) Dispatch(ctx context.Context, ev model.StateTransitionEvent) ([]string, error) {
	var (
		created []string
		errs    []error
	)

	for _, r := range d.rules[ev.NewState] {
		id, err := d.apply(ctx, ev, r)
		if err != nil {
			d.logger.Error("notification rule failed",
				slog.String("order", ev.OrderID),
				slog.Int("state", ev.NewState),
				slog.String("error", err.Error()),
			)
			errs = append(errs, err)
			continue
		}
		if id != "" {
			created = append(created, id)
		}
	}

	return created, errors.Join(errs...)
}

func (d *Dispatcher) apply(ctx context.Context, ev model.StateTransitionEvent, r rule) (string, error) {
	audienceType, audienceValue := r.audience(ev)
	if audienceValue == "" {
		return "", fmt.Errorf("empty audience for order %s state %d", ev.OrderID, ev.NewState)
	}

	rendered, err := r.render(ev)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}

	title := rendered.Title.Encode()

	if r.dedupe == dedupeWindowed {
		since := d.now().Add(-d.window)
		exists, err := d.notifications.ExistsSince(ctx, audienceType, audienceValue, ev.OrderID, title, since)
		if err != nil {
			return "", fmt.Errorf("dedupe lookup: %w", err)
		}
		if exists {
			return "", nil
		}
	}

	n := &model.Notification{
		ID:            uuid.NewString(),
		AudienceType:  audienceType,
		AudienceValue: audienceValue,
		Title:         title,
		Description:   rendered.Description.Encode(),
		Href:          rendered.Href,
		Severity:      rendered.Severity,
		OrderID:       ev.OrderID,
		DedupeKey:     dedupeKey(r.dedupe, audienceType, audienceValue, ev, title),
		CreatedAt:     d.now(),
		Unread:        true,
	}

	id, err := d.notifications.Insert(ctx, n)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			// The store-level unique key already holds this logical
			// notification: treat as sent.
			return "", nil
		}
		return "", fmt.Errorf("insert: %w", err)
	}
	return id, nil
}

// dedupeKey derives the store-enforced uniqueness key. Windowed rules get
// none: their suppression is the best-effort time-bounded lookup above.
func dedupeKey(mode dedupeMode, at model.AudienceType, av string, ev model.StateTransitionEvent, title string) string {
	switch mode {
	case dedupeOnce:
		return strings.Join([]string{string(at), av, ev.OrderID, title}, "|")
	case dedupePerTransition:
		return strings.Join([]string{string(at), av, ev.OrderID, title, strconv.FormatInt(ev.OccurredAt.UnixNano(), 10)}, "|")
	default:
		return ""
	}
}
