package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/ndelgado/cargotrack/internal/domain/model"
)

func TestQuoteReadyRendering(t *testing.T) {
	ev := model.StateTransitionEvent{OrderID: "ORD-10", ClientID: "c1", NewState: model.StateQuoted, OccurredAt: time.Now()}

	r, err := QuoteReady(ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title.Key != "notifications.client.quoteReady.title" {
		t.Fatalf("unexpected title key %q", r.Title.Key)
	}
	if !strings.Contains(r.Title.Fallback, "ORD-10") {
		t.Fatalf("fallback must mention the order, got %q", r.Title.Fallback)
	}
	if r.Href != "/dashboard/orders/ORD-10" {
		t.Fatalf("unexpected href %q", r.Href)
	}
	if r.Severity != model.SeverityInfo {
		t.Fatalf("unexpected severity %s", r.Severity)
	}

	if _, err := QuoteReady(model.StateTransitionEvent{}); err == nil {
		t.Fatal("expected error for empty order id")
	}
}

func TestOrderAssignedLinksToRoleDashboard(t *testing.T) {
	ev := model.StateTransitionEvent{OrderID: "ORD-11", NewState: model.StateAssignedVzla}

	for _, role := range []string{model.RoleVenezuela, model.RolePagos} {
		r, err := OrderAssigned(role)(ev)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(r.Href, "/"+role+"/") {
			t.Fatalf("expected %s dashboard link, got %q", role, r.Href)
		}
	}
}

func TestStatusChangedGeneric(t *testing.T) {
	ev := model.StateTransitionEvent{OrderID: "ORD-12", NewState: model.StateInTransit}

	r, err := StatusChanged(ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(r.Title.Fallback, "En Tránsito") {
		t.Fatalf("expected status label in title, got %q", r.Title.Fallback)
	}
	if r.Severity != model.SeverityInfo {
		t.Fatalf("unexpected severity %s", r.Severity)
	}
}

func TestStatusChangedHidesAssignedVzlaLabel(t *testing.T) {
	ev := model.StateTransitionEvent{OrderID: "ORD-13", NewState: model.StateAssignedVzla}

	r, err := StatusChanged(ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(r.Description.Fallback, "Asignado Venezuela") {
		t.Fatalf("description must not name the raw status, got %q", r.Description.Fallback)
	}
	if !strings.Contains(r.Description.Fallback, "confirmación de tu pago") {
		t.Fatalf("expected awaiting payment wording, got %q", r.Description.Fallback)
	}
	if r.Severity != model.SeverityWarn {
		t.Fatalf("expected warn severity, got %s", r.Severity)
	}
}

func TestStatusChangedRejectsUnknownState(t *testing.T) {
	if _, err := StatusChanged(model.StateTransitionEvent{OrderID: "x", NewState: 99}); err == nil {
		t.Fatal("expected error for unknown state")
	}
}

func TestTextEncode(t *testing.T) {
	plain := model.PlainText("hola")
	if plain.Encode() != "hola" {
		t.Fatalf("plain text must encode as-is, got %q", plain.Encode())
	}

	keyed := model.Text{Key: "notifications.test", Args: map[string]any{"order": "1"}, Fallback: "raw"}
	encoded := keyed.Encode()
	if !strings.HasPrefix(encoded, "notifications.test|{") {
		t.Fatalf("expected key|json form, got %q", encoded)
	}
	if !strings.Contains(encoded, `"order":"1"`) {
		t.Fatalf("expected args in payload, got %q", encoded)
	}

	noArgs := model.Text{Key: "notifications.bare", Fallback: "raw"}
	if noArgs.Encode() != "notifications.bare" {
		t.Fatalf("expected bare key, got %q", noArgs.Encode())
	}
}
