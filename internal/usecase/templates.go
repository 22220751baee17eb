package usecase

import (
	"fmt"

	"github.com/ndelgado/cargotrack/internal/domain/model"
)

// Rendered is the display tuple a template produces. Titles and
// descriptions are localizable Texts; the dispatcher persists their
// encoded form.
type Rendered struct {
	Title       model.Text
	Description model.Text
	Href        string
	Severity    model.Severity
}

// The template catalog. Pure functions, no I/O: they map a transition
// event to display content for one audience.

// QuoteReady tells the owning client their quote is available.
func QuoteReady(ev model.StateTransitionEvent) (Rendered, error) {
	if ev.OrderID == "" {
		return Rendered{}, fmt.Errorf("quote ready: empty order id")
	}
	return Rendered{
		Title: model.Text{
			Key:      "notifications.client.quoteReady.title",
			Args:     map[string]any{"order": ev.OrderID},
			Fallback: fmt.Sprintf("Cotización lista para el pedido #%s", ev.OrderID),
		},
		Description: model.Text{
			Key:      "notifications.client.quoteReady.description",
			Args:     map[string]any{"order": ev.OrderID},
			Fallback: "Revisa el monto y confirma tu pedido para continuar.",
		},
		Href:     "/dashboard/orders/" + ev.OrderID,
		Severity: model.SeverityInfo,
	}, nil
}

// OrderAssigned tells an operations role a new order landed on their
// queue. The link targets the role's own dashboard.
func OrderAssigned(role string) func(model.StateTransitionEvent) (Rendered, error) {
	return func(ev model.StateTransitionEvent) (Rendered, error) {
		if ev.OrderID == "" {
			return Rendered{}, fmt.Errorf("order assigned: empty order id")
		}
		return Rendered{
			Title: model.Text{
				Key:      "notifications.ops.orderAssigned.title",
				Args:     map[string]any{"order": ev.OrderID},
				Fallback: fmt.Sprintf("Nuevo pedido asignado #%s", ev.OrderID),
			},
			Description: model.Text{
				Key:      "notifications.ops.orderAssigned.description",
				Args:     map[string]any{"order": ev.OrderID},
				Fallback: "Hay un nuevo pedido asignado pendiente de gestión.",
			},
			Href:     "/" + role + "/orders/" + ev.OrderID,
			Severity: model.SeverityInfo,
		}, nil
	}
}

// ReadyToPack tells the China warehouse an order can be packed.
func ReadyToPack(ev model.StateTransitionEvent) (Rendered, error) {
	if ev.OrderID == "" {
		return Rendered{}, fmt.Errorf("ready to pack: empty order id")
	}
	return Rendered{
		Title: model.Text{
			Key:      "notifications.china.readyToPack.title",
			Args:     map[string]any{"order": ev.OrderID},
			Fallback: fmt.Sprintf("Pedido #%s listo para empacar", ev.OrderID),
		},
		Description: model.Text{
			Key:      "notifications.china.readyToPack.description",
			Args:     map[string]any{"order": ev.OrderID},
			Fallback: "El pago fue confirmado, el pedido puede empacarse.",
		},
		Href:     "/china/orders/" + ev.OrderID,
		Severity: model.SeverityInfo,
	}, nil
}

// StatusChanged is the generic client-facing status update. The
// "Asignado Venezuela" label is not shown literally: from the client's
// point of view that stage means their payment is being confirmed.
func StatusChanged(ev model.StateTransitionEvent) (Rendered, error) {
	label := model.StateLabel(ev.NewState)
	if label == "" {
		return Rendered{}, fmt.Errorf("status changed: unknown state %d", ev.NewState)
	}

	r := Rendered{
		Title: model.Text{
			Key:      "notifications.client.statusChanged.title",
			Args:     map[string]any{"order": ev.OrderID, "status": label},
			Fallback: fmt.Sprintf("Pedido #%s: %s", ev.OrderID, label),
		},
		Description: model.Text{
			Key:      "notifications.client.statusChanged.description",
			Args:     map[string]any{"order": ev.OrderID, "status": label},
			Fallback: fmt.Sprintf("Tu pedido #%s cambió de estado a %q.", ev.OrderID, label),
		},
		Href:     "/dashboard/orders/" + ev.OrderID,
		Severity: model.SeverityInfo,
	}

	if label == "Asignado Venezuela" {
		r.Description = model.Text{
			Key:      "notifications.client.awaitingPayment.description",
			Args:     map[string]any{"order": ev.OrderID},
			Fallback: fmt.Sprintf("Tu pedido #%s está a la espera de la confirmación de tu pago.", ev.OrderID),
		}
		r.Severity = model.SeverityWarn
	}

	return r, nil
}
