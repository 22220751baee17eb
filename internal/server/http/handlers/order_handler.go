package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/ndelgado/cargotrack/internal/domain/errors"
	"github.com/ndelgado/cargotrack/internal/domain/model"
	"github.com/ndelgado/cargotrack/internal/server/http/dto"
)

// OrderHandler manages order lifecycle endpoints.
type OrderHandler struct {
	facade CoreFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade CoreFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Register handles POST /api/orders.
func (h *OrderHandler) Register(c *gin.Context) {
	var req dto.RegisterOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.RegisterOrder(c.Request.Context(), req.ID, req.ClientID, req.State)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidState):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrAlreadyExists):
			c.Status(http.StatusConflict)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Transition handles POST /api/orders/:id/transition.
func (h *OrderHandler) Transition(c *gin.Context) {
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	result, err := h.facade.TransitionOrder(c.Request.Context(), c.Param("id"), req.State)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidState):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	resp := dto.TransitionResponse{
		OrderID:       result.Event.OrderID,
		PreviousState: result.Event.PreviousState,
		NewState:      result.Event.NewState,
		Label:         model.StateLabel(result.Event.NewState),
		Notifications: result.NotifiedIDs,
	}
	if resp.Notifications == nil {
		resp.Notifications = []string{}
	}
	if result.DispatchErr != nil {
		resp.DispatchError = result.DispatchErr.Error()
	}

	c.JSON(http.StatusOK, resp)
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:        order.ID,
		ClientID:  order.ClientID,
		State:     order.State,
		Label:     model.StateLabel(order.State),
		UpdatedAt: order.UpdatedAt,
	}
}
