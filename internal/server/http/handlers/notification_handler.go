package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/ndelgado/cargotrack/internal/domain/errors"
	"github.com/ndelgado/cargotrack/internal/domain/model"
	"github.com/ndelgado/cargotrack/internal/server/http/dto"
)

const defaultListLimit = 50

// NotificationHandler serves notification feeds and read receipts.
type NotificationHandler struct {
	facade CoreFacade
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(facade CoreFacade) *NotificationHandler {
	return &NotificationHandler{facade: facade}
}

// List handles GET /api/notifications?type=&value=&reader=&limit=.
func (h *NotificationHandler) List(c *gin.Context) {
	audienceType := model.AudienceType(c.Query("type"))
	audienceValue := c.Query("value")
	if (audienceType != model.AudienceRole && audienceType != model.AudienceUser) || audienceValue == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.Status(http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	notifications, err := h.facade.Notifications(c.Request.Context(), audienceType, audienceValue, limit, c.Query("reader"))
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	response := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		response = append(response, dto.NotificationResponse{
			ID:          n.ID,
			Title:       n.Title,
			Description: n.Description,
			Href:        n.Href,
			Severity:    string(n.Severity),
			OrderID:     n.OrderID,
			CreatedAt:   n.CreatedAt,
			Read:        n.Read,
		})
	}

	c.JSON(http.StatusOK, response)
}

// MarkRead handles POST /api/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	var req dto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.MarkNotificationRead(c.Request.Context(), c.Param("id"), req.UserID); err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusNoContent)
}
