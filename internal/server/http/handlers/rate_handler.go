package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ndelgado/cargotrack/internal/server/http/dto"
)

// RateHandler serves the resolved exchange rate.
type RateHandler struct {
	facade CoreFacade
}

// NewRateHandler constructs RateHandler.
func NewRateHandler(facade CoreFacade) *RateHandler {
	return &RateHandler{facade: facade}
}

// Resolve handles GET /api/rate. It only fails when the fallback chain is
// misconfigured; degraded values come back with status 200 and a warning.
func (h *RateHandler) Resolve(c *gin.Context) {
	resolution, err := h.facade.ResolveRate(c.Request.Context())
	if err != nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}

	c.JSON(http.StatusOK, dto.RateResponse{
		Rate:          resolution.Rate,
		Source:        resolution.Source,
		IsFromHistory: resolution.IsFromHistory,
		AgeMinutes:    resolution.AgeMinutes,
		Warning:       resolution.Warning,
	})
}
