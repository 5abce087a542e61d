package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// EconomicIndicators godoc
// @Summary      Get the economic-indicator calendar rows
// @Description  Loads all rows ordered by date and time, refreshes the cached list, and returns them
// @Tags         economic
// @Produce      json
// @Success      200  {array}   domain.EconomicIndicatorRow
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/economic-indicators [get]
func (h *Handler) EconomicIndicators(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.economic-indicators")
	defer span.End()

	rows, err := h.calendarService.Indicators(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
