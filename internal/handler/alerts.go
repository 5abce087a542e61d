package handler

import (
	"net/http"

	"market-pulse/internal/domain"

	"github.com/gin-gonic/gin"
)

// CheckAlerts godoc
// @Summary      Poll the mailbox for new indicator alerts
// @Description  Runs one mailbox polling cycle, merges classified alerts into the cache, and returns them
// @Tags         alerts
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/check_alerts [get]
func (h *Handler) CheckAlerts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.check-alerts")
	defer span.End()

	alerts, err := h.alertService.CheckAlerts(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	if len(alerts) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "no new alerts"})
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// SignalHistory godoc
// @Summary      Rebuild and return the signal history
// @Description  Extracts signal records from the recent mailbox window and replaces the cached list
// @Tags         alerts
// @Produce      json
// @Success      200  {array}   domain.SignalRecord
// @Failure      404  {array}   domain.SignalRecord
// @Failure      500  {object}  map[string]string
// @Router       /api/signal_history [get]
func (h *Handler) SignalHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.signal-history")
	defer span.End()

	records, err := h.alertService.SignalHistory(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	if len(records) == 0 {
		c.JSON(http.StatusNotFound, []domain.SignalRecord{})
		return
	}
	c.JSON(http.StatusOK, records)
}
