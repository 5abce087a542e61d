package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetIndicators godoc
// @Summary      Get the indicator cache
// @Description  Returns the whole in-memory indicator cache
// @Tags         indicators
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/indicators [get]
func (h *Handler) GetIndicators(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-indicators")
	defer span.End()

	c.JSON(http.StatusOK, h.cache.Indicators())
}

// UpdateIndicators godoc
// @Summary      Merge posted indicator data into the cache
// @Description  Merges the JSON body key by key into the indicator cache and flushes the backup file
// @Tags         indicators
// @Accept       json
// @Produce      json
// @Param        body  body      map[string]interface{}  true  "indicator data"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /api/update_indicators [post]
func (h *Handler) UpdateIndicators(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.update-indicators")
	defer span.End()

	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a non-empty JSON object"})
		return
	}

	h.cache.MergeTopLevel(body)
	if err := h.cache.FlushToDisk(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Indicators updated",
		"data":    h.cache.Indicators(),
	})
}
