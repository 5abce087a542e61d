package handler

import (
	"errors"
	"net/http"
	"strings"

	"market-pulse/internal/domain"

	"github.com/gin-gonic/gin"
)

var categoryRoutes = map[string]domain.Category{
	"distribution":  domain.CategoryDistribution,
	"google-trends": domain.CategoryGoogleTrends,
	"fear-greed":    domain.CategoryFearGreed,
	"mining-cost":   domain.CategoryMiningCost,
	"order-book":    domain.CategoryOrderBook,
	"entities":      domain.CategoryEntities,
}

// Category godoc
// @Summary      Get cached or stored data for one market-data category
// @Description  Reads from the in-memory cache first, then the cryptos table; 404 payloads carry the missing-data sub-reason
// @Tags         categories
// @Produce      json
// @Param        symbol  path      string  false  "asset symbol (default BTC)"
// @Success      200     {object}  map[string]interface{}
// @Failure      404     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Router       /api/fear-greed/{symbol} [get]
func (h *Handler) Category(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.category")
	defer span.End()

	category, ok := categoryFromRoute(c.FullPath())
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown category"})
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		symbol = domain.DefaultAsset
	}

	value, err := h.indicatorService.Category(ctx, category, symbol)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":         symbol,
		string(category): value,
	})
}

func categoryFromRoute(fullPath string) (domain.Category, bool) {
	rest := strings.TrimPrefix(fullPath, "/api/")
	if idx := strings.Index(rest, "/"); idx >= 0 {
		rest = rest[:idx]
	}
	category, ok := categoryRoutes[rest]
	return category, ok
}

// respondError maps the error taxonomy onto status codes: not-found
// sub-reasons get a 404 with the reason in the payload, credential
// problems 503, everything else 500.
func respondError(c *gin.Context, err error) {
	var nf *domain.NotFoundError
	switch {
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Error(), "reason": string(nf.Reason)})
	case errors.Is(err, domain.ErrCredentialUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
