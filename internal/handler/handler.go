package handler

import (
	"market-pulse/internal/cache"
	"market-pulse/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer           trace.Tracer
	cache            *cache.IndicatorCache
	alertService     *service.AlertService
	indicatorService *service.IndicatorService
	calendarService  *service.CalendarService
}

func New(
	tracer trace.Tracer,
	indicatorCache *cache.IndicatorCache,
	alertService *service.AlertService,
	indicatorService *service.IndicatorService,
	calendarService *service.CalendarService,
) *Handler {
	return &Handler{
		tracer:           tracer,
		cache:            indicatorCache,
		alertService:     alertService,
		indicatorService: indicatorService,
		calendarService:  calendarService,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	r.GET("/api/indicators", h.GetIndicators)
	r.POST("/api/update_indicators", h.UpdateIndicators)

	r.GET("/api/distribution", h.Category)
	r.GET("/api/distribution/:symbol", h.Category)
	r.GET("/api/google-trends", h.Category)
	r.GET("/api/google-trends/:symbol", h.Category)
	r.GET("/api/fear-greed", h.Category)
	r.GET("/api/fear-greed/:symbol", h.Category)
	r.GET("/api/mining-cost", h.Category)
	r.GET("/api/mining-cost/:symbol", h.Category)
	r.GET("/api/order-book", h.Category)
	r.GET("/api/order-book/:symbol", h.Category)
	r.GET("/api/entities", h.Category)
	r.GET("/api/entities/:symbol", h.Category)

	r.GET("/api/check_alerts", h.CheckAlerts)
	r.GET("/api/signal_history", h.SignalHistory)
	r.GET("/api/economic-indicators", h.EconomicIndicators)
}
