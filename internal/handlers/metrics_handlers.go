package handlers

import (
	"net/http"

	"restaurant_analytics/internal/models"
	"restaurant_analytics/internal/services"
	"restaurant_analytics/pkg/datefilter"
	"restaurant_analytics/pkg/utils"

	"github.com/gin-gonic/gin"
)

// MetricsHandler serves the dashboard metric cards.
type MetricsHandler struct {
	metricsService services.MetricsService
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(ms services.MetricsService) *MetricsHandler {
	return &MetricsHandler{metricsService: ms}
}

// parseMetricRequestParams reads the period selector shared by every card.
func parseMetricRequestParams(c *gin.Context) (models.MetricRequestParams, error) {
	var params models.MetricRequestParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return params, err
	}
	if params.Period == "" {
		params.Period = datefilter.PeriodAnnual
	}
	return params, nil
}

// metricRequest resolves the restaurant id and period selector, answering 400 on bad input.
func metricRequest(c *gin.Context) (int64, datefilter.Selector, bool) {
	restaurantID, err := utils.StrToInt64(c.Param("id"))
	if err != nil || restaurantID <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid restaurant ID format.", c.Param("id")))
		return 0, datefilter.Selector{}, false
	}

	params, err := parseMetricRequestParams(c)
	if err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return 0, datefilter.Selector{}, false
	}
	sel, err := datefilter.ParseSelector(params.Year, params.Month, params.Period)
	if err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return 0, datefilter.Selector{}, false
	}
	return restaurantID, sel, true
}

func parseProductFilters(c *gin.Context) (models.ProductFilters, bool) {
	limit, err := utils.StrToPositiveInt(c.Query("limit"), services.DefaultProductLimit, services.MaxProductLimit)
	if err != nil {
		utils.RespondValidationFailed(c, "limit: "+err.Error())
		return models.ProductFilters{}, false
	}
	return models.ProductFilters{Search: utils.NewNullString(c.Query("search")), Limit: limit}, true
}

func respondMetricError(c *gin.Context, err error, message string) {
	utils.LogError(err, message, map[string]interface{}{"restaurant_id": c.Param("id")})
	utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, message, "Internal error"))
}

// GetSalesCount handles the sales-count card.
func (h *MetricsHandler) GetSalesCount(c *gin.Context) {
	restaurantID, sel, ok := metricRequest(c)
	if !ok {
		return
	}
	resp, err := h.metricsService.SalesCount(c.Request.Context(), restaurantID, sel)
	if err != nil {
		utils.RespondWithFallback(c, err, models.SalesCountResponse{Period: sel.Label()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetRevenue handles the revenue card.
func (h *MetricsHandler) GetRevenue(c *gin.Context) {
	restaurantID, sel, ok := metricRequest(c)
	if !ok {
		return
	}
	resp, err := h.metricsService.Revenue(c.Request.Context(), restaurantID, sel)
	if err != nil {
		utils.RespondWithFallback(c, err, models.RevenueResponse{Period: sel.Label()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetTicketAverage handles the average-ticket card.
func (h *MetricsHandler) GetTicketAverage(c *gin.Context) {
	restaurantID, sel, ok := metricRequest(c)
	if !ok {
		return
	}
	resp, err := h.metricsService.TicketAverage(c.Request.Context(), restaurantID, sel)
	if err != nil {
		utils.RespondWithFallback(c, err, models.TicketAverageResponse{Period: sel.Label()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MetricsHandler) GetDeliveryTime(c *gin.Context) {
	restaurantID, sel, ok := metricRequest(c)
	if !ok {
		return
	}
	resp, err := h.metricsService.DeliveryTime(c.Request.Context(), restaurantID, sel)
	if err != nil {
		utils.RespondWithFallback(c, err, models.DeliveryTimeResponse{Period: sel.Label()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MetricsHandler) GetGrowthTrend(c *gin.Context) {
	restaurantID, sel, ok := metricRequest(c)
	if !ok {
		return
	}
	resp, err := h.metricsService.GrowthTrend(c.Request.Context(), restaurantID, sel)
	if err != nil {
		utils.RespondWithFallback(c, err, models.GrowthTrendResponse{
			Series: []models.SeriesPoint{},
			Trend:  services.TrendStable,
			Period: sel.Label(),
		})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MetricsHandler) GetDeviation(c *gin.Context) {
	restaurantID, sel, ok := metricRequest(c)
	if !ok {
		return
	}
	resp, err := h.metricsService.Deviation(c.Request.Context(), restaurantID, sel)
	if err != nil {
		utils.RespondWithFallback(c, err, models.DeviationResponse{Period: sel.Label()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSalesByShift handles the sales-by-shift breakdown.
func (h *MetricsHandler) GetSalesByShift(c *gin.Context) {
	restaurantID, sel, ok := metricRequest(c)
	if !ok {
		return
	}
	resp, err := h.metricsService.SalesByShift(c.Request.Context(), restaurantID, sel)
	if err != nil {
		respondMetricError(c, err, "Failed to fetch sales by shift.")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSalesByChannel handles the sales-by-channel breakdown. channels is an optional CSV filter.
func (h *MetricsHandler) GetSalesByChannel(c *gin.Context) {
	restaurantID, sel, ok := metricRequest(c)
	if !ok {
		return
	}
	channels := utils.SplitCSV(c.Query("channels"))
	resp, err := h.metricsService.SalesByChannel(c.Request.Context(), restaurantID, sel, channels)
	if err != nil {
		respondMetricError(c, err, "Failed to fetch sales by channel.")
		return
	}
	if resp.Channels == nil {
		resp.Channels = []models.ChannelSales{}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MetricsHandler) GetTopProduct(c *gin.Context) {
	restaurantID, sel, ok := metricRequest(c)
	if !ok {
		return
	}
	filters, ok := parseProductFilters(c)
	if !ok {
		return
	}
	resp, err := h.metricsService.TopProduct(c.Request.Context(), restaurantID, sel, filters)
	if err != nil {
		respondMetricError(c, err, "Failed to fetch top product.")
		return
	}
	if resp.Products == nil {
		resp.Products = []models.ProductRank{}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MetricsHandler) GetMostRemovedProduct(c *gin.Context) {
	restaurantID, sel, ok := metricRequest(c)
	if !ok {
		return
	}
	filters, ok := parseProductFilters(c)
	if !ok {
		return
	}
	resp, err := h.metricsService.MostRemovedProduct(c.Request.Context(), restaurantID, sel, filters)
	if err != nil {
		respondMetricError(c, err, "Failed to fetch most removed product.")
		return
	}
	if resp.Products == nil {
		resp.Products = []models.ProductRank{}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MetricsHandler) GetSeasonality(c *gin.Context) {
	restaurantID, sel, ok := metricRequest(c)
	if !ok {
		return
	}
	resp, err := h.metricsService.Seasonality(c.Request.Context(), restaurantID, sel)
	if err != nil {
		respondMetricError(c, err, "Failed to fetch seasonality.")
		return
	}
	c.JSON(http.StatusOK, resp)
}
