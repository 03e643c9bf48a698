package handler

import (
	"net/http"

	"github.com/saadullahkhan123123/saeedautobackend/internal/dto"
	"github.com/saadullahkhan123123/saeedautobackend/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// ListIncome godoc
// @Summary      List active income records
// @Description  Income records in a date range (active only — cancelled slips excluded), with the range total.
// @Tags         reports
// @Produce      json
// @Param        start query string false "Start date YYYY-MM-DD"
// @Param        end   query string false "End date YYYY-MM-DD"
// @Success      200 {object} dto.IncomeListResponse
// @Failure      400 {object} apierror.Response
// @Router       /v1/income [get]
func (h *ReportsHandler) ListIncome(c *gin.Context) {
	var filter dto.DateRangeFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.IncomeByRange(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TopProducts godoc
// @Summary      Best-selling products
// @Description  Units, revenue and discount given per product, aggregated over active income.
// @Tags         reports
// @Produce      json
// @Param        start query string false "Start date YYYY-MM-DD"
// @Param        end   query string false "End date YYYY-MM-DD"
// @Param        limit query int    false "Rows (default 10)"
// @Success      200 {array} dto.TopProductRow
// @Failure      400 {object} apierror.Response
// @Router       /v1/reports/top-products [get]
func (h *ReportsHandler) TopProducts(c *gin.Context) {
	var filter dto.TopProductsFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	rows, err := h.svc.TopProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// IncomeTrend godoc
// @Summary      Income trend
// @Description  Active income bucketed by day, week or month.
// @Tags         reports
// @Produce      json
// @Param        start  query string false "Start date YYYY-MM-DD"
// @Param        end    query string false "End date YYYY-MM-DD"
// @Param        bucket query string false "day | week | month (default day)"
// @Success      200 {array} dto.TrendPoint
// @Failure      400 {object} apierror.Response
// @Router       /v1/reports/trend [get]
func (h *ReportsHandler) IncomeTrend(c *gin.Context) {
	var filter dto.TrendFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	points, err := h.svc.IncomeTrend(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// Dashboard godoc
// @Summary      Dashboard summary
// @Description  Headline figures for the shop dashboard (cached for 60s).
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.DashboardSummary
// @Router       /v1/reports/dashboard [get]
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	summary, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
