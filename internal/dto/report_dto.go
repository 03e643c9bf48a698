package dto

import (
	"github.com/shopspring/decimal"

	"github.com/saadullahkhan123123/saeedautobackend/internal/model"
)

// DateRangeFilter bounds read-only income/report queries. Dates are
// YYYY-MM-DD; an empty bound is open-ended.
type DateRangeFilter struct {
	Start string `form:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `form:"end"   validate:"omitempty,datetime=2006-01-02"`
}

type TrendFilter struct {
	DateRangeFilter
	Bucket string `form:"bucket,default=day" validate:"oneof=day week month"`
}

type TopProductsFilter struct {
	DateRangeFilter
	Limit int `form:"limit,default=10" validate:"min=1,max=100"`
}

type IncomeListResponse struct {
	Data        []model.IncomeRecord `json:"data"`
	TotalIncome decimal.Decimal      `json:"totalIncome"`
	Count       int                  `json:"count"`
}

// TopProductRow aggregates active income per product.
type TopProductRow struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"productName"`
	Units    int64           `json:"unitsSold"`
	Revenue  decimal.Decimal `json:"revenue"`
	Discount decimal.Decimal `json:"discountGiven"`
}

// TrendPoint is one time bucket of the income trend.
type TrendPoint struct {
	Bucket  string          `json:"bucket"` // bucket start, YYYY-MM-DD
	Slips   int64           `json:"slips"`
	Income  decimal.Decimal `json:"income"`
}

// DashboardSummary is the cached headline view for the shop dashboard.
type DashboardSummary struct {
	TodayIncome    decimal.Decimal `json:"todayIncome"`
	TodaySlips     int64           `json:"todaySlips"`
	MonthIncome    decimal.Decimal `json:"monthIncome"`
	ActiveItems    int64           `json:"activeItems"`
	LowStockItems  int64           `json:"lowStockItems"`
	CancelledSlips int64           `json:"cancelledSlips"`
}
