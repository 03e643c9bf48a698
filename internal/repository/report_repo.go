package repository

import (
	"context"
	"time"

	"github.com/saadullahkhan123123/saeedautobackend/internal/dto"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportRepository is the read-only aggregation side consumed by the external
// reporting collaborator. Queries run without transactions; read-committed
// consistency is acceptable for aggregates.
type ReportRepository interface {
	TopProducts(ctx context.Context, start, end *time.Time, limit int) ([]dto.TopProductRow, error)
	IncomeTrend(ctx context.Context, bucket string, start, end *time.Time) ([]dto.TrendPoint, error)
	DashboardSummary(ctx context.Context) (*dto.DashboardSummary, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) TopProducts(ctx context.Context, start, end *time.Time, limit int) ([]dto.TopProductRow, error) {
	q := r.db.WithContext(ctx).
		Table("income_products ip").
		Select(`ip.sku,
		        ip.name,
		        SUM(ip.quantity)        AS units,
		        SUM(ip.total_price)     AS revenue,
		        SUM(ip.discount_amount) AS discount`).
		Joins("JOIN income_records ir ON ir.id = ip.income_record_id").
		Where("ir.is_active = true")
	if start != nil {
		q = q.Where("ir.date >= ?", *start)
	}
	if end != nil {
		q = q.Where("ir.date < ?", *end)
	}

	var rows []dto.TopProductRow
	err := q.Group("ip.sku, ip.name").
		Order("units DESC, revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) IncomeTrend(ctx context.Context, bucket string, start, end *time.Time) ([]dto.TrendPoint, error) {
	// bucket is validated upstream against {day, week, month}; never caller-interpolated.
	q := r.db.WithContext(ctx).
		Table("income_records").
		Select(`TO_CHAR(DATE_TRUNC(?, date), 'YYYY-MM-DD') AS bucket,
		        COUNT(*)         AS slips,
		        SUM(total_income) AS income`, bucket).
		Where("is_active = true")
	if start != nil {
		q = q.Where("date >= ?", *start)
	}
	if end != nil {
		q = q.Where("date < ?", *end)
	}

	var points []dto.TrendPoint
	err := q.Group("1").Order("1 ASC").Scan(&points).Error
	return points, err
}

func (r *reportRepo) DashboardSummary(ctx context.Context) (*dto.DashboardSummary, error) {
	var s dto.DashboardSummary

	type incomeAgg struct {
		Income decimal.Decimal
		Slips  int64
	}

	var today incomeAgg
	if err := r.db.WithContext(ctx).
		Table("income_records").
		Select("COALESCE(SUM(total_income), 0) AS income, COUNT(*) AS slips").
		Where("is_active = true AND DATE(date) = CURRENT_DATE").
		Scan(&today).Error; err != nil {
		return nil, err
	}
	s.TodayIncome, s.TodaySlips = today.Income, today.Slips

	var month incomeAgg
	if err := r.db.WithContext(ctx).
		Table("income_records").
		Select("COALESCE(SUM(total_income), 0) AS income, COUNT(*) AS slips").
		Where("is_active = true AND DATE_TRUNC('month', date) = DATE_TRUNC('month', CURRENT_DATE)").
		Scan(&month).Error; err != nil {
		return nil, err
	}
	s.MonthIncome = month.Income

	if err := r.db.WithContext(ctx).
		Table("items").
		Where("is_active IS DISTINCT FROM false").
		Count(&s.ActiveItems).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Table("items").
		Where("is_active IS DISTINCT FROM false AND quantity <= min_stock_level").
		Count(&s.LowStockItems).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Table("slips").
		Where("status = ?", "Cancelled").
		Count(&s.CancelledSlips).Error; err != nil {
		return nil, err
	}

	return &s, nil
}
