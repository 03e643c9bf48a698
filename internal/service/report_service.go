package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/saadullahkhan123123/saeedautobackend/internal/apierror"
	"github.com/saadullahkhan123123/saeedautobackend/internal/dto"
	"github.com/saadullahkhan123123/saeedautobackend/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	dashboardCacheKey = "cache:dashboard"
	dashboardCacheTTL = 60 * time.Second
)

type ReportService interface {
	IncomeByRange(ctx context.Context, filter dto.DateRangeFilter) (*dto.IncomeListResponse, error)
	TopProducts(ctx context.Context, filter dto.TopProductsFilter) ([]dto.TopProductRow, error)
	IncomeTrend(ctx context.Context, filter dto.TrendFilter) ([]dto.TrendPoint, error)
	Dashboard(ctx context.Context) (*dto.DashboardSummary, error)
}

type reportService struct {
	reports repository.ReportRepository
	income  repository.IncomeRepository
	rdb     *redis.Client
}

func NewReportService(reports repository.ReportRepository, income repository.IncomeRepository, rdb *redis.Client) ReportService {
	return &reportService{reports: reports, income: income, rdb: rdb}
}

func (s *reportService) IncomeByRange(ctx context.Context, filter dto.DateRangeFilter) (*dto.IncomeListResponse, error) {
	start, end, err := parseDateRange(filter)
	if err != nil {
		return nil, err
	}

	rctx, cancel := context.WithTimeout(ctx, readQueryTimeout)
	defer cancel()
	records, err := s.income.ListByDateRange(rctx, start, end, true)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.TotalIncome)
	}
	return &dto.IncomeListResponse{Data: records, TotalIncome: total, Count: len(records)}, nil
}

func (s *reportService) TopProducts(ctx context.Context, filter dto.TopProductsFilter) ([]dto.TopProductRow, error) {
	start, end, err := parseDateRange(filter.DateRangeFilter)
	if err != nil {
		return nil, err
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	rctx, cancel := context.WithTimeout(ctx, readQueryTimeout)
	defer cancel()
	rows, err := s.reports.TopProducts(rctx, start, end, filter.Limit)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return rows, nil
}

func (s *reportService) IncomeTrend(ctx context.Context, filter dto.TrendFilter) ([]dto.TrendPoint, error) {
	start, end, err := parseDateRange(filter.DateRangeFilter)
	if err != nil {
		return nil, err
	}
	bucket := filter.Bucket
	if bucket == "" {
		bucket = "day"
	}

	rctx, cancel := context.WithTimeout(ctx, readQueryTimeout)
	defer cancel()
	points, err := s.reports.IncomeTrend(rctx, bucket, start, end)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return points, nil
}

// Dashboard serves the headline summary cache-aside: Redis hit when fresh,
// recompute and repopulate on miss. Cache failures degrade to a direct read.
func (s *reportService) Dashboard(ctx context.Context) (*dto.DashboardSummary, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, dashboardCacheKey).Result(); err == nil {
			var cached dto.DashboardSummary
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	rctx, cancel := context.WithTimeout(ctx, readQueryTimeout)
	defer cancel()
	summary, err := s.reports.DashboardSummary(rctx)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	if s.rdb != nil {
		if data, err := json.Marshal(summary); err == nil {
			if err := s.rdb.Set(ctx, dashboardCacheKey, data, dashboardCacheTTL).Err(); err != nil {
				log.Debug().Err(err).Msg("dashboard cache set failed")
			}
		}
	}
	return summary, nil
}

// parseDateRange converts YYYY-MM-DD bounds to times; the end bound is
// extended to the end of its day so single-day ranges behave intuitively.
func parseDateRange(filter dto.DateRangeFilter) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if filter.Start != "" {
		t, err := time.Parse("2006-01-02", filter.Start)
		if err != nil {
			return nil, nil, invalidDate("start", filter.Start)
		}
		start = &t
	}
	if filter.End != "" {
		t, err := time.Parse("2006-01-02", filter.End)
		if err != nil {
			return nil, nil, invalidDate("end", filter.End)
		}
		eod := t.Add(24*time.Hour - time.Nanosecond)
		end = &eod
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, invalidDate("start", filter.Start)
	}
	return start, end, nil
}

func invalidDate(field, value string) error {
	return apierror.Validation(fmt.Sprintf("invalid %s date %q, expected YYYY-MM-DD", field, value))
}
