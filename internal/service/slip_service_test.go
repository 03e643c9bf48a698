package service_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/saadullahkhan123123/saeedautobackend/internal/apierror"
	"github.com/saadullahkhan123123/saeedautobackend/internal/dto"
	"github.com/saadullahkhan123123/saeedautobackend/internal/model"
	"github.com/saadullahkhan123123/saeedautobackend/internal/repository"
	"github.com/saadullahkhan123123/saeedautobackend/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubItemRepo is an in-memory ItemRepository with the same quantity guard
// semantics as the real one.
type stubItemRepo struct {
	items map[uuid.UUID]*model.Item
}

func newStubItemRepo() *stubItemRepo {
	return &stubItemRepo{items: make(map[uuid.UUID]*model.Item)}
}

func (r *stubItemRepo) Create(_ context.Context, item *model.Item) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items[item.ID] = item
	return nil
}

func (r *stubItemRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (r *stubItemRepo) FindBySKU(_ context.Context, sku string) (*model.Item, error) {
	for _, item := range r.items {
		if strings.EqualFold(item.SKU, sku) {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubItemRepo) List(_ context.Context, _ dto.ItemFilter) ([]model.Item, int64, error) {
	out := make([]model.Item, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, *item)
	}
	return out, int64(len(out)), nil
}

func (r *stubItemRepo) ListLowStock(_ context.Context) ([]model.Item, error) {
	var out []model.Item
	for _, item := range r.items {
		if item.Active() && item.Quantity <= item.MinStockLevel {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *stubItemRepo) Update(_ context.Context, item *model.Item) error {
	r.items[item.ID] = item
	return nil
}

func (r *stubItemRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	item, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inactive := false
	item.IsActive = &inactive
	return nil
}

func (r *stubItemRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	item, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	active := true
	item.IsActive = &active
	return nil
}

func (r *stubItemRepo) WipeAll(_ context.Context) (int64, error) {
	n := int64(len(r.items))
	r.items = make(map[uuid.UUID]*model.Item)
	return n, nil
}

func (r *stubItemRepo) FindByAttributesTx(_ *gorm.DB, productType string, attrs model.ProductAttrs) (*model.Item, error) {
	want := map[string]*string{
		"cover_type":    attrs.CoverType,
		"plate_company": attrs.PlateCompany,
		"bike_name":     attrs.BikeName,
		"plate_type":    attrs.PlateType,
		"form_company":  attrs.FormCompany,
		"form_type":     attrs.FormType,
		"form_variant":  attrs.FormVariant,
	}
	any := false
	for _, v := range want {
		if v != nil && *v != "" {
			any = true
		}
	}
	if !any {
		return nil, gorm.ErrRecordNotFound
	}

	for _, item := range r.items {
		if !item.Active() || item.ProductType != productType {
			continue
		}
		have := map[string]*string{
			"cover_type":    item.CoverType,
			"plate_company": item.PlateCompany,
			"bike_name":     item.BikeName,
			"plate_type":    item.PlateType,
			"form_company":  item.FormCompany,
			"form_type":     item.FormType,
			"form_variant":  item.FormVariant,
		}
		match := true
		for k, v := range want {
			if v == nil || *v == "" {
				continue
			}
			if have[k] == nil || !strings.EqualFold(*have[k], *v) {
				match = false
				break
			}
		}
		if match {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubItemRepo) FindByNameOrSKUTx(_ *gorm.DB, text string) (*model.Item, error) {
	for _, item := range r.items {
		if !item.Active() {
			continue
		}
		if strings.EqualFold(item.SKU, text) {
			return item, nil
		}
		if item.Name != nil && strings.EqualFold(*item.Name, text) {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubItemRepo) AdjustQuantityTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	item, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if item.Quantity+delta < 0 {
		return repository.ErrQuantityConflict
	}
	item.Quantity += delta
	return nil
}

func (r *stubItemRepo) DB() *gorm.DB { return nil }

var _ repository.ItemRepository = (*stubItemRepo)(nil)

// stubSlipRepo is an in-memory SlipRepository.
type stubSlipRepo struct {
	slips   map[uuid.UUID]*model.Slip
	seq     int
	findErr error
}

func newStubSlipRepo() *stubSlipRepo {
	return &stubSlipRepo{slips: make(map[uuid.UUID]*model.Slip)}
}

func (r *stubSlipRepo) CreateTx(_ context.Context, _ *gorm.DB, s *model.Slip) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	cp := *s
	r.slips[s.ID] = &cp
	return nil
}

func (r *stubSlipRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Slip, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	s, ok := r.slips[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSlipRepo) List(_ context.Context, _ dto.SlipFilter) ([]model.Slip, int64, error) {
	out := make([]model.Slip, 0, len(r.slips))
	for _, s := range r.slips {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSlipRepo) SaveTx(_ *gorm.DB, s *model.Slip) error {
	stored, ok := r.slips[s.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	lines := stored.Lines
	cp := *s
	cp.Lines = lines
	r.slips[s.ID] = &cp
	return nil
}

func (r *stubSlipRepo) ReplaceLinesTx(_ *gorm.DB, slipID uuid.UUID, lines []model.ProductLine) error {
	s, ok := r.slips[slipID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Lines = lines
	return nil
}

func (r *stubSlipRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.slips, id)
	return nil
}

func (r *stubSlipRepo) NextSlipNumber(_ context.Context, _ *gorm.DB) (string, error) {
	r.seq++
	return fmt.Sprintf("SLP-%s-%04d", time.Now().UTC().Format("20060102"), r.seq), nil
}

func (r *stubSlipRepo) DB() *gorm.DB { return nil }

var _ repository.SlipRepository = (*stubSlipRepo)(nil)

// stubIncomeRepo is an in-memory IncomeRepository.
type stubIncomeRepo struct {
	records map[uuid.UUID]*model.IncomeRecord
}

func newStubIncomeRepo() *stubIncomeRepo {
	return &stubIncomeRepo{records: make(map[uuid.UUID]*model.IncomeRecord)}
}

func (r *stubIncomeRepo) CreateTx(_ *gorm.DB, rec *model.IncomeRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	r.records[rec.ID] = rec
	return nil
}

func (r *stubIncomeRepo) FindActiveBySlipTx(_ *gorm.DB, slipID uuid.UUID) (*model.IncomeRecord, error) {
	for _, rec := range r.records {
		if rec.SlipID == slipID && rec.IsActive {
			return rec, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubIncomeRepo) SaveTx(_ *gorm.DB, rec *model.IncomeRecord) error {
	r.records[rec.ID] = rec
	return nil
}

func (r *stubIncomeRepo) ReplaceProductsTx(_ *gorm.DB, incomeID uuid.UUID, products []model.IncomeProduct) error {
	rec, ok := r.records[incomeID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rec.ProductsSold = products
	return nil
}

func (r *stubIncomeRepo) DeactivateBySlipTx(_ *gorm.DB, slipID uuid.UUID, slipNumber, note string) (int64, error) {
	var n int64
	for _, rec := range r.records {
		if (rec.SlipID == slipID || rec.SlipNumber == slipNumber) && rec.IsActive {
			rec.IsActive = false
			if rec.Notes == "" {
				rec.Notes = note
			} else {
				rec.Notes += " | " + note
			}
			n++
		}
	}
	return n, nil
}

func (r *stubIncomeRepo) ListByDateRange(_ context.Context, start, end *time.Time, activeOnly bool) ([]model.IncomeRecord, error) {
	var out []model.IncomeRecord
	for _, rec := range r.records {
		if activeOnly && !rec.IsActive {
			continue
		}
		if start != nil && rec.Date.Before(*start) {
			continue
		}
		if end != nil && rec.Date.After(*end) {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (r *stubIncomeRepo) DB() *gorm.DB { return nil }

var _ repository.IncomeRepository = (*stubIncomeRepo)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

func str(s string) *string { return &s }

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func decP(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func buildSlipSvc() (service.SlipService, *stubSlipRepo, *stubItemRepo, *stubIncomeRepo) {
	items := newStubItemRepo()
	slips := newStubSlipRepo()
	income := newStubIncomeRepo()
	svc := service.NewSlipService(slips, items, income, nil)
	return svc, slips, items, income
}

func seedCover(items *stubItemRepo, sku, coverType string, qty int, price float64) *model.Item {
	item := &model.Item{
		ID:           uuid.New(),
		SKU:          sku,
		ProductType:  model.TypeCover,
		ProductAttrs: model.ProductAttrs{CoverType: str(coverType)},
		Quantity:     qty,
		Price:        dec(price),
		BasePrice:    dec(price),
		MinStockLevel: 5,
	}
	items.items[item.ID] = item
	return item
}

func assertCode(t *testing.T, err error, code apierror.Code) {
	t.Helper()
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, code, apiErr.Code)
}

func coverRequest(coverType string, qty int) dto.SlipProductRequest {
	return dto.SlipProductRequest{
		ProductType: model.TypeCover,
		CoverType:   str(coverType),
		Quantity:    qty,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────

func TestCreateSlip_BulkDiscount(t *testing.T) {
	svc, _, items, income := buildSlipSvc()
	item := seedCover(items, "COV-AST001", "Aster Cover", 120, 100)

	resp, err := svc.Create(context.Background(), dto.CreateSlipRequest{
		Subtotal:    decP(900),
		TotalAmount: decP(900),
		Products:    []dto.SlipProductRequest{coverRequest("Aster Cover", 10)},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.SlipNumber, "SLP-"))
	assert.Equal(t, model.StatusPaid, resp.Status)
	require.Len(t, resp.Products, 1)

	line := resp.Products[0]
	assert.Equal(t, "90", line.UnitPrice.String())
	assert.Equal(t, model.DiscountBulk, line.DiscountType)
	assert.Equal(t, "100", line.DiscountAmount.String())
	assert.Equal(t, "900", line.TotalPrice.String())
	assert.Equal(t, "Cover - Aster Cover", line.ProductName)

	// Stock decremented
	assert.Equal(t, 110, items.items[item.ID].Quantity)

	// Exactly one active income record mirroring the slip
	require.Len(t, income.records, 1)
	for _, rec := range income.records {
		assert.True(t, rec.IsActive)
		assert.Equal(t, resp.SlipNumber, rec.SlipNumber)
		assert.Equal(t, "900", rec.TotalIncome.String())
		require.Len(t, rec.ProductsSold, 1)
		assert.Equal(t, item.SKU, rec.ProductsSold[0].SKU)
	}
}

func TestCreateSlip_NoBulkBelowThreshold(t *testing.T) {
	svc, _, items, _ := buildSlipSvc()
	seedCover(items, "COV-AST002", "Aster Cover", 50, 100)

	resp, err := svc.Create(context.Background(), dto.CreateSlipRequest{
		Subtotal:    decP(900),
		TotalAmount: decP(900),
		Products:    []dto.SlipProductRequest{coverRequest("Aster Cover", 9)},
	})
	require.NoError(t, err)

	line := resp.Products[0]
	assert.Equal(t, "100", line.UnitPrice.String())
	assert.Equal(t, model.DiscountNone, line.DiscountType)
	assert.Equal(t, "900", line.TotalPrice.String())
}

func TestCreateSlip_ManualDiscount(t *testing.T) {
	svc, _, items, _ := buildSlipSvc()
	seedCover(items, "COV-CAL001", "Calendar Cover", 30, 100)

	req := coverRequest("Calendar Cover", 2)
	req.UnitPrice = decP(80)

	resp, err := svc.Create(context.Background(), dto.CreateSlipRequest{
		Subtotal:    decP(160),
		TotalAmount: decP(160),
		Products:    []dto.SlipProductRequest{req},
	})
	require.NoError(t, err)

	line := resp.Products[0]
	assert.Equal(t, "80", line.UnitPrice.String())
	assert.Equal(t, model.DiscountManual, line.DiscountType)
	assert.Equal(t, "40", line.DiscountAmount.String())
	assert.Equal(t, "160", line.TotalPrice.String())
}

func TestCreateSlip_NameFallbackResolution(t *testing.T) {
	svc, _, items, _ := buildSlipSvc()
	item := seedCover(items, "COV-NAMED1", "Aster Cover", 20, 100)
	name := "Premium Aster"
	item.Name = &name

	resp, err := svc.Create(context.Background(), dto.CreateSlipRequest{
		Subtotal:    decP(100),
		TotalAmount: decP(100),
		Products: []dto.SlipProductRequest{{
			ProductName: "premium aster", // different case, no attrs
			ProductType: model.TypeCover,
			Quantity:    1,
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 19, items.items[item.ID].Quantity)
	assert.Equal(t, item.SKU, resp.Products[0].SKU)
}

func TestCreateSlip_ProductNotFound(t *testing.T) {
	svc, slips, items, income := buildSlipSvc()
	seedCover(items, "COV-AST003", "Aster Cover", 20, 100)

	_, err := svc.Create(context.Background(), dto.CreateSlipRequest{
		Subtotal:    decP(100),
		TotalAmount: decP(100),
		Products:    []dto.SlipProductRequest{coverRequest("Velvet Cover", 1)},
	})
	assertCode(t, err, apierror.CodeProductNotFound)
	assert.Empty(t, slips.slips)
	assert.Empty(t, income.records)
}

func TestCreateSlip_InsufficientStock(t *testing.T) {
	svc, slips, items, income := buildSlipSvc()
	item := seedCover(items, "COV-LOW001", "Aster Cover", 3, 100)

	_, err := svc.Create(context.Background(), dto.CreateSlipRequest{
		Subtotal:    decP(500),
		TotalAmount: decP(500),
		Products:    []dto.SlipProductRequest{coverRequest("Aster Cover", 5)},
	})
	assertCode(t, err, apierror.CodeInsufficientStock)

	// Nothing written, stock untouched
	assert.Empty(t, slips.slips)
	assert.Empty(t, income.records)
	assert.Equal(t, 3, items.items[item.ID].Quantity)
}

func TestCreateSlip_SecondLineFails_NoDocumentsWritten(t *testing.T) {
	svc, slips, items, income := buildSlipSvc()
	seedCover(items, "COV-OK0001", "Aster Cover", 100, 100)
	seedCover(items, "COV-LOW002", "Calendar Cover", 1, 100)

	_, err := svc.Create(context.Background(), dto.CreateSlipRequest{
		Subtotal:    decP(1000),
		TotalAmount: decP(1000),
		Products: []dto.SlipProductRequest{
			coverRequest("Aster Cover", 5),
			coverRequest("Calendar Cover", 10),
		},
	})
	assertCode(t, err, apierror.CodeInsufficientStock)
	assert.Empty(t, slips.slips)
	assert.Empty(t, income.records)
}

func TestCreateSlip_MissingTotals(t *testing.T) {
	svc, _, items, _ := buildSlipSvc()
	seedCover(items, "COV-AST004", "Aster Cover", 20, 100)

	_, err := svc.Create(context.Background(), dto.CreateSlipRequest{
		Products: []dto.SlipProductRequest{coverRequest("Aster Cover", 1)},
	})
	assertCode(t, err, apierror.CodeValidation)
}

func TestCreateSlip_NoProducts(t *testing.T) {
	svc, _, _, _ := buildSlipSvc()
	_, err := svc.Create(context.Background(), dto.CreateSlipRequest{
		Subtotal:    decP(0),
		TotalAmount: decP(0),
	})
	assertCode(t, err, apierror.CodeValidation)
}

// ── Cancel ────────────────────────────────────────────────────────────────────

func TestCancelSlip_RestoresStockAndDeactivatesIncome(t *testing.T) {
	svc, slips, items, income := buildSlipSvc()
	item := seedCover(items, "COV-AST005", "Aster Cover", 50, 100)

	created, err := svc.Create(context.Background(), dto.CreateSlipRequest{
		Subtotal:    decP(300),
		TotalAmount: decP(300),
		Products:    []dto.SlipProductRequest{coverRequest("Aster Cover", 3)},
	})
	require.NoError(t, err)
	require.Equal(t, 47, items.items[item.ID].Quantity)

	resp, err := svc.Cancel(context.Background(), uuid.MustParse(created.ID), "customer returned")
	require.NoError(t, err)

	assert.Equal(t, model.StatusCancelled, resp.Slip.Status)
	assert.NotNil(t, resp.Slip.CancelledAt)
	assert.Equal(t, int64(1), resp.IncomeRecordsUpdated)
	assert.Equal(t, 1, resp.InventoryLinesRestored)
	assert.Equal(t, 50, items.items[item.ID].Quantity)

	stored, err := slips.FindByID(context.Background(), uuid.MustParse(created.ID))
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, stored.Status)
	assert.Contains(t, stored.Notes, "customer returned")

	for _, rec := range income.records {
		assert.False(t, rec.IsActive)
	}
}

func TestCancelSlip_Twice_AlreadyCancelled(t *testing.T) {
	svc, _, items, _ := buildSlipSvc()
	item := seedCover(items, "COV-AST006", "Aster Cover", 50, 100)

	created, err := svc.Create(context.Background(), dto.CreateSlipRequest{
		Subtotal:    decP(200),
		TotalAmount: decP(200),
		Products:    []dto.SlipProductRequest{coverRequest("Aster Cover", 2)},
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), uuid.MustParse(created.ID), "")
	require.NoError(t, err)
	require.Equal(t, 50, items.items[item.ID].Quantity)

	_, err = svc.Cancel(context.Background(), uuid.MustParse(created.ID), "")
	assertCode(t, err, apierror.CodeAlreadyCancelled)

	// No double restoration
	assert.Equal(t, 50, items.items[item.ID].Quantity)
}

func TestCancelSlip_UnresolvableLine_BestEffort(t *testing.T) {
	svc, slips, _, income := buildSlipSvc()

	// A slip whose line no longer matches any catalog item.
	slip := &model.Slip{
		ID:          uuid.New(),
		SlipNumber:  "SLP-20240101-0001",
		Subtotal:    dec(100),
		TotalAmount: dec(100),
		Status:      model.StatusPaid,
		CreatedAt:   time.Now().UTC(),
		Lines: []model.ProductLine{{
			SKU:         "GONE-001",
			Name:        "Deleted Cover",
			ProductType: model.TypeCover,
			Quantity:    2,
			UnitPrice:   dec(50),
			TotalPrice:  dec(100),
		}},
	}
	slips.slips[slip.ID] = slip
	income.records[uuid.New()] = &model.IncomeRecord{
		ID: uuid.New(), SlipID: slip.ID, SlipNumber: slip.SlipNumber,
		TotalIncome: dec(100), IsActive: true, Date: slip.CreatedAt,
	}

	resp, err := svc.Cancel(context.Background(), slip.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 0, resp.InventoryLinesRestored)
	assert.Equal(t, int64(1), resp.IncomeRecordsUpdated)
	assert.Equal(t, model.StatusCancelled, resp.Slip.Status)
}

func TestCancelSlip_NotFound(t *testing.T) {
	svc, _, _, _ := buildSlipSvc()
	_, err := svc.Cancel(context.Background(), uuid.New(), "")
	assertCode(t, err, apierror.CodeNotFound)
}

// ── Update ────────────────────────────────────────────────────────────────────

func TestUpdateSlip_ReplaceProducts(t *testing.T) {
	svc, slips, items, income := buildSlipSvc()
	aster := seedCover(items, "COV-AST007", "Aster Cover", 50, 100)
	calendar := seedCover(items, "COV-CAL002", "Calendar Cover", 40, 110)

	created, err := svc.Create(context.Background(), dto.CreateSlipRequest{
		Subtotal:    decP(200),
		TotalAmount: decP(200),
		Products:    []dto.SlipProductRequest{coverRequest("Aster Cover", 2)},
	})
	require.NoError(t, err)
	require.Equal(t, 48, items.items[aster.ID].Quantity)

	newProducts := []dto.SlipProductRequest{coverRequest("Calendar Cover", 5)}
	resp, err := svc.Update(context.Background(), uuid.MustParse(created.ID), dto.UpdateSlipRequest{
		Products: &newProducts,
	})
	require.NoError(t, err)

	// Old stock back, new stock reserved
	assert.Equal(t, 50, items.items[aster.ID].Quantity)
	assert.Equal(t, 35, items.items[calendar.ID].Quantity)

	// Totals recomputed from the new lines: 5 × 110
	assert.Equal(t, "550", resp.TotalAmount.String())
	require.Len(t, resp.Products, 1)
	assert.Equal(t, calendar.SKU, resp.Products[0].SKU)

	// Income mirror realigned
	rec, err := income.FindActiveBySlipTx(nil, uuid.MustParse(created.ID))
	require.NoError(t, err)
	assert.Equal(t, "550", rec.TotalIncome.String())
	require.Len(t, rec.ProductsSold, 1)
	assert.Equal(t, calendar.SKU, rec.ProductsSold[0].SKU)

	stored, err := slips.FindByID(context.Background(), uuid.MustParse(created.ID))
	require.NoError(t, err)
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, calendar.SKU, stored.Lines[0].SKU)
}

func TestUpdateSlip_ReReserveFails(t *testing.T) {
	svc, slips, items, _ := buildSlipSvc()
	seedCover(items, "COV-AST008", "Aster Cover", 50, 100)
	seedCover(items, "COV-CAL003", "Calendar Cover", 2, 110)

	created, err := svc.Create(context.Background(), dto.CreateSlipRequest{
		Subtotal:    decP(200),
		TotalAmount: decP(200),
		Products:    []dto.SlipProductRequest{coverRequest("Aster Cover", 2)},
	})
	require.NoError(t, err)

	newProducts := []dto.SlipProductRequest{coverRequest("Calendar Cover", 10)}
	_, err = svc.Update(context.Background(), uuid.MustParse(created.ID), dto.UpdateSlipRequest{
		Products: &newProducts,
	})
	assertCode(t, err, apierror.CodeInsufficientStock)

	// Slip document unchanged
	stored, err := slips.FindByID(context.Background(), uuid.MustParse(created.ID))
	require.NoError(t, err)
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, "COV-AST008", stored.Lines[0].SKU)
}

func TestUpdateSlip_CancelViaStatus(t *testing.T) {
	svc, _, items, income := buildSlipSvc()
	item := seedCover(items, "COV-AST009", "Aster Cover", 30, 100)

	created, err := svc.Create(context.Background(), dto.CreateSlipRequest{
		Subtotal:    decP(400),
		TotalAmount: decP(400),
		Products:    []dto.SlipProductRequest{coverRequest("Aster Cover", 4)},
	})
	require.NoError(t, err)
	require.Equal(t, 26, items.items[item.ID].Quantity)

	cancelled := model.StatusCancelled
	resp, err := svc.Update(context.Background(), uuid.MustParse(created.ID), dto.UpdateSlipRequest{
		Status: &cancelled,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, resp.Status)
	assert.NotNil(t, resp.CancelledAt)
	assert.Equal(t, 30, items.items[item.ID].Quantity)

	for _, rec := range income.records {
		assert.False(t, rec.IsActive)
	}

	// Second cancellation via update is guarded too
	_, err = svc.Update(context.Background(), uuid.MustParse(created.ID), dto.UpdateSlipRequest{
		Status: &cancelled,
	})
	assertCode(t, err, apierror.CodeAlreadyCancelled)
}

func TestUpdateSlip_CancelledProductsRejected(t *testing.T) {
	svc, _, items, _ := buildSlipSvc()
	seedCover(items, "COV-AST010", "Aster Cover", 30, 100)

	created, err := svc.Create(context.Background(), dto.CreateSlipRequest{
		Subtotal:    decP(100),
		TotalAmount: decP(100),
		Products:    []dto.SlipProductRequest{coverRequest("Aster Cover", 1)},
	})
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), uuid.MustParse(created.ID), "")
	require.NoError(t, err)

	newProducts := []dto.SlipProductRequest{coverRequest("Aster Cover", 2)}
	_, err = svc.Update(context.Background(), uuid.MustParse(created.ID), dto.UpdateSlipRequest{
		Products: &newProducts,
	})
	assertCode(t, err, apierror.CodeValidation)
}

func TestUpdateSlip_CustomerFieldsSyncIncome(t *testing.T) {
	svc, _, items, income := buildSlipSvc()
	seedCover(items, "COV-AST011", "Aster Cover", 30, 100)

	created, err := svc.Create(context.Background(), dto.CreateSlipRequest{
		Subtotal:    decP(100),
		TotalAmount: decP(100),
		Products:    []dto.SlipProductRequest{coverRequest("Aster Cover", 1)},
	})
	require.NoError(t, err)

	name := "Imran"
	method := "card"
	resp, err := svc.Update(context.Background(), uuid.MustParse(created.ID), dto.UpdateSlipRequest{
		CustomerName:  &name,
		PaymentMethod: &method,
	})
	require.NoError(t, err)
	assert.Equal(t, "Imran", resp.CustomerName)

	rec, err := income.FindActiveBySlipTx(nil, uuid.MustParse(created.ID))
	require.NoError(t, err)
	assert.Equal(t, "Imran", rec.CustomerName)
	assert.Equal(t, "card", rec.PaymentMethod)
}

// ── Delete ────────────────────────────────────────────────────────────────────

func TestDeleteSlip_RestoresAndDeactivates(t *testing.T) {
	svc, slips, items, income := buildSlipSvc()
	item := seedCover(items, "COV-AST012", "Aster Cover", 40, 100)

	created, err := svc.Create(context.Background(), dto.CreateSlipRequest{
		Subtotal:    decP(300),
		TotalAmount: decP(300),
		Products:    []dto.SlipProductRequest{coverRequest("Aster Cover", 3)},
	})
	require.NoError(t, err)
	require.Equal(t, 37, items.items[item.ID].Quantity)

	resp, err := svc.Delete(context.Background(), uuid.MustParse(created.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.IncomeRecordsDeactivated)
	assert.Equal(t, 1, resp.InventoryLinesRestored)
	assert.Equal(t, 40, items.items[item.ID].Quantity)

	_, err = slips.FindByID(context.Background(), uuid.MustParse(created.ID))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	for _, rec := range income.records {
		assert.False(t, rec.IsActive)
	}
}

func TestDeleteSlip_TwoLinesRestoredIndependently(t *testing.T) {
	svc, _, items, income := buildSlipSvc()
	aster := seedCover(items, "COV-AST015", "Aster Cover", 20, 100)
	calendar := seedCover(items, "COV-CAL004", "Calendar Cover", 20, 110)

	created, err := svc.Create(context.Background(), dto.CreateSlipRequest{
		Subtotal:    decP(850),
		TotalAmount: decP(850),
		Products: []dto.SlipProductRequest{
			coverRequest("Aster Cover", 3),
			coverRequest("Calendar Cover", 5),
		},
	})
	require.NoError(t, err)
	require.Equal(t, 17, items.items[aster.ID].Quantity)
	require.Equal(t, 15, items.items[calendar.ID].Quantity)

	resp, err := svc.Delete(context.Background(), uuid.MustParse(created.ID))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.InventoryLinesRestored)
	assert.Equal(t, int64(1), resp.IncomeRecordsDeactivated)
	assert.Equal(t, 20, items.items[aster.ID].Quantity)
	assert.Equal(t, 20, items.items[calendar.ID].Quantity)

	for _, rec := range income.records {
		assert.False(t, rec.IsActive)
	}
}

func TestDeleteSlip_CancelledNoDoubleRestore(t *testing.T) {
	svc, _, items, _ := buildSlipSvc()
	item := seedCover(items, "COV-AST013", "Aster Cover", 40, 100)

	created, err := svc.Create(context.Background(), dto.CreateSlipRequest{
		Subtotal:    decP(200),
		TotalAmount: decP(200),
		Products:    []dto.SlipProductRequest{coverRequest("Aster Cover", 2)},
	})
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), uuid.MustParse(created.ID), "")
	require.NoError(t, err)
	require.Equal(t, 40, items.items[item.ID].Quantity)

	resp, err := svc.Delete(context.Background(), uuid.MustParse(created.ID))
	require.NoError(t, err)
	assert.Equal(t, 0, resp.InventoryLinesRestored)
	assert.Equal(t, 40, items.items[item.ID].Quantity)
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func TestGetSlip_ConnectionFailureIsRetryable(t *testing.T) {
	svc, slips, _, _ := buildSlipSvc()
	slips.findErr = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	_, err := svc.Get(context.Background(), uuid.New())
	assertCode(t, err, apierror.CodeDatabaseUnavailable)
}

func TestGetSlip_NotFound(t *testing.T) {
	svc, _, _, _ := buildSlipSvc()
	_, err := svc.Get(context.Background(), uuid.New())
	assertCode(t, err, apierror.CodeNotFound)
}

func TestListSlips(t *testing.T) {
	svc, _, items, _ := buildSlipSvc()
	seedCover(items, "COV-AST014", "Aster Cover", 100, 100)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), dto.CreateSlipRequest{
			Subtotal:    decP(100),
			TotalAmount: decP(100),
			Products:    []dto.SlipProductRequest{coverRequest("Aster Cover", 1)},
		})
		require.NoError(t, err)
	}

	resp, err := svc.List(context.Background(), dto.SlipFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	assert.Len(t, resp.Data, 3)
}
