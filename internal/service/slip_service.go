package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/saadullahkhan123123/saeedautobackend/internal/apierror"
	"github.com/saadullahkhan123123/saeedautobackend/internal/dto"
	"github.com/saadullahkhan123123/saeedautobackend/internal/model"
	"github.com/saadullahkhan123123/saeedautobackend/internal/pricing"
	"github.com/saadullahkhan123123/saeedautobackend/internal/repository"
	"github.com/saadullahkhan123123/saeedautobackend/internal/worker"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// readQueryTimeout bounds single reads against the store so a stalled
// database fails fast as DatabaseUnavailable instead of hanging the caller.
const readQueryTimeout = 5 * time.Second

type SlipService interface {
	Create(ctx context.Context, req dto.CreateSlipRequest) (*dto.SlipResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SlipResponse, error)
	List(ctx context.Context, filter dto.SlipFilter) (*dto.SlipListResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*dto.CancelSlipResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateSlipRequest) (*dto.SlipResponse, error)
	Delete(ctx context.Context, id uuid.UUID) (*dto.DeleteSlipResponse, error)
}

type slipService struct {
	slips      repository.SlipRepository
	items      repository.ItemRepository
	income     repository.IncomeRepository
	dispatcher *worker.Dispatcher
}

func NewSlipService(
	slips repository.SlipRepository,
	items repository.ItemRepository,
	income repository.IncomeRepository,
	dispatcher *worker.Dispatcher,
) SlipService {
	return &slipService{
		slips:      slips,
		items:      items,
		income:     income,
		dispatcher: dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Create ────────────────────────────────────────────────────────────────────
// One ACID transaction:
//  1. validate request totals and lines
//  2. resolve each line's item (attribute match, name/SKU fallback)
//  3. verify stock, price the line, decrement stock (guarded)
//  4. insert slip + matching income record
// Any failure aborts everything — no partial decrement, no orphan slip or
// income record.

func (s *slipService) Create(ctx context.Context, req dto.CreateSlipRequest) (*dto.SlipResponse, error) {
	if len(req.Products) == 0 {
		return nil, apierror.Validation("at least one product line is required")
	}
	if err := validateTotals(req.Subtotal, req.TotalAmount); err != nil {
		return nil, err
	}

	var slip model.Slip
	var lowStock []model.Item
	txErr := runTx(ctx, s.slips.DB(), func(tx *gorm.DB) error {
		number, err := s.slips.NextSlipNumber(ctx, tx)
		if err != nil {
			return err
		}

		lines, low, err := s.reserveLinesTx(tx, req.Products)
		if err != nil {
			return err
		}
		lowStock = low

		slip = model.Slip{
			SlipNumber:    number,
			CustomerName:  req.CustomerName,
			CustomerPhone: req.CustomerPhone,
			PaymentMethod: req.PaymentMethod,
			Subtotal:      *req.Subtotal,
			TotalAmount:   *req.TotalAmount,
			Status:        model.StatusPaid,
			Notes:         req.Notes,
			Lines:         lines,
		}
		if err := s.slips.CreateTx(ctx, tx, &slip); err != nil {
			return err
		}

		return s.income.CreateTx(tx, incomeFromSlip(&slip))
	})
	if txErr != nil {
		return nil, mapStoreErr(txErr)
	}

	s.notifyAsync(ctx, &slip, lowStock)
	return slipToResponse(&slip), nil
}

// reserveLinesTx resolves, validates, prices and reserves stock for every
// requested line, in order. The first failing line aborts the caller's
// transaction, leaving earlier decrements to roll back with it. Also returns
// the items that fell to or below their minimum stock level.
func (s *slipService) reserveLinesTx(tx *gorm.DB, products []dto.SlipProductRequest) ([]model.ProductLine, []model.Item, error) {
	lines := make([]model.ProductLine, 0, len(products))
	var lowStock []model.Item

	for _, p := range products {
		item, err := s.resolveRequestTx(tx, p)
		if err != nil {
			return nil, nil, err
		}
		if item.Quantity < p.Quantity {
			return nil, nil, apierror.InsufficientStock(item.DisplayName(), item.Quantity)
		}

		basePrice := item.BasePrice
		if p.BasePrice != nil {
			basePrice = *p.BasePrice
		}
		name := p.RequestedName()
		if name == "" && item.Name != nil {
			name = *item.Name
		}

		quote, err := pricing.PriceLine(pricing.LineInput{
			ProductType:       item.ProductType,
			Attrs:             item.ProductAttrs,
			Name:              name,
			Quantity:          p.Quantity,
			BasePrice:         basePrice,
			ExplicitUnitPrice: p.ExplicitPrice(),
		})
		if err != nil {
			return nil, nil, apierror.Validation(err.Error())
		}

		if err := s.items.AdjustQuantityTx(tx, item.ID, -p.Quantity); err != nil {
			if errors.Is(err, repository.ErrQuantityConflict) {
				return nil, nil, apierror.InsufficientStock(item.DisplayName(), item.Quantity)
			}
			return nil, nil, err
		}

		lines = append(lines, model.ProductLine{
			SKU:            item.SKU,
			Name:           quote.Name,
			ProductType:    item.ProductType,
			ProductAttrs:   item.ProductAttrs,
			Quantity:       p.Quantity,
			BasePrice:      basePrice,
			UnitPrice:      quote.UnitPrice,
			DiscountAmount: quote.DiscountAmount,
			DiscountType:   quote.DiscountType,
			TotalPrice:     quote.TotalPrice,
		})

		if newQty := item.Quantity - p.Quantity; newQty <= item.MinStockLevel {
			alert := *item
			alert.Quantity = newQty
			lowStock = append(lowStock, alert)
		}
	}
	return lines, lowStock, nil
}

// resolveRequestTx matches a requested line to a catalog item: exact attribute
// match for its product type first, then case-insensitive name/SKU fallback.
func (s *slipService) resolveRequestTx(tx *gorm.DB, p dto.SlipProductRequest) (*model.Item, error) {
	attrs := model.ProductAttrs{
		CoverType:    p.CoverType,
		PlateCompany: p.PlateCompany,
		BikeName:     p.BikeName,
		PlateType:    p.PlateType,
		FormCompany:  p.FormCompany,
		FormType:     p.FormType,
		FormVariant:  p.FormVariant,
	}

	item, err := s.items.FindByAttributesTx(tx, p.ProductType, attrs)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	for _, text := range []string{p.RequestedName(), p.SKU} {
		if text == "" {
			continue
		}
		item, err = s.items.FindByNameOrSKUTx(tx, text)
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	display := p.RequestedName()
	if display == "" {
		display = attrs.Label(p.ProductType)
	}
	return nil, apierror.ProductNotFound(display)
}

// ── Cancel ────────────────────────────────────────────────────────────────────
// Terminal and guarded: cancelling an already-cancelled slip fails with
// AlreadyCancelled and performs no mutation. Inventory restoration is
// best-effort per line — an unresolvable line is logged and skipped, never
// blocking the rest of the cancellation.

func (s *slipService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*dto.CancelSlipResponse, error) {
	slip, err := s.loadSlip(ctx, id)
	if err != nil {
		return nil, err
	}
	if slip.Cancelled() {
		return nil, apierror.AlreadyCancelled(cancelledAt(slip))
	}

	var restored int
	var deactivated int64
	txErr := runTx(ctx, s.slips.DB(), func(tx *gorm.DB) error {
		now := time.Now().UTC()
		slip.Status = model.StatusCancelled
		slip.CancelledAt = &now
		if reason != "" {
			slip.Notes = appendNote(slip.Notes, "Cancelled: "+reason)
		}
		if err := s.slips.SaveTx(tx, slip); err != nil {
			return err
		}

		n, err := s.income.DeactivateBySlipTx(tx, slip.ID, slip.SlipNumber, cancellationNote(reason, now))
		if err != nil {
			return err
		}
		deactivated = n

		restored = s.restoreLinesTx(tx, slip.SlipNumber, slip.Lines)
		return nil
	})
	if txErr != nil {
		return nil, mapStoreErr(txErr)
	}

	return &dto.CancelSlipResponse{
		Slip:                   slipToResponse(slip),
		IncomeRecordsUpdated:   deactivated,
		InventoryLinesRestored: restored,
	}, nil
}

// restoreLinesTx returns each line's quantity to inventory, resolving items by
// SKU/name first and attributes as fallback. Resolution failures are warnings,
// not aborts: failing to restore one line must not block restoring the rest.
func (s *slipService) restoreLinesTx(tx *gorm.DB, slipNumber string, lines []model.ProductLine) int {
	restored := 0
	for _, line := range lines {
		item, err := s.resolveLineTx(tx, line)
		if err != nil {
			log.Warn().
				Str("slip_number", slipNumber).
				Str("product", line.Name).
				Msg("could not resolve item for stock restoration, line skipped")
			continue
		}
		if err := s.items.AdjustQuantityTx(tx, item.ID, line.Quantity); err != nil {
			log.Warn().
				Str("slip_number", slipNumber).
				Str("product", line.Name).
				Err(err).
				Msg("stock restoration failed, line skipped")
			continue
		}
		restored++
	}
	return restored
}

// resolveLineTx matches a persisted line back to its item for reversal:
// SKU, then name, then attribute match.
func (s *slipService) resolveLineTx(tx *gorm.DB, line model.ProductLine) (*model.Item, error) {
	for _, text := range []string{line.SKU, line.Name} {
		if text == "" {
			continue
		}
		if item, err := s.items.FindByNameOrSKUTx(tx, text); err == nil {
			return item, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return s.items.FindByAttributesTx(tx, line.ProductType, line.ProductAttrs)
}

// ── Update ────────────────────────────────────────────────────────────────────
// Partial update in one transaction. A products patch restores the old lines'
// stock and re-reserves the new lines with the same strict checks as Create;
// any failure rolls back the restoration too. A status patch to Cancelled runs
// the full cancellation path with the same double-cancel guard as Cancel.

func (s *slipService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateSlipRequest) (*dto.SlipResponse, error) {
	slip, err := s.loadSlip(ctx, id)
	if err != nil {
		return nil, err
	}

	wasCancelled := slip.Cancelled()
	if req.Status != nil && wasCancelled {
		if *req.Status == model.StatusCancelled {
			return nil, apierror.AlreadyCancelled(cancelledAt(slip))
		}
		return nil, apierror.Validation("a cancelled slip cannot change status")
	}
	if req.Products != nil && wasCancelled {
		// The cancelled slip's stock was already restored; touching its lines
		// would double-count inventory.
		return nil, apierror.Validation("cannot change products of a cancelled slip")
	}
	if req.Subtotal != nil && req.Subtotal.IsNegative() {
		return nil, apierror.Validation("subtotal must not be negative")
	}
	if req.TotalAmount != nil && req.TotalAmount.IsNegative() {
		return nil, apierror.Validation("totalAmount must not be negative")
	}

	txErr := runTx(ctx, s.slips.DB(), func(tx *gorm.DB) error {
		productsChanged := req.Products != nil
		if productsChanged {
			// Old stock goes back first; if re-reserving fails below, the
			// transaction abort rolls this restoration back as well.
			s.restoreLinesTx(tx, slip.SlipNumber, slip.Lines)

			lines, _, err := s.reserveLinesTx(tx, *req.Products)
			if err != nil {
				return err
			}
			if err := s.slips.ReplaceLinesTx(tx, slip.ID, lines); err != nil {
				return err
			}
			slip.Lines = lines
			sum := sumLines(lines)
			slip.Subtotal = sum
			slip.TotalAmount = sum
		}

		if req.CustomerName != nil {
			slip.CustomerName = *req.CustomerName
		}
		if req.CustomerPhone != nil {
			slip.CustomerPhone = *req.CustomerPhone
		}
		if req.PaymentMethod != nil {
			slip.PaymentMethod = *req.PaymentMethod
		}
		if req.Notes != nil {
			slip.Notes = *req.Notes
		}
		if req.Subtotal != nil {
			slip.Subtotal = *req.Subtotal
		}
		if req.TotalAmount != nil {
			slip.TotalAmount = *req.TotalAmount
		}

		if req.Status != nil && *req.Status != slip.Status {
			if *req.Status == model.StatusCancelled {
				now := time.Now().UTC()
				slip.Status = model.StatusCancelled
				slip.CancelledAt = &now
				if _, err := s.income.DeactivateBySlipTx(tx, slip.ID, slip.SlipNumber, cancellationNote("cancelled via update", now)); err != nil {
					return err
				}
				s.restoreLinesTx(tx, slip.SlipNumber, slip.Lines)
			} else {
				slip.Status = *req.Status
			}
		}

		if err := s.slips.SaveTx(tx, slip); err != nil {
			return err
		}

		if !slip.Cancelled() {
			return s.syncIncomeTx(tx, slip, productsChanged)
		}
		return nil
	})
	if txErr != nil {
		return nil, mapStoreErr(txErr)
	}

	return slipToResponse(slip), nil
}

// syncIncomeTx realigns the active income mirror with the slip after an
// update. A missing mirror is logged, not fatal: the slip update itself is the
// source of truth and must not be lost over a mirror inconsistency.
func (s *slipService) syncIncomeTx(tx *gorm.DB, slip *model.Slip, productsChanged bool) error {
	rec, err := s.income.FindActiveBySlipTx(tx, slip.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Str("slip_number", slip.SlipNumber).Msg("no active income record to sync for updated slip")
			return nil
		}
		return err
	}

	rec.TotalIncome = slip.TotalAmount
	rec.CustomerName = slip.CustomerName
	rec.PaymentMethod = slip.PaymentMethod
	rec.Notes = slip.Notes
	if err := s.income.SaveTx(tx, rec); err != nil {
		return err
	}
	if productsChanged {
		return s.income.ReplaceProductsTx(tx, rec.ID, incomeProductsFromLines(slip.Lines))
	}
	return nil
}

// ── Delete ────────────────────────────────────────────────────────────────────
// Hard-deletes the slip document, but only after restoring inventory
// (best-effort) and deactivating its income records, all in one transaction.

func (s *slipService) Delete(ctx context.Context, id uuid.UUID) (*dto.DeleteSlipResponse, error) {
	slip, err := s.loadSlip(ctx, id)
	if err != nil {
		return nil, err
	}

	var restored int
	var deactivated int64
	txErr := runTx(ctx, s.slips.DB(), func(tx *gorm.DB) error {
		// A cancelled slip already returned its stock; restoring again here
		// would double-count.
		if !slip.Cancelled() {
			restored = s.restoreLinesTx(tx, slip.SlipNumber, slip.Lines)
		}
		n, err := s.income.DeactivateBySlipTx(tx, slip.ID, slip.SlipNumber, fmt.Sprintf("slip %s deleted", slip.SlipNumber))
		if err != nil {
			return err
		}
		deactivated = n
		return s.slips.DeleteTx(tx, slip.ID)
	})
	if txErr != nil {
		return nil, mapStoreErr(txErr)
	}

	return &dto.DeleteSlipResponse{
		IncomeRecordsDeactivated: deactivated,
		InventoryLinesRestored:   restored,
	}, nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *slipService) Get(ctx context.Context, id uuid.UUID) (*dto.SlipResponse, error) {
	slip, err := s.loadSlip(ctx, id)
	if err != nil {
		return nil, err
	}
	return slipToResponse(slip), nil
}

func (s *slipService) List(ctx context.Context, filter dto.SlipFilter) (*dto.SlipListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	rctx, cancel := context.WithTimeout(ctx, readQueryTimeout)
	defer cancel()
	slips, total, err := s.slips.List(rctx, filter)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	data := make([]dto.SlipResponse, 0, len(slips))
	for i := range slips {
		data = append(data, *slipToResponse(&slips[i]))
	}
	return &dto.SlipListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// loadSlip reads a slip under the bounded read timeout.
func (s *slipService) loadSlip(ctx context.Context, id uuid.UUID) (*model.Slip, error) {
	rctx, cancel := context.WithTimeout(ctx, readQueryTimeout)
	defer cancel()

	slip, err := s.slips.FindByID(rctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("slip")
		}
		return nil, mapStoreErr(err)
	}
	return slip, nil
}

// notifyAsync hands side effects to the worker pool after commit: receipt
// pre-generation and low-stock alerts. Fire-and-forget — never part of the
// workflow transaction.
func (s *slipService) notifyAsync(ctx context.Context, slip *model.Slip, lowStock []model.Item) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.EnqueueReceipt(ctx, worker.ReceiptJobPayload{SlipID: slip.ID.String()}); err != nil {
		log.Warn().Err(err).Str("slip_number", slip.SlipNumber).Msg("failed to enqueue receipt job")
	}
	for _, item := range lowStock {
		payload := worker.LowStockJobPayload{
			ItemID:   item.ID.String(),
			SKU:      item.SKU,
			Name:     item.DisplayName(),
			Quantity: item.Quantity,
			MinLevel: item.MinStockLevel,
		}
		if err := s.dispatcher.EnqueueLowStockAlert(ctx, payload); err != nil {
			log.Warn().Err(err).Str("sku", item.SKU).Msg("failed to enqueue low-stock alert")
		}
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func validateTotals(subtotal, total *decimal.Decimal) error {
	if subtotal == nil || total == nil {
		return apierror.Validation("subtotal and totalAmount are required")
	}
	if subtotal.IsNegative() || total.IsNegative() {
		return apierror.Validation("subtotal and totalAmount must not be negative")
	}
	return nil
}

// mapStoreErr normalizes transaction/store failures into the API taxonomy.
// Workflow errors pass through; timeouts and connection-level driver failures
// surface as retryable DatabaseUnavailable; anything else stays opaque (500 at
// the handler).
func mapStoreErr(err error) error {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apierror.Unavailable("query timed out")
	}
	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) {
		return apierror.Unavailable("database unreachable")
	}
	return err
}

func cancelledAt(slip *model.Slip) time.Time {
	if slip.CancelledAt != nil {
		return *slip.CancelledAt
	}
	return time.Now().UTC()
}

func cancellationNote(reason string, at time.Time) string {
	note := "cancelled " + at.Format(time.RFC3339)
	if reason != "" {
		note += ": " + reason
	}
	return note
}

func appendNote(notes, extra string) string {
	if notes == "" {
		return extra
	}
	return notes + " | " + extra
}

func sumLines(lines []model.ProductLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.TotalPrice)
	}
	return sum
}

func incomeFromSlip(slip *model.Slip) *model.IncomeRecord {
	date := slip.CreatedAt
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return &model.IncomeRecord{
		Date:          date,
		TotalIncome:   slip.TotalAmount,
		SlipID:        slip.ID,
		SlipNumber:    slip.SlipNumber,
		CustomerName:  slip.CustomerName,
		PaymentMethod: slip.PaymentMethod,
		Notes:         slip.Notes,
		IsActive:      true,
		ProductsSold:  incomeProductsFromLines(slip.Lines),
	}
}

func incomeProductsFromLines(lines []model.ProductLine) []model.IncomeProduct {
	products := make([]model.IncomeProduct, 0, len(lines))
	for _, l := range lines {
		products = append(products, model.IncomeProduct{
			SKU:            l.SKU,
			Name:           l.Name,
			ProductType:    l.ProductType,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			DiscountAmount: l.DiscountAmount,
			DiscountType:   l.DiscountType,
			TotalPrice:     l.TotalPrice,
		})
	}
	return products
}

func slipToResponse(s *model.Slip) *dto.SlipResponse {
	products := make([]dto.ProductLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		products = append(products, dto.ProductLineResponse{
			SKU:            l.SKU,
			ProductName:    l.Name,
			ProductType:    l.ProductType,
			Quantity:       l.Quantity,
			BasePrice:      l.BasePrice,
			UnitPrice:      l.UnitPrice,
			DiscountAmount: l.DiscountAmount,
			DiscountType:   l.DiscountType,
			TotalPrice:     l.TotalPrice,
		})
	}

	var cancelled *string
	if s.CancelledAt != nil {
		v := s.CancelledAt.UTC().Format(time.RFC3339)
		cancelled = &v
	}

	return &dto.SlipResponse{
		ID:            s.ID.String(),
		SlipNumber:    s.SlipNumber,
		CustomerName:  s.CustomerName,
		CustomerPhone: s.CustomerPhone,
		PaymentMethod: s.PaymentMethod,
		Products:      products,
		Subtotal:      s.Subtotal,
		TotalAmount:   s.TotalAmount,
		Status:        s.Status,
		CancelledAt:   cancelled,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
