package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/saadullahkhan123123/saeedautobackend/internal/apierror"
	"github.com/saadullahkhan123123/saeedautobackend/internal/dto"
	"github.com/saadullahkhan123123/saeedautobackend/internal/model"
	"github.com/saadullahkhan123123/saeedautobackend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ItemService interface {
	Create(ctx context.Context, req dto.CreateItemRequest) (*model.Item, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Item, error)
	List(ctx context.Context, filter dto.ItemFilter) (*dto.ItemListResponse, error)
	ListLowStock(ctx context.Context) ([]model.Item, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateItemRequest) (*model.Item, error)
	AdjustQuantity(ctx context.Context, id uuid.UUID, req dto.AdjustQuantityRequest) (*model.Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) (*model.Item, error)
	Wipe(ctx context.Context) (*dto.WipeItemsResponse, error)
}

type itemService struct {
	items repository.ItemRepository
}

func NewItemService(items repository.ItemRepository) ItemService {
	return &itemService{items: items}
}

func (s *itemService) Create(ctx context.Context, req dto.CreateItemRequest) (*model.Item, error) {
	attrs := req.Attrs()
	if err := attrs.Validate(req.ProductType); err != nil {
		return nil, apierror.Validation(err.Error())
	}
	if req.Price == nil || req.Price.IsNegative() {
		return nil, apierror.Validation("price is required and must not be negative")
	}
	if req.Quantity < 0 {
		return nil, apierror.Validation("quantity must not be negative")
	}

	sku := normalizeSKU(req.SKU)
	if sku == "" {
		sku = generateSKU(req.ProductType)
	} else if existing, err := s.items.FindBySKU(ctx, sku); err == nil && existing != nil {
		return nil, apierror.Validation(fmt.Sprintf("sku %q already exists", sku))
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, mapStoreErr(err)
	}

	// Attributes identify an item to the sales workflow; a second active item
	// with the same shape would make line resolution ambiguous. Restocking goes
	// through the quantity-adjust operation instead.
	if existing, err := s.items.FindByAttributesTx(s.items.DB(), req.ProductType, attrs); err == nil && existing != nil {
		return nil, apierror.Validation(fmt.Sprintf("an item with these attributes already exists (sku %s)", existing.SKU))
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, mapStoreErr(err)
	}

	basePrice := *req.Price
	if req.BasePrice != nil {
		basePrice = *req.BasePrice
	}

	item := &model.Item{
		SKU:          sku,
		ProductType:  req.ProductType,
		ProductAttrs: attrs,
		Quantity:     req.Quantity,
		Price:        *req.Price,
		BasePrice:    basePrice,
	}
	if req.ItemName != "" {
		name := req.ItemName
		item.Name = &name
	}
	if req.CostPrice != nil {
		item.CostPrice = *req.CostPrice
	}
	if req.MinStockLevel != nil {
		item.MinStockLevel = *req.MinStockLevel
	}
	if req.MaxStockLevel != nil {
		item.MaxStockLevel = *req.MaxStockLevel
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, mapStoreErr(err)
	}
	log.Info().Str("sku", item.SKU).Str("product_type", item.ProductType).Msg("item created")
	return item, nil
}

func (s *itemService) Get(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	return s.loadItem(ctx, id)
}

func (s *itemService) List(ctx context.Context, filter dto.ItemFilter) (*dto.ItemListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	rctx, cancel := context.WithTimeout(ctx, readQueryTimeout)
	defer cancel()
	items, total, err := s.items.List(rctx, filter)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return &dto.ItemListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *itemService) ListLowStock(ctx context.Context) ([]model.Item, error) {
	rctx, cancel := context.WithTimeout(ctx, readQueryTimeout)
	defer cancel()
	items, err := s.items.ListLowStock(rctx)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return items, nil
}

func (s *itemService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateItemRequest) (*model.Item, error) {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, apierror.Validation("price must not be negative")
		}
		item.Price = *req.Price
	}
	if req.BasePrice != nil {
		if req.BasePrice.IsNegative() {
			return nil, apierror.Validation("basePrice must not be negative")
		}
		item.BasePrice = *req.BasePrice
	}
	if req.CostPrice != nil {
		item.CostPrice = *req.CostPrice
	}
	if req.ItemName != nil {
		item.Name = req.ItemName
	}
	if req.MinStockLevel != nil {
		item.MinStockLevel = *req.MinStockLevel
	}
	if req.MaxStockLevel != nil {
		item.MaxStockLevel = *req.MaxStockLevel
	}

	if err := s.items.Update(ctx, item); err != nil {
		return nil, mapStoreErr(err)
	}
	return item, nil
}

// AdjustQuantity applies a signed stock delta under the same non-negative
// guard the sales workflow uses.
func (s *itemService) AdjustQuantity(ctx context.Context, id uuid.UUID, req dto.AdjustQuantityRequest) (*model.Item, error) {
	if req.Delta == 0 {
		return nil, apierror.Validation("delta must not be zero")
	}

	item, err := s.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.items.DB(), func(tx *gorm.DB) error {
		return s.items.AdjustQuantityTx(tx, item.ID, req.Delta)
	})
	if txErr != nil {
		if errors.Is(txErr, repository.ErrQuantityConflict) {
			return nil, apierror.InsufficientStock(item.DisplayName(), item.Quantity)
		}
		return nil, mapStoreErr(txErr)
	}

	if req.Reason != "" {
		log.Info().
			Str("sku", item.SKU).
			Int("delta", req.Delta).
			Str("reason", req.Reason).
			Msg("stock adjusted")
	}
	return s.loadItem(ctx, id)
}

func (s *itemService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadItem(ctx, id); err != nil {
		return err
	}
	return mapStoreErr(s.items.SoftDelete(ctx, id))
}

func (s *itemService) Reactivate(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	if err := s.items.Reactivate(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("item")
		}
		return nil, mapStoreErr(err)
	}
	return s.loadItem(ctx, id)
}

func (s *itemService) Wipe(ctx context.Context) (*dto.WipeItemsResponse, error) {
	deleted, err := s.items.WipeAll(ctx)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	log.Warn().Int64("deleted", deleted).Msg("inventory wiped")
	return &dto.WipeItemsResponse{Deleted: deleted}, nil
}

func (s *itemService) loadItem(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	rctx, cancel := context.WithTimeout(ctx, readQueryTimeout)
	defer cancel()

	item, err := s.items.FindByID(rctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("item")
		}
		return nil, mapStoreErr(err)
	}
	return item, nil
}

// normalizeSKU uppercases and trims a caller-supplied SKU.
func normalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// generateSKU builds a type-prefixed SKU with a random 6-hex suffix,
// e.g. COV-3FA2B1.
func generateSKU(productType string) string {
	prefix := "ITM"
	switch productType {
	case model.TypeCover:
		prefix = "COV"
	case model.TypePlate:
		prefix = "PLT"
	case model.TypeForm:
		prefix = "FRM"
	}
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; fall back to a
		// constant suffix so creation still surfaces a unique violation.
		return prefix + "-000000"
	}
	return prefix + "-" + strings.ToUpper(hex.EncodeToString(buf))
}
