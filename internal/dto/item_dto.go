package dto

import (
	"github.com/shopspring/decimal"

	"github.com/saadullahkhan123123/saeedautobackend/internal/model"
)

type CreateItemRequest struct {
	SKU          string  `json:"sku"` // optional; generated when absent
	ItemName     string  `json:"itemName"`
	ProductType  string  `json:"productType" validate:"required,oneof=Cover Form Plate"`
	CoverType    *string `json:"coverType"`
	PlateCompany *string `json:"plateCompany"`
	BikeName     *string `json:"bikeName"`
	PlateType    *string `json:"plateType"`
	FormCompany  *string `json:"formCompany"`
	FormType     *string `json:"formType"`
	FormVariant  *string `json:"formVariant"`
	Quantity     int     `json:"quantity" validate:"min=0"`
	Price        *decimal.Decimal `json:"price" validate:"required"`
	BasePrice    *decimal.Decimal `json:"basePrice"` // defaults to price
	CostPrice    *decimal.Decimal `json:"costPrice"`
	MinStockLevel *int            `json:"minStockLevel" validate:"omitempty,min=0"`
	MaxStockLevel *int            `json:"maxStockLevel" validate:"omitempty,min=0"`
}

// Attrs collects the per-type attribute fields into the model variant.
func (r CreateItemRequest) Attrs() model.ProductAttrs {
	return model.ProductAttrs{
		CoverType:    r.CoverType,
		PlateCompany: r.PlateCompany,
		BikeName:     r.BikeName,
		PlateType:    r.PlateType,
		FormCompany:  r.FormCompany,
		FormType:     r.FormType,
		FormVariant:  r.FormVariant,
	}
}

type UpdateItemRequest struct {
	ItemName      *string          `json:"itemName"`
	Price         *decimal.Decimal `json:"price"`
	BasePrice     *decimal.Decimal `json:"basePrice"`
	CostPrice     *decimal.Decimal `json:"costPrice"`
	MinStockLevel *int             `json:"minStockLevel" validate:"omitempty,min=0"`
	MaxStockLevel *int             `json:"maxStockLevel" validate:"omitempty,min=0"`
}

// AdjustQuantityRequest moves stock by a signed delta. Negative deltas are
// rejected when they would drive quantity below zero.
type AdjustQuantityRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason"`
}

type ItemFilter struct {
	Search      string `form:"search"` // name or SKU, case-insensitive
	ProductType string `form:"productType" validate:"omitempty,oneof=Cover Form Plate"`
	Active      string `form:"active"` // "false" = inactive, "all" = everything, default active
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ItemListResponse struct {
	Data  []model.Item `json:"data"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

type WipeItemsResponse struct {
	Deleted int64 `json:"deleted"`
}
