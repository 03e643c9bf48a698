package dto

import (
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// SlipProductRequest is one requested line of POST /v1/slips. The item is
// resolved by its type attributes first, then by productName/itemName/sku as
// fallback. Price precedence: unitPrice (or price) is the explicit selling
// price; basePrice overrides the catalog list price.
type SlipProductRequest struct {
	ProductName string  `json:"productName"`
	ItemName    string  `json:"itemName"`
	SKU         string  `json:"sku"`
	ProductType string  `json:"productType" validate:"required,oneof=Cover Form Plate"`
	CoverType   *string `json:"coverType"`
	PlateCompany *string `json:"plateCompany"`
	BikeName     *string `json:"bikeName"`
	PlateType    *string `json:"plateType"`
	FormCompany  *string `json:"formCompany"`
	FormType     *string `json:"formType"`
	FormVariant  *string `json:"formVariant"`
	Quantity     int     `json:"quantity" validate:"required,min=1"`
	BasePrice    *decimal.Decimal `json:"basePrice"`
	UnitPrice    *decimal.Decimal `json:"unitPrice"`
	Price        *decimal.Decimal `json:"price"`
}

// RequestedName returns whichever name field the caller sent.
func (p SlipProductRequest) RequestedName() string {
	if p.ProductName != "" {
		return p.ProductName
	}
	return p.ItemName
}

// ExplicitPrice returns the caller-supplied selling price, unitPrice taking
// precedence over the legacy price alias.
func (p SlipProductRequest) ExplicitPrice() *decimal.Decimal {
	if p.UnitPrice != nil {
		return p.UnitPrice
	}
	return p.Price
}

type CreateSlipRequest struct {
	CustomerName  string               `json:"customerName"`
	CustomerPhone string               `json:"customerPhone"`
	PaymentMethod string               `json:"paymentMethod"`
	Notes         string               `json:"notes"`
	Subtotal      *decimal.Decimal     `json:"subtotal"     validate:"required"`
	TotalAmount   *decimal.Decimal     `json:"totalAmount"  validate:"required"`
	Products      []SlipProductRequest `json:"products"     validate:"required,min=1,dive"`
}

type CancelSlipRequest struct {
	Reason string `json:"reason"`
}

// UpdateSlipRequest is a partial update: nil fields are left untouched.
// Products, when present, fully replaces the slip's lines (old stock is
// restored, new stock re-reserved, all in one transaction).
type UpdateSlipRequest struct {
	CustomerName  *string               `json:"customerName"`
	CustomerPhone *string               `json:"customerPhone"`
	PaymentMethod *string               `json:"paymentMethod"`
	Notes         *string               `json:"notes"`
	Subtotal      *decimal.Decimal      `json:"subtotal"`
	TotalAmount   *decimal.Decimal      `json:"totalAmount"`
	Status        *string               `json:"status" validate:"omitempty,oneof=Pending Paid Cancelled"`
	Products      *[]SlipProductRequest `json:"products" validate:"omitempty,min=1,dive"`
}

// SlipFilter is bound from the query string of GET /v1/slips.
type SlipFilter struct {
	Date   string `form:"date"`   // YYYY-MM-DD; empty = no date filter
	Status string `form:"status"` // Pending | Paid | Cancelled | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductLineResponse struct {
	SKU            string          `json:"sku"`
	ProductName    string          `json:"productName"`
	ProductType    string          `json:"productType"`
	Quantity       int             `json:"quantity"`
	BasePrice      decimal.Decimal `json:"basePrice"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	DiscountType   string          `json:"discountType"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
}

type SlipResponse struct {
	ID            string                `json:"id"`
	SlipNumber    string                `json:"slipNumber"`
	CustomerName  string                `json:"customerName,omitempty"`
	CustomerPhone string                `json:"customerPhone,omitempty"`
	PaymentMethod string                `json:"paymentMethod,omitempty"`
	Products      []ProductLineResponse `json:"products"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TotalAmount   decimal.Decimal       `json:"totalAmount"`
	Status        string                `json:"status"`
	CancelledAt   *string               `json:"cancelledAt,omitempty"`
	Notes         string                `json:"notes,omitempty"`
	CreatedAt     string                `json:"createdAt"`
}

type SlipListResponse struct {
	Data  []SlipResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// CancelSlipResponse reports the updated slip plus reversal counts. Reversal
// is best-effort per line, so restored may be lower than the line count.
type CancelSlipResponse struct {
	Slip                   *SlipResponse `json:"slip"`
	IncomeRecordsUpdated   int64         `json:"incomeRecordsUpdated"`
	InventoryLinesRestored int           `json:"inventoryLinesRestored"`
}

type DeleteSlipResponse struct {
	IncomeRecordsDeactivated int64 `json:"incomeRecordsDeactivated"`
	InventoryLinesRestored   int   `json:"inventoryLinesRestored"`
}
