package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Slip statuses. Cancelled is terminal: there is no uncancel.
const (
	StatusPending   = "Pending"
	StatusPaid      = "Paid"
	StatusCancelled = "Cancelled"
)

// Discount types recorded per product line.
const (
	DiscountNone   = "none"
	DiscountBulk   = "bulk"
	DiscountManual = "manual"
)

// Slip is a sale transaction / receipt covering one or more product lines.
// Created atomically with the inventory decrement and the income mirror;
// cancellation flips Status and CancelledAt in the same transaction that
// restores stock and deactivates income.
type Slip struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SlipNumber    string          `gorm:"uniqueIndex;not null" json:"slipNumber"`
	CustomerName  string          `json:"customerName,omitempty"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	Status        string          `gorm:"type:varchar(20);not null;default:'Paid';index" json:"status"`
	CancelledAt   *time.Time      `json:"cancelledAt,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	Lines []ProductLine `gorm:"foreignKey:SlipID;constraint:OnDelete:CASCADE" json:"products"`
}

// Cancelled reports whether the slip has reached its terminal state.
// Invariant: Cancelled() ⇔ CancelledAt is set.
func (s *Slip) Cancelled() bool { return s.Status == StatusCancelled }

// ProductLine is the immutable snapshot of one sold product at sale time.
// TotalPrice is always recomputed as Quantity × UnitPrice, never trusted from
// caller input. DiscountAmount is the line total (per-unit discount × quantity).
type ProductLine struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SlipID       uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	SKU          string    `json:"sku"`
	Name         string    `gorm:"not null" json:"productName"`
	ProductType  string    `gorm:"not null" json:"productType"`
	ProductAttrs `gorm:"embedded"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	BasePrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"basePrice"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discountAmount"`
	DiscountType   string          `gorm:"type:varchar(10);not null;default:'none'" json:"discountType"`
	TotalPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalPrice"`
}
