package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IncomeRecord is the derived accounting mirror of a paid slip. It is written
// only by the slip workflow: created with the slip, updated when the slip's
// products change, and deactivated (never deleted) when the slip is cancelled
// or removed. Invariant: exactly one active record per non-cancelled slip, and
// TotalIncome equals the sum of its products' TotalPrice.
type IncomeRecord struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Date          time.Time       `gorm:"not null;index" json:"date"`
	TotalIncome   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalIncome"`
	SlipID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"slipId"`
	SlipNumber    string          `gorm:"index" json:"slipNumber"`
	CustomerName  string          `json:"customerName,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	IsActive      bool            `gorm:"not null;default:true;index" json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	ProductsSold []IncomeProduct `gorm:"foreignKey:IncomeRecordID;constraint:OnDelete:CASCADE" json:"productsSold"`
}

// IncomeProduct mirrors a slip's ProductLine plus the resolved SKU.
type IncomeProduct struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	IncomeRecordID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	SKU            string    `json:"sku"`
	Name           string    `gorm:"not null" json:"productName"`
	ProductType    string    `json:"productType"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discountAmount"`
	DiscountType   string          `gorm:"type:varchar(10);not null;default:'none'" json:"discountType"`
	TotalPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalPrice"`
}
