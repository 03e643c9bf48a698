package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product types carried by the catalog. Each type has its own attribute set.
const (
	TypeCover = "Cover"
	TypeForm  = "Form"
	TypePlate = "Plate"
)

// ProductAttrs is the per-type attribute variant, stored as flat nullable
// columns. Which fields are meaningful depends on the product type:
//
//	Cover: CoverType
//	Plate: PlateCompany, BikeName, PlateType
//	Form:  FormCompany, FormType, FormVariant, BikeName
type ProductAttrs struct {
	CoverType    *string `gorm:"index" json:"coverType,omitempty"`
	PlateCompany *string `json:"plateCompany,omitempty"`
	BikeName     *string `json:"bikeName,omitempty"`
	PlateType    *string `json:"plateType,omitempty"`
	FormCompany  *string `json:"formCompany,omitempty"`
	FormType     *string `json:"formType,omitempty"`
	FormVariant  *string `json:"formVariant,omitempty"`
}

// Validate checks that the attributes required by productType are present.
func (a ProductAttrs) Validate(productType string) error {
	switch productType {
	case TypeCover:
		if strEmpty(a.CoverType) {
			return errors.New("coverType is required for Cover items")
		}
	case TypePlate:
		if strEmpty(a.PlateCompany) && strEmpty(a.BikeName) && strEmpty(a.PlateType) {
			return errors.New("plateCompany, bikeName or plateType is required for Plate items")
		}
	case TypeForm:
		if strEmpty(a.FormCompany) && strEmpty(a.FormType) && strEmpty(a.FormVariant) {
			return errors.New("formCompany, formType or formVariant is required for Form items")
		}
	default:
		return fmt.Errorf("unknown product type %q", productType)
	}
	return nil
}

// Label synthesizes a display name from the type plus its salient attributes,
// e.g. "Cover - Aster Cover", "Plate - Single (70)", "Form - Soft (AG)".
func (a ProductAttrs) Label(productType string) string {
	switch productType {
	case TypeCover:
		if !strEmpty(a.CoverType) {
			return fmt.Sprintf("Cover - %s", *a.CoverType)
		}
		return "Cover"
	case TypePlate:
		switch {
		case !strEmpty(a.PlateType) && !strEmpty(a.BikeName):
			return fmt.Sprintf("Plate - %s (%s)", *a.PlateType, *a.BikeName)
		case !strEmpty(a.PlateType):
			return fmt.Sprintf("Plate - %s", *a.PlateType)
		case !strEmpty(a.BikeName):
			return fmt.Sprintf("Plate - %s", *a.BikeName)
		}
		return "Plate"
	case TypeForm:
		switch {
		case !strEmpty(a.FormType) && !strEmpty(a.FormCompany):
			return fmt.Sprintf("Form - %s (%s)", *a.FormType, *a.FormCompany)
		case !strEmpty(a.FormType):
			return fmt.Sprintf("Form - %s", *a.FormType)
		case !strEmpty(a.FormCompany):
			return fmt.Sprintf("Form - %s", *a.FormCompany)
		}
		return "Form"
	}
	return productType
}

func strEmpty(s *string) bool { return s == nil || *s == "" }

// Item is a stock catalog entry. Quantity is the only hot, contended field and
// is mutated exclusively through the slip workflow's transaction boundary
// (or the explicit manual-adjust operation, which uses the same guard).
type Item struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SKU          string    `gorm:"uniqueIndex;not null" json:"sku"`
	Name         *string   `gorm:"index" json:"itemName,omitempty"`
	ProductType  string    `gorm:"not null;index" json:"productType"`
	ProductAttrs `gorm:"embedded"`
	Quantity     int             `gorm:"not null;default:0" json:"quantity"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	BasePrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"basePrice"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"costPrice"`
	MinStockLevel int            `gorm:"not null;default:5" json:"minStockLevel"`
	MaxStockLevel int            `gorm:"not null;default:100" json:"maxStockLevel"`
	// IsActive is a tri-state soft-delete marker: nil (legacy rows) and true
	// both mean active.
	IsActive  *bool     `json:"isActive,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Active reports whether the item participates in lookups and sales.
func (i *Item) Active() bool { return i.IsActive == nil || *i.IsActive }

// DisplayName is the human name when set, otherwise a synthesized label.
func (i *Item) DisplayName() string {
	if i.Name != nil && *i.Name != "" {
		return *i.Name
	}
	return i.ProductAttrs.Label(i.ProductType)
}
