package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/saadullahkhan123123/saeedautobackend/internal/dto"
	"github.com/saadullahkhan123123/saeedautobackend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrQuantityConflict is returned by the guarded quantity adjustment when a
// negative delta would drive stock below zero (or the row is gone). It is the
// last line of defense behind the workflow's pre-check.
var ErrQuantityConflict = errors.New("quantity adjustment conflict")

// activeItems filters to items whose soft-delete marker is unset or true.
// Legacy rows with a NULL is_active count as active.
const activeItems = "is_active IS DISTINCT FROM false"

// ItemRepository is the inventory store contract consumed by the slip
// workflow and the catalog service. The *Tx variants must be called with the
// live transaction of the workflow operation they support.
type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	FindBySKU(ctx context.Context, sku string) (*model.Item, error)
	List(ctx context.Context, filter dto.ItemFilter) ([]model.Item, int64, error)
	ListLowStock(ctx context.Context) ([]model.Item, error)
	Update(ctx context.Context, item *model.Item) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
	WipeAll(ctx context.Context) (int64, error)

	// Lookup used by the workflow: attribute match first, name/SKU fallback.
	FindByAttributesTx(tx *gorm.DB, productType string, attrs model.ProductAttrs) (*model.Item, error)
	FindByNameOrSKUTx(tx *gorm.DB, text string) (*model.Item, error)

	// AdjustQuantityTx atomically adds delta to quantity inside tx, guarded
	// against going negative (ErrQuantityConflict).
	AdjustQuantityTx(tx *gorm.DB, id uuid.UUID, delta int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type itemRepo struct{ db *gorm.DB }

func NewItemRepository(db *gorm.DB) ItemRepository { return &itemRepo{db: db} }

func (r *itemRepo) DB() *gorm.DB { return r.db }

func (r *itemRepo) Create(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	return &item, err
}

func (r *itemRepo) FindBySKU(ctx context.Context, sku string) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).
		Where("UPPER(sku) = ?", strings.ToUpper(strings.TrimSpace(sku))).
		First(&item).Error
	return &item, err
}

// FindByAttributesTx does an exact match on product type plus whichever of the
// type-relevant attributes the caller provided. Only active items match.
func (r *itemRepo) FindByAttributesTx(tx *gorm.DB, productType string, attrs model.ProductAttrs) (*model.Item, error) {
	q := tx.Where("product_type = ?", productType).Where(activeItems)

	matched := false
	addAttr := func(col string, v *string) {
		if v != nil && *v != "" {
			q = q.Where(col+" = ?", *v)
			matched = true
		}
	}

	switch productType {
	case model.TypeCover:
		addAttr("cover_type", attrs.CoverType)
	case model.TypePlate:
		addAttr("plate_company", attrs.PlateCompany)
		addAttr("bike_name", attrs.BikeName)
		addAttr("plate_type", attrs.PlateType)
	case model.TypeForm:
		addAttr("form_company", attrs.FormCompany)
		addAttr("form_type", attrs.FormType)
		addAttr("form_variant", attrs.FormVariant)
		addAttr("bike_name", attrs.BikeName)
	}

	// Type alone is never specific enough to claim an exact match.
	if !matched {
		return nil, gorm.ErrRecordNotFound
	}

	var item model.Item
	err := q.First(&item).Error
	return &item, err
}

// FindByNameOrSKUTx is the case-insensitive exact-match fallback used when
// attribute lookup fails (and the primary lookup on reversal paths).
func (r *itemRepo) FindByNameOrSKUTx(tx *gorm.DB, text string) (*model.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var item model.Item
	err := tx.Where(activeItems).
		Where("LOWER(name) = LOWER(?) OR UPPER(sku) = UPPER(?)", text, text).
		First(&item).Error
	return &item, err
}

func (r *itemRepo) List(ctx context.Context, filter dto.ItemFilter) ([]model.Item, int64, error) {
	var items []model.Item
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Item{})

	switch filter.Active {
	case "false":
		q = q.Where("is_active = false")
	case "all":
		// no filter
	default:
		q = q.Where(activeItems)
	}
	if filter.ProductType != "" {
		q = q.Where("product_type = ?", filter.ProductType)
	}
	if filter.Search != "" {
		q = q.Where("name ILIKE ? OR sku ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&items).Error
	return items, total, err
}

func (r *itemRepo) ListLowStock(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).
		Where(activeItems).
		Where("quantity <= min_stock_level").
		Order("quantity ASC").
		Find(&items).Error
	return items, err
}

func (r *itemRepo) Update(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *itemRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Item{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *itemRepo) Reactivate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Item{}).Where("id = ?", id).Update("is_active", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// WipeAll hard-deletes the entire catalog. The only path that removes item
// rows; everything else soft-deletes.
func (r *itemRepo) WipeAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&model.Item{})
	return res.RowsAffected, res.Error
}

func (r *itemRepo) AdjustQuantityTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	q := tx.Model(&model.Item{}).Where("id = ?", id)
	if delta < 0 {
		// The WHERE guard makes check-then-decrement safe under concurrency:
		// a competing transaction that already took the stock leaves zero
		// matching rows here and the whole transaction aborts.
		q = q.Where("quantity >= ?", -delta)
	}
	res := q.Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrQuantityConflict
	}
	return nil
}
