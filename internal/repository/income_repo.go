package repository

import (
	"context"
	"time"

	"github.com/saadullahkhan123123/saeedautobackend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IncomeRepository persists the income mirror. Writes are tx-scoped and only
// ever issued by the slip workflow; reads serve the reporting collaborator.
type IncomeRepository interface {
	CreateTx(tx *gorm.DB, rec *model.IncomeRecord) error
	FindActiveBySlipTx(tx *gorm.DB, slipID uuid.UUID) (*model.IncomeRecord, error)
	SaveTx(tx *gorm.DB, rec *model.IncomeRecord) error
	ReplaceProductsTx(tx *gorm.DB, incomeID uuid.UUID, products []model.IncomeProduct) error

	// DeactivateBySlipTx flips is_active off for every active record that
	// references the slip by id or number, stamping the note. Returns how many
	// records it touched.
	DeactivateBySlipTx(tx *gorm.DB, slipID uuid.UUID, slipNumber, note string) (int64, error)

	ListByDateRange(ctx context.Context, start, end *time.Time, activeOnly bool) ([]model.IncomeRecord, error)
	DB() *gorm.DB
}

type incomeRepo struct{ db *gorm.DB }

func NewIncomeRepository(db *gorm.DB) IncomeRepository { return &incomeRepo{db: db} }

func (r *incomeRepo) DB() *gorm.DB { return r.db }

func (r *incomeRepo) CreateTx(tx *gorm.DB, rec *model.IncomeRecord) error {
	return tx.Create(rec).Error
}

func (r *incomeRepo) FindActiveBySlipTx(tx *gorm.DB, slipID uuid.UUID) (*model.IncomeRecord, error) {
	var rec model.IncomeRecord
	err := tx.Preload("ProductsSold").
		Where("slip_id = ? AND is_active = true", slipID).
		First(&rec).Error
	return &rec, err
}

func (r *incomeRepo) SaveTx(tx *gorm.DB, rec *model.IncomeRecord) error {
	return tx.Omit("ProductsSold").Save(rec).Error
}

func (r *incomeRepo) ReplaceProductsTx(tx *gorm.DB, incomeID uuid.UUID, products []model.IncomeProduct) error {
	if err := tx.Where("income_record_id = ?", incomeID).Delete(&model.IncomeProduct{}).Error; err != nil {
		return err
	}
	for i := range products {
		products[i].IncomeRecordID = incomeID
		products[i].ID = uuid.Nil
	}
	return tx.Create(&products).Error
}

func (r *incomeRepo) DeactivateBySlipTx(tx *gorm.DB, slipID uuid.UUID, slipNumber, note string) (int64, error) {
	res := tx.Model(&model.IncomeRecord{}).
		Where("(slip_id = ? OR slip_number = ?) AND is_active = true", slipID, slipNumber).
		Updates(map[string]interface{}{
			"is_active": false,
			"notes":     gorm.Expr("TRIM(BOTH ' | ' FROM notes || ' | ' || ?::text)", note),
		})
	return res.RowsAffected, res.Error
}

func (r *incomeRepo) ListByDateRange(ctx context.Context, start, end *time.Time, activeOnly bool) ([]model.IncomeRecord, error) {
	q := r.db.WithContext(ctx).Model(&model.IncomeRecord{}).Preload("ProductsSold")
	if activeOnly {
		q = q.Where("is_active = true")
	}
	if start != nil {
		q = q.Where("date >= ?", *start)
	}
	if end != nil {
		q = q.Where("date < ?", *end)
	}
	var recs []model.IncomeRecord
	err := q.Order("date DESC").Find(&recs).Error
	return recs, err
}
