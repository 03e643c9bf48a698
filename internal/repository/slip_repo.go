package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/saadullahkhan123123/saeedautobackend/internal/dto"
	"github.com/saadullahkhan123123/saeedautobackend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SlipRepository persists slips. All writes are tx-scoped: the slip workflow
// owns the transaction and passes it down.
type SlipRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, s *model.Slip) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Slip, error)
	List(ctx context.Context, filter dto.SlipFilter) ([]model.Slip, int64, error)
	SaveTx(tx *gorm.DB, s *model.Slip) error
	ReplaceLinesTx(tx *gorm.DB, slipID uuid.UUID, lines []model.ProductLine) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	NextSlipNumber(ctx context.Context, tx *gorm.DB) (string, error)
	DB() *gorm.DB
}

type slipRepo struct{ db *gorm.DB }

func NewSlipRepository(db *gorm.DB) SlipRepository { return &slipRepo{db: db} }

func (r *slipRepo) DB() *gorm.DB { return r.db }

func (r *slipRepo) CreateTx(ctx context.Context, tx *gorm.DB, s *model.Slip) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *slipRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Slip, error) {
	var s model.Slip
	err := r.db.WithContext(ctx).Preload("Lines").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *slipRepo) List(ctx context.Context, filter dto.SlipFilter) ([]model.Slip, int64, error) {
	var slips []model.Slip
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Slip{})

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Lines").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&slips).Error
	return slips, total, err
}

func (r *slipRepo) SaveTx(tx *gorm.DB, s *model.Slip) error {
	// Session without FullSaveAssociations so line replacement stays explicit.
	return tx.Omit("Lines").Save(s).Error
}

// ReplaceLinesTx swaps the slip's lines wholesale. Used by the update path
// after old stock is restored and new stock re-reserved.
func (r *slipRepo) ReplaceLinesTx(tx *gorm.DB, slipID uuid.UUID, lines []model.ProductLine) error {
	if err := tx.Where("slip_id = ?", slipID).Delete(&model.ProductLine{}).Error; err != nil {
		return err
	}
	for i := range lines {
		lines[i].SlipID = slipID
		lines[i].ID = uuid.Nil
	}
	return tx.Create(&lines).Error
}

func (r *slipRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	// Lines go with the slip via ON DELETE CASCADE.
	res := tx.Delete(&model.Slip{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// NextSlipNumber claims the next value of a PostgreSQL sequence inside the
// creation transaction, so concurrent creates cannot collide.
func (r *slipRepo) NextSlipNumber(ctx context.Context, tx *gorm.DB) (string, error) {
	var seq int64
	if err := tx.WithContext(ctx).Raw("SELECT nextval('slips_slip_number_seq')").Scan(&seq).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("SLP-%s-%04d", time.Now().UTC().Format("20060102"), seq), nil
}
