package repository

import (
	"time"

	"go-pos-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementFilter struct {
	ProductID     *uuid.UUID
	Type          model.MovementType
	ReferenceType string
	From          *time.Time
	To            *time.Time
	Limit         int
}

type StockMovementRepository interface {
	Create(tx *gorm.DB, movement *model.StockMovement) error
	LastSeq(tx *gorm.DB, productID uuid.UUID) (int64, error)
	FindByProduct(productID uuid.UUID) ([]model.StockMovement, error)
	FindAll(filter MovementFilter) ([]model.StockMovement, error)
}

type stockMovementRepo struct {
	db *gorm.DB
}

func NewStockMovementRepo(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db}
}

func (r *stockMovementRepo) Create(tx *gorm.DB, movement *model.StockMovement) error {
	return tx.Create(movement).Error
}

func (r *stockMovementRepo) LastSeq(tx *gorm.DB, productID uuid.UUID) (int64, error) {
	var seq int64
	err := tx.Model(&model.StockMovement{}).
		Where("product_id = ?", productID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&seq).Error
	return seq, err
}

// FindByProduct returns the audit chain of a product, oldest first.
func (r *stockMovementRepo) FindByProduct(productID uuid.UUID) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.Where("product_id = ?", productID).Order("seq ASC").Find(&movements).Error
	return movements, err
}

func (r *stockMovementRepo) FindAll(filter MovementFilter) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	q := r.db.Preload("Product")
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.ReferenceType != "" {
		q = q.Where("reference_type = ?", filter.ReferenceType)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	err := q.Order("created_at DESC, seq DESC").Find(&movements).Error
	return movements, err
}
