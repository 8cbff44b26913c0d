package repository

import (
	"time"

	"go-pos-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseFilter struct {
	From       *time.Time
	To         *time.Time
	SupplierID *uuid.UUID
	Limit      int
}

type PurchaseRepository interface {
	Create(tx *gorm.DB, purchase *model.Purchase) error
	CreateItem(tx *gorm.DB, item *model.PurchaseItem) error
	CreatePayment(tx *gorm.DB, payment *model.Payment) error
	FindByID(id uuid.UUID) (*model.Purchase, error)
	FindAll(filter PurchaseFilter) ([]model.Purchase, error)
}

type purchaseRepo struct {
	db *gorm.DB
}

func NewPurchaseRepo(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db}
}

func (r *purchaseRepo) Create(tx *gorm.DB, purchase *model.Purchase) error {
	return tx.Omit(clause.Associations).Create(purchase).Error
}

func (r *purchaseRepo) CreateItem(tx *gorm.DB, item *model.PurchaseItem) error {
	return tx.Omit(clause.Associations).Create(item).Error
}

func (r *purchaseRepo) CreatePayment(tx *gorm.DB, payment *model.Payment) error {
	return tx.Create(payment).Error
}

func (r *purchaseRepo) FindByID(id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	err := r.db.Preload("Supplier").Preload("Items.Product").Preload("Payments").
		First(&purchase, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepo) FindAll(filter PurchaseFilter) ([]model.Purchase, error) {
	var purchases []model.Purchase
	q := r.db.Preload("Supplier")
	if filter.From != nil {
		q = q.Where("purchase_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("purchase_date <= ?", *filter.To)
	}
	if filter.SupplierID != nil {
		q = q.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	err := q.Order("purchase_date DESC").Find(&purchases).Error
	return purchases, err
}
