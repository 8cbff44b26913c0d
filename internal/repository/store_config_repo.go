package repository

import (
	"go-pos-ledger/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StoreConfigRepository interface {
	Get() (*model.StoreConfig, error)
	Lock(tx *gorm.DB) (*model.StoreConfig, error)
	IncrementInvoiceNumber(tx *gorm.DB, id uint) error
	IncrementPurchaseNumber(tx *gorm.DB, id uint) error
	Update(cfg *model.StoreConfig) error
}

type storeConfigRepo struct {
	db *gorm.DB
}

func NewStoreConfigRepo(db *gorm.DB) StoreConfigRepository {
	return &storeConfigRepo{db}
}

func (r *storeConfigRepo) Get() (*model.StoreConfig, error) {
	var cfg model.StoreConfig
	if err := r.db.Order("id ASC").First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Lock reads the settings row with the counters inside tx.
func (r *storeConfigRepo) Lock(tx *gorm.DB) (*model.StoreConfig, error) {
	var cfg model.StoreConfig
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Order("id ASC").First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *storeConfigRepo) IncrementInvoiceNumber(tx *gorm.DB, id uint) error {
	return tx.Model(&model.StoreConfig{}).Where("id = ?", id).
		Update("invoice_next_number", gorm.Expr("invoice_next_number + 1")).Error
}

func (r *storeConfigRepo) IncrementPurchaseNumber(tx *gorm.DB, id uint) error {
	return tx.Model(&model.StoreConfig{}).Where("id = ?", id).
		Update("purchase_next_number", gorm.Expr("purchase_next_number + 1")).Error
}

// Update saves the editable settings, never the counters.
func (r *storeConfigRepo) Update(cfg *model.StoreConfig) error {
	return r.db.Model(cfg).
		Omit("invoice_next_number", "purchase_next_number").
		Select("*").
		Updates(cfg).Error
}
