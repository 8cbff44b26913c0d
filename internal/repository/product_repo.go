package repository

import (
	"go-pos-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductFilter struct {
	Search     string
	CategoryID *uuid.UUID
	ActiveOnly bool
	LowStock   bool
}

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	FindAll(filter ProductFilter) ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindByBarcode(barcode string) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	FindLowStock() ([]model.Product, error)
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	Update(tx *gorm.DB, product *model.Product) error
	UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error
	UpdatePurchasePrice(tx *gorm.DB, id uuid.UUID, price decimal.Decimal, updatedBy string) error
	Deactivate(id uuid.UUID, updatedBy string) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	return tx.Create(product).Error
}

func (r *productRepo) FindAll(filter ProductFilter) ([]model.Product, error) {
	var products []model.Product
	q := r.db.Preload("Category")
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name_fr LIKE ? OR name_ar LIKE ? OR barcode LIKE ? OR sku LIKE ?", like, like, like, like)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.LowStock {
		q = q.Where("stock_quantity <= min_stock_level")
	}
	err := q.Order("name_fr ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByBarcode(barcode string) (*model.Product, error) {
	var product model.Product
	if err := r.db.Where("barcode = ? AND is_active = ?", barcode, true).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindLowStock() ([]model.Product, error) {
	return r.FindAll(ProductFilter{ActiveOnly: true, LowStock: true})
}

// LockByID reads the product with a row lock (ignored by sqlite, which
// serializes writers on its single connection).
func (r *productRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Update saves catalogue fields. stock_quantity is omitted: only the stock
// ledger writes it.
func (r *productRepo) Update(tx *gorm.DB, product *model.Product) error {
	return tx.Model(product).
		Select("barcode", "sku", "name_fr", "name_ar", "description", "category_id",
			"purchase_price", "sale_price", "vat_rate", "min_stock_level", "unit",
			"is_active", "updated_by", "updated_at").
		Updates(product).Error
}

// UpdateStock receives the transaction handle so it joins the caller's unit
func (r *productRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_quantity": newStock,
			"updated_by":     updatedBy,
		}).Error
}

func (r *productRepo) UpdatePurchasePrice(tx *gorm.DB, id uuid.UUID, price decimal.Decimal, updatedBy string) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"purchase_price": price,
			"updated_by":     updatedBy,
		}).Error
}

func (r *productRepo) Deactivate(id uuid.UUID, updatedBy string) error {
	res := r.db.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
