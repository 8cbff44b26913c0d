package repository

import (
	"go-pos-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SupplierRepository interface {
	Create(supplier *model.Supplier) error
	FindAll(activeOnly bool) ([]model.Supplier, error)
	FindByID(id uuid.UUID) (*model.Supplier, error)
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Supplier, error)
	Update(supplier *model.Supplier) error
	UpdateBalance(tx *gorm.DB, id uuid.UUID, balance decimal.Decimal) error
}

type supplierRepo struct {
	db *gorm.DB
}

func NewSupplierRepo(db *gorm.DB) SupplierRepository {
	return &supplierRepo{db}
}

func (r *supplierRepo) Create(supplier *model.Supplier) error {
	return r.db.Create(supplier).Error
}

func (r *supplierRepo) FindAll(activeOnly bool) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	q := r.db.Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepo) FindByID(id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := r.db.First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

// Update saves contact fields; the balance belongs to the purchase flow.
func (r *supplierRepo) Update(supplier *model.Supplier) error {
	return r.db.Model(supplier).
		Select("name", "name_ar", "phone", "email", "address", "tax_id", "is_active", "updated_by", "updated_at").
		Updates(supplier).Error
}

func (r *supplierRepo) UpdateBalance(tx *gorm.DB, id uuid.UUID, balance decimal.Decimal) error {
	return tx.Model(&model.Supplier{}).Where("id = ?", id).Update("balance", balance).Error
}

type ClientRepository interface {
	Create(client *model.Client) error
	FindAll(activeOnly bool) ([]model.Client, error)
	FindByID(id uuid.UUID) (*model.Client, error)
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Client, error)
	Update(client *model.Client) error
	UpdateBalance(tx *gorm.DB, id uuid.UUID, balance decimal.Decimal) error
}

type clientRepo struct {
	db *gorm.DB
}

func NewClientRepo(db *gorm.DB) ClientRepository {
	return &clientRepo{db}
}

func (r *clientRepo) Create(client *model.Client) error {
	return r.db.Create(client).Error
}

func (r *clientRepo) FindAll(activeOnly bool) ([]model.Client, error) {
	var clients []model.Client
	q := r.db.Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&clients).Error
	return clients, err
}

func (r *clientRepo) FindByID(id uuid.UUID) (*model.Client, error) {
	var client model.Client
	if err := r.db.First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepo) Update(client *model.Client) error {
	return r.db.Model(client).
		Select("name", "name_ar", "phone", "email", "address", "tax_id", "credit_limit", "is_active", "updated_by", "updated_at").
		Updates(client).Error
}

func (r *clientRepo) UpdateBalance(tx *gorm.DB, id uuid.UUID, balance decimal.Decimal) error {
	return tx.Model(&model.Client{}).Where("id = ?", id).Update("balance", balance).Error
}
