package repository

import (
	"go-pos-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository interface {
	FindAll(activeOnly bool) ([]model.Account, error)
	FindByCode(tx *gorm.DB, code string) (*model.Account, error)
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Account, error)
	LockByCode(tx *gorm.DB, code string) (*model.Account, error)
	UpdateBalance(tx *gorm.DB, id uuid.UUID, balance decimal.Decimal) error
}

type accountRepo struct {
	db *gorm.DB
}

func NewAccountRepo(db *gorm.DB) AccountRepository {
	return &accountRepo{db}
}

func (r *accountRepo) FindAll(activeOnly bool) ([]model.Account, error) {
	var accounts []model.Account
	q := r.db.Order("code ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&accounts).Error
	return accounts, err
}

func (r *accountRepo) FindByCode(tx *gorm.DB, code string) (*model.Account, error) {
	if tx == nil {
		tx = r.db
	}
	var account model.Account
	if err := tx.Where("code = ?", code).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Account, error) {
	var account model.Account
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) LockByCode(tx *gorm.DB, code string) (*model.Account, error) {
	var account model.Account
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("code = ?", code).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) UpdateBalance(tx *gorm.DB, id uuid.UUID, balance decimal.Decimal) error {
	return tx.Model(&model.Account{}).Where("id = ?", id).Update("balance", balance).Error
}
