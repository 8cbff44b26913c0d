package repository

import (
	"time"

	"go-pos-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExpenseFilter struct {
	From       *time.Time
	To         *time.Time
	CategoryID *uuid.UUID
}

type ExpenseRepository interface {
	Create(tx *gorm.DB, expense *model.Expense) error
	FindAll(filter ExpenseFilter) ([]model.Expense, error)
	Total(from, to time.Time) (decimal.Decimal, error)
	FindCategories() ([]model.ExpenseCategory, error)
	FindCategoryByID(tx *gorm.DB, id uuid.UUID) (*model.ExpenseCategory, error)
}

type expenseRepo struct {
	db *gorm.DB
}

func NewExpenseRepo(db *gorm.DB) ExpenseRepository {
	return &expenseRepo{db}
}

func (r *expenseRepo) Create(tx *gorm.DB, expense *model.Expense) error {
	return tx.Omit(clause.Associations).Create(expense).Error
}

func (r *expenseRepo) FindAll(filter ExpenseFilter) ([]model.Expense, error) {
	var expenses []model.Expense
	q := r.db.Preload("Category")
	if filter.From != nil {
		q = q.Where("expense_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("expense_date <= ?", *filter.To)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	err := q.Order("expense_date DESC").Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepo) Total(from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Model(&model.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("expense_date >= ? AND expense_date < ?", from, to).
		Scan(&total).Error
	return cents(total), err
}

func (r *expenseRepo) FindCategories() ([]model.ExpenseCategory, error) {
	var categories []model.ExpenseCategory
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *expenseRepo) FindCategoryByID(tx *gorm.DB, id uuid.UUID) (*model.ExpenseCategory, error) {
	if tx == nil {
		tx = r.db
	}
	var category model.ExpenseCategory
	if err := tx.First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}
