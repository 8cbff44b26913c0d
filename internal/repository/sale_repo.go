package repository

import (
	"time"

	"go-pos-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SaleFilter struct {
	From     *time.Time
	To       *time.Time
	UserID   string
	ClientID *uuid.UUID
	Status   model.SaleStatus
	Limit    int
}

// SalesAggregate summarizes completed sales over a period.
type SalesAggregate struct {
	Count     int64           `json:"count"`
	Revenue   decimal.Decimal `json:"revenue"`
	VAT       decimal.Decimal `json:"vat"`
	Discounts decimal.Decimal `json:"discounts"`
}

type MethodTotal struct {
	Method model.PaymentMethod `json:"method"`
	Count  int64               `json:"count"`
	Total  decimal.Decimal     `json:"total"`
}

type OperatorTotal struct {
	UserID string          `json:"user_id"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

type SaleRepository interface {
	Create(tx *gorm.DB, sale *model.Sale) error
	CreateItem(tx *gorm.DB, item *model.SaleItem) error
	CreatePayment(tx *gorm.DB, payment *model.Payment) error
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Sale, error)
	MarkVoided(tx *gorm.DB, id uuid.UUID, reason string, at time.Time, by string) error
	FindByID(id uuid.UUID) (*model.Sale, error)
	FindAll(filter SaleFilter) ([]model.Sale, error)
	Aggregate(from, to time.Time) (*SalesAggregate, error)
	TotalsByMethod(from, to time.Time) ([]MethodTotal, error)
	TotalsByOperator(from, to time.Time) ([]OperatorTotal, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) Create(tx *gorm.DB, sale *model.Sale) error {
	// items and payments are written one by one by the orchestrator
	return tx.Omit(clause.Associations).Create(sale).Error
}

func (r *saleRepo) CreateItem(tx *gorm.DB, item *model.SaleItem) error {
	return tx.Create(item).Error
}

func (r *saleRepo) CreatePayment(tx *gorm.DB, payment *model.Payment) error {
	return tx.Create(payment).Error
}

func (r *saleRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) MarkVoided(tx *gorm.DB, id uuid.UUID, reason string, at time.Time, by string) error {
	return tx.Model(&model.Sale{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      model.SaleVoided,
			"void_reason": reason,
			"voided_at":   at,
			"updated_by":  by,
		}).Error
}

func (r *saleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Items").Preload("Payments").Preload("Client").
		First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) FindAll(filter SaleFilter) ([]model.Sale, error) {
	var sales []model.Sale
	q := r.db.Preload("Client")
	if filter.From != nil {
		q = q.Where("sale_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("sale_date <= ?", *filter.To)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.ClientID != nil {
		q = q.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	err := q.Order("sale_date DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) Aggregate(from, to time.Time) (*SalesAggregate, error) {
	var agg SalesAggregate
	err := r.db.Model(&model.Sale{}).
		Select(`COUNT(*) as count,
			COALESCE(SUM(total), 0) as revenue,
			COALESCE(SUM(vat_amount), 0) as vat,
			COALESCE(SUM(discount_amount), 0) as discounts`).
		Where("status = ? AND sale_date >= ? AND sale_date < ?", model.SaleCompleted, from, to).
		Scan(&agg).Error
	agg.Revenue = cents(agg.Revenue)
	agg.VAT = cents(agg.VAT)
	agg.Discounts = cents(agg.Discounts)
	return &agg, err
}

func (r *saleRepo) TotalsByMethod(from, to time.Time) ([]MethodTotal, error) {
	var rows []MethodTotal
	err := r.db.Model(&model.Sale{}).
		Select("payment_method as method, COUNT(*) as count, COALESCE(SUM(total), 0) as total").
		Where("status = ? AND sale_date >= ? AND sale_date < ?", model.SaleCompleted, from, to).
		Group("payment_method").
		Scan(&rows).Error
	for i := range rows {
		rows[i].Total = cents(rows[i].Total)
	}
	return rows, err
}

func (r *saleRepo) TotalsByOperator(from, to time.Time) ([]OperatorTotal, error) {
	var rows []OperatorTotal
	err := r.db.Model(&model.Sale{}).
		Select("user_id, COUNT(*) as count, COALESCE(SUM(total), 0) as total").
		Where("status = ? AND sale_date >= ? AND sale_date < ?", model.SaleCompleted, from, to).
		Group("user_id").
		Scan(&rows).Error
	for i := range rows {
		rows[i].Total = cents(rows[i].Total)
	}
	return rows, err
}
