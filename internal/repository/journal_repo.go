package repository

import (
	"time"

	"go-pos-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type JournalFilter struct {
	AccountID     *uuid.UUID
	ReferenceType string
	From          *time.Time
	To            *time.Time
	Limit         int
}

// AccountTotals is Σdebit and Σcredit of one account over a period.
type AccountTotals struct {
	AccountID uuid.UUID
	Code      string
	NameFr    string
	Type      model.AccountType
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

type JournalRepository interface {
	CreateBatch(tx *gorm.DB, entries []model.JournalEntry) error
	FindAll(filter JournalFilter) ([]model.JournalEntry, error)
	FindByEvent(eventID uuid.UUID) ([]model.JournalEntry, error)
	FindByReference(refType string, refID uuid.UUID) ([]model.JournalEntry, error)
	TotalsByAccount(from, to *time.Time) ([]AccountTotals, error)
	SumForAccount(accountID uuid.UUID) (debit, credit decimal.Decimal, err error)
}

type journalRepo struct {
	db *gorm.DB
}

func NewJournalRepo(db *gorm.DB) JournalRepository {
	return &journalRepo{db}
}

func (r *journalRepo) CreateBatch(tx *gorm.DB, entries []model.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return tx.Create(&entries).Error
}

func (r *journalRepo) FindAll(filter JournalFilter) ([]model.JournalEntry, error) {
	var entries []model.JournalEntry
	q := r.db.Preload("Account")
	if filter.AccountID != nil {
		q = q.Where("account_id = ?", *filter.AccountID)
	}
	if filter.ReferenceType != "" {
		q = q.Where("reference_type = ?", filter.ReferenceType)
	}
	if filter.From != nil {
		q = q.Where("entry_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("entry_date <= ?", *filter.To)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	err := q.Order("entry_date DESC, created_at DESC").Find(&entries).Error
	return entries, err
}

func (r *journalRepo) FindByEvent(eventID uuid.UUID) ([]model.JournalEntry, error) {
	var entries []model.JournalEntry
	err := r.db.Preload("Account").Where("event_id = ?", eventID).Find(&entries).Error
	return entries, err
}

func (r *journalRepo) FindByReference(refType string, refID uuid.UUID) ([]model.JournalEntry, error) {
	var entries []model.JournalEntry
	err := r.db.Preload("Account").
		Where("reference_type = ? AND reference_id = ?", refType, refID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *journalRepo) TotalsByAccount(from, to *time.Time) ([]AccountTotals, error) {
	var rows []AccountTotals
	q := r.db.Table("journal_entries je").
		Select(`a.id as account_id, a.code, a.name_fr, a.type,
			COALESCE(SUM(je.debit), 0) as debit,
			COALESCE(SUM(je.credit), 0) as credit`).
		Joins("JOIN accounts a ON a.id = je.account_id")
	if from != nil {
		q = q.Where("je.entry_date >= ?", *from)
	}
	if to != nil {
		q = q.Where("je.entry_date <= ?", *to)
	}
	err := q.Group("a.id, a.code, a.name_fr, a.type").Order("a.code ASC").Scan(&rows).Error
	for i := range rows {
		rows[i].Debit = cents(rows[i].Debit)
		rows[i].Credit = cents(rows[i].Credit)
	}
	return rows, err
}

func (r *journalRepo) SumForAccount(accountID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	var sums struct {
		Debit  decimal.Decimal
		Credit decimal.Decimal
	}
	err := r.db.Model(&model.JournalEntry{}).
		Select("COALESCE(SUM(debit), 0) as debit, COALESCE(SUM(credit), 0) as credit").
		Where("account_id = ?", accountID).
		Scan(&sums).Error
	return cents(sums.Debit), cents(sums.Credit), err
}
