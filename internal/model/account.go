package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
	AccountEquity    AccountType = "equity"
	AccountRevenue   AccountType = "revenue"
	AccountExpense   AccountType = "expense"
)

// Account is a chart-of-accounts node. Balance is a cache of
// Σdebit - Σcredit over its journal lines.
type Account struct {
	BaseModel
	Code       string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"`
	NameFr     string          `gorm:"type:varchar(255);not null" json:"name_fr"`
	NameAr     string          `gorm:"type:varchar(255)" json:"name_ar"`
	Type       AccountType     `gorm:"type:varchar(20);not null" json:"type"`
	ParentCode string          `gorm:"type:varchar(20)" json:"parent_code,omitempty"`
	Balance    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"balance"`
	IsSystem   bool            `gorm:"default:false" json:"is_system"`
	IsActive   bool            `gorm:"default:true" json:"is_active"`
}

// JournalEntry is one immutable debit or credit line. Lines posted together
// share an EventID.
type JournalEntry struct {
	FactModel
	EventID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"event_id"`
	EntryDate   time.Time       `gorm:"not null;index" json:"entry_date"`
	AccountID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"account_id"`
	Account     *Account        `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Debit       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"debit"`
	Credit      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"credit"`
	Description string          `gorm:"type:varchar(255)" json:"description"`
	Reference   Reference       `gorm:"embedded" json:"reference"`
	UserID      string          `gorm:"type:varchar(64);not null" json:"user_id"`
}
