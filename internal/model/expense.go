package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExpenseCategory struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	NameAr      string `gorm:"type:varchar(255)" json:"name_ar"`
	AccountCode string `gorm:"type:varchar(20)" json:"account_code"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
}

type Expense struct {
	BaseModel
	CategoryID    *uuid.UUID       `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Category      *ExpenseCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Amount        decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"amount"`
	Description   string           `gorm:"type:text;not null" json:"description"`
	ExpenseDate   time.Time        `gorm:"not null;index" json:"expense_date"`
	PaymentMethod PaymentMethod    `gorm:"type:varchar(20);not null" json:"payment_method"`
	Reference     string           `gorm:"type:varchar(100)" json:"reference,omitempty"`
	UserID        string           `gorm:"type:varchar(64);not null" json:"user_id"`
}
