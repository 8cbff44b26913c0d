package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	SaleCompleted SaleStatus = "completed"
	SalePending   SaleStatus = "pending"
	SaleVoided    SaleStatus = "voided"
)

type PaymentMethod string

const (
	PayCash         PaymentMethod = "cash"
	PayCard         PaymentMethod = "card"
	PayCheck        PaymentMethod = "check"
	PayCredit       PaymentMethod = "credit"
	PayBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCash, PayCard, PayCheck, PayCredit, PayBankTransfer:
		return true
	}
	return false
}

// Sale header. Created completed, may become voided once, never edited otherwise.
type Sale struct {
	BaseModel
	InvoiceNumber   string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"invoice_number"`
	UserID          string          `gorm:"type:varchar(64);not null;index" json:"user_id"`
	ClientID        *uuid.UUID      `gorm:"type:uuid;index" json:"client_id,omitempty"`
	Client          *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	SaleDate        time.Time       `gorm:"not null;index" json:"sale_date"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"subtotal"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"discount_amount"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"discount_percent"`
	VATAmount       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"vat_amount"`
	Total           decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
	AmountPaid      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount_paid"`
	ChangeAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"change_amount"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status          SaleStatus      `gorm:"type:varchar(20);not null;index" json:"status"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	VoidReason      string          `gorm:"type:text" json:"void_reason,omitempty"`
	VoidedAt        *time.Time      `json:"voided_at,omitempty"`
	Items           []SaleItem      `gorm:"foreignKey:SaleID" json:"items,omitempty"`
	Payments        []Payment       `gorm:"foreignKey:SaleID" json:"payments,omitempty"`
}

// NetRevenue is what the sales account is credited with.
func (s *Sale) NetRevenue() decimal.Decimal {
	return s.Subtotal.Sub(s.DiscountAmount)
}

type SaleItem struct {
	FactModel
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Barcode     string          `gorm:"type:varchar(64)" json:"barcode,omitempty"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	Discount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"discount"`
	VATRate     decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"vat_rate"`
	VATAmount   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"vat_amount"`
	Total       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
}

// Payment is informational; the journal carries the accounting side.
type Payment struct {
	FactModel
	SaleID     *uuid.UUID      `gorm:"type:uuid;index" json:"sale_id,omitempty"`
	PurchaseID *uuid.UUID      `gorm:"type:uuid;index" json:"purchase_id,omitempty"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Method     PaymentMethod   `gorm:"type:varchar(20);not null" json:"method"`
	Reference  string          `gorm:"type:varchar(100)" json:"reference,omitempty"`
}
