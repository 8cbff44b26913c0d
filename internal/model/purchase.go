package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseStatus string

const (
	PurchaseReceived  PurchaseStatus = "received"
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCancelled PurchaseStatus = "cancelled"
)

type Purchase struct {
	BaseModel
	ReferenceNumber string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"reference_number"`
	SupplierID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier        *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	UserID          string          `gorm:"type:varchar(64);not null" json:"user_id"`
	PurchaseDate    time.Time       `gorm:"not null;index" json:"purchase_date"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"subtotal"`
	VATAmount       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"vat_amount"`
	Total           decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
	AmountPaid      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount_paid"`
	Status          PurchaseStatus  `gorm:"type:varchar(20);not null" json:"status"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	Items           []PurchaseItem  `gorm:"foreignKey:PurchaseID" json:"items,omitempty"`
	Payments        []Payment       `gorm:"foreignKey:PurchaseID" json:"payments,omitempty"`
}

// Unpaid is the part of the total left on the supplier account.
func (p *Purchase) Unpaid() decimal.Decimal {
	return p.Total.Sub(p.AmountPaid)
}

type PurchaseItem struct {
	FactModel
	PurchaseID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product    *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	VATRate    decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"vat_rate"`
	VATAmount  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"vat_amount"`
	Total      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
}
