package model

import "github.com/shopspring/decimal"

// StoreConfig is the single settings row. The document counters live here and
// are only incremented inside the transaction that consumes them.
type StoreConfig struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	StoreType          string          `gorm:"type:varchar(50);not null" json:"store_type"`
	StoreName          string          `gorm:"type:varchar(255);not null" json:"store_name"`
	StoreNameAr        string          `gorm:"type:varchar(255)" json:"store_name_ar"`
	Address            string          `gorm:"type:text" json:"address"`
	Phone              string          `gorm:"type:varchar(30)" json:"phone"`
	Email              string          `gorm:"type:varchar(255)" json:"email"`
	TaxID              string          `gorm:"type:varchar(50)" json:"tax_id"`
	Currency           string          `gorm:"type:varchar(10);not null" json:"currency"`
	CurrencySymbol     string          `gorm:"type:varchar(10)" json:"currency_symbol"`
	VATRate            decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"vat_rate"`
	InvoicePrefix      string          `gorm:"type:varchar(20);not null" json:"invoice_prefix"`
	InvoiceNextNumber  int64           `gorm:"not null" json:"invoice_next_number"`
	PurchaseNextNumber int64           `gorm:"not null" json:"purchase_next_number"`
	Language           string          `gorm:"type:varchar(5);not null" json:"language"`
}

// StoreConfigUpdate edits settings. Counters are not editable.
type StoreConfigUpdate struct {
	StoreType      *string          `json:"store_type"`
	StoreName      *string          `json:"store_name" validate:"omitempty,min=1"`
	StoreNameAr    *string          `json:"store_name_ar"`
	Address        *string          `json:"address"`
	Phone          *string          `json:"phone"`
	Email          *string          `json:"email" validate:"omitempty,email"`
	TaxID          *string          `json:"tax_id"`
	Currency       *string          `json:"currency" validate:"omitempty,min=1"`
	CurrencySymbol *string          `json:"currency_symbol"`
	VATRate        *decimal.Decimal `json:"vat_rate" validate:"omitempty,dec_gte0"`
	InvoicePrefix  *string          `json:"invoice_prefix" validate:"omitempty,min=1,max=20"`
	Language       *string          `json:"language" validate:"omitempty,oneof=fr ar"`
}

func (u *StoreConfigUpdate) Apply(c *StoreConfig) {
	applyString(&c.StoreType, u.StoreType)
	applyString(&c.StoreName, u.StoreName)
	applyString(&c.StoreNameAr, u.StoreNameAr)
	applyString(&c.Address, u.Address)
	applyString(&c.Phone, u.Phone)
	applyString(&c.Email, u.Email)
	applyString(&c.TaxID, u.TaxID)
	applyString(&c.Currency, u.Currency)
	applyString(&c.CurrencySymbol, u.CurrencySymbol)
	if u.VATRate != nil {
		c.VATRate = *u.VATRate
	}
	applyString(&c.InvoicePrefix, u.InvoicePrefix)
	applyString(&c.Language, u.Language)
}
