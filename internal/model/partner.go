package model

import "github.com/shopspring/decimal"

// Supplier balance is what the store owes.
type Supplier struct {
	BaseModel
	Name     string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	NameAr   string          `gorm:"type:varchar(255)" json:"name_ar"`
	Phone    string          `gorm:"type:varchar(30)" json:"phone"`
	Email    string          `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Address  string          `gorm:"type:text" json:"address"`
	TaxID    string          `gorm:"type:varchar(50)" json:"tax_id"`
	Balance  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"balance"`
	IsActive bool            `gorm:"default:true" json:"is_active"`
}

// Client balance is what the client owes the store.
type Client struct {
	BaseModel
	Name        string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	NameAr      string          `gorm:"type:varchar(255)" json:"name_ar"`
	Phone       string          `gorm:"type:varchar(30)" json:"phone"`
	Email       string          `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Address     string          `gorm:"type:text" json:"address"`
	TaxID       string          `gorm:"type:varchar(50)" json:"tax_id"`
	Balance     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"balance"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"credit_limit" validate:"dec_gte0"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
}

// PartnerUpdate is the partial update shared by suppliers and clients.
// CreditLimit is ignored for suppliers.
type PartnerUpdate struct {
	Name        *string          `json:"name" validate:"omitempty,min=1"`
	NameAr      *string          `json:"name_ar"`
	Phone       *string          `json:"phone"`
	Email       *string          `json:"email" validate:"omitempty,email"`
	Address     *string          `json:"address"`
	TaxID       *string          `json:"tax_id"`
	CreditLimit *decimal.Decimal `json:"credit_limit" validate:"omitempty,dec_gte0"`
	IsActive    *bool            `json:"is_active"`
}

func (u *PartnerUpdate) ApplySupplier(s *Supplier) {
	applyString(&s.Name, u.Name)
	applyString(&s.NameAr, u.NameAr)
	applyString(&s.Phone, u.Phone)
	applyString(&s.Email, u.Email)
	applyString(&s.Address, u.Address)
	applyString(&s.TaxID, u.TaxID)
	if u.IsActive != nil {
		s.IsActive = *u.IsActive
	}
}

func (u *PartnerUpdate) ApplyClient(c *Client) {
	applyString(&c.Name, u.Name)
	applyString(&c.NameAr, u.NameAr)
	applyString(&c.Phone, u.Phone)
	applyString(&c.Email, u.Email)
	applyString(&c.Address, u.Address)
	applyString(&c.TaxID, u.TaxID)
	if u.CreditLimit != nil {
		c.CreditLimit = *u.CreditLimit
	}
	if u.IsActive != nil {
		c.IsActive = *u.IsActive
	}
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
