package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	Barcode       *string          `gorm:"type:varchar(64);uniqueIndex" json:"barcode,omitempty"`
	SKU           *string          `gorm:"type:varchar(50);uniqueIndex" json:"sku,omitempty"`
	NameFr        string           `gorm:"type:varchar(255);not null" json:"name_fr" validate:"required"`
	NameAr        string           `gorm:"type:varchar(255)" json:"name_ar"`
	Description   string           `gorm:"type:text" json:"description"`
	CategoryID    *uuid.UUID       `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Category      *ProductCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty" validate:"-"`
	PurchasePrice decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"purchase_price" validate:"dec_gte0"`
	SalePrice     decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"sale_price" validate:"dec_gte0"`
	VATRate       decimal.Decimal  `gorm:"type:decimal(6,2);not null" json:"vat_rate" validate:"dec_gte0"`
	StockQuantity int              `gorm:"not null;default:0" json:"stock_quantity"`
	MinStockLevel int              `gorm:"not null;default:5" json:"min_stock_level" validate:"gte=0"`
	Unit          string           `gorm:"type:varchar(20);default:'pcs'" json:"unit"`
	IsActive      bool             `gorm:"default:true" json:"is_active"`
}

// IsLowStock reports whether the quantity reached the alert threshold.
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinStockLevel
}

// DisplayName prefers the primary name and falls back to the secondary one.
func (p *Product) DisplayName() string {
	if p.NameFr != "" {
		return p.NameFr
	}
	return p.NameAr
}

// ProductUpdate is a partial update; nil fields are left unchanged.
type ProductUpdate struct {
	Barcode       *string          `json:"barcode"`
	SKU           *string          `json:"sku"`
	NameFr        *string          `json:"name_fr" validate:"omitempty,min=1"`
	NameAr        *string          `json:"name_ar"`
	Description   *string          `json:"description"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	PurchasePrice *decimal.Decimal `json:"purchase_price" validate:"omitempty,dec_gte0"`
	SalePrice     *decimal.Decimal `json:"sale_price" validate:"omitempty,dec_gte0"`
	VATRate       *decimal.Decimal `json:"vat_rate" validate:"omitempty,dec_gte0"`
	StockQuantity *int             `json:"stock_quantity" validate:"omitempty,gte=0"`
	MinStockLevel *int             `json:"min_stock_level" validate:"omitempty,gte=0"`
	Unit          *string          `json:"unit"`
	IsActive      *bool            `json:"is_active"`
}

// Apply merges the present fields into p. Stock is not touched here: a stock
// change has to go through a movement.
func (u *ProductUpdate) Apply(p *Product) {
	if u.Barcode != nil {
		p.Barcode = emptyToNil(*u.Barcode)
	}
	if u.SKU != nil {
		p.SKU = emptyToNil(*u.SKU)
	}
	if u.NameFr != nil {
		p.NameFr = *u.NameFr
	}
	if u.NameAr != nil {
		p.NameAr = *u.NameAr
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.CategoryID != nil {
		if *u.CategoryID == uuid.Nil {
			p.CategoryID = nil
		} else {
			id := *u.CategoryID
			p.CategoryID = &id
		}
	}
	if u.PurchasePrice != nil {
		p.PurchasePrice = *u.PurchasePrice
	}
	if u.SalePrice != nil {
		p.SalePrice = *u.SalePrice
	}
	if u.VATRate != nil {
		p.VATRate = *u.VATRate
	}
	if u.MinStockLevel != nil {
		p.MinStockLevel = *u.MinStockLevel
	}
	if u.Unit != nil {
		p.Unit = *u.Unit
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
}

type ProductCategory struct {
	BaseModel
	Name      string     `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	NameAr    string     `gorm:"type:varchar(255)" json:"name_ar"`
	ParentID  *uuid.UUID `gorm:"type:uuid" json:"parent_id,omitempty"`
	SortOrder int        `gorm:"default:0" json:"sort_order"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`
}

type CategoryUpdate struct {
	Name      *string    `json:"name" validate:"omitempty,min=1"`
	NameAr    *string    `json:"name_ar"`
	ParentID  *uuid.UUID `json:"parent_id"`
	SortOrder *int       `json:"sort_order"`
	IsActive  *bool      `json:"is_active"`
}

func (u *CategoryUpdate) Apply(c *ProductCategory) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.NameAr != nil {
		c.NameAr = *u.NameAr
	}
	if u.ParentID != nil {
		if *u.ParentID == uuid.Nil {
			c.ParentID = nil
		} else {
			id := *u.ParentID
			c.ParentID = &id
		}
	}
	if u.SortOrder != nil {
		c.SortOrder = *u.SortOrder
	}
	if u.IsActive != nil {
		c.IsActive = *u.IsActive
	}
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
