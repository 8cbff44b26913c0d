package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel handles ID (UUID) and standard Audit Trails
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"` // Soft Delete support

	// Audit User Tracking
	CreatedBy string `json:"created_by"`
	UpdatedBy string `json:"updated_by"`
	DeletedBy string `json:"deleted_by"`
}

// BeforeCreate generates the UUID unless the caller already picked one
func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	return
}

// FactModel is the header of append-only rows (movements, journal lines, items).
// They are never updated nor soft deleted.
type FactModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

func (f *FactModel) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return
}

// Reference tags a row with the business event that produced it.
// It is a back-reference for traceability only.
type Reference struct {
	Type string     `gorm:"column:reference_type;type:varchar(30);index:,composite:ref" json:"reference_type,omitempty"`
	ID   *uuid.UUID `gorm:"column:reference_id;type:uuid;index:,composite:ref" json:"reference_id,omitempty"`
}

const (
	RefSale       = "sale"
	RefSaleVoid   = "sale_void"
	RefPurchase   = "purchase"
	RefExpense    = "expense"
	RefManual     = "manual"
	RefAdjustment = "adjustment"
	RefInitial    = "initial"
)

func NewReference(refType string, id uuid.UUID) Reference {
	return Reference{Type: refType, ID: &id}
}
