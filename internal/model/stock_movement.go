package model

import "github.com/google/uuid"

type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjustment:
		return true
	}
	return false
}

// StockMovement is the immutable audit row of one stock change.
// Seq orders the movements of a product; NewStock of Seq n is PreviousStock of Seq n+1.
type StockMovement struct {
	FactModel
	ProductID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_movement_product_seq,priority:1" json:"product_id"`
	Product       *Product     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Seq           int64        `gorm:"not null;uniqueIndex:idx_movement_product_seq,priority:2" json:"seq"`
	Type          MovementType `gorm:"type:varchar(20);not null" json:"type"`
	Quantity      int          `gorm:"not null" json:"quantity"`
	PreviousStock int          `gorm:"not null" json:"previous_stock"`
	NewStock      int          `gorm:"not null" json:"new_stock"`
	Reason        string       `gorm:"type:varchar(255)" json:"reason"`
	Reference     Reference    `gorm:"embedded" json:"reference"`
	UserID        string       `gorm:"type:varchar(64);not null;index" json:"user_id"`
}
