package model

// AuditLog records security relevant actions (logins, license activations).
type AuditLog struct {
	FactModel
	UserID    string `gorm:"type:varchar(64);index" json:"user_id,omitempty"`
	Action    string `gorm:"type:varchar(100);not null;index" json:"action"`
	Entity    string `gorm:"column:table_name;type:varchar(100)" json:"table_name,omitempty"`
	RecordID  string `gorm:"type:varchar(64)" json:"record_id,omitempty"`
	OldValues string `gorm:"type:text" json:"old_values,omitempty"`
	NewValues string `gorm:"type:text" json:"new_values,omitempty"`
}
