package model

// Role represents operator roles in the store
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // ADMIN, CASHIER
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleAdmin   = "ADMIN"
	RoleCashier = "CASHIER"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleAdmin,
		Name:        "Administrateur",
		Description: "Full store access with all privileges",
	},
	{
		Code:        RoleCashier,
		Name:        "Caissier",
		Description: "Selling, catalogue lookup and own sales",
	},
}

// CashierPrivileges is the privilege set granted to the CASHIER role.
var CashierPrivileges = []string{
	PrivProductView,
	PrivSaleView,
	PrivSaleCreate,
	PrivPartnerView,
	PrivDashboardView,
}
