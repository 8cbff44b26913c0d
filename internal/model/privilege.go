package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "sale:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Sale"
}

const (
	PrivUserView            = "user:view"
	PrivUserCreate          = "user:create"
	PrivUserUpdate          = "user:update"
	PrivUserDelete          = "user:delete"
	PrivUserUpdatePrivilege = "user:update_privilege"
	PrivProductView         = "product:view"
	PrivProductCreate       = "product:create"
	PrivProductUpdate       = "product:update"
	PrivProductDelete       = "product:delete"
	PrivStockAdjust         = "stock:adjust"
	PrivSaleView            = "sale:view"
	PrivSaleCreate          = "sale:create"
	PrivSaleVoid            = "sale:void"
	PrivPurchaseView        = "purchase:view"
	PrivPurchaseCreate      = "purchase:create"
	PrivPartnerView         = "partner:view"
	PrivPartnerManage       = "partner:manage"
	PrivAccountingView      = "accounting:view"
	PrivAccountingPost      = "accounting:post"
	PrivExpenseCreate       = "expense:create"
	PrivReportView          = "report:view"
	PrivReportExport        = "report:export"
	PrivDashboardView       = "dashboard:view"
	PrivSettingsUpdate      = "settings:update"
	PrivLicenseManage       = "license:manage"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: PrivUserView, Name: "View User"},
	{Code: PrivUserCreate, Name: "Create User"},
	{Code: PrivUserUpdate, Name: "Update User"},
	{Code: PrivUserDelete, Name: "Delete User"},
	{Code: PrivUserUpdatePrivilege, Name: "Update User Privileges"},
	// Catalogue
	{Code: PrivProductView, Name: "View Product"},
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivProductDelete, Name: "Deactivate Product"},
	{Code: PrivStockAdjust, Name: "Adjust Stock"},
	// Sales & purchases
	{Code: PrivSaleView, Name: "View Sale"},
	{Code: PrivSaleCreate, Name: "Create Sale"},
	{Code: PrivSaleVoid, Name: "Void Sale"},
	{Code: PrivPurchaseView, Name: "View Purchase"},
	{Code: PrivPurchaseCreate, Name: "Create Purchase"},
	// Counterparties
	{Code: PrivPartnerView, Name: "View Suppliers & Clients"},
	{Code: PrivPartnerManage, Name: "Manage Suppliers & Clients"},
	// Accounting
	{Code: PrivAccountingView, Name: "View Accounting"},
	{Code: PrivAccountingPost, Name: "Post Journal Entry"},
	{Code: PrivExpenseCreate, Name: "Record Expense"},
	// Reports
	{Code: PrivReportView, Name: "View Reports"},
	{Code: PrivReportExport, Name: "Export Reports"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
	// Store
	{Code: PrivSettingsUpdate, Name: "Update Settings"},
	{Code: PrivLicenseManage, Name: "Manage License"},
}
