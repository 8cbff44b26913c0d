package handler

import (
	"go-pos-ledger/internal/middleware"
	"go-pos-ledger/internal/model"

	"github.com/gofiber/fiber/v2"
)

// Licensed feature names checked by RequireFeature.
const (
	FeatureAccounting = "accounting"
	FeatureReports    = "reports"
)

// Handlers groups every HTTP handler mounted under /api/v1.
type Handlers struct {
	Auth       *AuthHandler
	License    *LicenseHandler
	Dashboard  *DashboardHandler
	Inventory  *InventoryHandler
	Sales      *SalesHandler
	Purchases  *PurchaseHandler
	Partners   *PartnerHandler
	Accounting *AccountingHandler
	Reports    *ReportHandler
	Settings   *SettingsHandler
	Users      *UserHandler
	Roles      *RoleHandler
}

// Guards are the access checks applied by RegisterRoutes.
type Guards struct {
	RequireAuth fiber.Handler
	Features    middleware.FeatureChecker
}

// RegisterRoutes mounts the API. Feature gates are attached per route or on a
// prefixed group so that they never reach routes outside their feature.
func RegisterRoutes(app *fiber.App, h Handlers, g Guards) {
	api := app.Group("/api/v1")
	priv := middleware.RequirePrivilege
	requireAuth := g.RequireAuth

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Post("/reset-password", h.Auth.ResetPassword)
	auth.Post("/validate-token", h.Auth.ValidateToken)
	auth.Post("/heartbeat", requireAuth, h.Auth.Heartbeat)

	// The activation screen works before anyone can log in.
	lic := api.Group("/license")
	lic.Get("/status", h.License.GetStatus)
	lic.Get("/machine", h.License.GetMachineInfo)
	lic.Post("/request", h.License.GenerateRequest)
	lic.Post("/activate", h.License.Activate)
	lic.Post("/validate", h.License.Revalidate)
	lic.Delete("", requireAuth, priv(model.PrivLicenseManage), h.License.Deactivate)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	// Dashboard
	protected.Get("/dashboard/stats", priv(model.PrivDashboardView), h.Dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", priv(model.PrivDashboardView), h.Dashboard.GetStockMovement)

	// Catalogue
	inv := h.Inventory
	protected.Get("/products", priv(model.PrivProductView), inv.GetProducts)
	protected.Get("/products/low-stock", priv(model.PrivProductView), inv.GetLowStock)
	protected.Get("/products/barcode/:code", priv(model.PrivProductView), inv.GetProductByBarcode)
	protected.Get("/products/:id", priv(model.PrivProductView), inv.GetProduct)
	protected.Get("/products/:id/verify", priv(model.PrivStockAdjust), inv.VerifyStock)
	protected.Post("/products", priv(model.PrivProductCreate), inv.CreateProduct)
	protected.Put("/products/:id", priv(model.PrivProductUpdate), inv.UpdateProduct)
	protected.Delete("/products/:id", priv(model.PrivProductDelete), inv.DeactivateProduct)

	protected.Get("/categories", priv(model.PrivProductView), inv.GetCategories)
	protected.Post("/categories", priv(model.PrivProductCreate), inv.CreateCategory)
	protected.Put("/categories/:id", priv(model.PrivProductUpdate), inv.UpdateCategory)

	protected.Get("/stock/movements", priv(model.PrivProductView), inv.GetMovements)
	protected.Post("/stock/movements", priv(model.PrivStockAdjust), inv.CreateMovement)

	// Sales
	protected.Get("/sales", priv(model.PrivSaleView), h.Sales.GetSales)
	protected.Get("/sales/summary", priv(model.PrivSaleView), h.Sales.GetDailySummary)
	protected.Get("/sales/:id", priv(model.PrivSaleView), h.Sales.GetSale)
	protected.Post("/sales", priv(model.PrivSaleCreate), h.Sales.CreateSale)
	protected.Post("/sales/:id/void", priv(model.PrivSaleVoid), h.Sales.VoidSale)

	// Purchases
	protected.Get("/purchases", priv(model.PrivPurchaseView), h.Purchases.GetPurchases)
	protected.Get("/purchases/:id", priv(model.PrivPurchaseView), h.Purchases.GetPurchase)
	protected.Post("/purchases", priv(model.PrivPurchaseCreate), h.Purchases.CreatePurchase)

	// Suppliers & clients
	p := h.Partners
	protected.Get("/suppliers", priv(model.PrivPartnerView), p.GetSuppliers)
	protected.Get("/suppliers/:id", priv(model.PrivPartnerView), p.GetSupplier)
	protected.Post("/suppliers", priv(model.PrivPartnerManage), p.CreateSupplier)
	protected.Put("/suppliers/:id", priv(model.PrivPartnerManage), p.UpdateSupplier)
	protected.Delete("/suppliers/:id", priv(model.PrivPartnerManage), p.DeactivateSupplier)
	protected.Get("/clients", priv(model.PrivPartnerView), p.GetClients)
	protected.Get("/clients/:id", priv(model.PrivPartnerView), p.GetClient)
	protected.Post("/clients", priv(model.PrivPartnerManage), p.CreateClient)
	protected.Put("/clients/:id", priv(model.PrivPartnerManage), p.UpdateClient)
	protected.Delete("/clients/:id", priv(model.PrivPartnerManage), p.DeactivateClient)

	// Accounting (licensed feature, gated per route)
	acct := middleware.RequireFeature(g.Features, FeatureAccounting)
	a := h.Accounting
	protected.Get("/accounts", acct, priv(model.PrivAccountingView), a.GetAccounts)
	protected.Get("/journal", acct, priv(model.PrivAccountingView), a.GetJournal)
	protected.Post("/journal", acct, priv(model.PrivAccountingPost), a.PostEntry)
	protected.Get("/expenses", acct, priv(model.PrivAccountingView), a.GetExpenses)
	protected.Get("/expense-categories", acct, priv(model.PrivAccountingView), a.GetExpenseCategories)
	protected.Post("/expenses", acct, priv(model.PrivExpenseCreate), a.RecordExpense)
	protected.Get("/accounting/profit-loss", acct, priv(model.PrivAccountingView), a.GetProfitAndLoss)
	protected.Get("/accounting/vat", acct, priv(model.PrivAccountingView), a.GetVATSummary)
	protected.Get("/accounting/cashier", acct, priv(model.PrivAccountingView), a.GetCashierSummary)
	protected.Get("/accounting/trial-balance", acct, priv(model.PrivAccountingView), a.GetTrialBalance)

	// Reports (licensed feature)
	reports := protected.Group("/reports", middleware.RequireFeature(g.Features, FeatureReports))
	reports.Get("/inventory", priv(model.PrivReportView), h.Reports.GetInventory)
	reports.Get("/clients", priv(model.PrivReportView), h.Reports.GetClientBalances)
	reports.Get("/suppliers", priv(model.PrivReportView), h.Reports.GetSupplierBalances)
	reports.Get("/export/journal", priv(model.PrivReportExport), h.Reports.ExportJournal)
	reports.Get("/export/inventory", priv(model.PrivReportExport), h.Reports.ExportInventory)
	reports.Get("/export/movements", priv(model.PrivReportExport), h.Reports.ExportMovements)

	// Settings
	protected.Get("/settings", h.Settings.GetSettings)
	protected.Put("/settings", priv(model.PrivSettingsUpdate), h.Settings.UpdateSettings)
	protected.Post("/settings/backup", priv(model.PrivSettingsUpdate), h.Settings.Backup)

	// Operators
	protected.Get("/users", priv(model.PrivUserView), h.Users.GetUsers)
	protected.Get("/users/:id", priv(model.PrivUserView), h.Users.GetUser)
	protected.Post("/users", priv(model.PrivUserCreate), h.Users.CreateUser)
	protected.Put("/users/:id", priv(model.PrivUserUpdate), h.Users.UpdateUser)
	protected.Delete("/users/:id", priv(model.PrivUserDelete), h.Users.DeleteUser)
	protected.Put("/users/:id/privileges", priv(model.PrivUserUpdatePrivilege), h.Users.UpdateUserPrivileges)
	protected.Get("/roles", h.Roles.GetRoles)
	protected.Get("/privileges", h.Roles.GetPrivileges)
}
