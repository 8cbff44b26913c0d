package database

import (
	"go-pos-ledger/internal/model"

	"gorm.io/gorm"
)

// Models lists every table of the ledger store in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Privilege{},
		&model.Role{},
		&model.User{},
		&model.StoreConfig{},
		&model.ProductCategory{},
		&model.Product{},
		&model.StockMovement{},
		&model.Account{},
		&model.JournalEntry{},
		&model.Supplier{},
		&model.Client{},
		&model.Sale{},
		&model.SaleItem{},
		&model.Purchase{},
		&model.PurchaseItem{},
		&model.Payment{},
		&model.ExpenseCategory{},
		&model.Expense{},
		&model.AuditLog{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
