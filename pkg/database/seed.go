package database

import (
	"errors"

	"go-pos-ledger/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultAccounts is the chart of accounts installed on a fresh store.
var DefaultAccounts = []model.Account{
	{Code: "1000", NameFr: "Caisse", NameAr: "الصندوق", Type: model.AccountAsset},
	{Code: "1100", NameFr: "Banque", NameAr: "البنك", Type: model.AccountAsset},
	{Code: "1200", NameFr: "Clients", NameAr: "الزبائن", Type: model.AccountAsset},
	{Code: "1300", NameFr: "Stock", NameAr: "المخزون", Type: model.AccountAsset},
	{Code: "1400", NameFr: "TVA déductible", NameAr: "الرسم على القيمة المضافة القابل للخصم", Type: model.AccountAsset},
	{Code: "2000", NameFr: "Fournisseurs", NameAr: "الموردون", Type: model.AccountLiability},
	{Code: "2100", NameFr: "TVA à payer", NameAr: "ضريبة القيمة المضافة", Type: model.AccountLiability},
	{Code: "3000", NameFr: "Capital", NameAr: "رأس المال", Type: model.AccountEquity},
	{Code: "4000", NameFr: "Ventes", NameAr: "المبيعات", Type: model.AccountRevenue},
	{Code: "5000", NameFr: "Coût des marchandises", NameAr: "تكلفة البضائع", Type: model.AccountExpense},
	{Code: "6000", NameFr: "Charges générales", NameAr: "المصاريف العامة", Type: model.AccountExpense},
	{Code: "6100", NameFr: "Loyer", NameAr: "الإيجار", Type: model.AccountExpense, ParentCode: "6000"},
	{Code: "6200", NameFr: "Salaires", NameAr: "الرواتب", Type: model.AccountExpense, ParentCode: "6000"},
	{Code: "6300", NameFr: "Électricité", NameAr: "الكهرباء", Type: model.AccountExpense, ParentCode: "6000"},
}

var DefaultExpenseCategories = []model.ExpenseCategory{
	{Name: "Loyer", NameAr: "الإيجار", AccountCode: "6100"},
	{Name: "Salaires", NameAr: "الرواتب", AccountCode: "6200"},
	{Name: "Électricité", NameAr: "الكهرباء", AccountCode: "6300"},
	{Name: "Eau", NameAr: "الماء", AccountCode: "6000"},
	{Name: "Transport", NameAr: "النقل", AccountCode: "6000"},
	{Name: "Fournitures", NameAr: "اللوازم", AccountCode: "6000"},
}

// DefaultStoreConfig is the settings row of a fresh store.
func DefaultStoreConfig() model.StoreConfig {
	return model.StoreConfig{
		StoreType:          "general",
		StoreName:          "Mon Magasin",
		Currency:           "DZD",
		CurrencySymbol:     "د.ج",
		VATRate:            decimal.NewFromInt(19),
		InvoicePrefix:      "INV",
		InvoiceNextNumber:  1,
		PurchaseNextNumber: 1,
		Language:           "fr",
	}
}

// Seed installs the store settings, the chart of accounts and the expense
// categories. Existing rows are left untouched, so it can run on every start.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.StoreConfig{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			cfg := DefaultStoreConfig()
			if err := tx.Create(&cfg).Error; err != nil {
				return err
			}
		}

		for _, a := range DefaultAccounts {
			var existing model.Account
			err := tx.Where("code = ?", a.Code).First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				account := a
				account.Balance = decimal.Zero
				account.IsSystem = true
				account.IsActive = true
				account.CreatedBy = "system"
				account.UpdatedBy = "system"
				if err := tx.Create(&account).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
		}

		for _, c := range DefaultExpenseCategories {
			var existing model.ExpenseCategory
			err := tx.Where("name = ?", c.Name).First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				category := c
				category.IsActive = true
				category.CreatedBy = "system"
				category.UpdatedBy = "system"
				if err := tx.Create(&category).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
		}
		return nil
	})
}
