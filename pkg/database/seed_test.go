package database

import (
	"path/filepath"
	"testing"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func openMemory(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := Open(Options{Driver: DriverSQLite, DSN: "file:" + name + "?mode=memory&cache=shared", Log: zerolog.Nop()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func countRows(t *testing.T, db *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(m).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

func TestSeedIsIdempotent(t *testing.T) {
	db := openMemory(t, "seed_idempotent")

	for i := 0; i < 2; i++ {
		if err := Seed(db); err != nil {
			t.Fatalf("seed run %d: %v", i+1, err)
		}
	}

	if n := countRows(t, db, &model.StoreConfig{}); n != 1 {
		t.Errorf("store config rows = %d, want 1", n)
	}
	if n := countRows(t, db, &model.Account{}); n != int64(len(DefaultAccounts)) {
		t.Errorf("accounts = %d, want %d", n, len(DefaultAccounts))
	}
	if n := countRows(t, db, &model.ExpenseCategory{}); n != int64(len(DefaultExpenseCategories)) {
		t.Errorf("expense categories = %d, want %d", n, len(DefaultExpenseCategories))
	}

	cfg, err := repository.NewStoreConfigRepo(db).Get()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.InvoicePrefix != "INV" || cfg.InvoiceNextNumber != 1 || !cfg.VATRate.Equal(DefaultStoreConfig().VATRate) {
		t.Errorf("unexpected defaults %+v", cfg)
	}

	cash, err := repository.NewAccountRepo(db).FindByCode(nil, "1000")
	if err != nil {
		t.Fatal(err)
	}
	if !cash.IsSystem || !cash.Balance.IsZero() {
		t.Errorf("cash account %+v", cash)
	}
}

func TestSeedOperatorsIsIdempotent(t *testing.T) {
	db := openMemory(t, "seed_operators")

	for i := 0; i < 2; i++ {
		if err := SeedOperators(db, zerolog.Nop()); err != nil {
			t.Fatalf("seed run %d: %v", i+1, err)
		}
	}

	if n := countRows(t, db, &model.User{}); n != 1 {
		t.Fatalf("users = %d, want 1", n)
	}
	admin, err := repository.NewUserRepo(db).FindByUsername(DefaultAdminUsername)
	if err != nil {
		t.Fatal(err)
	}
	if !admin.CheckPassword(DefaultAdminPassword) {
		t.Error("default admin password does not verify")
	}
	if !admin.HasPrivilege(model.PrivLicenseManage) || !admin.HasPrivilege(model.PrivAccountingPost) {
		t.Errorf("admin privileges = %v", admin.GetPrivilegeCodes())
	}

	cashier, err := repository.NewRoleRepo(db).FindByCode(model.RoleCashier)
	if err != nil {
		t.Fatal(err)
	}
	if len(cashier.Privileges) != len(model.CashierPrivileges) {
		t.Errorf("cashier privileges = %d, want %d", len(cashier.Privileges), len(model.CashierPrivileges))
	}
}

func TestBackupRequiresSQLiteAndPath(t *testing.T) {
	db := openMemory(t, "backup")
	if err := Backup(db, ""); err == nil {
		t.Fatal("empty path accepted")
	}
	if err := Backup(db, filepath.Join(t.TempDir(), "copy.db")); err != nil {
		t.Fatalf("backup: %v", err)
	}
}
