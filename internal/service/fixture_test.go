package service

import (
	"strings"
	"sync"
	"testing"
	"time"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/config"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/ws"
	"go-pos-ledger/pkg/database"
	"go-pos-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

// recorder keeps published events so tests can check what went out after commit.
type recorder struct {
	mu     sync.Mutex
	events []ws.Event
}

func (r *recorder) Publish(evt ws.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	deps      LedgerDeps
	events    *recorder
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	accounts  repository.AccountRepository
	journal   repository.JournalRepository
	sales     repository.SaleRepository
	clients   repository.ClientRepository
	suppliers repository.SupplierRepository
	purchases repository.PurchaseRepository
	expenses  repository.ExpenseRepository
	reports   repository.ReportRepository
	cfg       repository.StoreConfigRepository
	actor     Actor
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(database.Options{
		Driver: database.DriverSQLite,
		DSN:    "file:" + name + "?mode=memory&cache=shared",
		Log:    logger.Nop(),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.Seed(db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithPolicy(t, config.MissingAccountStrict)
}

func newFixtureWithPolicy(t *testing.T, policy config.MissingAccountPolicy) *fixture {
	t.Helper()
	db := openTestDB(t)
	clock := Clock(func() time.Time { return fixedNow })

	f := &fixture{
		db:        db,
		events:    &recorder{},
		products:  repository.NewProductRepo(db),
		movements: repository.NewStockMovementRepo(db),
		accounts:  repository.NewAccountRepo(db),
		journal:   repository.NewJournalRepo(db),
		sales:     repository.NewSaleRepo(db),
		clients:   repository.NewClientRepo(db),
		suppliers: repository.NewSupplierRepo(db),
		purchases: repository.NewPurchaseRepo(db),
		expenses:  repository.NewExpenseRepo(db),
		reports:   repository.NewReportRepo(db),
		cfg:       repository.NewStoreConfigRepo(db),
		actor:     Actor{ID: "op-1", Name: "Amina"},
	}
	f.deps = LedgerDeps{
		DB:       db,
		Ledger:   NewStockLedger(f.products, f.movements, clock),
		Poster:   NewJournalPoster(f.accounts, f.journal, policy, clock, logger.Nop()),
		Accounts: config.DefaultAccounts(),
		Notifier: f.events,
		Clock:    clock,
		Log:      logger.Nop(),
	}
	return f
}

func (f *fixture) inventory() InventoryService {
	return NewInventoryService(f.deps, f.products, f.movements, repository.NewCategoryRepo(f.db))
}

func (f *fixture) salesService() SalesService {
	return NewSalesService(f.deps, f.cfg, f.products, f.sales, f.clients, nil)
}

func (f *fixture) purchaseService() PurchaseService {
	return NewPurchaseService(f.deps, f.cfg, f.products, f.purchases, f.suppliers)
}

func (f *fixture) accounting() AccountingService {
	return NewAccountingService(f.deps, f.accounts, f.journal, f.expenses, f.sales, f.reports)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) product(t *testing.T, name string, price string, vat string, stock int) *model.Product {
	t.Helper()
	p, err := f.inventory().CreateProduct(&model.Product{
		NameFr:        name,
		PurchasePrice: dec(price).Div(decimal.NewFromInt(2)),
		SalePrice:     dec(price),
		VATRate:       dec(vat),
		StockQuantity: stock,
		MinStockLevel: 5,
	}, f.actor)
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return p
}

func (f *fixture) client(t *testing.T, name string, limit string) *model.Client {
	t.Helper()
	c := &model.Client{Name: name, CreditLimit: dec(limit), Balance: decimal.Zero, IsActive: true}
	if err := f.clients.Create(c); err != nil {
		t.Fatalf("create client: %v", err)
	}
	return c
}

func (f *fixture) supplier(t *testing.T, name string) *model.Supplier {
	t.Helper()
	s := &model.Supplier{Name: name, Balance: decimal.Zero, IsActive: true}
	if err := f.suppliers.Create(s); err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	return s
}

func (f *fixture) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := f.products.FindByID(id)
	if err != nil {
		t.Fatalf("find product: %v", err)
	}
	return p.StockQuantity
}

func (f *fixture) balance(t *testing.T, code string) decimal.Decimal {
	t.Helper()
	a, err := f.accounts.FindByCode(f.db, code)
	if err != nil {
		t.Fatalf("find account %s: %v", code, err)
	}
	return a.Balance
}

func (f *fixture) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(m).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// entryKeys renders a journal line as "code D amount" or "code C amount".
func (f *fixture) entryKeys(t *testing.T, refType string, refID uuid.UUID) map[string]bool {
	t.Helper()
	entries, err := f.journal.FindByReference(refType, refID)
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	codes := map[uuid.UUID]string{}
	accounts, _ := f.accounts.FindAll(false)
	for _, a := range accounts {
		codes[a.ID] = a.Code
	}
	keys := map[string]bool{}
	for _, e := range entries {
		if e.Debit.IsPositive() {
			keys[codes[e.AccountID]+" D "+e.Debit.StringFixed(2)] = true
		}
		if e.Credit.IsPositive() {
			keys[codes[e.AccountID]+" C "+e.Credit.StringFixed(2)] = true
		}
	}
	return keys
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", kind)
	}
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("expected %s, got %s (%v)", kind, got, err)
	}
}
