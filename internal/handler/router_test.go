package handler

import (
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/config"
	"go-pos-ledger/internal/license"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/service"
	"go-pos-ledger/pkg/database"
	"go-pos-ledger/pkg/jwt"
	"go-pos-ledger/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type grants map[string]bool

func (g grants) HasFeature(name string) bool { return g[name] || g[license.FeatureAll] }

type machine struct{}

func (machine) MACAddress() string { return "aa:bb:cc:dd:ee:ff" }
func (machine) DeviceID() string   { return "till-1" }

// signedIn stands in for RequireAuth with an operator holding every privilege.
func signedIn(c *fiber.Ctx) error {
	codes := make([]string, len(model.DefaultPrivileges))
	for i, p := range model.DefaultPrivileges {
		codes[i] = p.Code
	}
	c.Locals("user_id", uuid.NewString())
	c.Locals("user_username", "admin")
	c.Locals("user_privileges", codes)
	return c.Next()
}

func newApp(t *testing.T, features grants) *fiber.App {
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
		t.Fatal(err)
	}
	if err := database.Seed(db); err != nil {
		t.Fatal(err)
	}
	if err := database.SeedOperators(db, logger.Nop()); err != nil {
		t.Fatal(err)
	}

	userRepo := repository.NewUserRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	cfgRepo := repository.NewStoreConfigRepo(db)
	productRepo := repository.NewProductRepo(db)
	movementRepo := repository.NewStockMovementRepo(db)
	accountRepo := repository.NewAccountRepo(db)
	journalRepo := repository.NewJournalRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	clientRepo := repository.NewClientRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	reportRepo := repository.NewReportRepo(db)

	clock := service.Clock(func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) })
	deps := service.LedgerDeps{
		DB:       db,
		Ledger:   service.NewStockLedger(productRepo, movementRepo, clock),
		Poster:   service.NewJournalPoster(accountRepo, journalRepo, config.MissingAccountStrict, clock, logger.Nop()),
		Accounts: config.DefaultAccounts(),
		Clock:    clock,
		Log:      logger.Nop(),
	}
	userService := service.NewUserService(userRepo, repository.NewPrivilegeRepo(db), repository.NewRoleRepo(db), auditRepo, clock, logger.Nop())
	engine := license.NewEngine(license.Options{
		LicensePath: filepath.Join(t.TempDir(), "license.json"),
		Probe:       machine{},
		Log:         logger.Nop(),
	})

	app := fiber.New()
	RegisterRoutes(app, Handlers{
		Auth:       NewAuthHandler(service.NewAuthService(userRepo, auditRepo, jwt.NewManager("test", time.Hour), nil, time.Hour, clock, logger.Nop())),
		License:    NewLicenseHandler(engine),
		Dashboard:  NewDashboardHandler(service.NewDashboardService(reportRepo, clock)),
		Inventory:  NewInventoryHandler(service.NewInventoryService(deps, productRepo, movementRepo, repository.NewCategoryRepo(db))),
		Sales:      NewSalesHandler(service.NewSalesService(deps, cfgRepo, productRepo, saleRepo, clientRepo, nil)),
		Purchases:  NewPurchaseHandler(service.NewPurchaseService(deps, cfgRepo, productRepo, repository.NewPurchaseRepo(db), supplierRepo)),
		Partners:   NewPartnerHandler(service.NewPartnerService(supplierRepo, clientRepo, logger.Nop())),
		Accounting: NewAccountingHandler(service.NewAccountingService(deps, accountRepo, journalRepo, repository.NewExpenseRepo(db), saleRepo, reportRepo)),
		Reports:    NewReportHandler(service.NewReportService(reportRepo, journalRepo, movementRepo, clientRepo, supplierRepo)),
		Settings:   NewSettingsHandler(service.NewSettingsService(cfgRepo, logger.Nop()), nil),
		Users:      NewUserHandler(userService),
		Roles:      NewRoleHandler(userService),
	}, Guards{RequireAuth: signedIn, Features: features})
	return app
}

func statusOf(t *testing.T, app *fiber.App, method, path, body string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp.StatusCode
}

func TestFeatureGatesStayOnTheirRoutes(t *testing.T) {
	cases := []struct {
		name     string
		features grants
		open     []string
		closed   []string
	}{
		{
			name:     "trial",
			features: grants{license.FeatureBasic: true},
			open:     []string{"/sales", "/products", "/settings", "/users", "/roles", "/privileges", "/dashboard/stats", "/dashboard/stock-movement"},
			closed:   []string{"/accounts", "/journal", "/expenses", "/accounting/trial-balance", "/reports/inventory"},
		},
		{
			name:     "reports only",
			features: grants{license.FeatureBasic: true, FeatureReports: true},
			open:     []string{"/reports/inventory", "/reports/clients", "/settings", "/users"},
			closed:   []string{"/accounts", "/accounting/vat"},
		},
		{
			name:     "accounting only",
			features: grants{FeatureAccounting: true},
			open:     []string{"/accounts", "/accounting/trial-balance", "/settings", "/users"},
			closed:   []string{"/reports/inventory"},
		},
		{
			name:     "all",
			features: grants{license.FeatureAll: true},
			open:     []string{"/accounts", "/reports/inventory", "/settings"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newApp(t, tc.features)
			for _, path := range tc.open {
				if got := statusOf(t, app, "GET", "/api/v1"+path, ""); got != fiber.StatusOK {
					t.Errorf("GET %s = %d, want 200", path, got)
				}
			}
			for _, path := range tc.closed {
				if got := statusOf(t, app, "GET", "/api/v1"+path, ""); got != fiber.StatusForbidden {
					t.Errorf("GET %s = %d, want 403", path, got)
				}
			}
		})
	}
}

func TestLicenseEndpointsAnswerWithResult(t *testing.T) {
	app := newApp(t, grants{license.FeatureBasic: true})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/license/status", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	var status apperr.Result[license.Status]
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 || !status.OK || status.Value.IsValid || !status.Value.IsTrial {
		t.Fatalf("status %d %+v", resp.StatusCode, status)
	}

	req := httptest.NewRequest("POST", "/api/v1/license/activate", strings.NewReader("not a license"))
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	var failed apperr.Result[license.Status]
	if err := json.NewDecoder(resp.Body).Decode(&failed); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 || failed.OK || failed.Error == nil || failed.Error.Kind != apperr.InvalidLicense {
		t.Fatalf("activate %d %+v", resp.StatusCode, failed)
	}

	resp, err = app.Test(httptest.NewRequest("POST", "/api/v1/license/validate", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	var validated apperr.Result[license.Status]
	if err := json.NewDecoder(resp.Body).Decode(&validated); err != nil {
		t.Fatal(err)
	}
	if validated.OK || validated.Error.Kind != apperr.NoLicenseFile || resp.StatusCode != 404 {
		t.Fatalf("validate %d %+v", resp.StatusCode, validated)
	}
}

func TestBackupUnavailableIsValidationError(t *testing.T) {
	app := newApp(t, grants{license.FeatureBasic: true})
	if got := statusOf(t, app, "POST", "/api/v1/settings/backup", ""); got != fiber.StatusBadRequest {
		t.Fatalf("backup = %d", got)
	}
}
