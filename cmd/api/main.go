package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-pos-ledger/internal/config"
	"go-pos-ledger/internal/handler"
	"go-pos-ledger/internal/license"
	"go-pos-ledger/internal/middleware"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/service"
	"go-pos-ledger/internal/ws"
	"go-pos-ledger/pkg/database"
	"go-pos-ledger/pkg/jwt"
	"go-pos-ledger/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on system env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatal().Err(err).Msg("logger setup failed")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	// 2. Setup Database
	dsn := cfg.DBPath
	if cfg.DBDriver == database.DriverPostgres {
		dsn = cfg.PostgresDSN()
	}
	db, err := database.Open(database.Options{
		Driver: cfg.DBDriver,
		DSN:    dsn,
		Debug:  cfg.DBDebug,
		Log:    logger.WithComponent("database"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database open failed")
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	if err := database.Seed(db); err != nil {
		log.Fatal().Err(err).Msg("seeding store data failed")
	}

	// 3. Seed default privileges, roles, and admin operator
	if err := database.SeedOperators(db, logger.WithComponent("seed")); err != nil {
		log.Fatal().Err(err).Msg("seeding operators failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub(logger.WithComponent("ws"))
	go wsHub.Run(ctx)

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	cfgRepo := repository.NewStoreConfigRepo(db)
	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	movementRepo := repository.NewStockMovementRepo(db)
	accountRepo := repository.NewAccountRepo(db)
	journalRepo := repository.NewJournalRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	clientRepo := repository.NewClientRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db)
	expenseRepo := repository.NewExpenseRepo(db)
	reportRepo := repository.NewReportRepo(db)

	clock := service.Clock(func() time.Time { return time.Now().UTC() })
	deps := service.LedgerDeps{
		DB:       db,
		Ledger:   service.NewStockLedger(productRepo, movementRepo, clock),
		Poster:   service.NewJournalPoster(accountRepo, journalRepo, cfg.MissingAccountPolicy, clock, logger.WithComponent("journal")),
		Accounts: cfg.Accounts,
		Notifier: wsHub,
		Clock:    clock,
		Log:      logger.WithComponent("ledger"),
	}
	credit := service.NewCreditPolicy(cfg.CreditLimitPolicy, logger.WithComponent("credit"))

	tokens := jwt.NewManager(cfg.JWTSecret, 24*time.Hour)

	invService := service.NewInventoryService(deps, productRepo, movementRepo, categoryRepo)
	salesService := service.NewSalesService(deps, cfgRepo, productRepo, saleRepo, clientRepo, credit)
	purchaseService := service.NewPurchaseService(deps, cfgRepo, productRepo, purchaseRepo, supplierRepo)
	accountingService := service.NewAccountingService(deps, accountRepo, journalRepo, expenseRepo, saleRepo, reportRepo)
	partnerService := service.NewPartnerService(supplierRepo, clientRepo, logger.WithComponent("partners"))
	settingsService := service.NewSettingsService(cfgRepo, logger.WithComponent("settings"))
	reportService := service.NewReportService(reportRepo, journalRepo, movementRepo, clientRepo, supplierRepo)
	dashService := service.NewDashboardService(reportRepo, clock)
	authService := service.NewAuthService(userRepo, auditRepo, tokens, wsHub, 30*time.Minute, clock, logger.WithComponent("auth"))
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo, auditRepo, clock, logger.WithComponent("users"))

	licenseEngine := license.NewEngine(license.Options{
		LicensePath:   cfg.LicensePath,
		PublicKeyPath: cfg.LicensePublicKeyPath,
		AppVersion:    cfg.AppVersion,
		Audit:         auditRepo,
		Log:           logger.WithComponent("license"),
	})
	if st, err := licenseEngine.Validate(); err != nil {
		log.Warn().Str("kind", string(st.ErrorKind)).Str("reason", st.Error).Msg("running in trial mode")
	} else {
		log.Info().Str("customer", st.CustomerName).Strs("features", st.Features).Msg("license valid")
	}
	go licenseEngine.Watch(ctx, cfg.LicenseCheckInterval)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "POS Ledger " + cfg.AppVersion,
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// 7. Routes
	backup := func(path string) error { return database.Backup(db, path) }
	handler.RegisterRoutes(app, handler.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		License:    handler.NewLicenseHandler(licenseEngine),
		Dashboard:  handler.NewDashboardHandler(dashService),
		Inventory:  handler.NewInventoryHandler(invService),
		Sales:      handler.NewSalesHandler(salesService),
		Purchases:  handler.NewPurchaseHandler(purchaseService),
		Partners:   handler.NewPartnerHandler(partnerService),
		Accounting: handler.NewAccountingHandler(accountingService),
		Reports:    handler.NewReportHandler(reportService),
		Settings:   handler.NewSettingsHandler(settingsService, backup),
		Users:      handler.NewUserHandler(userService),
		Roles:      handler.NewRoleHandler(userService),
	}, handler.Guards{
		RequireAuth: middleware.RequireAuth(tokens, userRepo),
		Features:    licenseEngine,
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !wsHub.Connect(c) {
			return
		}
		defer wsHub.Disconnect(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}
