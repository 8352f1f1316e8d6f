package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	accountingapp "github.com/smbledger/backend/internal/application/accounting"
	bankingapp "github.com/smbledger/backend/internal/application/banking"
	billingapp "github.com/smbledger/backend/internal/application/billing"
	catalogapp "github.com/smbledger/backend/internal/application/catalog"
	reportapp "github.com/smbledger/backend/internal/application/report"
	"github.com/smbledger/backend/internal/infrastructure/cache"
	"github.com/smbledger/backend/internal/infrastructure/config"
	"github.com/smbledger/backend/internal/infrastructure/logger"
	"github.com/smbledger/backend/internal/infrastructure/persistence"
	"github.com/smbledger/backend/internal/interfaces/http/handler"
	"github.com/smbledger/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting smbledger backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Report cache backend
	var reportCache cache.ReportCache
	switch cfg.Cache.Backend {
	case "redis":
		redisCache, err := cache.NewRedisReportCache(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer redisCache.Close()
		reportCache = redisCache
	default:
		memCache := cache.NewInMemoryReportCache()
		defer memCache.Close()
		reportCache = memCache
	}

	// Repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	journalRepo := persistence.NewGormJournalRepository(db.DB)
	generalRepo := persistence.NewGormGeneralJournalRepository(db.DB)
	entryReader := persistence.NewGormLedgerEntryReader(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	bankTxRepo := persistence.NewGormBankTransactionRepository(db.DB)
	sessionRepo := persistence.NewGormReconciliationSessionRepository(db.DB)
	reconRepo := persistence.NewGormBankReconciliationRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	billRepo := persistence.NewGormBillRepository(db.DB)
	poRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	quoteRepo := persistence.NewGormQuotationRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)

	// Application services
	ledgerService := accountingapp.NewLedgerService(accountRepo, journalRepo, generalRepo,
		accountingapp.WithLogger(log.Named("ledger")))
	reconService := bankingapp.NewReconciliationService(paymentRepo, bankTxRepo, sessionRepo,
		reconRepo, accountRepo, journalRepo,
		bankingapp.WithTransactionManager(persistence.NewGormTransactionManager(db.DB)),
		bankingapp.WithLogger(log.Named("banking")))
	documentService := billingapp.NewDocumentService(invoiceRepo, billRepo, poRepo, quoteRepo,
		paymentRepo, billingapp.WithLogger(log.Named("billing")))
	inventoryService := catalogapp.NewInventoryService(itemRepo, movementRepo,
		catalogapp.WithLogger(log.Named("catalog")))
	reportService := reportapp.NewReportService(accountRepo, entryReader,
		reportapp.WithCache(reportCache),
		reportapp.WithCacheTTL(cfg.Cache.ReportTTL),
		reportapp.WithLogger(log.Named("report")))

	// HTTP layer
	r := router.New(cfg.HTTP, log)
	r.Register(handler.NewAccountHandler(ledgerService, handler.WithAccountDetacher(inventoryService)))
	r.Register(handler.NewJournalHandler(ledgerService, handler.WithReportInvalidator(reportService)))
	r.Register(handler.NewDocumentHandler(documentService))
	r.Register(handler.NewBankingHandler(reconService, documentService,
		handler.WithBankingReportInvalidator(reportService)))
	r.Register(handler.NewReportHandler(reportService))
	r.Register(handler.NewItemHandler(inventoryService))
	engine := r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}
