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

	catalogapp "github.com/medirent/backend/internal/application/catalog"
	financeapp "github.com/medirent/backend/internal/application/finance"
	insuranceapp "github.com/medirent/backend/internal/application/insurance"
	partnerapp "github.com/medirent/backend/internal/application/partner"
	reminderapp "github.com/medirent/backend/internal/application/reminder"
	schedulingapp "github.com/medirent/backend/internal/application/scheduling"
	tradeapp "github.com/medirent/backend/internal/application/trade"
	wizardapp "github.com/medirent/backend/internal/application/wizard"
	"github.com/medirent/backend/internal/domain/finance"
	"github.com/medirent/backend/internal/domain/shared"
	"github.com/medirent/backend/internal/infrastructure/cache"
	"github.com/medirent/backend/internal/infrastructure/config"
	"github.com/medirent/backend/internal/infrastructure/event"
	"github.com/medirent/backend/internal/infrastructure/logger"
	"github.com/medirent/backend/internal/infrastructure/persistence"
	"github.com/medirent/backend/internal/interfaces/http/handler"
	"github.com/medirent/backend/internal/interfaces/http/middleware"
	"github.com/medirent/backend/internal/interfaces/http/router"
)

const wizardPurgeInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting MediRent backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	patientRepo := persistence.NewGormPatientRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	deviceRepo := persistence.NewGormDeviceRepository(db.DB)
	rentalRepo := persistence.NewGormRentalRepository(db.DB)
	periodRepo := persistence.NewGormPaymentPeriodRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	diagnosticRepo := persistence.NewGormDiagnosticRepository(db.DB)
	bondRepo := persistence.NewGormBondRepository(db.DB)
	batchRepo := persistence.NewGormPaymentBatchRepository(db.DB)
	taskRepo := persistence.NewGormTaskRepository(db.DB)
	appointmentRepo := persistence.NewGormAppointmentRepository(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Resubmission guard. Falls back to the in-memory store when Redis is
	// disabled or unreachable.
	idempotencyStore := cache.NewIdempotencyStore(cfg.Redis, log)
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	clock := shared.NewSystemClock()
	reconciliationSvc := finance.NewReconciliationService(clock)

	// Application services
	paymentService := financeapp.NewPaymentService(batchRepo, log,
		financeapp.WithIdempotencyStore(idempotencyStore, shared.IdempotencyConfig{
			Enabled: cfg.Idempotency.Enabled,
			TTL:     cfg.Idempotency.TTL,
		}),
		financeapp.WithEventPublisher(eventBus),
		financeapp.WithReconciliationService(reconciliationSvc),
		financeapp.WithBondRepository(bondRepo),
	)
	bondService := insuranceapp.NewBondService(bondRepo, eventBus, clock, log)
	partnerService := partnerapp.NewPartnerService(patientRepo, companyRepo, log)
	deviceService := catalogapp.NewDeviceService(deviceRepo, log)
	rentalService := tradeapp.NewRentalService(rentalRepo, periodRepo, deviceRepo, eventBus, clock, log)
	saleService := tradeapp.NewSaleService(saleRepo, diagnosticRepo, deviceRepo, eventBus, log)
	schedulingService := schedulingapp.NewSchedulingService(taskRepo, appointmentRepo, clock, log)
	reminderService := reminderapp.NewReminderService(
		taskRepo, appointmentRepo, diagnosticRepo, rentalRepo, periodRepo, bondRepo, saleRepo, clock, log)
	wizardCoordinator := wizardapp.NewCoordinator(paymentService, clock, log)

	// Bond approval settles the pending CNAM records of open batches
	bondApprovedHandler := financeapp.NewBondApprovedHandler(batchRepo, bondRepo, reconciliationSvc, log)
	eventBus.Subscribe(bondApprovedHandler, bondApprovedHandler.EventTypes()...)
	log.Info("Event handlers registered",
		zap.Strings("bond_approved_events", bondApprovedHandler.EventTypes()),
	)

	// Abandoned wizard sessions are purged in the background
	purgeCtx, cancelPurge := context.WithCancel(context.Background())
	defer cancelPurge()
	go func() {
		ticker := time.NewTicker(wizardPurgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-purgeCtx.Done():
				return
			case <-ticker.C:
				if purged := wizardCoordinator.Purge(); purged > 0 {
					log.Info("Purged expired wizard sessions", zap.Int("count", purged))
				}
			}
		}
	}()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	systemHandler := handler.NewSystemHandler(db)
	systemHandler.RegisterRoutes(engine)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewPartnerHandler(partnerService))
	r.Register(handler.NewDeviceHandler(deviceService))
	r.Register(handler.NewRentalHandler(rentalService))
	r.Register(handler.NewSaleHandler(saleService))
	r.Register(handler.NewBondHandler(bondService))
	r.Register(handler.NewPaymentHandler(paymentService))
	r.Register(handler.NewWizardHandler(wizardCoordinator))
	r.Register(handler.NewReminderHandler(reminderService))
	r.Register(handler.NewSchedulingHandler(schedulingService))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
