package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/cognitionx/trackerx/internal/config"
	"github.com/cognitionx/trackerx/internal/hierarchy"
	"github.com/cognitionx/trackerx/internal/repository/mongodb"
	"github.com/cognitionx/trackerx/internal/repository/sheets"
	"github.com/cognitionx/trackerx/internal/scheduler"
	"github.com/cognitionx/trackerx/internal/server/handlers"
	"github.com/cognitionx/trackerx/internal/server/router"
	cancellationsvc "github.com/cognitionx/trackerx/internal/service/cancellation"
	"github.com/cognitionx/trackerx/internal/service/dashboard"
	reportingsvc "github.com/cognitionx/trackerx/internal/service/reporting"
	"github.com/cognitionx/trackerx/pkg/clients/frappe"
	"github.com/cognitionx/trackerx/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
	if err != nil {
		baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
	}

	ledger, err := mongodb.NewMongoDBLedger(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb ledger", zap.Error(err))
	}
	defer func() {
		if err := ledger.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	frappeClient := frappe.NewClient(cfg.Frappe)

	ctrl := dashboard.NewController(frappeClient, ledger, cfg.Frappe.SessionUser,
		cfg.Dashboard.SearchDebounce, baseLogger.Named("svc.dashboard"))
	defer ctrl.Close()

	reportingSvc := reportingsvc.NewService(sheetsRepo, ledger, baseLogger.Named("svc.reporting"))
	cancelSvc := cancellationsvc.NewService(frappeClient, baseLogger.Named("svc.cancellation"))
	engine := hierarchy.NewEngine(nil, baseLogger.Named("svc.hierarchy"))

	dashboardHandler := handlers.NewDashboardHandler(ctrl, baseLogger.Named("handlers.dashboard"))
	orderHandler := handlers.NewOrderHandler(engine, cancelSvc, baseLogger.Named("handlers.orders"))
	ginEngine := router.New(dashboardHandler, orderHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, reportingSvc, ctrl, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      ginEngine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
