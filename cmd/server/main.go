package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"remittance/internal/config"
	"remittance/internal/db"
	"remittance/internal/handlers"
	"remittance/internal/logging"
	"remittance/internal/services"
	"remittance/internal/settings"
	"remittance/internal/store"
	"remittance/internal/websocket"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, flush := logging.Init(cfg.Log)
	defer flush()

	defaults, err := settings.LoadDefaults(cfg.SettingsDefaultsFile)
	if err != nil {
		logger.Fatal("failed to load settings defaults", zap.Error(err))
	}

	database, err := db.Connect(cfg.DatabaseURL, db.PoolOptions{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	defer database.Close()

	users := store.NewUserStore(database)
	clients := store.NewClientStore(database)
	guarantors := store.NewGuarantorStore(database)
	ledger := store.NewLedgerStore(database)
	transactions := store.NewTransactionStore(database)
	withdraws := store.NewWithdrawStore(database)
	taxLogs := store.NewTaxLogStore(database)
	settingStore := store.NewSettingStore(database)
	audit := store.NewAuditStore(database)
	reports := store.NewReportStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	handler := handlers.New(cfg, handlers.Deps{
		TxRunner:      txRunner,
		Users:         users,
		Clients:       clients,
		Guarantors:    guarantors,
		Ledger:        ledger,
		Transactions:  transactions,
		Withdraws:     withdraws,
		TaxLogs:       taxLogs,
		Settings:      settingStore,
		Audit:         audit,
		Reports:       reports,
		ClientService: services.NewClientService(txRunner, clients, guarantors, ledger, audit, hub),
		LedgerService: services.NewLedgerService(txRunner, clients, ledger, transactions, withdraws, taxLogs, settingStore, audit, hub),
		Hub:           hub,
		Defaults:      defaults,
	})
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("remittance API listening", zap.String("addr", server.Addr), zap.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	logger.Info("server stopped", zap.Int("open_sessions", hub.Sessions()))
}
