package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"riskreport/internal/api"
	"riskreport/internal/config"
	"riskreport/internal/httpapi"
	"riskreport/internal/risk"
	"riskreport/internal/store"
	"riskreport/internal/util"
)

func main() {
	// Load config.
	cfgPath := "config/riskreport.yaml"
	if p := os.Getenv("RISKREPORT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := util.NewLogger(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	// Create stores and services.
	returns := store.NewParquetStore(cfg.Storage.DataDir)
	reports, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening report store: %v", err)
	}
	defer reports.Close()

	engine := risk.NewEngine(cfg.Report.RiskFreeRate, cfg.Report.PeriodsPerYear, logger)
	httpSrv := httpapi.NewServer(engine, returns, reports, logger)
	rpcSvc := api.NewRiskService(engine, reports, logger)
	srv := api.NewServer(cfg, httpSrv.Handler(), rpcSvc, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting risk server",
		"http", srv.HTTPAddr(),
		"grpc", srv.GRPCAddr(),
		"riskFreeRate", cfg.Report.RiskFreeRate,
		"periodsPerYear", cfg.Report.PeriodsPerYear,
	)
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
