// Command risk-import fetches monthly adjusted closes from Alpaca, converts
// them to monthly returns and stores them as a parquet dataset.
//
// Usage:
//
//	risk-import -symbols SPY,AGG,GLD -start 2015-01-01 [-end 2024-12-31] [-dataset core] [-csv out.csv]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"riskreport/internal/config"
	"riskreport/internal/gather"
	"riskreport/internal/store"
	"riskreport/internal/util"
)

func main() {
	symbolsFlag := flag.String("symbols", "", "comma-separated symbols (required)")
	startFlag := flag.String("start", "", "first day to fetch, YYYY-MM-DD (required)")
	endFlag := flag.String("end", "", "last day to fetch, YYYY-MM-DD (default today)")
	dataset := flag.String("dataset", "alpaca", "dataset name to write")
	csvOut := flag.String("csv", "", "also write the returns to this CSV file")
	flag.Parse()

	if *symbolsFlag == "" || *startFlag == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfgPath := "config/riskreport.yaml"
	if p := os.Getenv("RISKREPORT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if cfg.Alpaca.APIKey == "" || cfg.Alpaca.APISecret == "" {
		log.Fatalf("alpaca credentials not configured (set ALPACA_API_KEY and ALPACA_API_SECRET)")
	}

	logger := util.NewLogger(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	start, err := time.Parse("2006-01-02", *startFlag)
	if err != nil {
		log.Fatalf("invalid -start: %v", err)
	}
	end := time.Now().UTC()
	if *endFlag != "" {
		if end, err = time.Parse("2006-01-02", *endFlag); err != nil {
			log.Fatalf("invalid -end: %v", err)
		}
	}

	symbols := strings.Split(*symbolsFlag, ",")

	source := gather.NewAlpacaSource(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL,
		cfg.Alpaca.Feed, cfg.Alpaca.RateLimitPerMin)
	pstore := store.NewParquetStore(cfg.Storage.DataDir)

	var job gather.Gatherer = gather.NewImportJob(source, pstore, *dataset, symbols,
		gather.DateRange{Start: start, End: end})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting import", "job", job.Name(), "symbols", symbols, "start", *startFlag, "dataset", *dataset)
	if err := job.Run(ctx); err != nil {
		log.Fatalf("import failed: %v", err)
	}

	if *csvOut != "" {
		table, err := pstore.ReadReturns(ctx, *dataset)
		if err != nil {
			log.Fatalf("reading dataset: %v", err)
		}
		f, err := os.Create(*csvOut)
		if err != nil {
			log.Fatalf("creating %s: %v", *csvOut, err)
		}
		if err := store.WriteReturnsCSV(f, table); err != nil {
			f.Close()
			log.Fatalf("writing %s: %v", *csvOut, err)
		}
		if err := f.Close(); err != nil {
			log.Fatalf("closing %s: %v", *csvOut, err)
		}
		logger.Info("csv written", "path", *csvOut)
	}
}
