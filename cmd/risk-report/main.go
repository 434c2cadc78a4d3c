// Command risk-report computes portfolio risk statistics from a table of
// periodic asset returns and prints a report.
//
// Usage:
//
//	risk-report [-csv sample_returns.csv] [-weights 0.6,0.4] [-json] [-save]
//	risk-report -dataset alpaca -weights 0.5,0.5 -path
//	risk-report -remote localhost:9090 -weights 0.6,0.4
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"riskreport/internal/api"
	"riskreport/internal/config"
	"riskreport/internal/domain"
	"riskreport/internal/input"
	"riskreport/internal/report"
	"riskreport/internal/risk"
	"riskreport/internal/store"
	"riskreport/internal/util"
)

func main() {
	cfgFlag := flag.String("config", "", "config file (default $RISKREPORT_CONFIG or config/riskreport.yaml)")
	csvFlag := flag.String("csv", "", "returns CSV with a Date column (default report.csv_path)")
	datasetFlag := flag.String("dataset", "", "read a stored parquet dataset instead of a CSV")
	weightsFlag := flag.String("weights", "", "comma-separated weights; prompts when empty")
	jsonOut := flag.Bool("json", false, "print the report as JSON")
	save := flag.Bool("save", false, "save the report to the SQLite history")
	showPath := flag.Bool("path", false, "also print the per-period wealth and drawdown path")
	remote := flag.String("remote", "", "compute on a risk-server gRPC address instead of locally")
	flag.Parse()

	cfgPath := *cfgFlag
	if cfgPath == "" {
		cfgPath = "config/riskreport.yaml"
		if p := os.Getenv("RISKREPORT_CONFIG"); p != "" {
			cfgPath = p
		}
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := util.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	ctx := context.Background()

	// Load returns.
	var (
		table  *domain.ReturnTable
		source string
	)
	if *datasetFlag != "" {
		source = *datasetFlag
		table, err = store.NewParquetStore(cfg.Storage.DataDir).ReadReturns(ctx, source)
	} else {
		source = cfg.Report.CSVPath
		if *csvFlag != "" {
			source = *csvFlag
		}
		table, err = store.LoadReturnsCSV(source)
	}
	if err != nil {
		log.Fatalf("loading returns: %v", err)
	}

	// Collect weights.
	var weights []float64
	if *weightsFlag != "" {
		weights, err = input.ParseWeights(*weightsFlag, len(table.Assets))
		if err != nil {
			log.Fatalf("invalid weights: %v", err)
		}
	} else {
		var promptOut io.Writer = os.Stdout
		if *jsonOut {
			promptOut = os.Stderr
		}
		weights, err = input.NewPrompter(os.Stdin, promptOut).Prompt(table.Assets)
		if err != nil {
			log.Fatalf("reading weights: %v", err)
		}
	}

	var rep *domain.Report
	if *remote != "" {
		rep, err = computeRemote(ctx, *remote, table, weights, *save)
	} else {
		rep, err = risk.NewEngine(cfg.Report.RiskFreeRate, cfg.Report.PeriodsPerYear, logger).Run(table, weights)
	}
	if err != nil {
		log.Fatalf("computing report: %v", err)
	}
	rep.Source = source

	if *save && *remote == "" {
		reports, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening report store: %v", err)
		}
		defer reports.Close()

		id, err := reports.SaveReport(ctx, rep)
		if err != nil {
			log.Fatalf("saving report: %v", err)
		}
		rep.ID = id
		logger.Info("report saved", "id", id, "path", cfg.Storage.SQLitePath)
	}

	if *jsonOut {
		err = report.WriteJSON(os.Stdout, rep)
	} else {
		err = report.WriteText(os.Stdout, rep)
	}
	if err == nil && *showPath && !*jsonOut {
		var series []float64
		if series, err = risk.PortfolioReturns(table.Returns, weights); err == nil {
			err = report.WritePath(os.Stdout, table.Labels, risk.DrawdownPath(series))
		}
	}
	if err != nil {
		log.Fatalf("writing report: %v", err)
	}
}

// computeRemote sends the table to a risk-server over gRPC. The server's rate
// convention applies and save persists into the server's history.
func computeRemote(ctx context.Context, addr string, table *domain.ReturnTable, weights []float64, save bool) (*domain.Report, error) {
	conn, err := api.Dial(addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rep, err := api.NewClient(conn).ComputeReport(ctx, &domain.ReportRequest{
		Labels:  table.Labels,
		Assets:  table.Assets,
		Returns: table.Returns,
		Weights: weights,
		Save:    save,
	})
	if err != nil {
		return nil, err
	}
	if save {
		slog.Info("report saved remotely", "id", rep.ID, "addr", addr)
	}
	return rep, nil
}
