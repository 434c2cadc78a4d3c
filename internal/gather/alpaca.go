package gather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"riskreport/internal/domain"
	"riskreport/internal/store"
	"riskreport/internal/util"
)

// ---------------------------------------------------------------------------
// Compile-time interface checks
// ---------------------------------------------------------------------------

var _ Gatherer = (*ImportJob)(nil)

// batchSize is the number of symbols per GetMultiBars call.
const batchSize = 100

// barFetcher matches marketdata.Client.GetMultiBars.
type barFetcher func(symbols []string, req marketdata.GetBarsRequest) (map[string][]marketdata.Bar, error)

// AlpacaSource fetches monthly closing prices from the Alpaca market-data
// API, one rate-limited and retried call per batch of symbols.
type AlpacaSource struct {
	fetch      barFetcher
	feed       marketdata.Feed
	limiter    *util.RateLimiter
	retryDelay time.Duration
	log        *slog.Logger
}

// NewAlpacaSource creates an AlpacaSource with the given credentials. An
// empty dataURL uses the SDK default; perMinute <= 0 disables rate limiting.
func NewAlpacaSource(apiKey, apiSecret, dataURL, feed string, perMinute int) *AlpacaSource {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}

	client := marketdata.NewClient(opts)
	return &AlpacaSource{
		fetch:      client.GetMultiBars,
		feed:       marketdata.Feed(feed),
		limiter:    util.NewRateLimiter(perMinute),
		retryDelay: time.Second,
		log:        slog.Default().With("gatherer", "alpaca-monthly"),
	}
}

// MonthlyCloses returns split- and dividend-adjusted monthly closes for
// symbols within r, keyed by upper-case symbol.
func (s *AlpacaSource) MonthlyCloses(ctx context.Context, symbols []string, r DateRange) (map[string][]Close, error) {
	out := make(map[string][]Close, len(symbols))
	for start := 0; start < len(symbols); start += batchSize {
		batch := symbols[start:min(start+batchSize, len(symbols))]

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var bars map[string][]marketdata.Bar
		err := util.Retry(ctx, "GetMultiBars", 3, s.retryDelay, func(ctx context.Context) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var err error
			bars, err = s.fetch(batch, marketdata.GetBarsRequest{
				TimeFrame:  marketdata.NewTimeFrame(1, marketdata.Month),
				Adjustment: marketdata.All,
				Start:      r.Start,
				End:        r.End,
				Feed:       s.feed,
			})
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("GetMultiBars: %w", err)
		}

		for sym, sb := range bars {
			closes := make([]Close, 0, len(sb))
			for _, b := range sb {
				closes = append(closes, Close{Time: b.Timestamp, Price: b.Close})
			}
			out[strings.ToUpper(sym)] = closes
		}
		s.log.Debug("fetched monthly bars", "symbols", len(batch), "returned", len(bars))
	}
	return out, nil
}

// MonthlyReturns fetches closes for symbols and converts them with the
// package-level MonthlyReturns.
func (s *AlpacaSource) MonthlyReturns(ctx context.Context, symbols []string, r DateRange) (*domain.ReturnTable, error) {
	upper := make([]string, len(symbols))
	for i, sym := range symbols {
		upper[i] = strings.ToUpper(strings.TrimSpace(sym))
	}

	closes, err := s.MonthlyCloses(ctx, upper, r)
	if err != nil {
		return nil, err
	}
	for _, sym := range upper {
		if len(closes[sym]) == 0 {
			return nil, fmt.Errorf("no monthly bars for %s", sym)
		}
	}
	return MonthlyReturns(closes, upper)
}

// ---------------------------------------------------------------------------
// ImportJob
// ---------------------------------------------------------------------------

// ImportJob fetches monthly returns for a fixed symbol list and writes them
// to a ReturnStore under a dataset name.
type ImportJob struct {
	source  *AlpacaSource
	store   store.ReturnStore
	dataset string
	symbols []string
	span    DateRange
	log     *slog.Logger
}

// NewImportJob creates an ImportJob.
func NewImportJob(source *AlpacaSource, s store.ReturnStore, dataset string, symbols []string, span DateRange) *ImportJob {
	return &ImportJob{
		source:  source,
		store:   s,
		dataset: dataset,
		symbols: symbols,
		span:    span,
		log:     slog.Default().With("gatherer", "alpaca-import"),
	}
}

// Name returns the gatherer identifier.
func (j *ImportJob) Name() string { return "alpaca-monthly-returns" }

// Run fetches the returns and replaces the dataset in the store.
func (j *ImportJob) Run(ctx context.Context) error {
	runStart := time.Now()
	table, err := j.source.MonthlyReturns(ctx, j.symbols, j.span)
	if err != nil {
		return fmt.Errorf("fetching monthly returns: %w", err)
	}
	if err := j.store.WriteReturns(ctx, j.dataset, table); err != nil {
		return err
	}

	j.log.Info("dataset imported",
		"dataset", j.dataset,
		"symbols", len(table.Assets),
		"periods", table.Periods(),
		"elapsed", time.Since(runStart).Round(time.Millisecond),
	)
	return nil
}
