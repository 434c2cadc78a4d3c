package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"riskreport/internal/domain"
	"riskreport/internal/input"
	"riskreport/internal/risk"
	"riskreport/internal/store"
)

const (
	defaultListLimit = 50
	maxBodyBytes     = 8 << 20
)

// Server serves the risk report HTTP API.
type Server struct {
	engine  *risk.Engine
	returns store.ReturnStore // nil disables the dataset routes
	reports store.ReportStore // nil disables persistence
	log     *slog.Logger
}

// NewServer creates a new HTTP API server. returns and reports may be nil.
func NewServer(engine *risk.Engine, returns store.ReturnStore, reports store.ReportStore, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		engine:  engine,
		returns: returns,
		reports: reports,
		log:     log.With("component", "httpapi"),
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/reports", s.handleComputeReport)
	mux.HandleFunc("GET /api/reports", s.handleListReports)
	mux.HandleFunc("GET /api/reports/{id}", s.handleGetReport)
	mux.HandleFunc("GET /api/datasets", s.handleListDatasets)
	mux.HandleFunc("POST /api/datasets/{name}/report", s.handleDatasetReport)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON marshals v before writing anything; a marshal failure is
// reported as a 500.
func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		slog.Error("encoding JSON response", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(append(b, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, risk.ErrDimensionMismatch),
		errors.Is(err, risk.ErrEmptySeries),
		errors.Is(err, risk.ErrInvalidPeriods),
		errors.Is(err, risk.ErrInvalidRate),
		errors.Is(err, input.ErrNotNumeric),
		errors.Is(err, input.ErrWeightCount),
		errors.Is(err, input.ErrWeightSum),
		errors.Is(err, input.ErrNegativeWeight),
		errors.Is(err, store.ErrInvalidName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func (s *Server) handleComputeReport(w http.ResponseWriter, r *http.Request) {
	var req domain.ReportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.respondReport(w, r, req.Table(), reportParams{
		weights: req.Weights,
		assets:  req.AssetCount(),
		rf:      req.RiskFreeRate,
		periods: req.PeriodsPerYear,
		save:    req.Save,
	})
}

func (s *Server) handleDatasetReport(w http.ResponseWriter, r *http.Request) {
	if s.returns == nil {
		writeError(w, http.StatusServiceUnavailable, "dataset storage not configured")
		return
	}
	name := r.PathValue("name")

	var req DatasetReportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	table, err := s.returns.ReadReturns(r.Context(), name)
	if err != nil {
		s.log.Warn("reading dataset", "dataset", name, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.respondReport(w, r, table, reportParams{
		source:  name,
		weights: req.Weights,
		assets:  len(table.Assets),
		rf:      req.RiskFreeRate,
		periods: req.PeriodsPerYear,
		save:    req.Save,
	})
}

type reportParams struct {
	source  string
	weights []float64
	assets  int
	rf      *float64
	periods *int
	save    bool
}

// respondReport validates the weights, runs the engine, optionally persists
// the result and writes it.
func (s *Server) respondReport(w http.ResponseWriter, r *http.Request, table *domain.ReturnTable, p reportParams) {
	if err := input.ValidateWeights(p.weights, p.assets); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	engine := s.engine
	if p.rf != nil || p.periods != nil {
		annual, k := engine.AnnualRiskFree(), engine.PeriodsPerYear()
		if p.rf != nil {
			annual = *p.rf
		}
		if p.periods != nil {
			k = *p.periods
		}
		engine = engine.WithRates(annual, k)
	}

	rep, err := engine.Run(table, p.weights)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	rep.Source = p.source

	if p.save {
		if s.reports == nil {
			writeError(w, http.StatusServiceUnavailable, "report storage not configured")
			return
		}
		id, err := s.reports.SaveReport(r.Context(), rep)
		if err != nil {
			s.log.Error("saving report", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save report")
			return
		}
		rep.ID = id
	}

	writeJSON(w, toReportJSON(rep))
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeError(w, http.StatusServiceUnavailable, "report storage not configured")
		return
	}

	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		limit = n
	}

	reports, err := s.reports.ListReports(r.Context(), limit)
	if err != nil {
		s.log.Error("listing reports", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}

	resp := ReportsJSON{Count: len(reports), Reports: make([]ReportJSON, 0, len(reports))}
	for i := range reports {
		resp.Reports = append(resp.Reports, toReportJSON(&reports[i]))
	}
	writeJSON(w, resp)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeError(w, http.StatusServiceUnavailable, "report storage not configured")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	rep, err := s.reports.GetReport(r.Context(), id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Error("getting report", "id", id, "error", err)
		}
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, toReportJSON(rep))
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	if s.returns == nil {
		writeError(w, http.StatusServiceUnavailable, "dataset storage not configured")
		return
	}

	names, err := s.returns.ListDatasets(r.Context())
	if err != nil {
		s.log.Error("listing datasets", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list datasets")
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, DatasetsJSON{Datasets: names})
}
