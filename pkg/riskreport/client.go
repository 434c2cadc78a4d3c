// Package riskreport is a Go SDK for the risk-server HTTP API.
package riskreport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Request is the body of POST /api/reports. Nil rate fields use the
// server's configured convention.
type Request struct {
	Labels         []string    `json:"labels,omitempty"`
	Assets         []string    `json:"assets,omitempty"`
	Returns        [][]float64 `json:"returns"`
	Weights        []float64   `json:"weights"`
	RiskFreeRate   *float64    `json:"riskFreeRate,omitempty"`
	PeriodsPerYear *int        `json:"periodsPerYear,omitempty"`
	Save           bool        `json:"save,omitempty"`
}

// Period identifies one period of the portfolio series.
type Period struct {
	Index  int     `json:"index"`
	Label  string  `json:"label,omitempty"`
	Return float64 `json:"return"`
}

// Report is a computed risk report as returned by the server.
type Report struct {
	ID               int64     `json:"id,omitempty"`
	Source           string    `json:"source,omitempty"`
	Assets           []string  `json:"assets"`
	Weights          []float64 `json:"weights"`
	AnnualRiskFree   float64   `json:"annualRiskFree"`
	PeriodsPerYear   int       `json:"periodsPerYear"`
	Periods          int       `json:"periods"`
	Mean             float64   `json:"mean"`
	Volatility       float64   `json:"volatility"`
	PeriodicRiskFree float64   `json:"periodicRiskFree"`
	Sharpe           float64   `json:"sharpe"`
	Best             Period    `json:"best"`
	Worst            Period    `json:"worst"`
	MaxDrawdown      float64   `json:"maxDrawdown"`
	FinalWealth      float64   `json:"finalWealth"`
	TotalReturn      float64   `json:"totalReturn"`
	CreatedAt        time.Time `json:"createdAt"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("risk-server: %d %s", e.StatusCode, e.Message)
}

// Client provides a Go SDK for interacting with the risk-server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new risk-server API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ComputeReport computes a report for the given returns and weights.
func (c *Client) ComputeReport(ctx context.Context, req Request) (*Report, error) {
	var rep Report
	if err := c.do(ctx, http.MethodPost, "/api/reports", req, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// ComputeDatasetReport computes a report over a dataset stored on the server.
func (c *Client) ComputeDatasetReport(ctx context.Context, dataset string, weights []float64, save bool) (*Report, error) {
	body := struct {
		Weights []float64 `json:"weights"`
		Save    bool      `json:"save,omitempty"`
	}{weights, save}

	var rep Report
	if err := c.do(ctx, http.MethodPost, "/api/datasets/"+url.PathEscape(dataset)+"/report", body, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// GetReport retrieves a saved report by ID.
func (c *Client) GetReport(ctx context.Context, id int64) (*Report, error) {
	var rep Report
	if err := c.do(ctx, http.MethodGet, "/api/reports/"+strconv.FormatInt(id, 10), nil, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// ListReports retrieves the most recent saved reports, newest first. A
// non-positive limit uses the server default.
func (c *Client) ListReports(ctx context.Context, limit int) ([]Report, error) {
	path := "/api/reports"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp struct {
		Reports []Report `json:"reports"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Reports, nil
}

// ListDatasets retrieves the names of the datasets stored on the server.
func (c *Client) ListDatasets(ctx context.Context) ([]string, error) {
	var resp struct {
		Datasets []string `json:"datasets"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/datasets", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Datasets, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var e struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
