// Package treasury looks up the risk-free rate from the US Treasury's
// fiscal data API.
package treasury

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"marketclock/internal/util"
)

const (
	// DefaultBaseURL is the fiscal_service API root.
	DefaultBaseURL = "https://api.fiscaldata.treasury.gov/services/api/fiscal_service"

	// DefaultRiskFreeRate is returned by RiskFreeRate when the lookup fails.
	DefaultRiskFreeRate = 0.02

	ratesPath  = "/v2/accounting/od/avg_interest_rates"
	tbillQuery = "filter=security_desc:eq:Treasury%20Bills&sort=-record_date"
	ratePath   = "data.0.avg_interest_rate_amt"
)

var hundred = decimal.NewFromInt(100)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL         string
	Timeout         time.Duration
	RateLimitPerMin int
	MaxAttempts     int
	Backoff         time.Duration
	Logger          *slog.Logger
}

// Client fetches average interest rates on Treasury securities.
type Client struct {
	baseURL  string
	http     *http.Client
	limiter  *util.RateLimiter
	attempts int
	backoff  time.Duration
	logger   *slog.Logger
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:  opts.BaseURL,
		http:     &http.Client{Timeout: opts.Timeout},
		attempts: opts.MaxAttempts,
		backoff:  opts.Backoff,
		logger:   opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http.Timeout == 0 {
		c.http.Timeout = 10 * time.Second
	}
	if c.attempts <= 0 {
		c.attempts = 1
	}
	if opts.RateLimitPerMin > 0 {
		c.limiter = util.NewRateLimiter(opts.RateLimitPerMin)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// LatestTBillRate returns the most recent average Treasury Bill rate as a
// fraction (4.5% is 0.045), rounded to eight decimal places.
func (c *Client) LatestTBillRate(ctx context.Context) (float64, error) {
	var body []byte
	err := util.Retry(ctx, c.attempts, c.backoff, func() error {
		var err error
		body, err = c.get(ctx, c.baseURL+ratesPath+"?"+tbillQuery)
		if err != nil {
			c.logger.Debug("treasury request failed", "error", err)
		}
		return err
	})
	if err != nil {
		return 0, err
	}

	res := gjson.GetBytes(body, ratePath)
	if !res.Exists() {
		return 0, fmt.Errorf("treasury response has no %s", ratePath)
	}
	pct, err := decimal.NewFromString(res.String())
	if err != nil {
		return 0, fmt.Errorf("parsing rate %q: %w", res.String(), err)
	}

	rate, _ := pct.Div(hundred).Round(8).Float64()
	return rate, nil
}

// RiskFreeRate returns LatestTBillRate, or DefaultRiskFreeRate when the
// lookup fails for any reason.
func (c *Client) RiskFreeRate(ctx context.Context) float64 {
	rate, err := c.LatestTBillRate(ctx)
	if err != nil {
		c.logger.Warn("using default risk-free rate", "rate", DefaultRiskFreeRate, "error", err)
		return DefaultRiskFreeRate
	}
	return rate
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("treasury API: %s", resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, util.Permanent(err)
		}
		return nil, err
	}
	return io.ReadAll(resp.Body)
}
