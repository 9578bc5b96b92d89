package treasury

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLatestTBillRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ratesPath {
			t.Errorf("path = %q, want %q", r.URL.Path, ratesPath)
		}
		q := r.URL.Query()
		if got := q.Get("filter"); got != "security_desc:eq:Treasury Bills" {
			t.Errorf("filter = %q", got)
		}
		if got := q.Get("sort"); got != "-record_date" {
			t.Errorf("sort = %q", got)
		}
		_, _ = w.Write([]byte(`{"data":[
			{"record_date":"2024-05-31","security_desc":"Treasury Bills","avg_interest_rate_amt":"5.347"},
			{"record_date":"2024-04-30","security_desc":"Treasury Bills","avg_interest_rate_amt":"5.351"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, Logger: quietLogger()})
	rate, err := c.LatestTBillRate(context.Background())
	if err != nil {
		t.Fatalf("LatestTBillRate: %v", err)
	}
	if rate != 0.05347 {
		t.Errorf("rate = %v, want 0.05347", rate)
	}
}

func TestLatestTBillRateRounds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"avg_interest_rate_amt":"1.2345678912"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, Logger: quietLogger()})
	rate, err := c.LatestTBillRate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rate != 0.01234568 {
		t.Errorf("rate = %v, want 0.01234568", rate)
	}
}

func TestLatestTBillRateEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, Logger: quietLogger()})
	if _, err := c.LatestTBillRate(context.Background()); err == nil {
		t.Error("LatestTBillRate should fail on empty data")
	}
}

func TestRiskFreeRateFallback(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Options{
		BaseURL:         srv.URL,
		MaxAttempts:     3,
		RateLimitPerMin: 60_000,
		Logger:          quietLogger(),
	})
	if got := c.RiskFreeRate(context.Background()); got != DefaultRiskFreeRate {
		t.Errorf("RiskFreeRate = %v, want %v", got, DefaultRiskFreeRate)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestRiskFreeRateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(Options{BaseURL: "http://127.0.0.1:0", RateLimitPerMin: 1, Logger: quietLogger()})
	if got := c.RiskFreeRate(ctx); got != DefaultRiskFreeRate {
		t.Errorf("RiskFreeRate = %v, want %v", got, DefaultRiskFreeRate)
	}
}

func TestLatestTBillRateClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "bad filter", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, MaxAttempts: 3, Logger: quietLogger()})
	if _, err := c.LatestTBillRate(context.Background()); err == nil {
		t.Fatal("LatestTBillRate should fail on 400")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1", got)
	}
}
