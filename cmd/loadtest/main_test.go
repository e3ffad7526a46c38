package main

import (
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func withCLIArgs(t *testing.T, args []string, fn func()) {
	t.Helper()

	oldArgs := os.Args
	oldCommandLine := flag.CommandLine

	os.Args = append([]string{"loadtest"}, args...)
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	flag.CommandLine = fs

	defer func() {
		os.Args = oldArgs
		flag.CommandLine = oldCommandLine
	}()

	fn()
}

func TestParseConfig_Defaults(t *testing.T) {
	withCLIArgs(t, nil, func() {
		cfg, err := parseConfig()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.addr != "http://localhost:8080" {
			t.Errorf("unexpected addr: %s", cfg.addr)
		}
		if cfg.total != 400 {
			t.Errorf("unexpected total: %d", cfg.total)
		}
		if cfg.concurrency != 40 {
			t.Errorf("unexpected concurrency: %d", cfg.concurrency)
		}
		if cfg.timeout != 5*time.Second {
			t.Errorf("unexpected timeout: %s", cfg.timeout)
		}
		if cfg.productID != 0 {
			t.Errorf("unexpected product id: %d", cfg.productID)
		}
		if cfg.seedStock != defaultSeedStock {
			t.Errorf("unexpected seed stock: %d", cfg.seedStock)
		}
	})
}

func TestParseConfig_TrimsTrailingSlash(t *testing.T) {
	withCLIArgs(t, []string{"-addr=http://localhost:8080/"}, func() {
		cfg, err := parseConfig()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.addr != "http://localhost:8080" {
			t.Errorf("expected trimmed addr, got %s", cfg.addr)
		}
	})
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "zero total", args: []string{"-total=0"}, want: "total must be > 0"},
		{name: "zero concurrency", args: []string{"-concurrency=0"}, want: "concurrency must be > 0"},
		{name: "bad timeout", args: []string{"-timeout=0s"}, want: "timeout must be > 0"},
		{name: "negative product id", args: []string{"-product-id=-1"}, want: "product-id must be >= 0"},
		{name: "zero seed stock", args: []string{"-seed-stock=0"}, want: "seed-stock must be > 0"},
		{name: "empty product name", args: []string{"-product-name= "}, want: "product-name is required"},
		{name: "empty customer tag", args: []string{"-customer-tag= "}, want: "customer-tag is required"},
		{name: "negative duration", args: []string{"-duration=-1s"}, want: "duration must be >= 0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			withCLIArgs(t, tc.args, func() {
				_, err := parseConfig()
				if err == nil || !strings.Contains(err.Error(), tc.want) {
					t.Fatalf("expected error containing %q, got %v", tc.want, err)
				}
			})
		})
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}

	if got := percentile(sorted, 50); got != 3 {
		t.Errorf("expected p50=3, got %f", got)
	}
	if got := percentile(sorted, 100); got != 5 {
		t.Errorf("expected p100=5, got %f", got)
	}
	if got := percentile(nil, 50); got != 0 {
		t.Errorf("expected 0 for empty slice, got %f", got)
	}
	if got := percentile([]float64{7}, 95); got != 7 {
		t.Errorf("expected single value, got %f", got)
	}
}

func TestBuildLatencySummary(t *testing.T) {
	summary := buildLatencySummary([]float64{4, 1, 3, 2})

	if summary.Min != 1 || summary.Max != 4 {
		t.Errorf("unexpected min/max: %+v", summary)
	}
	if summary.Avg != 2.5 {
		t.Errorf("unexpected avg: %f", summary.Avg)
	}

	empty := buildLatencySummary(nil)
	if empty != (latencySummary{}) {
		t.Errorf("expected zero summary, got %+v", empty)
	}
}

func TestRatio(t *testing.T) {
	if got := ratio(1, 4); got != 0.25 {
		t.Errorf("expected 0.25, got %f", got)
	}
	if got := ratio(1, 0); got != 0 {
		t.Errorf("expected 0 for zero total, got %f", got)
	}
}

func TestCollector_BuildReport(t *testing.T) {
	col := newCollector()
	col.record(10*time.Millisecond, "200")
	col.record(20*time.Millisecond, "200")
	col.record(5*time.Millisecond, "400")

	result := col.buildReport(time.Now(), time.Second, 2, 1, 0)

	if result.TotalRequests != 3 {
		t.Errorf("expected 3 requests, got %d", result.TotalRequests)
	}
	if result.Placed != 2 || result.Rejected != 1 || result.Failed != 0 {
		t.Errorf("unexpected counters: %+v", result)
	}
	if result.Statuses["200"] != 2 || result.Statuses["400"] != 1 {
		t.Errorf("unexpected statuses: %+v", result.Statuses)
	}
	if result.RPS != 3 {
		t.Errorf("expected rps 3, got %f", result.RPS)
	}
}

func TestDispatchJobs_CountMode(t *testing.T) {
	cfg := config{total: 5}
	jobs := make(chan int, 10)

	dispatchJobs(jobs, cfg)

	var got []int
	for id := range jobs {
		got = append(got, id)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 jobs, got %d", len(got))
	}
}

func TestWriteJSONReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	if err := writeJSONReport(path, report{TotalRequests: 7}); err != nil {
		t.Fatalf("write report: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	var got report
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if got.TotalRequests != 7 {
		t.Errorf("expected 7 requests, got %d", got.TotalRequests)
	}
}

func TestWriteJSONReport_RejectsBadPath(t *testing.T) {
	if err := writeJSONReport(".", report{}); err == nil {
		t.Error("expected error for current directory path")
	}
	if err := writeJSONReport("../outside.json", report{}); err == nil {
		t.Error("expected error for path outside current directory")
	}
}

func TestPlaceOrderAgainstFakeServer(t *testing.T) {
	var remaining int64 = 2
	var mu sync.Mutex

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/orders":
			mu.Lock()
			defer mu.Unlock()
			if remaining <= 0 {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			remaining--
			_ = json.NewEncoder(w).Encode(map[string]any{"orderId": 1})
		case r.Method == http.MethodGet && r.URL.Path == "/products":
			mu.Lock()
			defer mu.Unlock()
			_ = json.NewEncoder(w).Encode([]productPayload{{ProductID: 1, ProductName: "x", Stock: remaining}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cfg := config{addr: srv.URL, timeout: time.Second}
	client := &http.Client{Timeout: cfg.timeout}
	col := newCollector()

	var placed, rejected int64
	for i := 0; i < 3; i++ {
		switch placeOrder(client, cfg, 1, "load-test", col) {
		case http.StatusOK:
			atomic.AddInt64(&placed, 1)
		case http.StatusBadRequest:
			atomic.AddInt64(&rejected, 1)
		}
	}

	if placed != 2 || rejected != 1 {
		t.Fatalf("expected 2 placed and 1 rejected, got %d/%d", placed, rejected)
	}

	product, err := fetchProduct(client, cfg, 1)
	if err != nil {
		t.Fatalf("fetch product: %v", err)
	}
	if product.Stock != 0 {
		t.Errorf("expected final stock 0, got %d", product.Stock)
	}
}
