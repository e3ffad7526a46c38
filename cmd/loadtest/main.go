package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const defaultSeedStock = int64(1000)

type config struct {
	addr        string
	total       int
	totalSet    bool
	duration    time.Duration
	concurrency int
	timeout     time.Duration
	productID   int64
	productName string
	seedStock   int64
	customerTag string
	outputPath  string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type report struct {
	StartedAt       time.Time        `json:"started_at"`
	DurationSeconds float64          `json:"duration_seconds"`
	TotalRequests   int64            `json:"total_requests"`
	Placed          int64            `json:"placed"`
	Rejected        int64            `json:"rejected"`
	Failed          int64            `json:"failed"`
	ErrorRate       float64          `json:"error_rate"`
	RPS             float64          `json:"rps"`
	Statuses        map[string]int64 `json:"statuses"`
	LatencyMs       latencySummary   `json:"latency_ms"`
	InitialStock    int64            `json:"initial_stock"`
	FinalStock      int64            `json:"final_stock"`
	StockConsistent bool             `json:"stock_consistent"`
}

type collector struct {
	mu        sync.Mutex
	statuses  map[string]int64
	latencies []float64
}

func newCollector() *collector {
	return &collector{statuses: make(map[string]int64)}
}

func (c *collector) record(latency time.Duration, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.statuses[status]++
	c.latencies = append(c.latencies, float64(latency.Microseconds())/1000.0)
}

func (c *collector) buildReport(startedAt time.Time, duration time.Duration, placed, rejected, failed int64) report {
	c.mu.Lock()
	defer c.mu.Unlock()

	statuses := make(map[string]int64, len(c.statuses))
	for status, count := range c.statuses {
		statuses[status] = count
	}

	total := placed + rejected + failed
	result := report{
		StartedAt:       startedAt.UTC(),
		DurationSeconds: duration.Seconds(),
		TotalRequests:   total,
		Placed:          placed,
		Rejected:        rejected,
		Failed:          failed,
		ErrorRate:       ratio(failed, total),
		Statuses:        statuses,
		LatencyMs:       buildLatencySummary(c.latencies),
	}
	if duration > 0 {
		result.RPS = float64(total) / duration.Seconds()
	}
	return result
}

func parseConfig() (config, error) {
	var cfg config
	var timeoutValue string
	var durationValue string

	flag.StringVar(&cfg.addr, "addr", "http://localhost:8080", "storefront API base URL")
	flag.IntVar(&cfg.total, "total", 400, "total order requests in count mode; in duration mode only used when explicitly set")
	flag.StringVar(&durationValue, "duration", "0s", "optional time-based run duration (e.g. 30s, 5m)")
	flag.IntVar(&cfg.concurrency, "concurrency", 40, "number of concurrent workers")
	flag.StringVar(&timeoutValue, "timeout", "5s", "per-request timeout")
	flag.Int64Var(&cfg.productID, "product-id", 0, "existing product to order; 0 creates a fresh product")
	flag.StringVar(&cfg.productName, "product-name", "load-product", "name of the product created when product-id is 0")
	flag.Int64Var(&cfg.seedStock, "seed-stock", defaultSeedStock, "initial stock of the created product")
	flag.StringVar(&cfg.customerTag, "customer-tag", "load", "customer name prefix")
	flag.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")
	flag.Parse()

	timeout, err := time.ParseDuration(strings.TrimSpace(timeoutValue))
	if err != nil {
		return cfg, fmt.Errorf("parse timeout: %w", err)
	}
	cfg.timeout = timeout

	duration, err := time.ParseDuration(strings.TrimSpace(durationValue))
	if err != nil {
		return cfg, fmt.Errorf("parse duration: %w", err)
	}
	cfg.duration = duration

	flag.CommandLine.Visit(func(f *flag.Flag) {
		if f.Name == "total" {
			cfg.totalSet = true
		}
	})

	if cfg.duration < 0 {
		return cfg, errors.New("duration must be >= 0")
	}
	if cfg.duration == 0 && cfg.total <= 0 {
		return cfg, errors.New("total must be > 0 when duration is not set")
	}
	if cfg.concurrency <= 0 {
		return cfg, errors.New("concurrency must be > 0")
	}
	if cfg.timeout <= 0 {
		return cfg, errors.New("timeout must be > 0")
	}
	if cfg.productID < 0 {
		return cfg, errors.New("product-id must be >= 0")
	}
	if cfg.productID == 0 && cfg.seedStock <= 0 {
		return cfg, errors.New("seed-stock must be > 0 when creating a product")
	}
	if strings.TrimSpace(cfg.productName) == "" {
		return cfg, errors.New("product-name is required")
	}
	if strings.TrimSpace(cfg.customerTag) == "" {
		return cfg, errors.New("customer-tag is required")
	}
	cfg.addr = strings.TrimRight(cfg.addr, "/")

	return cfg, nil
}

type productPayload struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Stock       int64  `json:"stock"`
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: cfg.timeout}

	productID := cfg.productID
	var initialStock int64
	if productID == 0 {
		product, createErr := createProduct(client, cfg)
		if createErr != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to create product: %v\n", createErr)
			os.Exit(1)
		}
		productID = product.ProductID
		initialStock = product.Stock
	} else {
		product, getErr := fetchProduct(client, cfg, productID)
		if getErr != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to fetch product %d: %v\n", productID, getErr)
			os.Exit(1)
		}
		initialStock = product.Stock
	}

	startedAt := time.Now()
	runID := fmt.Sprintf("%d-%d", startedAt.UnixNano(), os.Getpid())
	col := newCollector()

	jobs := make(chan int, cfg.concurrency*2)
	var placed, rejected, failed int64
	var wg sync.WaitGroup

	for workerID := 0; workerID < cfg.concurrency; workerID++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				customer := fmt.Sprintf("%s-%s-%d", cfg.customerTag, runID, id)
				switch placeOrder(client, cfg, productID, customer, col) {
				case http.StatusOK:
					atomic.AddInt64(&placed, 1)
				case http.StatusBadRequest:
					atomic.AddInt64(&rejected, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	dispatchJobs(jobs, cfg)
	wg.Wait()

	duration := time.Since(startedAt)
	result := col.buildReport(startedAt, duration, placed, rejected, failed)
	result.InitialStock = initialStock

	final, err := fetchProduct(client, cfg, productID)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to fetch final stock: %v\n", err)
	} else {
		result.FinalStock = final.Stock
		result.StockConsistent = final.Stock >= 0 && initialStock-final.Stock == result.Placed
	}

	printReport(result)
	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
	}

	if result.Failed > 0 || !result.StockConsistent {
		os.Exit(1)
	}
}

func dispatchJobs(jobs chan<- int, cfg config) {
	defer close(jobs)

	if cfg.duration <= 0 {
		for i := 0; i < cfg.total; i++ {
			jobs <- i
		}
		return
	}

	timer := time.NewTimer(cfg.duration)
	defer timer.Stop()

	for i := 0; ; i++ {
		if cfg.totalSet && i >= cfg.total {
			return
		}

		select {
		case <-timer.C:
			return
		case jobs <- i:
		}
	}
}

func createProduct(client *http.Client, cfg config) (productPayload, error) {
	body, err := json.Marshal(map[string]any{
		"productName": cfg.productName,
		"stock":       cfg.seedStock,
	})
	if err != nil {
		return productPayload{}, err
	}

	resp, err := client.Post(cfg.addr+"/products", "application/json", bytes.NewReader(body))
	if err != nil {
		return productPayload{}, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return productPayload{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var product productPayload
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return productPayload{}, err
	}
	return product, nil
}

func fetchProduct(client *http.Client, cfg config, productID int64) (productPayload, error) {
	resp, err := client.Get(cfg.addr + "/products")
	if err != nil {
		return productPayload{}, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return productPayload{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var products []productPayload
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return productPayload{}, err
	}
	for _, product := range products {
		if product.ProductID == productID {
			return product, nil
		}
	}
	return productPayload{}, fmt.Errorf("product %d not found", productID)
}

func placeOrder(client *http.Client, cfg config, productID int64, customer string, col *collector) int {
	body, err := json.Marshal(map[string]any{
		"productId":    productID,
		"customerName": customer,
	})
	if err != nil {
		col.record(0, "encode-error")
		return 0
	}

	start := time.Now()
	resp, err := client.Post(cfg.addr+"/orders", "application/json", bytes.NewReader(body))
	latency := time.Since(start)
	if err != nil {
		col.record(latency, "transport-error")
		return 0
	}
	defer drainAndClose(resp.Body)

	col.record(latency, strconv.Itoa(resp.StatusCode))
	return resp.StatusCode
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}

func writeJSONReport(path string, result report) error {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." || cleanPath == string(filepath.Separator) {
		return errors.New("output path must point to a file")
	}
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output path must be inside current directory: %s", path)
	}

	// #nosec G304 -- path is an explicit CLI output parameter for local load-test reports.
	file, err := os.Create(cleanPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printReport(result report) {
	fmt.Println("Load test summary")
	fmt.Printf("total=%d placed=%d rejected=%d failed=%d error_rate=%.4f\n",
		result.TotalRequests,
		result.Placed,
		result.Rejected,
		result.Failed,
		result.ErrorRate,
	)
	fmt.Printf("duration=%.2fs rps=%.2f\n", result.DurationSeconds, result.RPS)
	fmt.Printf("latency ms: min=%.2f avg=%.2f p50=%.2f p95=%.2f p99=%.2f max=%.2f\n",
		result.LatencyMs.Min,
		result.LatencyMs.Avg,
		result.LatencyMs.P50,
		result.LatencyMs.P95,
		result.LatencyMs.P99,
		result.LatencyMs.Max,
	)
	fmt.Printf("stock: initial=%d final=%d consistent=%t\n",
		result.InitialStock,
		result.FinalStock,
		result.StockConsistent,
	)

	statuses := make([]string, 0, len(result.Statuses))
	for status := range result.Statuses {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		fmt.Printf("status %s: %d\n", status, result.Statuses[status])
	}
}

func buildLatencySummary(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, value := range sorted {
		sum += value
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

func ratio(failed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(failed) / float64(total)
}
