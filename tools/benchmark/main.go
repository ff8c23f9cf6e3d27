// Command benchmark load-tests a running PrintSync API. It seeds a batch of
// prints through the ingestion endpoint, then fires concurrent claim calls
// at each print and reports latency percentiles plus how the contended
// claims resolved. One winner per print means the conditional claim update
// is doing its job under load.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type Config struct {
	APIURL      string
	APIKey      string
	Prints      int // Prints to seed
	Claimants   int // Concurrent claimants per print
	HTTPTimeout time.Duration
}

type result struct {
	latency time.Duration
	status  int
	err     error
}

func main() {
	cfg := parseFlags()

	client := &http.Client{Timeout: cfg.HTTPTimeout}
	ctx := context.Background()

	runID := time.Now().UnixNano()
	ids := make([]string, cfg.Prints)
	for i := range ids {
		ids[i] = fmt.Sprintf("bench-%d-%03d", runID, i)
	}

	fmt.Printf("Seeding %d prints against %s\n", cfg.Prints, cfg.APIURL)
	if err := seedPrints(ctx, client, cfg, ids); err != nil {
		fmt.Fprintf(os.Stderr, "seeding failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Claiming each print with %d concurrent claimants\n", cfg.Claimants)
	results, winners := runClaims(ctx, client, cfg, ids)

	printReport(cfg, ids, results, winners)

	if int(winners.Load()) != cfg.Prints {
		fmt.Fprintf(os.Stderr, "FAIL: expected %d claim winners, got %d\n", cfg.Prints, winners.Load())
		os.Exit(1)
	}
	fmt.Println("OK: exactly one winner per print")
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.APIURL, "url", "http://localhost:8080", "Base URL of the API")
	flag.StringVar(&cfg.APIKey, "key", "", "API key for the ingestion endpoint")
	flag.IntVar(&cfg.Prints, "prints", 20, "Number of prints to seed")
	flag.IntVar(&cfg.Claimants, "claimants", 8, "Concurrent claimants per print")
	flag.DurationVar(&cfg.HTTPTimeout, "timeout", 10*time.Second, "Per-request timeout")
	flag.Parse()

	if cfg.APIKey == "" {
		fmt.Fprintln(os.Stderr, "-key is required")
		os.Exit(1)
	}
	return cfg
}

func seedPrints(ctx context.Context, client *http.Client, cfg Config, ids []string) error {
	batch := make([]map[string]interface{}, len(ids))
	for i, id := range ids {
		batch[i] = map[string]interface{}{
			"id":     id,
			"title":  "Benchmark print " + id,
			"status": "Success",
		}
	}

	payload, err := json.Marshal(batch)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.APIURL+"/prints", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", cfg.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func runClaims(ctx context.Context, client *http.Client, cfg Config, ids []string) ([]result, *atomic.Int64) {
	var (
		mu      sync.Mutex
		results []result
		winners atomic.Int64
		wg      sync.WaitGroup
	)

	for _, id := range ids {
		for c := 0; c < cfg.Claimants; c++ {
			wg.Add(1)
			go func(printID, user string) {
				defer wg.Done()
				r := claim(ctx, client, cfg, printID, user)
				if r.status == http.StatusOK {
					winners.Add(1)
				}
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}(id, fmt.Sprintf("claimant-%02d", c))
		}
	}
	wg.Wait()

	return results, &winners
}

func claim(ctx context.Context, client *http.Client, cfg Config, printID, user string) result {
	payload, _ := json.Marshal(map[string]string{"user": user})

	url := fmt.Sprintf("%s/prints/%s/claim", cfg.APIURL, printID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return result{err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return result{latency: latency, err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	return result{latency: latency, status: resp.StatusCode}
}

func printReport(cfg Config, ids []string, results []result, winners *atomic.Int64) {
	var ok, notFound, failed int
	latencies := make([]time.Duration, 0, len(results))
	for _, r := range results {
		switch {
		case r.err != nil:
			failed++
			continue
		case r.status == http.StatusOK:
			ok++
		case r.status == http.StatusNotFound:
			notFound++
		default:
			failed++
		}
		latencies = append(latencies, r.latency)
	}

	total := len(results)
	fmt.Println()
	fmt.Printf("Claims:      %d (%d prints x %d claimants)\n", total, len(ids), cfg.Claimants)
	fmt.Printf("Won:         %d (%s)\n", ok, percentageString(ok, total))
	fmt.Printf("Lost (404):  %d (%s)\n", notFound, percentageString(notFound, total))
	fmt.Printf("Errors:      %d\n", failed)
	fmt.Printf("Latency p50: %s\n", formatDuration(percentile(latencies, 50)))
	fmt.Printf("Latency p95: %s\n", formatDuration(percentile(latencies, 95)))
	fmt.Printf("Latency p99: %s\n", formatDuration(percentile(latencies, 99)))
}

// percentile returns the p-th percentile latency; zero for an empty set
func percentile(latencies []time.Duration, p int) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := (len(sorted) - 1) * p / 100
	return sorted[idx]
}
