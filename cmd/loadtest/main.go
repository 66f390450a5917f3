// Command loadtest drives the recommendation HTTP API with a mixed
// workload of recommend, search and resolve calls and prints a latency
// report.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	Titles      []string
	K           int
}

func main() {
	baseURL := flag.String("url", "http://localhost:8000", "base URL of the recommendation service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	titles := flag.String("titles", "", "comma-separated query titles (defaults to a built-in list)")
	k := flag.Int("k", 10, "recommendations per request")
	flag.Parse()

	cfg := Config{
		BaseURL:     strings.TrimRight(*baseURL, "/"),
		Concurrency: *concurrency,
		Duration:    *duration,
		Titles:      defaultTitles,
		K:           *k,
	}
	if *titles != "" {
		cfg.Titles = strings.Split(*titles, ",")
	}

	fmt.Println("=== Movie Recommender Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Titles:      %d unique\n", len(cfg.Titles))
	fmt.Println()

	stats := runLoadTest(cfg)
	if !printReport(os.Stdout, stats, cfg.Duration) {
		fmt.Println()
		fmt.Println("WARNING: No requests completed. Is the service running?")
		os.Exit(1)
	}
}

// defaultTitles mixes exact titles, typos and missing articles so that
// both the exact and the fuzzy resolution paths see traffic.
var defaultTitles = []string{
	"The Matrix",
	"Teh Matrix",
	"Inception",
	"Inceptoin",
	"Dark Knight",
	"Interstellar",
	"Pulp Fiction",
	"pulp fiction",
	"The Godfather",
	"Godfather",
	"Amelie",
	"Spirited Away",
	"Parasite",
	"Alien",
	"Heat",
}

func runLoadTest(cfg Config) *Stats {
	stats := NewStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	fmt.Print("Running")

	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := workerID; ; i++ {
				select {
				case <-ctx.Done():
					return
				default:
				}

				op, target := requestFor(cfg, i)
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
				if err != nil {
					stats.Record(op, 0, 0, err)
					continue
				}
				start := time.Now()
				resp, err := client.Do(req)
				took := time.Since(start)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					stats.Record(op, took, 0, err)
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				stats.Record(op, took, resp.StatusCode, nil)
			}
		}(w)
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	wg.Wait()
	fmt.Println(" done!")
	fmt.Println()
	return stats
}
