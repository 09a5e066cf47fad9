// Command loadtest drives a running recommender with a mix of ratings,
// genre and user queries and reports throughput, latency percentiles and
// status codes per query kind.
//
// Usage:
//
//	go run ./cmd/loadtest [-url http://localhost:8080] [-concurrency 10] [-duration 30s] [-rps 0]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// query is one request path tagged with the kind it exercises.
type query struct {
	kind string
	path string
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the recommender service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	rps := flag.Float64("rps", 0, "overall request rate cap, 0 for unlimited")
	maxTitles := flag.Int("titles", 200, "number of catalog titles to cycle through")
	maxUser := flag.Int("users", 100, "query user ids 1..users")
	topN := flag.Int("n", 10, "results requested per query")
	flag.Parse()

	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: *concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	titles, err := fetchTitles(client, *baseURL, *maxTitles)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetching titles: %v\n", err)
		os.Exit(1)
	}
	if len(titles) == 0 {
		fmt.Fprintln(os.Stderr, "catalog has no titles")
		os.Exit(1)
	}
	queries := buildQueries(titles, *maxUser, *topN)

	var limiter *rate.Limiter
	if *rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(*rps), *concurrency)
	}

	fmt.Printf("target %s: %d workers for %s over %d queries", *baseURL, *concurrency, *duration, len(queries))
	if limiter != nil {
		fmt.Printf(" at %.0f req/s", *rps)
	}
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	rec := newRecorder()
	start := time.Now()
	run(ctx, client, *baseURL, queries, *concurrency, limiter, rec)
	summary := rec.report(time.Since(start))

	summary.print(os.Stdout)
	if summary.Total == 0 {
		fmt.Fprintln(os.Stderr, "no requests completed; is the service running?")
		os.Exit(1)
	}
}

func fetchTitles(client *http.Client, baseURL string, limit int) ([]string, error) {
	resp, err := client.Get(baseURL + "/api/v1/titles")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var body struct {
		Titles []string `json:"titles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if len(body.Titles) > limit {
		body.Titles = body.Titles[:limit]
	}
	return body.Titles, nil
}

// buildQueries interleaves ratings and genre lookups for every title, then
// appends one user query per id in 1..maxUser.
func buildQueries(titles []string, maxUser, n int) []query {
	queries := make([]query, 0, 2*len(titles)+maxUser)
	for _, t := range titles {
		title := url.QueryEscape(t)
		queries = append(queries,
			query{"ratings", fmt.Sprintf("/api/v1/movies/similar?by=ratings&n=%d&title=%s", n, title)},
			query{"genre", fmt.Sprintf("/api/v1/movies/similar?by=genre&n=%d&title=%s", n, title)},
		)
	}
	for u := 1; u <= maxUser; u++ {
		queries = append(queries, query{"user", fmt.Sprintf("/api/v1/users/%d/recommendations?n=%d", u, n)})
	}
	return queries
}

// run fans the query list out over workers until ctx expires. Worker i
// starts at query i and strides by the worker count.
func run(ctx context.Context, client *http.Client, baseURL string, queries []query, workers int, limiter *rate.Limiter, rec *recorder) {
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := w; ctx.Err() == nil; i += workers {
				if limiter != nil && limiter.Wait(ctx) != nil {
					return nil
				}
				q := queries[i%len(queries)]
				status, elapsed, err := get(ctx, client, baseURL+q.path)
				if ctx.Err() != nil {
					// requests cut off by the deadline are not counted
					return nil
				}
				rec.record(q.kind, status, elapsed, err)
			}
			return nil
		})
	}
	g.Wait()
}

func get(ctx context.Context, client *http.Client, rawURL string) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, 0, err
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, time.Since(start), err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode, time.Since(start), nil
}
