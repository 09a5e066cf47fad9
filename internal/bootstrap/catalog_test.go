package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/ravindradesineni/Movie-recommendation/pkg/config"
	"github.com/ravindradesineni/Movie-recommendation/pkg/metrics"
)

const movies = `id,title,genres
1,A,"[{'id': 16, 'name': 'Animation'}]"
2,B,"[{'id': 16, 'name': 'Animation'}, {'id': 35, 'name': 'Comedy'}]"
x,Broken,[]
`

const ratings = `userId,movieId,rating
1,1,5
1,2,4
2,1,3
2,7,2
`

func writeCSVConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	mp := filepath.Join(dir, "movies.csv")
	rp := filepath.Join(dir, "ratings.csv")
	if err := os.WriteFile(mp, []byte(movies), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(rp, []byte(ratings), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Data.Source = "csv"
	cfg.Data.MoviesPath = mp
	cfg.Data.RatingsPath = rp
	cfg.Data.LoadTimeout = 5 * time.Second
	return cfg
}

func TestLoadCatalogFromCSV(t *testing.T) {
	cfg := writeCSVConfig(t)
	src, err := Source(cfg, nil)
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	catalog, stats, err := LoadCatalog(context.Background(), cfg, src, m)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if got := catalog.Titles(); len(got) != 2 {
		t.Errorf("expected 2 titles, got %v", got)
	}
	if stats.MoviesBadID != 1 || stats.RatingsUnmatched != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}

	var out dto.Metric
	if err := m.LoaderDroppedRows.WithLabelValues("rating_unmatched").Write(&out); err != nil {
		t.Fatal(err)
	}
	if out.GetCounter().GetValue() != 1 {
		t.Errorf("expected 1 unmatched rating exported, got %v", out.GetCounter().GetValue())
	}
	if err := m.CatalogSize.WithLabelValues("users").Write(&out); err != nil {
		t.Fatal(err)
	}
	if out.GetGauge().GetValue() != 2 {
		t.Errorf("expected 2 users exported, got %v", out.GetGauge().GetValue())
	}
}

func TestSourceRequiresPostgresConnection(t *testing.T) {
	cfg := writeCSVConfig(t)
	cfg.Data.Source = "postgres"
	if _, err := Source(cfg, nil); err == nil {
		t.Error("expected error without a postgres connection")
	}
}

func TestOptionsRejectsUnknownPolicy(t *testing.T) {
	if _, err := Options(config.RecommenderConfig{DuplicatePolicy: "median"}); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestLoadCatalogLogsPhaseSpans(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))

	cfg := writeCSVConfig(t)
	src, err := Source(cfg, nil)
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	catalog, _, err := LoadCatalog(context.Background(), cfg, src, metrics.NewWithRegistry(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	spans := make(map[string]map[string]any)
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var entry map[string]any
		if err := dec.Decode(&entry); err != nil {
			t.Fatalf("decoding log line: %v", err)
		}
		if entry["msg"] == "span" {
			spans[entry["span"].(string)] = entry
		}
	}

	if got := spans["catalog.load"]["source"]; got != "csv" {
		t.Errorf("expected catalog.load source csv, got %v", got)
	}
	if got := spans["dataset.load"]["merged_rows"]; got != float64(3) {
		t.Errorf("expected dataset.load merged_rows 3, got %v", got)
	}
	if got := spans["catalog.build"]["fingerprint"]; got != catalog.Fingerprint() {
		t.Errorf("expected catalog.build fingerprint %q, got %v", catalog.Fingerprint(), got)
	}
}
