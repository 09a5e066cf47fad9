package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestServerExposesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)
	m.CacheHitsTotal.Inc()
	m.LoaderDroppedRows.WithLabelValues("bad_id").Add(2)

	srv := NewServer(0, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"recommendation_cache_hits_total 1",
		`loader_dropped_rows_total{reason="bad_id"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected scrape to contain %q", want)
		}
	}
}

func TestServerIndexAndUnknownPaths(t *testing.T) {
	srv := NewServer(0, http.NotFoundHandler())

	tests := []struct {
		path string
		code int
	}{
		{"/", http.StatusOK},
		{"/debug", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.code, rec.Code)
		}
	}
}

func TestNewWithRegistryRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewWithRegistry(reg)
	defer func() {
		if recover() == nil {
			t.Error("expected panic registering collectors twice")
		}
	}()
	NewWithRegistry(reg)
}
