package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRunReportsWorstStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all up", []Status{StatusUp, StatusUp}, StatusUp},
		{"one degraded", []Status{StatusUp, StatusDegraded}, StatusDegraded},
		{"down wins", []Status{StatusDegraded, StatusDown, StatusUp}, StatusDown},
		{"no checks", nil, StatusUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			for i, s := range tt.statuses {
				s := s
				c.Register(string(rune('a'+i)), func(ctx context.Context) ComponentHealth {
					return ComponentHealth{Status: s}
				})
			}
			report := c.Run(context.Background())
			if report.Status != tt.want {
				t.Errorf("expected %s, got %s", tt.want, report.Status)
			}
			if len(report.Components) != len(tt.statuses) {
				t.Errorf("expected %d components, got %d", len(tt.statuses), len(report.Components))
			}
		})
	}
}

func TestPingCheck(t *testing.T) {
	ok := Ping(func(ctx context.Context) error { return nil }, StatusDown)(context.Background())
	if ok.Status != StatusUp {
		t.Errorf("expected up, got %s", ok.Status)
	}
	failed := Ping(func(ctx context.Context) error { return errors.New("refused") }, StatusDegraded)(context.Background())
	if failed.Status != StatusDegraded || failed.Message != "refused" {
		t.Errorf("expected degraded with message, got %+v", failed)
	}
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker()
	c.Register("redis", Ping(func(ctx context.Context) error { return errors.New("refused") }, StatusDegraded))

	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	var report Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Components["redis"].Status != StatusDegraded {
		t.Errorf("expected redis degraded, got %+v", report.Components["redis"])
	}

	live := httptest.NewRecorder()
	c.LiveHandler()(live, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if live.Code != http.StatusOK {
		t.Errorf("expected 200 from liveness, got %d", live.Code)
	}
}
