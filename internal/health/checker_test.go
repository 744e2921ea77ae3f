package health_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ErlanBelekov/superrichie/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func newTestChecker(deps map[string]health.Pinger) (*health.Checker, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return health.NewChecker(deps, slog.Default(), reg), reg
}

func TestLiveness_AlwaysUp(t *testing.T) {
	c, _ := newTestChecker(map[string]health.Pinger{"postgres": &mockPinger{err: errors.New("db down")}})

	result := c.Liveness(context.Background())
	if result.Status != "up" {
		t.Fatalf("expected status up, got %s", result.Status)
	}
	if result.Checks != nil {
		t.Fatalf("expected no checks, got %v", result.Checks)
	}
}

func TestReadiness_AllUp(t *testing.T) {
	c, reg := newTestChecker(map[string]health.Pinger{
		"postgres": &mockPinger{},
		"redis":    &mockPinger{},
	})

	result := c.Readiness(context.Background())
	if result.Status != "up" {
		t.Fatalf("expected status up, got %s", result.Status)
	}
	for _, dep := range []string{"postgres", "redis"} {
		if result.Checks[dep].Status != "up" {
			t.Errorf("%s status = %q, want up", dep, result.Checks[dep].Status)
		}
	}

	n, err := testutil.GatherAndCount(reg, "superrichie_health_check_up")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Errorf("gauge series = %d, want 2", n)
	}
	if got := gaugeValue(t, reg, "redis"); got != 1 {
		t.Errorf("redis gauge = %f, want 1", got)
	}
}

func TestReadiness_OneDependencyDown(t *testing.T) {
	c, reg := newTestChecker(map[string]health.Pinger{
		"postgres": &mockPinger{},
		"mosaic":   &mockPinger{err: errors.New("status 401")},
	})

	result := c.Readiness(context.Background())
	if result.Status != "down" {
		t.Fatalf("expected status down, got %s", result.Status)
	}
	if result.Checks["mosaic"].Error == "" {
		t.Fatal("expected error message for mosaic")
	}
	if result.Checks["postgres"].Status != "up" {
		t.Errorf("postgres should still report up")
	}
	if got := gaugeValue(t, reg, "mosaic"); got != 0 {
		t.Errorf("mosaic gauge = %f, want 0", got)
	}
}

func TestReadiness_NoDependencies(t *testing.T) {
	c, _ := newTestChecker(nil)

	if result := c.Readiness(context.Background()); result.Status != "up" {
		t.Errorf("expected up with no dependencies, got %s", result.Status)
	}
}

func TestReadinessHandler_StatusCodes(t *testing.T) {
	down, _ := newTestChecker(map[string]health.Pinger{"postgres": &mockPinger{err: errors.New("refused")}})
	up, _ := newTestChecker(map[string]health.Pinger{"postgres": &mockPinger{}})

	tests := []struct {
		name    string
		checker *health.Checker
		want    int
	}{
		{"down", down, http.StatusServiceUnavailable},
		{"up", up, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.checker.ReadinessHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, depLabel string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "superrichie_health_check_up" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "dependency" && lp.GetValue() == depLabel {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("gauge for dependency %q not found", depLabel)
	return 0
}
