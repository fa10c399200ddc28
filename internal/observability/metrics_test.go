package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/signalsfoundry/debris-sentinel/model"
)

func TestEngineCollectorGauges(t *testing.T) {
	c, err := NewEngineCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}

	c.SetTrackingCounts(42, 3, 2)
	if got := testutil.ToFloat64(c.TrackedObjects); got != 42 {
		t.Errorf("tracked objects gauge = %v, want 42", got)
	}
	if got := testutil.ToFloat64(c.ActiveRisks); got != 3 {
		t.Errorf("active risks gauge = %v, want 3", got)
	}
	if got := testutil.ToFloat64(c.QueuedManeuvers); got != 2 {
		t.Errorf("queued maneuvers gauge = %v, want 2", got)
	}

	c.SetAggregateLevel(model.RiskLevelCritical)
	if got := testutil.ToFloat64(c.AggregateLevel); got != float64(model.RiskLevelCritical) {
		t.Errorf("aggregate level gauge = %v, want %v", got, float64(model.RiskLevelCritical))
	}
}

func TestEngineCollectorCounters(t *testing.T) {
	c, err := NewEngineCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}

	c.IncManeuversExecuted()
	c.IncManeuversExecuted()
	c.IncIngestDropped()

	if got := testutil.ToFloat64(c.ManeuversExecuted); got != 2 {
		t.Errorf("executed counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.IngestDropped); got != 1 {
		t.Errorf("dropped counter = %v, want 1", got)
	}
}

func TestEngineCollectorObserveTick(t *testing.T) {
	c, err := NewEngineCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}

	c.ObserveTick(2 * time.Millisecond)
	c.ObserveTick(4 * time.Millisecond)

	var m dto.Metric
	if err := c.TickDuration.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := m.GetHistogram().GetSampleCount(); got != 2 {
		t.Errorf("tick histogram sample count = %d, want 2", got)
	}
}

func TestEngineCollectorIdempotentRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewEngineCollector(reg); err != nil {
		t.Fatalf("first NewEngineCollector: %v", err)
	}
	// A second collector on the same registry adopts the existing metrics.
	if _, err := NewEngineCollector(reg); err != nil {
		t.Fatalf("second NewEngineCollector: %v", err)
	}
}

func TestEngineCollectorNilSafety(t *testing.T) {
	var c *EngineCollector
	c.ObserveTick(time.Millisecond)
	c.SetTrackingCounts(1, 1, 1)
	c.SetAggregateLevel(model.RiskLevelLow)
	c.IncManeuversExecuted()
	c.IncIngestDropped()
}

func TestInstrumentRecordsRequests(t *testing.T) {
	c, err := NewEngineCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}

	h := c.Instrument("/v1/snapshot", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/snapshot", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	got := testutil.ToFloat64(c.HTTPRequests.WithLabelValues("/v1/snapshot", http.MethodGet, "404"))
	if got != 1 {
		t.Errorf("request counter = %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}
	c.SetTrackingCounts(7, 0, 0)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "tracker_objects 7") {
		t.Errorf("exposition missing tracker_objects gauge:\n%s", body)
	}
}
