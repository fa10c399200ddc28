package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/debris-sentinel/model"
)

// EngineCollector bundles Prometheus metrics for the tracking engine
// and its HTTP API, and provides helpers to wire them into handlers.
type EngineCollector struct {
	gatherer prometheus.Gatherer

	TickDuration      prometheus.Histogram
	TrackedObjects    prometheus.Gauge
	ActiveRisks       prometheus.Gauge
	QueuedManeuvers   prometheus.Gauge
	AggregateLevel    prometheus.Gauge
	ManeuversExecuted prometheus.Counter
	IngestDropped     prometheus.Counter

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
}

// NewEngineCollector registers engine Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry
// when nil.
func NewEngineCollector(reg prometheus.Registerer) (*EngineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	tickDuration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tracker_tick_duration_seconds",
		Help:    "Duration of one propagate/assess/plan/publish cycle.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
	}), "tracker_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	trackedObjects, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tracker_objects",
		Help: "Current number of tracked debris objects.",
	}), "tracker_objects")
	if err != nil {
		return nil, err
	}
	activeRisks, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tracker_active_risks",
		Help: "Collision risks identified in the most recent tick.",
	}), "tracker_active_risks")
	if err != nil {
		return nil, err
	}
	queuedManeuvers, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tracker_queued_maneuvers",
		Help: "Avoidance maneuvers currently queued.",
	}), "tracker_queued_maneuvers")
	if err != nil {
		return nil, err
	}
	aggregateLevel, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tracker_aggregate_risk_level",
		Help: "System-wide risk level: 0=low 1=medium 2=high 3=critical.",
	}), "tracker_aggregate_risk_level")
	if err != nil {
		return nil, err
	}

	maneuversExecuted, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_maneuvers_executed_total",
		Help: "Cumulative number of avoidance maneuvers executed.",
	}), "tracker_maneuvers_executed_total")
	if err != nil {
		return nil, err
	}
	ingestDropped, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_ingest_dropped_total",
		Help: "External feed records dropped as malformed.",
	}), "tracker_ingest_dropped_total")
	if err != nil {
		return nil, err
	}

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_http_requests_total",
		Help: "Total handled API requests, labeled by route, method, and status code.",
	}, []string{"route", "method", "code"})
	httpRequests, err = registerCounterVec(reg, httpRequests, "tracker_http_requests_total")
	if err != nil {
		return nil, err
	}

	httpDurations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tracker_http_request_duration_seconds",
		Help:    "API request latency in seconds.",
		Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"route", "method"})
	httpDurations, err = registerHistogramVec(reg, httpDurations, "tracker_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &EngineCollector{
		gatherer:          gatherer,
		TickDuration:      tickDuration,
		TrackedObjects:    trackedObjects,
		ActiveRisks:       activeRisks,
		QueuedManeuvers:   queuedManeuvers,
		AggregateLevel:    aggregateLevel,
		ManeuversExecuted: maneuversExecuted,
		IngestDropped:     ingestDropped,
		HTTPRequests:      httpRequests,
		HTTPDurations:     httpDurations,
	}, nil
}

// ObserveTick records one tick's wall-clock duration.
func (c *EngineCollector) ObserveTick(d time.Duration) {
	if c == nil || c.TickDuration == nil {
		return
	}
	c.TickDuration.Observe(d.Seconds())
}

// SetTrackingCounts updates the per-tick entity gauges.
func (c *EngineCollector) SetTrackingCounts(objects, risks, maneuvers int) {
	if c == nil {
		return
	}
	if c.TrackedObjects != nil {
		c.TrackedObjects.Set(float64(objects))
	}
	if c.ActiveRisks != nil {
		c.ActiveRisks.Set(float64(risks))
	}
	if c.QueuedManeuvers != nil {
		c.QueuedManeuvers.Set(float64(maneuvers))
	}
}

// SetAggregateLevel publishes the system-wide risk level as a gauge.
func (c *EngineCollector) SetAggregateLevel(level model.RiskLevel) {
	if c == nil || c.AggregateLevel == nil {
		return
	}
	c.AggregateLevel.Set(float64(level))
}

// IncManeuversExecuted increments the executed-maneuver counter.
func (c *EngineCollector) IncManeuversExecuted() {
	if c == nil || c.ManeuversExecuted == nil {
		return
	}
	c.ManeuversExecuted.Inc()
}

// IncIngestDropped increments the malformed-record counter.
func (c *EngineCollector) IncIngestDropped() {
	if c == nil || c.IngestDropped == nil {
		return
	}
	c.IngestDropped.Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *EngineCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Instrument wraps an API handler so request counts and durations are
// recorded under the given route label.
func (c *EngineCollector) Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		if c == nil {
			return
		}
		if c.HTTPRequests != nil {
			c.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(sw.code)).Inc()
		}
		if c.HTTPDurations != nil {
			c.HTTPDurations.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		}
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
