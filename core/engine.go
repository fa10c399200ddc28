package core

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/debris-sentinel/catalog"
	"github.com/signalsfoundry/debris-sentinel/internal/logging"
	"github.com/signalsfoundry/debris-sentinel/model"
	"github.com/signalsfoundry/debris-sentinel/timectrl"
)

// MetricsRecorder receives per-tick engine measurements. The engine
// treats it as optional instrumentation, never as logic.
type MetricsRecorder interface {
	ObserveTick(d time.Duration)
	SetTrackingCounts(objects, risks, maneuvers int)
	SetAggregateLevel(level model.RiskLevel)
	IncManeuversExecuted()
	IncIngestDropped()
}

// ExternalObject is one record of the external tracking feed. Position
// is a pointer so a missing position is distinguishable from the origin.
type ExternalObject struct {
	ID       string      `json:"id"`
	Position *model.Vec3 `json:"position"`
	Velocity model.Vec3  `json:"velocity"`
	MassKg   float64     `json:"mass_kg"`
	// RiskHint is an optional externally supplied probability seed.
	RiskHint *float64 `json:"risk_hint,omitempty"`

	SizeClass model.SizeClass  `json:"-"`
	Type      model.ObjectType `json:"-"`
}

// Snapshot is the immutable view published at the end of each tick.
// Every slice and struct in it is a copy; consumers cannot reach
// engine-owned state through it.
type Snapshot struct {
	Tick           int64
	TakenAt        time.Time
	Spacecraft     model.Spacecraft
	Objects        []model.TrackedObject
	Risks          []model.CollisionRisk
	Maneuvers      []model.AvoidanceManeuver
	AggregateLevel model.RiskLevel
	Summary        Summary
}

// Summary condenses the snapshot for status consumers.
type Summary struct {
	TotalObjects    int
	HighRiskObjects int
	MeanProbability float64
	ByType          map[string]int
}

// Engine is the tracking loop: it owns the tick cadence, merges queued
// external inputs at tick boundaries, runs propagate -> assess -> plan,
// and publishes an immutable snapshot. All engine state is mutated from
// a single tick at a time; ticks never overlap.
type Engine struct {
	cfg      Config
	catalog  *catalog.Catalog
	assessor *RiskAssessor
	planner  *ManeuverPlanner
	clock    timectrl.Clock
	log      logging.Logger
	metrics  MetricsRecorder
	tracer   trace.Tracer

	// mu guards the run state, the maneuver queue, and tick bookkeeping.
	mu        sync.Mutex
	running   bool
	stop      chan struct{}
	done      chan struct{}
	lastTick  time.Time
	tickSeq   int64
	maneuvers []model.AvoidanceManeuver

	// pendingMu guards inputs queued for the next tick boundary.
	pendingMu         sync.Mutex
	pendingSpacecraft *model.Vec3
	pendingIngest     []ExternalObject

	// snapMu guards the published snapshot.
	snapMu   sync.RWMutex
	snapshot Snapshot

	tickListeners []func(Snapshot)
}

// Option customises engine construction.
type Option func(*Engine)

// WithClock injects a clock; tests use a manual clock.
func WithClock(c timectrl.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithRand injects the randomness source used for maneuver direction
// selection, making planning reproducible in tests.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.planner = newPlannerFromConfig(e.cfg, rng) }
}

// NewEngine wires a tracking engine around the given catalog.
func NewEngine(cfg Config, cat *catalog.Catalog, log logging.Logger, opts ...Option) *Engine {
	cfg = cfg.normalized()
	if log == nil {
		log = logging.Noop()
	}

	assessor := NewRiskAssessor()
	assessor.CollisionThresholdKm = cfg.CollisionThresholdKm
	assessor.PredictionHorizonSeconds = cfg.PredictionHorizonSeconds

	e := &Engine{
		cfg:      cfg,
		catalog:  cat,
		assessor: assessor,
		planner:  newPlannerFromConfig(cfg, nil),
		clock:    timectrl.WallClock{},
		log:      log,
		tracer:   otel.Tracer("debris-sentinel/core"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	// Publish an empty baseline so consumers never observe a zero snapshot.
	e.snapshot = Snapshot{
		TakenAt:        e.clock.Now(),
		Spacecraft:     cat.Spacecraft(),
		AggregateLevel: model.RiskLevelLow,
		Summary:        Summary{ByType: map[string]int{}},
	}
	return e
}

func newPlannerFromConfig(cfg Config, rng *rand.Rand) *ManeuverPlanner {
	p := NewManeuverPlanner(rng)
	if cfg.ManeuverProbabilityFloor > 0 {
		p.ProbabilityFloor = cfg.ManeuverProbabilityFloor
	}
	if cfg.ManeuverLeadTimeSeconds > 0 {
		p.LeadTimeSeconds = cfg.ManeuverLeadTimeSeconds
	}
	return p
}

// Catalog exposes the engine's catalog for scenario seeding.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// RegisterTickListener adds a callback invoked with each published
// snapshot, after the tick completes. Listeners run on the tick
// goroutine and must be brief.
func (e *Engine) RegisterTickListener(fn func(Snapshot)) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickListeners = append(e.tickListeners, fn)
}

// Start transitions Stopped -> Running and begins periodic ticking.
// Calling Start on a running engine is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.lastTick = time.Time{}
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	stop, done := e.stop, e.done
	e.mu.Unlock()

	e.log.Info(context.Background(), "tracking engine started",
		logging.String("tick_interval", e.cfg.TickInterval.String()),
	)

	go func() {
		defer close(done)
		ticker := e.clock.NewTicker(e.cfg.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C():
				e.RunTick(now)
			}
		}
	}()
}

// Stop transitions Running -> Stopped. An in-flight tick completes
// before Stop returns; no future ticks are scheduled.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stop)
	done := e.done
	e.mu.Unlock()

	<-done
	e.log.Info(context.Background(), "tracking engine stopped")
}

// IsRunning reports whether the periodic loop is active.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// UpdateSpacecraftPosition queues a spacecraft position overwrite.
// Velocity is unaffected. Applied at the next tick boundary; the last
// queued update wins.
func (e *Engine) UpdateSpacecraftPosition(p model.Vec3) {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	e.pendingSpacecraft = &p
}

// IngestExternalObjects queues external feed records for the next tick
// boundary. Validation happens at merge time so malformed records are
// dropped individually with a diagnostic rather than failing the batch.
func (e *Engine) IngestExternalObjects(objs []ExternalObject) {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	e.pendingIngest = append(e.pendingIngest, objs...)
}

// ExecuteManeuver applies the queued maneuver's delta-V to the
// spacecraft velocity and removes it from the queue. It reports false,
// with no state change, when the ID is not queued.
func (e *Engine) ExecuteManeuver(id string) bool {
	e.mu.Lock()
	idx := -1
	for i, m := range e.maneuvers {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.mu.Unlock()
		return false
	}
	m := e.maneuvers[idx]
	e.maneuvers = append(e.maneuvers[:idx], e.maneuvers[idx+1:]...)
	e.mu.Unlock()

	e.catalog.ApplyDeltaV(m.DeltaV)
	if e.metrics != nil {
		e.metrics.IncManeuversExecuted()
	}
	e.log.Info(context.Background(), "maneuver executed",
		logging.String("maneuver_id", m.ID),
		logging.String("object_id", m.ObjectID),
		logging.Any("delta_v", m.DeltaV),
	)
	return true
}

// GetSnapshot returns the snapshot published by the most recently
// completed tick.
func (e *Engine) GetSnapshot() Snapshot {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return e.snapshot
}

// RunTick executes one full tick at the given instant: merge queued
// inputs, propagate, assess, plan, publish. The periodic loop is its
// only caller while running; tests call it directly on a stopped engine
// to drive time deterministically.
func (e *Engine) RunTick(now time.Time) {
	started := e.clock.Now()
	ctx, span := e.tracer.Start(context.Background(), "engine.tick")
	defer span.End()

	e.mu.Lock()
	dt := e.cfg.TickInterval.Seconds()
	if !e.lastTick.IsZero() {
		dt = now.Sub(e.lastTick).Seconds()
	}
	if dt <= 0 {
		dt = e.cfg.TickInterval.Seconds()
	}
	e.lastTick = now
	e.tickSeq++
	seq := e.tickSeq
	e.mu.Unlock()

	e.applyPendingInputs(ctx)

	e.catalog.Propagate(dt)

	sc := e.catalog.Spacecraft()
	objects := e.catalog.List()

	risks := e.assessor.Assess(sc, objects)
	for _, r := range risks {
		e.catalog.SetObjectProbability(r.ObjectID, r.Probability)
	}
	level := AggregateLevel(risks)

	queue := e.planner.Plan(risks, seq)
	e.mu.Lock()
	e.maneuvers = queue
	listeners := append([]func(Snapshot){}, e.tickListeners...)
	e.mu.Unlock()

	// Patch the already-copied objects with the probabilities written
	// back this tick so the snapshot is internally consistent.
	probs := make(map[string]float64, len(risks))
	for _, r := range risks {
		probs[r.ObjectID] = r.Probability
	}
	for i := range objects {
		if p, ok := probs[objects[i].ID]; ok {
			objects[i].CollisionProbability = p
		}
	}

	snap := Snapshot{
		Tick:           seq,
		TakenAt:        now,
		Spacecraft:     sc,
		Objects:        objects,
		Risks:          append([]model.CollisionRisk(nil), risks...),
		Maneuvers:      append([]model.AvoidanceManeuver(nil), queue...),
		AggregateLevel: level,
		Summary:        summarize(objects, risks),
	}

	e.snapMu.Lock()
	e.snapshot = snap
	e.snapMu.Unlock()

	span.SetAttributes(
		attribute.Int64("tick.seq", seq),
		attribute.Int("tick.objects", len(objects)),
		attribute.Int("tick.risks", len(risks)),
		attribute.Int("tick.maneuvers", len(queue)),
		attribute.String("tick.level", level.String()),
	)
	if e.metrics != nil {
		e.metrics.ObserveTick(e.clock.Now().Sub(started))
		e.metrics.SetTrackingCounts(len(objects), len(risks), len(queue))
		e.metrics.SetAggregateLevel(level)
	}
	if len(risks) > 0 {
		e.log.Debug(ctx, "tick assessed risks",
			logging.Int("risks", len(risks)),
			logging.Int("maneuvers", len(queue)),
			logging.String("aggregate_level", level.String()),
		)
	}

	for _, fn := range listeners {
		fn(snap)
	}
}

// applyPendingInputs merges queued external updates at the tick
// boundary. Malformed feed records (missing id or position) are dropped
// one by one with a diagnostic; the rest of the batch proceeds.
func (e *Engine) applyPendingInputs(ctx context.Context) {
	e.pendingMu.Lock()
	scPos := e.pendingSpacecraft
	ingest := e.pendingIngest
	e.pendingSpacecraft = nil
	e.pendingIngest = nil
	e.pendingMu.Unlock()

	if scPos != nil {
		e.catalog.SetSpacecraftPosition(*scPos)
	}

	for _, rec := range ingest {
		if rec.ID == "" || rec.Position == nil {
			if e.metrics != nil {
				e.metrics.IncIngestDropped()
			}
			e.log.Warn(ctx, "dropping malformed external object",
				logging.String("object_id", rec.ID),
				logging.Any("has_position", rec.Position != nil),
			)
			continue
		}
		obj := model.TrackedObject{
			ID:        rec.ID,
			Position:  *rec.Position,
			Velocity:  rec.Velocity,
			MassKg:    rec.MassKg,
			SizeClass: rec.SizeClass,
			Type:      rec.Type,
		}
		if rec.RiskHint != nil {
			obj.CollisionProbability = clamp01(*rec.RiskHint)
		}
		e.catalog.Upsert(obj)
	}
}

func summarize(objects []model.TrackedObject, risks []model.CollisionRisk) Summary {
	s := Summary{
		TotalObjects: len(objects),
		ByType:       make(map[string]int, 8),
	}
	for _, obj := range objects {
		s.ByType[obj.Type.String()]++
	}
	if len(risks) > 0 {
		sum := 0.0
		for _, r := range risks {
			sum += r.Probability
			if r.Probability > 0.5 {
				s.HighRiskObjects++
			}
		}
		s.MeanProbability = sum / float64(len(risks))
	}
	return s
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
