package core

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/signalsfoundry/debris-sentinel/catalog"
	"github.com/signalsfoundry/debris-sentinel/model"
	"github.com/signalsfoundry/debris-sentinel/timectrl"
)

type fakeMetrics struct {
	ticks     int
	executed  int
	dropped   int
	objects   int
	risks     int
	maneuvers int
	level     model.RiskLevel
}

func (f *fakeMetrics) ObserveTick(time.Duration) { f.ticks++ }
func (f *fakeMetrics) SetTrackingCounts(objects, risks, maneuvers int) {
	f.objects, f.risks, f.maneuvers = objects, risks, maneuvers
}
func (f *fakeMetrics) SetAggregateLevel(level model.RiskLevel) { f.level = level }
func (f *fakeMetrics) IncManeuversExecuted()                   { f.executed++ }
func (f *fakeMetrics) IncIngestDropped()                       { f.dropped++ }

func testEngineConfig() Config {
	cfg := DefaultConfig()
	cfg.TickInterval = time.Second
	return cfg
}

// seedHeadOn puts one object on a direct collision course 100 km out.
func seedHeadOn(cat *catalog.Catalog) {
	cat.SetSpacecraft(model.Spacecraft{Position: model.Vec3{}, Velocity: model.Vec3{}})
	cat.Upsert(model.TrackedObject{
		ID:       "debris-1",
		Position: model.Vec3{X: 100},
		Velocity: model.Vec3{X: -1},
		MassKg:   500,
		Type:     model.ObjectFragment,
	})
}

func TestRunTickPublishesSnapshot(t *testing.T) {
	cfg := testEngineConfig()
	cat := catalog.New(cfg.CatalogConfig())
	seedHeadOn(cat)

	e := NewEngine(cfg, cat, nil, WithRand(rand.New(rand.NewSource(1))))
	e.RunTick(time.Unix(1000, 0))

	snap := e.GetSnapshot()
	if snap.Tick != 1 {
		t.Errorf("Tick = %d, want 1", snap.Tick)
	}
	if len(snap.Objects) != 1 || len(snap.Risks) != 1 || len(snap.Maneuvers) != 1 {
		t.Fatalf("snapshot counts = %d objects, %d risks, %d maneuvers",
			len(snap.Objects), len(snap.Risks), len(snap.Maneuvers))
	}

	// One second of propagation closed the gap to 99 km.
	r := snap.Risks[0]
	if math.Abs(r.TimeToCPA-99) > epsilon {
		t.Errorf("TimeToCPA = %v, want 99", r.TimeToCPA)
	}
	if math.Abs(r.Probability-0.5) > epsilon {
		t.Errorf("Probability = %v, want 0.5", r.Probability)
	}
	if snap.AggregateLevel != model.RiskLevelHigh {
		t.Errorf("AggregateLevel = %v, want High", snap.AggregateLevel)
	}

	// The assessed probability is written back onto the snapshot object.
	if math.Abs(snap.Objects[0].CollisionProbability-0.5) > epsilon {
		t.Errorf("object probability = %v, want 0.5", snap.Objects[0].CollisionProbability)
	}

	m := snap.Maneuvers[0]
	if m.Priority != model.PriorityMedium {
		t.Errorf("Priority = %v, want Medium at p=0.5", m.Priority)
	}
	if math.Abs(m.ExecutionTime-39) > epsilon {
		t.Errorf("ExecutionTime = %v, want 39", m.ExecutionTime)
	}

	if snap.Summary.TotalObjects != 1 || snap.Summary.ByType["FRAGMENT"] != 1 {
		t.Errorf("Summary = %+v", snap.Summary)
	}
}

func TestExecuteManeuverExactlyOnce(t *testing.T) {
	cfg := testEngineConfig()
	cat := catalog.New(cfg.CatalogConfig())
	seedHeadOn(cat)

	metrics := &fakeMetrics{}
	e := NewEngine(cfg, cat, nil, WithMetrics(metrics), WithRand(rand.New(rand.NewSource(1))))
	e.RunTick(time.Unix(1000, 0))

	snap := e.GetSnapshot()
	if len(snap.Maneuvers) != 1 {
		t.Fatalf("got %d maneuvers, want 1", len(snap.Maneuvers))
	}
	m := snap.Maneuvers[0]

	if !e.ExecuteManeuver(m.ID) {
		t.Fatal("ExecuteManeuver returned false for a queued maneuver")
	}
	v := cat.Spacecraft().Velocity
	if math.Abs(v.Y-m.DeltaV.Y) > epsilon || math.Abs(v.Z-m.DeltaV.Z) > epsilon {
		t.Errorf("spacecraft velocity = %+v, want delta-V %+v applied", v, m.DeltaV)
	}

	// A second execution must refuse and leave the velocity alone.
	if e.ExecuteManeuver(m.ID) {
		t.Error("ExecuteManeuver succeeded twice for the same ID")
	}
	if after := cat.Spacecraft().Velocity; after != v {
		t.Errorf("velocity changed on refused execution: %+v", after)
	}
	if metrics.executed != 1 {
		t.Errorf("executed counter = %d, want 1", metrics.executed)
	}
}

func TestExecuteManeuverUnknownID(t *testing.T) {
	cfg := testEngineConfig()
	cat := catalog.New(cfg.CatalogConfig())
	e := NewEngine(cfg, cat, nil)

	if e.ExecuteManeuver("no-such-maneuver") {
		t.Error("ExecuteManeuver returned true for an unknown ID")
	}
}

func TestIngestAppliedAtTickBoundary(t *testing.T) {
	cfg := testEngineConfig()
	cat := catalog.New(cfg.CatalogConfig())
	metrics := &fakeMetrics{}
	e := NewEngine(cfg, cat, nil, WithMetrics(metrics))

	hint := 1.5
	e.IngestExternalObjects([]ExternalObject{
		{ID: "good", Position: &model.Vec3{X: 500}, Velocity: model.Vec3{X: 0.1}, MassKg: 10},
		{ID: "", Position: &model.Vec3{}},
		{ID: "no-position"},
		{ID: "hinted", Position: &model.Vec3{X: 900}, RiskHint: &hint},
	})

	// Nothing lands until the tick boundary.
	if cat.Len() != 0 {
		t.Fatalf("catalog populated before tick: %d objects", cat.Len())
	}

	e.RunTick(time.Unix(1000, 0))

	if cat.Len() != 2 {
		t.Errorf("catalog has %d objects, want 2", cat.Len())
	}
	if _, ok := cat.Get("good"); !ok {
		t.Error("valid record was not ingested")
	}
	if metrics.dropped != 2 {
		t.Errorf("dropped counter = %d, want 2", metrics.dropped)
	}

	// RiskHint seeds the probability, clamped into [0, 1].
	hinted, ok := cat.Get("hinted")
	if !ok {
		t.Fatal("hinted record was not ingested")
	}
	if hinted.CollisionProbability != 1 {
		t.Errorf("hinted probability = %v, want clamped 1", hinted.CollisionProbability)
	}
}

func TestSpacecraftPositionLastWins(t *testing.T) {
	cfg := testEngineConfig()
	cat := catalog.New(cfg.CatalogConfig())
	e := NewEngine(cfg, cat, nil)

	e.UpdateSpacecraftPosition(model.Vec3{X: 1})
	e.UpdateSpacecraftPosition(model.Vec3{X: 2, Y: 3})

	e.RunTick(time.Unix(1000, 0))

	p := cat.Spacecraft().Position
	if p.X != 2 || p.Y != 3 {
		t.Errorf("spacecraft position = %+v, want the last queued update", p)
	}
}

func TestStaleManeuversVanish(t *testing.T) {
	cfg := testEngineConfig()
	cat := catalog.New(cfg.CatalogConfig())
	seedHeadOn(cat)

	e := NewEngine(cfg, cat, nil, WithRand(rand.New(rand.NewSource(1))))
	e.RunTick(time.Unix(1000, 0))

	first := e.GetSnapshot()
	if len(first.Maneuvers) != 1 {
		t.Fatalf("got %d maneuvers, want 1", len(first.Maneuvers))
	}
	staleID := first.Maneuvers[0].ID

	// The threat disappears; the rebuilt queue must not retain its maneuver.
	if err := cat.Remove("debris-1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	e.RunTick(time.Unix(1001, 0))

	second := e.GetSnapshot()
	if len(second.Maneuvers) != 0 {
		t.Errorf("queue after threat removal = %+v, want empty", second.Maneuvers)
	}
	if e.ExecuteManeuver(staleID) {
		t.Error("stale maneuver from a previous tick was executable")
	}
}

func TestSnapshotIsolatedFromEngineState(t *testing.T) {
	cfg := testEngineConfig()
	cat := catalog.New(cfg.CatalogConfig())
	seedHeadOn(cat)

	e := NewEngine(cfg, cat, nil)
	e.RunTick(time.Unix(1000, 0))

	snap := e.GetSnapshot()
	snap.Objects[0].Position = model.Vec3{X: -1e9}
	snap.Spacecraft.Position = model.Vec3{X: -1e9}

	obj, _ := cat.Get("debris-1")
	if obj.Position.X == -1e9 {
		t.Error("mutating a snapshot object reached the catalog")
	}
	if cat.Spacecraft().Position.X == -1e9 {
		t.Error("mutating the snapshot spacecraft reached the catalog")
	}
}

func TestStartStopWithManualClock(t *testing.T) {
	cfg := testEngineConfig()
	cat := catalog.New(cfg.CatalogConfig())
	seedHeadOn(cat)

	clock := timectrl.NewManualClock(time.Unix(1000, 0))
	e := NewEngine(cfg, cat, nil, WithClock(clock))

	snaps := make(chan Snapshot, 16)
	e.RegisterTickListener(func(s Snapshot) { snaps <- s })

	e.Start()
	if !e.IsRunning() {
		t.Fatal("IsRunning = false after Start")
	}
	e.Start() // repeated Start is a no-op

	// The loop goroutine registers its ticker asynchronously; keep
	// advancing until the first snapshot arrives.
	var first Snapshot
	deadline := time.After(5 * time.Second)
waitFirst:
	for {
		clock.Advance(time.Second)
		select {
		case first = <-snaps:
			break waitFirst
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			t.Fatal("no tick observed after Start")
		}
	}
	if first.Tick == 0 {
		t.Errorf("first snapshot tick = %d, want > 0", first.Tick)
	}

	e.Stop()
	if e.IsRunning() {
		t.Fatal("IsRunning = true after Stop")
	}
	e.Stop() // repeated Stop is a no-op

	for len(snaps) > 0 {
		<-snaps
	}
	clock.Advance(time.Second)
	select {
	case s := <-snaps:
		t.Errorf("tick %d observed after Stop", s.Tick)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRunTickUsesElapsedTime(t *testing.T) {
	cfg := testEngineConfig()
	cat := catalog.New(cfg.CatalogConfig())
	cat.Upsert(model.TrackedObject{
		ID:       "drifter",
		Position: model.Vec3{Z: 700},
		Velocity: model.Vec3{X: 2},
	})

	e := NewEngine(cfg, cat, nil)
	e.RunTick(time.Unix(1000, 0)) // first tick falls back to the configured interval
	e.RunTick(time.Unix(1005, 0)) // 5 s elapsed

	obj, _ := cat.Get("drifter")
	// 1 s at the interval fallback plus 5 s measured: 12 km.
	if math.Abs(obj.Position.X-12) > epsilon {
		t.Errorf("position X = %v, want 12", obj.Position.X)
	}
}
