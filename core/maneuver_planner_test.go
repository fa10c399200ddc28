package core

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/signalsfoundry/debris-sentinel/model"
)

func testPlanner() *ManeuverPlanner {
	return NewManeuverPlanner(rand.New(rand.NewSource(1)))
}

func TestPlanQualifyingRisk(t *testing.T) {
	mp := testPlanner()
	risks := []model.CollisionRisk{{
		ObjectID:     "debris-7",
		TimeToCPA:    200,
		SeparationKm: 1.2,
		Probability:  0.6,
	}}

	queue := mp.Plan(risks, 42)
	if len(queue) != 1 {
		t.Fatalf("got %d maneuvers, want 1", len(queue))
	}

	m := queue[0]
	if m.ID != "avoid-debris-7-42" {
		t.Errorf("ID = %q", m.ID)
	}
	if m.ObjectID != "debris-7" {
		t.Errorf("ObjectID = %q", m.ObjectID)
	}
	if m.Priority != model.PriorityHigh {
		t.Errorf("Priority = %v, want High for p > 0.5", m.Priority)
	}
	if math.Abs(m.ExecutionTime-140) > epsilon {
		t.Errorf("ExecutionTime = %v, want 140", m.ExecutionTime)
	}
	if math.Abs(m.FuelCostKg-m.DeltaV.Norm()*100) > epsilon {
		t.Errorf("FuelCostKg = %v, want %v", m.FuelCostKg, m.DeltaV.Norm()*100)
	}
	if !strings.Contains(m.Description, "debris-7") {
		t.Errorf("Description = %q", m.Description)
	}
}

func TestPlanDeltaVShape(t *testing.T) {
	mp := testPlanner()
	risks := []model.CollisionRisk{{ObjectID: "d", TimeToCPA: 120, Probability: 0.9}}

	// The burn is a lateral and altitude nudge only, with each component
	// magnitude inside [0.005, 0.01] km/s.
	for i := 0; i < 50; i++ {
		queue := mp.Plan(risks, int64(i))
		dv := queue[0].DeltaV
		if dv.X != 0 {
			t.Fatalf("DeltaV.X = %v, want 0", dv.X)
		}
		for _, c := range []float64{dv.Y, dv.Z} {
			mag := math.Abs(c)
			if mag < deltaVMinKmS || mag > deltaVMaxKmS {
				t.Fatalf("component magnitude %v outside [%v, %v]", mag, deltaVMinKmS, deltaVMaxKmS)
			}
		}
	}
}

func TestPlanProbabilityFloor(t *testing.T) {
	mp := testPlanner()
	risks := []model.CollisionRisk{
		{ObjectID: "ignored", TimeToCPA: 100, Probability: 0.05},
		{ObjectID: "boundary", TimeToCPA: 100, Probability: 0.1},
		{ObjectID: "planned", TimeToCPA: 100, Probability: 0.11},
	}

	queue := mp.Plan(risks, 1)
	if len(queue) != 1 {
		t.Fatalf("got %d maneuvers, want 1: %+v", len(queue), queue)
	}
	if queue[0].ObjectID != "planned" {
		t.Errorf("planned for %q, want %q", queue[0].ObjectID, "planned")
	}
}

func TestPlanPriorityBoundary(t *testing.T) {
	mp := testPlanner()
	risks := []model.CollisionRisk{
		{ObjectID: "at-half", TimeToCPA: 100, Probability: 0.5},
		{ObjectID: "above-half", TimeToCPA: 100, Probability: 0.51},
	}

	queue := mp.Plan(risks, 1)
	if len(queue) != 2 {
		t.Fatalf("got %d maneuvers, want 2", len(queue))
	}
	byID := map[string]model.AvoidanceManeuver{}
	for _, m := range queue {
		byID[m.ObjectID] = m
	}
	if byID["at-half"].Priority != model.PriorityMedium {
		t.Errorf("p=0.5 priority = %v, want Medium", byID["at-half"].Priority)
	}
	if byID["above-half"].Priority != model.PriorityHigh {
		t.Errorf("p=0.51 priority = %v, want High", byID["above-half"].Priority)
	}
}

func TestPlanNegativeExecutionTime(t *testing.T) {
	// CPA closer than the lead time still yields a maneuver; the
	// execution time goes negative and the caller decides urgency.
	mp := testPlanner()
	queue := mp.Plan([]model.CollisionRisk{
		{ObjectID: "close", TimeToCPA: 30, Probability: 0.8},
	}, 1)

	if len(queue) != 1 {
		t.Fatalf("got %d maneuvers, want 1", len(queue))
	}
	if math.Abs(queue[0].ExecutionTime-(-30)) > epsilon {
		t.Errorf("ExecutionTime = %v, want -30", queue[0].ExecutionTime)
	}
}

func TestPlanDeterministicWithSeededRand(t *testing.T) {
	risks := []model.CollisionRisk{{ObjectID: "d", TimeToCPA: 100, Probability: 0.4}}

	a := NewManeuverPlanner(rand.New(rand.NewSource(7))).Plan(risks, 1)
	b := NewManeuverPlanner(rand.New(rand.NewSource(7))).Plan(risks, 1)

	if a[0].DeltaV != b[0].DeltaV {
		t.Errorf("same seed produced different delta-V: %+v vs %+v", a[0].DeltaV, b[0].DeltaV)
	}
}
