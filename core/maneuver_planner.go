package core

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/signalsfoundry/debris-sentinel/model"
)

// ManeuverPlanner converts qualifying risks into queued avoidance
// maneuvers. Direction selection is a random sign per axis; the
// contract is only "some valid small corrective delta-V".
type ManeuverPlanner struct {
	// ProbabilityFloor is the minimum risk probability that triggers a
	// maneuver.
	ProbabilityFloor float64

	// LeadTimeSeconds is how long before the predicted closest approach
	// the burn should execute.
	LeadTimeSeconds float64

	rng *rand.Rand
}

// NewManeuverPlanner returns a planner with the default floor and
// lead time. A nil rng falls back to a time-seeded source.
func NewManeuverPlanner(rng *rand.Rand) *ManeuverPlanner {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ManeuverPlanner{
		ProbabilityFloor: 0.1,
		LeadTimeSeconds:  60.0,
		rng:              rng,
	}
}

// deltaV component magnitudes in km/s. Small lateral and altitude
// nudges, not orbit transfers.
const (
	deltaVMinKmS = 0.005
	deltaVMaxKmS = 0.01
)

// fuelCostPerKmS is the simplified linear fuel model: kilograms of
// propellant per km/s of delta-V magnitude.
const fuelCostPerKmS = 100.0

// Plan builds the maneuver queue for the current tick. tickSeq keys
// maneuver IDs so they are unique per tick; the queue is rebuilt from
// scratch every tick so maneuvers for resolved risks simply vanish.
func (mp *ManeuverPlanner) Plan(risks []model.CollisionRisk, tickSeq int64) []model.AvoidanceManeuver {
	var queue []model.AvoidanceManeuver
	for _, risk := range risks {
		if risk.Probability <= mp.ProbabilityFloor {
			continue
		}

		dv := model.Vec3{
			Y: mp.randomComponent(),
			Z: mp.randomComponent(),
		}

		priority := model.PriorityMedium
		if risk.Probability > 0.5 {
			priority = model.PriorityHigh
		}

		queue = append(queue, model.AvoidanceManeuver{
			ID:            fmt.Sprintf("avoid-%s-%d", risk.ObjectID, tickSeq),
			ObjectID:      risk.ObjectID,
			DeltaV:        dv,
			Priority:      priority,
			FuelCostKg:    dv.Norm() * fuelCostPerKmS,
			ExecutionTime: risk.TimeToCPA - mp.LeadTimeSeconds,
			Description: fmt.Sprintf("Avoid %s: CPA in %.0fs at %.2f km (p=%.2f)",
				risk.ObjectID, risk.TimeToCPA, risk.SeparationKm, risk.Probability),
		})
	}
	return queue
}

// randomComponent draws a magnitude in [deltaVMinKmS, deltaVMaxKmS]
// with a random sign.
func (mp *ManeuverPlanner) randomComponent() float64 {
	magnitude := deltaVMinKmS + mp.rng.Float64()*(deltaVMaxKmS-deltaVMinKmS)
	if mp.rng.Intn(2) == 0 {
		return -magnitude
	}
	return magnitude
}
