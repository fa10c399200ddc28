package core

import (
	"math"

	"github.com/signalsfoundry/debris-sentinel/model"
)

// RiskAssessor converts CPA predictions into collision risks. It is a
// pure evaluator: it returns values and mutates nothing, so the engine
// decides what to do with the results.
type RiskAssessor struct {
	// CollisionThresholdKm is the predicted-separation bound below
	// which an approach counts as a risk.
	CollisionThresholdKm float64

	// PredictionHorizonSeconds bounds how far ahead a CPA may lie for
	// the risk to be reported.
	PredictionHorizonSeconds float64
}

// NewRiskAssessor returns an assessor with the default thresholds.
func NewRiskAssessor() *RiskAssessor {
	return &RiskAssessor{
		CollisionThresholdKm:     5.0,
		PredictionHorizonSeconds: 300.0,
	}
}

// Assess evaluates every tracked object against the spacecraft and
// returns the risks for objects whose closest approach lies strictly
// within the prediction horizon with a predicted separation below the
// collision threshold. Each qualifying object yields exactly one risk.
func (ra *RiskAssessor) Assess(sc model.Spacecraft, objects []model.TrackedObject) []model.CollisionRisk {
	var risks []model.CollisionRisk
	for i := range objects {
		obj := &objects[i]
		cpa := ComputeCPA(sc.Position, sc.Velocity, obj.Position, obj.Velocity)
		if cpa.TimeToCPA <= 0 || cpa.TimeToCPA >= ra.PredictionHorizonSeconds {
			continue
		}
		if cpa.SeparationKm >= ra.CollisionThresholdKm {
			continue
		}

		relSpeed := model.RelativeSpeed(sc.Velocity, obj.Velocity)
		risks = append(risks, model.CollisionRisk{
			ObjectID:     obj.ID,
			TimeToCPA:    cpa.TimeToCPA,
			SeparationKm: cpa.SeparationKm,
			Probability:  collisionProbability(cpa.SeparationKm, obj.MassKg),
			Severity:     classifySeverity(obj.MassKg, relSpeed),
		})
	}
	return risks
}

// collisionProbability is monotonically decreasing in separation and
// increasing in mass, hard-capped at 0.95: the model never claims a
// collision is certain.
func collisionProbability(separationKm, massKg float64) float64 {
	massFactor := math.Min(massKg/1000.0, 1.0)
	return math.Min(0.95, math.Exp(-separationKm/2.0)*massFactor)
}

// classifySeverity buckets the impact kinetic energy 0.5*m*v^2 (kg,
// km/s). Boundary values land in the higher bucket.
func classifySeverity(massKg, relSpeedKmS float64) model.Severity {
	energy := 0.5 * massKg * relSpeedKmS * relSpeedKmS
	switch {
	case energy >= 1e6:
		return model.SeverityCatastrophic
	case energy >= 1e5:
		return model.SeverityCritical
	case energy >= 1e4:
		return model.SeverityHigh
	case energy >= 1e3:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

// AggregateLevel folds all current risks into one system-wide level.
// The check order is load-bearing: a Critical/Catastrophic severity or
// a >0.7 probability wins over the >0.3 probability check.
func AggregateLevel(risks []model.CollisionRisk) model.RiskLevel {
	if len(risks) == 0 {
		return model.RiskLevelLow
	}

	maxProbability := 0.0
	severe := false
	for _, r := range risks {
		if r.Probability > maxProbability {
			maxProbability = r.Probability
		}
		if r.Severity == model.SeverityCritical || r.Severity == model.SeverityCatastrophic {
			severe = true
		}
	}

	switch {
	case maxProbability > 0.7 || severe:
		return model.RiskLevelCritical
	case maxProbability > 0.3:
		return model.RiskLevelHigh
	default:
		return model.RiskLevelMedium
	}
}
