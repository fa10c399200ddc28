package core

import "github.com/signalsfoundry/debris-sentinel/model"

// NoCPA is the sentinel TimeToCPA for near-parallel relative motion:
// there is no meaningful closest approach to report. Callers filter on
// TimeToCPA > 0, so the sentinel falls out together with approaches
// that already happened.
const NoCPA = -1.0

// minRelSpeedSquared is the cutoff below which two states are treated
// as drifting in parallel. (km/s)^2.
const minRelSpeedSquared = 1e-6

// CPAResult is the closed-form closest-point-of-approach solution for
// two states under constant-velocity motion.
type CPAResult struct {
	// TimeToCPA is seconds until closest approach. Negative values mean
	// either the sentinel (no CPA) or an approach in the past; both are
	// discarded by callers.
	TimeToCPA float64
	// SeparationKm is the predicted distance at closest approach. Only
	// meaningful when TimeToCPA > 0.
	SeparationKm float64
}

// ComputeCPA solves for the instant at which the distance between
// (p1, v1) and (p2, v2) is minimised, assuming both move in straight
// lines. The solution is analytic: minimising |relPos + t*relVel|^2
// over t gives t = -(relPos . relVel) / |relVel|^2.
func ComputeCPA(p1, v1, p2, v2 model.Vec3) CPAResult {
	relPos := p2.Sub(p1)
	relVel := v2.Sub(v1)

	relSpeedSquared := relVel.Dot(relVel)
	if relSpeedSquared < minRelSpeedSquared {
		return CPAResult{TimeToCPA: NoCPA}
	}

	t := -relPos.Dot(relVel) / relSpeedSquared

	at1 := p1.Add(v1.Scale(t))
	at2 := p2.Add(v2.Scale(t))
	return CPAResult{
		TimeToCPA:    t,
		SeparationKm: at1.DistanceTo(at2),
	}
}
