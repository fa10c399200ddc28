package model

// Severity classifies the potential impact energy of a conjunction,
// independent of how likely it is.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
	SeverityCatastrophic
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	case SeverityCatastrophic:
		return "CATASTROPHIC"
	default:
		return "UNKNOWN"
	}
}

// RiskLevel is the system-wide classification summarising all current risks.
type RiskLevel int

const (
	RiskLevelLow RiskLevel = iota
	RiskLevelMedium
	RiskLevelHigh
	RiskLevelCritical
)

func (l RiskLevel) String() string {
	switch l {
	case RiskLevelLow:
		return "LOW"
	case RiskLevelMedium:
		return "MEDIUM"
	case RiskLevelHigh:
		return "HIGH"
	case RiskLevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// CollisionRisk is one tick's prediction for a single object on a
// threatening course. Risks are recomputed from scratch every tick and
// never persist across ticks.
type CollisionRisk struct {
	ObjectID string
	// TimeToCPA is seconds until closest approach; always > 0 for a
	// published risk.
	TimeToCPA float64
	// SeparationKm is the predicted miss distance at closest approach.
	SeparationKm float64
	// Probability is in [0, 0.95]; the model never reports certainty.
	Probability float64
	Severity    Severity
}
