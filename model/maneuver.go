package model

// ManeuverPriority orders queued avoidance maneuvers.
type ManeuverPriority int

const (
	PriorityMedium ManeuverPriority = iota
	PriorityHigh
)

func (p ManeuverPriority) String() string {
	switch p {
	case PriorityHigh:
		return "HIGH"
	case PriorityMedium:
		return "MEDIUM"
	default:
		return "UNKNOWN"
	}
}

// AvoidanceManeuver is a planned impulsive correction for one risk.
// The queue is rebuilt every tick from the currently qualifying risks;
// a maneuver leaves the queue only through execution or because its
// risk resolved.
type AvoidanceManeuver struct {
	ID       string
	ObjectID string
	// DeltaV is the impulsive velocity change in km/s.
	DeltaV   Vec3
	Priority ManeuverPriority
	// FuelCostKg is a linear-proportionality estimate, not a rocket
	// equation result.
	FuelCostKg float64
	// ExecutionTime is seconds from now until the burn should happen.
	// Negative means the burn is already due.
	ExecutionTime float64
	Description   string
}
