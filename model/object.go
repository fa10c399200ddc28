package model

// SizeClass buckets a tracked object's physical extent.
type SizeClass int

const (
	SizeTiny SizeClass = iota
	SizeSmall
	SizeMedium
	SizeLarge
)

func (s SizeClass) String() string {
	switch s {
	case SizeTiny:
		return "TINY"
	case SizeSmall:
		return "SMALL"
	case SizeMedium:
		return "MEDIUM"
	case SizeLarge:
		return "LARGE"
	default:
		return "UNKNOWN"
	}
}

// ObjectType classifies what kind of debris an object is.
type ObjectType int

const (
	ObjectUnknown ObjectType = iota
	ObjectSatellite
	ObjectRocketBody
	ObjectFragment
	ObjectPaint
	ObjectEquipment
)

func (t ObjectType) String() string {
	switch t {
	case ObjectSatellite:
		return "SATELLITE"
	case ObjectRocketBody:
		return "ROCKET_BODY"
	case ObjectFragment:
		return "FRAGMENT"
	case ObjectPaint:
		return "PAINT"
	case ObjectEquipment:
		return "EQUIPMENT"
	default:
		return "UNKNOWN"
	}
}

// TrackedObject is a single debris object under observation.
//
// ID is stable and immutable for the object's lifetime. Position and
// velocity are advanced by catalog propagation; CollisionProbability is
// the last value computed by the risk assessment pass (zero until then).
type TrackedObject struct {
	ID       string
	Position Vec3
	Velocity Vec3
	// MassKg is the estimated mass in kilograms.
	MassKg      float64
	SizeClass   SizeClass
	Type        ObjectType
	LastUpdated int64 // tick sequence number of the last propagation

	CollisionProbability float64

	// RecentPositions is a bounded trail of past positions, oldest first.
	// It exists for display consumers only; no computation reads it.
	RecentPositions []Vec3
}

// RecordPosition appends p to the position trail, evicting the oldest
// entry once capacity is exceeded.
func (o *TrackedObject) RecordPosition(p Vec3, capacity int) {
	o.RecentPositions = appendBounded(o.RecentPositions, p, capacity)
}

func appendBounded(history []Vec3, p Vec3, capacity int) []Vec3 {
	if capacity <= 0 {
		return history
	}
	history = append(history, p)
	if overflow := len(history) - capacity; overflow > 0 {
		history = append(history[:0], history[overflow:]...)
	}
	return history
}
