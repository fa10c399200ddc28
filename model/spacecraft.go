package model

// Spacecraft is the single protected asset the engine plans for.
// There is exactly one per engine instance.
type Spacecraft struct {
	Position Vec3
	Velocity Vec3

	// Trajectory is a bounded record of past positions, oldest first.
	Trajectory []Vec3
}

// RecordPosition appends the current position to the trajectory,
// evicting the oldest entry once capacity is exceeded.
func (s *Spacecraft) RecordPosition(capacity int) {
	s.Trajectory = appendBounded(s.Trajectory, s.Position, capacity)
}
