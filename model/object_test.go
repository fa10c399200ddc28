package model

import "testing"

func TestRecordPositionBounded(t *testing.T) {
	obj := TrackedObject{ID: "d1"}
	const capacity = 5

	for i := 0; i < 20; i++ {
		obj.RecordPosition(Vec3{X: float64(i)}, capacity)
	}

	if len(obj.RecentPositions) != capacity {
		t.Fatalf("history length = %d, want %d", len(obj.RecentPositions), capacity)
	}
	// Oldest entries evicted, newest retained in order.
	if obj.RecentPositions[0].X != 15 {
		t.Errorf("oldest retained = %v, want 15", obj.RecentPositions[0].X)
	}
	if obj.RecentPositions[capacity-1].X != 19 {
		t.Errorf("newest = %v, want 19", obj.RecentPositions[capacity-1].X)
	}
}

func TestRecordPositionZeroCapacity(t *testing.T) {
	obj := TrackedObject{ID: "d1"}
	obj.RecordPosition(Vec3{X: 1}, 0)
	if len(obj.RecentPositions) != 0 {
		t.Errorf("zero capacity should record nothing, got %d entries", len(obj.RecentPositions))
	}
}

func TestSpacecraftTrajectoryBounded(t *testing.T) {
	sc := Spacecraft{}
	for i := 0; i < 10; i++ {
		sc.Position = Vec3{X: float64(i)}
		sc.RecordPosition(3)
	}
	if len(sc.Trajectory) != 3 {
		t.Fatalf("trajectory length = %d, want 3", len(sc.Trajectory))
	}
	if sc.Trajectory[2].X != 9 {
		t.Errorf("latest trajectory entry = %v, want 9", sc.Trajectory[2].X)
	}
}
