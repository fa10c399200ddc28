package core

import (
	"time"

	"github.com/signalsfoundry/debris-sentinel/catalog"
)

// Config carries the engine's recognised tunables. The zero value is
// not usable; start from DefaultConfig and override fields.
type Config struct {
	// CollisionThresholdKm: predicted separations below this count as risks.
	CollisionThresholdKm float64
	// PredictionHorizonSeconds: how far ahead a CPA may lie to count.
	PredictionHorizonSeconds float64
	// TickInterval is the tracking loop period.
	TickInterval time.Duration
	// ObjectHistoryCapacity bounds each object's position trail.
	ObjectHistoryCapacity int
	// SpacecraftTrajectoryCapacity bounds the spacecraft trajectory.
	SpacecraftTrajectoryCapacity int
	// ManeuverProbabilityFloor: risks above this probability get a maneuver.
	ManeuverProbabilityFloor float64
	// ManeuverLeadTimeSeconds: execute this long before predicted CPA.
	ManeuverLeadTimeSeconds float64
	// DecayAltitudeKm: objects below this altitude experience drag decay.
	DecayAltitudeKm float64
	// MaxTrackedObjects caps the registry; 0 disables the cap. When full,
	// the lowest-probability object is evicted to admit a new one.
	MaxTrackedObjects int
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		CollisionThresholdKm:         5.0,
		PredictionHorizonSeconds:     300.0,
		TickInterval:                 100 * time.Millisecond,
		ObjectHistoryCapacity:        50,
		SpacecraftTrajectoryCapacity: 100,
		ManeuverProbabilityFloor:     0.1,
		ManeuverLeadTimeSeconds:      60.0,
		DecayAltitudeKm:              600.0,
		MaxTrackedObjects:            1000,
	}
}

// CatalogConfig derives the catalog's capacity and decay settings.
func (c Config) CatalogConfig() catalog.Config {
	c = c.normalized()
	return catalog.Config{
		ObjectHistoryCapacity:        c.ObjectHistoryCapacity,
		SpacecraftTrajectoryCapacity: c.SpacecraftTrajectoryCapacity,
		MaxTrackedObjects:            c.MaxTrackedObjects,
		DecayAltitudeKm:              c.DecayAltitudeKm,
	}
}

// normalized fills unset fields with defaults so a partially populated
// Config behaves sensibly.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.CollisionThresholdKm <= 0 {
		c.CollisionThresholdKm = def.CollisionThresholdKm
	}
	if c.PredictionHorizonSeconds <= 0 {
		c.PredictionHorizonSeconds = def.PredictionHorizonSeconds
	}
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	if c.ObjectHistoryCapacity <= 0 {
		c.ObjectHistoryCapacity = def.ObjectHistoryCapacity
	}
	if c.SpacecraftTrajectoryCapacity <= 0 {
		c.SpacecraftTrajectoryCapacity = def.SpacecraftTrajectoryCapacity
	}
	if c.ManeuverProbabilityFloor <= 0 {
		c.ManeuverProbabilityFloor = def.ManeuverProbabilityFloor
	}
	if c.ManeuverLeadTimeSeconds <= 0 {
		c.ManeuverLeadTimeSeconds = def.ManeuverLeadTimeSeconds
	}
	if c.DecayAltitudeKm <= 0 {
		c.DecayAltitudeKm = def.DecayAltitudeKm
	}
	if c.MaxTrackedObjects < 0 {
		c.MaxTrackedObjects = 0
	}
	return c
}
