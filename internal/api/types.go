package api

import (
	"github.com/signalsfoundry/debris-sentinel/core"
	"github.com/signalsfoundry/debris-sentinel/model"
)

// JSON shapes for the API surface. Kept separate from the engine's
// types so the wire format can evolve without touching the model.

type spacecraftDTO struct {
	Position   model.Vec3   `json:"position"`
	Velocity   model.Vec3   `json:"velocity"`
	Trajectory []model.Vec3 `json:"trajectory,omitempty"`
}

type trackedObjectDTO struct {
	ID                   string       `json:"id"`
	Position             model.Vec3   `json:"position"`
	Velocity             model.Vec3   `json:"velocity"`
	MassKg               float64      `json:"mass_kg"`
	SizeClass            string       `json:"size_class"`
	Type                 string       `json:"type"`
	CollisionProbability float64      `json:"collision_probability"`
	RecentPositions      []model.Vec3 `json:"recent_positions,omitempty"`
}

type collisionRiskDTO struct {
	ObjectID     string  `json:"object_id"`
	TimeToCPA    float64 `json:"time_to_cpa_s"`
	SeparationKm float64 `json:"separation_km"`
	Probability  float64 `json:"probability"`
	Severity     string  `json:"severity"`
}

type maneuverDTO struct {
	ID            string     `json:"id"`
	ObjectID      string     `json:"object_id"`
	DeltaV        model.Vec3 `json:"delta_v"`
	Priority      string     `json:"priority"`
	FuelCostKg    float64    `json:"fuel_cost_kg"`
	ExecutionTime float64    `json:"execution_time_s"`
	Description   string     `json:"description"`
}

type snapshotResponse struct {
	Tick           int64              `json:"tick"`
	TakenAt        string             `json:"taken_at"`
	Spacecraft     spacecraftDTO      `json:"spacecraft"`
	Objects        []trackedObjectDTO `json:"objects"`
	Risks          []collisionRiskDTO `json:"risks"`
	Maneuvers      []maneuverDTO      `json:"maneuvers"`
	AggregateLevel string             `json:"aggregate_risk_level"`
}

type statusResponse struct {
	Running         bool           `json:"running"`
	Tick            int64          `json:"tick"`
	TotalObjects    int            `json:"total_objects"`
	ActiveRisks     int            `json:"active_risks"`
	HighRiskObjects int            `json:"high_risk_objects"`
	MeanProbability float64        `json:"mean_probability"`
	AggregateLevel  string         `json:"aggregate_risk_level"`
	ByType          map[string]int `json:"objects_by_type"`
}

type ingestRequest struct {
	Objects []core.ExternalObject `json:"objects"`
}

type ingestResponse struct {
	Accepted int `json:"accepted"`
}

type positionRequest struct {
	Position model.Vec3 `json:"position"`
}

type executeResponse struct {
	Executed bool `json:"executed"`
}

type errorResponse struct {
	Error string `json:"error"`
}
