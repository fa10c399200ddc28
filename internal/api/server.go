// Package api exposes the tracking engine to external consumers over a
// small JSON/HTTP surface: snapshot reads, feed ingestion, spacecraft
// updates, and maneuver execution. It holds no engine logic.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/signalsfoundry/debris-sentinel/core"
	"github.com/signalsfoundry/debris-sentinel/internal/logging"
	"github.com/signalsfoundry/debris-sentinel/internal/observability"
)

// Server owns the HTTP handlers around one tracking engine.
type Server struct {
	engine  *core.Engine
	log     logging.Logger
	metrics *observability.EngineCollector
}

// NewServer builds the API server. The collector may be nil; handlers
// then run uninstrumented.
func NewServer(engine *core.Engine, collector *observability.EngineCollector, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{engine: engine, log: log, metrics: collector}
}

// Handler returns the routed, instrumented handler tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /v1/snapshot", s.route("/v1/snapshot", s.handleSnapshot))
	mux.Handle("GET /v1/status", s.route("/v1/status", s.handleStatus))
	mux.Handle("POST /v1/objects", s.route("/v1/objects", s.handleIngest))
	mux.Handle("DELETE /v1/objects/{id}", s.route("/v1/objects/{id}", s.handleRemoveObject))
	mux.Handle("POST /v1/spacecraft/position", s.route("/v1/spacecraft/position", s.handleSpacecraftPosition))
	mux.Handle("POST /v1/maneuvers/{id}/execute", s.route("/v1/maneuvers/{id}/execute", s.handleExecuteManeuver))
	mux.Handle("POST /v1/engine/start", s.route("/v1/engine/start", s.handleStart))
	mux.Handle("POST /v1/engine/stop", s.route("/v1/engine/stop", s.handleStop))
	return mux
}

// route attaches request-id logging and metrics to one handler.
func (s *Server) route(name string, h http.HandlerFunc) http.Handler {
	wrapped := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, reqLog := logging.WithRequestLogger(r.Context(), s.log)
		reqLog.Debug(ctx, "handling request",
			logging.String("route", name),
			logging.String("method", r.Method),
		)
		h(w, r.WithContext(ctx))
	})
	if s.metrics == nil {
		return wrapped
	}
	return s.metrics.Instrument(name, wrapped)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.GetSnapshot()
	resp := snapshotResponse{
		Tick:    snap.Tick,
		TakenAt: snap.TakenAt.UTC().Format(time.RFC3339Nano),
		Spacecraft: spacecraftDTO{
			Position:   snap.Spacecraft.Position,
			Velocity:   snap.Spacecraft.Velocity,
			Trajectory: snap.Spacecraft.Trajectory,
		},
		Objects:        make([]trackedObjectDTO, 0, len(snap.Objects)),
		Risks:          make([]collisionRiskDTO, 0, len(snap.Risks)),
		Maneuvers:      make([]maneuverDTO, 0, len(snap.Maneuvers)),
		AggregateLevel: snap.AggregateLevel.String(),
	}
	for _, obj := range snap.Objects {
		resp.Objects = append(resp.Objects, trackedObjectDTO{
			ID:                   obj.ID,
			Position:             obj.Position,
			Velocity:             obj.Velocity,
			MassKg:               obj.MassKg,
			SizeClass:            obj.SizeClass.String(),
			Type:                 obj.Type.String(),
			CollisionProbability: obj.CollisionProbability,
			RecentPositions:      obj.RecentPositions,
		})
	}
	for _, risk := range snap.Risks {
		resp.Risks = append(resp.Risks, collisionRiskDTO{
			ObjectID:     risk.ObjectID,
			TimeToCPA:    risk.TimeToCPA,
			SeparationKm: risk.SeparationKm,
			Probability:  risk.Probability,
			Severity:     risk.Severity.String(),
		})
	}
	for _, m := range snap.Maneuvers {
		resp.Maneuvers = append(resp.Maneuvers, maneuverDTO{
			ID:            m.ID,
			ObjectID:      m.ObjectID,
			DeltaV:        m.DeltaV,
			Priority:      m.Priority.String(),
			FuelCostKg:    m.FuelCostKg,
			ExecutionTime: m.ExecutionTime,
			Description:   m.Description,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.GetSnapshot()
	writeJSON(w, http.StatusOK, statusResponse{
		Running:         s.engine.IsRunning(),
		Tick:            snap.Tick,
		TotalObjects:    snap.Summary.TotalObjects,
		ActiveRisks:     len(snap.Risks),
		HighRiskObjects: snap.Summary.HighRiskObjects,
		MeanProbability: snap.Summary.MeanProbability,
		AggregateLevel:  snap.AggregateLevel.String(),
		ByType:          snap.Summary.ByType,
	})
}

// handleIngest queues feed records for the next tick boundary. The
// batch is accepted as a whole; per-record validation happens at merge
// time so malformed entries are dropped individually, not rejected here.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	s.engine.IngestExternalObjects(req.Objects)
	writeJSON(w, http.StatusAccepted, ingestResponse{Accepted: len(req.Objects)})
}

func (s *Server) handleRemoveObject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.engine.Catalog().Remove(id); err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown object: " + id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSpacecraftPosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	s.engine.UpdateSpacecraftPosition(req.Position)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleExecuteManeuver(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	executed := s.engine.ExecuteManeuver(id)
	status := http.StatusOK
	if !executed {
		status = http.StatusNotFound
	}
	writeJSON(w, status, executeResponse{Executed: executed})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.engine.Start()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.engine.Stop()
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
