package catalog

import (
	"errors"
	"sync"

	"github.com/signalsfoundry/debris-sentinel/model"
)

// ErrObjectNotFound indicates a requested tracked object was not found.
var ErrObjectNotFound = errors.New("tracked object not found")

// EventType indicates what kind of change happened in the catalog.
type EventType int

const (
	EventObjectUpserted EventType = iota
	EventObjectRemoved
	EventObjectEvicted
)

// Event is emitted to subscribers when the tracked-object set changes.
type Event struct {
	Type   EventType
	Object model.TrackedObject
}

// Catalog is the in-memory, thread-safe store for the spacecraft and
// all tracked debris objects. It is the sole owner of both: every
// mutation goes through its methods, and the tracking engine is the
// only writer during normal operation.
type Catalog struct {
	mu sync.RWMutex

	spacecraft model.Spacecraft
	objects    map[string]*model.TrackedObject

	// objectHistoryCap bounds each object's position trail;
	// trajectoryCap bounds the spacecraft trajectory.
	objectHistoryCap int
	trajectoryCap    int

	// maxObjects caps the registry size; 0 means unbounded. When the
	// cap is hit, the lowest-probability object is evicted to make room.
	maxObjects int

	// decayAltitudeKm is the altitude below which simple drag decay
	// applies during propagation.
	decayAltitudeKm float64

	tick int64

	subs []func(Event)
}

// Config carries the catalog's capacity and decay tunables.
type Config struct {
	ObjectHistoryCapacity        int
	SpacecraftTrajectoryCapacity int
	MaxTrackedObjects            int
	DecayAltitudeKm              float64
}

// New constructs an empty catalog.
func New(cfg Config) *Catalog {
	if cfg.ObjectHistoryCapacity <= 0 {
		cfg.ObjectHistoryCapacity = 50
	}
	if cfg.SpacecraftTrajectoryCapacity <= 0 {
		cfg.SpacecraftTrajectoryCapacity = 100
	}
	if cfg.DecayAltitudeKm == 0 {
		cfg.DecayAltitudeKm = 600
	}
	return &Catalog{
		objects:          make(map[string]*model.TrackedObject),
		objectHistoryCap: cfg.ObjectHistoryCapacity,
		trajectoryCap:    cfg.SpacecraftTrajectoryCapacity,
		maxObjects:       cfg.MaxTrackedObjects,
		decayAltitudeKm:  cfg.DecayAltitudeKm,
	}
}

// Upsert inserts or replaces a tracked object. The probability and
// position trail of an existing object survive the update so external
// feeds don't erase engine-computed state.
func (c *Catalog) Upsert(obj model.TrackedObject) {
	c.mu.Lock()

	var events []Event
	if existing, ok := c.objects[obj.ID]; ok {
		obj.CollisionProbability = existing.CollisionProbability
		obj.RecentPositions = existing.RecentPositions
	} else if c.maxObjects > 0 && len(c.objects) >= c.maxObjects {
		if victim := c.evictLowestProbabilityLocked(); victim != nil {
			events = append(events, Event{Type: EventObjectEvicted, Object: copyObject(victim)})
		}
	}
	obj.LastUpdated = c.tick
	stored := obj
	c.objects[obj.ID] = &stored

	subs := append([]func(Event){}, c.subs...)
	events = append(events, Event{Type: EventObjectUpserted, Object: copyObject(&stored)})
	c.mu.Unlock()

	for _, sub := range subs {
		for _, event := range events {
			sub(event)
		}
	}
}

// Remove deletes a tracked object by ID.
func (c *Catalog) Remove(id string) error {
	c.mu.Lock()
	obj, ok := c.objects[id]
	if !ok {
		c.mu.Unlock()
		return ErrObjectNotFound
	}
	delete(c.objects, id)

	subs := append([]func(Event){}, c.subs...)
	event := Event{Type: EventObjectRemoved, Object: copyObject(obj)}
	c.mu.Unlock()

	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// evictLowestProbabilityLocked drops the object judged least
// interesting: lowest collision probability, ties broken by oldest
// update. Caller holds the write lock.
func (c *Catalog) evictLowestProbabilityLocked() *model.TrackedObject {
	var victim *model.TrackedObject
	for _, obj := range c.objects {
		if victim == nil ||
			obj.CollisionProbability < victim.CollisionProbability ||
			(obj.CollisionProbability == victim.CollisionProbability && obj.LastUpdated < victim.LastUpdated) {
			victim = obj
		}
	}
	if victim == nil {
		return nil
	}
	delete(c.objects, victim.ID)
	return victim
}

// Get returns a copy of the object with the given ID.
func (c *Catalog) Get(id string) (model.TrackedObject, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	obj, ok := c.objects[id]
	if !ok {
		return model.TrackedObject{}, false
	}
	return copyObject(obj), true
}

// List returns copies of all tracked objects in unspecified order.
func (c *Catalog) List() []model.TrackedObject {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res := make([]model.TrackedObject, 0, len(c.objects))
	for _, obj := range c.objects {
		res = append(res, copyObject(obj))
	}
	return res
}

// Len returns the number of tracked objects.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.objects)
}

// Spacecraft returns a copy of the current spacecraft state.
func (c *Catalog) Spacecraft() model.Spacecraft {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copySpacecraft(&c.spacecraft)
}

// SetSpacecraft replaces the spacecraft state wholesale. Intended for
// scenario loading before the engine starts ticking.
func (c *Catalog) SetSpacecraft(s model.Spacecraft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spacecraft = s
}

// SetSpacecraftPosition overwrites the spacecraft position, leaving its
// velocity untouched.
func (c *Catalog) SetSpacecraftPosition(p model.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spacecraft.Position = p
}

// ApplyDeltaV adds dv to the spacecraft velocity.
func (c *Catalog) ApplyDeltaV(dv model.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spacecraft.Velocity = c.spacecraft.Velocity.Add(dv)
}

// SetObjectProbability records the risk assessor's probability on the
// object. Unknown IDs are ignored: the object may have been removed
// between assessment and write-back.
func (c *Catalog) SetObjectProbability(id string, p float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if obj, ok := c.objects[id]; ok {
		obj.CollisionProbability = p
	}
}

// velocityDecayFactor and altitudeLossKmPerSec approximate atmospheric
// drag for objects below the decay altitude. Deliberately crude; the
// engine models drag as a slow bleed, not an integration.
const (
	velocityDecayFactor  = 0.999
	altitudeLossKmPerSec = 0.01
)

// Propagate advances every tracked object and the spacecraft by dt
// seconds of linear motion, applies drag decay to objects below the
// decay altitude, and records positions into the bounded histories.
func (c *Catalog) Propagate(dtSeconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tick++
	for _, obj := range c.objects {
		obj.Position = obj.Position.Add(obj.Velocity.Scale(dtSeconds))
		if obj.Position.Z < c.decayAltitudeKm {
			obj.Velocity = obj.Velocity.Scale(velocityDecayFactor)
			obj.Position.Z -= altitudeLossKmPerSec * dtSeconds
		}
		obj.LastUpdated = c.tick
		obj.RecordPosition(obj.Position, c.objectHistoryCap)
	}

	// The spacecraft advances identically but never decays.
	c.spacecraft.Position = c.spacecraft.Position.Add(c.spacecraft.Velocity.Scale(dtSeconds))
	c.spacecraft.RecordPosition(c.trajectoryCap)
}

// Tick returns the current propagation tick sequence number.
func (c *Catalog) Tick() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tick
}

// Subscribe registers a callback for catalog events. It returns an
// unsubscribe function.
func (c *Catalog) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
	idx := len(c.subs) - 1

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if idx < 0 || idx >= len(c.subs) {
			return
		}
		c.subs = append(c.subs[:idx], c.subs[idx+1:]...)
		idx = -1
	}
}

func copyObject(obj *model.TrackedObject) model.TrackedObject {
	cp := *obj
	cp.RecentPositions = append([]model.Vec3(nil), obj.RecentPositions...)
	return cp
}

func copySpacecraft(s *model.Spacecraft) model.Spacecraft {
	cp := *s
	cp.Trajectory = append([]model.Vec3(nil), s.Trajectory...)
	return cp
}
