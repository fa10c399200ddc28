// core/scenario_loader.go
package core

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/signalsfoundry/debris-sentinel/catalog"
	"github.com/signalsfoundry/debris-sentinel/model"
)

// DebrisScenario is a small summary of what was loaded from JSON.
// It's mainly useful for logging or debugging from main().
type DebrisScenario struct {
	ObjectIDs     []string
	HasSpacecraft bool
}

// internal JSON shapes – keep them unexported so we're free to evolve them.
type debrisScenarioJSON struct {
	Spacecraft *spacecraftJSON `json:"spacecraft"`
	Objects    []objectJSON    `json:"objects"`
}

type spacecraftJSON struct {
	Position vec3JSON `json:"position"`
	Velocity vec3JSON `json:"velocity"`
}

type objectJSON struct {
	ID       string   `json:"id"`
	Position vec3JSON `json:"position"`
	Velocity vec3JSON `json:"velocity"`
	MassKg   float64  `json:"mass_kg"`
	Size     string   `json:"size"` // "tiny" | "small" | "medium" | "large"
	Type     string   `json:"type"` // "satellite" | "rocket_body" | ...
}

type vec3JSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// LoadDebrisScenario reads a JSON scenario from r, seeds the catalog
// with the spacecraft state and initial debris population, and returns
// a summary of what was loaded.
//
// It fails only on JSON / structural errors; per-object defaults are
// tolerant the same way the live ingest path is.
func LoadDebrisScenario(cat *catalog.Catalog, r io.Reader) (*DebrisScenario, error) {
	if cat == nil {
		return nil, fmt.Errorf("LoadDebrisScenario: catalog is nil")
	}

	var payload debrisScenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadDebrisScenario: decode failed: %w", err)
	}

	result := &DebrisScenario{
		ObjectIDs: make([]string, 0, len(payload.Objects)),
	}

	if payload.Spacecraft != nil {
		cat.SetSpacecraft(model.Spacecraft{
			Position: toVec3(payload.Spacecraft.Position),
			Velocity: toVec3(payload.Spacecraft.Velocity),
		})
		result.HasSpacecraft = true
	}

	for _, js := range payload.Objects {
		if js.ID == "" {
			return nil, fmt.Errorf("LoadDebrisScenario: object with empty id")
		}
		cat.Upsert(model.TrackedObject{
			ID:        js.ID,
			Position:  toVec3(js.Position),
			Velocity:  toVec3(js.Velocity),
			MassKg:    js.MassKg,
			SizeClass: sizeClassFromString(js.Size),
			Type:      objectTypeFromString(js.Type),
		})
		result.ObjectIDs = append(result.ObjectIDs, js.ID)
	}

	return result, nil
}

func toVec3(v vec3JSON) model.Vec3 {
	return model.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// sizeClassFromString maps the JSON "size" string to SizeClass values.
// Unknown / empty values default to medium, the most common radar
// cross-section bucket in public catalogues.
func sizeClassFromString(s string) model.SizeClass {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tiny":
		return model.SizeTiny
	case "small":
		return model.SizeSmall
	case "large":
		return model.SizeLarge
	default:
		return model.SizeMedium
	}
}

func objectTypeFromString(s string) model.ObjectType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "satellite", "payload":
		return model.ObjectSatellite
	case "rocket_body", "rocket body", "r/b":
		return model.ObjectRocketBody
	case "fragment", "fragmentation", "debris":
		return model.ObjectFragment
	case "paint":
		return model.ObjectPaint
	case "equipment":
		return model.ObjectEquipment
	default:
		return model.ObjectUnknown
	}
}
