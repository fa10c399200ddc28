package core

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/debris-sentinel/catalog"
	"github.com/signalsfoundry/debris-sentinel/model"
)

// TLERecord is one catalogue entry in two-line element form, with an
// optional name line.
type TLERecord struct {
	Name  string
	Line1 string
	Line2 string
}

// ParseTLE reads a 2- or 3-line element set file: optional name line
// followed by lines starting with "1 " and "2 ". Blank lines are
// skipped.
func ParseTLE(r io.Reader) ([]TLERecord, error) {
	var recs []TLERecord
	var current TLERecord

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "1 "):
			current.Line1 = line
		case strings.HasPrefix(line, "2 "):
			current.Line2 = line
			if current.Line1 == "" {
				return nil, fmt.Errorf("ParseTLE: line 2 without a preceding line 1: %q", line)
			}
			recs = append(recs, current)
			current = TLERecord{}
		default:
			current = TLERecord{Name: strings.TrimSpace(line)}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ParseTLE: %w", err)
	}
	return recs, nil
}

// StateFromTLE propagates a TLE to the given epoch with SGP4 and
// returns the Cartesian state. go-satellite works in kilometres and
// km/s, matching the engine's unit convention directly.
func StateFromTLE(rec TLERecord, epoch time.Time) (pos, vel model.Vec3) {
	sat := satellite.TLEToSat(rec.Line1, rec.Line2, satellite.GravityWGS72)

	epoch = epoch.UTC()
	year, month, day := epoch.Date()
	hour, min, sec := epoch.Clock()

	p, v := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	return model.Vec3{X: p.X, Y: p.Y, Z: p.Z}, model.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// massForSizeClass is a crude size-to-mass map for feeds that report
// no mass.
func massForSizeClass(s model.SizeClass) float64 {
	switch s {
	case model.SizeTiny:
		return 1
	case model.SizeSmall:
		return 10
	case model.SizeLarge:
		return 1000
	default:
		return 100
	}
}

// SeedFromTLE propagates every record to the epoch and upserts the
// resulting objects into the catalog. Records whose ID line is
// malformed get a synthetic ID from their position in the file; the
// seeding never fails a batch for one bad record.
func SeedFromTLE(cat *catalog.Catalog, recs []TLERecord, epoch time.Time) int {
	seeded := 0
	for i, rec := range recs {
		if rec.Line1 == "" || rec.Line2 == "" {
			continue
		}
		pos, vel := StateFromTLE(rec, epoch)
		if pos.Norm() == 0 {
			// SGP4 signals a propagation failure with a zero state.
			continue
		}

		id := rec.Name
		if id == "" {
			id = fmt.Sprintf("tle-%d", i)
		}
		cat.Upsert(model.TrackedObject{
			ID:        id,
			Position:  pos,
			Velocity:  vel,
			MassKg:    massForSizeClass(model.SizeMedium),
			SizeClass: model.SizeMedium,
			Type:      model.ObjectFragment,
		})
		seeded++
	}
	return seeded
}
