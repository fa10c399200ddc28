package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/signalsfoundry/debris-sentinel/catalog"
	"github.com/signalsfoundry/debris-sentinel/core"
	"github.com/signalsfoundry/debris-sentinel/internal/logging"
)

func main() {
	duration := flag.Duration("duration", 30*time.Second, "total run duration")
	tick := flag.Duration("tick", 1*time.Second, "tick interval")
	scenarioPath := flag.String("scenario", "configs/debris_scenario.json", "Path to a JSON debris scenario")
	autoExecute := flag.Bool("auto-execute", false, "execute the highest-priority queued maneuver each tick")
	flag.Parse()

	log := logging.NewFromEnv()

	cfg := core.DefaultConfig()
	cfg.TickInterval = *tick

	cat := catalog.New(cfg.CatalogConfig())

	f, err := os.Open(*scenarioPath)
	if err != nil {
		panic(fmt.Errorf("failed to open scenario %q: %w", *scenarioPath, err))
	}
	scenario, err := core.LoadDebrisScenario(cat, f)
	f.Close()
	if err != nil {
		panic(fmt.Errorf("failed to load scenario: %w", err))
	}
	fmt.Printf("Loaded scenario: %d objects, spacecraft=%v\n", len(scenario.ObjectIDs), scenario.HasSpacecraft)

	engine := core.NewEngine(cfg, cat, log)

	engine.RegisterTickListener(func(snap core.Snapshot) {
		sc := snap.Spacecraft
		fmt.Printf("[tick %4d] craft @ (%8.2f, %8.2f, %8.2f) objects=%d risks=%d maneuvers=%d level=%s\n",
			snap.Tick,
			sc.Position.X, sc.Position.Y, sc.Position.Z,
			len(snap.Objects), len(snap.Risks), len(snap.Maneuvers), snap.AggregateLevel,
		)
		for _, risk := range snap.Risks {
			fmt.Printf("↳ Risk %-16s CPA in %6.1fs at %6.2f km p=%.2f severity=%s\n",
				risk.ObjectID, risk.TimeToCPA, risk.SeparationKm, risk.Probability, risk.Severity)
		}
		if *autoExecute && len(snap.Maneuvers) > 0 {
			best := snap.Maneuvers[0]
			for _, m := range snap.Maneuvers[1:] {
				if m.Priority > best.Priority {
					best = m
				}
			}
			if engine.ExecuteManeuver(best.ID) {
				fmt.Printf("↳ Executed %s: dv=(%.4f, %.4f, %.4f) km/s, fuel=%.2f kg\n",
					best.ID, best.DeltaV.X, best.DeltaV.Y, best.DeltaV.Z, best.FuelCostKg)
			}
		}
	})

	fmt.Printf("Starting tracking run: duration=%s, tick=%s\n", *duration, *tick)
	engine.Start()
	time.Sleep(*duration)
	engine.Stop()

	snap := engine.GetSnapshot()
	fmt.Printf("Run complete after %d ticks: %d objects, aggregate level %s\n",
		snap.Tick, snap.Summary.TotalObjects, snap.AggregateLevel)
}
