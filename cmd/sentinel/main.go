package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/debris-sentinel/catalog"
	"github.com/signalsfoundry/debris-sentinel/core"
	"github.com/signalsfoundry/debris-sentinel/internal/api"
	"github.com/signalsfoundry/debris-sentinel/internal/logging"
	"github.com/signalsfoundry/debris-sentinel/internal/observability"
)

func main() {
	apiAddr := flag.String("api-addr", ":8080", "HTTP address the tracking API listens on")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics")
	scenarioPath := flag.String("scenario", "configs/debris_scenario.json", "Path to a JSON debris scenario")
	tlePath := flag.String("tle", "", "Optional path to a TLE file for seeding additional objects")
	tick := flag.Duration("tick", 100*time.Millisecond, "tracking loop tick interval")
	collisionThreshold := flag.Float64("collision-threshold-km", 5, "predicted separation below this counts as a risk")
	horizon := flag.Float64("prediction-horizon-s", 300, "how far ahead a CPA may lie to count as a risk")
	maxObjects := flag.Int("max-objects", 1000, "tracked object cap (0 disables)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}

	collector, err := observability.NewEngineCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	cfg := core.DefaultConfig()
	cfg.TickInterval = *tick
	cfg.CollisionThresholdKm = *collisionThreshold
	cfg.PredictionHorizonSeconds = *horizon
	cfg.MaxTrackedObjects = *maxObjects

	cat := catalog.New(cfg.CatalogConfig())
	seedCatalog(ctx, log, cat, *scenarioPath, *tlePath)

	engine := core.NewEngine(cfg, cat, log, core.WithMetrics(collector))
	engine.Start()

	apiSrv := &http.Server{
		Addr:    *apiAddr,
		Handler: api.NewServer(engine, collector, log).Handler(),
	}
	log.Info(ctx, "starting tracking API", logging.String("addr", *apiAddr))
	go func() {
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "API server exited", logging.String("error", err.Error()))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down")
	engine.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)
}

func serveMetrics(addr string, collector *observability.EngineCollector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

// seedCatalog loads the JSON scenario and, optionally, a TLE file.
// Seeding failures are warnings: an empty catalog is a valid start, the
// external feed can populate it later.
func seedCatalog(ctx context.Context, log logging.Logger, cat *catalog.Catalog, scenarioPath, tlePath string) {
	if scenarioPath != "" {
		f, err := os.Open(scenarioPath)
		if err != nil {
			log.Warn(ctx, "skipping scenario load", logging.String("path", scenarioPath), logging.String("error", err.Error()))
		} else {
			scenario, err := core.LoadDebrisScenario(cat, f)
			f.Close()
			if err != nil {
				log.Warn(ctx, "failed to parse scenario", logging.String("path", scenarioPath), logging.String("error", err.Error()))
			} else {
				log.Info(ctx, "loaded debris scenario",
					logging.String("path", scenarioPath),
					logging.Int("objects", len(scenario.ObjectIDs)),
					logging.Any("spacecraft", scenario.HasSpacecraft),
				)
			}
		}
	}

	if tlePath != "" {
		f, err := os.Open(tlePath)
		if err != nil {
			log.Warn(ctx, "skipping TLE seed", logging.String("path", tlePath), logging.String("error", err.Error()))
			return
		}
		recs, err := core.ParseTLE(f)
		f.Close()
		if err != nil {
			log.Warn(ctx, "failed to parse TLE file", logging.String("path", tlePath), logging.String("error", err.Error()))
			return
		}
		seeded := core.SeedFromTLE(cat, recs, time.Now().UTC())
		log.Info(ctx, "seeded objects from TLE catalogue",
			logging.String("path", tlePath),
			logging.Int("count", seeded),
		)
	}
}
