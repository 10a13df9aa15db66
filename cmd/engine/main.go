package main

import (
	"context"
	"flag"

	"github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/engine/itinerary"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/engine/routing"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/http"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/http/usecases"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/logger"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/spatialindex"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/tsp"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/util"
	"go.uber.org/zap"
)

var (
	snapRadius    = flag.Float64("snap_radius", 0.05, "initial waypoint snapping radius in km")
	maxSnapRadius = flag.Float64("max_snap_radius", 2.0, "give up snapping a waypoint beyond this radius in km")
	tspMode       = flag.Bool("tsp", false, "start in tsp mode")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := util.ReadConfig(); err != nil {
		logger.Warn("no config file, using defaults", zap.Error(err))
	}
	config := util.LoadRoutingConfig()

	graph := datastructure.NewGridGraph(config.GridRows, config.GridCols, config.GridLat, config.GridLon,
		config.GridSpacing)
	logger.Info("road graph ready", zap.Int("vertices", graph.NumberOfVertices()))

	rtree := spatialindex.NewRtree()
	rtree.Build(graph, logger)

	legCache, err := routing.NewLegCache(config.LegCacheSize)
	if err != nil {
		panic(err)
	}
	routingEngine := routing.NewRoutingEngine(graph, config, logger)

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}

	improvement, err := tsp.ParseImprovement(config.TSPImprovement)
	if err != nil {
		panic(err)
	}

	coordinator := itinerary.NewCoordinator(ctx, routingEngine, legCache, logger)
	coordinator.SetSolver(tsp.NewSolver(improvement))
	if *tspMode {
		coordinator.SetMode(itinerary.TSP)
	}

	waypointService := usecases.NewWaypointService(logger, coordinator, rtree, graph, *snapRadius, *maxSnapRadius)

	api := http.NewServer(logger)
	if _, err := api.Use(ctx, logger, waypointService); err != nil {
		panic(err)
	}
	coordinator.SetListener(func(s itinerary.Snapshot) {
		api.Publish(waypointService.NewRoute(s))
	})

	signal := http.GracefulShutdown()

	logger.Info("Navigatorx Waypoint Planner Server Stopped", zap.String("signal", signal.String()))
	coordinator.Close()
	coordinator.Wait()
	cleanup()
	if err := api.Wait(); err != nil {
		logger.Error("api stopped with error", zap.Error(err))
	}
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
