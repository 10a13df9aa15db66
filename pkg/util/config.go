package util

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

func ReadConfig() error {
	viper.SetConfigName("config")
	viper.AddConfigPath("./data/")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}

// RoutingConfig holds the tunables of the route planner.
type RoutingConfig struct {
	MaxExpansions    int
	MaxLabels        int
	HeuristicFactor  float64
	LegCacheSize     int
	TableParallelism int
	TSPImprovement   string // routine, 2opt, 3opt or none

	ApiPort     int
	ApiTimeout  time.Duration
	RateLimit   float64 // requests per second, 0 disables the limiter
	RateBurst   int
	GridRows    int
	GridCols    int
	GridSpacing float64 // km
	GridLat     float64
	GridLon     float64
}

func setRoutingDefaults() {
	viper.SetDefault("MAX_EXPANSIONS", 5000)
	viper.SetDefault("MAX_LABELS", 2_000_000)
	viper.SetDefault("HEURISTIC_FACTOR", 0.95)
	viper.SetDefault("LEG_CACHE_SIZE", 4096)
	viper.SetDefault("TABLE_PARALLELISM", runtime.NumCPU())
	viper.SetDefault("TSP_IMPROVEMENT", "routine")

	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", "30s")
	viper.SetDefault("RATE_LIMIT", 0.0)
	viper.SetDefault("RATE_BURST", 20)
	viper.SetDefault("GRID_ROWS", 60)
	viper.SetDefault("GRID_COLS", 60)
	viper.SetDefault("GRID_SPACING_KM", 0.2)
	viper.SetDefault("GRID_LAT", -7.8)
	viper.SetDefault("GRID_LON", 110.35)
}

// LoadRoutingConfig reads the routing tunables from viper, falling back to defaults for every key
// the config file and environment leave unset.
func LoadRoutingConfig() RoutingConfig {
	setRoutingDefaults()

	return RoutingConfig{
		MaxExpansions:    Max(viper.GetInt("MAX_EXPANSIONS"), 0),
		MaxLabels:        Max(viper.GetInt("MAX_LABELS"), 0),
		HeuristicFactor:  Clamp(viper.GetFloat64("HEURISTIC_FACTOR"), 0.0, 1.0),
		LegCacheSize:     Max(viper.GetInt("LEG_CACHE_SIZE"), 1),
		TableParallelism: Max(viper.GetInt("TABLE_PARALLELISM"), 1),
		TSPImprovement:   viper.GetString("TSP_IMPROVEMENT"),

		ApiPort:     viper.GetInt("API_PORT"),
		ApiTimeout:  viper.GetDuration("API_TIMEOUT"),
		RateLimit:   viper.GetFloat64("RATE_LIMIT"),
		RateBurst:   viper.GetInt("RATE_BURST"),
		GridRows:    viper.GetInt("GRID_ROWS"),
		GridCols:    viper.GetInt("GRID_COLS"),
		GridSpacing: viper.GetFloat64("GRID_SPACING_KM"),
		GridLat:     viper.GetFloat64("GRID_LAT"),
		GridLon:     viper.GetFloat64("GRID_LON"),
	}
}
