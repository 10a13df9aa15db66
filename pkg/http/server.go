package http

import (
	"context"

	http_router "github.com/lintang-b-s/navigatorx-waypoints/pkg/http/router"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/navigatorx-waypoints/pkg/http/server"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/http/usecases"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
	api *http_router.API
	g   *errgroup.Group
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use starts the api in the background. Wait returns once it has stopped.
func (s *Server) Use(
	ctx context.Context,
	log *zap.Logger,

	waypointService controllers.WaypointService,
) (*Server, error) {
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", "30s")
	viper.SetDefault("RATE_LIMIT", 0.0)
	viper.SetDefault("RATE_BURST", 20)

	config := http_server.Config{
		Port:    viper.GetInt("API_PORT"),
		Timeout: viper.GetDuration("API_TIMEOUT"),
	}
	rateLimit := http_router.RateLimit{
		Enabled: viper.GetFloat64("RATE_LIMIT") > 0,
		Rate:    viper.GetFloat64("RATE_LIMIT"),
		Burst:   viper.GetInt("RATE_BURST"),
	}

	s.api = http_router.NewAPI(log, waypointService)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.api.Run(gctx, config, rateLimit)
	})
	s.g = g

	return s, nil
}

// Publish pushes route to the websocket subscribers.
func (s *Server) Publish(route usecases.Route) {
	if s.api == nil {
		return
	}
	s.api.Publish(route)
}

func (s *Server) Wait() error {
	if s.g == nil {
		return nil
	}
	return s.g.Wait()
}
