package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/navigatorx-waypoints/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/navigatorx-waypoints/pkg/http/server"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/http/usecases"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type RateLimit struct {
	Enabled bool
	Rate    float64
	Burst   int
}

type API struct {
	log             *zap.Logger
	hub             *controllers.Hub
	waypointService controllers.WaypointService
}

func NewAPI(log *zap.Logger, waypointService controllers.WaypointService) *API {
	return &API{
		log:             log,
		hub:             controllers.NewHub(log),
		waypointService: waypointService,
	}
}

// Publish pushes route to every websocket subscriber.
func (api *API) Publish(route usecases.Route) {
	api.hub.Broadcast(route)
}

func (api *API) Handler(rateLimit RateLimit) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	group := router_helper.NewRouteGroup(router, "/api")
	waypointRoutes := controllers.New(api.waypointService, api.log)
	waypointRoutes.Routes(group)

	router.GET("/ws", api.serveWebsocket)

	mwChain := []alice.Constructor{corsHandler.Handler, api.recoverPanic,
		RealIP, Heartbeat("healthz"), Logger(api.log)}
	if rateLimit.Enabled {
		mwChain = append(mwChain, Limit(rateLimit.Rate, rateLimit.Burst))
	}
	mwChain = append(mwChain, EnforceJSONHandler)
	return alice.New(mwChain...).Then(router)
}

// Run serves the api until ctx is cancelled or the server fails.
func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	rateLimit RateLimit,
) error {
	api.log.Info("Run httprouter API")

	srv := http_server.New(ctx, api.Handler(rateLimit), config, true)
	api.log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		api.log.Info("HTTP server stopped", zap.Error(err))
		api.hub.RemoveAllUser()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		api.log.Info("Context canceled, shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		defer cancel()
		api.hub.RemoveAllUser()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	}
}
