package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/navigatorx-waypoints/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type waypointAPI struct {
	waypointService WaypointService
	validator       *requestValidator
	log             *zap.Logger
}

func New(waypointService WaypointService, log *zap.Logger) *waypointAPI {
	return &waypointAPI{
		waypointService: waypointService,
		validator:       newRequestValidator(),
		log:             log,
	}
}

func (api *waypointAPI) Routes(group *helper.RouteGroup) {
	group.POST("/waypoints", api.addWaypoint)
	group.DELETE("/waypoints", api.clearWaypoints)
	group.PUT("/policy", api.setPolicy)
	group.POST("/recompute", api.recompute)
	group.GET("/route", api.getRoute)
}

func (api *waypointAPI) addWaypoint(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request addWaypointRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validator.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	v, err := api.waypointService.AddWaypoint(*request.Lat, *request.Lon)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, envelope{"data": addWaypointResponse{Vertex: uint32(v)}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *waypointAPI) clearWaypoints(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	api.waypointService.ClearWaypoints()
	w.WriteHeader(http.StatusNoContent)
}

func (api *waypointAPI) setPolicy(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request setPolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validator.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	if err := api.waypointService.SetPolicy(request.Mode, request.Heuristic, request.UseRestricted); err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"data": NewRouteResponse(api.waypointService.GetRoute())}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *waypointAPI) recompute(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	api.waypointService.Recompute()
	w.WriteHeader(http.StatusAccepted)
}

func (api *waypointAPI) getRoute(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if err := writeJSON(w, http.StatusOK, envelope{"data": NewRouteResponse(api.waypointService.GetRoute())}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}
