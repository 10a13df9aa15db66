package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/engine/itinerary"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/engine/routing"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/geo"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/http/router/controllers"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/http/usecases"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/spatialindex"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	graph       *da.Graph
	coordinator *itinerary.Coordinator
	api         *API
	server      *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()
	graph := da.NewGridGraph(3, 3, -7.8, 110.35, 0.2)

	rt := spatialindex.NewRtree()
	rt.Build(graph, log)

	cache, err := routing.NewLegCache(64)
	require.NoError(t, err)
	engine := routing.NewRoutingEngine(graph, util.RoutingConfig{
		MaxExpansions:    5000,
		HeuristicFactor:  0.95,
		TableParallelism: 2,
	}, log)
	coordinator := itinerary.NewCoordinator(context.Background(), engine, cache, log)

	service := usecases.NewWaypointService(log, coordinator, rt, graph, 0.05, 1)
	api := NewAPI(log, service)
	coordinator.SetListener(func(s itinerary.Snapshot) {
		api.Publish(service.NewRoute(s))
	})

	srv := httptest.NewServer(api.Handler(RateLimit{}))
	t.Cleanup(func() {
		srv.Close()
		coordinator.Close()
		coordinator.Wait()
	})
	return &testEnv{graph: graph, coordinator: coordinator, api: api, server: srv}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.server.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func (e *testEnv) vertexBody(t *testing.T, id da.Index) map[string]float64 {
	v, err := e.graph.GetVertex(id)
	require.NoError(t, err)
	return map[string]float64{"lat": v.GetLat(), "lon": v.GetLon()}
}

func TestAddWaypointsAndGetRoute(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/waypoints", env.vertexBody(t, 0))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 0.0, body["data"].(map[string]any)["vertex"])

	resp, body = env.do(t, http.MethodPost, "/api/waypoints", env.vertexBody(t, 8))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 8.0, body["data"].(map[string]any)["vertex"])

	env.coordinator.Wait()

	resp, body = env.do(t, http.MethodGet, "/api/route", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "point_to_point", data["mode"])
	legs := data["legs"].([]any)
	require.Len(t, legs, 1)

	leg := legs[0].(map[string]any)
	assert.Equal(t, true, leg["reachable"])
	assert.InDelta(t, 0.8, leg["distance"].(float64), 0.01)

	coords, err := geo.CoordsFromPolyline(leg["path"].(string))
	require.NoError(t, err)
	// four hops on the grid
	assert.Len(t, coords, 5)
}

func TestAddWaypointValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"latitude out of range", map[string]float64{"lat": 120, "lon": 110.35}, http.StatusBadRequest},
		{"missing longitude", map[string]float64{"lat": -7.8}, http.StatusBadRequest},
		{"no road nearby", map[string]float64{"lat": 40, "lon": -70}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.do(t, http.MethodPost, "/api/waypoints", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, body, "error")
		})
	}
}

func TestSetPolicy(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPut, "/api/policy",
		map[string]any{"mode": "grand_tour", "heuristic": "astar"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := env.do(t, http.MethodPut, "/api/policy",
		map[string]any{"mode": "tsp", "heuristic": "dijkstra", "use_restricted": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "tsp", data["mode"])
	assert.Equal(t, "dijkstra", data["heuristic"])
	assert.Equal(t, true, data["use_restricted"])
	assert.Equal(t, itinerary.TSP, env.coordinator.GetMode())
}

func TestClearAndRecompute(t *testing.T) {
	env := newTestEnv(t)

	for _, id := range []da.Index{0, 2, 6} {
		resp, _ := env.do(t, http.MethodPost, "/api/waypoints", env.vertexBody(t, id))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	env.coordinator.Wait()

	resp, _ := env.do(t, http.MethodPost, "/api/recompute", nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	env.coordinator.Wait()
	assert.Len(t, env.coordinator.GetRoute().Legs, 2)

	resp, _ = env.do(t, http.MethodDelete, "/api/waypoints", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, env.coordinator.GetRoute().Waypoints)
}

func TestRouteResponseEncodesNonFiniteCosts(t *testing.T) {
	resp := controllers.NewRouteResponse(usecases.Route{
		Mode:     "tsp",
		Distance: math.Inf(1),
		Legs: []usecases.Leg{
			{Start: 0, End: 1, Cost: 2, Reachable: true},
			{Start: 1, End: 0, Cost: math.Inf(1)},
		},
	})
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, 0.0, out["distance"])
	legs := out["legs"].([]any)
	require.Len(t, legs, 2)
	assert.Equal(t, 2.0, legs[0].(map[string]any)["distance"])
	assert.Equal(t, false, legs[1].(map[string]any)["reachable"])
}

func TestClearPushesEmptyRoute(t *testing.T) {
	env := newTestEnv(t)
	conn, rd := env.dialWebsocket(t)
	defer conn.Close()

	for _, id := range []da.Index{0, 4} {
		resp, _ := env.do(t, http.MethodPost, "/api/waypoints", env.vertexBody(t, id))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	require.Len(t, readRoute(t, rd)["legs"].([]any), 1)

	resp, _ := env.do(t, http.MethodDelete, "/api/waypoints", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	cleared := readRoute(t, rd)
	assert.Empty(t, cleared["waypoints"])
	assert.Empty(t, cleared["legs"])
}

func TestHeartbeat(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.server.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEnforceJSON(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Post(env.server.URL+"/api/waypoints", "text/plain", strings.NewReader("lat=1"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestLimit(t *testing.T) {
	h := Limit(1, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/route", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/route", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecoverPanic(t *testing.T) {
	api := NewAPI(zap.NewNop(), nil)
	h := api.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func readRoute(t *testing.T, rd io.Reader) map[string]any {
	t.Helper()
	msg, _, err := wsutil.ReadServerData(struct {
		io.Reader
		io.Writer
	}{rd, io.Discard})
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(msg, &out))
	return out["data"].(map[string]any)
}

// dialWebsocket connects to /ws and consumes the initial route push.
func (e *testEnv) dialWebsocket(t *testing.T) (net.Conn, io.Reader) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, br, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(e.server.URL, "http")+"/ws")
	require.NoError(t, err)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var rd io.Reader = conn
	if br != nil {
		// br wraps conn and may already hold the first frame
		rd = br
	}

	initial := readRoute(t, rd)
	assert.Empty(t, initial["legs"])

	require.Eventually(t, func() bool { return e.api.hub.Len() == 1 }, time.Second, 10*time.Millisecond)
	return conn, rd
}

func TestWebsocketPushesRoutes(t *testing.T) {
	env := newTestEnv(t)
	conn, rd := env.dialWebsocket(t)
	defer conn.Close()

	for _, id := range []da.Index{0, 4} {
		resp, _ := env.do(t, http.MethodPost, "/api/waypoints", env.vertexBody(t, id))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	pushed := readRoute(t, rd)
	legs := pushed["legs"].([]any)
	require.Len(t, legs, 1)
	assert.Equal(t, 4.0, legs[0].(map[string]any)["end"])
}
