package router

import (
	"net"
	"net/http"

	"github.com/gobwas/ws"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// serveWebsocket upgrades the request and registers the connection with the hub. the user gets the
// current route at once and a new one after every completed computation.
func (api *API) serveWebsocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, _, hs, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		api.log.Info("upgrade error", zap.Error(err))
		return
	}

	api.log.Info("established websocket connection", zap.String("connnection name", nameConn(conn)),
		zap.String("protocol", hs.Protocol))

	user := api.hub.Register(conn)
	if err := api.hub.Send(user, api.waypointService.GetRoute()); err != nil {
		api.log.Info("initial route push failed", zap.Error(err))
		api.hub.Remove(user)
		return
	}

	go func() {
		defer api.hub.Remove(user)
		for {
			if err := user.Receive(); err != nil {
				api.log.Info("user disconnected from websocket server", zap.Uint("user", user.GetID()),
					zap.Error(err))
				return
			}
		}
	}()
}

func nameConn(conn net.Conn) string {
	return conn.LocalAddr().String() + " > " + conn.RemoteAddr().String()
}
