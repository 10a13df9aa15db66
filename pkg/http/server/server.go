package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

type Config struct {
	Port    int
	Timeout time.Duration
}

// New returns an http server for handler on config.Port. websocket servers get no write timeout
// since their connections are long lived.
func New(ctx context.Context, handler http.Handler, config Config, websocket bool) *http.Server {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Port),
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	if !websocket {
		srv.ReadTimeout = config.Timeout
		srv.WriteTimeout = config.Timeout + 5*time.Second
	}
	return srv
}
