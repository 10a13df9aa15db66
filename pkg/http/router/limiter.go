package router

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 3 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type clientLimiters struct {
	mu      sync.Mutex
	clients map[string]*client
	r       rate.Limit
	burst   int
	lastGC  time.Time
}

func newClientLimiters(r rate.Limit, burst int) *clientLimiters {
	return &clientLimiters{
		clients: make(map[string]*client),
		r:       r,
		burst:   burst,
		lastGC:  time.Now(),
	}
}

// get returns the limiter of ip. clients idle for limiterIdleTTL are forgotten.
func (cl *clientLimiters) get(ip string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := time.Now()
	if now.Sub(cl.lastGC) > limiterIdleTTL {
		for k, c := range cl.clients {
			if now.Sub(c.lastSeen) > limiterIdleTTL {
				delete(cl.clients, k)
			}
		}
		cl.lastGC = now
	}

	c, ok := cl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(cl.r, cl.burst)}
		cl.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter
}
