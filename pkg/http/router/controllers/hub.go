package controllers

import (
	"encoding/json"
	"io"
	"net"
	"sort"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/lintang-b-s/navigatorx-waypoints/pkg/http/usecases"
	"go.uber.org/zap"
)

// User is one websocket subscriber of route updates.
type User struct {
	io   sync.Mutex
	conn io.ReadWriteCloser

	id  uint
	hub *Hub
}

func (u *User) GetID() uint {
	return u.id
}

// Receive reads one client frame. control frames are answered, data frames are ignored.
func (u *User) Receive() error {
	h, r, err := wsutil.NextReader(u.conn, ws.StateServerSide)
	if err != nil {
		return err
	}
	if h.OpCode.IsControl() {
		u.io.Lock()
		defer u.io.Unlock()
		return wsutil.ControlFrameHandler(u.conn, ws.StateServerSide)(h, r)
	}
	_, err = io.Copy(io.Discard, r)
	return err
}

func (u *User) write(x interface{}) error {
	w := wsutil.NewWriter(u.conn, ws.StateServerSide, ws.OpText)
	encoder := json.NewEncoder(w)

	u.io.Lock()
	defer u.io.Unlock()

	if err := encoder.Encode(x); err != nil {
		return err
	}

	return w.Flush()
}

// Hub fans route snapshots out to every connected websocket user.
type Hub struct {
	mu  sync.RWMutex
	seq uint
	us  []*User
	ns  map[uint]*User
	log *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		ns:  make(map[uint]*User),
		us:  make([]*User, 0),
		log: log,
	}
}

func (h *Hub) Register(conn net.Conn) *User {
	user := &User{
		hub:  h,
		conn: conn,
	}

	h.mu.Lock()
	user.id = h.seq
	h.ns[user.id] = user
	h.us = append(h.us, user)

	h.seq++
	h.mu.Unlock()

	return user
}

func (h *Hub) Remove(user *User) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.ns[user.id]; !ok {
		return
	}
	delete(h.ns, user.id)

	i := sort.Search(len(h.us), func(i int) bool {
		return h.us[i].id >= user.id
	})

	newUs := make([]*User, len(h.us)-1)
	copy(newUs[:i], h.us[:i])
	copy(newUs[i:], h.us[i+1:])
	h.us = newUs
	user.conn.Close()
}

func (h *Hub) RemoveAllUser() {
	h.mu.RLock()
	users := make([]*User, len(h.us))
	copy(users, h.us)
	h.mu.RUnlock()

	for _, user := range users {
		h.Remove(user)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.us)
}

// Broadcast sends route to every user. users whose write fails are dropped.
func (h *Hub) Broadcast(route usecases.Route) {
	msg := envelope{"data": NewRouteResponse(route)}

	h.mu.RLock()
	users := make([]*User, len(h.us))
	copy(users, h.us)
	h.mu.RUnlock()

	for _, user := range users {
		if err := user.write(msg); err != nil {
			h.log.Info("dropping websocket user", zap.Uint("user", user.id), zap.Error(err))
			h.Remove(user)
		}
	}
}

// Send writes route to a single user.
func (h *Hub) Send(user *User, route usecases.Route) error {
	return user.write(envelope{"data": NewRouteResponse(route)})
}
