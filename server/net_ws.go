package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// spectator is one read-only websocket viewer of the world.
type spectator struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
}

func newSpectator(ws *websocket.Conn) *spectator {
	return &spectator{
		ws:   ws,
		send: make(chan []byte, 16),
		done: make(chan struct{}),
	}
}

// enqueue never blocks; a slow viewer loses frames instead of stalling the feed.
func (c *spectator) enqueue(b []byte) bool {
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// writePump is the only writer of the connection.
func (c *spectator) writePump() {
	ping := time.NewTicker(wsPingPeriod)
	defer func() {
		ping.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

// readPump drains the connection so control frames are processed and closes
// done when the viewer goes away. Anything the viewer sends is ignored.
func (c *spectator) readPump() {
	defer func() {
		close(c.done)
		_ = c.ws.Close()
	}()
	c.ws.SetReadLimit(1 << 10)
	_ = c.ws.SetReadDeadline(time.Now().Add(wsPongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// viewers are renderers on other origins
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS streams the world as JSON every Config.SpectatorPeriod, skipping
// periods in which no tick ran.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("websocket upgrade: %v", err)
		return
	}
	c := newSpectator(ws)
	s.metrics.AddSpectator(1)
	Log.Infof("spectator connected from %s", r.RemoteAddr)

	go c.writePump()
	go c.readPump()
	go s.feed(c)
}

func (s *Server) feed(c *spectator) {
	period := s.cfg.SpectatorPeriod
	if period <= 0 {
		period = DefaultConfig().SpectatorPeriod
	}
	ticker := time.NewTicker(period)
	defer func() {
		ticker.Stop()
		close(c.send)
		s.metrics.AddSpectator(-1)
		Log.Infof("spectator %s disconnected", c.ws.RemoteAddr())
	}()

	var last uint64
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			snap, ok := s.world.Snapshot()
			if !ok || snap.Counter == last {
				continue
			}
			last = snap.Counter
			b, err := json.Marshal(snap)
			if err != nil {
				Log.Errorf("encode world for spectator: %v", err)
				continue
			}
			c.enqueue(b)
		}
	}
}
