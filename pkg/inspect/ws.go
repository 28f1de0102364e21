package inspect

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// wsSendBuffer is the per-client outbound queue. A client that cannot
	// keep up has updates dropped rather than stalling the notifier.
	wsSendBuffer = 64

	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The inspector is a same-host development tool; origin checking is
	// left to any fronting middleware.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsClient is one connected inspector client.
type wsClient struct {
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// handleWS upgrades the connection and streams variable updates. On
// connect the client receives a full snapshot, then one message per value
// change.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, wsSendBuffer),
	}

	// The write loop must be draining before the snapshot is queued: the
	// snapshot can exceed the send buffer, and a blocked send here would
	// leak this handler goroutine.
	go s.writeLoop(client)

	// Snapshot before registering so the client never sees an update for
	// state it has no baseline for.
	for _, state := range s.snapshot() {
		if msg, err := json.Marshal(state); err == nil {
			client.send <- msg
		}
	}

	s.mu.Lock()
	s.clients[client] = struct{}{}
	s.mu.Unlock()
	s.metrics.wsClients.Inc()

	s.readLoop(client)
}

// readLoop consumes inbound frames until the peer disconnects. The
// inspector protocol is one-way; reads exist only to detect closure.
func (s *Server) readLoop(client *wsClient) {
	defer s.dropClient(client)

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("websocket read error", "error", err)
			}
			return
		}
	}
}

// writeLoop drains the send queue onto the connection.
func (s *Server) writeLoop(client *wsClient) {
	for msg := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
	client.conn.Close()
}

// dropClient unregisters the client and tears its connection down.
// Closing the send channel under s.mu keeps it ordered against broadcast,
// which sends under the same lock.
func (s *Server) dropClient(client *wsClient) {
	s.mu.Lock()
	_, ok := s.clients[client]
	if ok {
		delete(s.clients, client)
		client.close()
	}
	s.mu.Unlock()

	if ok {
		s.metrics.wsClients.Dec()
	}
}

// broadcast queues a value update to every connected client. Slow clients
// miss updates instead of blocking the variable's notifier dispatch.
func (s *Server) broadcast(name string, value any) {
	msg, err := json.Marshal(varState{Name: name, Value: renderValue(value)})
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		select {
		case client.send <- msg:
		default:
		}
	}
}
