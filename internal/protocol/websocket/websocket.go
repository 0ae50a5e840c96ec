/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	websocket.go: broadcasts the latest ownship state to every connected EFB
	over a JSON WebSocket feed. This protocol never places anything in the
	common payload queue -- it writes directly through the broadcaster, so
	it bypasses GDL90 framing and UDP transport entirely.
*/

package websocket

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/stratux/pitot/common"
	gdl90handle "github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/processor"
	"github.com/stratux/pitot/internal/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server implements protocol.Protocol, broadcasting Ownship reports to every
// client connected to its WebSocket listener.
type Server struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// New starts a WebSocket server listening on addr (e.g. "0.0.0.0:9001") and
// returns the protocol stage that broadcasts to it.
func New(addr string) *Server {
	s := &Server{clients: make(map[*websocket.Conn]bool)}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleConn)

	go func() {
		common.Log.Infof("websocket: listening on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			common.Log.Errorf("websocket: listener exited: %v", err)
		}
	}()

	return s
}

func (s *Server) handleConn(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		common.Log.Debugf("websocket: upgrade failed: %v", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	// This server cannot receive messages, it only sends them. Any inbound
	// frame is refused by closing the connection.
	go func() {
		defer s.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			common.Log.Debug("websocket: refusing unexpected inbound message")
			_ = conn.Close()
			return
		}
	}()
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	_ = conn.Close()
}

func (s *Server) broadcast(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			common.Log.Debugf("websocket: write failed, dropping client: %v", err)
			delete(s.clients, conn)
			_ = conn.Close()
		}
	}
}

type typedOwnship struct {
	processor.Ownship
	Type string `json:"type"`
}

func (s *Server) Step(h gdl90handle.Pushable[protocol.Payload], in []processor.Report) {
	for _, e := range in {
		v, ok := e.(processor.OwnshipReport)
		if !ok {
			continue
		}

		js, err := json.Marshal(typedOwnship{Ownship: v.Ownship, Type: "Ownship"})
		if err != nil {
			common.Log.Errorf("websocket: failed to marshal ownship: %v", err)
			continue
		}
		s.broadcast(js)
	}
}
