package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// SyncPath is the only path the sync server upgrades on.
const SyncPath = "/sync"

// testStartMessage is the JSON frame announcing the next test's display
// name to every connected client.
type testStartMessage struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// SyncServer is the WebSocket broadcast server that lets the spawned bun
// process hold at startup until a companion (typically an attached
// inspector) is ready, and learn each test's assigned display name before
// the test starts.
type SyncServer interface {
	// Start binds an HTTP listener on the port (0 picks a free one) and
	// installs the upgrade handler on SyncPath. Other paths return 404;
	// plain HTTP requests to SyncPath return 400.
	Start(ctx context.Context, port int) error

	// Port reports the bound port, 0 before Start.
	Port() int

	// SignalReady broadcasts a literal "ready" text frame. Clients that
	// connect afterwards receive it immediately on connect.
	SignalReady()

	// SendTestStart broadcasts {"type":"testStart","name":name}.
	SendTestStart(name string)

	// Close disconnects every client, shuts the listener down, and clears
	// the client set. Safe to call repeatedly and without a prior Start.
	Close()
}

// WebSocketSyncServer implements SyncServer on gorilla/websocket.
type WebSocketSyncServer struct {
	upgrader websocket.Upgrader

	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	server   *http.Server
	port     int
	signaled bool
}

// NewWebSocketSyncServer constructs an unstarted WebSocketSyncServer.
func NewWebSocketSyncServer() *WebSocketSyncServer {
	return &WebSocketSyncServer{
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Start implements SyncServer.
func (s *WebSocketSyncServer) Start(ctx context.Context, port int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return fmt.Errorf("failed to bind sync server: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)

	server := &http.Server{Handler: mux}

	s.mu.Lock()
	s.server = server
	s.port = listener.Addr().(*net.TCPAddr).Port
	s.mu.Unlock()

	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("Sync server stopped", "error", serveErr)
		}
	}()

	slog.Debug("Sync server listening", "port", s.Port())

	return nil
}

// Port implements SyncServer.
func (s *WebSocketSyncServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.port
}

func (s *WebSocketSyncServer) handleRequest(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != SyncPath {
		http.NotFound(w, r)
		return
	}

	if !websocket.IsWebSocketUpgrade(r) {
		http.Error(w, "websocket upgrade required", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("Sync upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	replayReady := s.signaled
	s.mu.Unlock()

	slog.Debug("Sync client connected", "remote", conn.RemoteAddr())

	// A client that attaches after the ready signal must not hang waiting
	// for a frame that already went out.
	if replayReady {
		s.writeTo(conn, websocket.TextMessage, []byte("ready"))
	}

	go s.readLoop(conn)
}

// readLoop drains and discards client frames; no client-to-server message
// is acted upon. Its only job is detecting disconnects.
func (s *WebSocketSyncServer) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.dropClient(conn)
			return
		}
	}
}

func (s *WebSocketSyncServer) dropClient(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()

	_ = conn.Close()
	slog.Debug("Sync client disconnected", "remote", conn.RemoteAddr())
}

// SignalReady implements SyncServer.
func (s *WebSocketSyncServer) SignalReady() {
	s.mu.Lock()
	s.signaled = true
	s.mu.Unlock()

	s.broadcast(websocket.TextMessage, []byte("ready"))
}

// SendTestStart implements SyncServer.
func (s *WebSocketSyncServer) SendTestStart(name string) {
	payload, err := jsonMarshalTestStart(name)
	if err != nil {
		slog.Error("Failed to encode testStart frame", "name", name, "error", err)
		return
	}

	s.broadcast(websocket.TextMessage, payload)
}

// broadcast writes the frame to every tracked client. A failed or closed
// client is skipped; one bad connection never aborts the rest.
func (s *WebSocketSyncServer) broadcast(messageType int, payload []byte) {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		s.writeTo(conn, messageType, payload)
	}
}

func (s *WebSocketSyncServer) writeTo(conn *websocket.Conn, messageType int, payload []byte) {
	if err := conn.WriteMessage(messageType, payload); err != nil {
		slog.Debug("Sync broadcast to client failed", "remote", conn.RemoteAddr(), "error", err)
	}
}

func jsonMarshalTestStart(name string) ([]byte, error) {
	return json.Marshal(testStartMessage{Type: "testStart", Name: name})
}

// Close implements SyncServer.
func (s *WebSocketSyncServer) Close() {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}

	s.clients = make(map[*websocket.Conn]struct{})
	server := s.server
	s.server = nil
	s.port = 0
	s.signaled = false
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}

	if server != nil {
		_ = server.Close()
	}
}
