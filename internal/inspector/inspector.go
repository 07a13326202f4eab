// Package inspector serves live tree diagnostics over HTTP: node transitions
// are streamed to websocket clients and agent snapshots are served as JSON.
package inspector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/btree/internal/config"
	"github.com/zeusync/btree/internal/core/agent"
	"github.com/zeusync/btree/internal/core/events/bus"
	"github.com/zeusync/btree/internal/core/observability/log"
)

const (
	sendBuffer   = 256
	writeTimeout = 5 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = pongTimeout * 9 / 10
)

// Message is the envelope written to websocket clients.
type Message struct {
	Type   string    `json:"type"`
	Source string    `json:"source"`
	Time   time.Time `json:"time"`
	Data   any       `json:"data"`
}

// AgentInfo is one entry of the /agents listing.
type AgentInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Tree   string `json:"tree"`
	Frames uint64 `json:"frames"`
	Status string `json:"status"`
	Done   bool   `json:"done"`
	Halted string `json:"halted,omitempty"`
}

// Server streams bus events and exposes agent state.
type Server struct {
	bus      bus.EventBus
	agents   *agent.Manager
	logger   log.Log
	cfg      config.InspectorConfig
	upgrader websocket.Upgrader
	mux      *http.ServeMux

	mu      sync.Mutex
	clients map[string]*client
	server  *http.Server
	running int32
	dropped atomic.Uint64
}

func New(b bus.EventBus, agents *agent.Manager, logger log.Log, cfg config.InspectorConfig) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Server{
		bus:     b,
		agents:  agents,
		logger:  logger.With(log.String("component", "inspector")),
		cfg:     cfg,
		clients: make(map[string]*client),
	}
	allowed := cfg.AllowedOrigins
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, o := range allowed {
				if o == origin {
					return true
				}
			}
			return false
		},
	}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/agents", s.handleAgents)
	s.mux.HandleFunc("/snapshot", s.handleSnapshot)
	s.mux.HandleFunc("/health", s.handleHealth)
	return s
}

// Handle mounts an extra handler, e.g. the metrics endpoint.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.mux.Handle(pattern, h)
}

func (s *Server) Handler() http.Handler { return s.mux }

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Dropped returns the number of events discarded for slow clients.
func (s *Server) Dropped() uint64 { return s.dropped.Load() }

// Start listens on cfg.Addr in the background and returns the bound address.
func (s *Server) Start() (net.Addr, error) {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return nil, errors.New("inspector is already running")
	}
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		return nil, fmt.Errorf("inspector listen %s: %w", s.cfg.Addr, err)
	}
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("inspector server error", log.Error(err))
		}
	}()
	s.logger.Info("inspector started", log.String("address", ln.Addr().String()))
	return ln.Addr(), nil
}

// Stop closes every client and shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return errors.New("inspector is not running")
	}
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	srv := s.server
	s.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown inspector: %w", err)
	}
	s.logger.Info("inspector stopped")
	return nil
}

type client struct {
	id     string
	agent  string
	conn   *websocket.Conn
	send   chan Message
	done   chan struct{}
	once   sync.Once
	sub    bus.Subscription
	server *Server
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		if c.sub != nil {
			_ = c.sub.Cancel()
		}
		_ = c.conn.Close()
		c.server.mu.Lock()
		delete(c.server.clients, c.id)
		c.server.mu.Unlock()
	})
}

// handleWebSocket streams every bus event, optionally filtered to one agent
// with ?agent=id.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	c := &client{
		id:     uuid.NewString(),
		agent:  r.URL.Query().Get("agent"),
		send:   make(chan Message, sendBuffer),
		done:   make(chan struct{}),
		server: s,
	}

	// Subscribe before the handshake completes so that nothing published
	// after the client sees the upgrade is lost.
	sub, err := s.bus.Subscribe(bus.AllEvents, c.enqueue)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	c.sub = sub

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		_ = sub.Cancel()
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}
	c.conn = conn

	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	s.logger.Debug("inspector client connected", log.String("client", c.id), log.String("filter", c.agent))

	go c.writeLoop()
	go c.readLoop()
}

func (c *client) enqueue(ev bus.Event) error {
	if c.agent != "" && ev.Source() != c.agent {
		return nil
	}
	msg := Message{Type: ev.Type(), Source: ev.Source(), Time: ev.Timestamp(), Data: ev.Data()}
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		c.server.dropped.Add(1)
	}
	return nil
}

// readLoop only keeps the connection alive; clients never send commands.
func (c *client) readLoop() {
	defer c.close()
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writeLoop() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	defer c.close()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.server.logger.Debug("inspector client write failed", log.String("client", c.id), log.Error(err))
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleAgents(w http.ResponseWriter, _ *http.Request) {
	all := s.agents.All()
	out := make([]AgentInfo, 0, len(all))
	for _, a := range all {
		info := AgentInfo{
			ID:     a.ID(),
			Name:   a.Name(),
			Tree:   a.Tree().Name(),
			Frames: a.Frames(),
			Status: a.LastStatus().String(),
			Done:   a.Done(),
		}
		if err := a.Halted(); err != nil {
			info.Halted = err.Error()
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("agent")
	if id == "" {
		http.Error(w, "missing agent parameter", http.StatusBadRequest)
		return
	}
	a, ok := s.agents.Get(id)
	if !ok {
		http.Error(w, fmt.Sprintf("%v: %s", agent.ErrNotFound, id), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"agents":  s.agents.Len(),
		"clients": s.Clients(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Attach publishes a's tree transitions on b under the agent id, which is
// the value clients filter on with ?agent=id.
func Attach(b bus.EventBus, a *agent.Agent) *bus.TreeBridge {
	tb := bus.NewTreeBridge(b, a.ID())
	a.Tree().AddObserver(tb)
	return tb
}
