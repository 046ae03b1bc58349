// Package live serves editor sessions over WebSocket. Each connection owns
// one editor.Session driven by its own scheduler.Loop; the browser sends
// raw input and toolbar actions, the server answers with scene snapshots
// and status updates.
package live

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/recera/nodegraph/pkg/catalog"
	"github.com/recera/nodegraph/pkg/graph"
	"github.com/recera/nodegraph/pkg/layout"
	"github.com/recera/nodegraph/pkg/viewport"
)

const (
	writeWait  = 10 * time.Second
	readWait   = 300 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// Options configures a Server.
type Options struct {
	// Layout names the layout engine for new sessions.
	Layout        string
	LayoutOptions *layout.Options
	Viewport      *viewport.Options
	// Geometry overrides the node sizes of new sessions.
	Geometry *graph.Metrics
	// FrameInterval is the layout tick period of each session.
	FrameInterval time.Duration
	// CheckOrigin validates the WebSocket origin. Nil accepts any origin.
	CheckOrigin func(r *http.Request) bool
	Logger      *zap.Logger
	Metrics     *Metrics
}

func (o *Options) withDefaults() Options {
	d := Options{Layout: layout.KindForce}
	if o != nil {
		d = *o
	}
	if d.Layout == "" {
		d.Layout = layout.KindForce
	}
	if d.CheckOrigin == nil {
		d.CheckOrigin = func(*http.Request) bool { return true }
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = NewMetrics()
	}
	return d
}

// Server handles WebSocket connections and the JSON side endpoints.
type Server struct {
	opts     Options
	log      *zap.Logger
	metrics  *Metrics
	upgrader websocket.Upgrader
	catalog  atomic.Pointer[catalog.Catalog]

	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewServer creates a server that opens sessions over cat.
func NewServer(cat *catalog.Catalog, opts *Options) *Server {
	o := opts.withDefaults()
	s := &Server{
		opts:    o,
		log:     o.Logger.Named("live"),
		metrics: o.Metrics,
		upgrader: websocket.Upgrader{
			CheckOrigin:     o.CheckOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sessions: make(map[string]*Session),
	}
	s.SetCatalog(cat)
	return s
}

// SetCatalog replaces the catalog used by sessions opened from now on.
// Open sessions keep the catalog they started with.
func (s *Server) SetCatalog(cat *catalog.Catalog) {
	s.catalog.Store(cat)
	s.metrics.CatalogSize.Set(float64(cat.Len()))
	s.log.Info("catalog set", zap.Int("components", cat.Len()))
}

// Catalog returns the current catalog.
func (s *Server) Catalog() *catalog.Catalog {
	return s.catalog.Load()
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Handler routes the live endpoint, the catalog API, metrics and health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/live", s.HandleWebSocket)
	mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	mux.HandleFunc("GET /api/catalog/{address}", s.handleComponent)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// HandleWebSocket upgrades the request and runs a new session on it.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	session := newSession(s, conn)
	s.addSession(session)
	go func() {
		defer s.removeSession(session.ID)
		session.handleConnection()
	}()
}

// GetSession retrieves a session by ID.
func (s *Server) GetSession(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// SessionCount returns the number of connected sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Shutdown closes every open connection.
func (s *Server) Shutdown() {
	s.mu.RLock()
	open := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		open = append(open, session)
	}
	s.mu.RUnlock()

	for _, session := range open {
		session.Close()
	}
}

func (s *Server) addSession(session *Session) {
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	s.metrics.SessionsActive.Inc()
	s.metrics.SessionsTotal.Inc()
}

func (s *Server) removeSession(id string) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		s.metrics.SessionsActive.Dec()
	}
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog().Tree())
}

func (s *Server) handleComponent(w http.ResponseWriter, r *http.Request) {
	def, ok := s.Catalog().Lookup(r.PathValue("address"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown component"})
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"sessions":   s.SessionCount(),
		"components": s.Catalog().Len(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func newID() string {
	return uuid.NewString()
}
