// Package preview serves the live frame stream, diagnostics and health over
// HTTP and WebSocket so a browser can mirror the tree.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	diag "github.com/coreman2200/treelights/internal/diagnostics"
	"github.com/coreman2200/treelights/internal/layout"
)

// Server is both an output sink and a diagnostics publisher.
type Server struct {
	mu     sync.RWMutex
	tree   *layout.Tree
	fps    int
	effect string

	rgb       []byte
	frameID   uint64
	startTime time.Time

	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool

	throttle rate.Sometimes
	log      zerolog.Logger
}

// New builds a server for tree. Frames reach clients at most every interval.
func New(tree *layout.Tree, fps int, interval time.Duration, log zerolog.Logger) *Server {
	if interval <= 0 {
		interval = 50 * time.Millisecond // ~20 FPS to the browser
	}
	return &Server{
		tree:        tree,
		fps:         fps,
		rgb:         make([]byte, tree.Len()*3),
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
		throttle:    rate.Sometimes{Interval: interval},
		log:         log.With().Str("component", "preview").Logger(),
	}
}

// Handler routes /ws (frames), /diag (diagnostics) and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return withCORS(mux)
}

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()
	s.log.Info().Str("addr", addr).Msg("preview server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// SetEffect records the active effect name reported by /health.
func (s *Server) SetEffect(name string) {
	s.mu.Lock()
	s.effect = name
	s.mu.Unlock()
}

// Write stores the frame and, throttled, broadcasts it to frame clients.
func (s *Server) Write(rgb []byte) error {
	s.mu.Lock()
	if len(s.rgb) != len(rgb) {
		s.rgb = make([]byte, len(rgb))
	}
	copy(s.rgb, rgb)
	s.frameID++
	s.mu.Unlock()

	s.throttle.Do(s.broadcastFrame)
	return nil
}

// Publish pushes d to every diagnostics client.
func (s *Server) Publish(d diag.Diagnostic) {
	b, err := json.Marshal(d)
	if err != nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.diagClients {
		_ = c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}

// Close disconnects every client.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		_ = c.Close()
	}
	for c := range s.diagClients {
		_ = c.Close()
	}
	s.clients = map[*websocket.Conn]bool{}
	s.diagClients = map[*websocket.Conn]bool{}
	return nil
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	// Topology goes out before the conn joins the broadcast set so the two
	// writers never overlap.
	s.sendTopology(conn)
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	go s.readUntilClosed(conn, s.clients)
}

func (s *Server) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.diagClients[conn] = true
	s.mu.Unlock()
	go s.readUntilClosed(conn, s.diagClients)
}

func (s *Server) readUntilClosed(conn *websocket.Conn, set map[*websocket.Conn]bool) {
	defer func() {
		s.mu.Lock()
		delete(set, conn)
		s.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Health is the /health response body.
type Health struct {
	FrameID uint64  `json:"frame_id"`
	UptimeS float64 `json:"uptime_s"`
	Count   int     `json:"count"`
	FPS     int     `json:"fps"`
	Effect  string  `json:"effect"`
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := Health{
		FrameID: s.frameID,
		UptimeS: time.Since(s.startTime).Seconds(),
		Count:   s.tree.Len(),
		FPS:     s.fps,
		Effect:  s.effect,
	}
	s.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Topology is the first message on /ws: LED positions in index order.
type Topology struct {
	Count     int          `json:"count"`
	Positions [][3]float64 `json:"positions"`
}

func (s *Server) sendTopology(conn *websocket.Conn) {
	top := Topology{Count: s.tree.Len(), Positions: make([][3]float64, s.tree.Len())}
	for i, p := range s.tree.Positions() {
		top.Positions[i] = [3]float64{p.X, p.Y, p.Z}
	}
	b, _ := json.Marshal(top)
	_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

// Frame is a frame message on /ws. RGB is base64 in JSON.
type Frame struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	RGB     []byte `json:"rgb"`
}

func (s *Server) broadcastFrame() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.clients) == 0 {
		return
	}
	b, _ := json.Marshal(Frame{T: time.Now().UnixNano(), FrameID: s.frameID, RGB: s.rgb})
	for c := range s.clients {
		_ = c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			s.log.Debug().Err(err).Msg("write frame")
		}
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.ServeHTTP(w, r)
	})
}
