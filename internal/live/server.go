package live

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dshills/sceneforge/internal/logging"
	"github.com/dshills/sceneforge/internal/scene"
)

// Server defaults.
const (
	DefaultMaxClients = 32
	sendBuffer        = 256
	pongWait          = 60 * time.Second
	pingPeriod        = 30 * time.Second
	writeWait         = 10 * time.Second
)

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithMaxClients limits concurrent websocket connections.
func WithMaxClients(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxClients = n
		}
	}
}

// WithLogger sets the logger for the server and its session.
func WithLogger(l *logging.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logging.OrNull(l).WithComponent("live")
	}
}

// WithSessionOptions passes options to the server's session.
func WithSessionOptions(opts ...SessionOption) ServerOption {
	return func(s *Server) {
		s.sessionOpts = append(s.sessionOpts, opts...)
	}
}

type client struct {
	conn *websocket.Conn
	send chan []byte

	// closed is guarded by Server.mu and set when send is closed.
	closed bool
}

// Server exposes a Session over HTTP and websockets.
type Server struct {
	session     *Session
	sessionOpts []SessionOption
	upgrader    websocket.Upgrader
	maxClients  int
	logger      *logging.Logger

	mu      sync.RWMutex
	clients map[*client]bool
}

// NewServer creates a server and the session that owns sc. Run the session
// with Session().Run before serving requests.
func NewServer(sc *scene.Scene, opts ...ServerOption) *Server {
	s := &Server{
		maxClients: DefaultMaxClients,
		logger:     logging.NullLogger,
		clients:    make(map[*client]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin:     sameOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	sessOpts := append([]SessionOption{WithSessionLogger(s.logger)}, s.sessionOpts...)
	sessOpts = append(sessOpts, WithPublisher(s.broadcast))
	s.session = NewSession(sc, sessOpts...)
	return s
}

// sameOrigin accepts requests without an Origin header and requests whose
// origin host matches the request host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// Session returns the server's session.
func (s *Server) Session() *Session {
	return s.session
}

// Handler returns the HTTP handler for the server routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/scene", s.handleScene)
	return mux
}

// ListenAndServe runs the session and serves HTTP on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the session and serves HTTP on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	sessionDone := make(chan error, 1)
	go func() { sessionDone <- s.session.Run(ctx) }()

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		s.closeClients()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("serving on %s", ln.Addr())
	err := srv.Serve(ln)
	cancel()
	<-sessionDone
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	doc, err := s.session.Document(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		s.logger.Warn("encode scene: %v", err)
	}
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.ClientCount() >= s.maxClients {
		http.Error(w, "maximum clients reached", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	go s.writeLoop(c)

	if err := s.register(r.Context(), c); err != nil {
		return
	}
	s.logger.Debug("client connected from %s", r.RemoteAddr)
	s.readLoop(r.Context(), c)
}

// register adds c on the session goroutine, so its initial scene message is
// queued before any tracker change. The work may still run after Do gave up
// on ctx; it then finds c released or ctx done and leaves it out.
func (s *Server) register(ctx context.Context, c *client) error {
	err := s.session.Do(ctx, func(sc *scene.Scene) {
		s.mu.Lock()
		if c.closed || ctx.Err() != nil {
			s.mu.Unlock()
			return
		}
		s.clients[c] = true
		s.mu.Unlock()
		s.sendTo(c, SceneMessage{Type: TypeScene, Scene: sc.Document()})
	})
	if err != nil {
		s.drop(c)
	}
	return err
}

func (s *Server) readLoop(ctx context.Context, c *client) {
	defer s.drop(c)

	c.conn.SetReadLimit(64 * 1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var cmd Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read: %v", err)
			}
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				s.sendTo(c, reply(fail("malformed command: %v", err)))
				continue
			}
			return
		}
		s.sendTo(c, reply(s.session.Execute(ctx, cmd)))
	}
}

func (s *Server) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) sendTo(c *client, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Warn("marshal message: %v", err)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
		s.logger.Warn("client send buffer full, dropping message")
	}
}

// broadcast queues msg for every client. Slow clients drop messages rather
// than stall the session goroutine.
func (s *Server) broadcast(msg any) {
	if s.ClientCount() == 0 {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Warn("marshal message: %v", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	s.release(c)
	s.mu.Unlock()
}

func (s *Server) closeClients() {
	s.mu.Lock()
	for c := range s.clients {
		s.release(c)
	}
	s.mu.Unlock()
}

// release unregisters c and closes its send channel once. s.mu must be held.
func (s *Server) release(c *client) {
	delete(s.clients, c)
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
