// Package server exposes map generation over WebSocket. A client connects,
// authenticates with a shared token, and submits generation requests; the
// server streams progress and returns the finished map as a YAML archive.
package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/cinderworks/mapforge/internal/config"
	"github.com/cinderworks/mapforge/internal/logger"
	"github.com/cinderworks/mapforge/internal/store"
)

// Server is the generation service.
type Server struct {
	cfg   *config.Config
	store *store.Store

	// jobs bounds concurrent generation; a full channel rejects rather
	// than queues, so clients get immediate backpressure.
	jobs chan struct{}
}

// New creates a Server. The store may be nil; archiving and stored rule set
// lookup are then disabled.
func New(cfg *config.Config, st *store.Store) *Server {
	maxConcurrent := cfg.Service.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Server{
		cfg:   cfg,
		store: st,
		jobs:  make(chan struct{}, maxConcurrent),
	}
}

// Start blocks serving WebSocket connections on the configured address.
func (s *Server) Start() error {
	logger.Info("map service listening", "address", s.cfg.Service.ListenAddr)
	return http.ListenAndServe(s.cfg.Service.ListenAddr, s.Handler())
}

// Handler exposes the mux for tests and embedding.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleUpgrade)
	return mux
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.Service.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("connection rejected, origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", "error", err)
		return
	}

	go s.handleConnection(conn)
}

func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	if s.cfg.Service.MaxMessageSize > 0 {
		conn.SetReadLimit(s.cfg.Service.MaxMessageSize)
	}

	remote := conn.RemoteAddr().String()
	logger.Debug("client connected", "remote_addr", remote)

	for {
		var req GenerateRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("client read failed", "remote_addr", remote, "error", err)
			}
			return
		}

		if err := s.authenticate(req.Token); err != nil {
			writeError(conn, req.ID, err)
			return // one bad token ends the session
		}

		select {
		case s.jobs <- struct{}{}:
		default:
			writeError(conn, req.ID, fmt.Errorf("server busy, try again later"))
			continue
		}

		s.serveRequest(conn, req)
		<-s.jobs
	}
}

// authenticate compares the presented token with the configured bcrypt
// hash. An empty configured hash disables authentication.
func (s *Server) authenticate(token string) error {
	hash := s.cfg.Service.TokenHash
	if hash == "" {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)); err != nil {
		return fmt.Errorf("invalid access token")
	}
	return nil
}

// HashToken produces a config-ready bcrypt hash of an access token.
func HashToken(token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("token must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hash), nil
}

func writeError(conn *websocket.Conn, id string, err error) {
	msg := Envelope{Type: "error", ID: id, Error: err.Error()}
	if werr := conn.WriteJSON(msg); werr != nil {
		logger.Debug("failed to write error response", "error", werr)
	}
}
