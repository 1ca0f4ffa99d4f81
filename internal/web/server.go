// Package web provides an HTTP status server for the gamepad-hub daemon.
package web

import (
	"context"
	"io"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sweeney/gamepad-hub/internal/command"
	"github.com/sweeney/gamepad-hub/internal/status"
)

// LiveInterval is how often the live feed checks for changes.
const LiveInterval = 100 * time.Millisecond

// maxCommandBytes bounds a display command body.
const maxCommandBytes = 4096

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	target     command.Target
	upgrader   websocket.Upgrader
	interval   time.Duration
	done       chan struct{}
	closeDone  sync.Once
}

// New creates a Server that reads state from the given tracker and sends
// display commands to target. A nil target disables the command endpoints.
func New(addr string, tracker *status.Tracker, target command.Target) *Server {
	s := &Server{
		tracker:  tracker,
		target:   target,
		interval: LiveInterval,
		done:     make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/live", s.handleLive)
	mux.HandleFunc("POST /display/{kind}", s.handleCommand)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	// Hijacked websocket connections are not tracked by Shutdown.
	s.httpServer.RegisterOnShutdown(func() {
		s.closeDone.Do(func() { close(s.done) })
	})
	return s
}

// Handler returns the request router. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server and ends live feeds.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if s.target == nil {
		writeError(w, http.StatusServiceUnavailable, errNoTarget)
		return
	}
	kind, err := command.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCommandBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	if err := command.Apply(s.target, kind, body); err != nil {
		writeError(w, errorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, okJSON{OK: true})
}

// handleLive streams the live view over a websocket whenever it changes.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		return
	}
	defer conn.Close()

	// Drain client frames so close and ping are handled.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var last []byte
	for {
		if msg := status.FormatLive(s.tracker.Snapshot()); string(msg) != string(last) {
			conn.SetWriteDeadline(time.Now().Add(time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("web: live: %v", err)
				return
			}
			last = msg
		}

		select {
		case <-s.done:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(time.Second))
			return
		case <-gone:
			return
		case <-ticker.C:
		}
	}
}
