// Package web serves the spectator dashboard: the live display model,
// round history, Prometheus metrics and websocket feeds of the game.
package web

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teslashibe/go-emotimeter/internal/log"
	"github.com/teslashibe/go-emotimeter/pkg/emotion"
	"github.com/teslashibe/go-emotimeter/pkg/game"
	"github.com/teslashibe/go-emotimeter/pkg/hub"
	"github.com/teslashibe/go-emotimeter/pkg/session"
)

// maxRounds bounds the round history kept in memory.
const maxRounds = 200

// Status is the dashboard view of the game.
type Status struct {
	Session    string       `json:"session"`
	Display    game.Display `json:"display"`
	Ticks      int          `json:"ticks"`
	Spectators int          `json:"spectators"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// RoundEntry is one won round.
type RoundEntry struct {
	ID      string        `json:"id"`
	Number  int           `json:"number"`
	Target  emotion.Label `json:"target"`
	Score   int           `json:"score"`
	Seconds float64       `json:"seconds"`
	WonAt   time.Time     `json:"won_at"`
}

// Server is the dashboard server. It observes the session and never
// touches the game state directly.
type Server struct {
	app       *fiber.App
	addr      string
	sessionID string

	status   Status
	lastJSON []byte
	statusMu sync.RWMutex

	rounds   []RoundEntry
	roundsMu sync.RWMutex

	statusHub *hub.Hub
	cameraHub *hub.Hub

	// Keys queued by POST /api/command, drained once per tick.
	commands chan int
}

// NewServer creates the dashboard. reg may be nil to skip /metrics.
func NewServer(addr string, reg *prometheus.Registry) *Server {
	s := &Server{
		addr:      addr,
		sessionID: uuid.NewString(),
		rounds:    make([]RoundEntry, 0, 16),
		statusHub: hub.New("status", hub.Options{Retain: true}),
		cameraHub: hub.New("camera", hub.Options{Retain: true, ClientBuffer: 8}),
		commands:  make(chan int, 4),
	}
	s.status.Session = s.sessionID

	app := fiber.New(fiber.Config{
		AppName:               "Emotion-Meter Dashboard",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/status", s.handleStatus)
	api.Get("/rounds", s.handleRounds)
	api.Post("/command/:name", s.handleCommand)

	if reg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(func(c *websocket.Conn) { hub.Serve(s.statusHub, c) }))
	app.Get("/ws/camera", websocket.New(func(c *websocket.Conn) { hub.Serve(s.cameraHub, c) }))

	s.app = app
	return s
}

// Start runs the hubs and serves until Shutdown.
func (s *Server) Start() error {
	log.Info("dashboard listening", "addr", s.addr, "session", s.sessionID)

	go s.statusHub.Run()
	go s.cameraHub.Run()

	return s.app.Listen(s.addr)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("dashboard stopped", "error", err)
		}
	}()
}

// Shutdown stops the hubs and the HTTP server.
func (s *Server) Shutdown() error {
	s.statusHub.Stop()
	s.cameraHub.Stop()
	return s.app.Shutdown()
}

// SessionID identifies this game process.
func (s *Server) SessionID() string {
	return s.sessionID
}

// Observe implements session.Observer. Status is broadcast only when the
// display model changed.
func (s *Server) Observe(r session.Report) {
	for _, ev := range r.Tick.Events {
		if ev.Kind == game.EventRoundWon {
			s.addRound(ev)
		}
	}

	data, err := json.Marshal(r.Tick.Display)
	if err != nil {
		log.Warn("encode display failed", "error", err)
		return
	}

	s.statusMu.Lock()
	s.status.Ticks = r.Seq
	s.status.Display = r.Tick.Display
	s.status.UpdatedAt = time.Now()
	changed := !bytes.Equal(data, s.lastJSON)
	if changed {
		s.lastJSON = data
	}
	s.statusMu.Unlock()

	if changed {
		s.statusHub.Broadcast(hub.NewJSONMessage(data))
	}
}

// SendCameraFrame broadcasts a JPEG frame to camera spectators.
func (s *Server) SendCameraFrame(jpeg []byte) {
	if s.cameraHub.ClientCount() == 0 {
		return
	}
	s.cameraHub.BroadcastBinary(jpeg)
}

// WantsFrames reports whether anyone is watching the camera feed.
func (s *Server) WantsFrames() bool {
	return s.cameraHub.ClientCount() > 0
}

// PollKey implements session.Keys with commands posted to the dashboard.
func (s *Server) PollKey() int {
	select {
	case k := <-s.commands:
		return k
	default:
		return -1
	}
}

// Status returns a snapshot of the dashboard status.
func (s *Server) Status() Status {
	s.statusMu.RLock()
	st := s.status
	s.statusMu.RUnlock()
	st.Spectators = s.statusHub.ClientCount() + s.cameraHub.ClientCount()
	return st
}

// Rounds returns the won rounds, oldest first.
func (s *Server) Rounds() []RoundEntry {
	s.roundsMu.RLock()
	defer s.roundsMu.RUnlock()
	return append([]RoundEntry(nil), s.rounds...)
}

func (s *Server) addRound(ev game.Event) {
	entry := RoundEntry{
		ID:      uuid.NewString(),
		Number:  ev.Round.Number,
		Target:  ev.Round.Target,
		Score:   ev.Score,
		Seconds: ev.Elapsed.Seconds(),
		WonAt:   ev.At,
	}

	s.roundsMu.Lock()
	s.rounds = append(s.rounds, entry)
	if len(s.rounds) > maxRounds {
		s.rounds = s.rounds[1:]
	}
	s.roundsMu.Unlock()

	log.Info("round won", "round", entry.Number, "target", entry.Target.String(), "score", entry.Score, "seconds", entry.Seconds)
}
