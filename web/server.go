package web

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/solar3s/gogumbi/gumbi"
)

const defaultSpeedCount = 1024

// Server exposes board operations over http. Every board access
// is serialized with mu, which the watcher shares.
type Server struct {
	Config  *Config
	Board   *gumbi.Board
	Watcher *gumbi.Watcher

	Version string
	Device  string
	LogDir  string

	mu         sync.Mutex
	router     *mux.Router
	wsUpgrader *websocket.Upgrader
}

// NewServer creates a Server for board and registers its routes.
func NewServer(version string, board *gumbi.Board, cfg *Config) *Server {
	if cfg == nil {
		def := DefaultConfig
		cfg = &def
	}
	s := &Server{
		Config:  cfg,
		Board:   board,
		Version: version,
		LogDir:  cfg.LogDir,
	}
	s.Watcher = gumbi.NewWatcher(board, &s.mu, &cfg.Watcher)
	s.wsUpgrader = &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	verbose := cfg.Web.Verbose
	s.router = mux.NewRouter()

	// shh
	s.router.Handle("/favicon.ico", http.HandlerFunc(NilHandler))

	// register endpoints
	s.router.Handle("/ping",
		Logger(http.HandlerFunc(s.Ping), "ping", verbose)).
		Methods("GET", "HEAD")
	s.router.Handle("/info",
		Logger(http.HandlerFunc(s.Info), "info", verbose)).
		Methods("GET", "HEAD")
	s.router.Handle("/id",
		Logger(http.HandlerFunc(s.Identify), "id", verbose)).
		Methods("GET", "HEAD")
	s.router.Handle("/gpio/{pin:[0-9]+}",
		Logger(http.HandlerFunc(s.ReadPin), "gpio", verbose)).
		Methods("GET", "HEAD")
	s.router.Handle("/gpio/{pin:[0-9]+}/{level:high|low}",
		Logger(http.HandlerFunc(s.WritePin), "gpio", verbose)).
		Methods("POST")
	s.router.Handle("/speed",
		Logger(http.HandlerFunc(s.SpeedTest), "speed", verbose)).
		Methods("POST")
	s.router.Handle("/speed/logs",
		Logger(http.HandlerFunc(s.SpeedLogs), "speed-logs", verbose)).
		Methods("GET", "HEAD")
	s.router.Handle("/speed/logs/{name}",
		Logger(http.HandlerFunc(s.SpeedLog), "speed-log", verbose)).
		Methods("GET", "HEAD")
	s.router.Handle("/reset",
		Logger(http.HandlerFunc(s.Reset), "reset", verbose)).
		Methods("POST")
	s.router.Handle("/state",
		Logger(http.HandlerFunc(s.State), "state", verbose)).
		Methods("GET", "HEAD")
	s.router.Handle("/config",
		Logger(http.HandlerFunc(s.ConfigHandler), "config", verbose)).
		Methods("GET", "HEAD")
	s.router.Handle("/websocket",
		Logger(http.HandlerFunc(s.Websocket), "ws-snapshot", verbose)).
		Methods("GET")
	return s
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the board watcher, then serves http on
// Config.Web.ListenAddr until it fails.
func (s *Server) ListenAndServe() error {
	s.Watcher.Watch()
	httpServer := &http.Server{
		Handler:      s.router,
		Addr:         s.Config.Web.ListenAddr,
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  4 * time.Second,
	}
	return httpServer.ListenAndServe()
}

// Stop stops the board watcher.
func (s *Server) Stop() {
	s.Watcher.Stop()
}

// Close stops the watcher then releases the board once no handler
// holds it. Later requests fail with gumbi.ErrClosed.
func (s *Server) Close() error {
	s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Board.Close()
}

func (s *Server) Ping(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	t0 := time.Now()
	err := gumbi.Ping(s.Board)
	latency := time.Since(t0)
	s.mu.Unlock()
	if err != nil {
		boardError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{
		"ok":      true,
		"latency": latency.String(),
	})
}

func (s *Server) Info(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	lines, err := gumbi.Info(s.Board)
	s.mu.Unlock()
	if err != nil {
		boardError(w, err)
		return
	}
	if lines == nil {
		lines = []string{}
	}
	writeJSON(w, lines)
}

func (s *Server) Identify(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	id, err := gumbi.Identify(s.Board)
	s.mu.Unlock()
	if err != nil {
		boardError(w, err)
		return
	}
	writeJSON(w, map[string]string{"id": id})
}

// ReadPin GET /gpio/{pin}: level of pin (1-based).
func (s *Server) ReadPin(w http.ResponseWriter, r *http.Request) {
	pin, _ := strconv.Atoi(mux.Vars(r)["pin"])
	var v int
	err := s.withGPIO(func(g *gumbi.GPIO) (err error) {
		v, err = g.ReadPin(pin)
		return err
	})
	if err != nil {
		boardError(w, err)
		return
	}
	writeJSON(w, map[string]int{"pin": pin, "value": v})
}

// WritePin POST /gpio/{pin}/{high|low}
func (s *Server) WritePin(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	pin, _ := strconv.Atoi(vars["pin"])
	err := s.withGPIO(func(g *gumbi.GPIO) error {
		if vars["level"] == "high" {
			return g.PinHigh(pin)
		}
		return g.PinLow(pin)
	})
	if err != nil {
		boardError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{"pin": pin, "level": vars["level"]})
}

// withGPIO enters GPIO mode, runs fn and leaves GPIO mode.
func (s *Server) withGPIO(fn func(g *gumbi.GPIO) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := gumbi.OpenGPIO(s.Board)
	if err != nil {
		return err
	}
	if err = fn(g); err != nil {
		if s.Board.State() != gumbi.Faulted {
			g.Exit()
		}
		return err
	}
	return g.Exit()
}

// SpeedTest POST /speed?count=N
func (s *Server) SpeedTest(w http.ResponseWriter, r *http.Request) {
	count := defaultSpeedCount
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, fmt.Sprintf("invalid count \"%s\"", v), http.StatusBadRequest)
			return
		}
		count = n
	}
	s.mu.Lock()
	elapsed, err := gumbi.SpeedTest(s.Board, count)
	s.mu.Unlock()
	if err != nil {
		boardError(w, err)
		return
	}
	sl := NewSpeedLog(s.Config.Transport, s.Device, count, elapsed)
	if s.LogDir != "" {
		if err = sl.Save(s.LogDir); err != nil {
			log.Println("error saving speed log:", err)
		} else if s.Config.Web.Verbose {
			log.Printf("saved speed log %s", sl)
		}
	}
	writeJSON(w, sl)
}

func (s *Server) SpeedLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := ListSpeedLogs(s.LogDir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []SpeedLog{}
	}
	writeJSON(w, logs)
}

// SpeedLog GET /speed/logs/{name}: one saved log, by file name.
func (s *Server) SpeedLog(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	logs, err := ListSpeedLogs(s.LogDir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, sl := range logs {
		if sl.Path() == name {
			writeJSON(w, sl)
			return
		}
	}
	http.Error(w, fmt.Sprintf("no speed log \"%s\"", name), http.StatusNotFound)
}

func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.Board.Reset()
	s.mu.Unlock()
	if err != nil {
		boardError(w, err)
		return
	}
	w.Write([]byte("board reset"))
}

// State encodes the last watcher snapshot as json.
func (s *Server) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Watcher.Snapshot())
}

func (s *Server) ConfigHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Config)
}

// Websocket streams watcher snapshots every Config.Web.WebsocketInterval,
// or at the rate given by the poll query parameter.
func (s *Server) Websocket(w http.ResponseWriter, r *http.Request) {
	var interval = time.Duration(s.Config.Web.WebsocketInterval)
	if v, ok := r.URL.Query()["poll"]; ok {
		if d, err := time.ParseDuration(v[0]); err == nil && d > 0 {
			interval = d
		}
	}
	if interval <= 0 {
		interval = time.Second
	}
	conn, err := s.wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("error subscribing to websocket:", err)
		return
	}

	if s.Config.Web.Verbose {
		log.Printf("websocket - subscription from %s (pollrate: %s)", conn.RemoteAddr(), interval)
	}

	go func(conn *websocket.Conn) {
		defer conn.Close()
		for {
			if err := conn.WriteJSON(s.Watcher.Snapshot()); err != nil {
				if s.Config.Web.Verbose {
					log.Printf("websocket - lost connection to %s", conn.RemoteAddr())
				}
				return
			}
			<-time.After(interval)
		}
	}(conn)
}
