package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/cricklet/negachess/internal/config"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/runner"
)

type LogMessage struct {
	Logs []string `json:"logs"`
}

type Server struct {
	Logger Logger

	cfg      *config.Config
	upgrader websocket.Upgrader

	lock     sync.Mutex
	sessions map[string]*Session
}

func NewServer(cfg *config.Config, logger Logger) *Server {
	return &Server{
		Logger:   logger,
		cfg:      cfg,
		sessions: map[string]*Session{},
	}
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/ws", s.ws)
	router.HandleFunc("/games", s.listGames).Methods(http.MethodGet)
	router.HandleFunc("/games/{id}", s.getGame).Methods(http.MethodGet)
	router.HandleFunc("/games/{id}/pgn", s.getPgn).Methods(http.MethodGet)
	return router
}

func (s *Server) session(id string) (*Session, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *Server) listGames(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.lock.Unlock()
	sort.Strings(ids)

	writeJson(w, ids)
}

func (s *Server) getGame(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(mux.Vars(r)["id"])
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJson(w, session.Update())
}

func (s *Server) getPgn(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(mux.Vars(r)["id"])
	if !ok {
		http.NotFound(w, r)
		return
	}

	pgn, err := session.Pgn(runner.PgnHeaders{
		Event: "negachess",
		Site:  r.Host,
		Date:  time.Now().Format("2006.01.02"),
		Round: "1",
	})
	if !IsNil(err) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/x-chess-pgn")
	_, _ = w.Write([]byte(pgn))
}

func writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) ws(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Println("upgrade:", err)
		return
	}
	defer c.Close()

	// engines log from their own goroutines
	writeLock := sync.Mutex{}
	write := func(v any) {
		writeLock.Lock()
		defer writeLock.Unlock()
		err := c.WriteJSON(v)
		if err != nil {
			s.Logger.Println("websocket:", err)
		}
	}

	logger := NewFuncLogger(func(message string) {
		s.Logger.Println(message)
		write(LogMessage{Logs: []string{message}})
	})

	session := NewSession(s.cfg, logger)
	s.lock.Lock()
	s.sessions[session.ID] = session
	s.lock.Unlock()

	defer func() {
		session.Close()
		s.lock.Lock()
		delete(s.sessions, session.ID)
		s.lock.Unlock()
	}()

	send := func(update UpdateToWeb) {
		write(update)
	}
	send(session.Update())

	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			s.Logger.Printf("closing %v: %v", session.ID, err)
			return
		}
		session.HandleMessage(message, send)
	}
}
