package server

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cricklet/negachess/internal/config"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/players"
	"github.com/cricklet/negachess/internal/runner"
)

type UpdateToWeb struct {
	GameID        string      `json:"gameId"`
	FenString     string      `json:"fenString"`
	LastMove      string      `json:"lastMove"`
	Selection     string      `json:"selection,omitempty"`
	PossibleMoves []string    `json:"possibleMoves,omitempty"`
	Player        string      `json:"player"`
	WhitePlayer   string      `json:"whitePlayer"`
	BlackPlayer   string      `json:"blackPlayer"`
	History       [][2]string `json:"history"`
	Status        string      `json:"status"`
	Result        string      `json:"result"`
	Error         string      `json:"error,omitempty"`
}

func (u UpdateToWeb) String() string {
	return fmt.Sprint("UpdateToWeb: ", u.FenString, ", ", u.LastMove, ", ", u.Status, ", ", u.Selection, ", ", u.PossibleMoves)
}

type MessageFromWeb struct {
	NewFen      *string `json:"newFen"`
	WhitePlayer *string `json:"whitePlayer"`
	BlackPlayer *string `json:"blackPlayer"`
	Selection   *string `json:"selection"`
	Move        *string `json:"move"`
	Ready       *bool   `json:"ready"`
	Rewind      *int    `json:"rewind"`
	Reset       *bool   `json:"reset"`
}

func (u MessageFromWeb) String() string {
	if u.NewFen != nil {
		return fmt.Sprint("MessageFromWeb NewFen: ", *u.NewFen)
	}
	if u.WhitePlayer != nil {
		return fmt.Sprint("MessageFromWeb WhitePlayer: ", *u.WhitePlayer)
	}
	if u.BlackPlayer != nil {
		return fmt.Sprint("MessageFromWeb BlackPlayer: ", *u.BlackPlayer)
	}
	if u.Selection != nil {
		return fmt.Sprint("MessageFromWeb Selection: ", *u.Selection)
	}
	if u.Move != nil {
		return fmt.Sprint("MessageFromWeb Move: ", *u.Move)
	}
	if u.Ready != nil {
		return fmt.Sprint("MessageFromWeb Ready: ", *u.Ready)
	}
	if u.Rewind != nil {
		return fmt.Sprint("MessageFromWeb Rewind: ", *u.Rewind)
	}
	if u.Reset != nil {
		return fmt.Sprint("MessageFromWeb Reset: ", *u.Reset)
	}
	return "MessageFromWeb unknown"
}

// Session is one game played over one connection. Engines only move once the
// client has sent ready.
type Session struct {
	ID     string
	Logger Logger

	lock        sync.Mutex
	cfg         *config.Config
	runner      *runner.GameRunner
	playerTypes [2]players.PlayerType
	sources     [2]players.MoveSource
	ready       bool
}

func NewSession(cfg *config.Config, logger Logger) *Session {
	s := &Session{
		ID:     uuid.NewString(),
		Logger: logger,
		cfg:    cfg,
		runner: runner.NewGameRunner(logger),
	}

	for _, player := range []Player{White, Black} {
		s.sources[player] = &players.HumanPlayer{}
	}
	s.setPlayer(White, players.PlayerTypeFromString(cfg.Game.White))
	s.setPlayer(Black, players.PlayerTypeFromString(cfg.Game.Black))
	return s
}

// Update is a snapshot of the game, safe to call from any goroutine.
func (s *Session) Update() UpdateToWeb {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.update()
}

func (s *Session) Pgn(headers runner.PgnHeaders) (string, Error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	headers.White = s.playerTypes[White].String()
	headers.Black = s.playerTypes[Black].String()
	return s.runner.Pgn(headers)
}

func (s *Session) setPlayer(player Player, playerType players.PlayerType) {
	source, err := players.NewMoveSource(playerType, s.cfg, s.Logger)
	if !IsNil(err) {
		s.Logger.Println("player", playerType, "unavailable:", err)
		return
	}

	s.sources[player].Close()
	s.sources[player] = source
	s.playerTypes[player] = playerType
}

func (s *Session) Close() {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, source := range s.sources {
		source.Close()
	}
}

func (s *Session) update() UpdateToWeb {
	update := UpdateToWeb{
		GameID:      s.ID,
		FenString:   s.runner.FenString(),
		Player:      s.runner.Player().String(),
		WhitePlayer: s.playerTypes[White].String(),
		BlackPlayer: s.playerTypes[Black].String(),
		History:     s.runner.SanHistory(),
		Status:      s.runner.Status(),
		Result:      s.runner.Result(),
	}
	if lastMove := s.runner.LastMove(); lastMove.HasValue() {
		update.LastMove = lastMove.Value().String()
	}
	return update
}

func (s *Session) engineToMove() bool {
	return s.ready &&
		!s.runner.IsGameOver() &&
		!players.IsHuman(s.sources[s.runner.Player()]) &&
		len(s.runner.MoveHistory()) < s.cfg.Game.MaxPlies
}

// playEngineMoves lets engines move until a human is to move, the game ends
// or the ply cap is reached, sending an update after each move. Engines
// think on a copy of the position with the lock released.
func (s *Session) playEngineMoves(send func(UpdateToWeb)) {
	for {
		s.lock.Lock()
		if !s.engineToMove() {
			s.lock.Unlock()
			return
		}
		source := s.sources[s.runner.Player()]
		g := s.runner.Game().Clone()
		plies := len(s.runner.MoveHistory())
		s.lock.Unlock()

		move, err := source.SelectMove(g)

		s.lock.Lock()
		if s.runner.FenString() != g.FenString() || len(s.runner.MoveHistory()) != plies {
			s.lock.Unlock()
			return
		}
		if IsNil(err) && move.HasValue() {
			err = s.runner.PerformMove(move.Value())
		}
		update := s.update()
		s.lock.Unlock()

		if !IsNil(err) {
			s.Logger.Println("move source failed:", err)
			update.Error = err.Error()
		} else if move.IsEmpty() {
			update.Error = "no move found"
		}
		send(update)
		if update.Error != "" {
			return
		}
	}
}

// HandleMessage applies one client message and replies through send. Engine
// replies follow; the session lock is only held between their searches.
func (s *Session) HandleMessage(bytes []byte, send func(UpdateToWeb)) {
	refreshed, ok := s.applyMessage(bytes)
	send(refreshed)
	if ok {
		s.playEngineMoves(send)
	}
}

func (s *Session) applyMessage(bytes []byte) (UpdateToWeb, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	var message MessageFromWeb
	err := json.Unmarshal(bytes, &message)
	if err != nil {
		update := s.update()
		update.Error = fmt.Sprint("bad message: ", err)
		return update, false
	}
	s.Logger.Println("received", message)

	update := s.update()
	var updateErr Error

	if message.NewFen != nil {
		updateErr = s.runner.SetupPosition(Position{Fen: *message.NewFen})
	} else if message.WhitePlayer != nil {
		s.setPlayer(White, players.PlayerTypeFromString(*message.WhitePlayer))
	} else if message.BlackPlayer != nil {
		s.setPlayer(Black, players.PlayerTypeFromString(*message.BlackPlayer))
	} else if message.Selection != nil {
		if *message.Selection != "" {
			update.Selection = *message.Selection
			update.PossibleMoves, updateErr = s.runner.MovesForSelection(*message.Selection)
		}
	} else if message.Move != nil {
		updateErr = s.runner.PerformMoveFromString(*message.Move)
		if !IsNil(updateErr) && IsNil(s.runner.PerformMoveFromSan(*message.Move)) {
			updateErr = NilError
		}
	} else if message.Rewind != nil {
		updateErr = s.runner.Rewind(*message.Rewind)
	} else if message.Reset != nil {
		s.runner.Reset()
	} else if message.Ready != nil {
		s.ready = *message.Ready
	}

	refreshed := s.update()
	refreshed.Selection = update.Selection
	refreshed.PossibleMoves = update.PossibleMoves
	if !IsNil(updateErr) {
		s.Logger.Println("handleMessage:", updateErr)
		refreshed.Error = updateErr.Error()
	}
	return refreshed, true
}
