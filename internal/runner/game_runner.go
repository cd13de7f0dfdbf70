package runner

import (
	"fmt"

	"github.com/notnil/chess"

	. "github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/players"
)

type HistoryValue struct {
	move   Move
	san    string
	update BoardUpdate
}

// GameRunner owns a single game: the position, how it was reached, and
// which moves are allowed next.
type GameRunner struct {
	Logger Logger

	g        *GameState
	StartFen string
	history  []HistoryValue
}

func NewGameRunner(logger Logger) *GameRunner {
	r := &GameRunner{Logger: logger}
	r.Reset()
	return r
}

// Reset starts over from the standard starting position.
func (r *GameRunner) Reset() {
	r.g = NewGameState()
	r.StartFen = StartFen
	r.history = []HistoryValue{}
}

// IsNew is true until a move has been played.
func (r *GameRunner) IsNew() bool {
	return len(r.history) == 0
}

func (r *GameRunner) Game() *GameState {
	return r.g
}

func (r *GameRunner) FenString() string {
	return r.g.FenString()
}

func (r *GameRunner) Player() Player {
	return r.g.Player()
}

func (r *GameRunner) LastMove() Optional[Move] {
	if len(r.history) > 0 {
		return Some(r.history[len(r.history)-1].move)
	}
	return Empty[Move]()
}

func (r *GameRunner) SetupPosition(position Position) Error {
	fen, err := NormalizeFen(position.Fen)
	if !IsNil(err) {
		return err
	}

	g, err := GamestateFromFenString(fen)
	if !IsNil(err) {
		return Errorf("couldn't create game from %v, %w", position, err)
	}

	r.g = g
	r.StartFen = fen
	r.history = []HistoryValue{}

	for _, m := range position.Moves {
		err := r.PerformMoveFromString(m)
		if !IsNil(err) {
			return err
		}
	}

	return NilError
}

func (r *GameRunner) PerformMove(move Move) Error {
	san, err := r.g.SanForMove(move)
	if !IsNil(err) {
		return Errorf("PerformMove %v: %w", move, err)
	}

	h := HistoryValue{move: move, san: san}
	err = r.g.PerformMove(move, &h.update)
	if !IsNil(err) {
		return Errorf("PerformMove %v: %w", move, err)
	}

	r.history = append(r.history, h)
	return NilError
}

// PerformMoveFromString rejects malformed and illegal moves without touching
// the position.
func (r *GameRunner) PerformMoveFromString(s string) Error {
	move, err := r.g.MoveFromString(s)
	if !IsNil(err) {
		return err
	}
	return r.PerformMove(move)
}

// PerformMoveFromSan is PerformMoveFromString for standard algebraic
// notation ("Nf3", "exd5", "O-O").
func (r *GameRunner) PerformMoveFromSan(s string) Error {
	move, err := r.g.MoveFromSan(s)
	if !IsNil(err) {
		return err
	}
	return r.PerformMove(move)
}

func firstIndexNotMatching[A any, B any](a []A, b []B, matches func(A, B) bool) int {
	for i := 0; i < MinInt(len(a), len(b)); i++ {
		if !matches(a[i], b[i]) {
			return i
		}
	}
	return MinInt(len(a), len(b))
}

// PerformMoves brings the game to fen followed by moves, reusing the played
// moves they have in common.
func (r *GameRunner) PerformMoves(fen string, moves []string) Error {
	normalized, err := NormalizeFen(fen)
	if !IsNil(err) {
		return err
	}
	if normalized != r.StartFen {
		return r.SetupPosition(Position{Fen: normalized, Moves: moves})
	}

	common := firstIndexNotMatching(r.history, moves, func(h HistoryValue, m string) bool {
		return h.move.String() == m
	})

	err = r.Rewind(len(r.history) - common)
	if !IsNil(err) {
		return err
	}

	for _, m := range moves[common:] {
		err := r.PerformMoveFromString(m)
		if !IsNil(err) {
			return err
		}
	}
	return NilError
}

// Rewind takes back up to num moves.
func (r *GameRunner) Rewind(num int) Error {
	for i := MinInt(num, len(r.history)); i > 0; i-- {
		h := r.history[len(r.history)-1]
		err := r.g.UndoUpdate(&h.update)
		if !IsNil(err) {
			return Errorf("Rewind: %w", err)
		}
		r.history = r.history[:len(r.history)-1]
	}
	return NilError
}

// MovesForSelection lists the legal moves of the piece on a square, e.g. "e2".
func (r *GameRunner) MovesForSelection(selection string) ([]string, Error) {
	selectionIndex, err := BoardIndexFromString(selection)
	if !IsNil(err) {
		return nil, Errorf("failed to parse selection %v: %w", selection, err)
	}

	moves := FilterSlice(r.g.LegalMoves(), func(m Move) bool {
		return m.StartIndex == selectionIndex
	})
	return MapSlice(moves, func(m Move) string {
		return m.String()
	}), NilError
}

func (r *GameRunner) MoveHistory() []string {
	return MapSlice(r.history, func(h HistoryValue) string {
		return h.move.String()
	})
}

// SanHistory pairs each white move with black's reply. A game starting
// with black to move begins with "...".
func (r *GameRunner) SanHistory() [][2]string {
	result := [][2]string{}

	blackFirst := false
	if fields, err := ParseFen(r.StartFen); IsNil(err) {
		blackFirst = fields.Player == Black
	}

	for i, h := range r.history {
		blackMove := (i%2 == 1) != blackFirst
		if !blackMove {
			result = append(result, [2]string{h.san, ""})
		} else if len(result) == 0 {
			result = append(result, [2]string{"...", h.san})
		} else {
			result[len(result)-1][1] = h.san
		}
	}
	return result
}

func (r *GameRunner) IsGameOver() bool {
	return r.g.IsGameOver()
}

func (r *GameRunner) Status() string {
	switch {
	case r.g.IsStalemate():
		return "Draw by stalemate"
	case r.g.IsCheckmate():
		return "Checkmate"
	case r.g.IsInsufficientMaterial():
		return "Draw by insufficient material"
	case r.g.IsFiftyMoveDraw():
		return "Draw by fifty-move rule"
	case r.g.IsThreefoldRepetition():
		return "Draw by threefold repetition"
	case r.g.IsCheck():
		return "Check"
	}
	return "In progress"
}

func (r *GameRunner) Result() string {
	if r.g.IsCheckmate() {
		if r.g.Player() == White {
			return "0-1"
		}
		return "1-0"
	}
	if r.g.IsGameOver() {
		return "1/2-1/2"
	}
	return "*"
}

// PlayTurn asks source for a move for the side to move and plays it. An
// empty move, or an error from the source, leaves the game untouched.
func (r *GameRunner) PlayTurn(source players.MoveSource) (Optional[Move], Error) {
	if r.IsGameOver() {
		return Empty[Move](), Errorf("game is over: %v", r.Status())
	}

	move, err := source.SelectMove(r.g)
	if !IsNil(err) {
		r.Logger.Println("move source failed:", err)
		return Empty[Move](), err
	}
	if move.IsEmpty() {
		return move, NilError
	}

	err = r.PerformMove(move.Value())
	if !IsNil(err) {
		return Empty[Move](), err
	}

	r.Logger.Println(r.Player().Other(), "played", move.Value())
	return move, NilError
}

// PlayGame alternates white and black until the game ends or maxPlies moves
// have been played. It stops early when a side has no move to offer.
func (r *GameRunner) PlayGame(white, black players.MoveSource, maxPlies int) Error {
	for plies := 0; plies < maxPlies && !r.IsGameOver(); plies++ {
		source := white
		if r.Player() == Black {
			source = black
		}

		move, err := r.PlayTurn(source)
		if !IsNil(err) {
			return err
		}
		if move.IsEmpty() {
			return Errorf("no move from %v for %v", sourceName(source), r.Player())
		}
	}
	return NilError
}

func sourceName(source players.MoveSource) string {
	return fmt.Sprintf("%T", source)
}

type PgnHeaders struct {
	Event string
	Site  string
	Date  string
	Round string
	White string
	Black string
}

// Pgn renders the game with the seven standard tag pairs.
func (r *GameRunner) Pgn(headers PgnHeaders) (string, Error) {
	fen, err := chess.FEN(r.StartFen)
	if err != nil {
		return "", Wrap(err)
	}
	game := chess.NewGame(fen)

	for _, h := range r.history {
		move, err := chess.UCINotation{}.Decode(game.Position(), h.move.String())
		if err != nil {
			return "", Wrap(err)
		}
		err = game.Move(move)
		if err != nil {
			return "", Wrap(err)
		}
	}

	result := r.Result()
	if result == "1/2-1/2" && game.Outcome() == chess.NoOutcome {
		err = game.Draw(chess.DrawOffer)
		if err != nil {
			return "", Wrap(err)
		}
	}

	game.AddTagPair("Event", headers.Event)
	game.AddTagPair("Site", headers.Site)
	game.AddTagPair("Date", headers.Date)
	game.AddTagPair("Round", headers.Round)
	game.AddTagPair("White", headers.White)
	game.AddTagPair("Black", headers.Black)
	game.AddTagPair("Result", result)
	if r.StartFen != StartFen {
		game.AddTagPair("SetUp", "1")
		game.AddTagPair("FEN", r.StartFen)
	}

	return game.String(), NilError
}
