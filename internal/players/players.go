package players

import (
	"strings"

	. "github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
)

type PlayerType int

const (
	Human PlayerType = iota
	Negamax
	Stockfish
	Neural
)

var _playerTypeStrings = [...]string{"human", "negamax", "stockfish", "neural"}

func (p PlayerType) String() string {
	if p < 0 || int(p) >= len(_playerTypeStrings) {
		return "unknown"
	}
	return _playerTypeStrings[p]
}

var AllPlayerTypes = []PlayerType{Human, Negamax, Stockfish, Neural}

// PlayerTypeFromString accepts the names and their short aliases. Anything
// unrecognized means no engine plays that side.
func PlayerTypeFromString(s string) PlayerType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "negamax", "n":
		return Negamax
	case "stockfish", "s":
		return Stockfish
	case "neural", "nn":
		return Neural
	}
	return Human
}

// MoveSource chooses a move for the side to move. The position is left as it
// was found. An empty result means the source has no move to offer: there
// are no legal moves, or the move comes from outside (a human).
type MoveSource interface {
	SelectMove(g *GameState) (Optional[Move], Error)
	Close()
}

type HumanPlayer struct{}

var _ MoveSource = (*HumanPlayer)(nil)

func (p *HumanPlayer) SelectMove(g *GameState) (Optional[Move], Error) {
	return Empty[Move](), NilError
}

func (p *HumanPlayer) Close() {}

func IsHuman(source MoveSource) bool {
	_, ok := source.(*HumanPlayer)
	return ok
}
