package book

import (
	_ "embed"
	"encoding/json"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/search"
	"github.com/cricklet/negachess/internal/zobrist"
)

//go:embed default_book.json
var defaultBookData []byte

// BuiltinPath selects the embedded book instead of a file.
const BuiltinPath = "builtin"

type BookMove struct {
	UCI    string `json:"uci"`
	Weight int    `json:"weight"`
}

type BookPosition struct {
	Name  string     `json:"name,omitempty"`
	Moves []BookMove `json:"moves"`
}

// Book maps FENs to weighted candidate moves. Positions are matched on piece
// placement, side to move and castling rights; clocks and en passant
// targets are ignored.
type Book struct {
	Positions map[string]BookPosition `json:"positions"`

	Logger Logger `json:"-"`

	lock      sync.Mutex
	rand      *rand.Rand
	hashIndex map[uint64]string
}

var _ search.MoveBook = (*Book)(nil)

type BookOption func(*Book)

func WithRand(r *rand.Rand) BookOption {
	return func(b *Book) {
		b.rand = r
	}
}

func WithLogger(logger Logger) BookOption {
	return func(b *Book) {
		b.Logger = logger
	}
}

func NewBook(options ...BookOption) *Book {
	b := &Book{
		Positions: map[string]BookPosition{},
		Logger:    SilentLogger,
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
		hashIndex: map[uint64]string{},
	}
	for _, option := range options {
		option(b)
	}
	return b
}

func ParseBook(data []byte, options ...BookOption) (*Book, Error) {
	b := NewBook(options...)
	if err := json.Unmarshal(data, b); err != nil {
		return nil, Errorf("couldn't parse book: %v", err)
	}
	if b.Positions == nil {
		b.Positions = map[string]BookPosition{}
	}
	return b, b.buildHashIndex()
}

// LoadBook reads a JSON book from path, or the embedded one for BuiltinPath.
func LoadBook(path string, options ...BookOption) (*Book, Error) {
	if path == BuiltinPath {
		return ParseBook(defaultBookData, options...)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Wrap(err)
	}
	return ParseBook(data, options...)
}

func (b *Book) Save(path string) Error {
	b.lock.Lock()
	defer b.lock.Unlock()

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return Wrap(err)
	}
	return Wrap(os.WriteFile(path, data, 0o644))
}

func bookHash(fen string) (uint64, Error) {
	fields, err := game.ParseFen(fen)
	if !IsNil(err) {
		return 0, err
	}
	return zobrist.HashForBoardPosition(
		&fields.Board, fields.Player, &fields.PlayerAndCastlingSideAllowed, Empty[FileRank]()), NilError
}

func (b *Book) buildHashIndex() Error {
	b.hashIndex = make(map[uint64]string, len(b.Positions))
	for fen := range b.Positions {
		hash, err := bookHash(fen)
		if !IsNil(err) {
			return Errorf("invalid book position '%v': %v", fen, err)
		}
		b.hashIndex[hash] = fen
	}
	return NilError
}

// Add records a candidate move, adding weight if it is already present.
func (b *Book) Add(fen string, uci string, weight int) Error {
	hash, err := bookHash(fen)
	if !IsNil(err) {
		return err
	}
	if _, err := game.ParseMove(uci); !IsNil(err) {
		return err
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	key, ok := b.hashIndex[hash]
	if !ok {
		key = fen
		b.hashIndex[hash] = key
	}
	position := b.Positions[key]
	for i := range position.Moves {
		if position.Moves[i].UCI == uci {
			position.Moves[i].Weight += weight
			b.Positions[key] = position
			return NilError
		}
	}
	position.Moves = append(position.Moves, BookMove{UCI: uci, Weight: weight})
	b.Positions[key] = position
	return NilError
}

func (b *Book) Len() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.Positions)
}

// Lookup draws one of the legal book moves for g, weighted by their weights.
// A miss is an empty result, not an error.
func (b *Book) Lookup(g *game.GameState) Optional[game.Move] {
	fields := g.FenFields()
	hash := zobrist.HashForBoardPosition(
		&fields.Board, fields.Player, &fields.PlayerAndCastlingSideAllowed, Empty[FileRank]())

	b.lock.Lock()
	defer b.lock.Unlock()

	key, ok := b.hashIndex[hash]
	if !ok {
		return Empty[game.Move]()
	}

	type candidate struct {
		move   game.Move
		weight int
	}
	candidates := []candidate{}
	total := 0
	for _, bookMove := range b.Positions[key].Moves {
		if bookMove.Weight <= 0 {
			continue
		}
		move, err := g.MoveFromString(bookMove.UCI)
		if !IsNil(err) {
			b.Logger.Println("skipping book move", bookMove.UCI, "for", key, ":", err)
			continue
		}
		candidates = append(candidates, candidate{move, bookMove.Weight})
		total += bookMove.Weight
	}
	if total == 0 {
		return Empty[game.Move]()
	}

	pick := b.rand.Intn(total)
	for _, c := range candidates {
		if pick < c.weight {
			return Some(c.move)
		}
		pick -= c.weight
	}
	return Empty[game.Move]()
}
