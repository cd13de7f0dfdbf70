package uci

import (
	"fmt"
	"strconv"
	"strings"

	. "github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/runner"
	"github.com/cricklet/negachess/internal/search"
)

const (
	EngineName   = "negachess 1"
	EngineAuthor = "Kenrick Rilee"
)

type UciRunner struct {
	Logger Logger
	Runner *runner.GameRunner

	Depth   int
	Book    search.MoveBook
	Options search.SearcherOptions

	Quit bool
}

type UciRunnerOption func(*UciRunner)

func WithLogger(logger Logger) UciRunnerOption {
	return func(u *UciRunner) {
		u.Logger = logger
	}
}

func WithDepth(depth int) UciRunnerOption {
	return func(u *UciRunner) {
		u.Depth = depth
	}
}

func WithBook(book search.MoveBook) UciRunnerOption {
	return func(u *UciRunner) {
		u.Book = book
	}
}

func WithSearchOptions(options search.SearcherOptions) UciRunnerOption {
	return func(u *UciRunner) {
		u.Options = options
	}
}

func NewUciRunner(options ...UciRunnerOption) *UciRunner {
	u := &UciRunner{
		Depth:   2,
		Options: search.DefaultSearchOptions,
	}
	for _, option := range options {
		option(u)
	}
	if u.Logger == nil {
		u.Logger = SilentLogger
	}
	u.Runner = runner.NewGameRunner(u.Logger)
	return u
}

func parsePosition(input string) (Position, Error) {
	s := strings.TrimSpace(strings.TrimPrefix(input, "position"))

	movesString := ""
	if parts := strings.SplitN(s, "moves", 2); len(parts) == 2 {
		s = strings.TrimSpace(parts[0])
		movesString = parts[1]
	}

	position := Position{Moves: strings.Fields(movesString)}
	if strings.HasPrefix(s, "fen ") {
		position.Fen = strings.TrimSpace(strings.TrimPrefix(s, "fen "))
	} else if s == "startpos" {
		position.Fen = StartFen
	} else {
		return position, Errorf("couldn't parse '%v'", input)
	}

	return position, NilError
}

// parseDepth reads "go depth N", ignoring the time controls we don't use.
func (u *UciRunner) parseDepth(input string) (int, Error) {
	fields := strings.Fields(input)
	for i := 1; i < len(fields); i++ {
		if fields[i] == "depth" && i+1 < len(fields) {
			depth, err := strconv.Atoi(fields[i+1])
			if err != nil {
				return 0, Wrap(err)
			}
			return depth, NilError
		}
	}
	return u.Depth, NilError
}

func (u *UciRunner) search(input string) ([]string, Error) {
	depth, err := u.parseDepth(input)
	if !IsNil(err) {
		return nil, err
	}

	g := u.Runner.Game()
	if u.Book != nil {
		if move := u.Book.Lookup(g); move.HasValue() {
			return []string{
				"info string book move",
				fmt.Sprintf("bestmove %v", move.Value()),
			}, NilError
		}
	}

	searcher := search.NewSearcher(u.Logger, g, u.Options)
	result, err := searcher.Search(depth)
	if !IsNil(err) {
		return nil, err
	}

	if result.Move.IsEmpty() {
		return []string{"bestmove " + NullMove.String()}, NilError
	}

	return []string{
		fmt.Sprintf("info depth %v score %v nodes %v pv %v",
			MaxInt(depth, 1), search.UciScore(result.Score), result.Nodes, result.Move.Value()),
		fmt.Sprintf("bestmove %v", result.Move.Value()),
	}, NilError
}

func (u *UciRunner) HandleInput(input string) ([]string, Error) {
	input = strings.TrimSpace(input)
	result := []string{}

	switch {
	case input == "uci":
		result = append(result, "id name "+EngineName)
		result = append(result, "id author "+EngineAuthor)
		result = append(result, "uciok")
	case input == "isready":
		result = append(result, "readyok")
	case input == "ucinewgame":
		u.Runner.Reset()
	case input == "quit":
		u.Quit = true
	case strings.HasPrefix(input, "position"):
		position, err := parsePosition(input)
		if !IsNil(err) {
			return result, err
		}
		err = u.Runner.PerformMoves(position.Fen, position.Moves)
		if !IsNil(err) {
			return result, err
		}
	case input == "go" || strings.HasPrefix(input, "go "):
		return u.search(input)
	case input == "d":
		result = append(result, u.Runner.Game().Unicode(), u.Runner.FenString())
	case input == "":
	default:
		u.Logger.Println("unknown command:", input)
	}

	return result, NilError
}
