package stockfish

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cricklet/negachess/internal/binary"
	"github.com/cricklet/negachess/internal/evaluation"
	. "github.com/cricklet/negachess/internal/helpers"
)

// DefaultTimeout is the slack allowed on top of a search budget, and the
// bound on each handshake reply.
const DefaultTimeout = 2 * time.Second

type StockfishRunner struct {
	logger  Logger
	binary  *binary.BinaryRunner
	path    string
	timeout time.Duration

	elo      Optional[int]
	startFen string
	moves    []string
}

type StockfishRunnerOption func(*StockfishRunner)

func WithElo(elo int) StockfishRunnerOption {
	return func(r *StockfishRunner) {
		r.elo = Some(elo)
	}
}

func WithLogger(logger Logger) StockfishRunnerOption {
	return func(r *StockfishRunner) {
		r.logger = logger
	}
}

func WithPath(path string) StockfishRunnerOption {
	return func(r *StockfishRunner) {
		r.path = path
	}
}

func WithTimeout(timeout time.Duration) StockfishRunnerOption {
	return func(r *StockfishRunner) {
		r.timeout = timeout
	}
}

// NewStockfishRunner does not start the process; that happens on the first
// SetupPosition.
func NewStockfishRunner(options ...StockfishRunnerOption) *StockfishRunner {
	r := &StockfishRunner{
		path:    "stockfish",
		timeout: DefaultTimeout,
	}
	for _, o := range options {
		o(r)
	}
	if r.logger == nil {
		r.logger = DefaultLogger
	}

	return r
}

func (r *StockfishRunner) start() Error {
	var err Error
	r.binary, err = binary.SetupBinaryRunner(
		r.path, "stockfish", []string{},
		binary.WithLogger(r.logger))
	if !IsNil(err) {
		r.binary = nil
		return err
	}

	_, err = r.binary.Run("uci", "uciok", r.timeout)
	if !IsNil(err) {
		r.Reset()
		return err
	}

	if r.elo.HasValue() && r.elo.Value() > 0 {
		err = Join(
			r.binary.RunAsync("setoption name UCI_LimitStrength value true"),
			r.binary.RunAsync(fmt.Sprintf("setoption name UCI_Elo value %v", r.elo.Value())),
		)
		if !IsNil(err) {
			r.Reset()
			return err
		}
	}

	err = r.binary.RunAsync("ucinewgame")
	if !IsNil(err) {
		r.Reset()
		return err
	}

	return r.isReady()
}

func (r *StockfishRunner) isReady() Error {
	_, err := r.binary.Run("isready", "readyok", r.timeout)
	if !IsNil(err) {
		r.Reset()
	}
	return err
}

func positionCommand(fen string, moves []string) string {
	if len(moves) == 0 {
		return "position fen " + fen
	}
	return "position fen " + fen + " moves " + strings.Join(moves, " ")
}

func (r *StockfishRunner) SetupPosition(position Position) Error {
	if r.binary == nil || !r.binary.IsRunning() {
		r.Reset()
		err := r.start()
		if !IsNil(err) {
			return err
		}
	}

	r.startFen = position.Fen
	r.moves = append([]string{}, position.Moves...)

	return r.binary.RunAsync(positionCommand(r.startFen, r.moves))
}

func (r *StockfishRunner) PerformMoveFromString(s string) Error {
	if r.binary == nil {
		return Errorf("stockfish not setup")
	}

	r.moves = append(r.moves, s)
	return r.binary.RunAsync(positionCommand(r.startFen, r.moves))
}

func (r *StockfishRunner) Reset() {
	if r.binary != nil {
		r.binary.Close()
	}

	r.binary = nil
	r.startFen = ""
	r.moves = []string{}
}

func (r *StockfishRunner) IsNew() bool {
	return r.binary == nil
}

func (r *StockfishRunner) Close() {
	r.Reset()
}

type SearchParams struct {
	Depth    Optional[int]
	Duration Optional[time.Duration]
}

func (p SearchParams) command() (string, time.Duration, Error) {
	if p.Depth.HasValue() {
		return fmt.Sprint("go depth ", p.Depth.Value()), 0, NilError
	}
	if p.Duration.HasValue() {
		return fmt.Sprint("go movetime ", p.Duration.Value().Milliseconds()), p.Duration.Value(), NilError
	}
	return "", 0, Errorf("no search params provided")
}

// SearchRaw feeds every line of the search to callback, stopping at the
// bestmove line.
func (r *StockfishRunner) SearchRaw(params SearchParams, callback func(line string) Error) Error {
	if r.binary == nil {
		return Errorf("stockfish not setup")
	}

	command, budget, err := params.command()
	if !IsNil(err) {
		return err
	}

	r.binary.Discard()

	processLine := func(line string) (LoopResult, Error) {
		err := callback(line)
		if !IsNil(err) {
			return LoopBreak, err
		}
		if strings.HasPrefix(line, "bestmove") {
			return LoopBreak, NilError
		}
		return LoopContinue, NilError
	}

	err = r.binary.RunSync(command, processLine, Some(budget+r.timeout))
	if IsNil(err) || !err.Contains("timeout") {
		return err
	}

	r.logger.Println("stockfish did not answer in time, sending stop")
	stopErr := r.binary.RunSync("stop", processLine, Some(r.timeout))
	if !IsNil(stopErr) {
		r.Reset()
		return Join(err, stopErr)
	}

	return NilError
}

// Search returns the engine's best move and the last score it reported,
// relative to the side to move.
func (r *StockfishRunner) Search(params SearchParams) (Optional[string], Optional[int], Error) {
	bestMove := Empty[string]()
	score := Empty[int]()

	err := r.SearchRaw(params, func(line string) Error {
		if strings.HasPrefix(line, "info") && strings.Contains(line, " score ") {
			_, lineScore, err := MoveAndScoreFromInfoLine(line)
			if !IsNil(err) {
				return err
			}
			score = Some(lineScore)
		} else if strings.HasPrefix(line, "bestmove") {
			bestMove = BestMoveFromLine(line)
		}
		return NilError
	})

	if !IsNil(err) {
		return Empty[string](), Empty[int](), err
	}

	return bestMove, score, NilError
}

// BestMoveFromLine parses "bestmove e2e4 [ponder e7e5]". "(none)" and "0000"
// mean there is no legal move.
func BestMoveFromLine(line string) Optional[string] {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "bestmove" {
		return Empty[string]()
	}
	if fields[1] == "(none)" || fields[1] == "0000" {
		return Empty[string]()
	}
	return Some(fields[1])
}

// MoveAndScoreFromInfoLine parses the score and the first pv move of an info
// line. Mate distances are converted to the searcher's mate scores.
func MoveAndScoreFromInfoLine(line string) (Optional[string], int, Error) {
	fields := strings.Fields(line)

	move := Empty[string]()
	score := Empty[int]()

	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "score":
			if i+2 >= len(fields) {
				return move, 0, Errorf("truncated score in %q", line)
			}
			value, err := WrapReturn(strconv.Atoi(fields[i+2]))
			if !IsNil(err) {
				return move, 0, err
			}
			switch fields[i+1] {
			case "cp":
				score = Some(value)
			case "mate":
				score = Some(scoreFromMate(value))
			default:
				return move, 0, Errorf("unknown score type %v in %q", fields[i+1], line)
			}
			i += 2
		case "pv":
			if i+1 < len(fields) {
				move = Some(fields[i+1])
			}
			i = len(fields)
		}
	}

	if score.IsEmpty() {
		return move, 0, Errorf("no score in %q", line)
	}

	return move, score.Value(), NilError
}

func scoreFromMate(moves int) int {
	if moves > 0 {
		return evaluation.MateScore - (2*moves - 1)
	}
	return -(evaluation.MateScore + 2*moves)
}
