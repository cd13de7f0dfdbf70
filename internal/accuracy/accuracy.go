package accuracy

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/cricklet/negachess/internal/evaluation"
	. "github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/players"
	"github.com/cricklet/negachess/internal/stockfish"
)

// WinPercentage maps a centipawn score for the mover onto an expected score
// between 0 and 100.
func WinPercentage(centipawns int) float64 {
	return 50.0 + 50.0*(2.0/(1.0+math.Exp(-0.00368208*float64(centipawns)))-1.0)
}

// AccuracyForScores rates a move that left the mover at score played when
// best was available. Equal scores rate (roughly) 100.
func AccuracyForScores(played int, best int) float64 {
	winPlayed := WinPercentage(played)
	winBest := WinPercentage(best)
	return math.Max(0, math.Min(100, 103.1668*math.Exp(-0.04354*(winBest-winPlayed))-3.1669))
}

func calculateSuccess(move string, bestMoves []string, avoidMoves []string) bool {
	if len(bestMoves) > 0 && !Contains(bestMoves, move) {
		return false
	}
	if len(avoidMoves) > 0 && Contains(avoidMoves, move) {
		return false
	}
	return true
}

type EpdResult struct {
	Epd     *Epd
	Move    Optional[string]
	Success bool

	// set when a stockfish comparison was requested
	Accuracy Optional[float64]
}

func (r EpdResult) String() string {
	result := "fail"
	if r.Success {
		result = "pass"
	}
	s := fmt.Sprintf("%v %v: played %v, best %v, avoid %v",
		result, r.Epd.Id, r.Move.ValueOr("none"), r.Epd.BestMoves, r.Epd.AvoidMoves)
	if r.Accuracy.HasValue() {
		s += fmt.Sprintf(", accuracy %v", humanize.FtoaWithDigits(r.Accuracy.Value(), 1))
	}
	return s
}

type Report struct {
	Results []EpdResult
	Passed  int
}

func (r Report) String() string {
	s := fmt.Sprintf("passed %v / %v", humanize.Comma(int64(r.Passed)), humanize.Comma(int64(len(r.Results))))

	total := 0.0
	count := 0
	for _, result := range r.Results {
		if result.Accuracy.HasValue() {
			total += result.Accuracy.Value()
			count++
		}
	}
	if count > 0 {
		s += fmt.Sprintf(", mean accuracy %v", humanize.FtoaWithDigits(total/float64(count), 1))
	}
	return s
}

// SearchEpd asks source for a move in the epd position and checks it against
// the bm/am lists.
func SearchEpd(source players.MoveSource, epd *Epd) (EpdResult, Error) {
	result := EpdResult{Epd: epd}

	g, err := GamestateFromFenString(epd.Fen)
	if !IsNil(err) {
		return result, err
	}

	move, err := source.SelectMove(g)
	if !IsNil(err) {
		return result, err
	}
	if move.IsEmpty() {
		return result, NilError
	}

	result.Move = Some(move.Value().String())
	result.Success = calculateSuccess(result.Move.Value(), epd.BestMoves, epd.AvoidMoves)
	return result, NilError
}

// ScoreAccuracy compares the score stockfish gives move against the score of
// the position itself, both from the mover's side.
func ScoreAccuracy(stock *stockfish.StockfishRunner, params stockfish.SearchParams, fen string, move string) (float64, Error) {
	g, err := GamestateFromFenString(fen)
	if !IsNil(err) {
		return 0, err
	}
	m, err := g.MoveFromString(move)
	if !IsNil(err) {
		return 0, err
	}

	err = stock.SetupPosition(Position{Fen: fen})
	if !IsNil(err) {
		return 0, err
	}
	_, best, err := stock.Search(params)
	if !IsNil(err) {
		return 0, err
	}
	if best.IsEmpty() {
		return 0, Errorf("no score for '%v'", fen)
	}

	var update BoardUpdate
	err = g.PerformMove(m, &update)
	if !IsNil(err) {
		return 0, err
	}

	var played int
	if g.IsCheckmate() {
		played = evaluation.MateScore - 1
	} else if g.IsGameOver() {
		played = 0
	} else {
		err = stock.SetupPosition(Position{Fen: fen, Moves: []string{move}})
		if !IsNil(err) {
			return 0, err
		}
		_, reply, err := stock.Search(params)
		if !IsNil(err) {
			return 0, err
		}
		if reply.IsEmpty() {
			return 0, Errorf("no score after %v in '%v'", move, fen)
		}
		played = -reply.Value()
	}

	return AccuracyForScores(played, MaxInt(best.Value(), played)), NilError
}

type RunnerOption func(*Runner)

func WithLogger(logger Logger) RunnerOption {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithStockfish rates every played move against stockfish at params.
func WithStockfish(stock *stockfish.StockfishRunner, params stockfish.SearchParams) RunnerOption {
	return func(r *Runner) {
		r.Stockfish = stock
		r.Params = params
	}
}

// WithProgress is called after each position.
func WithProgress(callback func(EpdResult)) RunnerOption {
	return func(r *Runner) {
		r.OnResult = callback
	}
}

type Runner struct {
	Logger    Logger
	Source    players.MoveSource
	Stockfish *stockfish.StockfishRunner
	Params    stockfish.SearchParams
	OnResult  func(EpdResult)
}

func NewRunner(source players.MoveSource, options ...RunnerOption) *Runner {
	r := &Runner{
		Logger: DefaultLogger,
		Source: source,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *Runner) Run(epds []*Epd) (Report, Error) {
	report := Report{}

	for _, epd := range epds {
		result, err := SearchEpd(r.Source, epd)
		if !IsNil(err) {
			return report, Errorf("%v: %w", epd.Id, err)
		}

		if r.Stockfish != nil && result.Move.HasValue() {
			accuracy, err := ScoreAccuracy(r.Stockfish, r.Params, epd.Fen, result.Move.Value())
			if !IsNil(err) {
				return report, Errorf("%v: %w", epd.Id, err)
			}
			result.Accuracy = Some(accuracy)
		}

		if result.Success {
			report.Passed++
		}
		report.Results = append(report.Results, result)
		r.Logger.Println(result)

		if r.OnResult != nil {
			r.OnResult(result)
		}
	}

	return report, NilError
}
