package search

import (
	"strconv"
	"strings"

	"github.com/cricklet/negachess/internal/evaluation"
	. "github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
)

const DefaultMaxQuiescenceDepth = 32

type SearcherOptions struct {
	// ply cap for the capture-only search; past it stand-pat is returned
	MaxQuiescenceDepth int
	// order moves by MoveScore before searching them. Captures in the
	// quiescence search are always ordered.
	SortMoves bool
	// score root moves on this many goroutines
	Workers           int
	EvaluationOptions []evaluation.EvaluationOption

	debugSearchTree *debugSearchTree
}

var DefaultSearchOptions = SearcherOptions{
	MaxQuiescenceDepth: DefaultMaxQuiescenceDepth,
	SortMoves:          true,
	Workers:            1,
}

var AllSearchOptions = []string{
	"maxQuiescenceDepth",
	"sortMoves",
	"workers",
	"endgameKingTable",
	"debugSearchTree",
}

func parseBoolArg(arg string) (bool, Error) {
	parts := strings.SplitN(arg, "=", 2)
	if len(parts) != 2 {
		return true, NilError
	}
	b, err := strconv.ParseBool(parts[1])
	if err != nil {
		return false, Wrap(err)
	}
	return b, NilError
}

func parseIntArg(arg string) (int, Error) {
	parts := strings.SplitN(arg, "=", 2)
	if len(parts) != 2 {
		return 0, Errorf("option '%v' needs a value", arg)
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, Wrap(err)
	}
	return n, NilError
}

func SearcherOptionsFromArgs(args ...string) (SearcherOptions, Error) {
	options := DefaultSearchOptions

	for _, arg := range args {
		var err Error
		if strings.HasPrefix(arg, "maxQuiescenceDepth") {
			options.MaxQuiescenceDepth, err = parseIntArg(arg)
		} else if strings.HasPrefix(arg, "sortMoves") {
			options.SortMoves, err = parseBoolArg(arg)
		} else if strings.HasPrefix(arg, "workers") {
			options.Workers, err = parseIntArg(arg)
		} else if strings.HasPrefix(arg, "endgameKingTable") {
			options.EvaluationOptions = append(options.EvaluationOptions, evaluation.EndgameKingTable)
		} else if strings.HasPrefix(arg, "debugSearchTree") {
			options.debugSearchTree = &debugSearchTree{}
		} else {
			err = Errorf("unknown option: %s", arg)
		}
		if !IsNil(err) {
			return options, err
		}
	}

	return options, NilError
}

type Result struct {
	Move  Optional[Move]
	Score int
	Nodes int
}

// Searcher runs negamax over Game. It borrows the position for the duration
// of each call and leaves it exactly as it found it.
type Searcher struct {
	Logger Logger
	Game   *GameState

	options SearcherOptions

	// plies from the root, used to prefer shorter mates
	ply int

	DebugTotalEvaluations int
	Nodes                 int
}

func NewSearcher(logger Logger, game *GameState, options SearcherOptions) *Searcher {
	if options.MaxQuiescenceDepth <= 0 {
		options.MaxQuiescenceDepth = DefaultMaxQuiescenceDepth
	}
	if options.Workers <= 0 {
		options.Workers = 1
	}
	return &Searcher{
		Logger:  logger,
		Game:    game,
		options: options,
	}
}

func (s *Searcher) generateMoves(capturesOnly bool) []Move {
	var moves []Move
	if capturesOnly {
		moves = s.Game.CaptureMoves()
	} else {
		moves = s.Game.LegalMoves()
	}

	if (capturesOnly || s.options.SortMoves) && len(moves) > 1 {
		board := s.Game.Board()
		player := s.Game.Player()
		SortMaxFirst(moves, func(m Move) int {
			return evaluation.MoveScore(&board, player, m)
		})
	}
	return moves
}

// EvaluatePosition is the static score for the side to move. Being mated
// closer to the root scores lower.
func (s *Searcher) EvaluatePosition() int {
	s.DebugTotalEvaluations++
	score := evaluation.Evaluate(s.Game, s.options.EvaluationOptions...)
	if score == -evaluation.MateScore {
		score += s.ply
	}
	return score
}

// AlphaBeta is negamax with alpha-beta pruning. It returns the score of the
// first move that reaches beta (fail-soft), otherwise the best score found.
func (s *Searcher) AlphaBeta(alpha int, beta int, depth int) (int, Error) {
	if depth <= 0 {
		return s.Quiesce(alpha, beta)
	}
	s.Nodes++

	moves := s.generateMoves(false)
	if len(moves) == 0 {
		return s.EvaluatePosition(), NilError
	}

	bestScore := -Inf
	for _, move := range moves {
		score, err := s.evaluateMove(move, alpha, beta, depth)
		if !IsNil(err) {
			return bestScore, err
		}
		if score >= beta {
			return score, NilError
		}
		if score > bestScore {
			bestScore = score
		}
		if score > alpha {
			alpha = score
		}
	}
	return bestScore, NilError
}

func (s *Searcher) evaluateMove(move Move, alpha int, beta int, depth int) (returnScore int, returnErr Error) {
	if s.options.debugSearchTree != nil {
		s.options.debugSearchTree.MovePush(move.String(), alpha, beta)
		defer func() {
			s.options.debugSearchTree.MovePop(move.String(), alpha, beta, returnScore)
		}()
	}

	var update BoardUpdate
	err := s.Game.PerformMove(move, &update)
	if !IsNil(err) {
		return 0, err
	}
	s.ply++
	defer func() {
		s.ply--
		returnErr = Join(returnErr, s.Game.UndoUpdate(&update))
	}()

	score, err := s.AlphaBeta(-beta, -alpha, depth-1)
	return -score, err
}

// Quiesce extends the search through captures only, so the static evaluation
// is never taken in the middle of an exchange.
func (s *Searcher) Quiesce(alpha int, beta int) (int, Error) {
	return s.quiesce(alpha, beta, 0)
}

func (s *Searcher) quiesce(alpha int, beta int, quiescenceDepth int) (int, Error) {
	s.Nodes++

	standPat := s.EvaluatePosition()
	if standPat >= beta {
		return beta, NilError
	}
	if alpha < standPat {
		alpha = standPat
	}
	if quiescenceDepth >= s.options.MaxQuiescenceDepth {
		return alpha, NilError
	}

	for _, move := range s.generateMoves(true) {
		score, err := s.quiesceMove(move, alpha, beta, quiescenceDepth)
		if !IsNil(err) {
			return alpha, err
		}
		if score >= beta {
			return beta, NilError
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha, NilError
}

func (s *Searcher) quiesceMove(move Move, alpha int, beta int, quiescenceDepth int) (returnScore int, returnErr Error) {
	var update BoardUpdate
	err := s.Game.PerformMove(move, &update)
	if !IsNil(err) {
		return 0, err
	}
	s.ply++
	defer func() {
		s.ply--
		returnErr = Join(returnErr, s.Game.UndoUpdate(&update))
	}()

	score, err := s.quiesce(-beta, -alpha, quiescenceDepth+1)
	return -score, err
}

// Search picks the best move for the side to move. A position without legal
// moves yields an empty move and no error. Depth 0 is searched as depth 1.
func (s *Searcher) Search(depth int) (Result, Error) {
	if depth < 1 {
		depth = 1
	}

	moves := s.generateMoves(false)
	if len(moves) == 0 {
		return Result{Move: Empty[Move](), Score: s.EvaluatePosition(), Nodes: s.Nodes}, NilError
	}

	var result Result
	var err Error
	if s.options.Workers > 1 && len(moves) > 1 {
		result, err = s.searchParallel(moves, depth)
	} else {
		result, err = s.searchSequential(moves, depth)
	}
	if !IsNil(err) {
		return result, err
	}

	s.Logger.Println("evaluated",
		"to depth", depth,
		"- nodes", result.Nodes,
		"- total evals", s.DebugTotalEvaluations,
		"- best move", result.Move.Value().String(),
		"- score", ScoreString(result.Score))

	return result, NilError
}

func (s *Searcher) searchSequential(moves []Move, depth int) (Result, Error) {
	bestMove := Empty[Move]()
	bestScore := -RootBound + 1
	alpha := -RootBound
	beta := RootBound

	for _, move := range moves {
		score, err := s.evaluateMove(move, alpha, beta, depth)
		if !IsNil(err) {
			return Result{Move: bestMove, Score: bestScore, Nodes: s.Nodes}, err
		}
		if bestMove.IsEmpty() || score > bestScore {
			bestScore = score
			bestMove = Some(move)
		}
		if score > alpha {
			alpha = score
		}
	}

	return Result{Move: bestMove, Score: bestScore, Nodes: s.Nodes}, NilError
}

func (s *Searcher) DebugTree(depth int) string {
	if s.options.debugSearchTree == nil {
		return ""
	}
	return s.options.debugSearchTree.DebugString(depth)
}
