package players

import (
	"github.com/cricklet/negachess/internal/book"
	"github.com/cricklet/negachess/internal/config"
	"github.com/cricklet/negachess/internal/evaluation"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/search"
	"github.com/cricklet/negachess/internal/stockfish"
)

func SearcherOptionsFromConfig(cfg config.SearchConfig) search.SearcherOptions {
	options := search.DefaultSearchOptions
	options.MaxQuiescenceDepth = cfg.MaxQuiescenceDepth
	options.SortMoves = cfg.SortMoves
	options.Workers = cfg.Workers
	if cfg.EndgameKingTable {
		options.EvaluationOptions = []evaluation.EvaluationOption{evaluation.EndgameKingTable}
	}
	return options
}

// LoadBookFromConfig returns nil when no book is configured.
func LoadBookFromConfig(logger Logger, cfg config.BookConfig) (*book.Book, Error) {
	if cfg.Path == "" {
		return nil, NilError
	}
	return book.LoadBook(cfg.Path, book.WithLogger(logger))
}

// NewMoveSource builds the source for one side. Engines that need a process
// or a model are only prepared here, not started.
func NewMoveSource(playerType PlayerType, cfg *config.Config, logger Logger) (MoveSource, Error) {
	switch playerType {
	case Negamax:
		b, err := LoadBookFromConfig(logger, cfg.Book)
		if !IsNil(err) {
			return nil, err
		}
		player := &NegamaxPlayer{
			Logger:  logger,
			Depth:   cfg.Search.Depth,
			Options: SearcherOptionsFromConfig(cfg.Search),
		}
		if b != nil {
			player.Book = b
		}
		return player, NilError
	case Stockfish:
		options := []stockfish.StockfishRunnerOption{stockfish.WithPath(cfg.Stockfish.Path)}
		if cfg.Stockfish.Elo > 0 {
			options = append(options, stockfish.WithElo(cfg.Stockfish.Elo))
		}
		return NewStockfishPlayer(logger, cfg.Stockfish.MoveTime, options...), NilError
	case Neural:
		return &NeuralPlayer{
			Logger:    logger,
			ModelPath: cfg.Neural.ModelPath,
			Depth:     cfg.Neural.Depth,
			CacheSize: cfg.Neural.CacheSize,
		}, NilError
	}
	return &HumanPlayer{}, NilError
}
