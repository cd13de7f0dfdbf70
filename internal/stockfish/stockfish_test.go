package stockfish

import (
	"os/exec"
	"testing"
	"time"

	"github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireStockfish(t *testing.T) {
	if _, err := exec.LookPath("stockfish"); err != nil {
		t.Skip("stockfish not on PATH")
	}
}

func TestInfoMate(t *testing.T) {
	line := "info depth 31 seldepth 2 multipv 1 score mate 1 nodes 670 nps 670000 tbhits 0 time 1 pv a4e8	"
	move, score, err := MoveAndScoreFromInfoLine(line)
	assert.True(t, IsNil(err), err)
	assert.Equal(t, "a4e8", move.Value())
	assert.Equal(t, "mate+1", search.ScoreString(score))
	assert.Equal(t, "mate 1", search.UciScore(score))

	line = "info depth 31 seldepth 2 multipv 1 score mate -1 nodes 670 nps 670000 tbhits 0 time 1 pv a4e8	"
	move, score, err = MoveAndScoreFromInfoLine(line)
	assert.True(t, IsNil(err), err)
	assert.Equal(t, "a4e8", move.Value())
	assert.Equal(t, "mate-2", search.ScoreString(score))
	assert.Equal(t, "mate -1", search.UciScore(score))
}

func TestInfoScore(t *testing.T) {
	line := "info depth 1 seldepth 3 multipv 1 score cp 869 nodes 83 nps 83000 tbhits 0 time 1 pv a4e8 f7f6 e6f5 f6f5"
	move, score, err := MoveAndScoreFromInfoLine(line)
	assert.True(t, IsNil(err), err)
	assert.Equal(t, "a4e8", move.Value())
	assert.Equal(t, 869, score)
}

func TestInfoLowerBound(t *testing.T) {
	line := "info depth 14 seldepth 16 multipv 1 score cp -133 lowerbound nodes 46884 nps 390700 tbhits 0 time 120 pv b7e4 d3e4"
	move, score, err := MoveAndScoreFromInfoLine(line)
	assert.True(t, IsNil(err), err)
	assert.Equal(t, "b7e4", move.Value())
	assert.Equal(t, -133, score)
}

func TestInfoMissingPv(t *testing.T) {
	line := "info depth 1 seldepth 1 multipv 1 score cp 13 nodes 20 nps 20000 tbhits 0 time 1"
	move, score, err := MoveAndScoreFromInfoLine(line)
	assert.True(t, IsNil(err), err)
	assert.True(t, move.IsEmpty())
	assert.Equal(t, 13, score)
}

func TestInfoWithoutScore(t *testing.T) {
	_, _, err := MoveAndScoreFromInfoLine("info depth 1 currmove e2e4 currmovenumber 1")
	assert.False(t, IsNil(err))

	_, _, err = MoveAndScoreFromInfoLine("info depth 1 score cp")
	assert.False(t, IsNil(err))
}

func TestBestMoveFromLine(t *testing.T) {
	assert.Equal(t, Some("e2e4"), BestMoveFromLine("bestmove e2e4 ponder e7e5"))
	assert.Equal(t, Some("e7e8q"), BestMoveFromLine("bestmove e7e8q"))
	assert.True(t, BestMoveFromLine("bestmove (none)").IsEmpty())
	assert.True(t, BestMoveFromLine("bestmove 0000").IsEmpty())
	assert.True(t, BestMoveFromLine("info depth 1").IsEmpty())
}

func TestSearchParams(t *testing.T) {
	command, budget, err := SearchParams{Depth: Some(5)}.command()
	assert.True(t, IsNil(err))
	assert.Equal(t, "go depth 5", command)
	assert.Equal(t, time.Duration(0), budget)

	command, budget, err = SearchParams{Duration: Some(150 * time.Millisecond)}.command()
	assert.True(t, IsNil(err))
	assert.Equal(t, "go movetime 150", command)
	assert.Equal(t, 150*time.Millisecond, budget)

	_, _, err = SearchParams{}.command()
	assert.False(t, IsNil(err))
}

func TestMissingBinary(t *testing.T) {
	r := NewStockfishRunner(WithPath("negachess-no-such-stockfish"), WithLogger(SilentLogger))
	err := r.SetupPosition(Position{Fen: game.StartFen})
	assert.False(t, IsNil(err))
	assert.True(t, r.IsNew())

	_, _, err = r.Search(SearchParams{Depth: Some(1)})
	assert.False(t, IsNil(err))
}

func TestStockfish(t *testing.T) {
	requireStockfish(t)

	fen := "rn1qk2r/ppp3pp/3b1n2/3ppb2/8/2NPBNP1/PPP2PBP/R2QK2R b KQkq - 15 8"
	moves := []string{
		"e8g8",
		"d3d4",
	}

	r := NewStockfishRunner(WithLogger(SilentLogger))
	defer r.Close()

	err := r.SetupPosition(Position{Fen: fen})
	require.True(t, IsNil(err), err)

	for _, m := range moves {
		err := r.PerformMoveFromString(m)
		assert.True(t, IsNil(err), err)
	}

	move, score, err := r.Search(SearchParams{Duration: Some(100 * time.Millisecond)})
	assert.True(t, IsNil(err), err)
	require.True(t, move.HasValue())
	assert.True(t, score.HasValue())

	g, err := game.GamestateFromFenString(fen)
	require.True(t, IsNil(err), err)
	for _, m := range append(moves, move.Value()) {
		parsed, err := g.MoveFromString(m)
		require.True(t, IsNil(err), err)
		require.True(t, IsNil(g.PerformMove(parsed, &game.BoardUpdate{})))
	}
}

func TestStockfishFindsMate(t *testing.T) {
	requireStockfish(t)

	r := NewStockfishRunner(WithLogger(SilentLogger))
	defer r.Close()

	err := r.SetupPosition(Position{Fen: "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"})
	require.True(t, IsNil(err), err)

	move, score, err := r.Search(SearchParams{Depth: Some(5)})
	assert.True(t, IsNil(err), err)
	assert.Equal(t, Some("a1a8"), move)
	assert.Equal(t, "mate+1", search.ScoreString(score.Value()))
}

func TestStockfishNoMoves(t *testing.T) {
	requireStockfish(t)

	r := NewStockfishRunner(WithLogger(SilentLogger))
	defer r.Close()

	err := r.SetupPosition(Position{Fen: "R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1"})
	require.True(t, IsNil(err), err)

	move, _, err := r.Search(SearchParams{Depth: Some(3)})
	assert.True(t, IsNil(err), err)
	assert.True(t, move.IsEmpty())
}
