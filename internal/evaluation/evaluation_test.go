package evaluation

import (
	"strings"
	"testing"
	"unicode"

	. "github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/stretchr/testify/assert"
)

// mirrorFen swaps colors and reflects the board across the horizontal midline.
func mirrorFen(t *testing.T, fen string) string {
	fields := strings.Fields(fen)
	assert.Equal(t, 6, len(fields))

	swapCase := func(s string) string {
		return strings.Map(func(r rune) rune {
			if unicode.IsUpper(r) {
				return unicode.ToLower(r)
			}
			return unicode.ToUpper(r)
		}, s)
	}

	ranks := strings.Split(fields[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	fields[0] = swapCase(strings.Join(ranks, "/"))

	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}

	if fields[2] != "-" {
		fields[2] = swapCase(fields[2])
	}
	if fields[3] != "-" {
		rank := fields[3][1]
		fields[3] = fields[3][:1] + string('1'+('8'-rank))
	}
	return strings.Join(fields, " ")
}

func evaluateFen(t *testing.T, fen string, options ...EvaluationOption) int {
	g, err := GamestateFromFenString(fen)
	assert.True(t, IsNil(err), err)
	return Evaluate(g, options...)
}

func TestStartPositionIsBalanced(t *testing.T) {
	assert.Equal(t, 0, evaluateFen(t, StartFen))
}

func TestMirrorSymmetry(t *testing.T) {
	for _, fen := range []string{
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4",
		"4k3/8/8/8/3K4/8/4P3/8 b - - 0 1",
	} {
		mirrored := mirrorFen(t, fen)
		assert.Equal(t, evaluateFen(t, fen), evaluateFen(t, mirrored), fen+" vs "+mirrored)
		assert.Equal(t,
			evaluateFen(t, fen, EndgameKingTable),
			evaluateFen(t, mirrored, EndgameKingTable), fen+" vs "+mirrored)
	}
}

func TestSideToMoveNegates(t *testing.T) {
	white := evaluateFen(t, "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	black := evaluateFen(t, "4k3/8/8/8/8/8/4P3/4K3 b - - 0 1")

	// pawn plus its e2 square, kings on neutral squares
	assert.Equal(t, 80, white)
	assert.Equal(t, -80, black)
}

func TestEndgameKingTable(t *testing.T) {
	fen := "4k3/8/8/8/3K4/8/4P3/8 w - - 0 1"
	assert.Equal(t, 100-20-40, evaluateFen(t, fen))
	assert.Equal(t, 100-20+40+30, evaluateFen(t, fen, EndgameKingTable))

	// queens on the board with rooks is not an endgame
	middlegame := "3qk2r/8/8/8/3K4/8/4P3/3Q3R w - - 0 1"
	assert.Equal(t, evaluateFen(t, middlegame), evaluateFen(t, middlegame, EndgameKingTable))
}

func TestTerminalPositions(t *testing.T) {
	// fool's mate, white to move
	assert.Equal(t, -MateScore, evaluateFen(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"))
	// back rank mate, black to move
	assert.Equal(t, -MateScore, evaluateFen(t, "R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1"))

	assert.Equal(t, 0, evaluateFen(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"))
	assert.Equal(t, 0, evaluateFen(t, "8/8/8/4k3/8/8/8/4KB2 w - - 0 1"))
}

func TestMaterial(t *testing.T) {
	assert.Greater(t, evaluateFen(t, "rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"), 800)
	assert.Less(t, evaluateFen(t, "rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1"), -800)
}

func TestMoveScore(t *testing.T) {
	g, err := GamestateFromFenString("4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1")
	assert.True(t, IsNil(err), err)
	board := g.Board()

	capture, err := g.MoveFromString("e4d5")
	assert.True(t, IsNil(err), err)
	push, err := g.MoveFromString("e4e5")
	assert.True(t, IsNil(err), err)
	king, err := g.MoveFromString("e1f1")
	assert.True(t, IsNil(err), err)

	assert.Greater(t, MoveScore(&board, White, capture), MoveScore(&board, White, push))
	assert.Greater(t, MoveScore(&board, White, capture), MoveScore(&board, White, king))
}
