package evaluation

import (
	. "github.com/cricklet/negachess/internal/bitboards"
	. "github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
)

// MateScore is the magnitude returned for a checkmated side to move.
const MateScore = 9999

type EvaluationOption int

const (
	// Swap in a centralizing king table once the queens (or most of the
	// supporting pieces) are off.
	EndgameKingTable EvaluationOption = iota
)

type EvaluationBitboard struct {
	multiplier int
	b          Bitboard
}

var PawnDevelopmentBitboards = evaluationsPerPlayer(pawnTable)
var KnightDevelopmentBitboards = evaluationsPerPlayer(knightTable)
var BishopDevelopmentBitboards = evaluationsPerPlayer(bishopTable)
var RookDevelopmentBitboards = evaluationsPerPlayer(rookTable)
var QueenDevelopmentBitboards = evaluationsPerPlayer(queenTable)
var KingDevelopmentBitboards = evaluationsPerPlayer(kingMiddlegameTable)
var KingEndgameDevelopmentBitboards = evaluationsPerPlayer(kingEndgameTable)

// indexed via PieceType
var AllDevelopmentBitboards = [6][2][]EvaluationBitboard{
	RookDevelopmentBitboards,
	KnightDevelopmentBitboards,
	BishopDevelopmentBitboards,
	KingDevelopmentBitboards,
	QueenDevelopmentBitboards,
	PawnDevelopmentBitboards,
}

// indexed via PieceType
var PieceValues = [7]int{
	500,
	320,
	330,
	0,
	900,
	100,
	0,
}

func bitboardFromArray(lookup int, array [8][8]int) Bitboard {
	b := Bitboard(0)
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			if array[i][j] == lookup {
				index := (7-i)*8 + j
				b |= SingleBitboard(index)
			}
		}
	}
	return b
}

func evaluationsFromArray(array [8][8]int) []EvaluationBitboard {
	result := []EvaluationBitboard{}
	seen := map[int]bool{}
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			score := array[i][j]
			if score == 0 || seen[score] {
				continue
			}
			seen[score] = true
			result = append(result, EvaluationBitboard{
				multiplier: score,
				b:          bitboardFromArray(score, array),
			})
		}
	}
	return result
}

// Black reads the same table mirrored top to bottom.
func evaluationsPerPlayer(whiteOrientedEvalArray [8][8]int) [2][]EvaluationBitboard {
	return [2][]EvaluationBitboard{
		evaluationsFromArray(whiteOrientedEvalArray),
		evaluationsFromArray(FlipArray(whiteOrientedEvalArray)),
	}
}

func evaluateDevelopmentForPiece(b Bitboard, e []EvaluationBitboard) int {
	result := 0
	for _, eval := range e {
		result += eval.multiplier * OnesCount(eval.b&b)
	}
	return result
}

func EvaluateDevelopment(b *Bitboards, player Player, endgame bool) int {
	pieces := &b.Players[player].Pieces
	development := 0
	development += evaluateDevelopmentForPiece(pieces[Rook], RookDevelopmentBitboards[player])
	development += evaluateDevelopmentForPiece(pieces[Knight], KnightDevelopmentBitboards[player])
	development += evaluateDevelopmentForPiece(pieces[Bishop], BishopDevelopmentBitboards[player])
	development += evaluateDevelopmentForPiece(pieces[Queen], QueenDevelopmentBitboards[player])
	development += evaluateDevelopmentForPiece(pieces[Pawn], PawnDevelopmentBitboards[player])
	if endgame {
		development += evaluateDevelopmentForPiece(pieces[King], KingEndgameDevelopmentBitboards[player])
	} else {
		development += evaluateDevelopmentForPiece(pieces[King], KingDevelopmentBitboards[player])
	}
	return development
}

func EvaluatePieces(b *Bitboards, player Player) int {
	pieces := &b.Players[player].Pieces
	return PieceValues[Rook]*OnesCount(pieces[Rook]) +
		PieceValues[Knight]*OnesCount(pieces[Knight]) +
		PieceValues[Bishop]*OnesCount(pieces[Bishop]) +
		PieceValues[Queen]*OnesCount(pieces[Queen]) +
		PieceValues[Pawn]*OnesCount(pieces[Pawn])
}

// IsEndgame holds when each side either has no queen, or has a queen with no
// rooks and at most one minor piece.
func IsEndgame(b *Bitboards) bool {
	for _, player := range []Player{White, Black} {
		pieces := &b.Players[player].Pieces
		if pieces[Queen] == 0 {
			continue
		}
		if pieces[Rook] != 0 || OnesCount(pieces[Knight]|pieces[Bishop]) > 1 {
			return false
		}
	}
	return true
}

// EvaluateWhite scores material and piece placement from White's side,
// ignoring terminal states.
func EvaluateWhite(b *Bitboards, options ...EvaluationOption) int {
	endgame := Contains(options, EndgameKingTable) && IsEndgame(b)
	white := EvaluatePieces(b, White) + EvaluateDevelopment(b, White, endgame)
	black := EvaluatePieces(b, Black) + EvaluateDevelopment(b, Black, endgame)
	return white - black
}

// Evaluate scores g from the point of view of the side to move. A checkmated
// side to move gets -MateScore, and dead positions score zero.
func Evaluate(g *GameState, options ...EvaluationOption) int {
	if g.IsCheckmate() {
		return -MateScore
	}
	if g.IsStalemate() || g.IsInsufficientMaterial() {
		return 0
	}

	b := g.CreateBitboards()
	return g.Player().Sign() * EvaluateWhite(&b, options...)
}

// MoveScore is a cheap ordering heuristic: most valuable victim first, then
// promotions and the change in placement score.
func MoveScore(board *BoardArray, player Player, m Move) int {
	pieceType := board[m.StartIndex].PieceType()
	if !pieceType.IsValid() {
		return 0
	}

	score := 0
	captured := board[m.EndIndex]
	if captured != XX {
		score += 10*PieceValues[captured.PieceType()] - PieceValues[pieceType]
	} else if pieceType == Pawn && FileRankFromIndex(m.StartIndex).File != FileRankFromIndex(m.EndIndex).File {
		// en passant
		score += 10*PieceValues[Pawn] - PieceValues[Pawn]
	}
	if m.PromotionPiece.HasValue() {
		score += PieceValues[m.PromotionPiece.Value()]
	}

	tables := AllDevelopmentBitboards[pieceType][player]
	score += evaluateDevelopmentForPiece(SingleBitboard(m.EndIndex), tables) -
		evaluateDevelopmentForPiece(SingleBitboard(m.StartIndex), tables)
	return score
}
