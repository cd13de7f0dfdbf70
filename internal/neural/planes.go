package neural

import (
	. "github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
)

const (
	NumPlanes = 14
	InputSize = NumPlanes * 64
)

// Planes is the network input: one 8x8 plane per piece type and color
// (white pawn..king, then black pawn..king), then the destination squares of
// white's legal moves and of black's legal moves, each computed as if that
// side were to move. Row 0 is the eighth rank.
type Planes [NumPlanes][8][8]int8

var _pieceOrder = [6]PieceType{Pawn, Knight, Bishop, Rook, Queen, King}

func planeIndex(player Player, pieceType PieceType) int {
	for i, t := range _pieceOrder {
		if t == pieceType {
			return int(player)*6 + i
		}
	}
	return -1
}

func rowCol(index int) (int, int) {
	fileRank := FileRankFromIndex(index)
	return 7 - int(fileRank.Rank), int(fileRank.File)
}

func PlanesFromGame(g *GameState) (Planes, Error) {
	planes := Planes{}

	board := g.Board()
	for index, piece := range board {
		if piece == XX {
			continue
		}
		row, col := rowCol(index)
		planes[planeIndex(piece.Player(), piece.PieceType())][row][col] = 1
	}

	for _, player := range []Player{White, Black} {
		position := g
		if g.Player() != player {
			var err Error
			position, err = g.WithTurnFlipped()
			if !IsNil(err) {
				return planes, err
			}
		}

		for _, move := range position.LegalMoves() {
			row, col := rowCol(move.EndIndex)
			planes[12+int(player)][row][col] = 1
		}
	}

	return planes, NilError
}

// Flatten writes the planes in row-major order into input.
func (p *Planes) Flatten(input []float64) {
	i := 0
	for plane := range p {
		for row := range p[plane] {
			for col := range p[plane][row] {
				input[i] = float64(p[plane][row][col])
				i++
			}
		}
	}
}
