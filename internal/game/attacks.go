package game

import (
	. "github.com/cricklet/negachess/internal/helpers"
)

var knightOffsets = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
var kingOffsets = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
var rookDirs = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
var bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

func pieceAt(board *BoardArray, file int, rank int) Optional[Piece] {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return Empty[Piece]()
	}
	return Some(board[rank*8+file])
}

func slidingAttack(board *BoardArray, file int, rank int, dirs [4][2]int, attackers ...Piece) bool {
	for _, dir := range dirs {
		for f, r := file+dir[0], rank+dir[1]; ; f, r = f+dir[0], r+dir[1] {
			p := pieceAt(board, f, r)
			if p.IsEmpty() {
				break
			}
			if p.Value() == XX {
				continue
			}
			if Contains(attackers, p.Value()) {
				return true
			}
			break
		}
	}
	return false
}

// IsSquareAttacked reports whether any piece belonging to attacker hits index.
func IsSquareAttacked(board *BoardArray, index int, attacker Player) bool {
	location := FileRankFromIndex(index)
	file, rank := int(location.File), int(location.Rank)

	pieces := PieceForPlayer[attacker]

	// pawns attack diagonally forward, so look backwards from the target
	pawnRank := rank - 1
	if attacker == Black {
		pawnRank = rank + 1
	}
	for _, df := range [2]int{-1, 1} {
		if p := pieceAt(board, file+df, pawnRank); p.HasValue() && p.Value() == pieces[Pawn] {
			return true
		}
	}

	for _, offset := range knightOffsets {
		if p := pieceAt(board, file+offset[0], rank+offset[1]); p.HasValue() && p.Value() == pieces[Knight] {
			return true
		}
	}

	for _, offset := range kingOffsets {
		if p := pieceAt(board, file+offset[0], rank+offset[1]); p.HasValue() && p.Value() == pieces[King] {
			return true
		}
	}

	return slidingAttack(board, file, rank, rookDirs, pieces[Rook], pieces[Queen]) ||
		slidingAttack(board, file, rank, bishopDirs, pieces[Bishop], pieces[Queen])
}

// KingInCheck reports whether player's king is attacked. Boards without a
// king for player are never in check.
func KingInCheck(board *BoardArray, player Player) bool {
	king := PieceForPlayer[player][King]
	for i, piece := range board {
		if piece == king {
			return IsSquareAttacked(board, i, player.Other())
		}
	}
	return false
}
