package zobrist

import (
	"math/rand"

	. "github.com/cricklet/negachess/internal/helpers"
)

var ZobristPieceAtSquare [13] /*includes empty*/ [64]uint64
var ZobristSideToMove uint64
var ZobristCastlingRights [4]uint64
var ZobristEnPassant [8]uint64

func init() {
	r := rand.New(rand.NewSource(32879419))
	ZobristSideToMove = r.Uint64()
	for i := 0; i < 4; i++ {
		ZobristCastlingRights[i] = r.Uint64()
	}
	for i := 0; i < 8; i++ {
		ZobristEnPassant[i] = r.Uint64()
	}
	for piece := 1; /* skip empty */ piece < 13; piece++ {
		for boardIndex := 0; boardIndex < 64; boardIndex++ {
			ZobristPieceAtSquare[piece][boardIndex] = r.Uint64()
		}
	}
}

// HashForBoardPosition identifies a position for repetition checks and book
// lookups. Move clocks are deliberately not part of the key.
func HashForBoardPosition(
	board *BoardArray,
	player Player,
	playerAndCastlingSideAllowed *[2][2]bool,
	enPassantTarget Optional[FileRank],
) uint64 {
	hash := uint64(0)
	for boardIndex := 0; boardIndex < 64; boardIndex++ {
		hash ^= ZobristPieceAtSquare[board[boardIndex]][boardIndex]
	}
	if player == Black {
		hash ^= ZobristSideToMove
	}
	for player := 0; player < 2; player++ {
		for side := 0; side < 2; side++ {
			if playerAndCastlingSideAllowed[player][side] {
				hash ^= ZobristCastlingRights[2*player+side]
			}
		}
	}
	if enPassantTarget.HasValue() {
		hash ^= ZobristEnPassant[enPassantTarget.Value().File]
	}
	return hash
}
