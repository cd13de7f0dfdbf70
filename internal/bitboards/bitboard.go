package bitboards

import (
	"fmt"
	"math/bits"
	"strings"

	. "github.com/cricklet/negachess/internal/helpers"
)

type Bitboard uint64

type PlayerBitboards struct {
	Occupied Bitboard
	Pieces   [6]Bitboard // indexed via PieceType
}

type Bitboards struct {
	Occupied Bitboard
	Players  [2]PlayerBitboards
}

var SingleBitboards [64]Bitboard = func() [64]Bitboard {
	result := [64]Bitboard{}
	for i := 0; i < 64; i++ {
		result[i] = Bitboard(1) << i
	}
	return result
}()

func SingleBitboard(index int) Bitboard {
	return SingleBitboards[index]
}

// LightSquares has a bit set for every light square (b1, a2, ...).
var LightSquares Bitboard = func() Bitboard {
	result := Bitboard(0)
	for i := 0; i < 64; i++ {
		location := FileRankFromIndex(i)
		if (int(location.File)+int(location.Rank))%2 == 1 {
			result |= SingleBitboard(i)
		}
	}
	return result
}()

func OnesCount(b Bitboard) int {
	return bits.OnesCount64(uint64(b))
}

func (b Bitboard) EachIndexOfOneCallback(callback func(int)) {
	temp := b
	for temp != 0 {
		ls1 := temp.LeastSignificantOne()
		callback(bits.OnesCount64(uint64(ls1 - 1)))
		temp = temp ^ ls1
	}
}

func (b Bitboard) LeastSignificantOne() Bitboard {
	return b & -b
}

func (b Bitboard) FirstIndexOfOne() int {
	ls1 := b.LeastSignificantOne()
	return bits.OnesCount64(uint64(ls1 - 1))
}

func (b Bitboard) String() string {
	ranks := [8]string{}
	for rank := 0; rank < 8; rank++ {
		r := uint8(b >> (rank * 8))
		// print a-file first
		ranks[7-rank] = fmt.Sprintf("%08b", bits.Reverse8(r))
	}
	return strings.Join(ranks[0:], "\n")
}

// BitboardFromStrings reads a visual board: rank 8 first, a-file leftmost.
func BitboardFromStrings(strings [8]string) Bitboard {
	b := Bitboard(0)
	for inverseRank, line := range strings {
		for file, c := range line {
			if c == '1' {
				index := IndexFromFileRank(FileRank{File: File(file), Rank: Rank(7 - inverseRank)})
				b |= SingleBitboard(index)
			}
		}
	}
	return b
}

func (b *Bitboards) SetSquare(index int, piece Piece) {
	player := piece.Player()
	pieceType := piece.PieceType()
	oneBitboard := SingleBitboard(index)

	b.Occupied |= oneBitboard
	b.Players[player].Occupied |= oneBitboard
	b.Players[player].Pieces[pieceType] |= oneBitboard
}

func BitboardsFromBoard(board *BoardArray) Bitboards {
	result := Bitboards{}
	for i, piece := range board {
		if piece == XX {
			continue
		}
		result.SetSquare(i, piece)
	}
	return result
}
