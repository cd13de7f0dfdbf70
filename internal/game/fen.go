package game

import (
	"fmt"
	"strconv"
	"strings"

	. "github.com/cricklet/negachess/internal/helpers"
)

const StartFen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// FenFields is a decoded FEN record. The rules engine owns move generation;
// these fields feed hashing, clocks and position edits such as flipping the
// side to move.
type FenFields struct {
	Board                        BoardArray
	Player                       Player
	PlayerAndCastlingSideAllowed [2][2]bool
	EnPassantTarget              Optional[FileRank]
	HalfMoveClock                int
	FullMoveClock                int
}

func FenStringForPlayer(p Player) string {
	if p == White {
		return "w"
	}
	return "b"
}

var fenStringForCastling = [2][2]string{
	{"K", "Q"},
	{"k", "q"},
}

func fenStringForCastlingAllowed(playerAndCastlingSideAllowed [2][2]bool) string {
	s := ""
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if playerAndCastlingSideAllowed[i][j] {
				s += fenStringForCastling[i][j]
			}
		}
	}
	if len(s) == 0 {
		s += "-"
	}
	return s
}

func fenStringForEnPassant(enPassant Optional[FileRank]) string {
	if enPassant.IsEmpty() {
		return "-"
	}
	return enPassant.Value().String()
}

func FenStringForBoard(b BoardArray) string {
	s := ""
	for rank := 7; rank >= 0; rank-- {
		numSpaces := 0
		for file := 0; file < 8; file++ {
			piece := b[IndexFromFileRank(FileRank{File: File(file), Rank: Rank(rank)})]
			if piece == XX {
				numSpaces++
				continue
			}
			if numSpaces > 0 {
				s += fmt.Sprint(numSpaces)
				numSpaces = 0
			}
			s += piece.String()
		}
		if numSpaces > 0 {
			s += fmt.Sprint(numSpaces)
		}
		if rank != 0 {
			s += "/"
		}
	}
	return s
}

func (f FenFields) String() string {
	return fmt.Sprintf("%v %v %v %v %v %v",
		FenStringForBoard(f.Board),
		FenStringForPlayer(f.Player),
		fenStringForCastlingAllowed(f.PlayerAndCastlingSideAllowed),
		fenStringForEnPassant(f.EnPassantTarget),
		f.HalfMoveClock,
		f.FullMoveClock)
}

// NormalizeFen expands "startpos" and fills in missing trailing fields.
func NormalizeFen(s string) (string, Error) {
	if strings.TrimSpace(s) == "startpos" {
		return StartFen, NilError
	}
	fields, err := ParseFen(s)
	if !IsNil(err) {
		return "", err
	}
	return fields.String(), NilError
}

func ParseFen(s string) (FenFields, Error) {
	result := FenFields{}

	ss := strings.Fields(s)
	if len(ss) != 6 && len(ss) != 4 && len(ss) != 2 {
		return result, Errorf("wrong num %v of fields in str '%v'", len(ss), s)
	}

	boardStr, playerString := ss[0], ss[1]

	var rankIndex = 7
	var fileIndex = 0
	for _, c := range boardStr {
		if c == '/' {
			if fileIndex != 8 {
				return result, Errorf("not enough squares in rank, '%v'", s)
			}
			rankIndex--
			fileIndex = 0
		} else if c >= '1' && c <= '8' {
			fileIndex += int(c - '0')
		} else if p, err := PieceFromString(c); IsNil(err) {
			if rankIndex < 0 || fileIndex > 7 {
				return result, Errorf("too many squares in '%v'", s)
			}
			// 0th index refers to a1
			result.Board[IndexFromFileRank(FileRank{File: File(fileIndex), Rank: Rank(rankIndex)})] = p
			fileIndex++
		} else {
			return result, Errorf("unknown character '%v' in '%v'", string(c), s)
		}
	}
	if rankIndex != 0 || fileIndex != 8 {
		return result, Errorf("wrong number of squares in '%v'", s)
	}

	if player, err := PlayerFromString(playerString); IsNil(err) {
		result.Player = player
	} else {
		return result, Errorf("invalid player '%v' in '%v'", playerString, s)
	}

	castlingRightsString, enPassantTargetString := "-", "-"
	if len(ss) >= 4 {
		castlingRightsString, enPassantTargetString = ss[2], ss[3]
	}

	halfMoveClockString, fullMoveClockString := "0", "1"
	if len(ss) == 6 {
		halfMoveClockString, fullMoveClockString = ss[4], ss[5]
	}

	for _, c := range castlingRightsString {
		switch c {
		case '-':
			continue
		case 'K':
			result.PlayerAndCastlingSideAllowed[White][Kingside] = true
		case 'Q':
			result.PlayerAndCastlingSideAllowed[White][Queenside] = true
		case 'k':
			result.PlayerAndCastlingSideAllowed[Black][Kingside] = true
		case 'q':
			result.PlayerAndCastlingSideAllowed[Black][Queenside] = true
		default:
			return result, Errorf("invalid castling rights '%v' in '%v'", castlingRightsString, s)
		}
	}

	if enPassantTargetString != "-" {
		v, err := FileRankFromString(enPassantTargetString)
		if !IsNil(err) {
			return result, Errorf("invalid en-passant target '%v' in '%v'", enPassantTargetString, s)
		}
		result.EnPassantTarget = Some(v)
	}

	if v, err := strconv.Atoi(halfMoveClockString); err == nil {
		result.HalfMoveClock = v
	} else {
		return result, Errorf("invalid half move clock '%v' in '%v'", halfMoveClockString, s)
	}

	if v, err := strconv.Atoi(fullMoveClockString); err == nil {
		result.FullMoveClock = v
	} else {
		return result, Errorf("invalid full move clock '%v' in '%v'", fullMoveClockString, s)
	}

	return result, NilError
}
