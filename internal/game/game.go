package game

import (
	"strings"

	"github.com/notnil/chess"

	. "github.com/cricklet/negachess/internal/bitboards"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/zobrist"
)

type Move struct {
	StartIndex     int
	EndIndex       int
	PromotionPiece Optional[PieceType]
}

// NullMove is printed as "0000" and is never legal.
var NullMove = Move{}

func (m Move) IsNull() bool {
	return m == NullMove
}

func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	s := StringFromBoardIndex(m.StartIndex) + StringFromBoardIndex(m.EndIndex)
	if m.PromotionPiece.HasValue() {
		s += m.PromotionPiece.Value().String()
	}
	return s
}

// ParseMove reads coordinate notation ("e2e4", "e7e8q") without checking
// legality. Use GameState.MoveFromString for validated input.
func ParseMove(s string) (Move, Error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 && len(s) != 5 {
		return NullMove, Errorf("invalid move '%v'", s)
	}
	start, err := BoardIndexFromString(s[0:2])
	if !IsNil(err) {
		return NullMove, Errorf("invalid move '%v': %v", s, err)
	}
	end, err := BoardIndexFromString(s[2:4])
	if !IsNil(err) {
		return NullMove, Errorf("invalid move '%v': %v", s, err)
	}
	move := Move{StartIndex: start, EndIndex: end}
	if len(s) == 5 {
		promotion := PieceTypeFromString(strings.ToLower(s[4:5]))
		if promotion != Queen && promotion != Rook && promotion != Bishop && promotion != Knight {
			return NullMove, Errorf("invalid promotion in move '%v'", s)
		}
		move.PromotionPiece = Some(promotion)
	}
	return move, NilError
}

func pieceTypeFromChess(t chess.PieceType) PieceType {
	switch t {
	case chess.King:
		return King
	case chess.Queen:
		return Queen
	case chess.Rook:
		return Rook
	case chess.Bishop:
		return Bishop
	case chess.Knight:
		return Knight
	case chess.Pawn:
		return Pawn
	}
	return InvalidPiece
}

func playerFromChess(c chess.Color) Player {
	if c == chess.Black {
		return Black
	}
	return White
}

func moveFromChess(m *chess.Move) Move {
	move := Move{StartIndex: int(m.S1()), EndIndex: int(m.S2())}
	if m.Promo() != chess.NoPieceType {
		move.PromotionPiece = Some(pieceTypeFromChess(m.Promo()))
	}
	return move
}

type stackEntry struct {
	position *chess.Position
	// move that produced this position; NullMove for the root
	move Move
}

// GameState is a position plus the stack of positions that led to it. Moves
// are pushed with PerformMove and popped with UndoUpdate, strictly LIFO.
type GameState struct {
	stack []stackEntry
}

// BoardUpdate records a single PerformMove so it can be undone.
type BoardUpdate struct {
	Move  Move
	depth int
}

func NewGameState() *GameState {
	g, err := GamestateFromFenString(StartFen)
	if !IsNil(err) {
		panic(err)
	}
	return g
}

func GamestateFromFenString(s string) (*GameState, Error) {
	fen, err := NormalizeFen(s)
	if !IsNil(err) {
		return nil, err
	}
	option, chessErr := chess.FEN(fen)
	if chessErr != nil {
		return nil, Errorf("invalid fen '%v': %v", s, chessErr)
	}
	position := chess.NewGame(option).Position()
	return &GameState{stack: []stackEntry{{position: position, move: NullMove}}}, NilError
}

func (g *GameState) top() *stackEntry {
	return &g.stack[len(g.stack)-1]
}

func (g *GameState) Position() *chess.Position {
	return g.top().position
}

// Clone shares the immutable positions but not the stack, so the clone can
// push and pop independently (e.g. on another goroutine).
func (g *GameState) Clone() *GameState {
	stack := make([]stackEntry, len(g.stack))
	copy(stack, g.stack)
	return &GameState{stack: stack}
}

func (g *GameState) Player() Player {
	return playerFromChess(g.Position().Turn())
}

func (g *GameState) Enemy() Player {
	return g.Player().Other()
}

func (g *GameState) Board() BoardArray {
	result := BoardArray{}
	board := g.Position().Board()
	for i := 0; i < 64; i++ {
		piece := board.Piece(chess.Square(i))
		if piece == chess.NoPiece {
			continue
		}
		result[i] = PieceForPlayer[playerFromChess(piece.Color())][pieceTypeFromChess(piece.Type())]
	}
	return result
}

func (g *GameState) CreateBitboards() Bitboards {
	board := g.Board()
	return BitboardsFromBoard(&board)
}

func (g *GameState) FenString() string {
	return g.Position().String()
}

func (g *GameState) FenFields() FenFields {
	fields, err := ParseFen(g.FenString())
	if !IsNil(err) {
		panic(err)
	}
	return fields
}

func (g *GameState) ZobristHash() uint64 {
	fields := g.FenFields()
	return zobrist.HashForBoardPosition(
		&fields.Board, fields.Player, &fields.PlayerAndCastlingSideAllowed, fields.EnPassantTarget)
}

func (g *GameState) LegalMoves() []Move {
	return MapSlice(g.Position().ValidMoves(), moveFromChess)
}

func isChessCapture(m *chess.Move) bool {
	return m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant)
}

// CaptureMoves lists legal moves that take a piece, en passant included.
func (g *GameState) CaptureMoves() []Move {
	return MapSlice(FilterSlice(g.Position().ValidMoves(), isChessCapture), moveFromChess)
}

func (g *GameState) IsCapture(move Move) bool {
	m := g.chessMove(move)
	return m.HasValue() && isChessCapture(m.Value())
}

func (g *GameState) IsLegal(move Move) bool {
	return g.chessMove(move).HasValue()
}

func (g *GameState) chessMove(move Move) Optional[*chess.Move] {
	for _, m := range g.Position().ValidMoves() {
		if moveFromChess(m) == move {
			return Some(m)
		}
	}
	return Empty[*chess.Move]()
}

// MoveFromString parses coordinate notation and rejects illegal moves.
func (g *GameState) MoveFromString(s string) (Move, Error) {
	move, err := ParseMove(s)
	if !IsNil(err) {
		return NullMove, err
	}
	if !g.IsLegal(move) {
		return NullMove, Errorf("illegal move '%v' in '%v'", s, g.FenString())
	}
	return move, NilError
}

// SanForMove renders a legal move in standard algebraic notation.
func (g *GameState) SanForMove(move Move) (string, Error) {
	m := g.chessMove(move)
	if m.IsEmpty() {
		return "", Errorf("illegal move '%v' in '%v'", move, g.FenString())
	}
	return chess.AlgebraicNotation{}.Encode(g.Position(), m.Value()), NilError
}

var _sanDecorations = strings.NewReplacer("+", "", "#", "", "!", "", "?", "")

// MoveFromSan finds the legal move written as s in standard algebraic
// notation. Check marks and annotations are ignored.
func (g *GameState) MoveFromSan(s string) (Move, Error) {
	target := _sanDecorations.Replace(strings.TrimSpace(s))
	for _, m := range g.Position().ValidMoves() {
		san := chess.AlgebraicNotation{}.Encode(g.Position(), m)
		if _sanDecorations.Replace(san) == target {
			return moveFromChess(m), NilError
		}
	}
	return NullMove, Errorf("no legal move '%v' in '%v'", s, g.FenString())
}

func (g *GameState) PerformMove(move Move, update *BoardUpdate) Error {
	m := g.chessMove(move)
	if m.IsEmpty() {
		return Errorf("illegal move '%v' in '%v'", move, g.FenString())
	}
	update.Move = move
	update.depth = len(g.stack)
	g.stack = append(g.stack, stackEntry{
		position: g.Position().Update(m.Value()),
		move:     move,
	})
	return NilError
}

func (g *GameState) UndoUpdate(update *BoardUpdate) Error {
	if len(g.stack) <= 1 {
		return Errorf("nothing to undo for '%v'", update.Move)
	}
	if update.depth != len(g.stack)-1 || g.top().move != update.Move {
		return Errorf("undo of '%v' out of order, last move was '%v'", update.Move, g.top().move)
	}
	g.stack = g.stack[:len(g.stack)-1]
	return NilError
}

// MoveHistory lists the moves performed since the root position.
func (g *GameState) MoveHistory() []Move {
	return MapSlice(g.stack[1:], func(e stackEntry) Move {
		return e.move
	})
}

func (g *GameState) NoValidMoves() bool {
	return len(g.Position().ValidMoves()) == 0
}

// IsCheck is computed from the board since the rules library keeps the check
// flag of a position private.
func (g *GameState) IsCheck() bool {
	board := g.Board()
	return KingInCheck(&board, g.Player())
}

func (g *GameState) IsCheckmate() bool {
	return g.Position().Status() == chess.Checkmate
}

func (g *GameState) IsStalemate() bool {
	return g.Position().Status() == chess.Stalemate
}

// IsInsufficientMaterial is true when neither side can mate: bare kings, a
// single minor piece, or only bishops that all stand on one square color.
func (g *GameState) IsInsufficientMaterial() bool {
	b := g.CreateBitboards()

	minors := Bitboard(0)
	bishops := Bitboard(0)
	for player := White; player <= Black; player++ {
		pieces := b.Players[player].Pieces
		if pieces[Pawn]|pieces[Rook]|pieces[Queen] != 0 {
			return false
		}
		minors |= pieces[Knight] | pieces[Bishop]
		bishops |= pieces[Bishop]
	}

	if OnesCount(minors) <= 1 {
		return true
	}
	if minors != bishops {
		return false
	}
	return bishops&LightSquares == 0 || bishops&^LightSquares == 0
}

func (g *GameState) HalfMoveClock() int {
	return g.FenFields().HalfMoveClock
}

func (g *GameState) IsFiftyMoveDraw() bool {
	return g.HalfMoveClock() >= 100
}

// RepetitionCount is how many times the current position occurs in the
// stack, itself included.
func (g *GameState) RepetitionCount() int {
	current := g.ZobristHash()
	count := 0
	scratch := &GameState{}
	for i := range g.stack {
		scratch.stack = g.stack[i : i+1]
		if scratch.ZobristHash() == current {
			count++
		}
	}
	return count
}

func (g *GameState) IsThreefoldRepetition() bool {
	return g.RepetitionCount() >= 3
}

func (g *GameState) IsGameOver() bool {
	return g.NoValidMoves() ||
		g.IsInsufficientMaterial() ||
		g.IsFiftyMoveDraw() ||
		g.IsThreefoldRepetition()
}

// WithTurnFlipped returns the same placement with the other side to move and
// no en passant target.
func (g *GameState) WithTurnFlipped() (*GameState, Error) {
	fields := g.FenFields()
	fields.Player = fields.Player.Other()
	fields.EnPassantTarget = Empty[FileRank]()
	return GamestateFromFenString(fields.String())
}

func (g *GameState) String() string {
	return g.FenString()
}

func (g *GameState) Unicode() string {
	return g.Board().Unicode()
}
