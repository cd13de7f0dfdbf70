package accuracy

import (
	"bufio"
	"os"
	"strings"

	. "github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
)

// Epd is one line of a test suite: a position plus the moves a strong
// engine should play ("bm") or must not play ("am"), in UCI notation.
type Epd struct {
	Line string
	Fen  string
	Id   string

	BestMoves  []string
	AvoidMoves []string
}

// EpdToFen keeps the four position fields. The move clocks are not part of
// an EPD record.
func EpdToFen(epd string) string {
	parts := strings.Fields(epd)
	if len(parts) > 4 {
		parts = parts[0:4]
	}
	return strings.Join(parts, " ")
}

func operations(epd string) []string {
	parts := strings.Fields(epd)
	if len(parts) <= 4 {
		return nil
	}
	return strings.Split(strings.Join(parts[4:], " "), ";")
}

func operand(opcode string, epd string) Optional[string] {
	for _, op := range operations(epd) {
		op = strings.TrimSpace(op)
		if strings.HasPrefix(op, opcode+" ") {
			return Some(strings.TrimSpace(op[len(opcode):]))
		}
	}
	return Empty[string]()
}

// MovesFromEpd decodes the SAN operands of opcode into UCI moves. A missing
// opcode yields no moves.
func MovesFromEpd(opcode string, epd string, g *GameState) ([]string, Error) {
	operandStr := operand(opcode, epd)
	if operandStr.IsEmpty() {
		return []string{}, NilError
	}

	sans := strings.FieldsFunc(operandStr.Value(), func(r rune) bool {
		return r == ' ' || r == ','
	})

	moves := []string{}
	for _, san := range sans {
		move, err := g.MoveFromSan(san)
		if !IsNil(err) {
			return []string{}, err
		}
		moves = append(moves, move.String())
	}
	return moves, NilError
}

func ParseEpd(line string) (*Epd, Error) {
	line = strings.TrimSpace(line)
	fen := EpdToFen(line)
	g, err := GamestateFromFenString(fen)
	if !IsNil(err) {
		return nil, Errorf("epd '%v': %w", line, err)
	}

	bestMoves, err := MovesFromEpd("bm", line, g)
	if !IsNil(err) {
		return nil, err
	}
	avoidMoves, err := MovesFromEpd("am", line, g)
	if !IsNil(err) {
		return nil, err
	}
	if len(bestMoves) == 0 && len(avoidMoves) == 0 {
		return nil, Errorf("no bm or am in epd: %v", line)
	}

	return &Epd{
		Line:       line,
		Fen:        g.FenString(),
		Id:         strings.Trim(operand("id", line).ValueOr(""), "\""),
		BestMoves:  bestMoves,
		AvoidMoves: avoidMoves,
	}, NilError
}

// LoadEpd parses every non-empty line of the file at path. Lines starting
// with '#' are comments.
func LoadEpd(path string) ([]*Epd, Error) {
	file, err := WrapReturn(os.Open(path))
	if !IsNil(err) {
		return nil, err
	}
	defer file.Close()

	results := []*Epd{}

	fscanner := bufio.NewScanner(file)
	for fscanner.Scan() {
		line := strings.TrimSpace(fscanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}

		epd, err := ParseEpd(line)
		if !IsNil(err) {
			return nil, err
		}
		results = append(results, epd)
	}
	if scanErr := fscanner.Err(); scanErr != nil {
		return nil, Wrap(scanErr)
	}

	return results, NilError
}
