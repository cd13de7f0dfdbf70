package search

import (
	"fmt"
	"strings"

	. "github.com/cricklet/negachess/internal/helpers"
)

type debugSearchLine struct {
	DebugString string
	Depth       int
	Alpha       int
	Beta        int
	Score       Optional[int]
}

// debugSearchTree records every move the searcher visits so a small search
// can be printed as an indented tree.
type debugSearchTree struct {
	CurrentDepth int
	Result       []debugSearchLine
}

func (s *debugSearchTree) MovePush(move string, alpha int, beta int) {
	s.Result = append(s.Result, debugSearchLine{
		DebugString: "> " + move,
		Depth:       s.CurrentDepth,
		Alpha:       alpha,
		Beta:        beta,
	})
	s.CurrentDepth += 1
}

func (s *debugSearchTree) MovePop(move string, alpha int, beta int, result int) {
	s.CurrentDepth -= 1
	s.Result = append(s.Result, debugSearchLine{
		DebugString: "$ " + move,
		Depth:       s.CurrentDepth,
		Alpha:       alpha,
		Beta:        beta,
		Score:       Some(result),
	})
}

// DebugString prints the finished lines shallower than depth, children
// before their parents.
func (s *debugSearchTree) DebugString(depth int) string {
	result := ""
	for _, line := range s.Result {
		if line.Depth >= depth || line.Score.IsEmpty() {
			continue
		}
		result += fmt.Sprintf("%v%v (%v %v) %v\n",
			strings.Repeat(" ", line.Depth),
			line.DebugString,
			line.Alpha,
			line.Beta,
			ScoreString(line.Score.Value()))
	}
	return result
}
