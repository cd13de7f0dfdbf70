package search

import (
	"fmt"

	"github.com/cricklet/negachess/internal/evaluation"
)

// Inf is larger than any score the evaluator or the root window produces.
const Inf = 999999

// RootBound is the half-width of the window used at the root.
const RootBound = 100000

// Scores at least this far from zero are forced mates.
const MateThreshold = evaluation.MateScore - 999

func IsMate(score int) bool {
	return score >= MateThreshold || score <= -MateThreshold
}

// MatePlies is the number of plies to the mate encoded in score.
func MatePlies(score int) int {
	if score < 0 {
		return evaluation.MateScore + score
	}
	return evaluation.MateScore - score
}

func ScoreString(score int) string {
	if score >= MateThreshold {
		return fmt.Sprint("mate+", MatePlies(score))
	}
	if score <= -MateThreshold {
		return fmt.Sprint("mate-", MatePlies(score))
	}
	return fmt.Sprint(score)
}

// UciScore renders a score for an "info" line, with mates in moves rather
// than plies.
func UciScore(score int) string {
	if IsMate(score) {
		moves := (MatePlies(score) + 1) / 2
		if score < 0 {
			moves = -moves
		}
		return fmt.Sprint("mate ", moves)
	}
	return fmt.Sprint("cp ", score)
}
