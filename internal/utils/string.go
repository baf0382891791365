package utils

import (
	"context"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// FindClosestString returns the candidate with the smallest edit distance to $s, candidates at a distance
// greater than $maxDifferences are ignored.
func FindClosestString(ctx context.Context, candidates []string, s string, maxDifferences int) (closest string, distance int, ok bool) {
	distance = maxDifferences + 1
	target := []rune(s)

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return "", 0, false
		}

		d := levenshtein.DistanceForStrings([]rune(candidate), target, levenshtein.DefaultOptions)
		if d < distance {
			closest = candidate
			distance = d
			ok = true
		}
	}

	if !ok {
		return "", 0, false
	}
	return
}
