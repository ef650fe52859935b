package services

import (
	"math"
	"strings"
)

// Ratio returns the indel similarity of a and b on a 0-100 scale:
// 100 * (1 - indelDistance / (len(a)+len(b))), rounded half to even.
// Lengths are in runes.
// Either string being empty yields 0.
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	lcs := longestCommonSubsequence(ra, rb)
	return int(math.RoundToEven(100 * float64(2*lcs) / float64(total)))
}

// longestCommonSubsequence uses two rolling rows, so memory is O(len(b)).
func longestCommonSubsequence(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// Score tiers. An alias hit must beat an exact title, and an exact title must
// beat the best possible fuzzy score (100 + substringBonus).
const (
	scoreAlias     = 300
	scoreExact     = 200
	substringBonus = 70
)

func fuzzyScore(query, title string) int {
	score := Ratio(query, title)
	if strings.Contains(title, query) {
		score += substringBonus
	}
	return score
}
