// Package fuzzy implements the similarity scores used to match transaction
// descriptions against category keywords. Scores are on a 0-100 scale.
package fuzzy

// Scorer compares two strings and returns a similarity in the range [0, 100].
type Scorer func(a, b string) float64

// Match is the best-scoring choice returned by ExtractOne.
type Match struct {
	Choice string
	Score  float64
	Index  int
}

// Ratio returns the normalized InDel similarity of a and b, computed on runes.
// Two empty strings are identical (100).
func Ratio(a, b string) float64 {
	return ratio([]rune(a), []rune(b))
}

// PartialRatio scores how well the shorter string matches the best aligned
// fragment of the longer one. A needle fully contained in the haystack scores 100.
// One empty string scores 0, two empty strings score 100.
//
// Every alignment is scored with a sliding window. For needles longer than 64
// runes this can score higher than implementations that only align on
// matching blocks.
func PartialRatio(a, b string) float64 {
	needle, haystack := []rune(a), []rune(b)
	if len(needle) > len(haystack) {
		needle, haystack = haystack, needle
	}

	if len(needle) == 0 {
		if len(haystack) == 0 {
			return 100
		}
		return 0
	}

	score := partialRatio(needle, haystack)

	// Equal lengths have no natural needle, so score both directions.
	if score < 100 && len(needle) == len(haystack) {
		if reverse := partialRatio(haystack, needle); reverse > score {
			score = reverse
		}
	}

	return score
}

// ExtractOne returns the choice that scores highest against query.
// Ties resolve to the lowest index. The boolean is false when choices is empty.
func ExtractOne(query string, choices []string, scorer Scorer) (Match, bool) {
	if len(choices) == 0 {
		return Match{}, false
	}

	best := Match{Index: -1, Score: -1}
	for i, choice := range choices {
		if score := scorer(query, choice); score > best.Score {
			best = Match{Choice: choice, Score: score, Index: i}
		}
	}

	return best, true
}

// partialRatio slides needle across haystack: first over the prefixes shorter
// than the needle, then every full-length window, then the trailing suffixes.
// Windows whose boundary rune never occurs in the needle cannot improve the
// score and are skipped.
func partialRatio(needle, haystack []rune) float64 {
	inNeedle := make(map[rune]struct{}, len(needle))
	for _, r := range needle {
		inNeedle[r] = struct{}{}
	}
	has := func(r rune) bool {
		_, ok := inNeedle[r]
		return ok
	}

	n, h := len(needle), len(haystack)
	best := 0.0

	for i := 1; i < n; i++ {
		if !has(haystack[i-1]) {
			continue
		}
		if score := ratio(needle, haystack[:i]); score > best {
			best = score
			if best == 100 {
				return best
			}
		}
	}

	for i := 0; i < h-n; i++ {
		if !has(haystack[i+n-1]) {
			continue
		}
		if score := ratio(needle, haystack[i:i+n]); score > best {
			best = score
			if best == 100 {
				return best
			}
		}
	}

	for i := h - n; i < h; i++ {
		if !has(haystack[i]) {
			continue
		}
		if score := ratio(needle, haystack[i:]); score > best {
			best = score
			if best == 100 {
				return best
			}
		}
	}

	return best
}

func ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	return 200 * float64(lcsLength(a, b)) / float64(total)
}

// lcsLength returns the length of the longest common subsequence of a and b.
func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}

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
