package validate

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/unicode/norm"
)

// Similarity returns the difflib matching ratio of a and b, compared rune by
// rune after NFKC normalization and case folding. 1.0 means identical.
func Similarity(a, b string) float64 {
	ra, rb := runeSeq(a), runeSeq(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	return difflib.NewMatcher(ra, rb).Ratio()
}

// SimilarTags returns the vocabulary entries whose similarity to tag is at
// least threshold, excluding tag itself, in vocabulary order.
func SimilarTags(tag string, vocab []string, threshold float64) []string {
	var out []string
	for _, existing := range vocab {
		if existing == tag {
			continue
		}
		if Similarity(tag, existing) >= threshold {
			out = append(out, existing)
		}
	}
	return out
}

func runeSeq(s string) []string {
	s = strings.ToLower(norm.NFKC.String(s))
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
