package text

import (
	"math/rand/v2"
	"regexp"
	"strings"
)

// MinParagraphsForShuffle is the smallest numbered-paragraph count for which
// a shuffled variant is produced. First and last paragraphs stay in place,
// so at least two paragraphs must be movable.
const MinParagraphsForShuffle = 4

var numberedParagraph = regexp.MustCompile(`\s\d\.\s`)

// SplitParagraphs splits an ementa on its " 1. ", " 2. " paragraph markers.
func SplitParagraphs(s string) []string {
	return numberedParagraph.Split(s, -1)
}

// ShuffleParagraphs returns s with its middle paragraphs permuted by rng.
// ok is false when s has fewer than MinParagraphsForShuffle paragraphs.
func ShuffleParagraphs(s string, rng *rand.Rand) (shuffled string, ok bool) {
	paragraphs := SplitParagraphs(s)
	if len(paragraphs) < MinParagraphsForShuffle {
		return "", false
	}
	middle := paragraphs[1 : len(paragraphs)-1]
	rng.Shuffle(len(middle), func(i, j int) {
		middle[i], middle[j] = middle[j], middle[i]
	})
	return strings.Join(paragraphs, " "), true
}
