package mlm

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pbaille/legalsts/internal/domain"
	"github.com/pbaille/legalsts/internal/text"
)

// bucketLimits are the upper token bounds of the histogram; anything longer
// falls into the final "more" bucket.
var bucketLimits = []int{32, 64, 128, 256, 384, 512, 768, 1024}

// Bucket is one histogram bar.
type Bucket struct {
	Label   string  `json:"label"`
	Limit   int     `json:"limit"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Histogram groups sentences by token count. Percentages are rounded to two
// decimals over all sentences, blank ones included.
func Histogram(sentences []string) []Bucket {
	buckets := make([]Bucket, len(bucketLimits)+1)
	for i, limit := range bucketLimits {
		buckets[i] = Bucket{Label: strconv.Itoa(limit), Limit: limit}
	}
	buckets[len(bucketLimits)] = Bucket{Label: "more", Limit: -1}

	for _, s := range sentences {
		if n := text.Tokens(s); n > 0 {
			buckets[bucketFor(n)].Count++
		}
	}
	if total := len(sentences); total > 0 {
		for i := range buckets {
			pct := float64(buckets[i].Count) * 100 / float64(total)
			buckets[i].Percent = math.Round(pct*100) / 100
		}
	}
	return buckets
}

func bucketFor(tokens int) int {
	for i, limit := range bucketLimits {
		if tokens <= limit {
			return i
		}
	}
	return len(bucketLimits)
}

// UniqueTexts returns the distinct opinion texts in first-seen order.
func UniqueTexts(opinions []domain.Opinion) []string {
	seen := make(map[string]bool, len(opinions))
	var out []string
	for _, o := range opinions {
		if o.Text == "" || seen[o.Text] {
			continue
		}
		seen[o.Text] = true
		out = append(out, o.Text)
	}
	return out
}

// CorpusLines reads the non-blank lines of a merged corpus. A missing file
// yields no lines.
func CorpusLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return lines, nil
}
