package text

import (
	"regexp"
	"strings"
)

var (
	enDashClause    = regexp.MustCompile(`\s–\s`)
	ementaParagraph = regexp.MustCompile(`\.\s\d\.\s`)
)

// SplitEmenta breaks an ementa into its numbered items. Dash separated
// headings become sentences of their own.
func SplitEmenta(s string) []string {
	s = whitespaceRuns.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "E M E N T A", "EMENTA")
	s = enDashClause.ReplaceAllString(s, ". ")
	var out []string
	for _, part := range ementaParagraph.Split(s, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Abbreviations common in Brazilian legal writing that do not end a sentence.
var abbreviations = regexp.MustCompile(`(?i)\b(art|arts|inc|incs|al|n|nº|núm|min|rel|des|dr|dra|sr|sra|exmo|exma|p|pp|fl|fls|cf|ex|etc|v|vol|ed|ltda|proc|rec|res|dec|s\.a)\.$`)

// SplitSentences splits text at sentence-ending punctuation followed by a
// blank or end of text, skipping known abbreviations.
func SplitSentences(s string) []string {
	if s == "" {
		return nil
	}

	var sentences []string
	start := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '.' && ch != '?' && ch != '!' {
			continue
		}
		isEnd := i == len(s)-1 || s[i+1] == ' ' || s[i+1] == '\n'
		if !isEnd {
			continue
		}
		if ch == '.' && abbreviations.MatchString(s[start:i+1]) {
			continue
		}
		if sentence := strings.TrimSpace(s[start : i+1]); sentence != "" {
			sentences = append(sentences, sentence)
		}
		for i+1 < len(s) && (s[i+1] == ' ' || s[i+1] == '\n') {
			i++
		}
		start = i + 1
	}

	if start < len(s) {
		if rest := strings.TrimSpace(s[start:]); rest != "" {
			sentences = append(sentences, rest)
		}
	}
	return sentences
}
