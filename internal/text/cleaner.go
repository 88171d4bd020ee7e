package text

import (
	"regexp"
	"strings"
)

var (
	undesiredChars = regexp.MustCompile(`[”“●_\n\t'"]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
	leadingDot     = regexp.MustCompile(`^\.\s`)
	citation       = regexp.MustCompile(`[\[(][^\])]*[\])]`)
	spaceBeforeEnd = regexp.MustCompile(`\s\.$`)
	trailingNumber = regexp.MustCompile(`\.\d+$`)
)

// CleanParagraphs prepares extracted paragraphs for the MLM corpus: strips
// quotes and bullets, bracketed citations and footnote numbers. Paragraphs
// that end up empty are dropped.
func CleanParagraphs(paragraphs []string) []string {
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if c := CleanParagraph(p); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// CleanParagraph cleans a single paragraph.
func CleanParagraph(p string) string {
	p = undesiredChars.ReplaceAllString(p, "")
	p = whitespaceRuns.ReplaceAllString(p, " ")
	p = dotRuns.ReplaceAllString(p, ".")
	p = leadingDot.ReplaceAllString(p, "")
	p = citation.ReplaceAllString(p, "")
	p = strings.TrimSpace(whitespaceRuns.ReplaceAllString(p, " "))
	p = spaceBeforeEnd.ReplaceAllString(p, ".")
	p = trailingNumber.ReplaceAllString(p, ".")
	return strings.TrimSpace(p)
}
