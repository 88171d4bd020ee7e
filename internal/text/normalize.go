// Package text holds the normalisation, cleaning and segmentation helpers
// applied to scraped legal texts before they reach a dataset.
package text

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	spacedEmenta  = regexp.MustCompile(`E\sM\sE\sN\sT\sA[\s.\-–]`)
	spacedAcordao = regexp.MustCompile(`A\sC\sÓ\sR\sD\sÃ\sO`)

	dashedBreak    = regexp.MustCompile(`(\p{L})-\s*[\r\n]+\s*(\p{L})`)
	lineBreaks     = regexp.MustCompile(`[\r\n]+`)
	tabs           = regexp.MustCompile(`\t+`)
	blankRuns      = regexp.MustCompile(` +`)
	htmlTags       = regexp.MustCompile(`<[^>]+>`)
	elisions       = regexp.MustCompile(`[(\[]\s*(\.\s*){3}[)\]]|…`)
	dotRuns        = regexp.MustCompile(`\.{2,}`)
	specialCharset = regexp.MustCompile(`[”“●■▪•_]`)
)

// CorrectSpelling collapses the letter-spaced "E M E N T A" and
// "A C Ó R D Ã O" headings produced by PDF and HTML extraction.
func CorrectSpelling(s string) string {
	s = spacedEmenta.ReplaceAllString(s, "EMENTA ")
	s = strings.TrimSpace(s)
	return spacedAcordao.ReplaceAllString(s, "ACÓRDÃO")
}

// Clean runs the full ementa cleaning chain used by the binary and triplet
// exports. The result is NFC-normalised so composed diacritics survive.
func Clean(s string) string {
	s = CorrectSpelling(s)
	s = dashedBreak.ReplaceAllString(s, "$1$2")
	s = lineBreaks.ReplaceAllString(s, " ")
	s = tabs.ReplaceAllString(s, " ")
	s = CollapseSpaces(s)
	s = htmlTags.ReplaceAllString(s, " ")
	s = elisions.ReplaceAllString(s, "")
	s = dotRuns.ReplaceAllString(s, ".")
	s = specialCharset.ReplaceAllString(s, "")
	s = CollapseSpaces(s)
	return norm.NFC.String(s)
}

// CollapseSpaces trims s and squeezes runs of blanks into one.
func CollapseSpaces(s string) string {
	return blankRuns.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Tokens counts whitespace separated tokens.
func Tokens(s string) int {
	return len(strings.Fields(s))
}
