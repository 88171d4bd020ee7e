// Package parser turns scraped pages and court dumps into cleaned plain-text
// files for the MLM corpus.
package parser

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/net/html"

	"github.com/pbaille/legalsts/internal/text"
)

// Find returns the files below root matching a doublestar pattern, sorted.
func Find(root, pattern string) ([]string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}
	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(root, filepath.FromSlash(m))
	}
	sort.Strings(paths)
	return paths, nil
}

// HTMLParser converts the .html files of a source folder into .txt files.
type HTMLParser struct {
	selector Selector
	segment  bool
	logger   *slog.Logger
}

// Option configures an HTMLParser.
type Option func(*HTMLParser)

// WithSegmentation splits every paragraph into sentences before cleaning.
func WithSegmentation(on bool) Option {
	return func(p *HTMLParser) {
		p.segment = on
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(p *HTMLParser) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewHTMLParser creates a parser for the named selector.
func NewHTMLParser(selector string, opts ...Option) (*HTMLParser, error) {
	sel, err := SelectorFor(selector)
	if err != nil {
		return nil, err
	}
	p := &HTMLParser{selector: sel, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Extract returns the cleaned lines of an HTML document.
func (p *HTMLParser) Extract(content []byte) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	paragraphs := p.selector(doc)
	if p.segment {
		var sentences []string
		for _, para := range paragraphs {
			sentences = append(sentences, text.SplitSentences(para)...)
		}
		paragraphs = sentences
	}
	return text.CleanParagraphs(paragraphs), nil
}

// ParseFile writes the lines of an .html file next to it as .txt and
// returns the output path. Pages with no text produce no file.
func (p *HTMLParser) ParseFile(path string) (string, int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", 0, fmt.Errorf("read %s: %w", path, err)
	}
	lines, err := p.Extract(content)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", path, err)
	}
	if len(lines) == 0 {
		p.logger.Debug("no text extracted", "path", path)
		return "", 0, nil
	}
	out := strings.TrimSuffix(path, filepath.Ext(path)) + ".txt"
	if err := WriteLines(out, lines); err != nil {
		return "", 0, err
	}
	return out, len(lines), nil
}

// ParseDir parses every **/*.html file below dir.
func (p *HTMLParser) ParseDir(dir string) ([]string, error) {
	files, err := Find(dir, "**/*.html")
	if err != nil {
		return nil, err
	}
	var written []string
	for _, f := range files {
		out, n, err := p.ParseFile(f)
		if err != nil {
			return written, err
		}
		if out == "" {
			continue
		}
		p.logger.Info("file parsed", "path", out, "lines", n)
		written = append(written, out)
	}
	return written, nil
}

// WriteLines writes one line per element, each newline terminated.
func WriteLines(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
