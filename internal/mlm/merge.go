// Package mlm assembles the plain-text corpus used for masked-language-model
// pre-training and reports its token-length distribution.
package mlm

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pbaille/legalsts/internal/parser"
	"github.com/pbaille/legalsts/internal/text"
)

// CorpusFile is the merged output written at the root of the MLM folder.
const CorpusFile = "corpus.txt"

// Merger concatenates parsed .txt files into a single corpus.
type Merger struct {
	minTokens int
	maxTokens int
	logger    *slog.Logger
}

// Option configures a Merger.
type Option func(*Merger)

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(m *Merger) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMerger keeps lines of at least minTokens tokens and reports those
// longer than maxTokens.
func NewMerger(minTokens, maxTokens int, opts ...Option) *Merger {
	m := &Merger{minTokens: minTokens, maxTokens: maxTokens, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MergeStats summarises a merge.
type MergeStats struct {
	Path      string `json:"path"`
	Files     int    `json:"files"`
	Lines     int    `json:"lines"`
	LongLines int    `json:"long_lines"`
}

// Merge writes dir/corpus.txt from every **/*.txt below dir. Each document
// that contributed lines is followed by a blank line.
func (m *Merger) Merge(dir string) (stats MergeStats, err error) {
	stats.Path = filepath.Join(dir, CorpusFile)
	if err := os.Remove(stats.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return stats, fmt.Errorf("remove stale corpus: %w", err)
	}

	files, err := parser.Find(dir, "**/*.txt")
	if err != nil {
		return stats, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return stats, fmt.Errorf("create directory: %w", err)
	}

	out, err := os.Create(stats.Path)
	if err != nil {
		return stats, fmt.Errorf("create corpus: %w", err)
	}
	defer func() {
		err = errors.Join(err, out.Close())
	}()
	w := bufio.NewWriter(out)

	for _, path := range files {
		if path == stats.Path {
			continue
		}
		lines, long, err := m.readDocument(path)
		if err != nil {
			return stats, err
		}
		stats.LongLines += long
		if len(lines) == 0 {
			m.logger.Debug("document skipped", "path", path)
			continue
		}
		for _, line := range lines {
			w.WriteString(line)
			w.WriteByte('\n')
		}
		w.WriteByte('\n')
		stats.Files++
		stats.Lines += len(lines)
	}
	if err := w.Flush(); err != nil {
		return stats, fmt.Errorf("write corpus: %w", err)
	}

	m.logger.Info("corpus merged", "path", stats.Path, "files", stats.Files, "lines", stats.Lines,
		"long_lines", stats.LongLines)
	return stats, nil
}

// readDocument returns the trimmed lines of path long enough to keep,
// plus how many of them exceed the maximum.
func (m *Merger) readDocument(path string) ([]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	long := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		n := text.Tokens(line)
		if n < m.minTokens {
			continue
		}
		if n > m.maxTokens {
			long++
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, long, nil
}
