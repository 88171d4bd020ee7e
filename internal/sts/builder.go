package sts

import (
	"log/slog"

	"github.com/pbaille/legalsts/internal/domain"
	"github.com/pbaille/legalsts/internal/text"
)

// Similarity tiers of the scale dataset. A larger value means the two
// opinions sit closer in the area > theme > discussion hierarchy.
const (
	TierCrossArea      = 0
	TierSameArea       = 1
	TierSameTheme      = 2
	TierSameDiscussion = 3
)

// Binary labels.
const (
	Dissimilar = 0
	Similar    = 1
)

// Stats counts what happened to the samples offered to a Builder.
type Stats struct {
	Added      int `json:"added"`
	Skipped    int `json:"skipped"`
	Duplicates int `json:"duplicates"`
}

type pairKey struct {
	a, b string
}

// Builder accumulates the samples emitted by the pairing rules of one run.
// Insertion order is kept, which makes the seeded split reproducible.
type Builder struct {
	kind      domain.Kind
	dedup     bool
	normalize func(string) string
	logger    *slog.Logger

	seen    map[pairKey]struct{}
	samples []domain.Sample
	stats   Stats
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithDedup rejects samples whose ordered (TextA, TextB) pair was already added.
func WithDedup() BuilderOption {
	return func(b *Builder) {
		b.dedup = true
	}
}

// WithNormalizer replaces the text normalisation applied on insertion
// (default: text.CorrectSpelling).
func WithNormalizer(fn func(string) string) BuilderOption {
	return func(b *Builder) {
		if fn != nil {
			b.normalize = fn
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates an empty Builder for datasets of the given kind.
func NewBuilder(kind domain.Kind, opts ...BuilderOption) *Builder {
	b := &Builder{
		kind:      kind,
		normalize: text.CorrectSpelling,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.dedup {
		b.seen = make(map[pairKey]struct{})
	}
	return b
}

// Add normalises and appends s. It reports false when the sample was
// skipped for missing text or rejected as a duplicate.
func (b *Builder) Add(s domain.Sample) bool {
	texts := b.kind.Texts()
	s.TextA = b.normalize(s.TextA)
	if texts > 1 {
		s.TextB = b.normalize(s.TextB)
	}
	if texts > 2 {
		s.TextC = b.normalize(s.TextC)
	}

	if s.TextA == "" || (texts > 1 && s.TextB == "") || (texts > 2 && s.TextC == "") {
		b.stats.Skipped++
		b.logger.Warn("skipping sample with empty text", "group", s.Group, "source", s.Source)
		return false
	}

	if b.dedup {
		key := pairKey{s.TextA, s.TextB}
		if _, ok := b.seen[key]; ok {
			b.stats.Duplicates++
			return false
		}
		b.seen[key] = struct{}{}
	}

	b.samples = append(b.samples, s)
	b.stats.Added++
	return true
}

// Kind returns the dataset kind the builder was created for.
func (b *Builder) Kind() domain.Kind { return b.kind }

// Len returns the number of accepted samples.
func (b *Builder) Len() int { return len(b.samples) }

// Samples returns the accepted samples in insertion order.
func (b *Builder) Samples() []domain.Sample { return b.samples }

// Stats returns the insertion counters.
func (b *Builder) Stats() Stats { return b.stats }

// Logger returns the builder's logger so rules report alongside it.
func (b *Builder) Logger() *slog.Logger { return b.logger }
