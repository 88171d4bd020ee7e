package sts

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/pbaille/legalsts/internal/dataset"
	"github.com/pbaille/legalsts/internal/domain"
)

// Source is an annotated corpus file and the fields its opinions are
// grouped by.
type Source struct {
	Name   string
	Path   string
	Fields []domain.Field
}

// Config holds what the variants need besides the corpora themselves.
type Config struct {
	Sources                map[string]Source
	Antagonic              AntagonicMap
	CombinatorialThreshold int
	BenchmarkNegatives     int
	// Seed drives negative sampling and paragraph shuffling.
	Seed uint64
}

type corpus struct {
	source  Source
	records []domain.Opinion
}

// Variant is one exported dataset flavour.
type Variant struct {
	Name    string
	Kind    domain.Kind
	Sources []string
	Dedup   bool
	Plan    SplitPlan

	generate func(g *Generator, b *Builder, corpora []corpus, rng *rand.Rand) error
}

var (
	singleSplit = SplitPlan{Train: 0.80, Seed: PrimarySeed}
	threeWay    = SplitPlan{Train: ThreeWayTrain, Seed: PrimarySeed, Holdout: ThreeWayHoldout, HoldoutSeed: SecondarySeed}
	allSources  = []string{"tjms", "stf", "stj", "pjerj"}
)

var variants = []Variant{
	{
		Name:    "scale",
		Kind:    domain.KindPair,
		Sources: []string{"stf"},
		Plan:    SplitPlan{Train: threeWay.Train, Seed: threeWay.Seed, Holdout: threeWay.Holdout, HoldoutSeed: threeWay.HoldoutSeed, HoldoutName: domain.SplitEval},
		generate: func(g *Generator, b *Builder, corpora []corpus, _ *rand.Rand) error {
			return ScaleRules(b, corpora[0].records, g.cfg.Antagonic)
		},
	},
	{
		Name:    "triplet",
		Kind:    domain.KindTriplet,
		Sources: []string{"stf"},
		Dedup:   true,
		Plan:    singleSplit,
		generate: func(g *Generator, b *Builder, corpora []corpus, rng *rand.Rand) error {
			return TripletRule(b, corpora[0].records, g.cfg.Antagonic, g.cfg.CombinatorialThreshold, rng)
		},
	},
	{
		Name:    "binary",
		Kind:    domain.KindPair,
		Sources: []string{"stf"},
		Dedup:   true,
		Plan:    singleSplit,
		generate: func(g *Generator, b *Builder, corpora []corpus, rng *rand.Rand) error {
			triplets := NewBuilder(domain.KindTriplet, WithDedup(), WithLogger(g.logger))
			if err := TripletRule(triplets, corpora[0].records, g.cfg.Antagonic, g.cfg.CombinatorialThreshold, rng); err != nil {
				return err
			}
			n := BinaryFromTriplets(b, triplets.Samples(), rng)
			g.logger.Info("pairs generated", "rule", "binary from triplets", "triplets", triplets.Len(), "count", n)
			return nil
		},
	},
	{
		Name:    "batch-triplet",
		Kind:    domain.KindGrouped,
		Sources: []string{"stf"},
		Plan:    singleSplit,
		generate: func(g *Generator, b *Builder, corpora []corpus, rng *rand.Rand) error {
			GroupedTexts(b, corpora[0].records, rng)
			return nil
		},
	},
	{
		Name:    "benchmark",
		Kind:    domain.KindBenchmark,
		Sources: allSources,
		Dedup:   true,
		Plan:    SplitPlan{Train: 0.95, Seed: PrimarySeed},
		generate: func(g *Generator, b *Builder, corpora []corpus, rng *rand.Rand) error {
			k := g.cfg.BenchmarkNegatives
			if k <= 0 {
				k = 1
			}
			for _, c := range corpora {
				n := BenchmarkRule(b, GroupBy(c.records, c.source.Fields...), k, rng)
				g.logger.Info("pairs generated", "rule", "benchmark", "source", c.source.Name, "count", n)
			}
			return nil
		},
	},
	{
		Name:    "pairs",
		Kind:    domain.KindLabeled,
		Sources: allSources,
		Plan:    threeWay,
		generate: func(g *Generator, b *Builder, corpora []corpus, _ *rand.Rand) error {
			for _, c := range corpora {
				n := LegacyPairs(b, GroupBy(c.records, c.source.Fields...))
				g.logger.Info("pairs generated", "rule", "legacy", "source", c.source.Name, "count", n)
			}
			return nil
		},
	},
}

// Variants returns the dataset variants in their default export order.
func Variants() []Variant {
	return append([]Variant(nil), variants...)
}

// LookupVariant finds a variant by name.
func LookupVariant(name string) (Variant, error) {
	for _, v := range variants {
		if v.Name == name {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
}

// Dataset is the in-memory result of a variant before export.
type Dataset struct {
	Variant    Variant
	Partitions []domain.Partition
	Stats      Stats
}

// Result summarises an exported variant.
type Result struct {
	Variant string
	Kind    domain.Kind
	Stats   Stats
	Files   []dataset.File
}

// Generator builds and exports dataset variants.
type Generator struct {
	cfg      Config
	exporter *dataset.Exporter
	logger   *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithGeneratorLogger sets the logger (default: slog.Default()).
func WithGeneratorLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGenerator creates a Generator writing through exporter.
func NewGenerator(cfg Config, exporter *dataset.Exporter, opts ...Option) *Generator {
	g := &Generator{cfg: cfg, exporter: exporter, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	if g.cfg.Seed == 0 {
		g.cfg.Seed = PrimarySeed
	}
	return g
}

func (g *Generator) load(names []string) ([]corpus, error) {
	corpora := make([]corpus, 0, len(names))
	for _, name := range names {
		src, ok := g.cfg.Sources[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
		}
		if src.Name == "" {
			src.Name = name
		}
		records, err := dataset.LoadOpinions(src.Path, src.Name, src.Fields)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		g.logger.Info("corpus loaded", "source", name, "records", len(records))
		corpora = append(corpora, corpus{source: src, records: records})
	}
	return corpora, nil
}

// Build loads the variant's corpora, runs its rules and splits the result.
func (g *Generator) Build(name string) (*Dataset, error) {
	v, err := LookupVariant(name)
	if err != nil {
		return nil, err
	}
	corpora, err := g.load(v.Sources)
	if err != nil {
		return nil, err
	}

	logger := g.logger.With("variant", v.Name)
	opts := []BuilderOption{WithLogger(logger)}
	if v.Dedup {
		opts = append(opts, WithDedup())
	}
	b := NewBuilder(v.Kind, opts...)
	rng := rand.New(rand.NewPCG(g.cfg.Seed, g.cfg.Seed))

	if err := v.generate(g, b, corpora, rng); err != nil {
		return nil, fmt.Errorf("generate %s: %w", v.Name, err)
	}
	if b.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", v.Name, ErrEmptyDataset)
	}

	parts, err := v.Plan.Apply(b.Samples())
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", v.Name, err)
	}
	stats := b.Stats()
	logger.Info("dataset built", "samples", b.Len(), "skipped", stats.Skipped, "duplicates", stats.Duplicates)
	return &Dataset{Variant: v, Partitions: parts, Stats: stats}, nil
}

// Export builds the variant and writes its partitions.
func (g *Generator) Export(name string) (*Result, error) {
	ds, err := g.Build(name)
	if err != nil {
		return nil, err
	}
	files, err := g.exporter.Export(ds.Variant.Name, ds.Variant.Kind, ds.Partitions)
	if err != nil {
		return nil, err
	}
	return &Result{Variant: ds.Variant.Name, Kind: ds.Variant.Kind, Stats: ds.Stats, Files: files}, nil
}
