package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pbaille/legalsts/internal/dataset"
	"github.com/pbaille/legalsts/internal/domain"
	"github.com/pbaille/legalsts/internal/fetcher"
	"github.com/pbaille/legalsts/internal/mlm"
	"github.com/pbaille/legalsts/internal/parser"
	"github.com/pbaille/legalsts/internal/storage"
	"github.com/pbaille/legalsts/internal/sts"
)

// scrapeCorpora downloads the annotated corpora that have a URL configured.
func scrapeCorpora(ctx context.Context) error {
	client := fetcher.New(fetcher.WithLogger(logger))
	for _, src := range cfg.STS.Sources {
		if src.URL == "" {
			logger.Debug("no url configured, keeping local corpus", "source", src.Name)
			continue
		}
		body, err := client.Fetch(ctx, src.URL)
		if err != nil {
			return fmt.Errorf("scrape %s: %w", src.Name, err)
		}
		path := cfg.SourcePath(src)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create resources dir: %w", err)
		}
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Info("corpus downloaded", "source", src.Name, "path", path, "bytes", len(body))
	}
	return nil
}

// checkCorpora loads every configured corpus and reports its size. Missing
// files are reported, not fatal: only the export needs them.
func checkCorpora() error {
	for _, src := range cfg.STS.Sources {
		records, err := dataset.LoadOpinions(cfg.SourcePath(src), src.Name, src.Fields())
		if errors.Is(err, dataset.ErrCorpusNotFound) {
			logger.Warn("corpus missing", "source", src.Name, "path", cfg.SourcePath(src))
			continue
		}
		if err != nil {
			return err
		}
		logger.Info("corpus parsed", "source", src.Name, "records", len(records))
	}
	return nil
}

func generatorConfig() sts.Config {
	sources := make(map[string]sts.Source, len(cfg.STS.Sources))
	for _, src := range cfg.STS.Sources {
		sources[src.Name] = sts.Source{Name: src.Name, Path: cfg.SourcePath(src), Fields: src.Fields()}
	}
	return sts.Config{
		Sources:                sources,
		Antagonic:              sts.AntagonicMap(cfg.STS.AntagonicAreas),
		CombinatorialThreshold: cfg.STS.CombinatorialThreshold,
		BenchmarkNegatives:     cfg.STS.BenchmarkNegatives,
		Seed:                   cfg.STS.Seed,
	}
}

// exportSTS writes the variant's splits, records the run and publishes it.
func exportSTS(ctx context.Context, variant string) (*domain.Run, error) {
	exporter := dataset.NewExporter(cfg.OutputDir, logger)
	gen := sts.NewGenerator(generatorConfig(), exporter, sts.WithGeneratorLogger(logger))
	res, err := gen.Export(variant)
	if err != nil {
		return nil, err
	}

	run := &domain.Run{
		Pipeline:   domain.PipelineSTS,
		Variant:    res.Variant,
		Seed:       cfg.STS.Seed,
		Samples:    res.Stats.Added,
		Skipped:    res.Stats.Skipped,
		Duplicates: res.Stats.Duplicates,
	}
	for _, f := range res.Files {
		run.Files = append(run.Files, domain.RunFile{Split: f.Split, Path: f.Path, Rows: f.Rows})
	}
	return run, record(ctx, run)
}

func scrapePages(ctx context.Context) error {
	client := fetcher.New(fetcher.WithLogger(logger))
	for _, src := range cfg.MLM.Sources {
		dir := filepath.Join(cfg.MLMDir(), src.Name)
		written, err := client.Scrape(ctx, dir, src.URLs)
		if err != nil {
			return fmt.Errorf("scrape %s: %w", src.Name, err)
		}
		logger.Info("source scraped", "source", src.Name, "pages", len(written), "urls", len(src.URLs))
	}
	return nil
}

func parsePages() error {
	for _, src := range cfg.MLM.Sources {
		p, err := parser.NewHTMLParser(src.Selector,
			parser.WithSegmentation(src.Segment), parser.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("parse %s: %w", src.Name, err)
		}
		written, err := p.ParseDir(filepath.Join(cfg.MLMDir(), src.Name))
		if err != nil {
			return fmt.Errorf("parse %s: %w", src.Name, err)
		}
		logger.Info("source parsed", "source", src.Name, "files", len(written))
	}

	if _, err := parser.ParseIudicium(cfg.IudiciumDir(), logger); err != nil {
		return fmt.Errorf("parse iudicium: %w", err)
	}
	return nil
}

// exportMLM merges the parsed texts into the corpus and records the run.
func exportMLM(ctx context.Context) (*domain.Run, error) {
	merger := mlm.NewMerger(cfg.MLM.MinTokens, cfg.MLM.MaxTokens, mlm.WithLogger(logger))
	stats, err := merger.Merge(cfg.MLMDir())
	if err != nil {
		return nil, err
	}
	if stats.LongLines > 0 {
		logger.Warn("corpus has lines above the token limit", "count", stats.LongLines, "max_tokens", cfg.MLM.MaxTokens)
	}

	run := &domain.Run{
		Pipeline: domain.PipelineMLM,
		Variant:  "corpus",
		Samples:  stats.Lines,
		Files:    []domain.RunFile{{Split: domain.SplitFull, Path: stats.Path, Rows: stats.Lines}},
	}
	return run, record(ctx, run)
}

// record stores the run in the catalog and publishes its files when a
// storage backend is configured.
func record(ctx context.Context, run *domain.Run) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.AddRun(run); err != nil {
		return err
	}
	logger.Info("run recorded", "id", run.ID, "variant", run.Variant)

	st, err := newStorage(ctx)
	if err != nil {
		return err
	}
	if st == nil {
		return nil
	}

	published, err := storage.Publish(ctx, st, run)
	if err != nil {
		return err
	}
	for _, f := range published {
		if err := s.SetFileLocation(run.ID, f.Split, f.Location); err != nil {
			return err
		}
		logger.Info("file published", "split", f.Split, "location", f.Location)
	}
	run.Files = published
	return nil
}

// newStorage opens the configured publishing backend; nil when publishing
// is disabled.
func newStorage(ctx context.Context) (storage.Storage, error) {
	st, err := storage.New(ctx, storage.Config{
		Type:      storage.Type(cfg.Storage.Type),
		LocalPath: cfg.Storage.LocalPath,
		Bucket:    cfg.Storage.Bucket,
		Prefix:    cfg.Storage.Prefix,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return st, nil
}

// tokenStatistics builds the histogram over the distinct ementas of the
// configured corpora and the merged MLM corpus.
func tokenStatistics() ([]mlm.Bucket, int, error) {
	var sentences []string
	for _, src := range cfg.STS.Sources {
		records, err := dataset.LoadOpinions(cfg.SourcePath(src), src.Name, src.Fields())
		if errors.Is(err, dataset.ErrCorpusNotFound) {
			logger.Warn("corpus missing", "source", src.Name)
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		sentences = append(sentences, mlm.UniqueTexts(records)...)
	}

	lines, err := mlm.CorpusLines(filepath.Join(cfg.MLMDir(), mlm.CorpusFile))
	if err != nil {
		return nil, 0, err
	}
	sentences = append(sentences, lines...)
	return mlm.Histogram(sentences), len(sentences), nil
}
