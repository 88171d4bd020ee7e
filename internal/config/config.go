// Package config loads the pipeline configuration from YAML, with
// environment overrides for paths and storage credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/pbaille/legalsts/internal/domain"
	"github.com/pbaille/legalsts/internal/parser"
)

const (
	defaultOutputDir              = "output"
	defaultResourcesDir           = "resources"
	defaultDatabase               = "legalsts.db"
	defaultSeed                   = 103
	defaultCombinatorialThreshold = 30
	defaultBenchmarkNegatives     = 1
	defaultMinTokens              = 10
	defaultMaxTokens              = 500
	defaultServerAddr             = ":8080"
	defaultStorageType            = "local"
	defaultStorageLocalPath       = "./storage/datasets"
	defaultAWSRegion              = "us-east-1"
	defaultIudiciumDir            = "stf/iudicium"
)

// Config is the root of legalsts.yaml.
type Config struct {
	OutputDir    string        `yaml:"output_dir"`
	ResourcesDir string        `yaml:"resources_dir"`
	Database     string        `yaml:"database"`
	STS          STSConfig     `yaml:"sts"`
	MLM          MLMConfig     `yaml:"mlm"`
	Storage      StorageConfig `yaml:"storage"`
	Server       ServerConfig  `yaml:"server"`
}

// STSConfig drives dataset generation.
type STSConfig struct {
	Seed                   uint64            `yaml:"seed"`
	CombinatorialThreshold int               `yaml:"combinatorial_threshold"`
	BenchmarkNegatives     int               `yaml:"benchmark_negatives"`
	AntagonicAreas         map[string]string `yaml:"antagonic_areas"`
	Sources                []SourceConfig    `yaml:"sources"`
}

// SourceConfig is an annotated corpus file under ResourcesDir. When URL is
// set the sts scrape stage downloads the file from it.
type SourceConfig struct {
	Name        string   `yaml:"name"`
	File        string   `yaml:"file"`
	URL         string   `yaml:"url"`
	GroupFields []string `yaml:"group_fields"`
}

// MLMConfig drives the language-model corpus.
type MLMConfig struct {
	MinTokens int          `yaml:"min_tokens"`
	MaxTokens int          `yaml:"max_tokens"`
	Sources   []PageSource `yaml:"sources"`

	// Iudicium is the folder, relative to the mlm output, holding the STF
	// JSON-lines dumps.
	Iudicium string `yaml:"iudicium"`
}

// PageSource is a set of pages scraped into <output>/mlm/<name>.
type PageSource struct {
	Name     string   `yaml:"name"`
	Selector string   `yaml:"selector"`
	Segment  bool     `yaml:"segment"`
	URLs     []string `yaml:"urls"`
}

// StorageConfig selects where exported datasets are published.
type StorageConfig struct {
	Type      string `yaml:"type"`
	LocalPath string `yaml:"local_path"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

// ServerConfig configures the catalog API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads the config at path. An empty path yields Default(). Values
// from the environment override the file in both cases.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		if err := cfg.applyEnv(); err != nil {
			return Config{}, err
		}
		return cfg, cfg.validate()
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config yaml: %w", err)
	}

	cfg.applyDefaults(filepath.Dir(path))
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the built-in configuration: the four pesquisas prontas
// corpora and the MLM page sources.
func Default() Config {
	cfg := Config{
		STS: STSConfig{
			Sources: []SourceConfig{
				{Name: "tjms", File: "pesquisas-prontas-tjms.csv", GroupFields: []string{"assunto"}},
				{Name: "stf", File: "pesquisas-prontas-stf.csv", GroupFields: []string{"area", "tema", "discussao"}},
				{Name: "stj", File: "pesquisas-prontas-stj.csv", GroupFields: []string{"assunto"}},
				{Name: "pjerj", File: "pesquisas-prontas-pjerj.csv", GroupFields: []string{"assunto"}},
			},
		},
		MLM: MLMConfig{Sources: defaultPageSources()},
	}
	cfg.applyDefaults(".")
	return cfg
}

func defaultPageSources() []PageSource {
	tomos := make([]string, 0, 9)
	for i := 1; i <= 9; i++ {
		tomos = append(tomos, "https://enciclopediajuridica.pucsp.br/tomo/"+strconv.Itoa(i))
	}
	return []PageSource{
		{
			Name:     "stf",
			Selector: parser.SelectorSumula,
			URLs:     []string{"http://portal.stf.jus.br/jurisprudencia/sumariosumulas.asp?base=30"},
		},
		{Name: "puc", Selector: parser.SelectorEnciclopedia, Segment: true, URLs: tomos},
		{
			Name:     "planalto",
			Selector: parser.SelectorParagraph,
			URLs: []string{
				"http://www4.planalto.gov.br/legislacao/portal-legis/legislacao-1/codigos-1",
				"http://www4.planalto.gov.br/legislacao/portal-legis/legislacao-1/estatutos",
			},
		},
	}
}

func (cfg *Config) applyDefaults(configDir string) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaultOutputDir
	}
	if cfg.ResourcesDir == "" {
		cfg.ResourcesDir = defaultResourcesDir
	}
	if !filepath.IsAbs(cfg.ResourcesDir) {
		cfg.ResourcesDir = filepath.Join(configDir, cfg.ResourcesDir)
	}
	if cfg.STS.Seed == 0 {
		cfg.STS.Seed = defaultSeed
	}
	if cfg.STS.CombinatorialThreshold == 0 {
		cfg.STS.CombinatorialThreshold = defaultCombinatorialThreshold
	}
	if cfg.STS.BenchmarkNegatives == 0 {
		cfg.STS.BenchmarkNegatives = defaultBenchmarkNegatives
	}
	if cfg.STS.AntagonicAreas == nil {
		cfg.STS.AntagonicAreas = DefaultAntagonicAreas()
	}
	if cfg.MLM.MinTokens == 0 {
		cfg.MLM.MinTokens = defaultMinTokens
	}
	if cfg.MLM.MaxTokens == 0 {
		cfg.MLM.MaxTokens = defaultMaxTokens
	}
	if cfg.MLM.Iudicium == "" {
		cfg.MLM.Iudicium = defaultIudiciumDir
	}
	for i := range cfg.MLM.Sources {
		if cfg.MLM.Sources[i].Selector == "" {
			cfg.MLM.Sources[i].Selector = parser.SelectorParagraph
		}
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = defaultStorageType
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = defaultStorageLocalPath
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = defaultAWSRegion
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultServerAddr
	}
}

// applyEnv overrides paths and storage settings from the environment.
func (cfg *Config) applyEnv() error {
	overrides := []struct {
		key string
		dst *string
	}{
		{"LEGALSTS_OUTPUT_DIR", &cfg.OutputDir},
		{"LEGALSTS_RESOURCES_DIR", &cfg.ResourcesDir},
		{"LEGALSTS_DB", &cfg.Database},
		{"LEGALSTS_ADDR", &cfg.Server.Addr},
		{"STORAGE_TYPE", &cfg.Storage.Type},
		{"STORAGE_LOCAL_PATH", &cfg.Storage.LocalPath},
		{"AWS_S3_BUCKET", &cfg.Storage.Bucket},
		{"AWS_S3_PREFIX", &cfg.Storage.Prefix},
		{"AWS_REGION", &cfg.Storage.Region},
		{"AWS_ACCESS_KEY_ID", &cfg.Storage.AccessKey},
		{"AWS_SECRET_ACCESS_KEY", &cfg.Storage.SecretKey},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.dst = v
		}
	}

	if v := os.Getenv("LEGALSTS_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("LEGALSTS_SEED: %w", err)
		}
		cfg.STS.Seed = seed
	}

	if cfg.Database == "" {
		cfg.Database = filepath.Join(cfg.OutputDir, defaultDatabase)
	}
	return nil
}

func (cfg Config) validate() error {
	if len(cfg.STS.Sources) == 0 {
		return errors.New("at least one sts source is required")
	}
	if cfg.STS.CombinatorialThreshold < 0 {
		return errors.New("combinatorial_threshold must be >= 0")
	}
	if cfg.STS.BenchmarkNegatives < 0 {
		return errors.New("benchmark_negatives must be >= 0")
	}

	seen := make(map[string]bool, len(cfg.STS.Sources))
	for _, source := range cfg.STS.Sources {
		if source.Name == "" {
			return errors.New("sts source name is required")
		}
		if seen[source.Name] {
			return fmt.Errorf("duplicate sts source name: %s", source.Name)
		}
		seen[source.Name] = true
		if source.File == "" {
			return fmt.Errorf("sts source %s file is required", source.Name)
		}
		if len(source.GroupFields) == 0 {
			return fmt.Errorf("sts source %s group_fields is required", source.Name)
		}
		for _, f := range source.GroupFields {
			if _, err := domain.ParseField(f); err != nil {
				return fmt.Errorf("sts source %s: %w", source.Name, err)
			}
		}
	}

	if cfg.MLM.MinTokens > cfg.MLM.MaxTokens {
		return errors.New("mlm min_tokens must not exceed max_tokens")
	}
	pages := make(map[string]bool, len(cfg.MLM.Sources))
	for _, source := range cfg.MLM.Sources {
		if source.Name == "" {
			return errors.New("mlm source name is required")
		}
		if pages[source.Name] {
			return fmt.Errorf("duplicate mlm source name: %s", source.Name)
		}
		pages[source.Name] = true
		if _, err := parser.SelectorFor(source.Selector); err != nil {
			return fmt.Errorf("mlm source %s: %w", source.Name, err)
		}
	}

	switch cfg.Storage.Type {
	case "local", "none":
	case "s3":
		if cfg.Storage.Bucket == "" {
			return errors.New("storage bucket (AWS_S3_BUCKET) is required for s3 storage")
		}
	default:
		return fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}
	return nil
}

// SourcePath resolves a source file against ResourcesDir.
func (cfg Config) SourcePath(s SourceConfig) string {
	if filepath.IsAbs(s.File) {
		return s.File
	}
	return filepath.Join(cfg.ResourcesDir, s.File)
}

// Fields parses the source's group_fields. validate has already checked them.
func (s SourceConfig) Fields() []domain.Field {
	fields := make([]domain.Field, 0, len(s.GroupFields))
	for _, name := range s.GroupFields {
		if f, err := domain.ParseField(name); err == nil {
			fields = append(fields, f)
		}
	}
	return fields
}

// MLMDir is the root of scraped pages and parsed texts.
func (cfg Config) MLMDir() string {
	return filepath.Join(cfg.OutputDir, "mlm")
}

// IudiciumDir is the folder of the STF JSON-lines dumps.
func (cfg Config) IudiciumDir() string {
	return filepath.Join(cfg.MLMDir(), filepath.FromSlash(cfg.MLM.Iudicium))
}
