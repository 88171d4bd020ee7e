package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pbaille/legalsts/internal/domain"
)

// IndexColumn is the leading row-number column of exported tables.
const IndexColumn = "index"

// File describes one written split.
type File struct {
	Split string `json:"split"`
	Path  string `json:"path"`
	Rows  int    `json:"rows"`
}

// Exporter writes dataset partitions below <root>/sts/<variant>/.
type Exporter struct {
	root   string
	logger *slog.Logger
}

// NewExporter creates an Exporter rooted at the output directory.
func NewExporter(root string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{root: root, logger: logger}
}

// Dir returns the directory holding the files of a variant.
func (e *Exporter) Dir(variant string) string {
	return filepath.Join(e.root, "sts", variant)
}

// Export writes each partition to <Dir(variant)>/<name>.csv.
func (e *Exporter) Export(variant string, kind domain.Kind, parts []domain.Partition) ([]File, error) {
	dir := e.Dir(variant)
	files := make([]File, 0, len(parts))
	for _, part := range parts {
		path := filepath.Join(dir, part.Name+".csv")
		if err := WriteSamples(path, kind, part.Samples); err != nil {
			return nil, fmt.Errorf("export %s: %w", part.Name, err)
		}
		e.logger.Info("dataset saved", "variant", variant, "split", part.Name, "rows", len(part.Samples), "path", path)
		files = append(files, File{Split: part.Name, Path: path, Rows: len(part.Samples)})
	}
	return files, nil
}

// WriteSamples replaces the file at path with the samples laid out for kind.
func WriteSamples(path string, kind domain.Kind, samples []domain.Sample) (err error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close file: %w", cerr)
		}
	}()

	buffered := bufio.NewWriter(file)
	if _, err := buffered.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	if err := encodeSamples(buffered, kind, samples); err != nil {
		return err
	}
	if err := buffered.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func encodeSamples(w io.Writer, kind domain.Kind, samples []domain.Sample) error {
	writer := csv.NewWriter(w)
	writer.Comma = Separator

	header := append([]string{IndexColumn}, kind.Header()...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, s := range samples {
		if err := writer.Write(append([]string{strconv.Itoa(i)}, row(kind, s)...)); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

func row(kind domain.Kind, s domain.Sample) []string {
	similarity := strconv.Itoa(s.Similarity)
	switch kind {
	case domain.KindTriplet:
		return []string{s.TextA, s.TextB, s.TextC}
	case domain.KindBenchmark:
		return []string{s.Source, s.Group, s.TextA, s.TextB, similarity}
	case domain.KindLabeled:
		return []string{s.Group, s.TextA, s.TextB, similarity}
	case domain.KindGrouped:
		return []string{s.TextA, s.Group}
	default:
		return []string{s.TextA, s.TextB, similarity}
	}
}

// ReadSamples reads a file written by WriteSamples back into samples.
func ReadSamples(path string, kind domain.Kind) ([]domain.Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(skipBOM(file))
	reader.Comma = Separator
	reader.FieldsPerRecord = len(kind.Header()) + 1

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var samples []domain.Sample
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset row: %w", err)
		}
		s, err := parseRow(kind, record[1:])
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func parseRow(kind domain.Kind, r []string) (domain.Sample, error) {
	var s domain.Sample
	var similarity string
	switch kind {
	case domain.KindTriplet:
		s.TextA, s.TextB, s.TextC = r[0], r[1], r[2]
		return s, nil
	case domain.KindGrouped:
		s.TextA, s.Group = r[0], r[1]
		return s, nil
	case domain.KindBenchmark:
		s.Source, s.Group, s.TextA, s.TextB, similarity = r[0], r[1], r[2], r[3], r[4]
	case domain.KindLabeled:
		s.Group, s.TextA, s.TextB, similarity = r[0], r[1], r[2], r[3]
	default:
		s.TextA, s.TextB, similarity = r[0], r[1], r[2]
	}
	n, err := strconv.Atoi(similarity)
	if err != nil {
		return s, fmt.Errorf("parse similarity %q: %w", similarity, err)
	}
	s.Similarity = n
	return s, nil
}
