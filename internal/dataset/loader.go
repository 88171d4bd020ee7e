// Package dataset reads annotated opinion tables and writes generated
// datasets. Both sides use the pipe separated, UTF-8 (BOM tolerant) layout
// the scrapers produce.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pbaille/legalsts/internal/domain"
)

// Separator is the field delimiter of every table read or written here.
const Separator = '|'

// TextColumn holds the ementa in annotated corpora.
const TextColumn = "ementa"

var (
	// ErrCorpusNotFound indicates the annotated corpus file does not exist.
	ErrCorpusNotFound = errors.New("dataset: corpus file not found")

	// ErrMissingColumn indicates a required column is absent from the header.
	ErrMissingColumn = errors.New("dataset: missing column")
)

var (
	utf8BOM = []byte("\xef\xbb\xbf")

	// opinionNamespace seeds the name-based ids of rows without an id column.
	opinionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/pbaille/legalsts/opinion"))
)

// idColumns are tried in order for an explicit row identifier
var idColumns = []string{"titulo", "id"}

// LoadOpinions reads the corpus at path. Every field in fields must have a
// column; rows keep file order. Rows with an empty ementa are kept so
// grouping stays faithful to the file; they are dropped when samples are built.
func LoadOpinions(path, source string, fields []domain.Field) ([]domain.Opinion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, path)
		}
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return ParseOpinions(bytes.NewReader(data), source, fields)
}

// ParseOpinions is LoadOpinions over an already opened reader.
func ParseOpinions(r io.Reader, source string, fields []domain.Field) ([]domain.Opinion, error) {
	reader := csv.NewReader(skipBOM(r))
	reader.Comma = Separator
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: %s (empty file)", ErrMissingColumn, TextColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	textIdx, ok := columns[TextColumn]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, TextColumn)
	}
	fieldIdx := make(map[domain.Field]int, len(fields))
	for _, f := range fields {
		idx, ok := columns[f.Column()]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, f.Column())
		}
		fieldIdx[f] = idx
	}
	idIdx := -1
	for _, name := range idColumns {
		if idx, ok := columns[name]; ok {
			idIdx = idx
			break
		}
	}

	var opinions []domain.Opinion
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}

		op := domain.Opinion{
			Source: source,
			Text:   cell(record, textIdx),
		}
		for f, idx := range fieldIdx {
			value := strings.TrimSpace(cell(record, idx))
			switch f {
			case domain.FieldSubject:
				op.Subject = value
			case domain.FieldArea:
				op.Area = value
			case domain.FieldTheme:
				op.Theme = value
			case domain.FieldDiscussion:
				op.Discussion = value
			}
		}
		if idIdx >= 0 {
			op.ID = strings.TrimSpace(cell(record, idIdx))
		}
		if op.ID == "" {
			name := source + "\x00" + strconv.Itoa(row) + "\x00" + op.Text
			op.ID = uuid.NewSHA1(opinionNamespace, []byte(name)).String()
		}
		opinions = append(opinions, op)
	}

	return opinions, nil
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func skipBOM(r io.Reader) io.Reader {
	buf := make([]byte, len(utf8BOM))
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return io.MultiReader(bytes.NewReader(buf[:n]), r)
	}
	if bytes.Equal(buf, utf8BOM) {
		return r
	}
	return io.MultiReader(bytes.NewReader(buf), r)
}
