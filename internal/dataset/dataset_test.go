package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pbaille/legalsts/internal/domain"
)

const stfCorpus = "\xef\xbb\xbfindex|titulo|area|tema|discussao|ementa\n" +
	"0|RE 1|DIREITO CIVIL|Contratos|Revisão|Ementa um sobre contratos.\n" +
	"1|RE 2|DIREITO CIVIL|Contratos|Revisão|\"Ementa dois | com separador.\"\n" +
	"2||DIREITO PENAL|Pena|Dosimetria|Ementa três.\n"

var stfFields = []domain.Field{domain.FieldArea, domain.FieldTheme, domain.FieldDiscussion}

func TestParseOpinions(t *testing.T) {
	got, err := ParseOpinions(strings.NewReader(stfCorpus), "stf", stfFields)
	if err != nil {
		t.Fatalf("ParseOpinions() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d opinions, want 3", len(got))
	}

	first := got[0]
	if first.ID != "RE 1" || first.Area != "DIREITO CIVIL" || first.Theme != "Contratos" || first.Discussion != "Revisão" {
		t.Errorf("first opinion = %+v", first)
	}
	if first.Source != "stf" {
		t.Errorf("Source = %q, want stf", first.Source)
	}
	if got[1].Text != "Ementa dois | com separador." {
		t.Errorf("quoted text = %q", got[1].Text)
	}
	if got[2].ID == "" {
		t.Error("row without titulo should get a generated id")
	}
}

func TestParseOpinions_GeneratedIDsAreStable(t *testing.T) {
	a, err := ParseOpinions(strings.NewReader(stfCorpus), "stf", stfFields)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseOpinions(strings.NewReader(stfCorpus), "stf", stfFields)
	if err != nil {
		t.Fatal(err)
	}
	if a[2].ID != b[2].ID {
		t.Errorf("generated ids differ between runs: %s vs %s", a[2].ID, b[2].ID)
	}
}

func TestParseOpinions_MissingColumn(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		fields []domain.Field
	}{
		{"no ementa", "assunto|texto\nA|b\n", []domain.Field{domain.FieldSubject}},
		{"no assunto", "area|ementa\nA|b\n", []domain.Field{domain.FieldSubject}},
		{"empty file", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOpinions(strings.NewReader(tt.input), "x", tt.fields)
			if !errors.Is(err, ErrMissingColumn) {
				t.Errorf("expected ErrMissingColumn, got %v", err)
			}
		})
	}
}

func TestLoadOpinions_NotFound(t *testing.T) {
	_, err := LoadOpinions(filepath.Join(t.TempDir(), "missing.csv"), "stf", stfFields)
	if !errors.Is(err, ErrCorpusNotFound) {
		t.Errorf("expected ErrCorpusNotFound, got %v", err)
	}
}

func TestWriteSamples_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		kind    domain.Kind
		samples []domain.Sample
	}{
		{
			name: "pair",
			kind: domain.KindPair,
			samples: []domain.Sample{
				{TextA: "Ação civil pública.", TextB: "Tributário | ICMS.", Similarity: 3},
				{TextA: "a", TextB: "b", Similarity: 0},
			},
		},
		{
			name: "triplet",
			kind: domain.KindTriplet,
			samples: []domain.Sample{
				{TextA: "âncora", TextB: "positivo", TextC: "negativo \"citado\""},
			},
		},
		{
			name: "benchmark",
			kind: domain.KindBenchmark,
			samples: []domain.Sample{
				{Source: "stj", Group: "PRESCRIÇÃO", TextA: "x", TextB: "y", Similarity: 1},
			},
		},
		{
			name: "labeled",
			kind: domain.KindLabeled,
			samples: []domain.Sample{
				{Group: "DIREITO CIVIL Contratos", TextA: "x", TextB: "y", Similarity: 1},
			},
		},
		{
			name: "grouped",
			kind: domain.KindGrouped,
			samples: []domain.Sample{
				{TextA: "Ementa 1. a 2. b", Group: "0"},
				{TextA: "Ementa 1. b 2. a", Group: "0"},
				{TextA: "outra", Group: "1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", tt.name+".csv")
			if err := WriteSamples(path, tt.kind, tt.samples); err != nil {
				t.Fatalf("WriteSamples() error = %v", err)
			}
			got, err := ReadSamples(path, tt.kind)
			if err != nil {
				t.Fatalf("ReadSamples() error = %v", err)
			}
			if len(got) != len(tt.samples) {
				t.Fatalf("got %d samples, want %d", len(got), len(tt.samples))
			}
			for i := range got {
				if got[i] != tt.samples[i] {
					t.Errorf("sample[%d] = %+v, want %+v", i, got[i], tt.samples[i])
				}
			}
		})
	}
}

func TestWriteSamples_Layout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "full.csv")
	samples := []domain.Sample{{TextA: "Ação", TextB: "Decisão", Similarity: 1}}
	if err := WriteSamples(path, domain.KindPair, samples); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, utf8BOM) {
		t.Error("exported file should start with a UTF-8 BOM")
	}
	want := "index|ementa1|ementa2|similarity\n0|Ação|Decisão|1\n"
	if got := string(data[len(utf8BOM):]); got != want {
		t.Errorf("file content = %q, want %q", got, want)
	}
}

func TestWriteSamples_ReplacesStaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.csv")
	if err := os.WriteFile(path, []byte(strings.Repeat("stale line\n", 100)), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteSamples(path, domain.KindPair, nil); err != nil {
		t.Fatal(err)
	}
	got, err := ReadSamples(path, domain.KindPair)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d rows after rewrite, want 0", len(got))
	}
}

func TestExporter_Export(t *testing.T) {
	root := t.TempDir()
	exp := NewExporter(root, nil)
	parts := []domain.Partition{
		{Name: domain.SplitFull, Samples: []domain.Sample{{TextA: "a", TextB: "b"}, {TextA: "c", TextB: "d"}}},
		{Name: domain.SplitTrain, Samples: []domain.Sample{{TextA: "a", TextB: "b"}}},
	}
	files, err := exp.Export("scale", domain.KindPair, parts)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	wantPath := filepath.Join(root, "sts", "scale", "full.csv")
	if files[0].Path != wantPath || files[0].Rows != 2 {
		t.Errorf("files[0] = %+v, want path %s with 2 rows", files[0], wantPath)
	}
	if _, err := os.Stat(filepath.Join(root, "sts", "scale", "train.csv")); err != nil {
		t.Errorf("train.csv not written: %v", err)
	}
}
