package parser

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimLeft(content, "\n")), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
}

const sumulaPage = `
<html><body>
<div id="menu"><div class="parCOM"><p>Menu.</p></div></div>
<div id="conteudo">
  <div class="parCOM"><p>Súmula 1: É vedada a cobrança.</p><p>Precedentes.</p></div>
  <div class="parCOM destaque"><p>Súmula 2: Compete à Justiça Federal.</p></div>
</div>
</body></html>`

const enciclopediaPage = `
<html><body>
<div class="texto-verbete"><p>Primeira frase do verbete. Segunda frase, conforme art. 5 da Constituição.</p></div>
<div class="notas-verbetes extra"><p>Nota de rodapé.</p></div>
<div class="bibliografia-verbetes"><p>Autor, Obra.</p></div>
</body></html>`

func TestSelectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		selector string
		segment  bool
		page     string
		want     []string
	}{
		{
			name:     "sumula keeps first paragraph of each block",
			selector: SelectorSumula,
			page:     sumulaPage,
			want:     []string{"Súmula 1: É vedada a cobrança.", "Súmula 2: Compete à Justiça Federal."},
		},
		{
			name:     "paragraph keeps every p",
			selector: SelectorParagraph,
			page:     `<p>Art. 1º  Esta Lei (Redação dada) entra em vigor.</p><p></p><p>“Texto”</p>`,
			want:     []string{"Art. 1º Esta Lei entra em vigor.", "Texto"},
		},
		{
			name:     "enciclopedia skips notes and bibliography",
			selector: SelectorEnciclopedia,
			page:     enciclopediaPage,
			want:     []string{"Primeira frase do verbete. Segunda frase, conforme art. 5 da Constituição."},
		},
		{
			name:     "enciclopedia with segmentation",
			selector: SelectorEnciclopedia,
			segment:  true,
			page:     enciclopediaPage,
			want:     []string{"Primeira frase do verbete.", "Segunda frase, conforme art. 5 da Constituição."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := NewHTMLParser(tt.selector, WithSegmentation(tt.segment))
			if err != nil {
				t.Fatalf("NewHTMLParser: %v", err)
			}
			got, err := p.Extract([]byte(tt.page))
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Extract = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectorFor_Unknown(t *testing.T) {
	t.Parallel()

	if _, err := SelectorFor("xpath"); err == nil {
		t.Fatal("expected error for unknown selector")
	}
	if _, err := NewHTMLParser("xpath"); err == nil {
		t.Fatal("expected NewHTMLParser to reject unknown selector")
	}
}

func TestParseDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sumariosumulas.html"), sumulaPage)
	writeFile(t, filepath.Join(dir, "nested", "page.html"), sumulaPage)
	writeFile(t, filepath.Join(dir, "nested", "empty.html"), "<html><body><p>Nada</p></body></html>")
	writeFile(t, filepath.Join(dir, "notes.md"), "# not html")

	p, err := NewHTMLParser(SelectorSumula)
	if err != nil {
		t.Fatalf("NewHTMLParser: %v", err)
	}
	written, err := p.ParseDir(dir)
	if err != nil {
		t.Fatalf("ParseDir: %v", err)
	}

	want := []string{
		filepath.Join(dir, "nested", "page.txt"),
		filepath.Join(dir, "sumariosumulas.txt"),
	}
	if !reflect.DeepEqual(written, want) {
		t.Fatalf("written = %v, want %v", written, want)
	}
	if _, err := os.Stat(filepath.Join(dir, "nested", "empty.txt")); !os.IsNotExist(err) {
		t.Fatal("page without matches should not produce a file")
	}
	if lines := readLines(t, want[1]); len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), lines)
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "b")
	writeFile(t, filepath.Join(dir, "a", "a.txt"), "a")
	writeFile(t, filepath.Join(dir, "a", "a.html"), "a")

	got, err := Find(dir, "**/*.txt")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	want := []string{filepath.Join(dir, "a", "a.txt"), filepath.Join(dir, "b.txt")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Find = %v, want %v", got, want)
	}

	got, err = Find(filepath.Join(dir, "missing"), "**/*.txt")
	if err != nil || got != nil {
		t.Fatalf("Find on missing root = %v, %v", got, err)
	}
}

func TestParseIudicium(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, iudiciumReports), `
{"_id": {"$oid": "r1"}, "texto": "O recorrente alega (fl. 3) ofensa ao contrato ."}
{"_id": {"$oid": "r2"}, "texto": ""}
`)
	writeFile(t, filepath.Join(dir, iudiciumDecisions), `
{"_id": {"$oid": "d1"}, "ementa": {"texto": "DIREITO CIVIL – Contrato. 1. Primeiro item. 2. Segundo item."}, "acordao": {"texto": "Acordam os ministros."}}
`)

	got, err := ParseIudicium(dir, nil)
	if err != nil {
		t.Fatalf("ParseIudicium: %v", err)
	}
	want := IudiciumResult{"relatorio": 1, "ementa": 1, "acordao": 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("result = %v, want %v", got, want)
	}

	if lines := readLines(t, filepath.Join(dir, "relatorio", "r1.txt")); !reflect.DeepEqual(lines, []string{"O recorrente alega ofensa ao contrato."}) {
		t.Fatalf("relatorio = %q", lines)
	}
	wantEmenta := []string{"DIREITO CIVIL. Contrato", "Primeiro item", "Segundo item."}
	if lines := readLines(t, filepath.Join(dir, "ementa", "d1.txt")); !reflect.DeepEqual(lines, wantEmenta) {
		t.Fatalf("ementa = %q, want %q", lines, wantEmenta)
	}
	if _, err := os.Stat(filepath.Join(dir, "votos")); !os.IsNotExist(err) {
		t.Fatal("missing votes dump should be skipped")
	}
}

func TestParseIudicium_BadJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, iudiciumVotes), "{not json}\n")

	if _, err := ParseIudicium(dir, nil); err == nil || !strings.Contains(err.Error(), iudiciumVotes) {
		t.Fatalf("ParseIudicium error = %v, want one naming %s", err, iudiciumVotes)
	}
}
