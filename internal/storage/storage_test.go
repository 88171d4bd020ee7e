package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pbaille/legalsts/internal/domain"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	st, err := NewLocalStorage(filepath.Join(t.TempDir(), "published"))
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	key, err := st.Upload(ctx, "scale/run-1/train.csv", strings.NewReader("index|ementa1\n"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	data, err := os.ReadFile(st.URI(key))
	if err != nil {
		t.Fatalf("read uploaded file: %v", err)
	}
	if string(data) != "index|ementa1\n" {
		t.Errorf("uploaded %q", data)
	}

	if err := st.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := st.Delete(ctx, key); err != nil {
		t.Errorf("second Delete should be a no-op, got %v", err)
	}
	if _, err := os.Stat(st.URI(key)); !os.IsNotExist(err) {
		t.Errorf("file still present after Delete: %v", err)
	}
}

func TestPublish(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "full.csv")
	if err := os.WriteFile(src, []byte("index|ementa1|ementa2|similarity\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := New(context.Background(), Config{Type: TypeLocal, LocalPath: filepath.Join(dir, "published")})
	if err != nil {
		t.Fatal(err)
	}

	run := &domain.Run{ID: "run-1", Variant: "scale", Files: []domain.RunFile{{Split: "full", Path: src, Rows: 0}}}
	files, err := Publish(context.Background(), st, run)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	want := filepath.Join(dir, "published", "scale", "run-1", "full.csv")
	if len(files) != 1 || files[0].Location != want {
		t.Fatalf("files = %+v, want location %s", files, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("published file missing: %v", err)
	}
}

func TestUnpublish(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := filepath.Join(dir, "train.csv")
	if err := os.WriteFile(src, []byte("index|ementa1|ementa2|similarity\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := New(ctx, Config{Type: TypeLocal, LocalPath: filepath.Join(dir, "published")})
	if err != nil {
		t.Fatal(err)
	}

	run := &domain.Run{ID: "run-2", Variant: "binary", Files: []domain.RunFile{
		{Split: "train", Path: src},
		{Split: "dev", Path: filepath.Join(dir, "dev.csv")},
	}}
	published, err := Publish(ctx, st, &domain.Run{ID: run.ID, Variant: run.Variant, Files: run.Files[:1]})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	run.Files[0] = published[0]

	n, err := Unpublish(ctx, st, run)
	if err != nil {
		t.Fatalf("Unpublish: %v", err)
	}
	if n != 1 {
		t.Errorf("removed %d files, want 1 (dev was never published)", n)
	}
	if _, err := os.Stat(published[0].Location); !os.IsNotExist(err) {
		t.Errorf("published file still present: %v", err)
	}
}

func TestNew(t *testing.T) {
	st, err := New(context.Background(), Config{Type: TypeNone})
	if err != nil || st != nil {
		t.Errorf("New(none) = %v, %v; want nil, nil", st, err)
	}
	if _, err := New(context.Background(), Config{Type: "ftp"}); err == nil {
		t.Error("expected error for unknown storage type")
	}
}

func TestObjectKeyAndContentType(t *testing.T) {
	if got := ObjectKey("abc", "triplet", "/out/sts/triplet/dev set.csv"); got != "triplet/abc/dev_set.csv" {
		t.Errorf("ObjectKey = %q", got)
	}
	tests := map[string]string{
		"a/b.csv":    "text/csv; charset=utf-8",
		"corpus.txt": "text/plain; charset=utf-8",
		"blob":       "application/octet-stream",
	}
	for key, want := range tests {
		if got := contentType(key); got != want {
			t.Errorf("contentType(%q) = %q, want %q", key, got, want)
		}
	}
}
