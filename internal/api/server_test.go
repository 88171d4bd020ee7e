package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/pbaille/legalsts/internal/domain"
	"github.com/pbaille/legalsts/internal/store"
)

func newServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return New(st, ":0", nil), st
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newServer(t)
	rec := get(t, srv.Handler(), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestRuns(t *testing.T) {
	srv, st := newServer(t)
	run := &domain.Run{
		Pipeline: domain.PipelineSTS,
		Variant:  "binary",
		Samples:  4,
		Files:    []domain.RunFile{{Split: "full", Path: "full.csv", Rows: 4}},
	}
	if err := st.AddRun(run); err != nil {
		t.Fatal(err)
	}
	if err := st.AddRun(&domain.Run{Pipeline: domain.PipelineSTS, Variant: "scale"}); err != nil {
		t.Fatal(err)
	}
	h := srv.Handler()

	t.Run("list filtered by variant", func(t *testing.T) {
		rec := get(t, h, "/runs?variant=binary&limit=5")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var body struct {
			Runs  []domain.Run `json:"runs"`
			Limit int          `json:"limit"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if len(body.Runs) != 1 || body.Runs[0].ID != run.ID || body.Limit != 5 {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("get by prefix", func(t *testing.T) {
		rec := get(t, h, "/runs/"+run.ID[:8])
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		var got domain.Run
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		if got.ID != run.ID || len(got.Files) != 1 || got.Files[0].Rows != 4 {
			t.Errorf("run = %+v", got)
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		if rec := get(t, h, "/runs/zzzz"); rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestVariants(t *testing.T) {
	srv, _ := newServer(t)
	rec := get(t, srv.Handler(), "/variants")
	var body struct {
		Variants []VariantInfo `json:"variants"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, v := range body.Variants {
		names[v.Name] = true
	}
	for _, want := range []string{"scale", "triplet", "binary", "batch-triplet", "benchmark", "pairs"} {
		if !names[want] {
			t.Errorf("variant %s missing from %v", want, body.Variants)
		}
	}
}

func TestGetRun_OlderThanRecentPage(t *testing.T) {
	srv, st := newServer(t)
	first := &domain.Run{Pipeline: domain.PipelineSTS, Variant: "scale"}
	if err := st.AddRun(first); err != nil {
		t.Fatal(err)
	}
	// 121 hex ids: at least two share their first character.
	byFirst := map[byte]int{first.ID[0]: 1}
	for i := 0; i < 120; i++ {
		run := &domain.Run{Pipeline: domain.PipelineSTS, Variant: "binary"}
		if err := st.AddRun(run); err != nil {
			t.Fatal(err)
		}
		byFirst[run.ID[0]]++
	}

	rec := get(t, srv.Handler(), "/runs/"+first.ID[:13])
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got domain.Run
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.ID != first.ID {
		t.Errorf("got run %s, want %s", got.ID, first.ID)
	}

	for c, n := range byFirst {
		if n < 2 {
			continue
		}
		if rec := get(t, srv.Handler(), "/runs/"+string(c)); rec.Code != http.StatusConflict {
			t.Errorf("ambiguous prefix %q: status = %d, want 409", c, rec.Code)
		}
		break
	}
}
