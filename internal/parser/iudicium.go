package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pbaille/legalsts/internal/text"
)

// Iudicium dump files, one JSON document per line.
const (
	iudiciumReports   = "AcordaosRelatorios.json"
	iudiciumVotes     = "AcordaosVotos.json"
	iudiciumDecisions = "DocumentosAcordaos.json"
)

type objectID struct {
	OID string `json:"$oid"`
}

type textDoc struct {
	ID    objectID `json:"_id"`
	Texto string   `json:"texto"`
}

type decisionDoc struct {
	ID      objectID `json:"_id"`
	Ementa  textDoc  `json:"ementa"`
	Acordao textDoc  `json:"acordao"`
}

// IudiciumResult counts the files written per folder.
type IudiciumResult map[string]int

// ParseIudicium converts the STF dumps found in dir into
// dir/{relatorio,votos,ementa,acordao}/<oid>.txt. Missing dumps are skipped.
func ParseIudicium(dir string, logger *slog.Logger) (IudiciumResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	result := IudiciumResult{}

	for _, job := range []struct {
		file, folder string
	}{
		{iudiciumReports, "relatorio"},
		{iudiciumVotes, "votos"},
	} {
		err := decodeLines(filepath.Join(dir, job.file), func(dec *json.Decoder) error {
			var doc textDoc
			if err := dec.Decode(&doc); err != nil {
				return err
			}
			return exportText(filepath.Join(dir, job.folder), doc.ID.OID, []string{doc.Texto}, result, job.folder)
		})
		if err != nil {
			return result, err
		}
		logger.Info("iudicium dump parsed", "file", job.file, "files", result[job.folder])
	}

	err := decodeLines(filepath.Join(dir, iudiciumDecisions), func(dec *json.Decoder) error {
		var doc decisionDoc
		if err := dec.Decode(&doc); err != nil {
			return err
		}
		oid := doc.ID.OID
		if err := exportText(filepath.Join(dir, "ementa"), oid, text.SplitEmenta(doc.Ementa.Texto), result, "ementa"); err != nil {
			return err
		}
		return exportText(filepath.Join(dir, "acordao"), oid, []string{doc.Acordao.Texto}, result, "acordao")
	})
	if err != nil {
		return result, err
	}
	logger.Info("iudicium dump parsed", "file", iudiciumDecisions, "files", result["ementa"]+result["acordao"])
	return result, nil
}

// decodeLines opens path and calls next until the stream is exhausted.
func decodeLines(path string, next func(*json.Decoder) error) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	for {
		err := next(dec)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
}

func exportText(dir, oid string, paragraphs []string, result IudiciumResult, folder string) error {
	if oid == "" {
		return nil
	}
	lines := text.CleanParagraphs(paragraphs)
	if len(lines) == 0 {
		return nil
	}
	if err := WriteLines(filepath.Join(dir, oid+".txt"), lines); err != nil {
		return err
	}
	result[folder]++
	return nil
}
