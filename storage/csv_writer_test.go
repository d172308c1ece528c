package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"annonces-abidjan/models"
)

func TestCSVWriterAppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "raw.csv")
	raw := []*models.RawListing{
		{Source: "Tonkro.ci", URL: "https://tonkro.ci/annonce/1", Title: "Villa", RawPrice: "120 000 000 FCFA", ScrapedAt: time.Now()},
	}

	for i := 0; i < 2; i++ {
		w, err := NewCSVWriter(path)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if err := w.WriteRaw(raw); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want header + 2", len(rows))
	}
	if rows[0][0] != "source" || rows[1][3] != "120 000 000 FCFA" {
		t.Errorf("unexpected rows: %v", rows[:2])
	}
}
