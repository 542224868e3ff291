package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"spendlens/internal/core"
)

func TestMemoryStoreReplaceAndList(t *testing.T) {
	r1, _ := core.NewRecord(core.Record{Supplier: "Acme", Category: "IT", Amount: 100, Date: "2023-01-15"})
	s := New([]core.Record{r1}, "snap-1")

	records, snapshotID, err := s.ListRecords(context.Background())
	if err != nil || len(records) != 1 || snapshotID != "snap-1" {
		t.Fatalf("unexpected list: records=%d snapshot=%q err=%v", len(records), snapshotID, err)
	}

	r2, _ := core.NewRecord(core.Record{Supplier: "Globex", Category: "HR", Amount: 250, Date: "2023-02-10"})
	if err := s.ReplaceRecords(context.Background(), []core.Record{r1, r2}, "snap-2"); err != nil {
		t.Fatalf("replace: %v", err)
	}

	records, snapshotID, _ = s.ListRecords(context.Background())
	if len(records) != 2 || snapshotID != "snap-2" {
		t.Fatalf("unexpected after replace: records=%d snapshot=%q", len(records), snapshotID)
	}
}

func TestMemoryStoreFilterSpecRoundTrip(t *testing.T) {
	s := New(nil, "snap-1")

	data, err := s.LoadFilterSpec(context.Background())
	if err != nil || data != nil {
		t.Fatalf("expected nil spec on fresh store, got %v err=%v", data, err)
	}

	payload := []byte(`{"categories":["IT"]}`)
	if err := s.SaveFilterSpec(context.Background(), payload); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err = s.LoadFilterSpec(context.Background())
	if err != nil || string(data) != string(payload) {
		t.Fatalf("unexpected spec: %q err=%v", data, err)
	}
}

func TestNewFromFileSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed_records.txt")
	content := "# supplier;category;subcategory;amount;date;location\n" +
		"Acme;IT;Hardware;1200.50;2023-01-15;Berlin\n" +
		"missing;fields\n" +
		"Globex;HR;;abc;2023-02-10;Rome\n" +
		"Globex;HR;;300;2023-02-10;Rome\n" +
		"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s := NewFromFile(path)
	records, _, _ := s.ListRecords(context.Background())
	if len(records) != 2 {
		t.Fatalf("expected 2 valid records, got %d", len(records))
	}
	if records[0].Supplier != "Acme" || records[0].Amount != 1200.50 {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].Subcategory != core.DefaultSubcategory {
		t.Fatalf("expected default subcategory, got %q", records[1].Subcategory)
	}
}

func TestNewFromFileMissingFile(t *testing.T) {
	s := NewFromFile(filepath.Join(t.TempDir(), "absent.txt"))
	records, _, err := s.ListRecords(context.Background())
	if err != nil || len(records) != 0 {
		t.Fatalf("expected empty store, got %d records err=%v", len(records), err)
	}
}
