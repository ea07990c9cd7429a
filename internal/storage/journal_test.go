package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestJournal_RecordAndCount(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "session.db")

	j, err := OpenJournal(dbPath)
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	defer j.Close()

	ctx := context.Background()

	if err := j.Record(ctx, "depth", "I1", 1, []byte(`{"instrument_key":"I1"}`)); err != nil {
		t.Fatalf("Record depth: %v", err)
	}
	if err := j.Record(ctx, "depth", "I1", 2, []byte(`{"instrument_key":"I1"}`)); err != nil {
		t.Fatalf("Record depth v2: %v", err)
	}
	if err := j.Record(ctx, "balance", "A1", 1, []byte(`{"account_key":"A1"}`)); err != nil {
		t.Fatalf("Record balance: %v", err)
	}

	total, err := j.Count(ctx, "")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}

	depths, err := j.Count(ctx, "depth")
	if err != nil {
		t.Fatalf("Count depth: %v", err)
	}
	if depths != 2 {
		t.Errorf("depth count = %d, want 2", depths)
	}
}
