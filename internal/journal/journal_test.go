package journal

import (
	"context"
	"path/filepath"
	"testing"

	"dcmsort/internal/sorter"
)

func TestJournalRecordsRun(t *testing.T) {
	ctx := context.Background()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"), nil)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer store.Close()

	recorder, err := store.BeginRun(ctx, "/data/incoming", "/data/sorted")
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}
	recorder.Record(ctx, "/data/incoming/a.dcm", "/data/sorted/S1/MR_Unknown_Unknown/1/1_x.dcm", sorter.DispositionCopied, "")
	recorder.Record(ctx, "/data/incoming/b.dcm", "", sorter.DispositionMissingFields, "no subject")
	if err := recorder.Finish(ctx, true); err != nil {
		t.Fatalf("finish run: %v", err)
	}

	run, files, err := store.LatestRun(ctx)
	if err != nil {
		t.Fatalf("latest run: %v", err)
	}
	if run.Source != "/data/incoming" || run.Destination != "/data/sorted" {
		t.Fatalf("unexpected run row: %+v", run)
	}
	if !run.Success {
		t.Fatal("expected run marked successful")
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 file rows, got %d", len(files))
	}
	if files[0].Disposition != string(sorter.DispositionCopied) {
		t.Fatalf("unexpected first disposition: %q", files[0].Disposition)
	}
	if files[1].Detail != "no subject" {
		t.Fatalf("unexpected detail: %q", files[1].Detail)
	}
}

func TestLatestRunPicksNewest(t *testing.T) {
	ctx := context.Background()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"), nil)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer store.Close()

	first, err := store.BeginRun(ctx, "/old", "/old-dest")
	if err != nil {
		t.Fatalf("begin first run: %v", err)
	}
	_ = first.Finish(ctx, false)

	second, err := store.BeginRun(ctx, "/new", "/new-dest")
	if err != nil {
		t.Fatalf("begin second run: %v", err)
	}
	second.Record(ctx, "/new/a.dcm", "/new-dest/a.dcm", sorter.DispositionExists, "")
	_ = second.Finish(ctx, true)

	run, files, err := store.LatestRun(ctx)
	if err != nil {
		t.Fatalf("latest run: %v", err)
	}
	if run.Source != "/new" {
		t.Fatalf("expected newest run, got %+v", run)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file row, got %d", len(files))
	}
}
