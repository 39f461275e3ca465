package sorter

import (
	"os"
	"testing"

	"dcmsort/internal/dicomfile"
	"dcmsort/internal/testsupport"
)

func TestMeasureTreeSplitsRecordBytes(t *testing.T) {
	root := t.TempDir()
	recordPath := testsupport.WriteRecord(t, root, "scan.dcm", testsupport.RecordSpec{
		Subject:  "John^Doe",
		Category: "CT",
	})
	junkPath := testsupport.WriteJunk(t, root, "notes.txt")

	recordInfo, err := os.Stat(recordPath)
	if err != nil {
		t.Fatalf("stat record: %v", err)
	}
	junkInfo, err := os.Stat(junkPath)
	if err != nil {
		t.Fatalf("stat junk: %v", err)
	}

	size, err := MeasureTree(root, dicomfile.NewClassifier(nil), nil)
	if err != nil {
		t.Fatalf("MeasureTree returned error: %v", err)
	}
	if size.Files != 2 {
		t.Fatalf("expected 2 files, got %d", size.Files)
	}
	if size.TotalBytes != recordInfo.Size()+junkInfo.Size() {
		t.Fatalf("unexpected total bytes: %d", size.TotalBytes)
	}
	if size.RecordBytes != recordInfo.Size() {
		t.Fatalf("unexpected record bytes: %d", size.RecordBytes)
	}
}

func TestMeasureTreeEmptyTree(t *testing.T) {
	size, err := MeasureTree(t.TempDir(), dicomfile.NewClassifier(nil), nil)
	if err != nil {
		t.Fatalf("MeasureTree returned error: %v", err)
	}
	if size.Files != 0 || size.TotalBytes != 0 || size.RecordBytes != 0 {
		t.Fatalf("expected zero sizes, got %+v", size)
	}
}
