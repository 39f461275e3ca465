package dicomfile

import (
	"path/filepath"
	"testing"

	"dcmsort/internal/testsupport"
)

func TestIsRecordAcceptsGeneratedRecord(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteRecord(t, dir, "valid.dcm", testsupport.RecordSpec{
		Subject:  "John^Doe",
		Category: "CT",
	})

	classifier := NewClassifier(nil)
	if !classifier.IsRecord(path) {
		t.Fatal("expected generated record to classify as DICOM")
	}
}

func TestIsRecordRejectsJunk(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteJunk(t, dir, "readme.txt")

	classifier := NewClassifier(nil)
	if classifier.IsRecord(path) {
		t.Fatal("expected junk file to classify as non-DICOM")
	}
}

func TestIsRecordRejectsMissingFile(t *testing.T) {
	classifier := NewClassifier(nil)
	if classifier.IsRecord(filepath.Join(t.TempDir(), "absent.dcm")) {
		t.Fatal("expected missing file to classify as non-DICOM")
	}
}

func TestIsRecordCachesResult(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteJunk(t, dir, "junk.bin")

	classifier := NewClassifier(nil)
	if classifier.IsRecord(path) {
		t.Fatal("expected junk to classify as non-DICOM")
	}
	if got, ok := classifier.cache[path]; !ok || got {
		t.Fatalf("expected cached false result, got ok=%v value=%v", ok, got)
	}
	// Second call must hit the cache, not re-read the file.
	if classifier.IsRecord(path) {
		t.Fatal("expected cached result to remain false")
	}
}
