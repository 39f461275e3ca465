package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write zip file: %v", err)
	}
}

func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		header := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}
		if err := tw.WriteHeader(header); err != nil {
			t.Fatalf("write tar header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("write tar entry: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write tar.gz file: %v", err)
	}
}

func TestExpandAllUnpacksZip(t *testing.T) {
	root := t.TempDir()
	writeZip(t, filepath.Join(root, "scans.zip"), map[string]string{
		"a/scan1.dcm": "one",
		"scan2.dcm":   "two",
	})

	expanded, err := ExpandAll(root, nil, nil)
	if err != nil {
		t.Fatalf("ExpandAll returned error: %v", err)
	}
	if expanded != 1 {
		t.Fatalf("expected 1 archive expanded, got %d", expanded)
	}

	data, err := os.ReadFile(filepath.Join(root, "scans", "a", "scan1.dcm"))
	if err != nil {
		t.Fatalf("read expanded entry: %v", err)
	}
	if string(data) != "one" {
		t.Fatalf("unexpected entry contents: %q", data)
	}
}

func TestExpandAllUnpacksTarGzIntoStemDirectory(t *testing.T) {
	root := t.TempDir()
	writeTarGz(t, filepath.Join(root, "study.tar.gz"), map[string]string{
		"scan.dcm": "payload",
	})

	if _, err := ExpandAll(root, nil, nil); err != nil {
		t.Fatalf("ExpandAll returned error: %v", err)
	}

	// The expansion directory strips only the final extension.
	if _, err := os.Stat(filepath.Join(root, "study.tar", "scan.dcm")); err != nil {
		t.Fatalf("expected entry under study.tar/: %v", err)
	}
}

func TestExpandAllSkipsEmptyAndInvalidArchives(t *testing.T) {
	root := t.TempDir()
	writeZip(t, filepath.Join(root, "empty.zip"), map[string]string{})
	if err := os.WriteFile(filepath.Join(root, "broken.zip"), []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("write broken archive: %v", err)
	}

	expanded, err := ExpandAll(root, nil, nil)
	if err != nil {
		t.Fatalf("ExpandAll returned error: %v", err)
	}
	if expanded != 0 {
		t.Fatalf("expected no archives expanded, got %d", expanded)
	}
}

func TestExpandZipRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	writeZip(t, filepath.Join(root, "evil.zip"), map[string]string{
		"../escape.txt": "bad",
	})

	if _, err := expandZip(filepath.Join(root, "evil.zip"), filepath.Join(root, "evil")); err == nil {
		t.Fatal("expected traversal entry to be rejected")
	}
	if _, err := os.Stat(filepath.Join(root, "escape.txt")); err == nil {
		t.Fatal("traversal entry escaped the extraction directory")
	}
}

func TestIsArchive(t *testing.T) {
	cases := map[string]bool{
		"scans.zip":      true,
		"scans.TAR.GZ":   true,
		"scans.tbz":      true,
		"scans.tar.zst":  true,
		"scans.rar":      true,
		"scan.dcm":       false,
		"archive.tar.xz": false,
	}
	for path, want := range cases {
		if got := IsArchive(path); got != want {
			t.Fatalf("IsArchive(%q) = %v, want %v", path, got, want)
		}
	}
}
