package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/nwaples/rardecode"
)

func expandZip(archivePath, destDir string) (int, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("open zip: %w", err)
	}
	defer reader.Close()

	entries := 0
	for _, file := range reader.File {
		target, err := entryPath(destDir, file.Name)
		if err != nil {
			return entries, err
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return entries, err
			}
			continue
		}
		in, err := file.Open()
		if err != nil {
			return entries, fmt.Errorf("open zip entry %s: %w", file.Name, err)
		}
		err = writeEntry(target, in)
		in.Close()
		if err != nil {
			return entries, err
		}
		entries++
	}
	return entries, nil
}

func expandTar(archivePath, destDir, suffix string) (int, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	switch suffix {
	case ".tar.gz", ".tgz":
		gz, err := gzip.NewReader(file)
		if err != nil {
			return 0, fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close()
		reader = gz
	case ".tar.bz2", ".tbz":
		reader = bzip2.NewReader(file)
	case ".tar.zst":
		zr, err := zstd.NewReader(file)
		if err != nil {
			return 0, fmt.Errorf("open zstd stream: %w", err)
		}
		defer zr.Close()
		reader = zr
	}

	entries := 0
	tr := tar.NewReader(reader)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return entries, fmt.Errorf("read tar entry: %w", err)
		}
		target, err := entryPath(destDir, header.Name)
		if err != nil {
			return entries, err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return entries, err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr); err != nil {
				return entries, err
			}
			entries++
		}
	}
}

func expandRar(archivePath, destDir string) (int, error) {
	reader, err := rardecode.OpenReader(archivePath, "")
	if err != nil {
		return 0, fmt.Errorf("open rar: %w", err)
	}
	defer reader.Close()

	entries := 0
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return entries, fmt.Errorf("read rar entry: %w", err)
		}
		target, err := entryPath(destDir, header.Name)
		if err != nil {
			return entries, err
		}
		if header.IsDir {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return entries, err
			}
			continue
		}
		if err := writeEntry(target, reader); err != nil {
			return entries, err
		}
		entries++
	}
}

func writeEntry(target string, in io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
