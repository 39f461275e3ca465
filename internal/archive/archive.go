package archive

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"dcmsort/internal/logging"
	"dcmsort/internal/progress"
	"dcmsort/internal/services"
)

// supportedSuffixes lists the archive formats the expander understands, in
// match order (longer suffixes first so ".tar.gz" wins over ".gz").
var supportedSuffixes = []string{
	".tar.gz", ".tar.bz2", ".tar.zst", ".tgz", ".tbz", ".tar", ".zip", ".rar",
}

// IsArchive reports whether path has a supported archive suffix.
func IsArchive(path string) bool {
	return matchSuffix(path) != ""
}

func matchSuffix(path string) string {
	lower := strings.ToLower(path)
	for _, suffix := range supportedSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return suffix
		}
	}
	return ""
}

// Scan returns every archive file under root in walk order.
func Scan(root string) ([]string, error) {
	var archives []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}
		if IsArchive(path) {
			archives = append(archives, path)
		}
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "unpacking", "scan archives", "Failed to scan for archives", err)
	}
	return archives, nil
}

// ExpandAll unpacks every archive found under root into a sibling directory
// named after the archive, producing plain files for the subsequent sorting
// scan. Invalid or empty archives are logged and skipped; per-archive
// failures never abort the pass. Returns the number of archives expanded.
func ExpandAll(root string, logger *slog.Logger, reporter progress.Reporter) (int, error) {
	if logger != nil {
		logger = logger.With(logging.String("component", "unpacker"))
	} else {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if reporter == nil {
		reporter = progress.Nop()
	}

	archives, err := Scan(root)
	if err != nil {
		return 0, err
	}

	expanded := 0
	reporter.StartPhase("Unpacking archives", len(archives))
	for _, archivePath := range archives {
		entries, err := expand(archivePath, extractDir(root, archivePath))
		switch {
		case err != nil:
			logger.Warn("failed to unpack archive", logging.String("path", archivePath), logging.Error(err))
		case entries == 0:
			logger.Warn("skipping empty archive", logging.String("path", archivePath))
		default:
			logger.Info("archive unpacked", logging.String("path", archivePath), logging.Int("entries", entries))
			expanded++
		}
		reporter.Advance(1)
	}
	reporter.FinishPhase()
	return expanded, nil
}

// extractDir names the expansion directory after the archive with its last
// extension stripped, so "scans.tar.gz" lands in "<root>/scans.tar/".
func extractDir(root, archivePath string) string {
	base := filepath.Base(archivePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(root, stem)
}

func expand(archivePath, destDir string) (int, error) {
	switch suffix := matchSuffix(archivePath); suffix {
	case ".zip":
		return expandZip(archivePath, destDir)
	case ".rar":
		return expandRar(archivePath, destDir)
	case ".tar", ".tar.gz", ".tgz", ".tar.bz2", ".tbz", ".tar.zst":
		return expandTar(archivePath, destDir, suffix)
	default:
		return 0, fmt.Errorf("unsupported archive format: %s", archivePath)
	}
}

// entryPath resolves an archive entry name inside destDir, rejecting
// absolute names and parent traversal.
func entryPath(destDir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry escapes extraction directory: %q", name)
	}
	return filepath.Join(destDir, cleaned), nil
}
