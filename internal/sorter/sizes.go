package sorter

import (
	"io/fs"
	"os"
	"path/filepath"

	"dcmsort/internal/dicomfile"
	"dcmsort/internal/progress"
	"dcmsort/internal/services"
)

// TreeSize reports the byte totals of a source tree.
type TreeSize struct {
	TotalBytes  int64
	RecordBytes int64
	Files       int
}

// MeasureTree walks root once and sums the size of all files and of the
// DICOM compliant subset. Purely informational; mutates nothing. The
// classification results land in the shared classifier cache so the copy
// pass does not re-read the same headers.
func MeasureTree(root string, classifier *dicomfile.Classifier, reporter progress.Reporter) (TreeSize, error) {
	if reporter == nil {
		reporter = progress.Nop()
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return TreeSize{}, services.Wrap(services.ErrTransient, "sizing", "walk source", "Failed to walk source tree", err)
	}

	size := TreeSize{Files: len(paths)}
	reporter.StartPhase("Calculating sizes", len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			reporter.Advance(1)
			continue
		}
		size.TotalBytes += info.Size()
		if classifier.IsRecord(path) {
			size.RecordBytes += info.Size()
		}
		reporter.Advance(1)
	}
	reporter.FinishPhase()
	return size, nil
}
