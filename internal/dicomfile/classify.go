package dicomfile

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/GoogleCloudPlatform/go-dicom-parser/dicom"

	"dcmsort/internal/logging"
)

// Classifier decides whether files are DICOM compliant by attempting a
// header-only parse. Results are cached per path so the size-accounting pass
// and the copy pass do not read the same header twice. Not safe for
// concurrent use; the engine processes files sequentially.
type Classifier struct {
	logger *slog.Logger
	cache  map[string]bool
}

// NewClassifier constructs a classifier. The logger may be nil.
func NewClassifier(logger *slog.Logger) *Classifier {
	if logger != nil {
		logger = logger.With(logging.String("component", "classifier"))
	}
	return &Classifier{logger: logger, cache: map[string]bool{}}
}

// IsRecord reports whether the file at path parses as a DICOM file. It never
// returns an error: malformed files, permission denials, and read failures
// all classify as "not a record". Permission denials are logged distinctly so
// operators can tell them apart from ordinary non-DICOM files.
func (c *Classifier) IsRecord(path string) bool {
	if cached, ok := c.cache[path]; ok {
		return cached
	}
	result := c.classify(path)
	c.cache[path] = result
	return result
}

func (c *Classifier) classify(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			c.warn("permission denied", path, err)
		} else {
			c.warn("file unreadable", path, err)
		}
		return false
	}
	defer file.Close()

	// Creating the iterator reads the preamble, the DICM signature, and the
	// file meta group. That is enough to classify without touching pixel data.
	if _, err := dicom.NewDataElementIterator(file); err != nil {
		return false
	}
	return true
}

func (c *Classifier) warn(msg, path string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, logging.String("path", path), logging.Error(err))
}
