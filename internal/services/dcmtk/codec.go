package dcmtk

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"dcmsort/internal/logging"
	"dcmsort/internal/progress"
	"dcmsort/internal/services"
)

// CodecOutcome reports the result of a directory-wide transcoding pass.
type CodecOutcome struct {
	Processed int
	Failed    int
}

// CompressDirectory RLE-compresses every .dcm file under dir in place.
func (c *Client) CompressDirectory(ctx context.Context, dir string, logger *slog.Logger, reporter progress.Reporter) (CodecOutcome, error) {
	return c.transcodeDirectory(ctx, dir, "Compressing DICOM files", c.Compress, logger, reporter)
}

// DecompressDirectory decompresses every .dcm file under dir in place.
func (c *Client) DecompressDirectory(ctx context.Context, dir string, logger *slog.Logger, reporter progress.Reporter) (CodecOutcome, error) {
	return c.transcodeDirectory(ctx, dir, "Decompressing DICOM files", c.Decompress, logger, reporter)
}

// transcodeDirectory applies op to every .dcm file under dir. Per-file
// failures are logged and counted; the pass always completes.
func (c *Client) transcodeDirectory(ctx context.Context, dir, phase string, op func(context.Context, string) error, logger *slog.Logger, reporter progress.Reporter) (CodecOutcome, error) {
	if logger != nil {
		logger = logger.With(logging.String("component", "codec"))
	} else {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if reporter == nil {
		reporter = progress.Nop()
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".dcm") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return CodecOutcome{}, services.Wrap(services.ErrTransient, "transcoding", "walk directory", "Failed to walk directory", err)
	}

	var out CodecOutcome
	reporter.StartPhase(phase, len(paths))
	for _, path := range paths {
		if ctxErr := ctx.Err(); ctxErr != nil {
			reporter.FinishPhase()
			return out, services.Wrap(services.ErrCancelled, "transcoding", "process files", "Run interrupted", ctxErr)
		}
		if err := op(ctx, path); err != nil {
			logger.Warn("transcode failed", logging.String("path", path), logging.Error(err))
			out.Failed++
		} else {
			logger.Debug("transcoded", logging.String("path", path))
			out.Processed++
		}
		reporter.Advance(1)
	}
	reporter.FinishPhase()

	logger.Info("transcoding pass completed",
		logging.String("directory", dir),
		logging.Int("processed", out.Processed),
		logging.Int("failed", out.Failed),
	)
	return out, nil
}
