package sorter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"dcmsort/internal/dicomfile"
	"dcmsort/internal/fileutil"
	"dcmsort/internal/logging"
	"dcmsort/internal/progress"
	"dcmsort/internal/services"
)

// Disposition labels what the engine did with a single record.
type Disposition string

const (
	DispositionCopied        Disposition = "copied"
	DispositionExists        Disposition = "exists"
	DispositionMissingFields Disposition = "missing-fields"
	DispositionFailed        Disposition = "failed"
)

// Ledger receives the per-record dispositions of a run. Implementations must
// tolerate being called once per record in walk order.
type Ledger interface {
	Record(ctx context.Context, sourcePath, destPath string, disposition Disposition, detail string)
}

// Engine walks a source tree, classifies DICOM compliant files, and copies
// them into the hierarchical destination layout. It owns the run invariants:
// at most one writer per destination path, idempotent re-runs, and graceful
// degradation on per-file failures.
type Engine struct {
	logger      *slog.Logger
	classifier  *dicomfile.Classifier
	resolver    ConflictResolver
	reporter    progress.Reporter
	ledger      Ledger
	newUniqueID func() string
}

// Option configures the engine.
type Option func(*Engine)

// WithReporter attaches a progress reporter.
func WithReporter(reporter progress.Reporter) Option {
	return func(e *Engine) {
		if reporter != nil {
			e.reporter = reporter
		}
	}
}

// WithLedger attaches a run ledger.
func WithLedger(ledger Ledger) Option {
	return func(e *Engine) {
		e.ledger = ledger
	}
}

// WithUniqueIDSource overrides the unique id generator (used in tests). The
// production generator must stay random; the collision skip is purely path
// based and a deterministic generator could silently drop distinct records.
func WithUniqueIDSource(source func() string) Option {
	return func(e *Engine) {
		if source != nil {
			e.newUniqueID = source
		}
	}
}

// New constructs an engine. The resolver decides what happens when the
// destination tree already exists.
func New(logger *slog.Logger, classifier *dicomfile.Classifier, resolver ConflictResolver, opts ...Option) *Engine {
	if logger != nil {
		logger = logger.With(logging.String("component", "sorter"))
	} else {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	engine := &Engine{
		logger:      logger,
		classifier:  classifier,
		resolver:    resolver,
		reporter:    progress.Nop(),
		newUniqueID: dicomfile.NewUniqueID,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Run reorganizes the DICOM compliant files under source into destination.
// Both paths must already be absolute. Per-file failures are counted and the
// walk continues; only user cancellation and precondition failures return an
// error.
func (e *Engine) Run(ctx context.Context, source, destination string) (Outcome, error) {
	var out Outcome

	info, err := os.Stat(source)
	if err != nil || !info.IsDir() {
		return out, services.Wrap(services.ErrValidation, "sorting", "check source", fmt.Sprintf("Source directory %q does not exist", source), err)
	}

	// One engine per destination at a time. The lock lives next to the
	// destination so a forced fresh start cannot delete it.
	lock := flock.New(destination + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return out, services.Wrap(services.ErrTransient, "sorting", "lock destination", "Failed to acquire destination lock", err)
	}
	if !locked {
		return out, services.Wrap(services.ErrValidation, "sorting", "lock destination", "Another dcmsort run is using this destination", nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if _, err := os.Stat(destination); err == nil {
		decision, err := e.resolver.Resolve(destination)
		if err != nil {
			return out, services.Wrap(services.ErrTransient, "sorting", "resolve destination conflict", "Failed to resolve destination conflict", err)
		}
		switch decision {
		case DecisionCancel:
			e.logger.Info("copy operation cancelled by operator", logging.String("destination", destination))
			return out, services.Wrap(services.ErrCancelled, "sorting", "resolve destination conflict", "Copy operation cancelled", nil)
		case DecisionDelete:
			if err := os.RemoveAll(destination); err != nil {
				return out, services.Wrap(services.ErrTransient, "sorting", "clear destination", "Failed to delete existing destination contents", err)
			}
			e.logger.Info("existing destination contents removed", logging.String("destination", destination))
		case DecisionAppend:
			e.logger.Info("appending to existing destination", logging.String("destination", destination))
		}
	}

	if err := os.MkdirAll(destination, 0o755); err != nil {
		return out, services.Wrap(services.ErrTransient, "sorting", "create destination", "Failed to create destination directory", err)
	}

	records, err := e.scan(ctx, source, &out)
	if err != nil {
		return out, err
	}

	e.reporter.StartPhase("Copying DICOM files", len(records))
	for _, path := range records {
		if err := ctx.Err(); err != nil {
			e.reporter.FinishPhase()
			return out, services.Wrap(services.ErrCancelled, "sorting", "copy files", "Run interrupted", err)
		}
		e.transfer(ctx, path, destination, &out)
		e.reporter.Advance(1)
	}
	e.reporter.FinishPhase()

	out.Success = true
	e.logger.Info("reorganization completed",
		logging.String("source", source),
		logging.String("destination", destination),
		logging.Int("scanned", out.Scanned),
		logging.Int("records", out.Records),
		logging.Int("copied", out.Copied),
		logging.Int("skipped_existing", out.SkippedExisting),
		logging.Int("skipped_missing_fields", out.SkippedMissingField),
		logging.Int("failed", out.Failed),
	)
	return out, nil
}

// scan walks the source tree once, counting every file and collecting the
// DICOM compliant subset in walk order.
func (e *Engine) scan(ctx context.Context, source string, out *Outcome) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(source, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			e.logger.Warn("walk error", logging.String("path", path), logging.Error(err))
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "sorting", "walk source", "Failed to walk source tree", err)
	}

	e.reporter.StartPhase("Scanning for DICOM files", len(paths))
	var records []string
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			e.reporter.FinishPhase()
			return nil, services.Wrap(services.ErrCancelled, "sorting", "scan source", "Run interrupted", err)
		}
		out.Scanned++
		if e.classifier.IsRecord(path) {
			out.Records++
			records = append(records, path)
		}
		e.reporter.Advance(1)
	}
	e.reporter.FinishPhase()
	return records, nil
}

// transfer places one classified record. Failures are logged and counted,
// never propagated.
func (e *Engine) transfer(ctx context.Context, path, destination string, out *Outcome) {
	fields, err := dicomfile.ExtractFields(path)
	if err != nil {
		e.logger.Warn("field extraction failed", logging.String("path", path), logging.Error(err))
	}
	if !fields.HasMandatory() {
		e.logger.Warn("skipping file: missing PatientName or Modality", logging.String("path", path))
		out.SkippedMissingField++
		e.record(ctx, path, "", DispositionMissingFields, "missing PatientName or Modality")
		return
	}

	// The token comes from file content; sanitize it so it cannot add path
	// segments. Generated IDs are used verbatim.
	uniqueID := dicomfile.Sanitize(fields.InstanceToken)
	if uniqueID == "" {
		uniqueID = e.newUniqueID()
	}
	destPath := filepath.Join(destination, dicomfile.BuildPath(fields, uniqueID))

	if _, err := os.Stat(destPath); err == nil {
		e.logger.Debug("skipping file: already exists", logging.String("path", path), logging.String("destination", destPath))
		out.SkippedExisting++
		e.record(ctx, path, destPath, DispositionExists, "")
		return
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		e.logger.Error("failed to create destination directory", logging.String("path", destPath), logging.Error(err))
		out.Failed++
		e.record(ctx, path, destPath, DispositionFailed, err.Error())
		return
	}

	if err := e.copyRecord(path, destPath); err != nil {
		e.logger.Error("failed to copy record", logging.String("path", path), logging.String("destination", destPath), logging.Error(err))
		out.Failed++
		e.record(ctx, path, destPath, DispositionFailed, err.Error())
		return
	}

	e.logger.Debug("record copied", logging.String("path", path), logging.String("destination", destPath))
	out.Copied++
	e.record(ctx, path, destPath, DispositionCopied, "")
}

// copyRecord clears source write protection, copies, and retries exactly once
// on a permission error after forcing the source mode open.
func (e *Engine) copyRecord(src, dst string) error {
	if err := fileutil.ClearReadOnly(src); err != nil {
		e.logger.Warn("failed to clear read-only attribute", logging.String("path", src), logging.Error(err))
	}
	err := fileutil.CopyPreserving(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrPermission) {
		return err
	}
	e.logger.Warn("permission error during copy, retrying after chmod", logging.String("path", src), logging.Error(err))
	if chmodErr := os.Chmod(src, 0o777); chmodErr != nil {
		return fmt.Errorf("retry chmod: %w", chmodErr)
	}
	return fileutil.CopyPreserving(src, dst)
}

func (e *Engine) record(ctx context.Context, src, dst string, disposition Disposition, detail string) {
	if e.ledger == nil {
		return
	}
	e.ledger.Record(ctx, src, dst, disposition, detail)
}
