package journal

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"dcmsort/internal/logging"
	"dcmsort/internal/sorter"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	source TEXT NOT NULL,
	destination TEXT NOT NULL,
	success INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS files (
	run_id INTEGER NOT NULL REFERENCES runs(id),
	source_path TEXT NOT NULL,
	dest_path TEXT NOT NULL,
	disposition TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_files_run ON files(run_id);
`

// Store persists per-run, per-file dispositions in a sqlite database so a
// run can be audited after the fact.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Run is one recorded reorganization run.
type Run struct {
	ID          int64
	StartedAt   time.Time
	Source      string
	Destination string
	Success     bool
}

// FileRow is one recorded file disposition.
type FileRow struct {
	SourcePath  string
	DestPath    string
	Disposition string
	Detail      string
}

// Open creates or opens the journal database at path. The logger may be nil.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger != nil {
		logger = logger.With(logging.String("component", "journal"))
	} else {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize journal schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun opens a new run row and returns a recorder bound to it.
func (s *Store) BeginRun(ctx context.Context, source, destination string) (*RunRecorder, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, source, destination) VALUES (?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), source, destination,
	)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	return &RunRecorder{store: s, runID: id}, nil
}

// RunRecorder records file dispositions for one run. It implements
// sorter.Ledger; recording is best effort and never interrupts a run.
type RunRecorder struct {
	store *Store
	runID int64
}

func (r *RunRecorder) Record(ctx context.Context, sourcePath, destPath string, disposition sorter.Disposition, detail string) {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO files (run_id, source_path, dest_path, disposition, detail) VALUES (?, ?, ?, ?, ?)`,
		r.runID, sourcePath, destPath, string(disposition), detail,
	)
	if err != nil {
		r.store.logger.Warn("failed to record file disposition", logging.String("path", sourcePath), logging.Error(err))
	}
}

// Finish marks the run complete.
func (r *RunRecorder) Finish(ctx context.Context, success bool) error {
	_, err := r.store.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, success = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), boolToInt(success), r.runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// LatestRun returns the most recent run together with its file rows.
func (s *Store) LatestRun(ctx context.Context) (Run, []FileRow, error) {
	var run Run
	var startedAt string
	var success int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, source, destination, success FROM runs ORDER BY id DESC LIMIT 1`,
	).Scan(&run.ID, &startedAt, &run.Source, &run.Destination, &success)
	if err != nil {
		return Run{}, nil, fmt.Errorf("load latest run: %w", err)
	}
	run.Success = success != 0
	if ts, parseErr := time.Parse(time.RFC3339, startedAt); parseErr == nil {
		run.StartedAt = ts
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT source_path, dest_path, disposition, detail FROM files WHERE run_id = ? ORDER BY rowid`,
		run.ID,
	)
	if err != nil {
		return Run{}, nil, fmt.Errorf("load run files: %w", err)
	}
	defer rows.Close()

	var files []FileRow
	for rows.Next() {
		var row FileRow
		if err := rows.Scan(&row.SourcePath, &row.DestPath, &row.Disposition, &row.Detail); err != nil {
			return Run{}, nil, fmt.Errorf("scan run file: %w", err)
		}
		files = append(files, row)
	}
	if err := rows.Err(); err != nil {
		return Run{}, nil, fmt.Errorf("iterate run files: %w", err)
	}
	return run, files, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ sorter.Ledger = (*RunRecorder)(nil)
