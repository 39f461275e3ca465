// Package sorter implements the reorganization engine: walking a source
// tree, classifying DICOM compliant files, extracting placement fields, and
// copying each record to its collision-free destination path. The engine
// owns the run invariants (at most one writer per destination path,
// idempotent re-runs, graceful degradation on per-file failures) and
// resolves destination conflicts through an injected ConflictResolver.
package sorter
