// Package services defines shared utilities consumed by the sorting pipeline
// and external tool integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent exit codes at the CLI boundary.
//   - Thin clients over external executables (see the dcmtk subpackage) so
//     pipeline code never depends on process-spawning details.
package services
