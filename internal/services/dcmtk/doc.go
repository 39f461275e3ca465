// Package dcmtk wraps the external DCMTK command line tools: dcmsend for
// network transfer to a PACS, and dcmcrle/dcmdrle for in-place pixel-data
// transcoding. Prefer this package over ad-hoc exec.Command usage when
// interacting with the toolset.
package dcmtk
