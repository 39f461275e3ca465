// Package journal persists per-file run dispositions in sqlite so operators
// can audit what a reorganization run did after it finished.
package journal
