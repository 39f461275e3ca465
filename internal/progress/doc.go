// Package progress defines the reporter interface the pipeline emits walk
// progress through, plus a terminal progress bar implementation.
package progress
