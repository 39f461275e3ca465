// Package dicomfile wraps the DICOM parser with the three leaf concerns of
// the sorting pipeline: classifying files as DICOM compliant, extracting the
// placement field tuple from a record header, and building the sanitized
// destination path for a tuple.
package dicomfile
