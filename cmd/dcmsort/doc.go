// Command dcmsort classifies the DICOM files under a source directory and
// copies them into a deterministic Subject/Study/Series hierarchy, optionally
// expanding archives first, transcoding pixel data, and transmitting the
// result to a configured PACS node.
package main
