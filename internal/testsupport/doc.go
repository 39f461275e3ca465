// Package testsupport provides helpers for generating minimal DICOM files
// used across package tests.
package testsupport
