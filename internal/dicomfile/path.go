package dicomfile

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Extension is appended to every placed record.
const Extension = ".dcm"

// Sanitize replaces every character that is not an ASCII letter or digit
// with an underscore. It is pure and deterministic: identical header values
// always yield identical path segments, which is what makes a destination
// collision mean "same logical record" across re-runs.
func Sanitize(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// NewUniqueID returns a freshly generated random identifier for records that
// carry no instance token. It must stay non-deterministic: the collision
// skip in the engine is purely path based, and a deterministic generator
// could silently drop distinct records that agree on every other field.
func NewUniqueID() string {
	return uuid.NewString()
}

// BuildPath assembles the relative destination path for a record:
//
//	Subject/Category_StudyLabel_StudyDate/SeriesIndex/InstanceIndex_uniqueID.dcm
//
// Every segment is sanitized independently. The layout is a durable external
// contract; downstream tooling depends on it byte for byte.
func BuildPath(fields Fields, uniqueID string) string {
	subject := Sanitize(fields.Subject)
	study := Sanitize(fields.Category) + "_" + Sanitize(fields.StudyLabel) + "_" + Sanitize(fields.StudyDate)
	series := Sanitize(fields.SeriesIndex)
	filename := Sanitize(fields.InstanceIndex) + "_" + uniqueID + Extension
	return filepath.Join(subject, study, series, filename)
}
