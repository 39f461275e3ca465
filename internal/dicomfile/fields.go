package dicomfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/GoogleCloudPlatform/go-dicom-parser/dicom"
)

// UnknownValue is substituted for every header field absent from a record.
const UnknownValue = "Unknown"

// instanceTokenTag is the private element some upstream exporters use to stamp
// a pre-assigned unique instance token. Standard records do not carry it.
const instanceTokenTag = dicom.DataElementTag(0x00091001)

// Fields is the fixed tuple of header attributes used for placement.
type Fields struct {
	Subject       string
	Category      string
	StudyLabel    string
	StudyDate     string
	SeriesIndex   string
	InstanceIndex string
	// InstanceToken is empty unless the source embedded a unique token.
	InstanceToken string
}

// HasMandatory reports whether the fields required for placement are present.
func (f Fields) HasMandatory() bool {
	return f.Subject != UnknownValue && f.Category != UnknownValue
}

// ExtractFields reads the placement attributes from the record at path using
// a metadata-only parse; pixel data is referenced, never buffered. Missing
// attributes default to UnknownValue. When the parse fails partway the
// all-Unknown tuple is returned together with the error so callers can log
// the cause and still apply the mandatory-field gate.
func ExtractFields(path string) (Fields, error) {
	unknown := Fields{
		Subject:       UnknownValue,
		Category:      UnknownValue,
		StudyLabel:    UnknownValue,
		StudyDate:     UnknownValue,
		SeriesIndex:   UnknownValue,
		InstanceIndex: UnknownValue,
	}

	file, err := os.Open(path)
	if err != nil {
		return unknown, fmt.Errorf("open record: %w", err)
	}
	defer file.Close()

	ds, err := dicom.Parse(file, dicom.ReferenceBulkData(dicom.DefaultBulkDataDefinition))
	if err != nil {
		return unknown, fmt.Errorf("parse record header: %w", err)
	}

	return Fields{
		Subject:       elementString(ds, dicom.PatientNameTag),
		Category:      elementString(ds, dicom.ModalityTag),
		StudyLabel:    elementString(ds, dicom.StudyDescriptionTag),
		StudyDate:     elementString(ds, dicom.StudyDateTag),
		SeriesIndex:   elementString(ds, dicom.SeriesNumberTag),
		InstanceIndex: elementString(ds, dicom.InstanceNumberTag),
		InstanceToken: tokenString(ds),
	}, nil
}

func tokenString(ds *dicom.DataSet) string {
	value := elementString(ds, instanceTokenTag)
	if value == UnknownValue {
		return ""
	}
	return value
}

// elementString renders the first value of the element as a string, or
// UnknownValue when the element is absent or empty.
func elementString(ds *dicom.DataSet, tag dicom.DataElementTag) string {
	elem, ok := ds.Elements[tag]
	if !ok || elem == nil {
		return UnknownValue
	}
	switch values := elem.ValueField.(type) {
	case []string:
		for _, v := range values {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		}
	case []int16:
		if len(values) > 0 {
			return fmt.Sprintf("%d", values[0])
		}
	case []uint16:
		if len(values) > 0 {
			return fmt.Sprintf("%d", values[0])
		}
	case []int32:
		if len(values) > 0 {
			return fmt.Sprintf("%d", values[0])
		}
	case []uint32:
		if len(values) > 0 {
			return fmt.Sprintf("%d", values[0])
		}
	}
	return UnknownValue
}
