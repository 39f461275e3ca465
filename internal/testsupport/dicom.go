package testsupport

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// explicitVRLittleEndian is the transfer syntax used for generated records.
const explicitVRLittleEndian = "1.2.840.10008.1.2.1"

// Element is a single data element written into a generated DICOM file.
type Element struct {
	Group uint16
	Elem  uint16
	VR    string
	Value string
}

// RecordSpec describes the header fields of a generated DICOM record. Empty
// fields are omitted from the file entirely.
type RecordSpec struct {
	Subject       string
	Category      string
	StudyLabel    string
	StudyDate     string
	SeriesIndex   string
	InstanceIndex string
	InstanceToken string
}

// WriteRecord generates a minimal DICOM file (preamble, DICM signature, meta
// group, explicit VR little endian data set) carrying the given header
// fields and returns its path.
func WriteRecord(t *testing.T, dir, name string, spec RecordSpec) string {
	t.Helper()

	var elements []Element
	add := func(group, elem uint16, vr, value string) {
		if value != "" {
			elements = append(elements, Element{Group: group, Elem: elem, VR: vr, Value: value})
		}
	}
	// Elements must appear in ascending tag order.
	add(0x0008, 0x0020, "DA", spec.StudyDate)
	add(0x0008, 0x0060, "CS", spec.Category)
	add(0x0008, 0x1030, "LO", spec.StudyLabel)
	add(0x0009, 0x1001, "LO", spec.InstanceToken)
	add(0x0010, 0x0010, "PN", spec.Subject)
	add(0x0020, 0x0011, "IS", spec.SeriesIndex)
	add(0x0020, 0x0013, "IS", spec.InstanceIndex)

	return WriteFile(t, dir, name, elements...)
}

// WriteFile generates a DICOM file from raw elements and returns its path.
func WriteFile(t *testing.T, dir, name string, elements ...Element) string {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(make([]byte, 128))
	buf.WriteString("DICM")

	meta := encodeElement(Element{Group: 0x0002, Elem: 0x0010, VR: "UI", Value: explicitVRLittleEndian})
	groupLength := encodeGroupLength(uint32(len(meta)))
	buf.Write(groupLength)
	buf.Write(meta)

	for _, elem := range elements {
		buf.Write(encodeElement(elem))
	}

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create record directory: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write record %s: %v", path, err)
	}
	return path
}

// WriteJunk writes a file that is definitely not DICOM and returns its path.
func WriteJunk(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte("not a dicom file"), 0o644); err != nil {
		t.Fatalf("write junk file %s: %v", path, err)
	}
	return path
}

func encodeGroupLength(remaining uint32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint16(0x0002))
	binary.Write(&buf, binary.LittleEndian, uint16(0x0000))
	buf.WriteString("UL")
	binary.Write(&buf, binary.LittleEndian, uint16(4))
	binary.Write(&buf, binary.LittleEndian, remaining)
	return buf.Bytes()
}

func encodeElement(elem Element) []byte {
	value := []byte(elem.Value)
	if len(value)%2 == 1 {
		// DICOM values are padded to even length; UI pads with NUL, text
		// VRs pad with space.
		if elem.VR == "UI" {
			value = append(value, 0x00)
		} else {
			value = append(value, ' ')
		}
	}
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, elem.Group)
	binary.Write(&buf, binary.LittleEndian, elem.Elem)
	buf.WriteString(elem.VR)
	binary.Write(&buf, binary.LittleEndian, uint16(len(value)))
	buf.Write(value)
	return buf.Bytes()
}
