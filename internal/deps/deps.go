package deps

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Requirement defines an external dependency dcmsort relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// DCMTKRequirements lists the DCMTK binaries dcmsort shells out to. When
// binDir is non-empty the commands are resolved against it instead of PATH.
func DCMTKRequirements(binDir string) []Requirement {
	resolve := func(name string) string {
		if binDir == "" {
			return name
		}
		return filepath.Join(binDir, name)
	}
	return []Requirement{
		{Name: "dcmsend", Command: resolve("dcmsend"), Description: "DICOM network transfer (required for --send)"},
		{Name: "dcmcrle", Command: resolve("dcmcrle"), Description: "RLE compression (required for --compress)", Optional: true},
		{Name: "dcmdrle", Command: resolve("dcmdrle"), Description: "RLE decompression (required for --decompress)", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
