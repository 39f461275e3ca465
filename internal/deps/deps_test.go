package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
}

func TestDCMTKRequirementsResolveAgainstBinDir(t *testing.T) {
	reqs := DCMTKRequirements("/opt/dcmtk/bin")
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requirements, got %d", len(reqs))
	}
	if reqs[0].Command != filepath.Join("/opt/dcmtk/bin", "dcmsend") {
		t.Fatalf("unexpected dcmsend command: %q", reqs[0].Command)
	}
	if reqs[0].Optional {
		t.Fatal("dcmsend should be required")
	}

	bare := DCMTKRequirements("")
	if bare[1].Command != "dcmcrle" {
		t.Fatalf("expected bare command when no bin dir is set, got %q", bare[1].Command)
	}
}
