package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dcmsort/internal/services"
	"dcmsort/internal/sorter"
	"dcmsort/internal/testsupport"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func isolateHome(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, "state"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
}

func TestRootRequiresActionFlag(t *testing.T) {
	_, err := executeCommand(t, "--source", t.TempDir())
	if err == nil {
		t.Fatal("expected error when no action flag is set")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
}

func TestRootRejectsDestinationAndSend(t *testing.T) {
	_, err := executeCommand(t, "--source", t.TempDir(), "--destination", "/tmp/x", "--send", "main")
	if err == nil || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateAllowsSourceOnlyActions(t *testing.T) {
	for name, opts := range map[string]*rootOptions{
		"compress":   {source: "/data", compress: true},
		"decompress": {source: "/data", decompress: true},
		"unzip":      {source: "/data", unzip: true},
	} {
		if err := opts.validate(); err != nil {
			t.Fatalf("%s without a destination should be a valid action: %v", name, err)
		}
	}
}

func TestValidateRejectsCompressWithDecompress(t *testing.T) {
	opts := &rootOptions{source: "/data", destination: "/out", compress: true, decompress: true}
	if err := opts.validate(); err == nil {
		t.Fatal("expected error for conflicting codec flags")
	}
}

func TestUnzipOnlyRunWithoutDestination(t *testing.T) {
	isolateHome(t)
	source := t.TempDir()
	testsupport.WriteJunk(t, source, "notes.txt")

	if _, err := executeCommand(t, "--source", source, "--unzip"); err != nil {
		t.Fatalf("unzip-only run failed: %v", err)
	}
}

func TestConflictResolverForStagingNeverPrompts(t *testing.T) {
	resolver, ok := conflictResolver(&rootOptions{}, true).(sorter.FixedResolver)
	if !ok || resolver.Decision != sorter.DecisionAppend {
		t.Fatalf("expected fixed append resolver for the staging directory, got %#v", resolver)
	}
	resolver, ok = conflictResolver(&rootOptions{assumeYes: true}, false).(sorter.FixedResolver)
	if !ok || resolver.Decision != sorter.DecisionDelete {
		t.Fatalf("expected fixed delete resolver for --yes, got %#v", resolver)
	}
}

func TestConfirmProceed(t *testing.T) {
	var out strings.Builder
	if !confirmProceed(strings.NewReader("yes\n"), &out) {
		t.Fatal("expected yes to proceed")
	}
	if confirmProceed(strings.NewReader("no\n"), &out) {
		t.Fatal("expected no to cancel")
	}
	if confirmProceed(strings.NewReader(""), &out) {
		t.Fatal("expected empty input to cancel")
	}
}

func TestRootRejectsMissingSource(t *testing.T) {
	isolateHome(t)
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	_, err := executeCommand(t, "--source", missing, "--destination", filepath.Join(t.TempDir(), "out"), "--nosize")
	if err == nil || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing source, got %v", err)
	}
}

func TestSendRequiresConfigFile(t *testing.T) {
	isolateHome(t)
	_, err := executeCommand(t, "--source", t.TempDir(), "--send", "main", "--nosize")
	if err == nil || !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSortEndToEnd(t *testing.T) {
	isolateHome(t)

	source := t.TempDir()
	testsupport.WriteRecord(t, source, "scan.dcm", testsupport.RecordSpec{
		Subject:       "John^Doe",
		Category:      "CT",
		StudyLabel:    "Chest",
		StudyDate:     "20240101",
		SeriesIndex:   "1",
		InstanceIndex: "1",
	})
	testsupport.WriteJunk(t, source, "notes.txt")
	destination := filepath.Join(t.TempDir(), "sorted")

	out, err := executeCommand(t, "--source", source, "--destination", destination, "--nosize")
	if err != nil {
		t.Fatalf("sort run failed: %v", err)
	}
	if !strings.Contains(out, "Copied") {
		t.Fatalf("expected outcome summary, got:\n%s", out)
	}

	seriesDir := filepath.Join(destination, "John_Doe", "CT_Chest_20240101", "1")
	entries, err := os.ReadDir(seriesDir)
	if err != nil {
		t.Fatalf("expected series directory: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one file in series directory, got %d", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "1_") || !strings.HasSuffix(name, ".dcm") {
		t.Fatalf("unexpected destination file name %q", name)
	}
}
