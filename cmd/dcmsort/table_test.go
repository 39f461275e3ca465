package main

import (
	"strings"
	"testing"
)

func TestRenderTableRightAlignsRequestedColumn(t *testing.T) {
	out := renderTable([]string{"Counter", "Value"}, [][]string{{"Copied", "3"}}, 1)
	if !strings.Contains(out, "Counter") || !strings.Contains(out, "Copied") {
		t.Fatalf("missing table content:\n%s", out)
	}
	if !strings.Contains(out, "│     3 │") {
		t.Fatalf("expected value right aligned under the Value header:\n%s", out)
	}
}

func TestRenderTableDefaultsToLeftAlignment(t *testing.T) {
	out := renderTable([]string{"Alias", "Address"}, [][]string{{"main", "host:104"}})
	if !strings.Contains(out, "│ main ") {
		t.Fatalf("expected left aligned cell:\n%s", out)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}})
	if !strings.Contains(out, "only") {
		t.Fatalf("expected partial row rendered:\n%s", out)
	}
}

func TestRenderTableEmptyHeaders(t *testing.T) {
	if out := renderTable(nil, nil); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
