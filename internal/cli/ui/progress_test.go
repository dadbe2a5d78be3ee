package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, ProgressBarOptions{Width: 10, NoColor: true})

	bar.Update("types", 5, 10)

	output := buf.String()
	if !strings.Contains(output, "[█████░░░░░]") {
		t.Errorf("expected half filled bar, got %q", output)
	}
	if !strings.Contains(output, " 50% types 5/10") {
		t.Errorf("expected percentage and label, got %q", output)
	}
}

func TestProgressBarClampsToTotal(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, ProgressBarOptions{Width: 4, NoColor: true})

	bar.Update("pages", 7, 4)

	if !strings.Contains(buf.String(), "100% pages 4/4") {
		t.Errorf("expected clamped progress, got %q", buf.String())
	}
}

func TestProgressBarPhases(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, ProgressBarOptions{Width: 4, NoColor: true})

	bar.Update("namespaces", 1, 1)
	bar.Update("types", 1, 2)
	bar.Finish("Wrote 3 pages")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "namespaces 1/1") || !strings.Contains(lines[1], "types 1/2") {
		t.Errorf("unexpected phase lines: %q", lines)
	}
	if lines[2] != "✓ Wrote 3 pages" {
		t.Errorf("unexpected finish line: %q", lines[2])
	}
}

func TestProgressBarZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, ProgressBarOptions{NoColor: true})

	bar.Update("types", 0, 0)
	if buf.Len() != 0 {
		t.Errorf("expected no output for empty phase, got %q", buf.String())
	}
}
