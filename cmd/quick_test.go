package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/khanhnv2901/reality-check/internal/reality"
)

func TestRunQuickText(t *testing.T) {
	original := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = original
	})

	var out bytes.Buffer
	if err := runQuick(&out, formatText, []string{"www.microsoft.com", "mybank.com", "bad"}); err != nil {
		t.Fatalf("runQuick returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and three rows, got %d:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "DOMAIN") {
		t.Fatalf("expected header row, got %q", lines[0])
	}
	if !strings.Contains(lines[1], reality.MsgQuickOK) {
		t.Errorf("expected OK for microsoft, got %q", lines[1])
	}
	if !strings.Contains(lines[2], reality.MsgQuickRisk) {
		t.Errorf("expected Risk for mybank, got %q", lines[2])
	}
	if !strings.Contains(lines[3], reality.MsgFormatError) {
		t.Errorf("expected Format Error for bad input, got %q", lines[3])
	}
}

func TestRunQuickJSON(t *testing.T) {
	var out bytes.Buffer
	if err := runQuick(&out, formatJSON, []string{"mybank.com"}); err != nil {
		t.Fatalf("runQuick returned error: %v", err)
	}

	var rec evaluationRecord
	if err := json.Unmarshal(out.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec.Result.IsValid || rec.Result.Message != reality.MsgQuickRisk || rec.Result.Warning == "" {
		t.Fatalf("unexpected quick result: %+v", rec.Result)
	}
	if rec.Result.Score != nil {
		t.Fatalf("quick check must not carry a score, got %d", *rec.Result.Score)
	}
}

func TestRunQuickRejectsUnknownFormat(t *testing.T) {
	if err := runQuick(&bytes.Buffer{}, "csv", []string{"www.microsoft.com"}); err == nil {
		t.Fatal("expected an error for an unsupported format")
	}
}
