package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetFormatJSONKeepsSweepMessageKey(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)
	defer SetFormat("text")

	if err := SetFormat("json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	GetSweepLogger().Info("repetition done")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("sweep log line is not JSON: %v", err)
	}
	if entry["sweep_msg"] != "repetition done" {
		t.Fatalf("expected sweep_msg key, got %v", entry)
	}
}

func TestSweepLoggerTextKeepsItsMessageKey(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	GetSweepLogger().Info("thread count measured")
	GetLogger().Info("report written")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %q", buf.String())
	}
	if !strings.Contains(lines[0], `sweep_msg="thread count measured"`) {
		t.Fatalf("sweep line lacks sweep_msg: %s", lines[0])
	}
	if !strings.Contains(lines[1], `msg="report written"`) || strings.Contains(lines[1], "sweep_msg") {
		t.Fatalf("general line should use msg: %s", lines[1])
	}
}

func TestSetFormatRejectsUnknown(t *testing.T) {
	before := GetLogger().Formatter
	if err := SetFormat("xml"); err == nil {
		t.Fatalf("expected error")
	}
	if GetLogger().Formatter != before {
		t.Fatalf("a rejected format must leave the formatter unchanged")
	}
}

func TestLevelsAreIndependent(t *testing.T) {
	defer SetLogLevel("info")
	defer SetSweepLogLevel("info")

	if err := SetSweepLogLevel("debug"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := SetLogLevel("warn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if GetSweepLogger().GetLevel() != logrus.DebugLevel {
		t.Fatalf("sweep level changed by SetLogLevel")
	}
	if GetLogger().GetLevel() != logrus.WarnLevel {
		t.Fatalf("got %v", GetLogger().GetLevel())
	}
	if err := SetLogLevel("loud"); err == nil {
		t.Fatalf("expected parse error")
	}
}
