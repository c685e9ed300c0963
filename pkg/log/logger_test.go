package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestSetModuleLevel(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer func() {
		SetModuleLevel("logtest-verbose", Warning)
		SetLevel(Warning)
		SetSink(os.Stderr)
	}()

	SetLevel(Warning)
	SetModuleLevel("logtest-verbose", Debug)

	New("logtest-verbose").Debug("verbose module message")
	New("logtest-quiet").Debug("quiet module message")
	New("logtest-quiet").Warning("quiet module warning")

	out := buf.String()
	if !strings.Contains(out, "verbose module message") {
		t.Errorf("Expected debug output from the verbose module, got %q", out)
	}
	if strings.Contains(out, "quiet module message") {
		t.Errorf("Debug output should be filtered for other modules, got %q", out)
	}
	if !strings.Contains(out, "quiet module warning") {
		t.Errorf("Expected warnings from every module, got %q", out)
	}
}

func TestSetSink_KeepsLevels(t *testing.T) {
	SetModuleLevel("logtest-sink", Debug)
	defer SetModuleLevel("logtest-sink", Warning)

	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stderr)

	New("logtest-sink").Debug("after sink change")
	if !strings.Contains(buf.String(), "after sink change") {
		t.Errorf("Module level should survive a sink change, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    Level
		wantErr bool
	}{
		{"debug", Debug, false},
		{"INFO", Info, false},
		{"Warning", Warning, false},
		{"error", Error, false},
		{"verbose", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q): unexpected error state %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tt.name, got, tt.want)
		}
	}
}
