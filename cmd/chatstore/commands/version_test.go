// ABOUTME: Tests for the version command
// ABOUTME: Verifies build info output and SetVersion wiring

package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCmd_Output(t *testing.T) {
	SetVersion("1.2.3", "abc1234", "2025-03-01")
	defer SetVersion("dev", "none", "unknown")

	cmd := NewVersionCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := output.String()
	for _, want := range []string{"1.2.3", "abc1234", "2025-03-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestVersionCmd_Defaults(t *testing.T) {
	SetVersion("dev", "none", "unknown")

	cmd := NewVersionCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.Contains(output.String(), "chatstore dev") {
		t.Errorf("output = %q, want default version line", output.String())
	}
}
