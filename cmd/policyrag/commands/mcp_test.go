// ABOUTME: Tests for the MCP server command structure
// ABOUTME: Verifies command metadata without starting a server

package commands

import (
	"strings"
	"testing"
)

func TestNewMCPCmd(t *testing.T) {
	cmd := NewMCPCmd()

	if cmd.Use != "mcp" {
		t.Errorf("Use = %q, want %q", cmd.Use, "mcp")
	}
	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}
	if cmd.RunE == nil {
		t.Error("RunE should be set")
	}
	if !strings.Contains(cmd.Example, "policyrag mcp") {
		t.Error("Example should show how to start the server")
	}
}
