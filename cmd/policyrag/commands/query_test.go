// ABOUTME: Tests for the query command structure
// ABOUTME: Verifies flags and argument validation

package commands

import (
	"strings"
	"testing"
)

func TestNewQueryCmd(t *testing.T) {
	cmd := NewQueryCmd()

	if !strings.HasPrefix(cmd.Use, "query") {
		t.Errorf("Use = %q, want query prefix", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}
	if cmd.RunE == nil {
		t.Error("RunE should be set")
	}
}

func TestQueryCmd_Flags(t *testing.T) {
	cmd := NewQueryCmd()

	answerFlag := cmd.Flags().Lookup("answer")
	if answerFlag == nil {
		t.Fatal("--answer flag not found")
	}
	if answerFlag.DefValue != "false" {
		t.Errorf("--answer default = %q, want false", answerFlag.DefValue)
	}

	limitFlag := cmd.Flags().Lookup("limit")
	if limitFlag == nil {
		t.Fatal("--limit flag not found")
	}
	if limitFlag.DefValue != "0" {
		t.Errorf("--limit default = %q, want 0", limitFlag.DefValue)
	}
}

func TestQueryCmd_RequiresQueryArg(t *testing.T) {
	cmd := NewQueryCmd()
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error without a query argument")
	}
}

func TestQueryCmd_RejectsNegativeLimit(t *testing.T) {
	cmd := NewQueryCmd()
	cmd.SetArgs([]string{"--limit", "-1", "some question"})
	defer func() { queryLimit = 0 }()

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for negative limit")
	}
}
