// ABOUTME: Tests for the ingest command structure and input parsing
// ABOUTME: Verifies flags, argument validation, and JSON document loading

package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewIngestCmd(t *testing.T) {
	cmd := NewIngestCmd()

	if !strings.HasPrefix(cmd.Use, "ingest") {
		t.Errorf("Use = %q, want ingest prefix", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}
	if cmd.RunE == nil {
		t.Error("RunE should be set")
	}
}

func TestIngestCmd_RequiresFileArg(t *testing.T) {
	cmd := NewIngestCmd()
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error without a file argument")
	}

	cmd = NewIngestCmd()
	cmd.SetArgs([]string{"a.json", "b.json"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error with two file arguments")
	}
}

func writeTempJSON(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docs.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func TestLoadDocuments(t *testing.T) {
	path := writeTempJSON(t, `[
		{
			"root_id": "x37806",
			"title": "PACE Lien Requirements",
			"content": "<p>The lien must be recorded.</p>",
			"component_path": "x37806_x111544_x111562",
			"products": ["VA"]
		},
		{
			"root_id": "x9",
			"title": "Overview",
			"content": "General info.",
			"component_path": "x9"
		}
	]`)

	docs, err := loadDocuments(path)
	if err != nil {
		t.Fatalf("loadDocuments() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("documents = %d, want 2", len(docs))
	}

	first := docs[0]
	if first.RootID != "x37806" || first.Title != "PACE Lien Requirements" {
		t.Errorf("first document = %s / %s", first.RootID, first.Title)
	}
	if first.Path.String() != "x37806_x111544_x111562" {
		t.Errorf("component path = %s", first.Path.String())
	}
	if len(first.Products) != 1 || first.Products[0] != "VA" {
		t.Errorf("products = %v", first.Products)
	}
}

func TestLoadDocuments_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "hello"},
		{"missing root_id", `[{"title": "T", "content": "C", "component_path": "x1"}]`},
		{"malformed path", `[{"root_id": "x1", "title": "T", "content": "C", "component_path": "bad path!"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempJSON(t, tt.content)
			if _, err := loadDocuments(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadDocuments_MissingFile(t *testing.T) {
	if _, err := loadDocuments(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
