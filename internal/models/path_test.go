// ABOUTME: Tests for ComponentPath parsing and formatting
// ABOUTME: Covers full paths, partial paths, and malformed identifiers

package models

import (
	"errors"
	"testing"
)

func TestParsePath_FullPath(t *testing.T) {
	cp, err := ParsePath("x37806_x111544_x111562")
	if err != nil {
		t.Fatalf("ParsePath() error = %v", err)
	}
	if cp.Root != "x37806" {
		t.Errorf("Root = %q, want x37806", cp.Root)
	}
	if cp.ProductCategory != "x111544" {
		t.Errorf("ProductCategory = %q, want x111544", cp.ProductCategory)
	}
	if cp.ContentType != "x111562" {
		t.Errorf("ContentType = %q, want x111562", cp.ContentType)
	}
}

func TestParsePath_PartialPaths(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		wantRoot     string
		wantCategory string
	}{
		{"root only", "x37806", "x37806", ""},
		{"root and category", "x37806_x111544", "x37806", "x111544"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp, err := ParsePath(tt.path)
			if err != nil {
				t.Fatalf("ParsePath(%q) error = %v", tt.path, err)
			}
			if cp.Root != tt.wantRoot {
				t.Errorf("Root = %q, want %q", cp.Root, tt.wantRoot)
			}
			if cp.ProductCategory != tt.wantCategory {
				t.Errorf("ProductCategory = %q, want %q", cp.ProductCategory, tt.wantCategory)
			}
		})
	}
}

func TestParsePath_Malformed(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"empty string", ""},
		{"whitespace only", "   "},
		{"missing x prefix", "37806_x111544"},
		{"bare x", "x"},
		{"non-alphanumeric segment", "x37806_x111-544"},
		{"empty segment", "x37806__x111562"},
		{"too many segments", "x1_x2_x3_x4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePath(tt.path)
			if err == nil {
				t.Fatalf("ParsePath(%q) expected error", tt.path)
			}
			var mpe *MalformedPathError
			if !errors.As(err, &mpe) {
				t.Errorf("error type = %T, want *MalformedPathError", err)
			}
		})
	}
}

func TestComponentPath_String_RoundTrip(t *testing.T) {
	for _, path := range []string{"x37806", "x37806_x111544", "x37806_x111544_x111562"} {
		cp, err := ParsePath(path)
		if err != nil {
			t.Fatalf("ParsePath(%q) error = %v", path, err)
		}
		if got := cp.String(); got != path {
			t.Errorf("String() = %q, want %q", got, path)
		}
	}
}

func TestComponentPath_CategoryPrefix(t *testing.T) {
	cp, _ := ParsePath("x37806_x111544_x111562")
	if got := cp.CategoryPrefix(); got != "x37806_x111544" {
		t.Errorf("CategoryPrefix() = %q, want x37806_x111544", got)
	}

	rootOnly, _ := ParsePath("x37806")
	if got := rootOnly.CategoryPrefix(); got != "x37806" {
		t.Errorf("CategoryPrefix() = %q, want x37806", got)
	}
}
