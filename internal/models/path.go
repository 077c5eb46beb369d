// ABOUTME: ComponentPath parsing for hierarchical policy document identifiers
// ABOUTME: Parses underscore-joined node IDs into (root, productCategory, contentType)
package models

import (
	"fmt"
	"strings"
)

// ComponentPath is the parsed form of a document's hierarchical identifier,
// e.g. "x37806_x111544_x111562". Root is always present; lower levels may be
// empty for root-only documents. Immutable once parsed.
type ComponentPath struct {
	Root            string `json:"root"`
	ProductCategory string `json:"product_category,omitempty"`
	ContentType     string `json:"content_type,omitempty"`
}

// MalformedPathError indicates a component path string that cannot be parsed.
type MalformedPathError struct {
	Path   string
	Reason string
}

func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("malformed component path %q: %s", e.Path, e.Reason)
}

// ParsePath parses an underscore-joined component path string.
// Each segment must be a node identifier: a leading 'x' followed by
// alphanumeric characters.
func ParsePath(s string) (ComponentPath, error) {
	if strings.TrimSpace(s) == "" {
		return ComponentPath{}, &MalformedPathError{Path: s, Reason: "empty path"}
	}

	segments := strings.Split(s, "_")
	if len(segments) > 3 {
		return ComponentPath{}, &MalformedPathError{
			Path:   s,
			Reason: fmt.Sprintf("expected at most 3 segments, got %d", len(segments)),
		}
	}

	for _, seg := range segments {
		if !validNodeID(seg) {
			return ComponentPath{}, &MalformedPathError{
				Path:   s,
				Reason: fmt.Sprintf("invalid node identifier %q", seg),
			}
		}
	}

	cp := ComponentPath{Root: segments[0]}
	if len(segments) > 1 {
		cp.ProductCategory = segments[1]
	}
	if len(segments) > 2 {
		cp.ContentType = segments[2]
	}
	return cp, nil
}

// validNodeID checks for a leading 'x' followed by one or more alphanumerics.
func validNodeID(s string) bool {
	if len(s) < 2 || s[0] != 'x' {
		return false
	}
	for _, r := range s[1:] {
		isDigit := r >= '0' && r <= '9'
		isLower := r >= 'a' && r <= 'z'
		isUpper := r >= 'A' && r <= 'Z'
		if !isDigit && !isLower && !isUpper {
			return false
		}
	}
	return true
}

// String returns the underscore-joined form, omitting absent levels.
func (cp ComponentPath) String() string {
	parts := []string{cp.Root}
	if cp.ProductCategory != "" {
		parts = append(parts, cp.ProductCategory)
		if cp.ContentType != "" {
			parts = append(parts, cp.ContentType)
		}
	}
	return strings.Join(parts, "_")
}

// CategoryPrefix returns the path truncated at the product-category level,
// used as the pairing key for comparison queries.
func (cp ComponentPath) CategoryPrefix() string {
	if cp.ProductCategory == "" {
		return cp.Root
	}
	return cp.Root + "_" + cp.ProductCategory
}
