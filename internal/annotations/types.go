package annotations

import (
	"fmt"
	"strings"
)

// Prefix starts every facet annotation comment
const Prefix = "//facet::"

// AnnotationType represents the type of annotation
type AnnotationType int

const (
	// ContractAnnotation marks an interface as a facet contract
	ContractAnnotation AnnotationType = iota
	// MarkerAnnotation attaches declarative markers to an interface method
	MarkerAnnotation
	// DefaultAnnotation documents that a contract method ships a default body
	DefaultAnnotation
)

// String returns the string representation of the annotation type
func (a AnnotationType) String() string {
	switch a {
	case ContractAnnotation:
		return "contract"
	case MarkerAnnotation:
		return "marker"
	case DefaultAnnotation:
		return "default"
	default:
		return "unknown"
	}
}

// ParseAnnotationType converts string to AnnotationType
func ParseAnnotationType(s string) (AnnotationType, error) {
	switch s {
	case "contract":
		return ContractAnnotation, nil
	case "marker":
		return MarkerAnnotation, nil
	case "default":
		return DefaultAnnotation, nil
	default:
		return 0, fmt.Errorf("unknown annotation type: %s", s)
	}
}

// SourceLocation represents the location of an annotation in source code
type SourceLocation struct {
	File   string // File path
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

func (l SourceLocation) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// ParsedAnnotation represents a fully parsed annotation
type ParsedAnnotation struct {
	Type       AnnotationType    // Annotation type enum
	Args       []string          // Positional arguments
	Parameters map[string]string // Named -key=value parameters
	Flags      []string          // Named parameters without a value
	Location   SourceLocation    // Source location
	Raw        string            // Original annotation text
}

// GetString returns a parameter value with optional default
func (p *ParsedAnnotation) GetString(name string, defaultValue ...string) string {
	if value, exists := p.Parameters[name]; exists {
		return value
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// HasFlag checks if a flag was given
func (p *ParsedAnnotation) HasFlag(name string) bool {
	for _, f := range p.Flags {
		if f == name {
			return true
		}
	}
	return false
}

// IsAnnotation reports whether a comment line is a facet annotation
func IsAnnotation(comment string) bool {
	return strings.HasPrefix(strings.TrimSpace(comment), Prefix)
}
