package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// InputPath locates a node relative to a scope by successive field lookups.
// An empty path addresses the scope itself.
type InputPath struct {
	raw      string
	segments []string
}

// ParseInputPath parses a dot path. A leading "$." (or a bare "$") and
// trailing "[*]" markers on segments are accepted and dropped, so JSONPath
// style spellings resolve the same way as plain dot paths.
func ParseInputPath(s string) (InputPath, error) {
	raw := s
	s = strings.TrimSpace(s)
	switch {
	case s == "$":
		s = ""
	case strings.HasPrefix(s, "$."):
		s = s[2:]
	}
	if s == "" {
		return InputPath{raw: raw}, nil
	}

	parts := strings.Split(s, ".")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSuffix(part, "[*]")
		if part == "" {
			return InputPath{}, fmt.Errorf("%w: empty segment in input path %q", ErrInvalidInput, raw)
		}
		segments = append(segments, part)
	}
	return InputPath{raw: raw, segments: segments}, nil
}

// Segments returns the field names of the path.
func (p InputPath) Segments() []string {
	return p.segments
}

// IsEmpty reports whether the path addresses the scope itself.
func (p InputPath) IsEmpty() bool {
	return len(p.segments) == 0
}

// IsBlank reports whether the path cell was empty. A bare "$" also
// addresses the scope but is not blank.
func (p InputPath) IsBlank() bool {
	return strings.TrimSpace(p.raw) == ""
}

// String returns the path as written in the mapping table.
func (p InputPath) String() string {
	return p.raw
}

// Resolve descends from scope one field per segment.
// Field access on a non-object yields Missing, never an error.
func (p InputPath) Resolve(scope *Node) *Node {
	if scope == nil {
		return Missing
	}
	cur := scope
	for _, seg := range p.segments {
		cur = cur.Field(seg)
		if cur.IsMissing() {
			return Missing
		}
	}
	return cur
}

// OutputPath is a slash separated chain of element names with an optional
// trailing attribute segment.
type OutputPath struct {
	Elements  []string
	Attribute string
}

// ParseOutputPath validates and splits an output path.
func ParseOutputPath(s string) (OutputPath, error) {
	if s == "" {
		return OutputPath{}, fmt.Errorf("%w: empty output path", ErrInvalidInput)
	}

	parts := strings.Split(s, "/")
	var p OutputPath
	for i, part := range parts {
		if part == "" {
			return OutputPath{}, fmt.Errorf("%w: empty segment", ErrInvalidInput)
		}
		if strings.HasPrefix(part, "@") {
			if i != len(parts)-1 {
				return OutputPath{}, fmt.Errorf("%w: attribute segment %q must be last", ErrInvalidInput, part)
			}
			name := part[1:]
			if !IsXMLName(name) {
				return OutputPath{}, fmt.Errorf("%w: illegal attribute name %q", ErrInvalidInput, name)
			}
			p.Attribute = name
			continue
		}
		if !IsXMLName(part) {
			return OutputPath{}, fmt.Errorf("%w: illegal element name %q", ErrInvalidInput, part)
		}
		p.Elements = append(p.Elements, part)
	}
	return p, nil
}

// HasAttribute reports whether the path ends in an attribute segment.
func (p OutputPath) HasAttribute() bool {
	return p.Attribute != ""
}

// String rejoins the path.
func (p OutputPath) String() string {
	s := strings.Join(p.Elements, "/")
	if p.Attribute == "" {
		return s
	}
	if s == "" {
		return "@" + p.Attribute
	}
	return s + "/@" + p.Attribute
}

// IsXMLName reports whether s is a legal XML 1.0 element or attribute name.
func IsXMLName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if isNameStart(r) {
			continue
		}
		if i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.' || r == 0xB7) {
			continue
		}
		return false
	}
	return true
}

func isNameStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == ':'
}
