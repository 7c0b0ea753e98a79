package domain

import (
	"fmt"
	"strings"
)

// MappingColumns lists the mapping table columns in their prescribed order.
var MappingColumns = []string{
	"input_path",
	"output_path",
	"is_list",
	"input_type",
	"output_type",
	"expression",
	"namespace",
	"parent_key",
}

// MappingRow is one line of a mapping table, cells as read from the source.
type MappingRow struct {
	// Line is the 1-based position of the row in its source, header included.
	Line       int    `json:"line" yaml:"-"`
	InputPath  string `json:"input_path" yaml:"input_path,omitempty"`
	OutputPath string `json:"output_path" yaml:"output_path"`
	IsList     string `json:"is_list" yaml:"is_list,omitempty"`
	InputType  string `json:"input_type" yaml:"input_type,omitempty"`
	OutputType string `json:"output_type" yaml:"output_type,omitempty"`
	Expression string `json:"expression" yaml:"expression,omitempty"`
	Namespace  string `json:"namespace" yaml:"namespace,omitempty"`
	ParentKey  string `json:"parent_key" yaml:"parent_key,omitempty"`
}

// Cells returns the row's cells in column order.
func (r MappingRow) Cells() []string {
	return []string{
		r.InputPath, r.OutputPath, r.IsList, r.InputType,
		r.OutputType, r.Expression, r.Namespace, r.ParentKey,
	}
}

// RowFromCells builds a row from cells in column order.
// Missing trailing cells are empty; every cell is trimmed.
func RowFromCells(line int, cells []string) MappingRow {
	get := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}
	return MappingRow{
		Line:       line,
		InputPath:  get(0),
		OutputPath: get(1),
		IsList:     get(2),
		InputType:  get(3),
		OutputType: get(4),
		Expression: get(5),
		Namespace:  get(6),
		ParentKey:  get(7),
	}
}

// ParseFlag parses an is_list cell: yes/no/true/false, case-insensitive.
// An empty cell is false.
func ParseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true":
		return true, nil
	case "", "no", "false":
		return false, nil
	default:
		return false, fmt.Errorf("%w: is_list must be yes/no or true/false, got %q", ErrInvalidInput, s)
	}
}

// Program is a compiled row expression.
type Program interface {
	// Eval runs the program with val bound. A null result means absent.
	Eval(val Value) (Value, error)

	// Source returns the expression text.
	Source() string
}

// MappingNode is a loaded row linked into the mapping tree.
type MappingNode struct {
	Row        MappingRow
	List       bool
	InputType  ValueType
	OutputType ValueType
	Input      InputPath
	Output     OutputPath

	// Program is nil for identity. When the expression failed to compile,
	// Program is nil and CompileErr holds the cause.
	Program    Program
	CompileErr string

	Children []*MappingNode
}

// IsStatic reports whether the node seeds output without data backing.
func (n *MappingNode) IsStatic() bool {
	return n.Input.IsBlank() && !n.List
}

// IsAttribute reports whether the node writes an attribute.
func (n *MappingNode) IsAttribute() bool {
	return n.Output.HasAttribute()
}

// HasExpression reports whether the node transforms its value.
func (n *MappingNode) HasExpression() bool {
	return n.Row.Expression != ""
}

// MappingTree is the loaded, immutable form of a mapping table.
// Roots are the ordered children of the virtual root.
type MappingTree struct {
	RootElement string
	Roots       []*MappingNode
	Fingerprint uint64
	Warnings    []Warning
}

// Walk visits every node depth first in emission order.
func (t *MappingTree) Walk(fn func(n *MappingNode, depth int)) {
	var walk func(nodes []*MappingNode, depth int)
	walk = func(nodes []*MappingNode, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(t.Roots, 0)
}

// Size returns the number of rows in the tree.
func (t *MappingTree) Size() int {
	count := 0
	t.Walk(func(*MappingNode, int) { count++ })
	return count
}
