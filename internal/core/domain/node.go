package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// NodeKind identifies the shape of an input tree value.
type NodeKind string

const (
	// NodeMissing marks an absent value. It is distinct from NodeNull.
	NodeMissing NodeKind = "missing"

	// NodeNull is an explicit null.
	NodeNull NodeKind = "null"

	// NodeString is a string scalar.
	NodeString NodeKind = "string"

	// NodeNumber is a numeric scalar, kept as its literal text.
	NodeNumber NodeKind = "number"

	// NodeBool is a boolean scalar.
	NodeBool NodeKind = "bool"

	// NodeObject is an ordered mapping of unique field names to values.
	NodeObject NodeKind = "object"

	// NodeArray is an ordered sequence of values.
	NodeArray NodeKind = "array"
)

// String returns the string representation of the node kind.
func (k NodeKind) String() string {
	return string(k)
}

// Field is a named member of an object node.
type Field struct {
	Name  string
	Value *Node
}

// Node is a read-only input tree value.
// Scalars keep their literal text so that numbers survive without
// precision loss until the value pipeline interprets them.
type Node struct {
	Kind   NodeKind
	Text   string
	Fields []Field
	Items  []*Node
}

// Missing is the shared absent marker.
var Missing = &Node{Kind: NodeMissing}

// NewString creates a string scalar node.
func NewString(s string) *Node {
	return &Node{Kind: NodeString, Text: s}
}

// NewNumber creates a number scalar node from its literal text.
func NewNumber(text string) *Node {
	return &Node{Kind: NodeNumber, Text: text}
}

// NewBool creates a boolean scalar node.
func NewBool(b bool) *Node {
	return &Node{Kind: NodeBool, Text: strconv.FormatBool(b)}
}

// NewNull creates a null node.
func NewNull() *Node {
	return &Node{Kind: NodeNull}
}

// NewObject creates an object node from ordered fields.
func NewObject(fields ...Field) *Node {
	return &Node{Kind: NodeObject, Fields: fields}
}

// NewArray creates an array node.
func NewArray(items ...*Node) *Node {
	return &Node{Kind: NodeArray, Items: items}
}

// IsMissing reports whether n is absent.
func (n *Node) IsMissing() bool {
	return n == nil || n.Kind == NodeMissing
}

// IsScalar reports whether n is a string, number, boolean or null.
func (n *Node) IsScalar() bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case NodeString, NodeNumber, NodeBool, NodeNull:
		return true
	default:
		return false
	}
}

// Field returns the value of the named field.
// Non-objects and absent fields yield the Missing marker.
func (n *Node) Field(name string) *Node {
	if n == nil || n.Kind != NodeObject {
		return Missing
	}
	for i := range n.Fields {
		if n.Fields[i].Name == name {
			return n.Fields[i].Value
		}
	}
	return Missing
}

// CanonicalText renders the node as text: scalars as their literal value,
// structured nodes as compact JSON with field order preserved.
func (n *Node) CanonicalText() string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case NodeString, NodeNumber, NodeBool:
		return n.Text
	case NodeNull:
		return "null"
	case NodeObject, NodeArray:
		var buf bytes.Buffer
		n.writeJSON(&buf)
		return buf.String()
	default:
		return ""
	}
}

func (n *Node) writeJSON(buf *bytes.Buffer) {
	switch n.Kind {
	case NodeString:
		writeJSONString(buf, n.Text)
	case NodeNumber, NodeBool:
		buf.WriteString(n.Text)
	case NodeObject:
		buf.WriteByte('{')
		for i, f := range n.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, f.Name)
			buf.WriteByte(':')
			f.Value.writeJSON(buf)
		}
		buf.WriteByte('}')
	case NodeArray:
		buf.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.writeJSON(buf)
		}
		buf.WriteByte(']')
	default:
		buf.WriteString("null")
	}
}

func writeJSONString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		buf.WriteString(`""`)
		return
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	if n.Kind == NodeMissing {
		return Missing
	}
	out := &Node{Kind: n.Kind, Text: n.Text}
	if n.Fields != nil {
		out.Fields = make([]Field, len(n.Fields))
		for i, f := range n.Fields {
			out.Fields[i] = Field{Name: f.Name, Value: f.Value.Clone()}
		}
	}
	if n.Items != nil {
		out.Items = make([]*Node, len(n.Items))
		for i, item := range n.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}
