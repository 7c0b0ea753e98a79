// Package tree is the in-memory XML emitter. It builds an element tree
// that can be inspected directly or replayed into any other emitter.
package tree

import (
	"bytes"

	"github.com/custodia-labs/mapxml/internal/adapters/driven/emitter"
	"github.com/custodia-labs/mapxml/internal/adapters/driven/emitter/xmlwriter"
	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
)

// Ensure Builder implements the interface.
var _ driven.Emitter = (*Builder)(nil)

// Attr is an element attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the built document. Namespace is the namespace
// passed to BeginElement, not the inherited one.
type Element struct {
	Name      string
	Namespace string
	Attrs     []Attr
	Text      string
	Children  []*Element
}

// Child returns the first child element named name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Builder collects emitter calls into an element tree.
type Builder struct {
	v     emitter.Validator
	root  *Element
	stack []*Element
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Root returns the document element, nil until one is opened.
func (b *Builder) Root() *Element {
	return b.root
}

// StartDocument begins the document.
func (b *Builder) StartDocument() error {
	return b.v.StartDocument()
}

// BeginElement appends a child to the current element.
func (b *Builder) BeginElement(name, namespace string) error {
	if err := b.v.BeginElement(name, namespace); err != nil {
		return err
	}
	el := &Element{Name: name, Namespace: namespace}
	if len(b.stack) == 0 {
		b.root = el
	} else {
		parent := b.stack[len(b.stack)-1]
		parent.Children = append(parent.Children, el)
	}
	b.stack = append(b.stack, el)
	return nil
}

// Attribute records an attribute on the element just opened.
func (b *Builder) Attribute(name, value string) error {
	if err := b.v.Attribute(name); err != nil {
		return err
	}
	el := b.stack[len(b.stack)-1]
	el.Attrs = append(el.Attrs, Attr{Name: name, Value: value})
	return nil
}

// Text sets the content of the current element.
func (b *Builder) Text(s string) error {
	if err := b.v.Text(s); err != nil {
		return err
	}
	b.stack[len(b.stack)-1].Text = s
	return nil
}

// EndElement closes the current element.
func (b *Builder) EndElement() error {
	if _, _, _, err := b.v.EndElement(); err != nil {
		return err
	}
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

// Finish completes the document.
func (b *Builder) Finish() error {
	return b.v.Finish()
}

// Replay sends the built document to em as the original call sequence.
func (b *Builder) Replay(em driven.Emitter) error {
	if err := em.StartDocument(); err != nil {
		return err
	}
	if b.root != nil {
		if err := replay(b.root, em); err != nil {
			return err
		}
	}
	return em.Finish()
}

func replay(el *Element, em driven.Emitter) error {
	if err := em.BeginElement(el.Name, el.Namespace); err != nil {
		return err
	}
	for _, a := range el.Attrs {
		if err := em.Attribute(a.Name, a.Value); err != nil {
			return err
		}
	}
	if el.Text != "" {
		if err := em.Text(el.Text); err != nil {
			return err
		}
	}
	for _, c := range el.Children {
		if err := replay(c, em); err != nil {
			return err
		}
	}
	return em.EndElement()
}

// Render serialises the built document with the streaming writer.
func (b *Builder) Render(opts domain.OutputSettings) ([]byte, error) {
	var buf bytes.Buffer
	if err := b.Replay(xmlwriter.New(&buf, opts)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
