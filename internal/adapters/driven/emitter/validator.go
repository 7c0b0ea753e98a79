// Package emitter holds the well-formedness rules shared by the XML
// emitters. Both the streaming writer and the tree builder run every call
// through a Validator first, so they accept and reject identical call
// sequences.
package emitter

import (
	"fmt"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

type phase int

const (
	phaseNew phase = iota
	phaseOpen
	phaseRootClosed
	phaseFinished
)

// Validator tracks the open element stack and rejects calls that would
// produce malformed XML. Errors wrap domain.ErrEmit.
type Validator struct {
	phase  phase
	stack  domain.FrameStack
	attrs  map[string]bool
	inTag  bool
	broken error
}

// Depth returns the number of open elements.
func (v *Validator) Depth() int {
	return v.stack.Len()
}

// Top returns the innermost open element.
func (v *Validator) Top() *domain.Frame {
	return v.stack.Top()
}

// InStartTag reports whether the innermost start tag is still unterminated.
func (v *Validator) InStartTag() bool {
	return v.inTag
}

// InheritedNamespace is the default namespace in scope for a new child.
func (v *Validator) InheritedNamespace() string {
	return v.stack.Namespace()
}

// StartDocument must be the first call.
func (v *Validator) StartDocument() error {
	if err := v.check(); err != nil {
		return err
	}
	if v.phase != phaseNew || v.attrs != nil {
		return v.fail("document already started")
	}
	v.attrs = make(map[string]bool)
	return nil
}

// BeginElement validates opening name below the current element.
func (v *Validator) BeginElement(name, namespace string) error {
	if err := v.started(); err != nil {
		return err
	}
	if !domain.IsXMLName(name) {
		return v.fail(fmt.Sprintf("illegal element name %q", name))
	}
	if v.phase == phaseRootClosed {
		return v.fail(fmt.Sprintf("second document element <%s>", name))
	}
	if top := v.stack.Top(); top != nil && !top.State.CanOpenChild() {
		return v.fail(fmt.Sprintf("element <%s> inside <%s> after text", name, top.Name))
	}
	if namespace == "" {
		namespace = v.stack.Namespace()
	}
	v.stack.Push(name, namespace)
	v.phase = phaseOpen
	v.inTag = true
	clear(v.attrs)
	return nil
}

// Attribute validates an attribute on the element just opened.
func (v *Validator) Attribute(name string) error {
	if err := v.started(); err != nil {
		return err
	}
	top := v.stack.Top()
	if top == nil {
		return v.fail(fmt.Sprintf("attribute %q outside of an element", name))
	}
	if !v.inTag || !top.State.CanWriteAttribute() {
		return v.fail(fmt.Sprintf("attribute %q after content of <%s>", name, top.Name))
	}
	if !domain.IsXMLName(name) {
		return v.fail(fmt.Sprintf("illegal attribute name %q", name))
	}
	if v.attrs[name] {
		return v.fail(fmt.Sprintf("duplicate attribute %q on <%s>", name, top.Name))
	}
	v.attrs[name] = true
	return nil
}

// Text validates content for the current element. Empty text is always
// accepted inside an element and changes nothing.
func (v *Validator) Text(s string) error {
	if err := v.started(); err != nil {
		return err
	}
	top := v.stack.Top()
	if top == nil {
		return v.fail("text outside of the document element")
	}
	if s == "" {
		return nil
	}
	if !top.State.CanWriteText() {
		return v.fail(fmt.Sprintf("text in <%s> after %s", top.Name, top.State))
	}
	top.State = domain.FrameHasText
	v.inTag = false
	return nil
}

// EndElement validates closing the current element and returns its final
// frame together with whether its start tag was still open.
func (v *Validator) EndElement() (frame domain.Frame, hadChildren, inTag bool, err error) {
	if err := v.started(); err != nil {
		return domain.Frame{}, false, false, err
	}
	if v.stack.Len() == 0 {
		return domain.Frame{}, false, false, v.fail("end element without an open element")
	}
	hadChildren = v.stack.Top().State == domain.FrameHasChildren
	inTag = v.inTag
	frame = v.stack.Pop()
	v.inTag = false
	if v.stack.Len() == 0 {
		v.phase = phaseRootClosed
	}
	return frame, hadChildren, inTag, nil
}

// Finish validates the end of the document.
func (v *Validator) Finish() error {
	if err := v.started(); err != nil {
		return err
	}
	if top := v.stack.Top(); top != nil {
		return v.fail(fmt.Sprintf("finish with <%s> still open", top.Name))
	}
	if v.phase != phaseRootClosed {
		return v.fail("document has no element")
	}
	v.phase = phaseFinished
	return nil
}

// Fail marks the emitter broken with a sink error.
func (v *Validator) Fail(err error) error {
	if v.broken == nil {
		v.broken = domain.ErrEmit.Wrap(err, fmt.Sprintf("write failed: %v", err))
	}
	return v.broken
}

func (v *Validator) started() error {
	if err := v.check(); err != nil {
		return err
	}
	if v.attrs == nil {
		return v.fail("document not started")
	}
	if v.phase == phaseFinished {
		return v.fail("document already finished")
	}
	return nil
}

func (v *Validator) check() error {
	return v.broken
}

func (v *Validator) fail(msg string) error {
	return domain.ErrEmit.New(msg)
}
