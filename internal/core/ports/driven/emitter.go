package driven

import (
	"io"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

// Emitter receives the output document as a stream of calls.
// Implementations enforce well-formedness: names must be legal, attributes
// may only follow BeginElement, text may only be written once into an
// element without children, and Finish requires every element closed.
// A rejected call returns an error wrapping domain.ErrEmit.
type Emitter interface {
	// StartDocument writes the document prolog.
	StartDocument() error

	// BeginElement opens a child of the current element.
	// A non-empty namespace becomes the element's default namespace.
	BeginElement(name, namespace string) error

	// Attribute adds an attribute to the element just opened.
	Attribute(name, value string) error

	// Text writes the content of the current element.
	Text(s string) error

	// EndElement closes the current element.
	EndElement() error

	// Finish writes the epilog and flushes. Further calls fail.
	Finish() error
}

// EmitterFactory creates emitters bound to a byte sink.
type EmitterFactory interface {
	NewEmitter(w io.Writer, opts domain.OutputSettings) Emitter
}
