// Package xmlwriter is the streaming XML emitter. It writes directly to a
// buffered byte sink and never holds more than the open element stack in
// memory.
package xmlwriter

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/mapxml/internal/adapters/driven/emitter"
	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
)

// Ensure Writer implements the interface.
var _ driven.Emitter = (*Writer)(nil)

// Declaration is the XML declaration written by StartDocument.
const Declaration = `<?xml version="1.0" encoding="UTF-8"?>`

// Writer streams XML to an io.Writer.
//
// Every element gets an explicit end tag. With a non-empty indent, child
// elements start on their own line while text stays inline, so a given
// call sequence always yields the same bytes.
type Writer struct {
	out        *bufio.Writer
	indent     string
	namespaces bool
	v          emitter.Validator
	written    int64
}

// New creates a writer for w using opts.
func New(w io.Writer, opts domain.OutputSettings) *Writer {
	return &Writer{
		out:        bufio.NewWriter(w),
		indent:     opts.Indent,
		namespaces: opts.Namespaces,
	}
}

// BytesWritten returns the number of bytes accepted so far.
func (w *Writer) BytesWritten() int64 {
	return w.written
}

// StartDocument writes the XML declaration.
func (w *Writer) StartDocument() error {
	if err := w.v.StartDocument(); err != nil {
		return err
	}
	return w.write(Declaration, "\n")
}

// BeginElement writes a start tag, terminating the parent's start tag.
func (w *Writer) BeginElement(name, namespace string) error {
	parentInTag := w.v.InStartTag()
	inherited := w.v.InheritedNamespace()
	depth := w.v.Depth()
	if err := w.v.BeginElement(name, namespace); err != nil {
		return err
	}

	if parentInTag {
		if err := w.write(">"); err != nil {
			return err
		}
	}
	if w.indent != "" && depth > 0 {
		if err := w.write("\n", strings.Repeat(w.indent, depth)); err != nil {
			return err
		}
	}
	if err := w.write("<", name); err != nil {
		return err
	}
	if w.namespaces && namespace != "" && namespace != inherited {
		return w.write(` xmlns="`, escape(namespace, true), `"`)
	}
	return nil
}

// Attribute writes name="value" into the open start tag.
func (w *Writer) Attribute(name, value string) error {
	if err := w.v.Attribute(name); err != nil {
		return err
	}
	return w.write(" ", name, `="`, escape(value, true), `"`)
}

// Text writes escaped element content.
func (w *Writer) Text(s string) error {
	inTag := w.v.InStartTag()
	if err := w.v.Text(s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	if inTag {
		if err := w.write(">"); err != nil {
			return err
		}
	}
	return w.write(escape(s, false))
}

// EndElement writes the end tag of the current element.
func (w *Writer) EndElement() error {
	frame, hadChildren, inTag, err := w.v.EndElement()
	if err != nil {
		return err
	}
	if inTag {
		if err := w.write(">"); err != nil {
			return err
		}
	}
	if hadChildren && w.indent != "" {
		if err := w.write("\n", strings.Repeat(w.indent, w.v.Depth())); err != nil {
			return err
		}
	}
	return w.write("</", frame.Name, ">")
}

// Finish terminates the document with a newline and flushes.
func (w *Writer) Finish() error {
	if err := w.v.Finish(); err != nil {
		return err
	}
	if err := w.write("\n"); err != nil {
		return err
	}
	if err := w.out.Flush(); err != nil {
		return w.v.Fail(err)
	}
	return nil
}

func (w *Writer) write(parts ...string) error {
	for _, p := range parts {
		n, err := w.out.WriteString(p)
		w.written += int64(n)
		if err != nil {
			return w.v.Fail(err)
		}
	}
	return nil
}

// escape replaces markup characters with entities and characters that
// XML 1.0 cannot represent with U+FFFD. Attribute values also escape
// quotes and whitespace that attribute normalisation would fold.
func escape(s string, attr bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case r == '&':
			b.WriteString("&amp;")
		case r == '<':
			b.WriteString("&lt;")
		case r == '>':
			b.WriteString("&gt;")
		case r == '\r':
			b.WriteString("&#13;")
		case attr && r == '"':
			b.WriteString("&quot;")
		case attr && r == '\n':
			b.WriteString("&#10;")
		case attr && r == '\t':
			b.WriteString("&#9;")
		case !isXMLChar(r) || (r == utf8.RuneError && size == 1):
			b.WriteRune(utf8.RuneError)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isXMLChar(r rune) bool {
	switch {
	case r == 0x09 || r == 0x0A || r == 0x0D:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	default:
		return false
	}
}

// Ensure Factory implements the interface.
var _ driven.EmitterFactory = Factory{}

// Factory creates streaming writers.
type Factory struct{}

// NewEmitter creates a Writer for w.
func (Factory) NewEmitter(w io.Writer, opts domain.OutputSettings) driven.Emitter {
	return New(w, opts)
}
