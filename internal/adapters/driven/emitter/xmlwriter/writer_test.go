package xmlwriter

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

// step is one emitter call.
type step func(w *Writer) error

func begin(name, ns string) step   { return func(w *Writer) error { return w.BeginElement(name, ns) } }
func attr(name, value string) step { return func(w *Writer) error { return w.Attribute(name, value) } }
func text(s string) step           { return func(w *Writer) error { return w.Text(s) } }
func end() step                    { return func(w *Writer) error { return w.EndElement() } }

func render(t *testing.T, opts domain.OutputSettings, steps ...step) string {
	t.Helper()
	var buf bytes.Buffer
	w := New(&buf, opts)
	require.NoError(t, w.StartDocument())
	for _, s := range steps {
		require.NoError(t, s(w))
	}
	require.NoError(t, w.Finish())
	assert.Equal(t, int64(buf.Len()), w.BytesWritten())
	return buf.String()
}

func TestWriter_Compact(t *testing.T) {
	got := render(t, domain.OutputSettings{Namespaces: true},
		begin("Company", "urn:x"),
		attr("id", "1"),
		begin("Name", ""), text("A&B <Co>"), end(),
		begin("Same", "urn:x"), end(),
		begin("Other", "urn:y"), text("x"), end(),
		begin("Empty", ""), text(""), end(),
		end(),
	)

	want := Declaration + "\n" +
		`<Company xmlns="urn:x" id="1">` +
		`<Name>A&amp;B &lt;Co&gt;</Name>` +
		`<Same></Same>` +
		`<Other xmlns="urn:y">x</Other>` +
		`<Empty></Empty>` +
		"</Company>\n"
	assert.Equal(t, want, got)
}

func TestWriter_NamespacesDisabled(t *testing.T) {
	got := render(t, domain.OutputSettings{},
		begin("Company", "urn:x"), begin("Name", "urn:y"), end(), end(),
	)
	assert.Equal(t, Declaration+"\n<Company><Name></Name></Company>\n", got)
}

func TestWriter_Indent(t *testing.T) {
	got := render(t, domain.OutputSettings{Indent: "\t"},
		begin("A", ""),
		attr("k", "v"),
		begin("B", ""), text("1"), end(),
		begin("C", ""),
		begin("D", ""), end(),
		end(),
		end(),
	)

	want := Declaration + "\n" +
		"<A k=\"v\">\n" +
		"\t<B>1</B>\n" +
		"\t<C>\n" +
		"\t\t<D></D>\n" +
		"\t</C>\n" +
		"</A>\n"
	assert.Equal(t, want, got)
}

func TestWriter_Escaping(t *testing.T) {
	got := render(t, domain.OutputSettings{},
		begin("A", ""),
		attr("q", "a\"b<c>&\n\t\r"),
		text("x\x01y\xffz\r\"'"),
		end(),
	)
	want := Declaration + "\n" +
		`<A q="a&quot;b&lt;c&gt;&amp;&#10;&#9;&#13;">x` + "�" + "y�z&#13;\"'</A>\n"
	assert.Equal(t, want, got)
}

func TestWriter_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		steps []step
	}{
		{"illegal element name", []step{begin("1A", "")}},
		{"illegal attribute name", []step{begin("A", ""), attr("a b", "x")}},
		{"attribute after child", []step{begin("A", ""), begin("B", ""), end(), attr("k", "v")}},
		{"attribute after text", []step{begin("A", ""), text("x"), attr("k", "v")}},
		{"duplicate attribute", []step{begin("A", ""), attr("k", "1"), attr("k", "2")}},
		{"text after child", []step{begin("A", ""), begin("B", ""), end(), text("x")}},
		{"text twice", []step{begin("A", ""), text("x"), text("y")}},
		{"child after text", []step{begin("A", ""), text("x"), begin("B", "")}},
		{"text outside root", []step{text("x")}},
		{"attribute outside root", []step{attr("k", "v")}},
		{"end without element", []step{end()}},
		{"second root", []step{begin("A", ""), end(), begin("B", "")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := New(&buf, domain.OutputSettings{})
			require.NoError(t, w.StartDocument())

			var err error
			for _, s := range tt.steps {
				if err = s(w); err != nil {
					break
				}
			}
			require.Error(t, err)
			assert.True(t, domain.ErrEmit.Is(err))
		})
	}
}

func TestWriter_DocumentLifecycle(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, domain.OutputSettings{})

	assert.Error(t, w.BeginElement("A", ""), "before StartDocument")
	require.NoError(t, w.StartDocument())
	assert.Error(t, w.StartDocument(), "started twice")
	assert.Error(t, w.Finish(), "no document element")

	require.NoError(t, w.BeginElement("A", ""))
	assert.Error(t, w.Finish(), "element still open")
	require.NoError(t, w.EndElement())
	require.NoError(t, w.Finish())
	assert.Error(t, w.Finish(), "finished twice")
}

type failingSink struct{}

func (failingSink) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriter_SinkFailure(t *testing.T) {
	w := New(failingSink{}, domain.OutputSettings{})
	require.NoError(t, w.StartDocument())
	require.NoError(t, w.BeginElement("A", ""))
	require.NoError(t, w.EndElement())

	err := w.Finish()
	require.Error(t, err)
	assert.True(t, domain.ErrEmit.Is(err))
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, domain.ClassEmit, domain.Classify(err))

	assert.Equal(t, err, w.BeginElement("B", ""), "writer stays broken")
}

func TestFactory(t *testing.T) {
	var buf bytes.Buffer
	em := Factory{}.NewEmitter(&buf, domain.OutputSettings{})
	require.NoError(t, em.StartDocument())
	require.NoError(t, em.BeginElement("A", ""))
	require.NoError(t, em.EndElement())
	require.NoError(t, em.Finish())
	assert.Equal(t, Declaration+"\n<A></A>\n", buf.String())
}
