package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mapxml/internal/adapters/driven/emitter/xmlwriter"
	"github.com/custodia-labs/mapxml/internal/adapters/driven/input/jsontree"
	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/expression"
)

// row builds a mapping row from cells in column order:
// input_path, output_path, is_list, input_type, output_type, expression,
// namespace, parent_key.
func row(cells ...string) domain.MappingRow {
	return domain.RowFromCells(0, cells)
}

func newTestLoader() *Loader {
	return NewLoader(expression.Compiler{})
}

func loadTree(t *testing.T, rows ...domain.MappingRow) *domain.MappingTree {
	t.Helper()
	tree, err := newTestLoader().Load(rows)
	require.NoError(t, err)
	return tree
}

func parseJSON(t *testing.T, doc string) *domain.Node {
	t.Helper()
	node, err := jsontree.NewParser().Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return node
}

func newTestEngine() *Engine {
	return NewEngine(NewPipeline(time.UTC))
}

// convertDoc runs tree over doc into a compact XML string without the
// declaration line.
func convertDoc(t *testing.T, tree *domain.MappingTree, doc string) (string, *domain.Report) {
	t.Helper()
	var buf bytes.Buffer
	report, err := newTestEngine().Run(tree, parseJSON(t, doc), xmlwriter.New(&buf, domain.OutputSettings{Namespaces: true}))
	require.NoError(t, err)
	return body(t, buf.String()), report
}

// body strips the declaration and trailing newline from a document.
func body(t *testing.T, doc string) string {
	t.Helper()
	prefix := xmlwriter.Declaration + "\n"
	require.True(t, strings.HasPrefix(doc, prefix), "missing declaration in %q", doc)
	return strings.TrimSuffix(strings.TrimPrefix(doc, prefix), "\n")
}

// Scenario tables shared by several tests.

func companyRows() []domain.MappingRow {
	return []domain.MappingRow{
		row("", "Company", "false", "", "", "", "", ""),
		row("name", "Company/Name", "false", "string", "string", "", "", "Company"),
	}
}

func branchRows() []domain.MappingRow {
	return []domain.MappingRow{
		row("", "Company", "false", "", "", "", "", ""),
		row("branches", "Company/Branches/Branch", "true", "", "", "", "", "Company"),
		row("city", "Company/Branches/Branch/City", "false", "string", "string", "", "", "Company/Branches/Branch"),
	}
}
