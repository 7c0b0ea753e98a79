package services

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
	"github.com/custodia-labs/mapxml/internal/logger"
)

// Loader validates mapping rows and links them into a mapping tree.
type Loader struct {
	compiler driven.ExpressionCompiler
}

// NewLoader creates a loader that compiles row expressions with compiler.
func NewLoader(compiler driven.ExpressionCompiler) *Loader {
	return &Loader{compiler: compiler}
}

// pendingRow is a validated row waiting for its parent.
type pendingRow struct {
	index int
	node  *domain.MappingNode
}

// Load builds the tree. Rows are inserted under their parent by repeated
// passes until a fixed point, so children may precede their parents in
// the table. Children keep table order regardless of resolution order.
//
//nolint:gocyclo // Validation, dedupe and insertion are sequential steps
func (l *Loader) Load(rows []domain.MappingRow) (*domain.MappingTree, error) {
	logger.Section("Mapping Load")
	logger.Debug("Rows: %d", len(rows))

	tree := &domain.MappingTree{Fingerprint: Fingerprint(rows)}
	seen := make(map[string]int, len(rows))
	skipped := make(map[string]bool)
	pending := make([]pendingRow, 0, len(rows))

	for i, row := range rows {
		if row.Line == 0 {
			row.Line = i + 1
		}
		node, err := l.normalise(row)
		if err != nil {
			return nil, err
		}
		key := node.Output.String()
		if first, dup := seen[key]; dup {
			return nil, domain.ErrDuplicateOutputPath.New(key, first, row.Line)
		}
		seen[key] = row.Line

		if node.List && node.Input.IsBlank() {
			skipped[key] = true
			tree.Warnings = append(tree.Warnings, skipWarning(node, "list row has no input path"))
			continue
		}
		if node.CompileErr != "" {
			tree.Warnings = append(tree.Warnings, domain.Warning{
				Kind:       domain.WarnExpression,
				Line:       row.Line,
				OutputPath: key,
				Message:    fmt.Sprintf("expression %q does not compile: %s", row.Expression, node.CompileErr),
			})
		}
		pending = append(pending, pendingRow{index: i, node: node})
	}

	inserted := make(map[string]*domain.MappingNode, len(pending))
	order := make(map[*domain.MappingNode]int, len(pending))
	var roots []*domain.MappingNode

	for passes := 0; len(pending) > 0; passes++ {
		progress := false
		remaining := pending[:0]
		for _, p := range pending {
			parentKey := p.node.Row.ParentKey
			switch parent, ok := inserted[parentKey]; {
			case parentKey == "":
				roots = append(roots, p.node)
			case ok:
				if parent.IsAttribute() {
					return nil, domain.ErrInvalidRow.New(p.node.Row.Line,
						fmt.Sprintf("parent %q is an attribute and cannot have children", parentKey))
				}
				parent.Children = append(parent.Children, p.node)
			case skipped[parentKey]:
				key := p.node.Output.String()
				skipped[key] = true
				tree.Warnings = append(tree.Warnings, skipWarning(p.node, "parent row "+parentKey+" was skipped"))
				progress = true
				continue
			default:
				remaining = append(remaining, p)
				continue
			}
			inserted[p.node.Output.String()] = p.node
			order[p.node] = p.index
			progress = true
		}
		pending = remaining
		if !progress {
			first := pending[0].node
			return nil, domain.ErrUnresolvedParent.New(first.Output.String(), first.Row.ParentKey)
		}
		logger.Debug("Pass %d resolved, %d rows pending", passes+1, len(pending))
	}

	if len(roots) == 0 {
		return nil, domain.ErrMappingLoad.New("mapping table has no usable rows")
	}
	sortByRow(roots, order)
	for _, n := range inserted {
		sortByRow(n.Children, order)
	}

	if err := checkDocumentRoot(roots); err != nil {
		return nil, err
	}
	tree.RootElement = roots[0].Output.Elements[0]
	tree.Roots = roots

	logger.Info("Loaded %d rows under <%s>", len(inserted), tree.RootElement)
	return tree, nil
}

// normalise parses and validates the cells of a single row.
func (l *Loader) normalise(row domain.MappingRow) (*domain.MappingNode, error) {
	out, err := domain.ParseOutputPath(row.OutputPath)
	if err != nil {
		return nil, domain.ErrInvalidOutputPath.New(row.Line, row.OutputPath, err.Error())
	}
	in, err := domain.ParseInputPath(row.InputPath)
	if err != nil {
		return nil, domain.ErrInvalidInputPath.New(row.Line, row.InputPath)
	}
	list, err := domain.ParseFlag(row.IsList)
	if err != nil {
		return nil, domain.ErrInvalidRow.New(row.Line, err.Error())
	}
	inType, err := domain.ParseValueType(row.InputType)
	if err != nil {
		return nil, domain.ErrInvalidRow.New(row.Line, "input_type: "+err.Error())
	}
	outType, err := domain.ParseValueType(row.OutputType)
	if err != nil {
		return nil, domain.ErrInvalidRow.New(row.Line, "output_type: "+err.Error())
	}
	if list {
		if out.HasAttribute() {
			return nil, domain.ErrInvalidOutputPath.New(row.Line, row.OutputPath, "a list row cannot target an attribute")
		}
		if len(out.Elements) < 2 {
			return nil, domain.ErrInvalidOutputPath.New(row.Line, row.OutputPath, "a list row needs a container and an item tag")
		}
	}

	node := &domain.MappingNode{
		Row:        row,
		List:       list,
		InputType:  inType,
		OutputType: outType,
		Input:      in,
		Output:     out,
	}
	if row.Expression != "" {
		prog, err := l.compiler.Compile(row.Expression)
		if err != nil {
			node.CompileErr = err.Error()
		} else {
			node.Program = prog
		}
	}
	return node, nil
}

// checkDocumentRoot requires every root row to live under one element.
func checkDocumentRoot(roots []*domain.MappingNode) error {
	var root string
	for _, n := range roots {
		if len(n.Output.Elements) == 0 {
			return domain.ErrInvalidOutputPath.New(n.Row.Line, n.Row.OutputPath,
				"a root row must name the document element")
		}
		switch first := n.Output.Elements[0]; {
		case root == "":
			root = first
		case first != root:
			return domain.ErrMappingLoad.New(fmt.Sprintf(
				"row %d: document root %q differs from %q", n.Row.Line, first, root))
		}
	}
	return nil
}

func sortByRow(nodes []*domain.MappingNode, order map[*domain.MappingNode]int) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return order[nodes[i]] < order[nodes[j]]
	})
}

func skipWarning(n *domain.MappingNode, msg string) domain.Warning {
	return domain.Warning{
		Kind:       domain.WarnSkippedRow,
		Line:       n.Row.Line,
		OutputPath: n.Output.String(),
		Message:    msg,
	}
}
