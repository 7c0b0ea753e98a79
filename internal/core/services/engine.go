package services

import (
	"fmt"

	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
	"github.com/custodia-labs/mapxml/internal/logger"
)

// Engine walks an input tree against a mapping tree and streams the
// result into an emitter. An Engine is stateless and may be shared; each
// Run owns its own conversion state.
type Engine struct {
	pipeline *Pipeline
}

// NewEngine creates an engine running values through pipeline.
func NewEngine(pipeline *Pipeline) *Engine {
	return &Engine{pipeline: pipeline}
}

// chainMode selects how an element chain may reuse open elements.
type chainMode int

const (
	// chainContainer chains hold children; any open element without text
	// can be reused, including the whole chain.
	chainContainer chainMode = iota

	// chainText chains end in a text-bearing element, which is only reused
	// while still FRESH.
	chainText
)

// conversion is the state of a single Run.
type conversion struct {
	pipeline *Pipeline
	emitter  driven.Emitter
	stack    domain.FrameStack
	report   *domain.Report
}

// Run converts input under tree into em. Only emitter failures abort the
// run; everything else becomes a warning on the returned report.
func (e *Engine) Run(tree *domain.MappingTree, input *domain.Node, em driven.Emitter) (*domain.Report, error) {
	logger.Section("Conversion")
	c := &conversion{
		pipeline: e.pipeline,
		emitter:  em,
		report:   &domain.Report{},
	}

	if err := em.StartDocument(); err != nil {
		return c.report, err
	}
	if err := c.begin(tree.RootElement, rootNamespace(tree)); err != nil {
		return c.report, err
	}
	if err := c.processAll(tree.Roots, input); err != nil {
		return c.report, err
	}
	if err := c.closeN(c.stack.Len()); err != nil {
		return c.report, err
	}
	if err := em.Finish(); err != nil {
		return c.report, err
	}

	logger.Info("Emitted %d elements, %d attributes, %d warnings",
		c.report.Elements, c.report.Attributes, len(c.report.Warnings))
	return c.report, nil
}

// rootNamespace is the namespace of a root row naming only the document element.
func rootNamespace(tree *domain.MappingTree) string {
	for _, n := range tree.Roots {
		if len(n.Output.Elements) == 1 && !n.IsAttribute() {
			return n.Row.Namespace
		}
	}
	return ""
}

// processAll processes sibling rows in table order. Attribute rows that
// target the currently open element run first, while its start tag can
// still take attributes.
func (c *conversion) processAll(nodes []*domain.MappingNode, scope *domain.Node) error {
	early := make([]bool, len(nodes))
	for i, n := range nodes {
		if !c.targetsOpenElement(n) {
			continue
		}
		early[i] = true
		if err := c.process(n, scope); err != nil {
			return err
		}
	}
	for i, n := range nodes {
		if early[i] {
			continue
		}
		if err := c.process(n, scope); err != nil {
			return err
		}
	}
	return nil
}

// targetsOpenElement reports whether n is an attribute row whose element
// chain is fully open, so it writes onto the innermost start tag.
func (c *conversion) targetsOpenElement(n *domain.MappingNode) bool {
	if !n.IsAttribute() || c.stack.Len() == 0 {
		return false
	}
	segs := n.Output.Elements
	return c.align(segs, chainContainer) == len(segs)
}

func (c *conversion) process(n *domain.MappingNode, scope *domain.Node) error {
	if n.IsStatic() {
		return c.static(n, scope)
	}

	target := n.Input.Resolve(scope)
	switch {
	case target.IsMissing():
		c.warn(domain.WarnMissingField, n, "input path resolved to nothing")
		return nil
	case n.List:
		return c.list(n, target)
	case target.Kind == domain.NodeNull:
		logger.Debug("%s: null input, skipped", n.Output.String())
		return nil
	case target.Kind == domain.NodeArray:
		c.warn(domain.WarnTypeMismatch, n, "target is an array but the row is not a list row")
		return nil
	case len(n.Children) > 0:
		if target.Kind != domain.NodeObject {
			c.warn(domain.WarnTypeMismatch, n, fmt.Sprintf("row has child rows but target is a %s", target.Kind))
			return nil
		}
		return c.structural(n, target)
	default:
		return c.leaf(n, target)
	}
}

// static seeds elements with no data backing. With child rows, the
// children run in the same scope inside the chain.
func (c *conversion) static(n *domain.MappingNode, scope *domain.Node) error {
	if len(n.Children) == 0 {
		return c.emitValue(n, "")
	}
	opened, ok, err := c.openChain(n, n.Output.Elements, chainContainer)
	if err != nil || !ok {
		return err
	}
	if err := c.processAll(n.Children, scope); err != nil {
		return err
	}
	return c.closeN(opened)
}

func (c *conversion) structural(n *domain.MappingNode, target *domain.Node) error {
	opened, ok, err := c.openChain(n, n.Output.Elements, chainContainer)
	if err != nil || !ok {
		return err
	}
	if err := c.processAll(n.Children, target); err != nil {
		return err
	}
	return c.closeN(opened)
}

// list opens the container chain once and one item tag per array element.
func (c *conversion) list(n *domain.MappingNode, target *domain.Node) error {
	if target.Kind != domain.NodeArray {
		c.warn(domain.WarnTypeMismatch, n, fmt.Sprintf("list row target is a %s, not an array", target.Kind))
		return nil
	}

	segs := n.Output.Elements
	container, item := segs[:len(segs)-1], segs[len(segs)-1]
	opened, ok, err := c.openChain(n, container, chainContainer)
	if err != nil || !ok {
		return err
	}
	logger.Debug("%s: unrolling %d items", n.Output.String(), len(target.Items))

	for i, e := range target.Items {
		if len(n.Children) == 0 {
			if err := c.scalarItem(n, item, i, e); err != nil {
				return err
			}
			continue
		}
		if err := c.begin(item, n.Row.Namespace); err != nil {
			return err
		}
		if err := c.processAll(n.Children, e); err != nil {
			return err
		}
		if err := c.closeN(1); err != nil {
			return err
		}
	}
	return c.closeN(opened)
}

// scalarItem emits one array element of a list row without child rows.
func (c *conversion) scalarItem(n *domain.MappingNode, item string, i int, e *domain.Node) error {
	if !e.IsScalar() {
		c.warn(domain.WarnTypeMismatch, n, fmt.Sprintf("item %d is a %s and the row has no child rows", i, e.Kind))
		return nil
	}
	text, ok, err := c.pipeline.Run(n, e)
	if err != nil {
		c.warnErr(n, err)
		return nil
	}
	if !ok {
		return nil
	}
	if err := c.begin(item, n.Row.Namespace); err != nil {
		return err
	}
	if err := c.text(text); err != nil {
		return err
	}
	return c.closeN(1)
}

// leaf runs the value pipeline before opening anything, so a failed or
// absent value leaves no trace in the output.
func (c *conversion) leaf(n *domain.MappingNode, target *domain.Node) error {
	text, ok, err := c.pipeline.Run(n, target)
	if err != nil {
		c.warnErr(n, err)
		return nil
	}
	if !ok {
		logger.Debug("%s: value absent, skipped", n.Output.String())
		return nil
	}
	return c.emitValue(n, text)
}

// emitValue writes text as the content of the row's final element or as
// the value of its attribute.
func (c *conversion) emitValue(n *domain.MappingNode, text string) error {
	if !n.IsAttribute() {
		opened, ok, err := c.openChain(n, n.Output.Elements, chainText)
		if err != nil || !ok {
			return err
		}
		if err := c.text(text); err != nil {
			return err
		}
		return c.closeN(opened)
	}

	opened, ok, err := c.openChain(n, n.Output.Elements, chainContainer)
	if err != nil || !ok {
		return err
	}
	if top := c.stack.Top(); top.State.CanWriteAttribute() {
		if err := c.emitter.Attribute(n.Output.Attribute, text); err != nil {
			return err
		}
		c.report.Attributes++
	} else {
		c.warn(domain.WarnMisplacedAttribute, n,
			fmt.Sprintf("element <%s> already has content", top.Name))
	}
	return c.closeN(opened)
}

// openChain opens segs below the current element, reusing the longest run
// of innermost open elements that matches a prefix of segs. It returns the
// number of elements it opened. ok is false when the row was skipped
// because the current element already holds text.
func (c *conversion) openChain(n *domain.MappingNode, segs []string, mode chainMode) (opened int, ok bool, err error) {
	top := c.stack.Top()
	if top != nil && top.State == domain.FrameHasText {
		c.warn(domain.WarnTypeMismatch, n, fmt.Sprintf("element <%s> already holds text", top.Name))
		return 0, false, nil
	}
	for _, name := range segs[c.align(segs, mode):] {
		if err := c.begin(name, n.Row.Namespace); err != nil {
			return opened, false, err
		}
		opened++
	}
	return opened, true, nil
}

// align returns how many leading segments of segs are already open as the
// innermost elements of the stack.
func (c *conversion) align(segs []string, mode chainMode) int {
	depth := c.stack.Len()
	for k := min(len(segs), depth); k > 0; k-- {
		if k == len(segs) && mode == chainText && c.stack.Top().State != domain.FrameFresh {
			continue
		}
		if c.matches(segs[:k], depth-k) {
			return k
		}
	}
	return 0
}

func (c *conversion) matches(segs []string, from int) bool {
	for i, name := range segs {
		if c.stack.At(from+i).Name != name {
			return false
		}
	}
	return true
}

func (c *conversion) begin(name, namespace string) error {
	if err := c.emitter.BeginElement(name, namespace); err != nil {
		return err
	}
	if namespace == "" {
		namespace = c.stack.Namespace()
	}
	c.stack.Push(name, namespace)
	c.report.Elements++
	return nil
}

// text writes element content. Empty text leaves the element FRESH.
func (c *conversion) text(s string) error {
	if err := c.emitter.Text(s); err != nil {
		return err
	}
	if s != "" {
		c.stack.Top().State = domain.FrameHasText
	}
	return nil
}

func (c *conversion) closeN(count int) error {
	for i := 0; i < count; i++ {
		if err := c.emitter.EndElement(); err != nil {
			return err
		}
		c.stack.Pop()
	}
	return nil
}

func (c *conversion) warn(kind domain.WarningKind, n *domain.MappingNode, msg string) {
	w := domain.Warning{
		Kind:       kind,
		Line:       n.Row.Line,
		OutputPath: n.Output.String(),
		InputPath:  n.Input.String(),
		Message:    msg,
	}
	c.report.Warnings = append(c.report.Warnings, w)
	logger.Warn("%s", w)
}

// warnErr records a value pipeline failure under its warning kind.
func (c *conversion) warnErr(n *domain.MappingNode, err error) {
	kind := domain.WarnCoercion
	if domain.HasKind(err, domain.ErrExpression) {
		kind = domain.WarnExpression
	}
	c.warn(kind, n, err.Error())
}
