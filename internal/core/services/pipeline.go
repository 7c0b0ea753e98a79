package services

import (
	"time"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

// Pipeline turns one input value into emission text: interpret, coerce to
// the output type, evaluate the row expression, stringify.
type Pipeline struct {
	loc *time.Location
}

// NewPipeline creates a pipeline parsing dates in loc (time.Local if nil).
func NewPipeline(loc *time.Location) *Pipeline {
	if loc == nil {
		loc = time.Local
	}
	return &Pipeline{loc: loc}
}

// Run returns the text to emit for target under node n.
// ok is false when the value is absent (a null input or a null expression
// result). Failures wrap domain.ErrCoercion or domain.ErrExpression.
func (p *Pipeline) Run(n *domain.MappingNode, target *domain.Node) (text string, ok bool, err error) {
	if target.IsMissing() || target.Kind == domain.NodeNull {
		return "", false, nil
	}
	raw := target.CanonicalText()

	v, err := p.interpret(n, target)
	if err != nil {
		return "", false, domain.ErrCoercion.New(raw, n.Input.String(), n.InputType)
	}
	v, err = v.Convert(n.OutputType, p.loc)
	if err != nil {
		return "", false, domain.ErrCoercion.New(raw, n.Input.String(), n.OutputType)
	}

	if n.CompileErr != "" {
		return "", false, domain.ErrExpression.New(n.Row.Expression, n.CompileErr)
	}
	if n.Program != nil {
		out, err := n.Program.Eval(v)
		if err != nil {
			return "", false, domain.ErrExpression.New(n.Row.Expression, err.Error())
		}
		if out.IsNull() {
			return "", false, nil
		}
		if c, err := out.Convert(n.OutputType, p.loc); err == nil {
			out = c
		}
		v = out
	}
	return v.String(), true, nil
}

// interpret reads a scalar by its declared input type, or by its JSON
// kind when none is declared. Structured values are read as JSON text.
func (p *Pipeline) interpret(n *domain.MappingNode, target *domain.Node) (domain.Value, error) {
	if n.InputType != domain.TypeUnspecified {
		return domain.ParseValue(target.CanonicalText(), n.InputType, p.loc)
	}
	switch target.Kind {
	case domain.NodeNumber:
		return domain.NumberValue(target.Text), nil
	case domain.NodeBool:
		return domain.BoolValue(target.Text == "true"), nil
	default:
		return domain.StringValue(target.CanonicalText()), nil
	}
}
