package expression

import (
	"strings"

	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
)

// Ensure Program implements the interface.
var _ domain.Program = (*Program)(nil)

// Program is a compiled expression. It is immutable and safe for
// concurrent use.
type Program struct {
	source string
	root   node
}

// Compile parses src into a Program.
func Compile(src string) (*Program, error) {
	root, err := parse(strings.TrimSpace(src))
	if err != nil {
		return nil, err
	}
	return &Program{source: src, root: root}, nil
}

// Eval runs the program with val bound.
func (p *Program) Eval(val domain.Value) (domain.Value, error) {
	v, err := fromDomain(val)
	if err != nil {
		return domain.Value{}, err
	}
	out, err := p.root.eval(v)
	if err != nil {
		return domain.Value{}, err
	}
	return out.toDomain(), nil
}

// Source returns the expression text.
func (p *Program) Source() string {
	return p.source
}

// Ensure Compiler implements the interface.
var _ driven.ExpressionCompiler = Compiler{}

// Compiler adapts Compile to the driven port used by the mapping loader.
type Compiler struct{}

// Compile parses src into a domain program.
func (Compiler) Compile(src string) (domain.Program, error) {
	p, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return p, nil
}
