package expression

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// node is an expression AST node. Nodes hold only data so that compiled
// programs compare equal when compiled from the same source.
type node interface {
	eval(val value) (value, error)
}

type literal struct {
	v value
}

type variable struct{}

type unaryExpr struct {
	op string
	x  node
}

type binaryExpr struct {
	op   string
	l, r node
}

type condExpr struct {
	cond, then, els node
}

type callExpr struct {
	name string
	args []node
}

// variableName is the only identifier an expression may reference.
const variableName = "val"

type parser struct {
	tokens []token
	pos    int
}

func parse(src string) (node, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	n, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %s at offset %d", tok, tok.pos)
	}
	return n, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) acceptOp(ops ...string) (string, bool) {
	tok := p.peek()
	if tok.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if tok.text == op {
			p.pos++
			return op, true
		}
	}
	return "", false
}

func (p *parser) expectOp(op string) error {
	if _, ok := p.acceptOp(op); !ok {
		tok := p.peek()
		return fmt.Errorf("expected %q, found %s at offset %d", op, tok, tok.pos)
	}
	return nil
}

func (p *parser) parseCond() (node, error) {
	cond, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if _, ok := p.acceptOp("?"); !ok {
		return cond, nil
	}
	then, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	if err := p.expectOp(":"); err != nil {
		return nil, err
	}
	els, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	return &condExpr{cond: cond, then: then, els: els}, nil
}

// precedence lists binary operators from loosest to tightest binding.
var precedence = [][]string{
	{"||"},
	{"&&"},
	{"==", "!="},
	{"<", "<=", ">", ">="},
	{"+", "-"},
	{"*", "/", "%"},
}

func (p *parser) parseBinary(level int) (node, error) {
	if level == len(precedence) {
		return p.parseUnary()
	}
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp(precedence[level]...)
		if !ok {
			return left, nil
		}
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: op, l: left, r: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	if op, ok := p.acceptOp("-", "!"); ok {
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryExpr{op: op, x: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.advance()
	switch tok.kind {
	case tokNumber:
		d, err := decimal.NewFromString(tok.text)
		if err != nil {
			return nil, fmt.Errorf("bad number %q at offset %d", tok.text, tok.pos)
		}
		return &literal{v: numberValue(d, !strings.Contains(tok.text, "."))}, nil
	case tokString:
		return &literal{v: stringValue(tok.text)}, nil
	case tokIdent:
		return p.parseIdent(tok)
	case tokOp:
		if tok.text == "(" {
			n, err := p.parseCond()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return n, nil
		}
	}
	return nil, fmt.Errorf("unexpected %s at offset %d", tok, tok.pos)
}

func (p *parser) parseIdent(tok token) (node, error) {
	switch tok.text {
	case "true":
		return &literal{v: boolValue(true)}, nil
	case "false":
		return &literal{v: boolValue(false)}, nil
	case "null":
		return &literal{v: nullValue}, nil
	case variableName:
		return &variable{}, nil
	}

	fn, ok := intrinsics[tok.text]
	if !ok {
		return nil, fmt.Errorf("unknown identifier %q at offset %d", tok.text, tok.pos)
	}
	if err := p.expectOp("("); err != nil {
		return nil, err
	}
	var args []node
	if _, ok := p.acceptOp(")"); !ok {
		for {
			arg, err := p.parseCond()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if _, ok := p.acceptOp(","); ok {
				continue
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			break
		}
	}
	if len(args) < fn.minArgs || (fn.maxArgs >= 0 && len(args) > fn.maxArgs) {
		return nil, fmt.Errorf("%s: wrong number of arguments (%d) at offset %d", tok.text, len(args), tok.pos)
	}
	return &callExpr{name: tok.text, args: args}, nil
}
