package expression

import (
	"errors"
	"fmt"
	"strings"
)

var errDivisionByZero = errors.New("division by zero")

func (n *literal) eval(value) (value, error) {
	return n.v, nil
}

func (n *variable) eval(val value) (value, error) {
	return val, nil
}

func (n *unaryExpr) eval(val value) (value, error) {
	x, err := n.x.eval(val)
	if err != nil {
		return value{}, err
	}
	switch n.op {
	case "!":
		return boolValue(!x.truthy()), nil
	case "-":
		if x.kind != kindNumber {
			return value{}, fmt.Errorf("cannot negate %s", x.typeName())
		}
		return numberValue(x.num.Neg(), x.integral), nil
	}
	return value{}, fmt.Errorf("unknown operator %q", n.op)
}

func (n *condExpr) eval(val value) (value, error) {
	c, err := n.cond.eval(val)
	if err != nil {
		return value{}, err
	}
	if c.truthy() {
		return n.then.eval(val)
	}
	return n.els.eval(val)
}

func (n *binaryExpr) eval(val value) (value, error) {
	l, err := n.l.eval(val)
	if err != nil {
		return value{}, err
	}

	// Logical operators short-circuit.
	switch n.op {
	case "&&":
		if !l.truthy() {
			return boolValue(false), nil
		}
		r, err := n.r.eval(val)
		if err != nil {
			return value{}, err
		}
		return boolValue(r.truthy()), nil
	case "||":
		if l.truthy() {
			return boolValue(true), nil
		}
		r, err := n.r.eval(val)
		if err != nil {
			return value{}, err
		}
		return boolValue(r.truthy()), nil
	}

	r, err := n.r.eval(val)
	if err != nil {
		return value{}, err
	}

	switch n.op {
	case "==":
		return boolValue(equal(l, r)), nil
	case "!=":
		return boolValue(!equal(l, r)), nil
	case "<", "<=", ">", ">=":
		return compare(n.op, l, r)
	case "+":
		if l.kind == kindString || r.kind == kindString || l.kind == kindDate || r.kind == kindDate {
			return stringValue(l.text() + r.text()), nil
		}
		return arithmetic(n.op, l, r)
	default:
		return arithmetic(n.op, l, r)
	}
}

func arithmetic(op string, l, r value) (value, error) {
	if l.kind != kindNumber || r.kind != kindNumber {
		return value{}, fmt.Errorf("operator %s needs numbers, got %s and %s", op, l.typeName(), r.typeName())
	}
	integral := l.integral && r.integral
	switch op {
	case "+":
		return numberValue(l.num.Add(r.num), integral), nil
	case "-":
		return numberValue(l.num.Sub(r.num), integral), nil
	case "*":
		return numberValue(l.num.Mul(r.num), integral), nil
	case "/":
		if r.num.IsZero() {
			return value{}, errDivisionByZero
		}
		if integral {
			q, _ := l.num.QuoRem(r.num, 0)
			return numberValue(q, true), nil
		}
		return numberValue(l.num.Div(r.num), false), nil
	case "%":
		if r.num.IsZero() {
			return value{}, errDivisionByZero
		}
		return numberValue(l.num.Mod(r.num), integral), nil
	}
	return value{}, fmt.Errorf("unknown operator %q", op)
}

func equal(l, r value) bool {
	if l.kind != r.kind {
		if l.kind == kindNull || r.kind == kindNull {
			return false
		}
		return l.text() == r.text()
	}
	switch l.kind {
	case kindNull:
		return true
	case kindNumber:
		return l.num.Equal(r.num)
	case kindBool:
		return l.b == r.b
	case kindDate:
		return l.t.Equal(r.t)
	default:
		return l.str == r.str
	}
}

func compare(op string, l, r value) (value, error) {
	var c int
	switch {
	case l.kind == kindNumber && r.kind == kindNumber:
		c = l.num.Cmp(r.num)
	case l.kind == kindString && r.kind == kindString:
		c = strings.Compare(l.str, r.str)
	case l.kind == kindDate && r.kind == kindDate:
		c = l.t.Compare(r.t)
	default:
		return value{}, fmt.Errorf("cannot compare %s with %s", l.typeName(), r.typeName())
	}
	switch op {
	case "<":
		return boolValue(c < 0), nil
	case "<=":
		return boolValue(c <= 0), nil
	case ">":
		return boolValue(c > 0), nil
	default:
		return boolValue(c >= 0), nil
	}
}

func (n *callExpr) eval(val value) (value, error) {
	args := make([]value, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(val)
		if err != nil {
			return value{}, err
		}
		args[i] = v
	}
	fn, ok := intrinsics[n.name]
	if !ok {
		return value{}, fmt.Errorf("unknown function %q", n.name)
	}
	out, err := fn.call(args)
	if err != nil {
		return value{}, fmt.Errorf("%s: %w", n.name, err)
	}
	return out, nil
}
