// Package jsontree parses RFC 8259 JSON into a domain.Node tree.
//
// Objects keep their field order. Numbers keep their literal text so that
// long integers and decimals survive until the value pipeline reads them.
// A repeated key keeps its first position and takes the last value.
package jsontree

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.InputParser = (*Parser)(nil)

// Parser is a JSON input parser.
type Parser struct {
	// MaxDepth bounds nesting. Zero means DefaultMaxDepth.
	MaxDepth int
}

// DefaultMaxDepth is the nesting limit when MaxDepth is zero.
const DefaultMaxDepth = 1000

// NewParser creates a parser with default limits.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads exactly one JSON value from r.
func (p *Parser) Parse(r io.Reader) (*domain.Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	maxDepth := p.MaxDepth
	if maxDepth == 0 {
		maxDepth = DefaultMaxDepth
	}
	b := &builder{dec: dec, maxDepth: maxDepth}

	tok, err := dec.Token()
	if err != nil {
		return nil, parseError(dec, err)
	}
	root, err := b.value(tok, 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after the top-level value")
		}
		return nil, parseError(dec, err)
	}
	return root, nil
}

type builder struct {
	dec      *json.Decoder
	maxDepth int
}

func (b *builder) value(tok json.Token, depth int) (*domain.Node, error) {
	switch t := tok.(type) {
	case json.Delim:
		if depth >= b.maxDepth {
			return nil, parseError(b.dec, fmt.Errorf("nesting deeper than %d", b.maxDepth))
		}
		if t == '{' {
			return b.object(depth + 1)
		}
		if t == '[' {
			return b.array(depth + 1)
		}
		return nil, parseError(b.dec, fmt.Errorf("unexpected %q", t))
	case string:
		return domain.NewString(t), nil
	case json.Number:
		return domain.NewNumber(t.String()), nil
	case bool:
		return domain.NewBool(t), nil
	case nil:
		return domain.NewNull(), nil
	default:
		return nil, parseError(b.dec, fmt.Errorf("unexpected token %v", t))
	}
}

func (b *builder) object(depth int) (*domain.Node, error) {
	node := domain.NewObject()
	index := make(map[string]int)
	for b.dec.More() {
		tok, err := b.dec.Token()
		if err != nil {
			return nil, parseError(b.dec, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, parseError(b.dec, fmt.Errorf("object key must be a string, got %v", tok))
		}
		tok, err = b.dec.Token()
		if err != nil {
			return nil, parseError(b.dec, err)
		}
		val, err := b.value(tok, depth)
		if err != nil {
			return nil, err
		}
		if i, dup := index[key]; dup {
			node.Fields[i].Value = val
			continue
		}
		index[key] = len(node.Fields)
		node.Fields = append(node.Fields, domain.Field{Name: key, Value: val})
	}
	if _, err := b.dec.Token(); err != nil {
		return nil, parseError(b.dec, err)
	}
	return node, nil
}

func (b *builder) array(depth int) (*domain.Node, error) {
	node := domain.NewArray()
	node.Items = []*domain.Node{}
	for b.dec.More() {
		tok, err := b.dec.Token()
		if err != nil {
			return nil, parseError(b.dec, err)
		}
		val, err := b.value(tok, depth)
		if err != nil {
			return nil, err
		}
		node.Items = append(node.Items, val)
	}
	if _, err := b.dec.Token(); err != nil {
		return nil, parseError(b.dec, err)
	}
	return node, nil
}

func parseError(dec *json.Decoder, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return domain.ErrInputParse.Wrap(err, fmt.Sprintf("at offset %d: %v", dec.InputOffset(), err))
}
